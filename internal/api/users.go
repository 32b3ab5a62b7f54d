package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"networkpro-client/internal/models"
)

// GetUser fetches the raw profile for one user.
func (c *Client) GetUser(ctx context.Context, userID string) (models.RawProfile, error) {
	var raw models.RawProfile
	endpoint := fmt.Sprintf("%s/%s", c.userBase, url.PathEscape(userID))
	if err := c.doJSON(ctx, "get user", http.MethodGet, endpoint, nil, &raw); err != nil {
		return models.RawProfile{}, err
	}
	return raw, nil
}

// UpdateUser sends a partial profile update and returns the updated raw
// profile. Only the fields present in the payload are touched server-side.
func (c *Client) UpdateUser(ctx context.Context, userID string, fields map[string]any) (models.RawProfile, error) {
	var raw models.RawProfile
	endpoint := fmt.Sprintf("%s/%s", c.userBase, url.PathEscape(userID))
	if err := c.doJSON(ctx, "update user", http.MethodPut, endpoint, fields, &raw); err != nil {
		return models.RawProfile{}, err
	}
	return raw, nil
}

// UpdateSkills replaces the user's skills list.
func (c *Client) UpdateSkills(ctx context.Context, userID string, skills []string) (models.RawProfile, error) {
	return c.UpdateUser(ctx, userID, map[string]any{"skills": skills})
}

// UploadProfilePicture uploads an avatar as a multipart file part and
// returns the absolute URL the server stored it under.
func (c *Client) UploadProfilePicture(ctx context.Context, userID string, image io.Reader) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/profile-picture", c.userBase, url.PathEscape(userID))
	filename := fmt.Sprintf("profile-picture-%d.jpg", time.Now().UnixMilli())
	return c.uploadImage(ctx, "upload profile picture", endpoint, filename, image)
}

// DeleteProfilePicture removes the user's avatar.
func (c *Client) DeleteProfilePicture(ctx context.Context, userID string) error {
	endpoint := fmt.Sprintf("%s/%s/profile-picture", c.userBase, url.PathEscape(userID))
	_, err := c.do(ctx, "delete profile picture", http.MethodDelete, endpoint, nil, "")
	return err
}

// UploadBannerImage uploads a banner as a multipart file part and returns
// the absolute URL the server stored it under.
func (c *Client) UploadBannerImage(ctx context.Context, userID string, image io.Reader) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/banner-image", c.userBase, url.PathEscape(userID))
	filename := fmt.Sprintf("banner-image-%d.jpg", time.Now().UnixMilli())
	return c.uploadImage(ctx, "upload banner image", endpoint, filename, image)
}

// DeleteBannerImage removes the user's banner.
func (c *Client) DeleteBannerImage(ctx context.Context, userID string) error {
	endpoint := fmt.Sprintf("%s/%s/banner-image", c.userBase, url.PathEscape(userID))
	_, err := c.do(ctx, "delete banner image", http.MethodDelete, endpoint, nil, "")
	return err
}

func (c *Client) uploadImage(ctx context.Context, op, endpoint, filename string, image io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("%s: failed to build multipart body: %w", op, err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", fmt.Errorf("%s: failed to read image: %w", op, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%s: failed to finalize multipart body: %w", op, err)
	}

	// The server replies with the stored absolute URL as plain text.
	payload, err := c.do(ctx, op, http.MethodPost, endpoint, &buf, writer.FormDataContentType())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(payload)), nil
}

// GetPrivacySettings fetches the user's privacy settings.
func (c *Client) GetPrivacySettings(ctx context.Context, userID string) (models.PrivacySettings, error) {
	var settings models.PrivacySettings
	endpoint := fmt.Sprintf("%s/%s/privacy-settings", c.userBase, url.PathEscape(userID))
	if err := c.doJSON(ctx, "get privacy settings", http.MethodGet, endpoint, nil, &settings); err != nil {
		return models.PrivacySettings{}, err
	}
	return settings, nil
}

// UpdatePrivacySettings replaces the user's privacy settings.
func (c *Client) UpdatePrivacySettings(ctx context.Context, userID string, settings models.PrivacySettings) (models.PrivacySettings, error) {
	var updated models.PrivacySettings
	endpoint := fmt.Sprintf("%s/%s/privacy-settings", c.userBase, url.PathEscape(userID))
	if err := c.doJSON(ctx, "update privacy settings", http.MethodPut, endpoint, settings, &updated); err != nil {
		return models.PrivacySettings{}, err
	}
	return updated, nil
}

// GetProfileCompletion fetches the server-computed completion summary.
func (c *Client) GetProfileCompletion(ctx context.Context, userID string) (models.ProfileCompletion, error) {
	var completion models.ProfileCompletion
	endpoint := fmt.Sprintf("%s/%s/completion", c.userBase, url.PathEscape(userID))
	if err := c.doJSON(ctx, "get profile completion", http.MethodGet, endpoint, nil, &completion); err != nil {
		return models.ProfileCompletion{}, err
	}
	return completion, nil
}

// SearchUsers runs a structured profile search.
func (c *Client) SearchUsers(ctx context.Context, query models.SearchQuery) ([]models.RawProfile, error) {
	var results []models.RawProfile
	endpoint := c.userBase + "/search"
	if err := c.doJSON(ctx, "search users", http.MethodPost, endpoint, query, &results); err != nil {
		return nil, err
	}
	return results, nil
}
