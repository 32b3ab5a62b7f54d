package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"networkpro-client/internal/config"
	"networkpro-client/internal/models"
	"networkpro-client/internal/stub"
)

// newTestClient spins up the stub backend and points a Client at it.
func newTestClient(t *testing.T) (*Client, *stub.Server) {
	t.Helper()

	backend := stub.NewServer("")
	server := httptest.NewServer(backend.NewRouter())
	t.Cleanup(server.Close)
	backend.SetBaseURL(server.URL)

	cfg := config.DefaultConfig()
	cfg.UserAPIBaseURL = server.URL + "/api/v1/users"
	cfg.ConnectionAPIBaseURL = server.URL + "/api/v1/connections"
	cfg.RequestTimeout = 5 * time.Second

	client := New(cfg, nil)
	t.Cleanup(client.Close)
	return client, backend
}

func TestGetUserDecodesRawProfile(t *testing.T) {
	client, backend := newTestClient(t)
	backend.SeedProfile("7", map[string]any{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"headline":  "Engineer",
		"skills":    []string{"Go", "SQL"},
	})

	raw, err := client.GetUser(context.Background(), "7")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if raw.FirstName != "Ada" || raw.Headline != "Engineer" {
		t.Fatalf("raw = %+v", raw)
	}
	if len(raw.Skills) != 2 {
		t.Fatalf("skills = %v", raw.Skills)
	}
}

func TestGetUserNotFoundIsNetworkError(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.GetUser(context.Background(), "missing")
	var netErr *models.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if netErr.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", netErr.StatusCode)
	}
}

func TestUpdateUserPartialPayload(t *testing.T) {
	client, backend := newTestClient(t)
	backend.SeedProfile("7", map[string]any{
		"firstName": "Ada",
		"headline":  "Engineer",
	})

	raw, err := client.UpdateUser(context.Background(), "7", map[string]any{"headline": "CTO"})
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if raw.Headline != "CTO" {
		t.Fatalf("headline = %q, want CTO", raw.Headline)
	}
	if raw.FirstName != "Ada" {
		t.Fatalf("firstName = %q, untouched field must survive a partial update", raw.FirstName)
	}
}

func TestUploadProfilePictureReturnsReachableURL(t *testing.T) {
	client, backend := newTestClient(t)
	backend.SeedProfile("7", map[string]any{"firstName": "Ada"})

	imageURL, err := client.UploadProfilePicture(context.Background(), "7", strings.NewReader("jpeg-bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.Contains(imageURL, "/profile-pictures/7/") {
		t.Fatalf("url = %q, want a /profile-pictures/7/ path", imageURL)
	}

	resp, err := http.Head(imageURL)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("probe status = %d, want 200", resp.StatusCode)
	}

	if err := client.DeleteProfilePicture(context.Background(), "7"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	raw, err := client.GetUser(context.Background(), "7")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if raw.ProfilePictureURL != "" {
		t.Fatalf("profile picture = %q, want removed", raw.ProfilePictureURL)
	}
}

func TestUploadBannerImage(t *testing.T) {
	client, backend := newTestClient(t)
	backend.SeedProfile("7", map[string]any{"firstName": "Ada"})

	imageURL, err := client.UploadBannerImage(context.Background(), "7", strings.NewReader("jpeg-bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.Contains(imageURL, "/banner-images/7/") {
		t.Fatalf("url = %q, want a /banner-images/7/ path", imageURL)
	}
}

func TestPrivacySettingsRoundTrip(t *testing.T) {
	client, backend := newTestClient(t)
	backend.SeedProfile("7", map[string]any{"firstName": "Ada"})

	settings, err := client.GetPrivacySettings(context.Background(), "7")
	if err != nil {
		t.Fatalf("get privacy: %v", err)
	}
	if !settings.ProfileVisible {
		t.Fatal("default privacy must be visible")
	}

	settings.AllowMessages = false
	updated, err := client.UpdatePrivacySettings(context.Background(), "7", settings)
	if err != nil {
		t.Fatalf("update privacy: %v", err)
	}
	if updated.AllowMessages {
		t.Fatal("allowMessages must persist as false")
	}
}

func TestGetProfileCompletion(t *testing.T) {
	client, backend := newTestClient(t)
	backend.SeedProfile("7", map[string]any{
		"firstName": "Ada",
		"headline":  "Engineer",
	})

	completion, err := client.GetProfileCompletion(context.Background(), "7")
	if err != nil {
		t.Fatalf("get completion: %v", err)
	}
	if completion.IsComplete {
		t.Fatal("profile with missing fields must not be complete")
	}
	if len(completion.MissingFields) == 0 {
		t.Fatal("expected missing fields")
	}
}

func TestSearchUsers(t *testing.T) {
	client, backend := newTestClient(t)
	backend.SeedProfile("7", map[string]any{"firstName": "Ada", "headline": "Engineer"})
	backend.SeedProfile("8", map[string]any{"firstName": "Grace", "headline": "Admiral"})

	results, err := client.SearchUsers(context.Background(), models.SearchQuery{Keyword: "admiral"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].FirstName != "Grace" {
		t.Fatalf("results = %+v", results)
	}
}

func TestConnectionLifecycleAgainstStub(t *testing.T) {
	client, _ := newTestClient(t)

	record, err := client.SendConnectionRequest(context.Background(), "7", "42")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if record.Status != models.StatusPending || record.ID == "" {
		t.Fatalf("record = %+v", record)
	}

	accepted, err := client.AcceptConnectionRequest(context.Background(), record.ID, "7", "42")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != models.StatusAccepted {
		t.Fatalf("status = %q, want ACCEPTED", accepted.Status)
	}

	records, err := client.ListConnections(context.Background(), "42")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %+v", records)
	}

	status, err := client.ConnectionStatus(context.Background(), "7", "42")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status != models.StatusAccepted {
		t.Fatalf("status = %q", status)
	}

	if err := client.RemoveConnection(context.Background(), record.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	records, err = client.ListConnections(context.Background(), "42")
	if err != nil {
		t.Fatalf("list after remove: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("records = %+v, want none", records)
	}
}

func TestDuplicateConnectionRequestRejected(t *testing.T) {
	client, _ := newTestClient(t)

	if _, err := client.SendConnectionRequest(context.Background(), "7", "42"); err != nil {
		t.Fatalf("send: %v", err)
	}
	_, err := client.SendConnectionRequest(context.Background(), "7", "42")
	var netErr *models.NetworkError
	if !errors.As(err, &netErr) || netErr.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 NetworkError, got %v", err)
	}
}

func TestRequestsCarryCorrelationHeaders(t *testing.T) {
	var gotCorrelation, gotVersion string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCorrelation = r.Header.Get("X-Correlation-Id")
		gotVersion = r.Header.Get("X-Client-Version")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.UserAPIBaseURL = server.URL
	client := New(cfg, nil)
	defer client.Close()

	if _, err := client.GetUser(context.Background(), "7"); err != nil {
		t.Fatalf("get user: %v", err)
	}
	if gotCorrelation == "" {
		t.Fatal("missing X-Correlation-Id header")
	}
	if gotVersion != clientVersion {
		t.Fatalf("X-Client-Version = %q", gotVersion)
	}
}
