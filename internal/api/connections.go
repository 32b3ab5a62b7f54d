package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"networkpro-client/internal/models"
)

// connectionRequest is the connection-service action payload.
type connectionRequest struct {
	RequesterID  string `json:"requesterId"`
	ReceiverID   string `json:"receiverId"`
	ConnectionID string `json:"connectionId,omitempty"`
}

// envelope is the connection-service response wrapper.
type envelope[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
	Status  string `json:"status"`
}

// SendConnectionRequest asks the connection service to create a pending
// request from requester to receiver and returns the acknowledged record.
func (c *Client) SendConnectionRequest(ctx context.Context, requesterID, receiverID string) (models.ConnectionRecord, error) {
	var resp envelope[models.ConnectionRecord]
	in := connectionRequest{RequesterID: requesterID, ReceiverID: receiverID}
	if err := c.doJSON(ctx, "send connection request", http.MethodPost, c.connBase+"/request", in, &resp); err != nil {
		return models.ConnectionRecord{}, err
	}
	return resp.Data, nil
}

// AcceptConnectionRequest accepts the pending request identified by
// connectionID.
func (c *Client) AcceptConnectionRequest(ctx context.Context, connectionID, requesterID, receiverID string) (models.ConnectionRecord, error) {
	var resp envelope[models.ConnectionRecord]
	in := connectionRequest{RequesterID: requesterID, ReceiverID: receiverID, ConnectionID: connectionID}
	if err := c.doJSON(ctx, "accept connection request", http.MethodPost, c.connBase+"/accept", in, &resp); err != nil {
		return models.ConnectionRecord{}, err
	}
	return resp.Data, nil
}

// RejectConnectionRequest rejects the pending request identified by
// connectionID.
func (c *Client) RejectConnectionRequest(ctx context.Context, connectionID, requesterID, receiverID string) (models.ConnectionRecord, error) {
	var resp envelope[models.ConnectionRecord]
	in := connectionRequest{RequesterID: requesterID, ReceiverID: receiverID, ConnectionID: connectionID}
	if err := c.doJSON(ctx, "reject connection request", http.MethodPost, c.connBase+"/reject", in, &resp); err != nil {
		return models.ConnectionRecord{}, err
	}
	return resp.Data, nil
}

// RemoveConnection deletes the connection record outright. The same call
// cancels a still-pending outgoing request.
func (c *Client) RemoveConnection(ctx context.Context, connectionID string) error {
	endpoint := fmt.Sprintf("%s/%s", c.connBase, url.PathEscape(connectionID))
	_, err := c.do(ctx, "remove connection", http.MethodDelete, endpoint, nil, "")
	return err
}

// ListConnections returns every connection record involving userID,
// pending and accepted alike.
func (c *Client) ListConnections(ctx context.Context, userID string) ([]models.ConnectionRecord, error) {
	var resp envelope[[]models.ConnectionRecord]
	endpoint := fmt.Sprintf("%s?userId=%s", c.connBase, url.QueryEscape(userID))
	if err := c.doJSON(ctx, "list connections", http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ConnectionStatus returns the wire status between two users.
func (c *Client) ConnectionStatus(ctx context.Context, requesterID, receiverID string) (string, error) {
	var resp envelope[string]
	endpoint := fmt.Sprintf("%s/status?requesterId=%s&receiverId=%s",
		c.connBase, url.QueryEscape(requesterID), url.QueryEscape(receiverID))
	if err := c.doJSON(ctx, "get connection status", http.MethodGet, endpoint, nil, &resp); err != nil {
		return "", err
	}
	return resp.Data, nil
}
