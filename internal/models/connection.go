package models

// ConnectionState is the viewer-side state of a relationship with one subject.
type ConnectionState int

const (
	NotConnected ConnectionState = iota
	PendingSent
	PendingReceived
	Connected
)

// String returns the state name used in logs and errors.
func (s ConnectionState) String() string {
	switch s {
	case NotConnected:
		return "NotConnected"
	case PendingSent:
		return "PendingSent"
	case PendingReceived:
		return "PendingReceived"
	case Connected:
		return "Connected"
	}
	return "Unknown"
}

// Relationship tracks the connection status between the viewer and one subject.
// State transitions go through connections.Manager only.
type Relationship struct {
	SubjectID        string
	State            ConnectionState
	BackendRequestID string // assigned once the backend acknowledges a request
}

// Connection-service wire statuses.
const (
	StatusPending  = "PENDING"
	StatusAccepted = "ACCEPTED"
	StatusRejected = "REJECTED"
)

// ConnectionRecord mirrors one connection-service response record.
type ConnectionRecord struct {
	ID          string `json:"id"`
	RequesterID string `json:"requesterId"`
	ReceiverID  string `json:"receiverId"`
	Status      string `json:"status"`
}

// ConnectionCounts are derived totals recomputed from the relationship set
// after every transition, never incremented in place.
type ConnectionCounts struct {
	Connected       int
	PendingSent     int
	PendingReceived int
}
