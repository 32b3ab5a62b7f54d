// Package connections tracks the viewer's relationship with every other
// user and drives state transitions through the connection service. All
// mutations are optimistic: the local state moves first, the backend call
// follows, and a failure rolls the state back.
package connections

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"networkpro-client/internal/models"
)

// Backend is the slice of the connection-service client the manager needs.
type Backend interface {
	SendConnectionRequest(ctx context.Context, requesterID, receiverID string) (models.ConnectionRecord, error)
	AcceptConnectionRequest(ctx context.Context, connectionID, requesterID, receiverID string) (models.ConnectionRecord, error)
	RejectConnectionRequest(ctx context.Context, connectionID, requesterID, receiverID string) (models.ConnectionRecord, error)
	RemoveConnection(ctx context.Context, connectionID string) error
	ListConnections(ctx context.Context, userID string) ([]models.ConnectionRecord, error)
}

// Manager owns every relationship record for one viewer. No other component
// mutates relationship state directly.
type Manager struct {
	viewerID string
	backend  Backend
	logger   *slog.Logger

	mu            sync.Mutex
	relationships map[string]*models.Relationship
	inFlight      map[string]bool
}

// NewManager creates a Manager for the given viewer.
func NewManager(viewerID string, backend Backend, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		viewerID:      viewerID,
		backend:       backend,
		logger:        logger,
		relationships: make(map[string]*models.Relationship),
		inFlight:      make(map[string]bool),
	}
}

// Track registers a subject the first time it appears in a suggestions or
// search result. Existing relationships are left untouched.
func (m *Manager) Track(subjectID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.relationships[subjectID]; !ok {
		m.relationships[subjectID] = &models.Relationship{SubjectID: subjectID}
	}
}

// State returns the current state for subjectID. Unknown subjects are
// NotConnected.
func (m *Manager) State(subjectID string) models.ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rel, ok := m.relationships[subjectID]; ok {
		return rel.State
	}
	return models.NotConnected
}

// Relationship returns a copy of the record for subjectID.
func (m *Manager) Relationship(subjectID string) models.Relationship {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rel, ok := m.relationships[subjectID]; ok {
		return *rel
	}
	return models.Relationship{SubjectID: subjectID}
}

// Counts recomputes the aggregate totals from the relationship set. They are
// never maintained incrementally, so they cannot drift from the records.
func (m *Manager) Counts() models.ConnectionCounts {
	m.mu.Lock()
	defer m.mu.Unlock()

	var counts models.ConnectionCounts
	for _, rel := range m.relationships {
		switch rel.State {
		case models.Connected:
			counts.Connected++
		case models.PendingSent:
			counts.PendingSent++
		case models.PendingReceived:
			counts.PendingReceived++
		}
	}
	return counts
}

// Connect sends a connection request to subjectID.
// NotConnected -> PendingSent, rolled back on backend failure.
func (m *Manager) Connect(ctx context.Context, subjectID string) error {
	prior, err := m.begin(subjectID, models.PendingSent, models.NotConnected)
	if err != nil {
		return err
	}

	record, err := m.backend.SendConnectionRequest(ctx, m.viewerID, subjectID)
	return m.finish(subjectID, prior, record.ID, err)
}

// Cancel withdraws a still-pending outgoing request.
// PendingSent -> NotConnected, rolled back on backend failure.
func (m *Manager) Cancel(ctx context.Context, subjectID string) error {
	prior, err := m.begin(subjectID, models.NotConnected, models.PendingSent)
	if err != nil {
		return err
	}
	if err := m.requireRequestID(subjectID, prior); err != nil {
		return err
	}

	err = m.backend.RemoveConnection(ctx, prior.BackendRequestID)
	return m.finish(subjectID, prior, "", err)
}

// Accept confirms an incoming request.
// PendingReceived -> Connected, rolled back on backend failure.
func (m *Manager) Accept(ctx context.Context, subjectID string) error {
	prior, err := m.begin(subjectID, models.Connected, models.PendingReceived)
	if err != nil {
		return err
	}
	if err := m.requireRequestID(subjectID, prior); err != nil {
		return err
	}

	record, err := m.backend.AcceptConnectionRequest(ctx, prior.BackendRequestID, subjectID, m.viewerID)
	return m.finish(subjectID, prior, record.ID, err)
}

// Ignore rejects an incoming request.
// PendingReceived -> NotConnected, rolled back on backend failure.
func (m *Manager) Ignore(ctx context.Context, subjectID string) error {
	prior, err := m.begin(subjectID, models.NotConnected, models.PendingReceived)
	if err != nil {
		return err
	}
	if err := m.requireRequestID(subjectID, prior); err != nil {
		return err
	}

	_, err = m.backend.RejectConnectionRequest(ctx, prior.BackendRequestID, subjectID, m.viewerID)
	return m.finish(subjectID, prior, "", err)
}

// Remove severs an established connection.
// Connected -> NotConnected, rolled back on backend failure.
func (m *Manager) Remove(ctx context.Context, subjectID string) error {
	prior, err := m.begin(subjectID, models.NotConnected, models.Connected)
	if err != nil {
		return err
	}
	if err := m.requireRequestID(subjectID, prior); err != nil {
		return err
	}

	err = m.backend.RemoveConnection(ctx, prior.BackendRequestID)
	return m.finish(subjectID, prior, "", err)
}

// requireRequestID aborts an action whose backend call needs the
// acknowledged request id but the record never got one. The optimistic
// transition is rolled back; no request with an empty id path is ever sent.
func (m *Manager) requireRequestID(subjectID string, prior models.Relationship) error {
	if prior.BackendRequestID != "" {
		return nil
	}
	return m.finish(subjectID, prior,
		"", fmt.Errorf("%w: no backend request id for subject %s", models.ErrInvalidOperation, subjectID))
}

// begin validates the action, applies the optimistic transition, and marks
// the subject in flight. It returns the pre-action record for rollback.
func (m *Manager) begin(subjectID string, target models.ConnectionState, allowed models.ConnectionState) (models.Relationship, error) {
	if subjectID == "" || subjectID == m.viewerID {
		return models.Relationship{}, fmt.Errorf("%w: cannot act on subject %q", models.ErrInvalidOperation, subjectID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.inFlight[subjectID] {
		return models.Relationship{}, fmt.Errorf("%w: subject %s", models.ErrAlreadyInProgress, subjectID)
	}

	rel, ok := m.relationships[subjectID]
	if !ok {
		rel = &models.Relationship{SubjectID: subjectID}
		m.relationships[subjectID] = rel
	}
	if rel.State != allowed {
		return models.Relationship{}, fmt.Errorf("%w: subject %s is %s, want %s",
			models.ErrInvalidOperation, subjectID, rel.State, allowed)
	}

	prior := *rel
	rel.State = target
	m.inFlight[subjectID] = true
	return prior, nil
}

// finish clears the in-flight mark and either merges the acknowledged
// request id or rolls the relationship back to its pre-action record.
func (m *Manager) finish(subjectID string, prior models.Relationship, requestID string, callErr error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.inFlight, subjectID)
	rel, ok := m.relationships[subjectID]
	if !ok {
		// Reset raced with the in-flight call; the record is gone either way.
		return callErr
	}

	if callErr != nil {
		*rel = prior
		m.logger.Warn("connection action failed, state rolled back",
			"subject", subjectID, "state", rel.State, "error", callErr)
		return callErr
	}

	rel.BackendRequestID = requestID
	m.logger.Debug("connection action confirmed", "subject", subjectID, "state", rel.State)
	return nil
}

// Reconcile pulls the server's connection list and folds it into local
// state. This is how incoming requests become visible: the client has no
// push channel, so a PENDING record whose receiver is the viewer turns the
// relationship PendingReceived. Subjects with an action in flight are left
// alone; the action's completion settles them.
func (m *Manager) Reconcile(ctx context.Context) error {
	records, err := m.backend.ListConnections(ctx, m.viewerID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool, len(records))
	for _, record := range records {
		subjectID := record.RequesterID
		if subjectID == m.viewerID {
			subjectID = record.ReceiverID
		}
		if subjectID == m.viewerID || m.inFlight[subjectID] {
			continue
		}
		seen[subjectID] = true

		rel, ok := m.relationships[subjectID]
		if !ok {
			rel = &models.Relationship{SubjectID: subjectID}
			m.relationships[subjectID] = rel
		}

		switch record.Status {
		case models.StatusAccepted:
			rel.State = models.Connected
			rel.BackendRequestID = record.ID
		case models.StatusPending:
			if record.RequesterID == m.viewerID {
				rel.State = models.PendingSent
			} else {
				rel.State = models.PendingReceived
			}
			rel.BackendRequestID = record.ID
		case models.StatusRejected:
			rel.State = models.NotConnected
			rel.BackendRequestID = ""
		}
	}

	// A relationship the server no longer reports has been settled elsewhere
	// (request withdrawn, connection removed from another device).
	for subjectID, rel := range m.relationships {
		if seen[subjectID] || m.inFlight[subjectID] {
			continue
		}
		if rel.State != models.NotConnected {
			rel.State = models.NotConnected
			rel.BackendRequestID = ""
		}
	}

	return nil
}

// Reset drops every relationship record. Used on logout.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.relationships = make(map[string]*models.Relationship)
	m.inFlight = make(map[string]bool)
}
