package stub

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"networkpro-client/internal/models"
)

type connectionRequest struct {
	RequesterID  string `json:"requesterId"`
	ReceiverID   string `json:"receiverId"`
	ConnectionID string `json:"connectionId"`
}

func (s *Server) sendRequest(w http.ResponseWriter, r *http.Request) {
	var req connectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelopeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.RequesterID == "" || req.ReceiverID == "" || req.RequesterID == req.ReceiverID {
		writeEnvelopeError(w, http.StatusBadRequest, "requester and receiver must differ")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.connections {
		if samePair(record, req.RequesterID, req.ReceiverID) && record.Status != models.StatusRejected {
			writeEnvelopeError(w, http.StatusConflict, "connection already exists")
			return
		}
	}

	record := &models.ConnectionRecord{
		ID:          uuid.New().String(),
		RequesterID: req.RequesterID,
		ReceiverID:  req.ReceiverID,
		Status:      models.StatusPending,
	}
	s.connections[record.ID] = record
	writeEnvelope(w, "connection request sent", *record)
}

func (s *Server) acceptRequest(w http.ResponseWriter, r *http.Request) {
	s.settleRequest(w, r, models.StatusAccepted, "connection request accepted")
}

func (s *Server) rejectRequest(w http.ResponseWriter, r *http.Request) {
	s.settleRequest(w, r, models.StatusRejected, "connection request rejected")
}

func (s *Server) settleRequest(w http.ResponseWriter, r *http.Request, status, message string) {
	var req connectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelopeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.connections[req.ConnectionID]
	if !ok {
		writeEnvelopeError(w, http.StatusNotFound, "connection not found")
		return
	}
	if record.Status != models.StatusPending {
		writeEnvelopeError(w, http.StatusConflict, "connection is not pending")
		return
	}

	record.Status = status
	writeEnvelope(w, message, *record)
}

func (s *Server) removeConnection(w http.ResponseWriter, r *http.Request) {
	connectionID := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.connections[connectionID]; !ok {
		writeEnvelopeError(w, http.StatusNotFound, "connection not found")
		return
	}
	delete(s.connections, connectionID)
	writeEnvelope(w, "connection removed", struct{}{})
}

func (s *Server) listConnections(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")

	s.mu.Lock()
	defer s.mu.Unlock()

	records := []models.ConnectionRecord{}
	for _, record := range s.connections {
		if record.RequesterID == userID || record.ReceiverID == userID {
			records = append(records, *record)
		}
	}
	writeEnvelope(w, "connections retrieved", records)
}

func (s *Server) connectionStatus(w http.ResponseWriter, r *http.Request) {
	requesterID := r.URL.Query().Get("requesterId")
	receiverID := r.URL.Query().Get("receiverId")

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.connections {
		if samePair(record, requesterID, receiverID) {
			writeEnvelope(w, "status retrieved", record.Status)
			return
		}
	}
	writeEnvelope(w, "status retrieved", "NONE")
}

func samePair(record *models.ConnectionRecord, a, b string) bool {
	return (record.RequesterID == a && record.ReceiverID == b) ||
		(record.RequesterID == b && record.ReceiverID == a)
}

func writeEnvelope(w http.ResponseWriter, message string, data any) {
	writeJSON(w, map[string]any{
		"message": message,
		"data":    data,
		"status":  "success",
	})
}

func writeEnvelopeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"message": message,
		"status":  "error",
	})
}
