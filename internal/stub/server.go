// Package stub implements an in-memory user-service and connection-service
// used for local development and end-to-end tests. It speaks the same REST
// contract the production backends do, including the image host paths.
package stub

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"networkpro-client/internal/models"
)

// Server holds the in-memory state behind the stub REST API.
type Server struct {
	mu          sync.Mutex
	profiles    map[string]map[string]any
	privacy     map[string]models.PrivacySettings
	connections map[string]*models.ConnectionRecord
	images      map[string][]byte // path -> bytes served by the image host
	baseURL     string
}

// NewServer creates an empty stub backend. baseURL is the address the image
// host is reachable at; it prefixes every upload URL the server hands out.
func NewServer(baseURL string) *Server {
	return &Server{
		profiles:    make(map[string]map[string]any),
		privacy:     make(map[string]models.PrivacySettings),
		connections: make(map[string]*models.ConnectionRecord),
		images:      make(map[string][]byte),
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

// SetBaseURL rebinds the image host prefix. Needed by tests that only know
// the listener address after the server starts.
func (s *Server) SetBaseURL(baseURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseURL = strings.TrimRight(baseURL, "/")
}

// SeedProfile loads one profile into the store.
func (s *Server) SeedProfile(userID string, fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields["id"] = userID
	s.profiles[userID] = fields
}

// SeedConnection loads one connection record and returns its id.
func (s *Server) SeedConnection(requesterID, receiverID, status string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New().String()
	s.connections[id] = &models.ConnectionRecord{
		ID:          id,
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Status:      status,
	}
	return id
}

// NewRouter wires every route of the stub backend.
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods("GET")

	users := r.PathPrefix("/api/v1/users").Subrouter()
	users.HandleFunc("/search", s.searchUsers).Methods("POST")
	users.HandleFunc("/{id}", s.getUser).Methods("GET")
	users.HandleFunc("/{id}", s.updateUser).Methods("PUT")
	users.HandleFunc("/{id}/profile-picture", s.uploadImage("profile-pictures", "profilePictureUrl")).Methods("POST")
	users.HandleFunc("/{id}/profile-picture", s.deleteImage("profilePictureUrl")).Methods("DELETE")
	users.HandleFunc("/{id}/banner-image", s.uploadImage("banner-images", "headerImage")).Methods("POST")
	users.HandleFunc("/{id}/banner-image", s.deleteImage("headerImage")).Methods("DELETE")
	users.HandleFunc("/{id}/privacy-settings", s.getPrivacy).Methods("GET")
	users.HandleFunc("/{id}/privacy-settings", s.updatePrivacy).Methods("PUT")
	users.HandleFunc("/{id}/completion", s.getCompletion).Methods("GET")

	conns := r.PathPrefix("/api/v1/connections").Subrouter()
	conns.HandleFunc("/request", s.sendRequest).Methods("POST")
	conns.HandleFunc("/accept", s.acceptRequest).Methods("POST")
	conns.HandleFunc("/reject", s.rejectRequest).Methods("POST")
	conns.HandleFunc("/status", s.connectionStatus).Methods("GET")
	conns.HandleFunc("", s.listConnections).Methods("GET")
	conns.HandleFunc("/{id}", s.removeConnection).Methods("DELETE")

	// Image host: uploads are served back for reachability probes.
	r.PathPrefix("/profile-pictures/").HandlerFunc(s.serveImage).Methods("GET", "HEAD")
	r.PathPrefix("/banner-images/").HandlerFunc(s.serveImage).Methods("GET", "HEAD")

	return r
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	s.mu.Lock()
	profile, ok := s.profiles[userID]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	writeJSON(w, profile)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	profile, ok := s.profiles[userID]
	if !ok {
		s.mu.Unlock()
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	for key, value := range fields {
		if key == "id" {
			continue
		}
		profile[key] = value
	}
	s.mu.Unlock()

	writeJSON(w, profile)
}

func (s *Server) uploadImage(prefix, field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := mux.Vars(r)["id"]

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file part", http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "failed to read upload", http.StatusInternalServerError)
			return
		}

		path := fmt.Sprintf("/%s/%s/%s", prefix, userID, header.Filename)

		s.mu.Lock()
		profile, ok := s.profiles[userID]
		if !ok {
			s.mu.Unlock()
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		s.images[path] = data
		imageURL := s.baseURL + path
		profile[field] = imageURL
		s.mu.Unlock()

		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, imageURL)
	}
}

func (s *Server) deleteImage(field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := mux.Vars(r)["id"]

		s.mu.Lock()
		profile, ok := s.profiles[userID]
		if ok {
			delete(profile, field)
		}
		s.mu.Unlock()
		if !ok {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) serveImage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data, ok := s.images[r.URL.Path]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	if r.Method == http.MethodHead {
		return
	}
	w.Write(data)
}

func (s *Server) getPrivacy(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	s.mu.Lock()
	settings, ok := s.privacy[userID]
	s.mu.Unlock()
	if !ok {
		// Backend defaults: everything visible, everything allowed.
		settings = models.PrivacySettings{
			ProfileVisible:          true,
			ShowWorkExperience:      true,
			ShowEducation:           true,
			ShowCertifications:      true,
			AllowConnectionRequests: true,
			AllowMessages:           true,
		}
	}
	writeJSON(w, settings)
}

func (s *Server) updatePrivacy(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	var settings models.PrivacySettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.privacy[userID] = settings
	s.mu.Unlock()
	writeJSON(w, settings)
}

func (s *Server) getCompletion(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	s.mu.Lock()
	profile, ok := s.profiles[userID]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	checked := []string{"firstName", "headline", "location", "summary", "skills", "profilePictureUrl"}
	var missing []string
	for _, field := range checked {
		if isEmptyField(profile[field]) {
			missing = append(missing, field)
		}
	}
	completion := models.ProfileCompletion{
		CompletionPercentage: (len(checked) - len(missing)) * 100 / len(checked),
		IsComplete:           len(missing) == 0,
		MissingFields:        missing,
	}
	writeJSON(w, completion)
}

func (s *Server) searchUsers(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	keyword := strings.ToLower(query.Keyword)

	s.mu.Lock()
	var results []map[string]any
	for _, profile := range s.profiles {
		if keyword == "" || profileMatches(profile, keyword) {
			results = append(results, profile)
		}
	}
	s.mu.Unlock()

	if results == nil {
		results = []map[string]any{}
	}
	writeJSON(w, results)
}

func profileMatches(profile map[string]any, keyword string) bool {
	for _, field := range []string{"firstName", "lastName", "fullName", "headline", "currentCompany", "location"} {
		if value, ok := profile[field].(string); ok && strings.Contains(strings.ToLower(value), keyword) {
			return true
		}
	}
	return false
}

func isEmptyField(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	}
	return false
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}
