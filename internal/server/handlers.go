package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/faqnav/internal/faq"
	"github.com/hyperjump/faqnav/internal/models"
	"github.com/hyperjump/faqnav/internal/storage"
	"go.uber.org/zap"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

type documentStatus struct {
	Source   string    `json:"source"`
	Revision string    `json:"revision"`
	LoadedAt time.Time `json:"loaded_at"`
	faq.Stats
}

type transcriptStatus struct {
	Events    int64  `json:"events"`
	Sessions  int64  `json:"sessions"`
	DiskBytes *int64 `json:"disk_usage_bytes,omitempty"`
}

type statusResponse struct {
	Document       documentStatus    `json:"document"`
	ActiveSessions int64             `json:"active_sessions"`
	Transcript     *transcriptStatus `json:"transcript,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	doc := s.store.Current()
	resp := statusResponse{
		Document: documentStatus{
			Source:   doc.Source,
			Revision: doc.Revision,
			LoadedAt: doc.LoadedAt,
			Stats:    doc.Stats(),
		},
		ActiveSessions: s.ActiveSessions(),
	}
	if s.transcript != nil {
		ctx := r.Context()
		events, err := s.transcript.CountEvents(ctx)
		if err != nil {
			s.logger.Error("status: count events failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		sessions, err := s.transcript.CountSessions(ctx)
		if err != nil {
			s.logger.Error("status: count sessions failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		ts := &transcriptStatus{Events: events, Sessions: sessions}
		if p, ok := s.transcript.(interface{ Path() string }); ok {
			if n, err := storage.FileSizeBytes(p.Path(), p.Path()+"-wal", p.Path()+"-shm"); err == nil {
				ts.DiskBytes = &n
			}
		}
		resp.Transcript = ts
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if s.transcript == nil {
		s.respondError(w, http.StatusNotImplemented, "transcript not enabled")
		return
	}
	offset, limit, ok := s.pageParams(w, r)
	if !ok {
		return
	}
	sessions, err := s.transcript.ListSessions(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("list sessions failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sessions == nil {
		sessions = []*models.SessionSummary{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions, "offset": offset, "limit": limit})
}

func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	if s.transcript == nil {
		s.respondError(w, http.StatusNotImplemented, "transcript not enabled")
		return
	}
	id := chi.URLParam(r, "id")
	offset, limit, ok := s.pageParams(w, r)
	if !ok {
		return
	}
	s.logger.Debug("session events request", zap.String("session_id", id), zap.Int("offset", offset), zap.Int("limit", limit))
	events, err := s.transcript.ListEvents(r.Context(), id, offset, limit)
	if err != nil {
		s.logger.Error("list events failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(events) == 0 && offset == 0 {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"session_id": id, "events": events})
}

// pageParams reads offset and limit, replying 400 and returning false when invalid.
func (s *Server) pageParams(w http.ResponseWriter, r *http.Request) (offset, limit int, ok bool) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		s.respondError(w, http.StatusBadRequest, "invalid offset")
		return 0, 0, false
	}
	limit, err = queryInt(r, "limit", defaultPageLimit)
	if err != nil || limit <= 0 {
		s.respondError(w, http.StatusBadRequest, "invalid limit")
		return 0, 0, false
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return offset, limit, true
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
