package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/riskflow/pkg/errors"
	"github.com/matzehuels/riskflow/pkg/observability"
)

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "snapshot store not configured"))
		return false
	}
	return true
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	snap, err := s.store.Save(r.Context(), sess.Model())
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("snapshot saved", "session", sess.ID, "snapshot", snap.ID)
	writeJSON(w, http.StatusCreated, snap.Summary())
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	list, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	snap, err := s.store.Load(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleLoadSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	snap, err := s.store.Load(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		writeError(w, err)
		return
	}
	sess, err := s.sessions.Create(snap.Model)
	if err != nil {
		writeError(w, err)
		return
	}
	for _, v := range snap.Model.Vertices {
		observability.Graph().OnVertexAdded(r.Context(), sess.ID, v.ID)
	}
	writeJSON(w, http.StatusCreated, graphResponse{graphInfo: sessionInfo(sess), Model: sess.Model()})
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "sid")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
