package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/desertthunder/carekeep/internal/models"
	"github.com/desertthunder/carekeep/internal/shared"
)

// assigned fields are owned by the collaborator and ignored in request bodies.
var assigned = []string{"id", "created_at"}

func datasetParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	dataset := chi.URLParam(r, "dataset")
	if !models.IsDataset(dataset) {
		writeError(w, http.StatusNotFound, "unknown dataset "+dataset)
		return "", false
	}
	return dataset, true
}

func decodePayload(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	payload := map[string]any{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return nil, false
	}
	for _, k := range assigned {
		delete(payload, k)
	}
	return payload, true
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	dataset, ok := datasetParam(w, r)
	if !ok {
		return
	}
	user, _ := UserFrom(r.Context())

	records, err := s.records.List(map[string]any{"user_id": user.ID(), "dataset": dataset})
	if err != nil {
		s.logger.Error("list failed", "dataset", dataset, "error", err)
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}

	wire := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		wire = append(wire, rec.Wire())
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": wire})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	dataset, ok := datasetParam(w, r)
	if !ok {
		return
	}
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	user, _ := UserFrom(r.Context())

	rec := models.NewStoredRecord(user.ID(), dataset, payload)
	rec.SetCreatedAt(s.now().UTC())
	rec.SetUpdatedAt(rec.CreatedAt())
	if err := s.records.Create(rec); err != nil {
		s.logger.Error("create failed", "dataset", dataset, "error", err)
		writeError(w, http.StatusInternalServerError, "create failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"record": rec.Wire()})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	dataset, ok := datasetParam(w, r)
	if !ok {
		return
	}
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	user, _ := UserFrom(r.Context())

	rec, err := s.records.GetOwned(user.ID(), dataset, chi.URLParam(r, "id"))
	if err != nil {
		s.respondLookup(w, dataset, err)
		return
	}

	rec.SetPayload(payload)
	if err := s.records.Update(rec); err != nil {
		s.respondLookup(w, dataset, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"record": rec.Wire()})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	dataset, ok := datasetParam(w, r)
	if !ok {
		return
	}
	user, _ := UserFrom(r.Context())

	if err := s.records.DeleteOwned(user.ID(), dataset, chi.URLParam(r, "id")); err != nil {
		s.respondLookup(w, dataset, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) respondLookup(w http.ResponseWriter, dataset string, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	s.logger.Error("record lookup failed", "dataset", dataset, "error", err)
	writeError(w, http.StatusInternalServerError, "record lookup failed")
}
