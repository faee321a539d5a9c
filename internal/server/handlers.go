package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/draft"
	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/scoring"
)

type flowResponse struct {
	Name                  string                 `json:"name"`
	ClearIdentityOnSubmit bool                   `json:"clearIdentityOnSubmit"`
	Steps                 []model.StepDescriptor `json:"steps"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if pinger, ok := s.backend.(Pinger); ok {
		if err := pinger.Ping(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Draft backend is unreachable", nil)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleContract(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(contractDocument)
}

func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	rec, err := s.decodeRecord(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := s.backend.Create(r.Context(), rec)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, draft.Envelope{ID: id, Record: rec})
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	id := draftID(r)
	rec, err := s.backend.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft.Envelope{ID: id, Record: rec})
}

// handleReplaceDraft stores the full payload over an existing draft.
// Replaying the same payload leaves the draft unchanged.
func (s *Server) handleReplaceDraft(w http.ResponseWriter, r *http.Request) {
	id := draftID(r)
	rec, err := s.decodeRecord(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.backend.Update(r.Context(), id, rec); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft.Envelope{ID: id, Record: rec})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	quiz := s.catalog.Quiz()
	if quiz == nil {
		writeError(w, http.StatusNotFound, "QUIZ_NOT_FOUND", "No quiz is configured", nil)
		return
	}

	raw, err := readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.contract.validate(schemaAnswerSet, "INVALID_ANSWERS", raw); err != nil {
		s.fail(w, r, err)
		return
	}
	var answers scoring.AnswerSet
	if err := json.Unmarshal(raw, &answers); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Request body is not valid JSON", nil)
		return
	}

	result := quiz.Score(answers)
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "", "json":
		writeJSON(w, http.StatusOK, result)
	case "text":
		text, err := s.report.Score(result)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(text))
	default:
		writeError(w, http.StatusBadRequest, "INVALID_FORMAT", "format must be json or text", nil)
	}
}

func (s *Server) handleListFlows(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"flows": s.catalog.FlowNames()})
}

func (s *Server) handleGetFlow(w http.ResponseWriter, r *http.Request) {
	reg, err := s.catalog.Flow(chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flowResponse{
		Name:                  reg.Name(),
		ClearIdentityOnSubmit: reg.ClearIdentityOnSubmit(),
		Steps:                 reg.Steps(),
	})
}

func (s *Server) decodeRecord(w http.ResponseWriter, r *http.Request) (draft.Record, error) {
	raw, err := readBody(w, r)
	if err != nil {
		return draft.Record{}, err
	}
	if err := s.contract.validate(schemaDraftRecord, "INVALID_DRAFT", raw); err != nil {
		return draft.Record{}, err
	}
	var rec draft.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return draft.Record{}, apiError(http.StatusBadRequest, "INVALID_BODY", "Request body is not valid JSON", nil)
	}
	return rec, nil
}

func draftID(r *http.Request) draft.Identity {
	return draft.Identity(chi.URLParam(r, "id"))
}
