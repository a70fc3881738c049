package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shivansh-labs/namegate/internal/analyser"
	"github.com/shivansh-labs/namegate/internal/history"
	"github.com/shivansh-labs/namegate/internal/model"
	"github.com/shivansh-labs/namegate/internal/portal"
	"github.com/shivansh-labs/namegate/internal/webdriver"
)

// envelope is the uniform response wrapper.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Data: nil, Error: message})
}

// userMessage maps automation failures onto messages safe to show the
// frontend. Raw driver errors stay in the server log only.
func userMessage(err error) string {
	switch {
	case errors.Is(err, webdriver.ErrTimeout):
		return "A required element on the page did not load in time. The portal may be experiencing high load or is unresponsive."
	case errors.Is(err, webdriver.ErrNoSuchElement):
		return "Automation failed because a required element could not be found. The portal's structure may have been updated."
	case errors.Is(err, webdriver.ErrNotInteractable):
		return "Automation failed because an element was blocked by another element on the page (like a pop-up or loading spinner)."
	case errors.Is(err, portal.ErrStepFailed):
		return "The automation process failed at a critical step. Please try again in a few moments."
	default:
		return "The automation script failed. This could be due to the portal being slow, an invalid configuration, or an unexpected change on the website. Please try again in a few moments."
	}
}

// handleCheckName runs the full browser check for the first requested
// name and records the outcome in history.
func (s *Server) handleCheckName(w http.ResponseWriter, r *http.Request) {
	var payload model.CheckPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}
	if err := payload.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := payload.Names[0]
	start := time.Now()

	result, err := s.Checker.Check(r.Context(), name, payload.CheckType)
	if err != nil {
		s.Logger.Error("name check failed", "name", name, "error", err)
		// The raw error goes to history for operators; the response
		// carries only the user-facing message.
		s.record(r, history.Entry{
			Name:       name,
			CheckType:  string(payload.CheckType),
			DurationMS: time.Since(start).Milliseconds(),
			Error:      err.Error(),
		})
		writeError(w, http.StatusOK, userMessage(err))
		return
	}

	s.record(r, history.Entry{
		Name:       name,
		CheckType:  string(payload.CheckType),
		Verdict:    string(result.Verdict),
		DurationMS: time.Since(start).Milliseconds(),
	})
	writeSuccess(w, result)
}

// handleConflictCheck analyses caller-supplied conflict data without a
// browser. Results are cached by payload digest, so repeated analysis
// of the same scrape is free.
func (s *Server) handleConflictCheck(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}

	var in analyser.Input
	if err := json.Unmarshal(raw, &in); err != nil {
		writeError(w, http.StatusBadRequest, "conflict data has an unexpected shape: "+err.Error())
		return
	}
	a := analyser.New(&in, s.Logger)

	cacheKey := map[string]json.RawMessage{"conflict_json": raw}
	if cached, ok := s.Cache.Get(r.Context(), cacheKey); ok {
		s.Logger.Info("conflict check served from cache")
		s.record(r, history.Entry{
			Name:      a.BaseName(),
			CheckType: string(model.CheckCompany),
			Verdict:   string(cached.Verdict),
			Cached:    true,
		})
		writeSuccess(w, cached)
		return
	}
	result, err := a.Analyse(r.Context(), model.CheckCompany, s.Adviser)
	if err != nil {
		s.Logger.Error("conflict analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, "conflict analysis failed")
		return
	}

	s.Cache.Set(r.Context(), cacheKey, result)
	s.record(r, history.Entry{
		Name:      a.BaseName(),
		CheckType: string(model.CheckCompany),
		Verdict:   string(result.Verdict),
	})
	writeSuccess(w, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "healthy",
		"version":         Version,
		"cache_in_memory": s.Cache.InMemory(),
	})
}

func (s *Server) handleDocsInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"primary_endpoint": "/conflict-check",
		"description":      "Use /conflict-check for conflict analysis and /check_name for the full browser check",
		"frontend":         "/",
		"health":           "/health",
		"history":          "/history",
	})
}

// handleHistory lists recent checks for operators.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.History.Recent(r.Context(), 50)
	if err != nil {
		s.Logger.Error("loading history failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeSuccess(w, entries)
}

// record writes a history entry, logging rather than failing the
// request when the store rejects it.
func (s *Server) record(r *http.Request, e history.Entry) {
	if err := s.History.Record(r.Context(), e); err != nil {
		s.Logger.Warn("failed to record check in history", "error", err)
	}
}
