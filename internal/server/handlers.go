package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/leapstack-labs/mlsmell/internal/engine"
	"github.com/leapstack-labs/mlsmell/pkg/core"
	"github.com/leapstack-labs/mlsmell/pkg/smell"
)

const (
	maxSourceBytes = 1 << 20
	maxRuns        = 100
)

// LintRequest is the body of POST /api/lint.
type LintRequest struct {
	Path   string `json:"path"`
	Source string `json:"source"`
	// FailOn, when set, only keeps diagnostics at least this severe.
	FailOn string `json:"fail_on,omitempty"`
}

// LintResponse is the reply to POST /api/lint.
type LintResponse struct {
	Fingerprint string        `json:"fingerprint"`
	Report      *smell.Report `json:"report"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type handlers struct {
	engine *engine.Engine
	logger *slog.Logger
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) listRules(w http.ResponseWriter, _ *http.Request) {
	defs := smell.Definitions()
	infos := make([]core.RuleInfo, 0, len(defs))
	for _, def := range defs {
		infos = append(infos, def.Info())
	}
	writeJSON(w, http.StatusOK, infos)
}

func (h *handlers) getRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	def, ok := smell.Lookup(id)
	if !ok {
		h.fail(w, r, http.StatusNotFound, "unknown rule: "+id)
		return
	}
	writeJSON(w, http.StatusOK, def.Info())
}

func (h *handlers) lint(w http.ResponseWriter, r *http.Request) {
	var req LintRequest
	body := http.MaxBytesReader(w, r.Body, maxSourceBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, http.StatusRequestEntityTooLarge, "source too large")
			return
		}
		if errors.Is(err, io.EOF) {
			h.fail(w, r, http.StatusBadRequest, "empty request body")
			return
		}
		h.fail(w, r, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	path := strings.TrimSpace(req.Path)
	if path == "" {
		path = "<stdin>.py"
	}

	report, err := h.engine.LintSource(r.Context(), path, []byte(req.Source))
	if err != nil {
		h.logger.Error("lint request failed", "path", path, "error", err)
		h.fail(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	if req.FailOn != "" {
		threshold, ok := core.ParseSeverity(req.FailOn)
		if !ok {
			h.fail(w, r, http.StatusBadRequest, "invalid severity: "+req.FailOn)
			return
		}
		report = report.Filter(threshold)
	}

	writeJSON(w, http.StatusOK, LintResponse{
		Fingerprint: h.engine.Fingerprint(),
		Report:      report,
	})
}

func (h *handlers) listRuns(w http.ResponseWriter, r *http.Request) {
	store := h.engine.Store()
	if store == nil {
		h.fail(w, r, http.StatusServiceUnavailable, "cache is disabled")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.fail(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRuns)
	}

	runs, err := store.RecentRuns(limit)
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		h.fail(w, r, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []*core.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
