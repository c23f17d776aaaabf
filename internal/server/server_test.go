package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/mlsmell/internal/engine"
	"github.com/leapstack-labs/mlsmell/internal/state"
	"github.com/leapstack-labs/mlsmell/internal/testutil"
	"github.com/leapstack-labs/mlsmell/pkg/core"
	_ "github.com/leapstack-labs/mlsmell/pkg/smell/rules" // register rules
)

const smellySource = "df = df.dropna()\nnp.random.shuffle(rows)\n"

func newTestServer(t *testing.T, withStore bool) (*Server, *engine.Engine) {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	parser := &testutil.LineParser{}

	cfg := engine.Config{
		NewParser: func() engine.SourceParser { return parser },
		Logger:    logger,
	}
	if withStore {
		store := state.NewSQLiteStore(logger)
		require.NoError(t, store.Open(":memory:"))
		require.NoError(t, store.InitSchema())
		t.Cleanup(func() { _ = store.Close() })
		cfg.Store = store
	}

	eng, err := engine.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	return NewServer(Config{Engine: eng, Logger: logger}), eng
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, false)
	rec := do(t, srv.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListRules(t *testing.T) {
	srv, _ := newTestServer(t, false)
	rec := do(t, srv.Handler(), http.MethodGet, "/api/rules", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var infos []core.RuleInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	require.Len(t, infos, 4)

	codes := make([]string, 0, len(infos))
	for _, info := range infos {
		codes = append(codes, info.Code)
	}
	assert.ElementsMatch(t, []string{"W9001", "W9002", "W9003", "W9004"}, codes)
}

func TestGetRule(t *testing.T) {
	srv, _ := newTestServer(t, false)

	tests := []struct {
		name       string
		id         string
		wantStatus int
		wantID     string
	}{
		{name: "by id", id: "silent-dropna", wantStatus: http.StatusOK, wantID: "silent-dropna"},
		{name: "by code", id: "W9001", wantStatus: http.StatusOK, wantID: "hardcoded-hyperparameter"},
		{name: "unknown", id: "nope", wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv.Handler(), http.MethodGet, "/api/rules/"+tt.id, "")
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantID == "" {
				assert.Contains(t, rec.Body.String(), "unknown rule")
				return
			}
			var info core.RuleInfo
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
			assert.Equal(t, tt.wantID, info.ID)
		})
	}
}

func TestLint(t *testing.T) {
	srv, eng := newTestServer(t, false)

	body, err := json.Marshal(LintRequest{Path: "train.py", Source: smellySource})
	require.NoError(t, err)

	rec := do(t, srv.Handler(), http.MethodPost, "/api/lint", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp LintResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, eng.Fingerprint(), resp.Fingerprint)
	require.NotNil(t, resp.Report)
	assert.Equal(t, "train.py", resp.Report.File)

	ids := make([]string, 0, len(resp.Report.Diagnostics))
	for _, d := range resp.Report.Diagnostics {
		ids = append(ids, d.RuleID)
	}
	assert.Equal(t, []string{"silent-dropna", "unseeded-randomness"}, ids)
}

func TestLint_FailOnFilters(t *testing.T) {
	srv, _ := newTestServer(t, false)

	rec := do(t, srv.Handler(), http.MethodPost, "/api/lint",
		`{"path":"train.py","source":"df = df.dropna()\n","fail_on":"error"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LintResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Report.Diagnostics)
}

func TestLint_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t, false)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "empty body", body: "", wantStatus: http.StatusBadRequest},
		{name: "not json", body: "{", wantStatus: http.StatusBadRequest},
		{name: "bad severity", body: `{"source":"x = 1","fail_on":"loud"}`, wantStatus: http.StatusBadRequest},
		{name: "too large", body: `{"source":"` + strings.Repeat("x", maxSourceBytes) + `"}`, wantStatus: http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv.Handler(), http.MethodPost, "/api/lint", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestListRuns(t *testing.T) {
	srv, eng := newTestServer(t, true)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/runs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	run, err := eng.Store().CreateRun(eng.Fingerprint(), []string{"."})
	require.NoError(t, err)

	rec = do(t, srv.Handler(), http.MethodGet, "/api/runs?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var runs []core.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)

	rec = do(t, srv.Handler(), http.MethodGet, "/api/runs?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRuns_NoStore(t *testing.T) {
	srv, _ := newTestServer(t, false)
	rec := do(t, srv.Handler(), http.MethodGet, "/api/runs", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServe_Shutdown(t *testing.T) {
	srv, _ := newTestServer(t, false)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.serve(ctx, ln) }()

	resp, err := http.Post("http://"+ln.Addr().String()+"/api/lint", "application/json",
		bytes.NewBufferString(`{"path":"train.py","source":"x = 1\n"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
