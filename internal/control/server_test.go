package control

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"bomberbot/internal/assign"
	"bomberbot/internal/runner"
	"bomberbot/internal/state"
	"bomberbot/pkg/strategy"
)

func newTestServer(t *testing.T, secret string) *Server {
	t.Helper()
	store, err := assign.New(filepath.Join(t.TempDir(), "a.json"), strategy.SafeBomberID)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	return NewServer(state.NewCache(), runner.NewControl(1.0), store, strategy.NewRegistry(), secret)
}

func doJSON(t *testing.T, h http.Handler, method, path, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: bad JSON response: %v", method, path, err)
		}
	}
	return rec, out
}

func TestControlPauseResume(t *testing.T) {
	srv := newTestServer(t, "")
	h := srv.Router()

	rec, out := doJSON(t, h, http.MethodPost, "/api/control", `{"paused": true, "tick_sec": 0.5}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("pause: HTTP %d", rec.Code)
	}
	if out["paused"] != true {
		t.Fatalf("pause not reflected: %v", out)
	}
	if out["tick_sec"] != 0.5 {
		t.Fatalf("tick_sec not reflected: %v", out)
	}
	if !srv.control.Paused() {
		t.Fatal("loop control not actually paused")
	}
}

func TestControlAssignments(t *testing.T) {
	h := newTestServer(t, "").Router()

	rec, _ := doJSON(t, h, http.MethodPost, "/api/control/assignments", `{"unit":"u1","strategy":"idle"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("assign: HTTP %d: %s", rec.Code, rec.Body)
	}
	_, out := doJSON(t, h, http.MethodGet, "/api/control/assignments", "", "")
	asg, _ := out["assignments"].(map[string]any)
	if asg["u1"] != "idle" {
		t.Fatalf("assignment not stored: %v", out)
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/api/control/assignments", `{"unit":"u1","strategy":"bogus"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown strategy accepted: HTTP %d", rec.Code)
	}
}

func TestControlAuthGatesMutations(t *testing.T) {
	const secret = "test-secret"
	h := newTestServer(t, secret).Router()

	// Reads stay open.
	rec, _ := doJSON(t, h, http.MethodGet, "/api/control", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("read blocked: HTTP %d", rec.Code)
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/api/control", `{"paused":true}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated mutation allowed: HTTP %d", rec.Code)
	}

	tok, err := NewOperatorToken(secret, "tester")
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	rec, _ = doJSON(t, h, http.MethodPost, "/api/control", `{"paused":true}`, tok)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token rejected: HTTP %d: %s", rec.Code, rec.Body)
	}

	badTok, err := NewOperatorToken("other-secret", "tester")
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	rec, _ = doJSON(t, h, http.MethodPost, "/api/control", `{"paused":true}`, badTok)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong-secret token accepted: HTTP %d", rec.Code)
	}
}

func TestStateEndpointEmpty(t *testing.T) {
	h := newTestServer(t, "").Router()
	rec, out := doJSON(t, h, http.MethodGet, "/api/state", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("state: HTTP %d", rec.Code)
	}
	if out["age_ms"] != float64(-1) {
		t.Fatalf("empty cache age %v, want -1", out["age_ms"])
	}
}
