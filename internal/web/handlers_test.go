package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/hpungsan/linkgrab/internal/config"
	"github.com/hpungsan/linkgrab/internal/fetch"
	"github.com/hpungsan/linkgrab/internal/session"
)

// upstreamPage is served by the fake remote site.
const upstreamPage = `<html><body>
<a href="/about">About</a>
<a href='https://other.com/x'>Other</a>
see www.example.org and javascript:void(0)
</body></html>`

type testEnv struct {
	handler  http.Handler
	storage  *session.MemoryStorage
	store    *session.Store
	upstream *httptest.Server
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, upstreamPage)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(upstream.Close)

	storage := session.NewMemoryStorage()
	store := session.New(storage, fetch.NewHTTP(config.DefaultConfig()))

	handler, err := NewHandler(store, log.New(io.Discard), "test")
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	return &testEnv{handler: handler, storage: storage, store: store, upstream: upstream}
}

func (e *testEnv) do(t *testing.T, method, target string, form url.Values, accept string) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleIndex_ColdStartIdle(t *testing.T) {
	env := setupTest(t)

	rec := env.do(t, "GET", "/", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("expected full layout")
	}
	if !strings.Contains(body, "Links: —") {
		t.Error("expected idle status text")
	}
	if !strings.Contains(body, "indicator-idle") {
		t.Error("expected idle indicator")
	}
	if strings.Contains(body, "No links to display.") {
		t.Error("idle panel should not show the no-results placeholder")
	}
}

func TestHandleFetch_RendersLinks(t *testing.T) {
	env := setupTest(t)

	rec := env.do(t, "POST", "/fetch", url.Values{"url": {env.upstream.URL + "/"}}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()

	for _, want := range []string{
		env.upstream.URL + "/about",
		"https://other.com/x",
		"https://www.example.org",
		`target="_blank"`,
		"Links: 3",
		"indicator-success",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in response", want)
		}
	}
}

func TestHandleFetch_JSON(t *testing.T) {
	env := setupTest(t)

	rec := env.do(t, "POST", "/fetch", url.Values{"url": {env.upstream.URL + "/"}}, "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got struct {
		Input  string         `json:"input"`
		Links  []string       `json:"links"`
		Status session.Status `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{env.upstream.URL + "/about", "https://other.com/x", "https://www.example.org"}
	if strings.Join(got.Links, ",") != strings.Join(want, ",") {
		t.Errorf("links = %v, want %v", got.Links, want)
	}
	if got.Status.State != session.StateSuccess || got.Status.Count != 3 {
		t.Errorf("status = %+v, want success/3", got.Status)
	}
}

func TestHandleFetch_EmptyInputAlerts(t *testing.T) {
	env := setupTest(t)

	rec := env.do(t, "POST", "/fetch", url.Values{"url": {"   "}}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `role="alert"`) {
		t.Error("expected alert in response")
	}
	if env.storage.Len() != 0 {
		t.Errorf("storage has %d keys, want 0", env.storage.Len())
	}
}

func TestHandleFetch_UpstreamFailureKeepsPriorLinks(t *testing.T) {
	env := setupTest(t)

	// Successful fetch first
	rec := env.do(t, "POST", "/fetch", url.Values{"url": {env.upstream.URL + "/"}}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("first fetch status = %d", rec.Code)
	}

	// Then a 404
	rec = env.do(t, "POST", "/fetch", url.Values{"url": {env.upstream.URL + "/missing"}}, "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Error: unexpected status: 404") {
		t.Errorf("expected error status text, got: %s", body)
	}
	if !strings.Contains(body, "inactive") {
		t.Error("error indicator should use the inactive treatment")
	}

	state, err := env.store.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if state.Status != 3 {
		t.Errorf("persisted links = %v, want the 3 from the first fetch", state.Links)
	}
	if state.Input != env.upstream.URL+"/missing" {
		t.Errorf("persisted input = %q, want the failed URL", state.Input)
	}

	// Reload restores the earlier successful result
	rec = env.do(t, "GET", "/", nil, "")
	if !strings.Contains(rec.Body.String(), "Links: 3") {
		t.Error("reload should restore the last successful links")
	}
}

func TestHandleClear(t *testing.T) {
	env := setupTest(t)
	env.do(t, "POST", "/fetch", url.Values{"url": {env.upstream.URL + "/"}}, "")

	rec := env.do(t, "POST", "/clear", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if env.storage.Len() != 0 {
		t.Errorf("storage has %d keys after clear, want 0", env.storage.Len())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Links: —") || !strings.Contains(body, "indicator-idle") {
		t.Error("expected idle panel after clear")
	}
	if strings.Contains(body, "other.com") {
		t.Error("links should be gone after clear")
	}
}

func TestHandleIndex_CorruptStateRepaired(t *testing.T) {
	env := setupTest(t)
	if err := env.storage.Set(context.Background(), session.KeyLinks, "{broken"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	rec := env.do(t, "GET", "/", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "indicator-idle") {
		t.Error("expected idle panel after repair")
	}
	if _, ok, _ := env.storage.Get(context.Background(), session.KeyLinks); ok {
		t.Error("corrupt links should have been removed")
	}
}

func TestHandleState(t *testing.T) {
	env := setupTest(t)
	env.do(t, "POST", "/fetch", url.Values{"url": {env.upstream.URL + "/"}}, "")

	rec := env.do(t, "GET", "/api/state", nil, "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var state session.SessionState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.Status != len(state.Links) || state.Status != 3 {
		t.Errorf("status = %d, links = %v", state.Status, state.Links)
	}
	if !strings.Contains(state.Content, "About") {
		t.Error("expected raw content in state")
	}
}

func TestHandleState_CorruptJSONError(t *testing.T) {
	env := setupTest(t)
	_ = env.storage.Set(context.Background(), session.KeyLinks, "nope")

	rec := env.do(t, "GET", "/api/state", nil, "application/json")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "CORRUPT_STATE") {
		t.Errorf("expected CORRUPT_STATE code, got %s", rec.Body.String())
	}
}

func TestSecurityHeaders(t *testing.T) {
	env := setupTest(t)

	rec := env.do(t, "GET", "/", nil, "")
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("missing X-Frame-Options")
	}
	if !strings.Contains(rec.Header().Get("Content-Security-Policy"), "default-src 'self'") {
		t.Error("missing CSP")
	}
}

func TestStaticCSS(t *testing.T) {
	env := setupTest(t)

	rec := env.do(t, "GET", "/static/style.css", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ".link-row") {
		t.Error("expected stylesheet body")
	}
}

func TestHtmxReturnsContentOnly(t *testing.T) {
	env := setupTest(t)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if strings.Contains(rec.Body.String(), "<!DOCTYPE html>") {
		t.Error("htmx response should not contain full layout")
	}
	if !strings.Contains(rec.Body.String(), "data-container") {
		t.Error("htmx response should contain the panel")
	}
}
