package http_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gohttp "github.com/km-arc/go-scoped/framework/http"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newJSONRequest(t *testing.T, body string) *gohttp.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return gohttp.NewRequest(req)
}

// ── Bind ─────────────────────────────────────────────────────────────────────

func TestRequest_Bind(t *testing.T) {
	var u struct {
		Name string `json:"name"`
	}
	if err := newJSONRequest(t, `{"name":"Alice"}`).Bind(&u); err != nil {
		t.Fatalf("Bind error: %v", err)
	}
	if u.Name != "Alice" {
		t.Errorf("Name: got %q want %q", u.Name, "Alice")
	}
}

func TestRequest_Bind_EmptyBody(t *testing.T) {
	var v any
	if err := newJSONRequest(t, "").Bind(&v); err == nil {
		t.Error("expected error for empty body, got nil")
	}
}

func TestRequest_Bind_InvalidJSON(t *testing.T) {
	var v map[string]any
	if err := newJSONRequest(t, `{bad json}`).Bind(&v); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

// ── Query / headers ──────────────────────────────────────────────────────────

func TestRequest_Query(t *testing.T) {
	req := gohttp.NewRequest(httptest.NewRequest(http.MethodGet, "/?page=2", nil))

	if got := req.Query("page"); got != "2" {
		t.Errorf("Query page: got %q want %q", got, "2")
	}
	if got := req.Query("limit", "10"); got != "10" {
		t.Errorf("Query fallback: got %q want %q", got, "10")
	}
}

func TestRequest_BearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer abc123")
	if got := gohttp.NewRequest(r).BearerToken(); got != "abc123" {
		t.Errorf("BearerToken: got %q want abc123", got)
	}

	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.Header.Set("Authorization", "Basic xyz")
	if got := gohttp.NewRequest(r2).BearerToken(); got != "" {
		t.Errorf("BearerToken: got %q want empty", got)
	}
}

func TestRequest_MethodPathHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodPut, "/users/1", nil)
	r.Header.Set("X-Custom", "yes")
	req := gohttp.NewRequest(r)

	if req.Method() != http.MethodPut || req.Path() != "/users/1" || req.Header("X-Custom") != "yes" {
		t.Errorf("got %s %s %q", req.Method(), req.Path(), req.Header("X-Custom"))
	}
	if req.RequestID() != "" {
		t.Error("RequestID should be empty without the RequestID middleware")
	}
}
