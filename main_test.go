package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/km-arc/go-scoped/components"
	"github.com/km-arc/go-scoped/framework/app"
	"github.com/km-arc/go-scoped/framework/config"
)

func newServer(t *testing.T, debug bool) http.Handler {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Name: "demo", Env: "testing", Debug: debug, Port: "0"},
		Log: config.LogConfig{Level: "disabled", Format: "json"},
	}
	application, err := newApplication(cfg,
		app.WithLogger(zerolog.Nop()),
		app.WithProviders(&components.Provider{}),
	)
	if err != nil {
		t.Fatalf("newApplication: %v", err)
	}
	h, err := application.Handler()
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}
	return h
}

func get(t *testing.T, h http.Handler, path, token string) (int, map[string]any, string) {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)

	raw := rr.Body.String()
	var body map[string]any
	_ = json.Unmarshal([]byte(raw), &body)
	data, _ := body["data"].(map[string]any)
	return rr.Code, data, raw
}

func TestWhoami(t *testing.T) {
	h := newServer(t, false)

	code, data, _ := get(t, h, "/whoami", "alice-token")
	if code != http.StatusOK || data["user_id"] != "alice" {
		t.Fatalf("got %d %v", code, data)
	}
	firstID := data["request_id"]

	_, data, _ = get(t, h, "/whoami", "bob-token")
	if data["user_id"] != "bob" {
		t.Errorf("second request leaked user: %v", data)
	}
	if data["request_id"] == firstID || data["request_id"] == "" {
		t.Errorf("request ids should be distinct: %v vs %v", firstID, data["request_id"])
	}

	if code, _, _ := get(t, h, "/whoami", ""); code != http.StatusUnauthorized {
		t.Errorf("anonymous whoami: got %d want 401", code)
	}
}

func TestGreet(t *testing.T) {
	h := newServer(t, false)

	tests := []struct {
		path, token, want string
	}{
		{"/greet", "", "Hello, stranger!"},
		{"/greet", "alice-token", "Hello, alice!"},
		{"/greet?name=Zoe&salutation=Hi", "bob-token", "Hi, Zoe!"},
	}
	for _, tt := range tests {
		t.Run(tt.path+" "+tt.token, func(t *testing.T) {
			code, data, raw := get(t, h, tt.path, tt.token)
			if code != http.StatusOK || data["greeting"] != tt.want {
				t.Errorf("got %d %s want %q", code, raw, tt.want)
			}
		})
	}
}

func TestDebugRegistry(t *testing.T) {
	if code, _, _ := get(t, newServer(t, false), "/debug/registry", ""); code != http.StatusNotFound {
		t.Errorf("registry dump should be off without debug, got %d", code)
	}

	code, _, raw := get(t, newServer(t, true), "/debug/registry", "")
	if code != http.StatusOK {
		t.Fatalf("got %d", code)
	}
	for _, want := range []string{"*greeting.Greeter", "prototype", "audit"} {
		if !strings.Contains(raw, want) {
			t.Errorf("dump missing %q:\n%s", want, raw)
		}
	}
}
