package auth_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/km-arc/go-scoped/components/auth"
	"github.com/km-arc/go-scoped/components/logger"
	"github.com/km-arc/go-scoped/framework/container"
	gohttp "github.com/km-arc/go-scoped/framework/http"
)

var tokens = auth.StaticTokens(map[string]auth.Identity{
	"alice-token": {UserID: "alice", Roles: []string{"admin"}},
})

func newContainer(t *testing.T, out *bytes.Buffer) *container.Container {
	t.Helper()
	c := container.New()
	if err := auth.Declare(c); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	if out != nil {
		if err := logger.Declare(c, zerolog.New(out)); err != nil {
			t.Fatalf("Declare logger: %v", err)
		}
		container.MustMake[*logger.Logger](context.Background(), c, logger.Audit)
	}
	return c
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	gohttp.RequestScope(h).ServeHTTP(rr, r)
	return rr
}

func TestAuthenticate_FillsUserContext(t *testing.T) {
	var audit bytes.Buffer
	c := newContainer(t, &audit)

	var seen *auth.UserContext
	h := auth.Authenticate(c, tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = container.MustMake[*auth.UserContext](r.Context(), c)
	}))

	if rr := serve(h, "alice-token"); rr.Code != http.StatusOK {
		t.Fatalf("status: got %d want 200", rr.Code)
	}
	if !seen.Authenticated() || seen.UserID != "alice" || !seen.HasRole("admin") || seen.Token != "alice-token" {
		t.Errorf("unexpected user: %+v", seen)
	}
	if seen.RequestID == "" {
		t.Error("RequestID should fall back to a generated id")
	}
	if !strings.Contains(audit.String(), `"user_id":"alice"`) {
		t.Errorf("audit log missing user: %s", audit.String())
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	c := newContainer(t, nil)
	called := false
	h := auth.Authenticate(c, tokens)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	for _, token := range []string{"", "wrong"} {
		if rr := serve(h, token); rr.Code != http.StatusUnauthorized {
			t.Errorf("token %q: got %d want 401", token, rr.Code)
		}
	}
	if called {
		t.Error("next handler should not run")
	}
}

func TestIdentify_AllowsAnonymous(t *testing.T) {
	c := newContainer(t, nil)
	var user *auth.UserContext
	h := auth.Identify(c, tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ = auth.Current(r.Context(), c)
	}))

	if rr := serve(h, ""); rr.Code != http.StatusOK {
		t.Fatalf("status: got %d want 200", rr.Code)
	}
	if user == nil || user.Authenticated() {
		t.Errorf("expected an anonymous user, got %+v", user)
	}
}

func TestUserContext_IsolatedPerRequest(t *testing.T) {
	c := newContainer(t, nil)
	var users []*auth.UserContext
	h := auth.Authenticate(c, tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := auth.Current(r.Context(), c)
		users = append(users, u)
	}))

	serve(h, "alice-token")
	serve(h, "alice-token")
	if len(users) != 2 || users[0] == users[1] {
		t.Fatal("each request should get its own UserContext")
	}
	if users[0].RequestID == users[1].RequestID {
		t.Error("request ids should differ")
	}
}

func TestAuthenticate_OutsideRequestExtent(t *testing.T) {
	c := newContainer(t, nil)
	h := auth.Authenticate(c, tokens)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer alice-token")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)

	if rr.Code != http.StatusInternalServerError || !strings.Contains(rr.Body.String(), "NO_ACTIVE_CONTEXT") {
		t.Errorf("got %d %s", rr.Code, rr.Body.String())
	}
}

func TestUserContext_NilSafe(t *testing.T) {
	var u *auth.UserContext
	if u.Authenticated() || u.HasRole("admin") {
		t.Error("nil user should be anonymous")
	}
}
