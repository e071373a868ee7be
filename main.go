package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/km-arc/go-scoped/components"
	"github.com/km-arc/go-scoped/components/auth"
	"github.com/km-arc/go-scoped/components/greeting"
	"github.com/km-arc/go-scoped/framework/app"
	"github.com/km-arc/go-scoped/framework/config"
	"github.com/km-arc/go-scoped/framework/container"
	gohttp "github.com/km-arc/go-scoped/framework/http"
	"github.com/km-arc/go-scoped/framework/routing"
)

// demoTokens stands in for a real token store.
var demoTokens = auth.StaticTokens(map[string]auth.Identity{
	"alice-token": {UserID: "alice", Roles: []string{"admin"}},
	"bob-token":   {UserID: "bob", Roles: []string{"reader"}},
})

func main() {
	repo := config.NewRepository() // loads .env automatically
	cfg := config.FromRepository(repo)
	if path := repo.Get("APP_CONFIG", ""); path != "" {
		fileCfg, err := config.LoadFile(path)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = fileCfg
	}

	application, err := newApplication(cfg, app.WithProviders(&components.Provider{}))
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		application.Logger.Fatal().Err(err).Msg("server error")
	}
}

func newApplication(cfg *config.Config, opts ...app.Option) (*app.Application, error) {
	application, err := app.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	routes(application)
	return application, nil
}

func routes(application *app.Application) {
	c := application.Container
	r := application.Router

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		gohttp.NewResponse(w).Success(map[string]any{"message": "Welcome to " + application.Config.App.Name})
	})

	// ── Authenticated ─────────────────────────────────────────────────────────

	r.Group(func(protected *routing.Router) {
		protected.Middleware(auth.Authenticate(c, demoTokens))

		protected.Get("/whoami", func(w http.ResponseWriter, req *http.Request) {
			res := gohttp.NewResponse(w)
			user, err := container.Make[*auth.UserContext](req.Context(), c)
			if err != nil {
				res.ContainerError(err)
				return
			}
			res.Success(map[string]any{
				"user_id":    user.UserID,
				"roles":      user.Roles,
				"request_id": user.RequestID,
			})
		})
	})

	// ── Anonymous allowed ─────────────────────────────────────────────────────

	r.Group(func(open *routing.Router) {
		open.Middleware(auth.Identify(c, demoTokens))

		open.Get("/greet", func(w http.ResponseWriter, req *http.Request) {
			request := gohttp.NewRequest(req)
			res := gohttp.NewResponse(w)

			greeter, err := container.Make[*greeting.Greeter](req.Context(), c, request.Query("salutation"))
			if err != nil {
				res.ContainerError(err)
				return
			}
			res.Success(map[string]any{"greeting": greeter.Greet(request.Query("name"))})
		})
	})

	if application.IsDebug() {
		r.Get("/debug/registry", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			c.FprintRegistry(req.Context(), w)
		})
	}
}
