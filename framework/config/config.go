package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct.
type Config struct {
	App AppConfig `toml:"app"`
	Log LogConfig `toml:"log"`
}

type AppConfig struct {
	Name  string `toml:"name"`
	Env   string `toml:"env"` // local | production | testing
	Debug bool   `toml:"debug"`
	Port  string `toml:"port"`
}

type LogConfig struct {
	Level  string `toml:"level"`  // trace | debug | info | warn | error | disabled
	Format string `toml:"format"` // console | json
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	return FromRepository(NewRepository(envFiles...))
}

// FromRepository builds a Config from defaults overridden by the values r
// reports. Keys r has already cached are not re-read.
//
//	repo := config.NewRepository()
//	cfg := config.FromRepository(repo)
func FromRepository(r *Repository) *Config {
	return fromRepository(r, defaults())
}

// LoadFile decodes a TOML file, then applies .env and environment overrides
// on top. Environment variables always win over the file.
//
//	# config.toml
//	[app]
//	name = "registry-demo"
//	[log]
//	level = "debug"
func LoadFile(path string, envFiles ...string) (*Config, error) {
	cfg := defaults()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if len(envFiles) > 0 {
		_ = godotenv.Load(envFiles...)
	}
	return fromRepository(newRepository(), cfg), nil
}

func defaults() Config {
	return Config{
		App: AppConfig{Name: "GoScoped", Env: "local", Debug: true, Port: "8000"},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

func fromRepository(r *Repository, base Config) *Config {
	return &Config{
		App: AppConfig{
			Name:  r.Get("APP_NAME", base.App.Name),
			Env:   r.Get("APP_ENV", base.App.Env),
			Debug: r.Bool("APP_DEBUG", base.App.Debug),
			Port:  r.Get("APP_PORT", base.App.Port),
		},
		Log: LogConfig{
			Level:  r.Get("LOG_LEVEL", base.Log.Level),
			Format: r.Get("LOG_FORMAT", base.Log.Format),
		},
	}
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── Repository ───────────────────────────────────────────────────────────────

// Repository is a cached key-value reader over the process environment.
// The first read of a key is remembered; later env changes are not seen
// until Forget or Flush.
type Repository struct {
	mu    sync.RWMutex
	cache map[string]string
	found map[string]bool
}

// NewRepository loads the given .env files (default ".env") and returns an
// empty-cache repository.
func NewRepository(envFiles ...string) *Repository {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)
	return newRepository()
}

func newRepository() *Repository {
	return &Repository{cache: make(map[string]string), found: make(map[string]bool)}
}

// Get returns the cached value for key, or fallback when the variable is unset.
func (r *Repository) Get(key, fallback string) string {
	r.mu.RLock()
	v, cached := r.cache[key]
	ok := r.found[key]
	r.mu.RUnlock()

	if !cached {
		v, ok = os.LookupEnv(key)
		r.mu.Lock()
		r.cache[key] = v
		r.found[key] = ok
		r.mu.Unlock()
	}
	if !ok || v == "" {
		return fallback
	}
	return v
}

// Bool is Get parsed with strconv.ParseBool; unparsable values yield fallback.
func (r *Repository) Bool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(r.Get(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

// Forget drops one cached key.
func (r *Repository) Forget(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, key)
	delete(r.found, key)
}

// Flush drops the whole cache.
func (r *Repository) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]string)
	r.found = make(map[string]bool)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
