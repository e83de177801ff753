// Package config assembles client and daemon settings from defaults, an
// optional YAML file, a .env file and the environment, in increasing priority.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/campuscatalyst/portal/internal/vault"
)

// ClientConfig is what the CLI and library need.
type ClientConfig struct {
	// APIBaseURL prefixes every API path. Example: "http://localhost:5000/api"
	APIBaseURL string `yaml:"api_base_url"`
	// StateDir holds the durable credential file.
	StateDir string `yaml:"state_dir"`
	// MasterKey, when set, seals the durable token (32 raw chars or 64 hex digits).
	MasterKey string `yaml:"master_key"`
	// HTTPTimeout bounds each request. Zero means requests are bounded only by their context.
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

// ServerConfig is what the API daemon needs.
type ServerConfig struct {
	HTTPPort       string        `yaml:"http_port"`
	DataDir        string        `yaml:"data_dir"`
	DatabaseURL    string        `yaml:"database_url"`
	RedisAddr      string        `yaml:"redis_addr"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
	EnableTLS      bool          `yaml:"enable_tls"`
	GeminiAPIKey   string        `yaml:"gemini_api_key"`
	GeminiModel    string        `yaml:"gemini_model"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	LoginLimit     int           `yaml:"login_limit"`
	LoginWindow    time.Duration `yaml:"login_window"`
	// Seed fills an empty store with the example data on first start.
	Seed bool `yaml:"seed"`
}

// Config is the combined file layout.
type Config struct {
	Client ClientConfig `yaml:"client"`
	Server ServerConfig `yaml:"server"`
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "campuscatalyst")
	}
	return ".campuscatalyst"
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Config {
	return Config{
		Client: ClientConfig{
			APIBaseURL: "http://localhost:5000/api",
			StateDir:   defaultStateDir(),
		},
		Server: ServerConfig{
			HTTPPort:       "5000",
			DataDir:        "./data",
			TokenTTL:       24 * time.Hour,
			GeminiModel:    "gemini-2.5-flash",
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
			LoginLimit:     10,
			LoginWindow:    time.Minute,
			Seed:           true,
		},
	}
}

// Load reads .env (if present), then PORTAL_CONFIG (if set), then the environment.
func Load() (Config, error) {
	// a missing .env file is not an error
	_ = godotenv.Load()
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Defaults()

	if path, ok := lookup("PORTAL_CONFIG"); ok && path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}

	env := envReader{lookup: lookup}
	c, s := &cfg.Client, &cfg.Server
	c.APIBaseURL = env.str("PORTAL_API_BASE_URL", c.APIBaseURL)
	c.StateDir = env.str("PORTAL_STATE_DIR", c.StateDir)
	c.MasterKey = env.str("PORTAL_MASTER_KEY", c.MasterKey)
	c.HTTPTimeout = env.duration("PORTAL_HTTP_TIMEOUT", c.HTTPTimeout)

	s.HTTPPort = env.str("PORTAL_HTTP_PORT", s.HTTPPort)
	s.DataDir = env.str("PORTAL_DATA_DIR", s.DataDir)
	s.DatabaseURL = env.str("PORTAL_DATABASE_URL", s.DatabaseURL)
	s.RedisAddr = env.str("PORTAL_REDIS_ADDR", s.RedisAddr)
	s.TokenTTL = env.duration("PORTAL_TOKEN_TTL", s.TokenTTL)
	s.EnableTLS = env.boolean("PORTAL_ENABLE_TLS", s.EnableTLS)
	s.GeminiAPIKey = env.str("GEMINI_API_KEY", s.GeminiAPIKey)
	s.GeminiModel = env.str("PORTAL_GEMINI_MODEL", s.GeminiModel)
	s.AllowedOrigins = env.list("PORTAL_ALLOWED_ORIGINS", s.AllowedOrigins)
	s.LoginLimit = env.integer("PORTAL_LOGIN_LIMIT", s.LoginLimit)
	s.LoginWindow = env.duration("PORTAL_LOGIN_WINDOW", s.LoginWindow)
	s.Seed = env.boolean("PORTAL_SEED", s.Seed)

	if env.err != nil {
		return cfg, env.err
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail later and far from their source.
func (c Config) Validate() error {
	if c.Client.APIBaseURL == "" {
		return fmt.Errorf("api_base_url must not be empty")
	}
	if c.Client.MasterKey != "" {
		if _, err := vault.ParseKey(c.Client.MasterKey); err != nil {
			return fmt.Errorf("master_key: %w", err)
		}
	}
	if c.Client.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout must not be negative")
	}
	if _, err := strconv.Atoi(c.Server.HTTPPort); err != nil {
		return fmt.Errorf("http_port %q is not a number", c.Server.HTTPPort)
	}
	if c.Server.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}
	if c.Server.LoginLimit < 0 || c.Server.LoginWindow < 0 {
		return fmt.Errorf("login rate limit must not be negative")
	}
	return nil
}

// MasterKeyBytes returns the parsed master key, or nil when none is configured.
func (c ClientConfig) MasterKeyBytes() []byte {
	if c.MasterKey == "" {
		return nil
	}
	key, err := vault.ParseKey(c.MasterKey)
	if err != nil {
		return nil
	}
	return key
}

// envReader collects the first parse error instead of failing on each lookup.
type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envReader) raw(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (e *envReader) fail(key, value string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s=%q: %w", key, value, err)
	}
}

func (e *envReader) str(key, fallback string) string {
	if v, ok := e.raw(key); ok {
		return v
	}
	return fallback
}

func (e *envReader) duration(key string, fallback time.Duration) time.Duration {
	v, ok := e.raw(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return fallback
	}
	return d
}

func (e *envReader) integer(key string, fallback int) int {
	v, ok := e.raw(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return fallback
	}
	return n
}

func (e *envReader) boolean(key string, fallback bool) bool {
	v, ok := e.raw(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return fallback
	}
	return b
}

func (e *envReader) list(key string, fallback []string) []string {
	v, ok := e.raw(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
