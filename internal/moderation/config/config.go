package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "CG_"

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env      string         `koanf:"env" validate:"required,oneof=dev prod"`
	Log      LogConfig      `koanf:"log"`
	Server   ServerConfig   `koanf:"server"`
	Remote   RemoteConfig   `koanf:"remote"`
	Denylist DenylistConfig `koanf:"denylist"`
	Sanitize SanitizeConfig `koanf:"sanitize"`
}

type LogConfig struct {
	// Level controls log verbosity: "debug", "info", "warn", or "error".
	Level string `koanf:"level" validate:"required,oneof=debug info warn error"`
}

type ServerConfig struct {
	// Listen is the host:port the HTTP server binds to.
	Listen string `koanf:"listen" validate:"required,listen_addr"`
}

// RemoteConfig controls the external moderation endpoint. An empty APIKey
// leaves the remote classifier usable only with per-request keys.
type RemoteConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Endpoint string        `koanf:"endpoint" validate:"required,url"`
	APIKey   string        `koanf:"api_key"`
	Timeout  time.Duration `koanf:"timeout" validate:"gt=0"`
}

type DenylistConfig struct {
	// PolicyFile is an optional word/pattern file; empty uses the built-in policy.
	PolicyFile string `koanf:"policy_file"`
	// DB is the bbolt path; empty keeps rules in memory.
	DB string `koanf:"db"`
	// CacheSize of 0 disables match caching.
	CacheSize int     `koanf:"cache_size" validate:"gte=0"`
	FPRate    float64 `koanf:"fp_rate" validate:"gt=0,lt=1"`
}

type SanitizeConfig struct {
	StripMarkup bool `koanf:"strip_markup"`
}

// DEFAULT_APP_CONFIG defines the default configuration: production logging,
// the built-in policy held in memory, and the remote classifier disabled.
var DEFAULT_APP_CONFIG = AppConfig{
	Env: "prod",
	Log: LogConfig{Level: "info"},
	Server: ServerConfig{
		Listen: ":8080",
	},
	Remote: RemoteConfig{
		Enabled:  false,
		Endpoint: "https://api.openai.com/v1/moderations",
		Timeout:  10 * time.Second,
	},
	Denylist: DenylistConfig{
		CacheSize: 1024,
		FPRate:    0.01,
	},
	Sanitize: SanitizeConfig{StripMarkup: false},
}

// envKeys maps recognised environment variables (without prefix) to config keys.
var envKeys = map[string]string{
	"ENV":                   "env",
	"LOG_LEVEL":             "log.level",
	"SERVER_LISTEN":         "server.listen",
	"REMOTE_ENABLED":        "remote.enabled",
	"REMOTE_ENDPOINT":       "remote.endpoint",
	"REMOTE_API_KEY":        "remote.api_key",
	"REMOTE_TIMEOUT":        "remote.timeout",
	"DENYLIST_POLICY_FILE":  "denylist.policy_file",
	"DENYLIST_DB":           "denylist.db",
	"DENYLIST_CACHE_SIZE":   "denylist.cache_size",
	"DENYLIST_FP_RATE":      "denylist.fp_rate",
	"SANITIZE_STRIP_MARKUP": "sanitize.strip_markup",
}

// validListenAddr accepts "host:port" or ":port" with a port in 1..65535.
// The host, when present, must be an IP or a hostname without spaces.
func validListenAddr(fl validator.FieldLevel) bool {
	host, port, err := net.SplitHostPort(fl.Field().String())
	if err != nil || port == "" {
		return false
	}
	if strings.ContainsAny(host, " \t") {
		return false
	}
	n, err := strconv.ParseUint(port, 10, 16)
	return err == nil && n > 0
}

// dotenvLoader reads a .env file from the working directory when one exists.
// Variables already set in the environment win.
var dotenvLoader = func() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// envLoader loads CG_-prefixed variables listed in envKeys.
// Unknown variables are dropped. Can be mocked in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			mapped, ok := envKeys[strings.ToUpper(strings.TrimPrefix(key, envPrefix))]
			if !ok {
				return "", nil
			}
			return mapped, strings.TrimSpace(value)
		},
	}), nil)
}

// defaultLoader loads DEFAULT_APP_CONFIG through the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers the "listen_addr" tag.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("listen_addr", validListenAddr)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	if err := dotenvLoader(); err != nil {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := registerValidation(validate); err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
