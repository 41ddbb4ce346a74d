package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds every value the resolver needs to run, parsed from
// environment variables with RRWALK_ prefixed keys.
type AppConfig struct {
	// UDPBindAddress is the address the DNS front end listens on.
	UDPBindAddress string `koanf:"udp_bind_address" validate:"required,ip"`

	// UDPPort is the DNS front end's UDP port.
	UDPPort int `koanf:"udp_port" validate:"required,gte=1,lt=65536"`

	// HTTPBindAddress is the address the forwarding HTTP endpoint listens on.
	HTTPBindAddress string `koanf:"http_bind_address" validate:"required,ip"`

	// HTTPPort is the forwarding HTTP endpoint's port.
	HTTPPort int `koanf:"http_port" validate:"required,gte=1,lt=65536"`

	// CacheStorePath is the bbolt file backing the answer cache.
	CacheStorePath string `koanf:"cache_store_path" validate:"required"`

	// RootHintsRefresh is loaded from the environment, but no component
	// reads it; the root hints list is fixed and never re-fetched.
	RootHintsRefresh bool `koanf:"root_hints_refresh"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// RequestTimeout bounds a single C4 exchange attempt.
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"required,gt=0"`

	// MaxIterations bounds the outer delegation loop of a single lookup.
	MaxIterations int `koanf:"max_iterations" validate:"required,gte=1"`

	// MaxRecursions bounds the total CNAME and glueless-NS recursive
	// lookups across one top-level resolve.
	MaxRecursions int `koanf:"max_recursions" validate:"required,gte=1"`

	// MaxQueryTime bounds the wall-clock time spent resolving one question.
	MaxQueryTime time.Duration `koanf:"max_query_time" validate:"required,gt=0"`
}

// defaultBindAddress picks the same containerized-vs-bare-metal default the
// original system does: 0.0.0.0 when DOCKER_ENV is set, 127.0.0.1 otherwise.
// Resolved once, at config-load time, from the real environment rather than
// baked into the binary.
func defaultBindAddress() string {
	if os.Getenv("DOCKER_ENV") != "" {
		return "0.0.0.0"
	}
	return "127.0.0.1"
}

// DEFAULT_APP_CONFIG holds the configuration used when no RRWALK_ prefixed
// environment variable overrides a field.
var DEFAULT_APP_CONFIG = AppConfig{
	UDPBindAddress:   defaultBindAddress(),
	UDPPort:          2053,
	HTTPBindAddress:  defaultBindAddress(),
	HTTPPort:         8080,
	CacheStorePath:   "/var/lib/rrwalk/cache.db",
	RootHintsRefresh: false,
	LogLevel:         "info",
	Env:              "prod",
	RequestTimeout:   2 * time.Second,
	MaxIterations:    16,
	MaxRecursions:    32,
	MaxQueryTime:     10 * time.Second,
}

// validIPPort validates whether the provided field value is a valid
// "host:port" address. Not currently used by any AppConfig field (both
// bind addresses are bare hosts), kept registered because the HTTP layer's
// own request validation reuses the same validator instance shape.
func validIPPort(fl validator.FieldLevel) bool {
	addr := fl.Field().String()
	ip, port, err := net.SplitHostPort(addr)
	if err != nil || ip == "" || port == "" {
		return false
	}
	if net.ParseIP(ip) == nil {
		return false
	}
	portNum, err := strconv.ParseUint(port, 10, 16)
	return err == nil && portNum > 0 && portNum < 65536
}

// envLoader loads RRWALK_ prefixed environment variables, lower-cased and
// stripped of their prefix, and can be swapped out in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "RRWALK_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "RRWALK_"))
			return key, strings.TrimSpace(value)
		},
	}), nil)
}

// defaultLoader seeds the koanf instance with DEFAULT_APP_CONFIG before any
// environment override is applied.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation wires the ip_port custom tag into the validator, kept
// as a variable so tests can force a registration failure.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("ip_port", validIPPort)
}

// Load parses RRWALK_ prefixed environment variables over top of
// DEFAULT_APP_CONFIG and validates the result. Duration fields arrive from
// the environment as strings ("2s"), so unmarshalling uses mapstructure's
// duration decode hook rather than koanf's plain Unmarshal.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	unmarshalConf := koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
			Result:     &cfg,
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
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
