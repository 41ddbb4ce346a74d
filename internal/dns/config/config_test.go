package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/v2"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Env != "prod" {
		t.Errorf("expected Env=prod, got %q", cfg.Env)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected LogLevel=info, got %q", cfg.LogLevel)
	}
	if cfg.UDPPort != 2053 {
		t.Errorf("expected UDPPort=2053, got %d", cfg.UDPPort)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("expected HTTPPort=8080, got %d", cfg.HTTPPort)
	}
	if cfg.MaxIterations != 16 {
		t.Errorf("expected MaxIterations=16, got %d", cfg.MaxIterations)
	}
	if cfg.MaxRecursions != 32 {
		t.Errorf("expected MaxRecursions=32, got %d", cfg.MaxRecursions)
	}
	if cfg.RequestTimeout != 2*time.Second {
		t.Errorf("expected RequestTimeout=2s, got %s", cfg.RequestTimeout)
	}
	if cfg.MaxQueryTime != 10*time.Second {
		t.Errorf("expected MaxQueryTime=10s, got %s", cfg.MaxQueryTime)
	}
	if cfg.RootHintsRefresh {
		t.Errorf("expected RootHintsRefresh=false by default")
	}
}

func TestLoadValidOverrides(t *testing.T) {
	t.Setenv("RRWALK_ENV", "dev")
	t.Setenv("RRWALK_LOG_LEVEL", "debug")
	t.Setenv("RRWALK_UDP_PORT", "9953")
	t.Setenv("RRWALK_HTTP_PORT", "9080")
	t.Setenv("RRWALK_MAX_ITERATIONS", "4")
	t.Setenv("RRWALK_MAX_RECURSIONS", "10")
	t.Setenv("RRWALK_REQUEST_TIMEOUT", "500ms")
	t.Setenv("RRWALK_MAX_QUERY_TIME", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Env != "dev" {
		t.Errorf("expected Env=dev, got %q", cfg.Env)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected LogLevel=debug, got %q", cfg.LogLevel)
	}
	if cfg.UDPPort != 9953 {
		t.Errorf("expected UDPPort=9953, got %d", cfg.UDPPort)
	}
	if cfg.HTTPPort != 9080 {
		t.Errorf("expected HTTPPort=9080, got %d", cfg.HTTPPort)
	}
	if cfg.MaxIterations != 4 {
		t.Errorf("expected MaxIterations=4, got %d", cfg.MaxIterations)
	}
	if cfg.MaxRecursions != 10 {
		t.Errorf("expected MaxRecursions=10, got %d", cfg.MaxRecursions)
	}
	if cfg.RequestTimeout != 500*time.Millisecond {
		t.Errorf("expected RequestTimeout=500ms, got %s", cfg.RequestTimeout)
	}
	if cfg.MaxQueryTime != 3*time.Second {
		t.Errorf("expected MaxQueryTime=3s, got %s", cfg.MaxQueryTime)
	}
}

func TestLoadInvalidEnv(t *testing.T) {
	t.Setenv("RRWALK_ENV", "staging")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid RRWALK_ENV, got nil")
	}
}

func TestLoadInvalidLogLevel(t *testing.T) {
	t.Setenv("RRWALK_LOG_LEVEL", "trace")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid RRWALK_LOG_LEVEL, got nil")
	}
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("RRWALK_UDP_PORT", "99999")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for out-of-range RRWALK_UDP_PORT, got nil")
	}
}

func TestLoadPortNaN(t *testing.T) {
	t.Setenv("RRWALK_UDP_PORT", "not_a_number")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric RRWALK_UDP_PORT, got nil")
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("RRWALK_MAX_QUERY_TIME", "not_a_duration")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparseable RRWALK_MAX_QUERY_TIME, got nil")
	}
}

func TestLoadWhenKoanfDefaultLoadFails(t *testing.T) {
	orig := defaultLoader
	defaultLoader = func(k *koanf.Koanf) error { return errors.New("mocked error") }
	defer func() { defaultLoader = orig }()

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "mocked error") {
		t.Fatal("expected error when loading defaults, got nil")
	}
}

func TestLoadWhenKoanfEnvLoadFails(t *testing.T) {
	orig := envLoader
	envLoader = func(k *koanf.Koanf) error { return errors.New("mocked error") }
	defer func() { envLoader = orig }()

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "mocked error") {
		t.Fatal("expected error when loading env, got nil")
	}
}

func TestLoadRegisterValidationFails(t *testing.T) {
	orig := registerValidation
	registerValidation = func(v *validator.Validate) error { return errors.New("mocked validation error") }
	defer func() { registerValidation = orig }()

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "mocked validation error") {
		t.Fatal("expected error when registering validation, got nil")
	}
}

func TestValidIPPort(t *testing.T) {
	cases := []struct {
		input    string
		expected bool
	}{
		{"1.2.3.4:53", true},
		{"127.0.0.1:5353", true},
		{"::1:53", false},
		{"[::1]:53", true},
		{"192.168.1.1:", false},
		{":53", false},
		{"not_an_ip:53", false},
		{"1.2.3.4:notaport", false},
		{"", false},
		{"1.2.3.4", false},
	}

	validate := validator.New()
	_ = validate.RegisterValidation("ip_port", validIPPort)

	type addr struct {
		Addr string `validate:"ip_port"`
	}

	for _, tc := range cases {
		err := validate.Struct(addr{Addr: tc.input})
		if tc.expected && err != nil {
			t.Errorf("validIPPort(%q) = false, want true", tc.input)
		}
		if !tc.expected && err == nil {
			t.Errorf("validIPPort(%q) = true, want false", tc.input)
		}
	}
}

func TestDefaultBindAddressHonorsDockerEnv(t *testing.T) {
	t.Setenv("DOCKER_ENV", "")
	if got := defaultBindAddress(); got != "127.0.0.1" {
		t.Errorf("expected 127.0.0.1 with DOCKER_ENV unset, got %q", got)
	}

	t.Setenv("DOCKER_ENV", "1")
	if got := defaultBindAddress(); got != "0.0.0.0" {
		t.Errorf("expected 0.0.0.0 with DOCKER_ENV set, got %q", got)
	}
}
