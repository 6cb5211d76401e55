package configparser

import (
	"testing"
	"time"
)

type testConfig struct {
	Server struct {
		Port    string        `env:"TESTCFG_SERVER_PORT" default:"8080"`
		Timeout time.Duration `env:"TESTCFG_SERVER_TIMEOUT" default:"15s"`
	}
	Workers  int     `env:"TESTCFG_WORKERS" default:"4"`
	RadiusKm float64 `env:"TESTCFG_RADIUS_KM" default:"5.5"`
	Debug    bool    `env:"TESTCFG_DEBUG" default:"true"`
}

func TestParseEnv_Defaults(t *testing.T) {
	cfg := &testConfig{}
	if err := ParseEnv(cfg); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Timeout != 15*time.Second {
		t.Errorf("timeout = %v, want 15s", cfg.Server.Timeout)
	}
	if cfg.Workers != 4 {
		t.Errorf("workers = %d, want 4", cfg.Workers)
	}
	if cfg.RadiusKm != 5.5 {
		t.Errorf("radius = %v, want 5.5", cfg.RadiusKm)
	}
	if !cfg.Debug {
		t.Error("debug should default to true")
	}
}

func TestParseEnv_EnvOverridesDefault(t *testing.T) {
	t.Setenv("TESTCFG_SERVER_PORT", "9000")
	t.Setenv("TESTCFG_SERVER_TIMEOUT", "1m")

	cfg := &testConfig{}
	if err := ParseEnv(cfg); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.Server.Port != "9000" {
		t.Errorf("port = %q, want 9000", cfg.Server.Port)
	}
	if cfg.Server.Timeout != time.Minute {
		t.Errorf("timeout = %v, want 1m", cfg.Server.Timeout)
	}
}

func TestParseEnv_BadValue(t *testing.T) {
	t.Setenv("TESTCFG_WORKERS", "lots")

	cfg := &testConfig{}
	if err := ParseEnv(cfg); err == nil {
		t.Fatal("expected error for non-integer workers value")
	}
}

func TestParseEnv_NotAPointer(t *testing.T) {
	if err := ParseEnv(testConfig{}); err == nil {
		t.Fatal("expected error for non-pointer config")
	}
}
