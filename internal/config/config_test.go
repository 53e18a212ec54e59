package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.HTTPPort != 8080 {
		t.Errorf("HTTP port = %d, want 8080", cfg.HTTPPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q, want info", cfg.LogLevel)
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("store backend = %q, want file", cfg.Store.Backend)
	}
	if cfg.Fabric.URL == "" {
		t.Error("fabric URL should default to the public endpoint")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ALQUIMIA_HTTP_PORT", "9090")
	t.Setenv("ALQUIMIA_STORE", "redis")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")
	t.Setenv("ALQUIMIA_FABRIC_ID", "some-identity")
	t.Setenv("ALQUIMIA_FABRIC_KEY", "some-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.HTTPPort != 9090 {
		t.Errorf("HTTP port = %d, want 9090", cfg.HTTPPort)
	}
	if cfg.Store.Backend != "redis" || cfg.Redis.Addr != "redis.internal:6379" {
		t.Errorf("store = %q / %q", cfg.Store.Backend, cfg.Redis.Addr)
	}
	if cfg.Fabric.Identity != "some-identity" || cfg.Fabric.Secret != "some-secret" {
		t.Error("fabric credentials not read from environment")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			HTTPPort: 8080,
			LogLevel: "info",
			Fabric:   FabricConfig{URL: "https://fabric.test"},
			Store:    StoreConfig{Backend: "file", HandleDir: "handles"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.HTTPPort = 0 }},
		{"no fabric URL", func(c *Config) { c.Fabric.URL = "" }},
		{"unknown backend", func(c *Config) { c.Store.Backend = "dynamo" }},
		{"file store without dir", func(c *Config) { c.Store.HandleDir = "" }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("want validation error")
			}
		})
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}
