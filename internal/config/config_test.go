package config

import "testing"

func TestLoad_PoolSizeDefaults(t *testing.T) {
	t.Setenv("DATABASE_MAX_CONNS", "")
	t.Setenv("DATABASE_MIN_CONNS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Database.MaxConns != 25 {
		t.Errorf("expected default max conns 25, got %d", cfg.Database.MaxConns)
	}
	if cfg.Database.MinConns != 5 {
		t.Errorf("expected default min conns 5, got %d", cfg.Database.MinConns)
	}
}

func TestLoad_PoolSizeOverrides(t *testing.T) {
	t.Setenv("DATABASE_MAX_CONNS", "40")
	t.Setenv("DATABASE_MIN_CONNS", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Database.MaxConns != 40 || cfg.Database.MinConns != 10 {
		t.Errorf("pool size overrides not applied: max=%d min=%d",
			cfg.Database.MaxConns, cfg.Database.MinConns)
	}
}

func TestLoad_PoolSizeInverted(t *testing.T) {
	t.Setenv("DATABASE_MAX_CONNS", "2")
	t.Setenv("DATABASE_MIN_CONNS", "10")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error when min conns exceed max conns")
	}
}
