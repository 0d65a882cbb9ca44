package config

import "testing"

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when DATABASE_URL is empty")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/leadscout")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("SCORING_WORKERS", "0")
	t.Setenv("PHONE_DEFAULT_REGION", "gb")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.GetCORSOrigins()) != 2 {
		t.Fatalf("expected 2 cors origins, got %v", cfg.GetCORSOrigins())
	}
	if cfg.GetScoringWorkers() != 1 {
		t.Fatalf("expected workers floored to 1, got %d", cfg.GetScoringWorkers())
	}
	if cfg.GetPhoneDefaultRegion() != "GB" {
		t.Fatalf("expected upper-cased region, got %q", cfg.GetPhoneDefaultRegion())
	}
	if cfg.IsMinIOEnabled() || cfg.IsGotenbergEnabled() {
		t.Fatalf("optional integrations must be disabled by default")
	}
}

func TestLoadRejectsWildcardWithCredentials(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/leadscout")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	if _, err := Load(); err == nil {
		t.Fatalf("expected wildcard origin with credentials to be rejected")
	}
}
