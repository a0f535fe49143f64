package config

import (
	"testing"
	"time"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg := fromEnv(envOf(nil))

	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.StoreBackend != StoreSQLite {
		t.Fatalf("expected sqlite backend, got %q", cfg.StoreBackend)
	}
	if cfg.AuthMode != AuthLocal {
		t.Fatalf("expected local auth, got %q", cfg.AuthMode)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Fatalf("expected 30s fetch timeout, got %s", cfg.FetchTimeout)
	}
	if cfg.FieldDebounce != 500*time.Millisecond {
		t.Fatalf("expected 500ms debounce, got %s", cfg.FieldDebounce)
	}
	if cfg.RateLimit != 10 || cfg.RateBurst != 20 {
		t.Fatalf("unexpected rate limit %v/%d", cfg.RateLimit, cfg.RateBurst)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg := fromEnv(envOf(map[string]string{
		"PROJECTID":     "proj",
		"PORT":          "9090",
		"STOREBACKEND":  "firestore",
		"AUTHMODE":      "firebase",
		"FETCHTIMEOUT":  "5s",
		"RATELIMIT":     "0",
		"RATEBURST":     "3",
		"FIELDDEBOUNCE": "250ms",
		"OPENAIBASEURL": "http://localhost:11434/v1",
	}))

	if cfg.ProjectID != "proj" || cfg.Port != "9090" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.StoreBackend != StoreFirestore || cfg.AuthMode != AuthFirebase {
		t.Fatalf("unexpected modes %q/%q", cfg.StoreBackend, cfg.AuthMode)
	}
	if cfg.FetchTimeout != 5*time.Second || cfg.FieldDebounce != 250*time.Millisecond {
		t.Fatalf("unexpected durations %s/%s", cfg.FetchTimeout, cfg.FieldDebounce)
	}
	if cfg.RateLimit != 0 || cfg.RateBurst != 3 {
		t.Fatalf("unexpected rate limit %v/%d", cfg.RateLimit, cfg.RateBurst)
	}
	if cfg.OpenAIBaseURL != "http://localhost:11434/v1" {
		t.Fatalf("unexpected base url %q", cfg.OpenAIBaseURL)
	}
}

func TestFromEnv_InvalidValuesFallBack(t *testing.T) {
	cfg := fromEnv(envOf(map[string]string{
		"FETCHTIMEOUT": "soon",
		"RATELIMIT":    "-1",
		"RATEBURST":    "many",
		"STOREBACKEND": "postgres",
	}))

	if cfg.FetchTimeout != 30*time.Second {
		t.Fatalf("expected fallback timeout, got %s", cfg.FetchTimeout)
	}
	if cfg.RateLimit != 10 || cfg.RateBurst != 20 {
		t.Fatalf("expected fallback rate limit, got %v/%d", cfg.RateLimit, cfg.RateBurst)
	}
	if cfg.StoreBackend != StoreSQLite {
		t.Fatalf("expected sqlite fallback, got %q", cfg.StoreBackend)
	}
}
