package config

import (
	"strings"
	"testing"
	"time"

	"github.com/zhouzirui/hands-on/backend/internal/model/persona"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LLM_MODEL", "doubao-pro")
	t.Setenv("PORT", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("MAIL_PORT", "")
	t.Setenv("DEFAULT_LANGUAGE", "")
	t.Setenv("CONVERSATION_TTL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	if cfg.AI.Provider != ProviderArk || cfg.AI.BaseURL == "" {
		t.Fatalf("unexpected ai config: %+v", cfg.AI)
	}
	if cfg.AI.DefaultLanguage != "English" {
		t.Fatalf("unexpected default language %q", cfg.AI.DefaultLanguage)
	}
	if cfg.Mail.Port != 587 || cfg.Mail.Host != "smtp.gmail.com" {
		t.Fatalf("unexpected mail config: %+v", cfg.Mail)
	}
	if cfg.Store.Backend != StoreMemory || cfg.Store.TTL != 0 {
		t.Fatalf("unexpected store config: %+v", cfg.Store)
	}
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	cases := map[string]string{
		"LLM_TEMPERATURE":  "warm",
		"MAIL_PORT":        "five",
		"CONVERSATION_TTL": "forever",
		"LLM_PROVIDER":     "gemini",
		"STORE_BACKEND":    "dynamo",
		"PORT":             "80 80",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("LLM_MODEL", "m")
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}

func TestLoadRequiresRedisURL(t *testing.T) {
	t.Setenv("LLM_MODEL", "m")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without REDIS_URL")
	}

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CONVERSATION_TTL", "2h")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Store.TTL != 2*time.Hour {
		t.Fatalf("unexpected ttl %s", cfg.Store.TTL)
	}
}

func TestResolvePersonaKeys(t *testing.T) {
	personas := []persona.Persona{
		{ID: "1", CredentialRef: "TEST_PATIENT_1_KEY"},
		{ID: "2", CredentialRef: "TEST_PATIENT_2_KEY"},
	}
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("TEST_PATIENT_1_KEY", "k1")
	t.Setenv("TEST_PATIENT_2_KEY", "")

	var cfg AIConfig
	err := cfg.ResolvePersonaKeys(personas)
	if err == nil || !strings.Contains(err.Error(), "TEST_PATIENT_2_KEY") {
		t.Fatalf("expected missing credential error, got %v", err)
	}

	t.Setenv("LLM_API_KEY", "shared")
	if err := cfg.ResolvePersonaKeys(personas); err != nil {
		t.Fatalf("ResolvePersonaKeys err: %v", err)
	}
	if cfg.PersonaKeys["1"] != "k1" || cfg.PersonaKeys["2"] != "shared" {
		t.Fatalf("unexpected keys: %v", cfg.PersonaKeys)
	}
}
