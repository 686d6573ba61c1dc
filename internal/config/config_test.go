package config

import (
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
	if cfg.Provider.Name != "demo" {
		t.Errorf("Provider.Name = %q, want %q", cfg.Provider.Name, "demo")
	}
	if cfg.Session.MaxToolRounds != 8 {
		t.Errorf("Session.MaxToolRounds = %d, want 8", cfg.Session.MaxToolRounds)
	}
	if cfg.Session.MaxHandoffs != 4 {
		t.Errorf("Session.MaxHandoffs = %d, want 4", cfg.Session.MaxHandoffs)
	}
	if cfg.Session.RejectWhenBusy {
		t.Error("Session.RejectWhenBusy should be false by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}

	cfg := Default()
	cfg.Provider.Name = "bedrock"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown provider should fail validation")
	}

	cfg = Default()
	cfg.Logging.Format = "logfmt"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown log format should fail validation")
	}

	cfg = Default()
	cfg.Session.MaxToolRounds = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero tool rounds should fail validation")
	}

	cfg = Default()
	cfg.Session.MaxHandoffs = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative handoffs should fail validation")
	}
}
