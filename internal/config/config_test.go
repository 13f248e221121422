package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AgentID == "" {
		t.Error("AgentID should be generated from hostname")
	}
	if !strings.HasPrefix(cfg.AgentID, "research-agent-") {
		t.Errorf("AgentID = %q, want research-agent-<hostname>", cfg.AgentID)
	}
	if cfg.AgentType != "research" {
		t.Errorf("AgentType = %q, want research", cfg.AgentType)
	}
	if cfg.Port != 8001 {
		t.Errorf("Port = %d, want 8001", cfg.Port)
	}
	if cfg.ListenAddress != "0.0.0.0" {
		t.Errorf("ListenAddress = %q, want 0.0.0.0", cfg.ListenAddress)
	}
	if cfg.A2ATimeout != 30*time.Second {
		t.Errorf("A2ATimeout = %s, want 30s", cfg.A2ATimeout)
	}
	if cfg.AgentName != cfg.AgentID {
		t.Errorf("AgentName should default to AgentID, got %q", cfg.AgentName)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AGENT_ID", "decider-1")
	t.Setenv("AGENT_NAME", "Decider")
	t.Setenv("AGENT_TYPE", "decision")
	t.Setenv("AGENT_PORT", "9100")
	t.Setenv("API_KEY", "secret")
	t.Setenv("PEER_URLS", "http://localhost:8001, http://localhost:8002")
	t.Setenv("A2A_TIMEOUT", "5s")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AgentID != "decider-1" {
		t.Errorf("AgentID = %q", cfg.AgentID)
	}
	if cfg.AgentName != "Decider" {
		t.Errorf("AgentName = %q", cfg.AgentName)
	}
	if cfg.AgentType != "decision" {
		t.Errorf("AgentType = %q", cfg.AgentType)
	}
	if cfg.Port != 9100 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.APIKey != "secret" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if len(cfg.PeerURLs) != 2 || cfg.PeerURLs[1] != "http://localhost:8002" {
		t.Errorf("PeerURLs = %v", cfg.PeerURLs)
	}
	if cfg.A2ATimeout != 5*time.Second {
		t.Errorf("A2ATimeout = %s", cfg.A2ATimeout)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
}

func TestLoadBareSecondsTimeout(t *testing.T) {
	t.Setenv("A2A_TIMEOUT", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.A2ATimeout != 10*time.Second {
		t.Errorf("A2ATimeout = %s, want 10s", cfg.A2ATimeout)
	}
}

func TestLoadInvalidAgentType(t *testing.T) {
	t.Setenv("AGENT_TYPE", "barista")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown agent type")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "port too low", mutate: func(c *Config) { c.Port = 0 }, wantErr: true},
		{name: "port too high", mutate: func(c *Config) { c.Port = 70000 }, wantErr: true},
		{name: "empty agent id", mutate: func(c *Config) { c.AgentID = "" }, wantErr: true},
		{name: "bad agent type", mutate: func(c *Config) { c.AgentType = "nope" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.A2ATimeout = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				AgentID:    "agent-1",
				AgentType:  "research",
				Port:       8001,
				A2ATimeout: 30 * time.Second,
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
