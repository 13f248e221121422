package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/okmesh/agentmesh/internal/version"
)

// Agent types with built-in task profiles.
var knownAgentTypes = []string{"research", "decision", "dataproc"}

type Config struct {
	// Agent identity
	AgentID   string `json:"agent_id"`
	AgentName string `json:"agent_name"`
	AgentType string `json:"agent_type"`
	Version   string `json:"version"`

	// Agent API server
	ListenAddress string `json:"listen_address"`
	Port          int    `json:"port"`
	APIKey        string `json:"api_key"`

	// Peer communication
	PeerURLs   []string      `json:"peer_urls"`
	A2ATimeout time.Duration `json:"a2a_timeout"`

	Debug bool `json:"debug"`
}

func Load() (*Config, error) {
	agentType := getEnv("AGENT_TYPE", "research")

	agentID, err := getOrCreateAgentID(agentType)
	if err != nil {
		return nil, fmt.Errorf("failed to get agent ID: %w", err)
	}

	cfg := &Config{
		AgentID:       agentID,
		AgentName:     getEnv("AGENT_NAME", agentID),
		AgentType:     agentType,
		Version:       version.GetVersion(),
		ListenAddress: getEnv("AGENT_LISTEN_ADDRESS", "0.0.0.0"),
		Port:          getEnvInt("AGENT_PORT", 8001),
		APIKey:        getEnv("API_KEY", ""),
		PeerURLs:      getEnvList("PEER_URLS"),
		A2ATimeout:    getEnvDuration("A2A_TIMEOUT", 30*time.Second),
		Debug:         getEnvBool("DEBUG", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid AGENT_PORT: %d", c.Port)
	}
	if c.AgentID == "" {
		return fmt.Errorf("AGENT_ID cannot be empty")
	}
	valid := false
	for _, t := range knownAgentTypes {
		if c.AgentType == t {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid AGENT_TYPE: %q (must be one of %s)",
			c.AgentType, strings.Join(knownAgentTypes, ", "))
	}
	if c.A2ATimeout <= 0 {
		return fmt.Errorf("invalid A2A_TIMEOUT: %s", c.A2ATimeout)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		// Bare numbers are read as seconds.
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// getEnvList reads a comma-separated list, dropping empty entries.
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getOrCreateAgentID(agentType string) (string, error) {
	if agentID := os.Getenv("AGENT_ID"); agentID != "" {
		return agentID, nil
	}

	// Generate a simple agent ID based on hostname
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	return fmt.Sprintf("%s-agent-%s", agentType, hostname), nil
}
