// Package loadtest drives traffic at a fleet of agents in three escalating
// tiers (connectivity, functional A2A messaging, multi-hop workflows) and
// aggregates per-call outcomes into run analysis.
package loadtest

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is a load test scenario, loaded from YAML or built from a control
// API request.
type Config struct {
	TestName string            `yaml:"test_name"`
	Level    int               `yaml:"level"`
	Agents   map[string]string `yaml:"agents"`

	Pacing   PacingConfig  `yaml:"pacing"`
	Timeouts TimeoutConfig `yaml:"timeouts"`

	// Tasks supplies the realistic per-agent task bodies tier 2 runs.
	// Agents without an entry get a default derived from their name.
	Tasks map[string]TaskSpec `yaml:"tasks"`

	// Collaborations lists the pairwise delegation calls tier 2 validates.
	Collaborations []CollaborationSpec `yaml:"collaborations"`
}

// PacingConfig sets the deliberate inter-request delays that keep the
// orchestrator from hammering the same agent back-to-back.
type PacingConfig struct {
	Connectivity time.Duration `yaml:"connectivity"`
	Functional   time.Duration `yaml:"functional"`
}

// TimeoutConfig splits per-call timeouts by operation weight: health and
// capability checks are short, task execution and workflow steps long.
type TimeoutConfig struct {
	Short time.Duration `yaml:"short"`
	Long  time.Duration `yaml:"long"`
}

// TaskSpec is one realistic domain task for an agent.
type TaskSpec struct {
	TaskType    string                 `yaml:"task_type"`
	Description string                 `yaml:"description"`
	Context     map[string]interface{} `yaml:"context"`
}

// CollaborationSpec is one cross-agent delegation: Primary's /execute is
// invoked with Role pointing at Collaborator's URL.
type CollaborationSpec struct {
	Primary      string `yaml:"primary"`
	Collaborator string `yaml:"collaborator"`
	Role         string `yaml:"role"`
	TaskType     string `yaml:"task_type"`
	Description  string `yaml:"description"`
}

// Load reads a YAML scenario file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loadtest: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loadtest: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewConfig builds a validated scenario from control API parameters.
func NewConfig(testName string, level int, agents map[string]string) (*Config, error) {
	cfg := &Config{
		TestName: testName,
		Level:    level,
		Agents:   agents,
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills pacing, timeouts, per-agent tasks and collaboration
// pairs that the scenario leaves unset.
func (c *Config) applyDefaults() {
	if c.TestName == "" {
		c.TestName = "loadtest"
	}
	if c.Level == 0 {
		c.Level = 1
	}
	if c.Pacing.Connectivity == 0 {
		c.Pacing.Connectivity = 1 * time.Second
	}
	if c.Pacing.Functional == 0 {
		c.Pacing.Functional = 2 * time.Second
	}
	if c.Timeouts.Short == 0 {
		c.Timeouts.Short = 15 * time.Second
	}
	if c.Timeouts.Long == 0 {
		c.Timeouts.Long = 60 * time.Second
	}

	if c.Tasks == nil {
		c.Tasks = map[string]TaskSpec{}
	}
	for _, name := range c.AgentNames() {
		if _, ok := c.Tasks[name]; !ok {
			c.Tasks[name] = defaultTaskFor(name)
		}
	}

	if len(c.Collaborations) == 0 && len(c.Agents) >= 2 {
		names := c.AgentNames()
		for i := range names {
			primary := names[i]
			collaborator := names[(i+1)%len(names)]
			c.Collaborations = append(c.Collaborations, CollaborationSpec{
				Primary:      primary,
				Collaborator: collaborator,
				Role:         roleFor(collaborator),
				TaskType:     c.Tasks[primary].TaskType,
				Description:  fmt.Sprintf("collaborative task from %s with %s", primary, collaborator),
			})
		}
	}
}

func (c *Config) validate() error {
	var errs []string
	if c.Level < 1 || c.Level > 3 {
		errs = append(errs, fmt.Sprintf("level must be 1, 2 or 3 (got %d)", c.Level))
	}
	if len(c.Agents) == 0 {
		errs = append(errs, "at least one agent is required")
	}
	for name, url := range c.Agents {
		if url == "" {
			errs = append(errs, fmt.Sprintf("agents[%s] has no URL", name))
		}
	}
	for i, collab := range c.Collaborations {
		if _, ok := c.Agents[collab.Primary]; !ok {
			errs = append(errs, fmt.Sprintf("collaborations[%d] names unknown primary %q", i, collab.Primary))
		}
		if _, ok := c.Agents[collab.Collaborator]; !ok {
			errs = append(errs, fmt.Sprintf("collaborations[%d] names unknown collaborator %q", i, collab.Collaborator))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("loadtest: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// AgentNames returns the configured agent names sorted, so every tier visits
// agents in a deterministic order.
func (c *Config) AgentNames() []string {
	names := make([]string, 0, len(c.Agents))
	for name := range c.Agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// defaultTaskFor derives a realistic task body from an agent's name.
func defaultTaskFor(name string) TaskSpec {
	switch {
	case strings.Contains(name, "decision"):
		return TaskSpec{
			TaskType:    "decision_making",
			Description: "choose a rollout strategy for the new service",
			Context: map[string]interface{}{
				"options":  []interface{}{"canary_release", "blue_green", "full_rollout"},
				"criteria": map[string]interface{}{"risk": "canary", "speed": "full"},
			},
		}
	case strings.Contains(name, "data"):
		return TaskSpec{
			TaskType:    "data_analysis",
			Description: "analyze latency samples from the edge fleet",
			Context: map[string]interface{}{
				"data": map[string]interface{}{
					"values": []interface{}{12.1, 14.8, 11.2, 19.4, 13.0},
				},
			},
		}
	default:
		return TaskSpec{
			TaskType:    "research",
			Description: "research current multi-agent coordination patterns",
			Context: map[string]interface{}{
				"focus": "reliability",
			},
		}
	}
}

// roleFor maps an agent name onto the collaborator role its profile serves.
func roleFor(name string) string {
	switch {
	case strings.Contains(name, "decision"):
		return "decision_maker"
	case strings.Contains(name, "data"):
		return "data_processor"
	default:
		return "researcher"
	}
}
