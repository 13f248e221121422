package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/okmesh/agentmesh/pkg/types"
)

// TaskFunc implements one task type. It returns the task's result map; a
// returned error marks the task failed without failing the whole executor.
type TaskFunc func(ctx context.Context, description string, taskCtx map[string]interface{}) (map[string]interface{}, error)

// Profile bundles an agent type's declared capabilities with the task
// implementations backing them. Profiles are built once at startup and are
// immutable afterwards.
type Profile struct {
	Name         string
	capabilities []types.Capability
	tasks        map[string]TaskFunc
	taskOrder    []string
}

// NewProfile creates an empty profile for the given agent type name.
func NewProfile(name string) *Profile {
	return &Profile{
		Name:  name,
		tasks: map[string]TaskFunc{},
	}
}

func (p *Profile) register(cap types.Capability, fn TaskFunc) {
	p.capabilities = append(p.capabilities, cap)
	p.tasks[cap.Name] = fn
	p.taskOrder = append(p.taskOrder, cap.Name)
}

// Capabilities returns the profile's declared capabilities.
func (p *Profile) Capabilities() []types.Capability {
	return p.capabilities
}

// TaskTypes returns supported task type names in declaration order.
func (p *Profile) TaskTypes() []string {
	return p.taskOrder
}

// ProfileFor returns the built-in profile matching an agent type.
func ProfileFor(agentType string) (*Profile, error) {
	switch agentType {
	case "research":
		return NewResearchProfile(), nil
	case "decision":
		return NewDecisionProfile(), nil
	case "dataproc":
		return NewDataProcProfile(), nil
	}
	return nil, fmt.Errorf("unknown agent type: %s", agentType)
}

// Manager executes a profile's tasks, wrapping every run with timing and
// error capture. The returned outcome map always carries success,
// execution_time and task_type, regardless of outcome.
type Manager struct {
	agentID string
	profile *Profile
}

// NewManager creates a task manager executing as the given agent.
func NewManager(agentID string, profile *Profile) *Manager {
	return &Manager{agentID: agentID, profile: profile}
}

// Capabilities returns the underlying profile's capability list.
func (m *Manager) Capabilities() []types.Capability {
	return m.profile.Capabilities()
}

// Profile returns the profile this manager executes.
func (m *Manager) Profile() *Profile {
	return m.profile
}

// Execute runs one task and reports its outcome. Task-level failures
// (unsupported type, task function error) come back inside the outcome map
// with success=false; the error return is reserved for executor faults.
func (m *Manager) Execute(ctx context.Context, taskType, description string, taskCtx map[string]interface{}) (map[string]interface{}, error) {
	start := time.Now()

	fn, ok := m.profile.tasks[taskType]
	if !ok {
		return failOutcome(taskType, start, fmt.Sprintf("unsupported task type: %s", taskType)), nil
	}

	log.Printf("Executing %s task: %s", taskType, truncate(description, 100))

	if err := ctx.Err(); err != nil {
		return failOutcome(taskType, start, err.Error()), nil
	}

	result, err := fn(ctx, description, taskCtx)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		log.Printf("Task %s failed after %.2fs: %v", taskType, elapsed, err)
		return map[string]interface{}{
			"success":        false,
			"result":         map[string]interface{}{},
			"error":          err.Error(),
			"execution_time": elapsed,
			"task_type":      taskType,
		}, nil
	}

	if result == nil {
		result = map[string]interface{}{}
	}
	return map[string]interface{}{
		"success":        true,
		"result":         result,
		"execution_time": elapsed,
		"task_type":      taskType,
	}, nil
}

func failOutcome(taskType string, start time.Time, errMsg string) map[string]interface{} {
	return map[string]interface{}{
		"success":        false,
		"result":         map[string]interface{}{},
		"error":          errMsg,
		"execution_time": time.Since(start).Seconds(),
		"task_type":      taskType,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// ctxValue reads a key from a task context, tolerating a nil map.
func ctxValue(taskCtx map[string]interface{}, key string) interface{} {
	if taskCtx == nil {
		return nil
	}
	return taskCtx[key]
}

func ctxString(taskCtx map[string]interface{}, key, fallback string) string {
	if s, ok := ctxValue(taskCtx, key).(string); ok && s != "" {
		return s
	}
	return fallback
}

func ctxMap(taskCtx map[string]interface{}, key string) map[string]interface{} {
	if m, ok := ctxValue(taskCtx, key).(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func ctxSlice(taskCtx map[string]interface{}, key string) []interface{} {
	if s, ok := ctxValue(taskCtx, key).([]interface{}); ok {
		return s
	}
	return nil
}
