package types

// DefaultTaskTimeout is applied when a TaskRequest carries no timeout.
const DefaultTaskTimeout = 300

// Capability describes one named unit of work an agent can perform.
// Declared once at startup and immutable for the process lifetime.
type Capability struct {
	Name              string                 `json:"name"`
	Description       string                 `json:"description"`
	InputSchema       map[string]interface{} `json:"input_schema"`
	OutputSchema      map[string]interface{} `json:"output_schema"`
	EstimatedDuration int                    `json:"estimated_duration"`
}

// TaskRequest is the body of POST /execute.
type TaskRequest struct {
	TaskType      string                 `json:"task_type" binding:"required"`
	Description   string                 `json:"description"`
	Context       map[string]interface{} `json:"context,omitempty"`
	Collaborators map[string]string      `json:"collaborators,omitempty"`
	Timeout       int                    `json:"timeout,omitempty"`
}

// TimeoutOrDefault returns the requested timeout in seconds, defaulting when
// absent or non-positive.
func (r *TaskRequest) TimeoutOrDefault() int {
	if r.Timeout <= 0 {
		return DefaultTaskTimeout
	}
	return r.Timeout
}

// TaskResult is the body returned by POST /execute. ExecutionTime is
// measured and populated on every path, success or failure.
type TaskResult struct {
	Success       bool                   `json:"success"`
	Result        map[string]interface{} `json:"result"`
	AgentID       string                 `json:"agent_id"`
	ExecutionTime float64                `json:"execution_time"`
	Timestamp     string                 `json:"timestamp"`
	Error         string                 `json:"error,omitempty"`
}

// AgentStatus is the body returned by GET /health.
type AgentStatus struct {
	Status            string  `json:"status"`
	AgentID           string  `json:"agent_id"`
	AgentType         string  `json:"agent_type"`
	Uptime            float64 `json:"uptime"`
	ActiveTasks       int64   `json:"active_tasks"`
	CapabilitiesCount int     `json:"capabilities_count"`
	Timestamp         string  `json:"timestamp"`
}
