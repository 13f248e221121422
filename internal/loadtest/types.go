package loadtest

// TestResult records the outcome of one HTTP call the orchestrator issued.
// Records are append-only: once produced they are aggregated, never mutated.
type TestResult struct {
	TestName     string                 `json:"test_name"`
	AgentName    string                 `json:"agent_name"`
	Success      bool                   `json:"success"`
	ResponseTime float64                `json:"response_time"`
	StatusCode   int                    `json:"status_code"`
	Error        string                 `json:"error,omitempty"`
	TaskData     map[string]interface{} `json:"task_data,omitempty"`
	ResultData   map[string]interface{} `json:"result_data,omitempty"`
	Timestamp    string                 `json:"timestamp"`
}

// WorkflowResult records one multi-hop chain across agents. A chain fails at
// the first non-200 step; StepsCompleted marks how far it got and FinalResult
// keeps the outputs gathered up to the failure for diagnostics.
type WorkflowResult struct {
	WorkflowName   string                 `json:"workflow_name"`
	AgentChain     []string               `json:"agent_chain"`
	TotalTime      float64                `json:"total_time"`
	Success        bool                   `json:"success"`
	StepsCompleted int                    `json:"steps_completed"`
	FinalResult    map[string]interface{} `json:"final_result,omitempty"`
	Error          string                 `json:"error,omitempty"`
}
