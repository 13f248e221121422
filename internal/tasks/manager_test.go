package tasks

import (
	"context"
	"testing"
)

func TestProfileFor(t *testing.T) {
	tests := []struct {
		agentType string
		wantErr   bool
		wantTasks []string
	}{
		{agentType: "research", wantTasks: []string{"research", "analysis", "planning", "writing"}},
		{agentType: "decision", wantTasks: []string{"decision_making", "workflow", "routing", "conditional_logic"}},
		{agentType: "dataproc", wantTasks: []string{"data_transformation", "data_analysis", "data_validation", "data_aggregation"}},
		{agentType: "unknown", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.agentType, func(t *testing.T) {
			p, err := ProfileFor(tt.agentType)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error for unknown agent type")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := p.TaskTypes()
			if len(got) != len(tt.wantTasks) {
				t.Fatalf("got %d task types %v, want %d", len(got), got, len(tt.wantTasks))
			}
			for i, name := range tt.wantTasks {
				if got[i] != name {
					t.Errorf("task %d = %q, want %q", i, got[i], name)
				}
			}
			if len(p.Capabilities()) != len(tt.wantTasks) {
				t.Errorf("capabilities count = %d, want %d", len(p.Capabilities()), len(tt.wantTasks))
			}
		})
	}
}

func TestExecuteUnsupportedTaskType(t *testing.T) {
	m := NewManager("agent-1", NewResearchProfile())

	outcome, err := m.Execute(context.Background(), "juggling", "do tricks", nil)
	if err != nil {
		t.Fatalf("unexpected executor error: %v", err)
	}
	if outcome["success"] != false {
		t.Error("expected success=false for unsupported task type")
	}
	if outcome["error"] != "unsupported task type: juggling" {
		t.Errorf("unexpected error message: %v", outcome["error"])
	}
	if _, ok := outcome["execution_time"].(float64); !ok {
		t.Error("expected execution_time in outcome")
	}
	if outcome["task_type"] != "juggling" {
		t.Errorf("task_type = %v, want juggling", outcome["task_type"])
	}
}

func TestExecuteSuccessOutcomeShape(t *testing.T) {
	m := NewManager("agent-1", NewResearchProfile())

	outcome, err := m.Execute(context.Background(), "research", "study topic", map[string]interface{}{
		"focus": "performance",
	})
	if err != nil {
		t.Fatalf("unexpected executor error: %v", err)
	}
	if outcome["success"] != true {
		t.Fatalf("expected success=true, got %v (error: %v)", outcome["success"], outcome["error"])
	}
	result, ok := outcome["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("result has wrong type: %T", outcome["result"])
	}
	if result["summary"] != "Research completed on: study topic" {
		t.Errorf("unexpected summary: %v", result["summary"])
	}
	if result["focus"] != "performance" {
		t.Errorf("focus = %v, want performance", result["focus"])
	}
}

func TestExecuteCancelledContext(t *testing.T) {
	m := NewManager("agent-1", NewResearchProfile())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := m.Execute(ctx, "research", "study topic", nil)
	if err != nil {
		t.Fatalf("unexpected executor error: %v", err)
	}
	if outcome["success"] != false {
		t.Error("expected success=false when context is already cancelled")
	}
}

func TestDecisionMakingScoring(t *testing.T) {
	m := NewManager("agent-1", NewDecisionProfile())

	outcome, err := m.Execute(context.Background(), "decision_making", "pick a deployment strategy", map[string]interface{}{
		"options":  []interface{}{"blue_green", "canary_rollout", "big_bang"},
		"criteria": map[string]interface{}{"safety": "canary", "speed": "rollout"},
	})
	if err != nil {
		t.Fatalf("unexpected executor error: %v", err)
	}
	result := outcome["result"].(map[string]interface{})
	if result["decision"] != "canary_rollout" {
		t.Errorf("decision = %v, want canary_rollout", result["decision"])
	}
	conf, ok := result["confidence"].(float64)
	if !ok || conf <= 0.5 {
		t.Errorf("confidence = %v, want > 0.5", result["confidence"])
	}
}

func TestDecisionMakingNoOptions(t *testing.T) {
	m := NewManager("agent-1", NewDecisionProfile())

	outcome, err := m.Execute(context.Background(), "decision_making", "nothing to do", nil)
	if err != nil {
		t.Fatalf("unexpected executor error: %v", err)
	}
	result := outcome["result"].(map[string]interface{})
	if result["decision"] != "no_action" {
		t.Errorf("decision = %v, want no_action", result["decision"])
	}
	if result["confidence"] != 0.1 {
		t.Errorf("confidence = %v, want 0.1", result["confidence"])
	}
}

func TestWorkflowStepsCompleted(t *testing.T) {
	m := NewManager("agent-1", NewDecisionProfile())

	outcome, err := m.Execute(context.Background(), "workflow", "release flow", map[string]interface{}{
		"steps": []interface{}{"build", "test", "deploy"},
	})
	if err != nil {
		t.Fatalf("unexpected executor error: %v", err)
	}
	result := outcome["result"].(map[string]interface{})
	completed := result["steps_completed"].([]interface{})
	if len(completed) != 3 {
		t.Fatalf("steps_completed = %v, want 3 entries", completed)
	}
	state := result["final_state"].(map[string]interface{})
	if state["deploy"] != "completed as step 3" {
		t.Errorf("final_state[deploy] = %v", state["deploy"])
	}
}

func TestRoutingMatchesTaskType(t *testing.T) {
	m := NewManager("agent-1", NewDecisionProfile())

	outcome, err := m.Execute(context.Background(), "routing", "route the request", map[string]interface{}{
		"input_data":    map[string]interface{}{"task_type": "billing", "region": "eu"},
		"routing_rules": map[string]interface{}{"billing": "finance_queue"},
	})
	if err != nil {
		t.Fatalf("unexpected executor error: %v", err)
	}
	result := outcome["result"].(map[string]interface{})
	if result["route"] != "finance_queue" {
		t.Errorf("route = %v, want finance_queue", result["route"])
	}
}

func TestRoutingDefault(t *testing.T) {
	m := NewManager("agent-1", NewDecisionProfile())

	outcome, err := m.Execute(context.Background(), "routing", "route the request", map[string]interface{}{
		"input_data":    map[string]interface{}{"task_type": "unknown"},
		"routing_rules": map[string]interface{}{"billing": "finance_queue"},
	})
	if err != nil {
		t.Fatalf("unexpected executor error: %v", err)
	}
	result := outcome["result"].(map[string]interface{})
	if result["route"] != "default" {
		t.Errorf("route = %v, want default", result["route"])
	}
}

func TestConditionalLogicBranches(t *testing.T) {
	m := NewManager("agent-1", NewDecisionProfile())

	tests := []struct {
		name       string
		conditions []interface{}
		data       map[string]interface{}
		wantBranch string
	}{
		{
			name:       "all true",
			conditions: []interface{}{"score > 50", "status == active"},
			data:       map[string]interface{}{"score": 80.0, "status": "active"},
			wantBranch: "then",
		},
		{
			name:       "one false",
			conditions: []interface{}{"score > 50", "score > 90"},
			data:       map[string]interface{}{"score": 80.0},
			wantBranch: "else",
		},
		{
			name:       "invalid condition",
			conditions: []interface{}{"score above 50"},
			data:       map[string]interface{}{"score": 80.0},
			wantBranch: "else",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := m.Execute(context.Background(), "conditional_logic", "check", map[string]interface{}{
				"conditions": tt.conditions,
				"data":       tt.data,
			})
			if err != nil {
				t.Fatalf("unexpected executor error: %v", err)
			}
			result := outcome["result"].(map[string]interface{})
			if result["branch"] != tt.wantBranch {
				t.Errorf("branch = %v, want %s", result["branch"], tt.wantBranch)
			}
			evaluated := result["conditions_evaluated"].([]interface{})
			if len(evaluated) != len(tt.conditions) {
				t.Errorf("evaluated %d conditions, want %d", len(evaluated), len(tt.conditions))
			}
		})
	}
}
