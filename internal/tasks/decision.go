package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/okmesh/agentmesh/pkg/types"
)

// NewDecisionProfile builds the decision agent's task set: decision_making,
// workflow, routing and conditional_logic.
func NewDecisionProfile() *Profile {
	p := NewProfile("decision")

	p.register(types.Capability{
		Name:        "decision_making",
		Description: "Choose between options against weighted criteria",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"task_type":   map[string]interface{}{"type": "string", "enum": []interface{}{"decision_making"}},
				"description": map[string]interface{}{"type": "string"},
				"context": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"options":  map[string]interface{}{"type": "array"},
						"criteria": map[string]interface{}{"type": "object"},
					},
				},
			},
			"required": []interface{}{"task_type", "description"},
		},
		OutputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"decision":   map[string]interface{}{"type": "string"},
				"reasoning":  map[string]interface{}{"type": "string"},
				"confidence": map[string]interface{}{"type": "number"},
			},
		},
		EstimatedDuration: 20,
	}, decisionMakingTask)

	p.register(types.Capability{
		Name:        "workflow",
		Description: "Execute a named sequence of workflow steps",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"task_type":   map[string]interface{}{"type": "string", "enum": []interface{}{"workflow"}},
				"description": map[string]interface{}{"type": "string"},
				"context": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"steps": map[string]interface{}{"type": "array"},
					},
				},
			},
			"required": []interface{}{"task_type", "description"},
		},
		OutputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"steps_completed": map[string]interface{}{"type": "array"},
				"final_state":     map[string]interface{}{"type": "object"},
			},
		},
		EstimatedDuration: 30,
	}, workflowTask)

	p.register(types.Capability{
		Name:        "routing",
		Description: "Route input data according to routing rules",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"task_type":   map[string]interface{}{"type": "string", "enum": []interface{}{"routing"}},
				"description": map[string]interface{}{"type": "string"},
				"context": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"input_data":    map[string]interface{}{"type": "object"},
						"routing_rules": map[string]interface{}{"type": "object"},
					},
				},
			},
			"required": []interface{}{"task_type", "description"},
		},
		OutputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"route":       map[string]interface{}{"type": "string"},
				"routed_data": map[string]interface{}{"type": "object"},
			},
		},
		EstimatedDuration: 15,
	}, routingTask)

	p.register(types.Capability{
		Name:        "conditional_logic",
		Description: "Evaluate comparison conditions against supplied data",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"task_type":   map[string]interface{}{"type": "string", "enum": []interface{}{"conditional_logic"}},
				"description": map[string]interface{}{"type": "string"},
				"context": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"conditions": map[string]interface{}{"type": "array"},
						"data":       map[string]interface{}{"type": "object"},
					},
				},
			},
			"required": []interface{}{"task_type", "description"},
		},
		OutputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"conditions_evaluated": map[string]interface{}{"type": "array"},
				"branch":               map[string]interface{}{"type": "string"},
			},
		},
		EstimatedDuration: 15,
	}, conditionalLogicTask)

	return p
}

// decisionMakingTask scores each option by how many criterion values appear
// in the option name; earlier options win ties so the outcome is stable.
func decisionMakingTask(_ context.Context, description string, taskCtx map[string]interface{}) (map[string]interface{}, error) {
	options := ctxSlice(taskCtx, "options")
	criteria := ctxMap(taskCtx, "criteria")

	if len(options) == 0 {
		return map[string]interface{}{
			"decision":   "no_action",
			"reasoning":  "no options were provided",
			"confidence": 0.1,
			"analysis":   fmt.Sprintf("Nothing to decide for %q", description),
		}, nil
	}

	bestIdx := 0
	bestScore := -1
	for i, raw := range options {
		opt := fmt.Sprintf("%v", raw)
		score := 0
		for _, key := range sortedKeys(criteria) {
			val := fmt.Sprintf("%v", criteria[key])
			if strings.Contains(opt, val) || strings.Contains(opt, key) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	confidence := 0.5
	if len(criteria) > 0 {
		confidence = 0.5 + float64(bestScore)/float64(2*len(criteria))
		if confidence > 0.95 {
			confidence = 0.95
		}
	}

	return map[string]interface{}{
		"decision":   fmt.Sprintf("%v", options[bestIdx]),
		"reasoning":  fmt.Sprintf("scored %d of %d criteria against %d options", bestScore, len(criteria), len(options)),
		"confidence": confidence,
		"analysis":   fmt.Sprintf("Evaluated %d options for %q", len(options), description),
	}, nil
}

func workflowTask(_ context.Context, description string, taskCtx map[string]interface{}) (map[string]interface{}, error) {
	steps := ctxSlice(taskCtx, "steps")
	if len(steps) == 0 {
		steps = []interface{}{"default_step"}
	}

	state := map[string]interface{}{}
	for k, v := range ctxMap(taskCtx, "initial_state") {
		state[k] = v
	}

	completed := make([]interface{}, 0, len(steps))
	for i, raw := range steps {
		name := fmt.Sprintf("%v", raw)
		state[name] = fmt.Sprintf("completed as step %d", i+1)
		completed = append(completed, name)
	}

	return map[string]interface{}{
		"workflow":        description,
		"steps_completed": completed,
		"final_state":     state,
	}, nil
}

// routingTask picks a route by matching the input's task_type (then any
// input value) against routing rule keys, defaulting when nothing matches.
func routingTask(_ context.Context, _ string, taskCtx map[string]interface{}) (map[string]interface{}, error) {
	input := ctxMap(taskCtx, "input_data")
	rules := ctxMap(taskCtx, "routing_rules")

	route := "default"
	matchedOn := ""

	if tt, ok := input["task_type"].(string); ok {
		if target, ok := rules[tt]; ok {
			route = fmt.Sprintf("%v", target)
			matchedOn = tt
		}
	}
	if matchedOn == "" {
		for _, key := range sortedKeys(input) {
			val := fmt.Sprintf("%v", input[key])
			if target, ok := rules[val]; ok {
				route = fmt.Sprintf("%v", target)
				matchedOn = val
				break
			}
		}
	}

	reasoning := "no routing rule matched, using default"
	if matchedOn != "" {
		reasoning = fmt.Sprintf("matched rule %q", matchedOn)
	}

	return map[string]interface{}{
		"route":       route,
		"routed_data": input,
		"reasoning":   reasoning,
	}, nil
}

func conditionalLogicTask(_ context.Context, _ string, taskCtx map[string]interface{}) (map[string]interface{}, error) {
	conditions := ctxSlice(taskCtx, "conditions")
	data := ctxMap(taskCtx, "data")

	evaluated := make([]interface{}, 0, len(conditions))
	allTrue := len(conditions) > 0
	for _, raw := range conditions {
		expr := fmt.Sprintf("%v", raw)
		entry := map[string]interface{}{"condition": expr}
		ok, err := EvaluateCondition(expr, data)
		if err != nil {
			entry["result"] = false
			entry["error"] = err.Error()
			allTrue = false
		} else {
			entry["result"] = ok
			if !ok {
				allTrue = false
			}
		}
		evaluated = append(evaluated, entry)
	}

	branch := "else"
	if allTrue {
		branch = "then"
	}

	return map[string]interface{}{
		"conditions_evaluated": evaluated,
		"all_true":             allTrue,
		"branch":               branch,
	}, nil
}
