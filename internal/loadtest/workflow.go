package loadtest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okmesh/agentmesh/pkg/types"
)

// WorkflowTester is tier 3: multi-hop sequential chains where each step's
// output context feeds the next step's input. Steps within a chain are
// strictly sequential; a chain aborts at the first non-200 step.
type WorkflowTester struct {
	cfg        *Config
	httpClient *http.Client
}

func NewWorkflowTester(cfg *Config) *WorkflowTester {
	return &WorkflowTester{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeouts.Long},
	}
}

// Run exercises three distinct chain shapes: a forward chain over the agent
// set, the reverse ordering, and a dynamic-routing chain where step 1's
// output picks step 2's target.
func (t *WorkflowTester) Run(ctx context.Context) []WorkflowResult {
	names := t.cfg.AgentNames()
	if len(names) < 2 {
		return []WorkflowResult{{
			WorkflowName: "forward_chain",
			Success:      false,
			Error:        "workflow tier needs at least two agents",
			FinalResult:  map[string]interface{}{},
		}}
	}

	chain := names
	if len(chain) > 3 {
		chain = chain[:3]
	}
	reversed := make([]string, len(chain))
	for i, name := range chain {
		reversed[len(chain)-1-i] = name
	}

	return []WorkflowResult{
		t.runChain(ctx, "forward_chain", chain),
		t.runChain(ctx, "reverse_chain", reversed),
		t.runDynamicChain(ctx, chain),
	}
}

// runChain executes each step in order, feeding the prior step's result into
// the next step's context. The first failing step aborts the rest; outputs
// gathered so far stay in FinalResult for diagnostics.
func (t *WorkflowTester) runChain(ctx context.Context, name string, chain []string) WorkflowResult {
	wf := WorkflowResult{
		WorkflowName: name,
		AgentChain:   chain,
		FinalResult:  map[string]interface{}{},
	}

	start := time.Now()
	var previous map[string]interface{}

	for i, agentName := range chain {
		stepResult, err := t.runStep(ctx, agentName, previous)
		if err != nil {
			wf.TotalTime = time.Since(start).Seconds()
			wf.Error = fmt.Sprintf("step %d (%s): %v", i+1, agentName, err)
			return wf
		}

		wf.StepsCompleted++
		wf.FinalResult[fmt.Sprintf("step_%d_%s", i+1, agentName)] = stepResult
		previous = stepResult
	}

	wf.TotalTime = time.Since(start).Seconds()
	wf.Success = true
	return wf
}

// runDynamicChain lets step 1's output choose step 2's target: when the
// result carries a route naming a configured agent, that agent runs step 2.
func (t *WorkflowTester) runDynamicChain(ctx context.Context, chain []string) WorkflowResult {
	first := chain[0]
	fallback := chain[1]

	wf := WorkflowResult{
		WorkflowName: "dynamic_routing_chain",
		AgentChain:   []string{first},
		FinalResult:  map[string]interface{}{},
	}

	start := time.Now()
	firstResult, err := t.runStep(ctx, first, nil)
	if err != nil {
		wf.TotalTime = time.Since(start).Seconds()
		wf.Error = fmt.Sprintf("step 1 (%s): %v", first, err)
		return wf
	}
	wf.StepsCompleted = 1
	wf.FinalResult["step_1_"+first] = firstResult

	target := fallback
	if route, ok := firstResult["route"].(string); ok {
		if _, known := t.cfg.Agents[route]; known && route != first {
			target = route
		}
	}
	wf.AgentChain = append(wf.AgentChain, target)

	secondResult, err := t.runStep(ctx, target, firstResult)
	wf.TotalTime = time.Since(start).Seconds()
	if err != nil {
		wf.Error = fmt.Sprintf("step 2 (%s): %v", target, err)
		return wf
	}

	wf.StepsCompleted = 2
	wf.FinalResult["step_2_"+target] = secondResult
	wf.Success = true
	return wf
}

// runStep executes the agent's configured task with the previous step's
// output threaded into the task context. Any non-200, transport failure or
// domain failure is a step failure.
func (t *WorkflowTester) runStep(ctx context.Context, agentName string,
	previous map[string]interface{}) (map[string]interface{}, error) {

	task := t.cfg.Tasks[agentName]

	taskCtx := map[string]interface{}{}
	for k, v := range task.Context {
		taskCtx[k] = v
	}
	if previous != nil {
		taskCtx["previous_result"] = previous
	}

	req := types.TaskRequest{
		TaskType:    task.TaskType,
		Description: task.Description,
		Context:     taskCtx,
	}

	_, taskResult, _, err := postExecute(ctx, t.httpClient, t.cfg.Agents[agentName], req)
	if err != nil {
		return nil, err
	}
	if !taskResult.Success {
		return nil, fmt.Errorf("task failed: %s", taskResult.Error)
	}
	return taskResult.Result, nil
}
