package loadtest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okmesh/agentmesh/internal/a2a"
	"github.com/okmesh/agentmesh/pkg/types"
)

// FunctionalTester is tier 2: A2A health checks, one realistic domain task
// per agent, and a set of pairwise collaboration calls validated for proof
// that delegation actually occurred.
type FunctionalTester struct {
	cfg        *Config
	a2aClient  *a2a.Client
	httpClient *http.Client
}

func NewFunctionalTester(cfg *Config) *FunctionalTester {
	return &FunctionalTester{
		cfg:        cfg,
		a2aClient:  a2a.NewClientWithTimeout("load_tester", "orchestrator", cfg.Timeouts.Short),
		httpClient: &http.Client{Timeout: cfg.Timeouts.Long},
	}
}

func (t *FunctionalTester) Run(ctx context.Context) []TestResult {
	var results []TestResult

	for _, name := range t.cfg.AgentNames() {
		results = append(results, t.a2aHealthCheck(ctx, name))
		if !pause(ctx, t.cfg.Pacing.Functional) {
			return results
		}
	}

	for _, name := range t.cfg.AgentNames() {
		results = append(results, t.realisticTask(ctx, name))
		if !pause(ctx, t.cfg.Pacing.Functional) {
			return results
		}
	}

	for _, collab := range t.cfg.Collaborations {
		results = append(results, t.collaboration(ctx, collab))
		if !pause(ctx, t.cfg.Pacing.Functional) {
			return results
		}
	}

	return results
}

// a2aHealthCheck exercises the protocol endpoint rather than the plain HTTP
// health route; the client's never-raise contract means any failure arrives
// as a failure Response.
func (t *FunctionalTester) a2aHealthCheck(ctx context.Context, agentName string) TestResult {
	result := TestResult{
		TestName:  "a2a_health_check",
		AgentName: agentName,
		Timestamp: types.UTCTimestamp(),
	}

	resp := t.a2aClient.HealthCheck(ctx, t.cfg.Agents[agentName])
	result.Success = resp.Success
	result.ResultData = resp.Payload
	if resp.Success {
		result.StatusCode = http.StatusOK
	} else {
		result.Error = resp.Error
	}
	return result
}

func (t *FunctionalTester) realisticTask(ctx context.Context, agentName string) TestResult {
	task := t.cfg.Tasks[agentName]
	req := types.TaskRequest{
		TaskType:    task.TaskType,
		Description: task.Description,
		Context:     task.Context,
	}

	result := TestResult{
		TestName:  "realistic_task",
		AgentName: agentName,
		TaskData: map[string]interface{}{
			"task_type":   task.TaskType,
			"description": task.Description,
		},
		Timestamp: types.UTCTimestamp(),
	}

	status, taskResult, elapsed, err := postExecute(ctx, t.httpClient, t.cfg.Agents[agentName], req)
	result.StatusCode = status
	result.ResponseTime = elapsed
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = taskResult.Success
	result.ResultData = taskResult.Result
	if !taskResult.Success {
		result.Error = taskResult.Error
	}
	return result
}

// collaboration runs one cross-agent delegation and only counts it as a pass
// when the merged result proves the collaborator actually contributed.
func (t *FunctionalTester) collaboration(ctx context.Context, spec CollaborationSpec) TestResult {
	task := t.cfg.Tasks[spec.Primary]
	taskType := spec.TaskType
	if taskType == "" {
		taskType = task.TaskType
	}
	description := spec.Description
	if description == "" {
		description = task.Description
	}

	req := types.TaskRequest{
		TaskType:    taskType,
		Description: description,
		Context:     task.Context,
		Collaborators: map[string]string{
			spec.Role: t.cfg.Agents[spec.Collaborator],
		},
	}

	result := TestResult{
		TestName:  "collaboration",
		AgentName: spec.Primary,
		TaskData: map[string]interface{}{
			"task_type":    taskType,
			"collaborator": spec.Collaborator,
			"role":         spec.Role,
		},
		Timestamp: types.UTCTimestamp(),
	}

	status, taskResult, elapsed, err := postExecute(ctx, t.httpClient, t.cfg.Agents[spec.Primary], req)
	result.StatusCode = status
	result.ResponseTime = elapsed
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.ResultData = taskResult.Result
	if !taskResult.Success {
		result.Error = taskResult.Error
		return result
	}

	collaboration, ok := taskResult.Result["collaboration"].(map[string]interface{})
	if !ok || len(collaboration) == 0 {
		result.Error = fmt.Sprintf("no collaboration evidence from %s via %s", spec.Primary, spec.Role)
		return result
	}

	result.Success = true
	return result
}
