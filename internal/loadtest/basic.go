package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okmesh/agentmesh/pkg/types"
)

// BasicTester is tier 1: per-agent connectivity checks against /health,
// /spec and /capabilities. Fixed request count, 3 per agent.
type BasicTester struct {
	cfg        *Config
	httpClient *http.Client
}

func NewBasicTester(cfg *Config) *BasicTester {
	return &BasicTester{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeouts.Short},
	}
}

// Run issues the connectivity sequence against every configured agent.
// Failures are recorded, never raised; the full record set always comes back.
func (t *BasicTester) Run(ctx context.Context) []TestResult {
	var results []TestResult

	for _, name := range t.cfg.AgentNames() {
		url := t.cfg.Agents[name]

		results = append(results, t.checkHealth(ctx, name, url))
		results = append(results, t.checkSpec(ctx, name, url))
		results = append(results, t.checkCapabilities(ctx, name, url))

		if !pause(ctx, t.cfg.Pacing.Connectivity) {
			break
		}
	}

	return results
}

func (t *BasicTester) checkHealth(ctx context.Context, agentName, baseURL string) TestResult {
	result, body := t.get(ctx, "health_check", agentName, baseURL+"/health")
	if !result.Success {
		return result
	}

	if status, _ := body["status"].(string); status != "healthy" {
		result.Success = false
		result.Error = fmt.Sprintf("unexpected health status: %v", body["status"])
	}
	result.ResultData = body
	return result
}

// checkSpec validates the self-description carries the fields peers rely on
// for discovery.
func (t *BasicTester) checkSpec(ctx context.Context, agentName, baseURL string) TestResult {
	result, body := t.get(ctx, "spec_check", agentName, baseURL+"/spec")
	if !result.Success {
		return result
	}

	for _, field := range []string{"agent_id", "agent_type", "supported_task_types"} {
		if _, ok := body[field]; !ok {
			result.Success = false
			result.Error = fmt.Sprintf("spec missing required field %q", field)
			break
		}
	}
	result.ResultData = body
	return result
}

func (t *BasicTester) checkCapabilities(ctx context.Context, agentName, baseURL string) TestResult {
	result, body := t.get(ctx, "capabilities_check", agentName, baseURL+"/capabilities")
	if !result.Success {
		return result
	}

	caps, ok := body["capabilities"].([]interface{})
	if !ok || len(caps) == 0 {
		result.Success = false
		result.Error = "agent reports no capabilities"
	}
	result.ResultData = body
	return result
}

// get issues one timed GET and classifies the outcome. Transport failures,
// non-200 statuses and undecodable bodies all come back as failed records.
func (t *BasicTester) get(ctx context.Context, testName, agentName, url string) (TestResult, map[string]interface{}) {
	result := TestResult{
		TestName:  testName,
		AgentName: agentName,
		Timestamp: types.UTCTimestamp(),
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		result.Error = fmt.Sprintf("build request: %v", err)
		return result, nil
	}

	resp, err := t.httpClient.Do(req)
	result.ResponseTime = time.Since(start).Seconds()
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result, nil
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Error = fmt.Sprintf("read body: %v", err)
		return result, nil
	}

	if resp.StatusCode != http.StatusOK {
		result.Error = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(raw))
		return result, nil
	}

	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		result.Error = fmt.Sprintf("malformed response body: %v", err)
		return result, nil
	}

	result.Success = true
	return result, body
}

// pause sleeps for d unless the context ends first; it reports whether the
// caller should keep going.
func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
