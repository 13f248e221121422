package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okmesh/agentmesh/pkg/types"
)

// postExecute issues one timed POST /execute call. The returned error covers
// transport and decode failures only; HTTP status and domain success travel
// in the return values so callers can classify outcomes themselves.
func postExecute(ctx context.Context, client *http.Client, baseURL string,
	req types.TaskRequest) (statusCode int, result *types.TaskResult, elapsed float64, err error) {

	body, err := json.Marshal(req)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("encode task request: %w", err)
	}

	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return 0, nil, 0, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	elapsed = time.Since(start).Seconds()
	if err != nil {
		return 0, nil, elapsed, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, elapsed, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil, elapsed, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(raw))
	}

	var taskResult types.TaskResult
	if err := json.Unmarshal(raw, &taskResult); err != nil {
		return resp.StatusCode, nil, elapsed, fmt.Errorf("malformed response body: %w", err)
	}
	return resp.StatusCode, &taskResult, elapsed, nil
}
