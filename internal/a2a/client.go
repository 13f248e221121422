package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/okmesh/agentmesh/pkg/types"
)

// DefaultTimeout bounds a single outbound A2A call.
const DefaultTimeout = 30 * time.Second

// Client originates outbound A2A calls to peer agents identified by base URL.
//
// Send and every helper built on it never return a transport error to the
// caller: connection failures, timeouts, non-200 statuses and unparseable
// bodies are all translated into a failure Response.
type Client struct {
	agentID    string
	agentType  string
	httpClient *http.Client
}

// NewClient creates an A2A client sending on behalf of the given agent.
func NewClient(agentID, agentType string) *Client {
	return NewClientWithTimeout(agentID, agentType, DefaultTimeout)
}

// NewClientWithTimeout creates an A2A client with a custom per-call timeout.
func NewClientWithTimeout(agentID, agentType string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		agentID:   agentID,
		agentType: agentType,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// AgentID returns the sender id this client stamps on outgoing messages.
func (c *Client) AgentID() string {
	return c.agentID
}

// Send posts msg to {targetURL}/a2a/message and returns the peer's Response.
// Every code path yields a Response; the returned value is never nil.
func (c *Client) Send(ctx context.Context, targetURL string, msg types.Message) *types.Response {
	endpoint := targetURL + "/a2a/message"

	body, err := json.Marshal(msg)
	if err != nil {
		return types.FailResponse(msg.MessageID, c.agentID,
			fmt.Sprintf("failed to encode message: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return types.FailResponse(msg.MessageID, c.agentID,
			fmt.Sprintf("failed to create request for %s: %v", targetURL, err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return types.FailResponse(msg.MessageID, c.agentID,
				fmt.Sprintf("timeout communicating with %s", targetURL))
		}
		return types.FailResponse(msg.MessageID, c.agentID,
			fmt.Sprintf("communication error: %v", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.FailResponse(msg.MessageID, c.agentID,
			fmt.Sprintf("failed to read response from %s: %v", targetURL, err))
	}

	if resp.StatusCode != http.StatusOK {
		return types.FailResponse(msg.MessageID, c.agentID,
			fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(respBody)))
	}

	var peerResp types.Response
	if err := json.Unmarshal(respBody, &peerResp); err != nil {
		return types.FailResponse(msg.MessageID, c.agentID,
			fmt.Sprintf("failed to parse response from %s: %v", targetURL, err))
	}
	if peerResp.Payload == nil {
		peerResp.Payload = map[string]interface{}{}
	}
	return &peerResp
}

// HealthCheck asks a peer whether it is healthy.
func (c *Client) HealthCheck(ctx context.Context, targetURL string) *types.Response {
	msg := types.NewMessage(types.MessageHealthCheck, c.agentID, map[string]interface{}{
		"agent_type": c.agentType,
	})
	return c.Send(ctx, targetURL, msg)
}

// GetCapabilities queries a peer's capability list.
func (c *Client) GetCapabilities(ctx context.Context, targetURL string) *types.Response {
	msg := types.NewMessage(types.MessageGetCapabilities, c.agentID, nil)
	return c.Send(ctx, targetURL, msg)
}

// ExecuteTask asks a peer to execute a task. taskData carries at least
// task_type, description and context.
func (c *Client) ExecuteTask(ctx context.Context, targetURL string, taskData map[string]interface{}) *types.Response {
	msg := types.NewMessage(types.MessageExecuteTask, c.agentID, taskData)
	return c.Send(ctx, targetURL, msg)
}

// DelegateTask hands a sub-task to a peer, recording who delegated it and
// which capability is required.
func (c *Client) DelegateTask(ctx context.Context, targetURL, description string,
	taskData map[string]interface{}, requiredCapability string) *types.Response {
	msg := types.NewMessage(types.MessageDelegateTask, c.agentID, map[string]interface{}{
		"task_description":    description,
		"task_data":           taskData,
		"required_capability": requiredCapability,
		"delegated_by":        c.agentID,
	})
	return c.Send(ctx, targetURL, msg)
}

// ShareContext propagates context to a peer. The receiver acknowledges but
// is not required to act on it.
func (c *Client) ShareContext(ctx context.Context, targetURL string,
	contextData map[string]interface{}, contextType string) *types.Response {
	if contextType == "" {
		contextType = "general"
	}
	msg := types.NewMessage(types.MessageShareContext, c.agentID, map[string]interface{}{
		"context_data": contextData,
		"context_type": contextType,
		"shared_by":    c.agentID,
	})
	return c.Send(ctx, targetURL, msg)
}

// FindCapableAgent queries each URL in order and returns the first one whose
// capability list contains capabilityName. Per-URL failures are skipped.
// Ordering of agentURLs is significant: first match wins.
func (c *Client) FindCapableAgent(ctx context.Context, agentURLs []string, capabilityName string) (string, bool) {
	for _, u := range agentURLs {
		resp := c.GetCapabilities(ctx, u)
		if !resp.Success {
			continue
		}
		caps, ok := resp.Payload["capabilities"].([]interface{})
		if !ok {
			continue
		}
		for _, raw := range caps {
			cap, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			if name, _ := cap["name"].(string); name == capabilityName {
				return u, true
			}
		}
	}
	return "", false
}

// PeerResult is the per-peer outcome of a fan-out. Exactly one of Response
// and Err is set.
type PeerResult struct {
	URL      string
	Response *types.Response
	Err      error
}

// SendToAll sends msg to every URL concurrently and returns one PeerResult
// per URL, in input order. A URL that cannot be addressed at all yields an
// Err; everything that reached Send yields a Response.
func (c *Client) SendToAll(ctx context.Context, agentURLs []string, msg types.Message) []PeerResult {
	results := make([]PeerResult, len(agentURLs))

	var wg sync.WaitGroup
	for i, u := range agentURLs {
		if err := validateBaseURL(u); err != nil {
			results[i] = PeerResult{URL: u, Err: err}
			continue
		}
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			results[i] = PeerResult{URL: u, Response: c.Send(ctx, u, msg)}
		}(i, u)
	}
	wg.Wait()

	return results
}

// Broadcast sends msg to every URL and returns the responses that came back.
// Peers that could not be addressed are logged and excluded, so the returned
// list may be shorter than agentURLs. A single bad peer never fails the
// whole broadcast.
func (c *Client) Broadcast(ctx context.Context, agentURLs []string, msg types.Message) []*types.Response {
	responses := make([]*types.Response, 0, len(agentURLs))
	for _, pr := range c.SendToAll(ctx, agentURLs, msg) {
		if pr.Err != nil {
			log.Printf("Broadcast failed to %s: %v", pr.URL, pr.Err)
			continue
		}
		responses = append(responses, pr.Response)
	}
	return responses
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid agent url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid agent url %q: unsupported scheme", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid agent url %q: missing host", raw)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}
