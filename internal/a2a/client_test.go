package a2a

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okmesh/agentmesh/pkg/types"
)

// peerServer runs a fake agent answering /a2a/message with the given handler.
func peerServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/a2a/message", handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func respondOK(t *testing.T, payload map[string]interface{}) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var msg types.Message
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			t.Errorf("peer received undecodable message: %v", err)
		}
		resp := types.OKResponse(msg.MessageID, "peer-agent", payload)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func TestSendSuccess(t *testing.T) {
	srv := peerServer(t, respondOK(t, map[string]interface{}{"status": "healthy"}))

	c := NewClient("tester", "test")
	resp := c.HealthCheck(context.Background(), srv.URL)

	if resp == nil {
		t.Fatal("Send returned nil response")
	}
	if !resp.Success {
		t.Fatalf("expected success, got error: %s", resp.Error)
	}
	if resp.Payload["status"] != "healthy" {
		t.Errorf("payload status = %v, want healthy", resp.Payload["status"])
	}
	if resp.SenderID != "peer-agent" {
		t.Errorf("sender_id = %q, want peer-agent", resp.SenderID)
	}
}

func TestSendConnectionRefused(t *testing.T) {
	c := NewClient("tester", "test")

	// Port from the reserved test range; nothing is listening there.
	resp := c.HealthCheck(context.Background(), "http://127.0.0.1:1")

	if resp == nil {
		t.Fatal("Send returned nil response")
	}
	if resp.Success {
		t.Fatal("expected failure against unreachable peer")
	}
	if !strings.Contains(resp.Error, "communication error") {
		t.Errorf("error = %q, want communication error", resp.Error)
	}
	if resp.Payload == nil {
		t.Error("failure response payload must not be nil")
	}
}

func TestSendNon200Status(t *testing.T) {
	srv := peerServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	c := NewClient("tester", "test")
	resp := c.HealthCheck(context.Background(), srv.URL)

	if resp.Success {
		t.Fatal("expected failure for HTTP 500")
	}
	if !strings.HasPrefix(resp.Error, "HTTP 500:") {
		t.Errorf("error = %q, want HTTP 500 prefix", resp.Error)
	}
}

func TestSendMalformedResponseBody(t *testing.T) {
	srv := peerServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	})

	c := NewClient("tester", "test")
	resp := c.HealthCheck(context.Background(), srv.URL)

	if resp.Success {
		t.Fatal("expected failure for unparseable body")
	}
	if !strings.Contains(resp.Error, "failed to parse response") {
		t.Errorf("error = %q, want parse failure", resp.Error)
	}
}

func TestSendTimeout(t *testing.T) {
	srv := peerServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	})

	c := NewClientWithTimeout("tester", "test", 50*time.Millisecond)
	resp := c.HealthCheck(context.Background(), srv.URL)

	if resp.Success {
		t.Fatal("expected failure on timeout")
	}
	if !strings.Contains(resp.Error, "timeout communicating with") {
		t.Errorf("error = %q, want timeout message", resp.Error)
	}
}

func TestSendNilPeerPayload(t *testing.T) {
	srv := peerServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"message_id":"m1","sender_id":"peer","timestamp":"2026-01-01T00:00:00Z"}`))
	})

	c := NewClient("tester", "test")
	resp := c.HealthCheck(context.Background(), srv.URL)

	if !resp.Success {
		t.Fatalf("unexpected failure: %s", resp.Error)
	}
	if resp.Payload == nil {
		t.Error("payload must be normalized to an empty map")
	}
}

func TestExecuteTaskCarriesTaskData(t *testing.T) {
	var received types.Message
	srv := peerServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		json.NewEncoder(w).Encode(types.OKResponse(received.MessageID, "peer", nil))
	})

	c := NewClient("tester", "test")
	c.ExecuteTask(context.Background(), srv.URL, map[string]interface{}{
		"task_type":   "research",
		"description": "study something",
	})

	if received.MessageType != types.MessageExecuteTask {
		t.Errorf("message_type = %q, want execute_task", received.MessageType)
	}
	if received.Payload["task_type"] != "research" {
		t.Errorf("payload task_type = %v, want research", received.Payload["task_type"])
	}
	if received.CorrelationID == "" {
		t.Error("execute_task messages must carry a correlation_id")
	}
}

func TestDelegateTaskPayload(t *testing.T) {
	var received types.Message
	srv := peerServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		json.NewEncoder(w).Encode(types.OKResponse(received.MessageID, "peer", nil))
	})

	c := NewClient("delegator", "test")
	c.DelegateTask(context.Background(), srv.URL, "sub-task",
		map[string]interface{}{"task_type": "analysis"}, "analysis")

	if received.MessageType != types.MessageDelegateTask {
		t.Errorf("message_type = %q, want delegate_task", received.MessageType)
	}
	if received.Payload["delegated_by"] != "delegator" {
		t.Errorf("delegated_by = %v, want delegator", received.Payload["delegated_by"])
	}
	if received.Payload["required_capability"] != "analysis" {
		t.Errorf("required_capability = %v", received.Payload["required_capability"])
	}
}

func TestFindCapableAgent(t *testing.T) {
	withoutCap := peerServer(t, respondOK(t, map[string]interface{}{
		"capabilities": []interface{}{
			map[string]interface{}{"name": "routing"},
		},
	}))
	withCap := peerServer(t, respondOK(t, map[string]interface{}{
		"capabilities": []interface{}{
			map[string]interface{}{"name": "research"},
			map[string]interface{}{"name": "analysis"},
		},
	}))

	c := NewClient("tester", "test")
	urls := []string{"http://127.0.0.1:1", withoutCap.URL, withCap.URL}

	found, ok := c.FindCapableAgent(context.Background(), urls, "analysis")
	if !ok {
		t.Fatal("expected to find a capable agent")
	}
	if found != withCap.URL {
		t.Errorf("found = %q, want %q", found, withCap.URL)
	}

	if _, ok := c.FindCapableAgent(context.Background(), urls, "welding"); ok {
		t.Error("expected no agent for unknown capability")
	}
}

func TestBroadcastSkipsUnaddressablePeers(t *testing.T) {
	a := peerServer(t, respondOK(t, map[string]interface{}{"status": "healthy"}))
	b := peerServer(t, respondOK(t, map[string]interface{}{"status": "healthy"}))

	c := NewClient("tester", "test")
	msg := types.NewMessage(types.MessageHealthCheck, "tester", nil)

	responses := c.Broadcast(context.Background(), []string{a.URL, "::not a url::", b.URL}, msg)
	if len(responses) != 2 {
		t.Fatalf("got %d responses, want 2", len(responses))
	}
	for _, resp := range responses {
		if !resp.Success {
			t.Errorf("unexpected failure response: %s", resp.Error)
		}
	}
}

func TestSendToAllPreservesOrder(t *testing.T) {
	a := peerServer(t, respondOK(t, map[string]interface{}{"who": "a"}))
	b := peerServer(t, respondOK(t, map[string]interface{}{"who": "b"}))

	c := NewClient("tester", "test")
	msg := types.NewMessage(types.MessageHealthCheck, "tester", nil)

	urls := []string{a.URL, "ftp://example.com", b.URL}
	results := c.SendToAll(context.Background(), urls, msg)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Response == nil || results[0].Response.Payload["who"] != "a" {
		t.Errorf("result 0 = %+v, want response from a", results[0])
	}
	if results[1].Err == nil {
		t.Error("result 1 should carry a validation error")
	}
	if results[2].Response == nil || results[2].Response.Payload["who"] != "b" {
		t.Errorf("result 2 = %+v, want response from b", results[2])
	}
}

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{url: "http://localhost:8001", wantErr: false},
		{url: "https://agents.example.com", wantErr: false},
		{url: "ftp://example.com", wantErr: true},
		{url: "http://", wantErr: true},
		{url: "not-a-url", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := validateBaseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateBaseURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}
