package a2a

import (
	"context"
	"fmt"
	"log"

	"github.com/okmesh/agentmesh/pkg/types"
)

// Executor is the slice of the hosting agent the handler needs: a static
// capability list and task execution. Implementations report task-level
// failure inside the outcome map; a returned error means the executor itself
// fell over.
type Executor interface {
	Capabilities() []types.Capability
	Execute(ctx context.Context, taskType, description string, taskCtx map[string]interface{}) (map[string]interface{}, error)
}

// Handler dispatches inbound A2A messages to the hosting agent's executor.
//
// Handle never lets a fault escape: malformed messages, unknown types and
// executor errors all come back as failure Responses, so the HTTP layer can
// always answer 200 with a well-formed body.
type Handler struct {
	agentID   string
	agentType string
}

// NewHandler creates a message handler answering as the given agent.
func NewHandler(agentID, agentType string) *Handler {
	return &Handler{agentID: agentID, agentType: agentType}
}

// Handle routes msg by type and produces the reply envelope.
func (h *Handler) Handle(ctx context.Context, msg types.Message, exec Executor) (resp *types.Response) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered while handling %s from %s: %v", msg.MessageType, msg.SenderID, r)
			resp = types.FailResponse(msg.MessageID, h.agentID,
				fmt.Sprintf("Message handling failed: %v", r))
		}
	}()

	switch msg.MessageType {
	case types.MessageHealthCheck:
		return h.handleHealthCheck(msg)
	case types.MessageGetCapabilities:
		return h.handleGetCapabilities(msg, exec)
	case types.MessageExecuteTask, types.MessageDelegateTask:
		// Delegation is currently a semantic alias of execution; no extra
		// acceptance or capability matching is layered on top.
		return h.handleExecuteTask(ctx, msg, exec)
	case types.MessageShareContext:
		return h.handleShareContext(msg)
	default:
		return types.FailResponse(msg.MessageID, h.agentID,
			fmt.Sprintf("Unknown message type: %s", msg.MessageType))
	}
}

func (h *Handler) handleHealthCheck(msg types.Message) *types.Response {
	return types.OKResponse(msg.MessageID, h.agentID, map[string]interface{}{
		"status":     "healthy",
		"agent_id":   h.agentID,
		"agent_type": h.agentType,
		"timestamp":  types.UTCTimestamp(),
	})
}

func (h *Handler) handleGetCapabilities(msg types.Message, exec Executor) *types.Response {
	caps := exec.Capabilities()
	capList := make([]interface{}, 0, len(caps))
	for _, c := range caps {
		capList = append(capList, map[string]interface{}{
			"name":               c.Name,
			"description":        c.Description,
			"input_schema":       c.InputSchema,
			"output_schema":      c.OutputSchema,
			"estimated_duration": c.EstimatedDuration,
		})
	}
	return types.OKResponse(msg.MessageID, h.agentID, map[string]interface{}{
		"capabilities": capList,
		"agent_type":   h.agentType,
	})
}

func (h *Handler) handleExecuteTask(ctx context.Context, msg types.Message, exec Executor) *types.Response {
	taskType, _ := msg.Payload["task_type"].(string)
	if taskType == "" {
		return types.FailResponse(msg.MessageID, h.agentID, "Missing task_type in task data")
	}

	description, _ := msg.Payload["description"].(string)
	taskCtx, _ := msg.Payload["context"].(map[string]interface{})

	outcome, err := exec.Execute(ctx, taskType, description, taskCtx)
	if err != nil {
		return types.FailResponse(msg.MessageID, h.agentID,
			fmt.Sprintf("Task execution failed: %v", err))
	}

	success, _ := outcome["success"].(bool)
	resp := &types.Response{
		Success:   success,
		MessageID: msg.MessageID,
		SenderID:  h.agentID,
		Payload: map[string]interface{}{
			"task_result": outcome,
			"executed_by": h.agentID,
		},
		Timestamp: types.UTCTimestamp(),
	}
	if !success {
		if errMsg, _ := outcome["error"].(string); errMsg != "" {
			resp.Error = errMsg
		} else {
			resp.Error = "task failed"
		}
	}
	return resp
}

func (h *Handler) handleShareContext(msg types.Message) *types.Response {
	contextType, _ := msg.Payload["context_type"].(string)
	if contextType == "" {
		contextType = "general"
	}
	// Acknowledge receipt only; shared context is not persisted.
	log.Printf("Received %s context from %s", contextType, msg.SenderID)

	return types.OKResponse(msg.MessageID, h.agentID, map[string]interface{}{
		"context_received": true,
		"context_type":     contextType,
		"received_by":      h.agentID,
	})
}
