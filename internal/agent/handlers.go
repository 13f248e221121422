package agent

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/okmesh/agentmesh/pkg/types"
)

// Collaborator roles map onto the task type their agent profile serves.
// Unrecognized roles are asked to run the primary task type as-is.
var roleTaskTypes = map[string]string{
	"researcher":     "research",
	"decision_maker": "decision_making",
	"data_processor": "data_analysis",
}

// handleExecute runs a task on this agent, fanning out to collaborators when
// the request names any. Domain failures answer 200 with success=false; 500
// is reserved for an executor fault.
func (a *Agent) handleExecute(c *gin.Context) {
	var req types.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   fmt.Sprintf("Invalid task request: %v", err),
		})
		return
	}

	a.activeTasks.Add(1)
	defer a.activeTasks.Add(-1)

	ctx, cancel := context.WithTimeout(c.Request.Context(),
		time.Duration(req.TimeoutOrDefault())*time.Second)
	defer cancel()

	outcome, err := a.manager.Execute(ctx, req.TaskType, req.Description, req.Context)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   fmt.Sprintf("Task execution failed: %v", err),
		})
		return
	}

	success, _ := outcome["success"].(bool)
	result, _ := outcome["result"].(map[string]interface{})
	if result == nil {
		result = map[string]interface{}{}
	}
	executionTime, _ := outcome["execution_time"].(float64)

	if len(req.Collaborators) > 0 {
		result["collaboration"] = a.collaborate(ctx, &req)
	}

	taskResult := types.TaskResult{
		Success:       success,
		Result:        result,
		AgentID:       a.config.AgentID,
		ExecutionTime: executionTime,
		Timestamp:     types.UTCTimestamp(),
	}
	if !success {
		if errMsg, _ := outcome["error"].(string); errMsg != "" {
			taskResult.Error = errMsg
		} else {
			taskResult.Error = "task failed"
		}
	}

	c.JSON(http.StatusOK, taskResult)
}

// collaborate asks each named collaborator to run its role's task type.
// A role mapped to an empty URL is resolved against the configured peer list
// by capability. A collaborator that fails or cannot be reached is simply
// left out of the returned map; collaboration is best-effort and never fails
// the primary task.
func (a *Agent) collaborate(ctx context.Context, req *types.TaskRequest) map[string]interface{} {
	collaboration := map[string]interface{}{}

	roles := make([]string, 0, len(req.Collaborators))
	for role := range req.Collaborators {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	for _, role := range roles {
		taskType, ok := roleTaskTypes[role]
		if !ok {
			taskType = req.TaskType
		}

		target := req.Collaborators[role]
		if target == "" {
			peer, found := a.client.FindCapableAgent(ctx, a.config.PeerURLs, taskType)
			if !found {
				debugLog(a.config, "No configured peer offers %s for role %s", taskType, role)
				continue
			}
			target = peer
		}

		resp := a.client.ExecuteTask(ctx, target, map[string]interface{}{
			"task_type":   taskType,
			"description": req.Description,
			"context":     req.Context,
		})
		if !resp.Success {
			debugLog(a.config, "Collaborator %s (%s) failed: %s", role, target, resp.Error)
			continue
		}

		contribution := resp.Payload
		if taskResult, ok := resp.Payload["task_result"].(map[string]interface{}); ok {
			if inner, ok := taskResult["result"].(map[string]interface{}); ok {
				contribution = inner
			}
		}
		collaboration[role] = contribution
	}

	return collaboration
}

func (a *Agent) handleCapabilities(c *gin.Context) {
	caps := a.manager.Capabilities()
	capList := make([]gin.H, 0, len(caps))
	for _, cap := range caps {
		capList = append(capList, gin.H{
			"name":               cap.Name,
			"description":        cap.Description,
			"input_schema":       cap.InputSchema,
			"output_schema":      cap.OutputSchema,
			"estimated_duration": cap.EstimatedDuration,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"agent_id":             a.config.AgentID,
		"agent_type":           a.config.AgentType,
		"capabilities":         capList,
		"supported_task_types": a.manager.Profile().TaskTypes(),
	})
}

func (a *Agent) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, types.AgentStatus{
		Status:            "healthy",
		AgentID:           a.config.AgentID,
		AgentType:         a.config.AgentType,
		Uptime:            a.uptimeSeconds(),
		ActiveTasks:       a.activeTasks.Load(),
		CapabilitiesCount: len(a.manager.Capabilities()),
		Timestamp:         types.UTCTimestamp(),
	})
}

// handleA2AMessage answers the peer protocol endpoint. A body that does not
// bind is the caller's protocol error and gets 422; everything past binding
// answers 200 with a well-formed Response envelope.
func (a *Agent) handleA2AMessage(c *gin.Context) {
	var msg types.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusUnprocessableEntity,
			types.FailResponse("", a.config.AgentID, fmt.Sprintf("Invalid A2A message: %v", err)))
		return
	}
	if msg.Payload == nil {
		msg.Payload = map[string]interface{}{}
	}

	c.JSON(http.StatusOK, a.handler.Handle(c.Request.Context(), msg, a.manager))
}

func (a *Agent) handleSpec(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"agent_id":             a.config.AgentID,
		"agent_name":           a.config.AgentName,
		"agent_type":           a.config.AgentType,
		"version":              a.config.Version,
		"endpoints":            []string{"/execute", "/capabilities", "/health", "/a2a/message", "/spec"},
		"supported_task_types": a.manager.Profile().TaskTypes(),
		"a2a_ready":            true,
		"a2a_endpoint":         "/a2a/message",
	})
}
