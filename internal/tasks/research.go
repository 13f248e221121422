package tasks

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/okmesh/agentmesh/pkg/types"
)

// NewResearchProfile builds the research agent's task set: research,
// analysis, planning and writing. Task bodies are deterministic text
// composition over the request context.
func NewResearchProfile() *Profile {
	p := NewProfile("research")

	p.register(types.Capability{
		Name:        "research",
		Description: "Research a topic and produce findings with sources",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"task_type":   map[string]interface{}{"type": "string", "enum": []interface{}{"research"}},
				"description": map[string]interface{}{"type": "string"},
				"context":     map[string]interface{}{"type": "object"},
			},
			"required": []interface{}{"task_type", "description"},
		},
		OutputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"findings": map[string]interface{}{"type": "array"},
				"summary":  map[string]interface{}{"type": "string"},
				"sources":  map[string]interface{}{"type": "array"},
			},
		},
		EstimatedDuration: 30,
	}, researchTask)

	p.register(types.Capability{
		Name:        "analysis",
		Description: "Analyze a subject and produce insights and recommendations",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"task_type":   map[string]interface{}{"type": "string", "enum": []interface{}{"analysis"}},
				"description": map[string]interface{}{"type": "string"},
				"context":     map[string]interface{}{"type": "object"},
			},
			"required": []interface{}{"task_type", "description"},
		},
		OutputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"analysis":        map[string]interface{}{"type": "string"},
				"insights":        map[string]interface{}{"type": "array"},
				"recommendations": map[string]interface{}{"type": "array"},
			},
		},
		EstimatedDuration: 25,
	}, analysisTask)

	p.register(types.Capability{
		Name:        "planning",
		Description: "Produce a step-by-step plan with milestones",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"task_type":   map[string]interface{}{"type": "string", "enum": []interface{}{"planning"}},
				"description": map[string]interface{}{"type": "string"},
			},
			"required": []interface{}{"task_type", "description"},
		},
		OutputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"plan":         map[string]interface{}{"type": "string"},
				"action_items": map[string]interface{}{"type": "array"},
			},
		},
		EstimatedDuration: 20,
	}, planningTask)

	p.register(types.Capability{
		Name:        "writing",
		Description: "Write structured content for a given brief",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"task_type":   map[string]interface{}{"type": "string", "enum": []interface{}{"writing"}},
				"description": map[string]interface{}{"type": "string"},
			},
			"required": []interface{}{"task_type", "description"},
		},
		OutputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"content":    map[string]interface{}{"type": "string"},
				"word_count": map[string]interface{}{"type": "integer"},
			},
		},
		EstimatedDuration: 20,
	}, writingTask)

	return p
}

func researchTask(_ context.Context, description string, taskCtx map[string]interface{}) (map[string]interface{}, error) {
	focus := ctxString(taskCtx, "focus", "general")

	findings := []interface{}{
		fmt.Sprintf("Primary finding for %q with focus on %s", description, focus),
	}
	for _, key := range sortedKeys(taskCtx) {
		if key == "focus" {
			continue
		}
		findings = append(findings, fmt.Sprintf("Context factor %s considered: %v", key, taskCtx[key]))
	}

	return map[string]interface{}{
		"findings": findings,
		"summary":  fmt.Sprintf("Research completed on: %s", description),
		"sources":  []interface{}{"internal knowledge base"},
		"focus":    focus,
	}, nil
}

func analysisTask(_ context.Context, description string, taskCtx map[string]interface{}) (map[string]interface{}, error) {
	focus := ctxString(taskCtx, "focus", "general")

	insights := []interface{}{
		fmt.Sprintf("Dominant pattern relates to %s", focus),
	}
	if len(taskCtx) > 1 {
		insights = append(insights, fmt.Sprintf("%d context dimensions were weighed", len(taskCtx)))
	}

	return map[string]interface{}{
		"analysis":        fmt.Sprintf("Analysis of %q across %d context dimensions", description, len(taskCtx)),
		"insights":        insights,
		"recommendations": []interface{}{"review insights before acting", "gather follow-up data"},
	}, nil
}

func planningTask(_ context.Context, description string, taskCtx map[string]interface{}) (map[string]interface{}, error) {
	steps := []interface{}{
		"clarify objectives",
		"identify resources",
		"define milestones",
		"assign owners",
		"review and adjust",
	}
	return map[string]interface{}{
		"plan":         fmt.Sprintf("Plan for %q in %d steps", description, len(steps)),
		"action_items": steps,
		"timeline":     fmt.Sprintf("%d phases", len(steps)),
	}, nil
}

func writingTask(_ context.Context, description string, taskCtx map[string]interface{}) (map[string]interface{}, error) {
	audience := ctxString(taskCtx, "audience", "general")
	content := fmt.Sprintf("Draft for %q, written for a %s audience.", description, audience)

	return map[string]interface{}{
		"content":    content,
		"word_count": len(strings.Fields(content)),
		"type":       "written_content",
	}, nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
