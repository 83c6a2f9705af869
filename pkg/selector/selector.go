package selector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/searchlens/searchlens/pkg/llm"
	"github.com/searchlens/searchlens/pkg/planner"
	"github.com/searchlens/searchlens/pkg/registry"
)

// ToolSource provides the live tool catalog
type ToolSource interface {
	Tools(ctx context.Context) ([]registry.ToolDescriptor, error)
}

// Selector maps plan steps to bounded subsets of concrete tool names.
//
// The primary path asks the generation collaborator to choose; any failure
// there switches to a deterministic heuristic, so selection never hard-fails
// the pipeline.
type Selector struct {
	tools      ToolSource
	provider   llm.Provider
	settings   llm.Settings
	maxPerStep int
}

// New creates a selector. maxPerStep <= 0 uses the default cap.
func New(tools ToolSource, provider llm.Provider, settings llm.Settings, maxPerStep int) *Selector {
	if maxPerStep <= 0 {
		maxPerStep = DefaultMaxToolsPerStep
	}
	return &Selector{
		tools:      tools,
		provider:   provider,
		settings:   settings,
		maxPerStep: maxPerStep,
	}
}

// catalogEntry is the compact per-tool view sent to the collaborator
type catalogEntry struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Servers     []string `json:"servers"`
	Categories  []string `json:"categories"`
}

// selectionSchema constrains the structured selection response
var selectionSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"original_query", "summary", "steps"},
	"properties": map[string]interface{}{
		"original_query": map[string]interface{}{"type": "string"},
		"summary":        map[string]interface{}{"type": "string"},
		"steps": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"step_id", "server", "step_goal", "selected_tool_names"},
				"properties": map[string]interface{}{
					"step_id":             map[string]interface{}{"type": "integer"},
					"server":              map[string]interface{}{"type": "string"},
					"step_goal":           map[string]interface{}{"type": "string"},
					"selected_tool_names": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
					"notes":               map[string]interface{}{"type": []interface{}{"string", "null"}},
				},
			},
		},
	},
}

// SelectForPlan chooses tools per plan step
func (s *Selector) SelectForPlan(ctx context.Context, plan *planner.Plan) (*PlanToolSelection, error) {
	allTools, err := s.tools.Tools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tool catalog: %w", err)
	}

	catalog := buildCatalog(allTools)

	result, err := s.selectModelDriven(ctx, plan, catalog)
	if err != nil {
		log.Warn().Err(err).Msg("Model-driven tool selection failed; using heuristic fallback")
		return s.selectHeuristic(plan, allTools), nil
	}

	s.postProcess(result, catalog)
	result.Strategy = StrategyModelDriven
	return result, nil
}

// selectModelDriven runs the primary, collaborator-backed selection path
func (s *Selector) selectModelDriven(ctx context.Context, plan *planner.Plan, catalog []catalogEntry) (*PlanToolSelection, error) {
	prompt, err := buildSelectionPrompt(plan, catalog, s.maxPerStep)
	if err != nil {
		return nil, err
	}

	request := llm.Request{
		Model:        s.settings.Model,
		SystemPrompt: "You are an SEO tool-routing expert. Respond with a single JSON object matching the requested schema. No prose.",
		Messages: []llm.Message{
			{Role: "user", Content: prompt},
		},
		Temperature: s.settings.Temperature,
		MaxTokens:   s.settings.MaxTokens,
	}

	var result PlanToolSelection
	if err := llm.Structured(ctx, s.provider, request, selectionSchema, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// postProcess drops tool names absent from the live catalog and truncates each
// step to the per-step cap, preserving order and removing duplicates.
func (s *Selector) postProcess(result *PlanToolSelection, catalog []catalogEntry) {
	valid := make(map[string]bool, len(catalog))
	for _, entry := range catalog {
		valid[entry.Name] = true
	}

	for i := range result.Steps {
		seen := make(map[string]bool)
		filtered := make([]string, 0, len(result.Steps[i].SelectedToolNames))
		for _, name := range result.Steps[i].SelectedToolNames {
			if !valid[name] || seen[name] {
				continue
			}
			seen[name] = true
			filtered = append(filtered, name)
			if len(filtered) == s.maxPerStep {
				break
			}
		}
		result.Steps[i].SelectedToolNames = filtered
	}
}

// buildCatalog annotates each live tool with the servers and categories the
// hint table associates with its name.
func buildCatalog(allTools []registry.ToolDescriptor) []catalogEntry {
	toolServers := make(map[string][]string)
	toolCategories := make(map[string][]string)

	for _, category := range hintCategoryOrder {
		for _, affinity := range []planner.ServerAffinity{planner.AffinityPrimary, planner.AffinitySecondary} {
			for _, hintName := range categoryToolHints[category][affinity] {
				if !containsString(toolServers[hintName], string(affinity)) {
					toolServers[hintName] = append(toolServers[hintName], string(affinity))
				}
				if !containsString(toolCategories[hintName], category) {
					toolCategories[hintName] = append(toolCategories[hintName], category)
				}
			}
		}
	}

	catalog := make([]catalogEntry, 0, len(allTools))
	for _, t := range allTools {
		catalog = append(catalog, catalogEntry{
			Name:        t.Name,
			Description: t.Description,
			Servers:     toolServers[t.Name],
			Categories:  toolCategories[t.Name],
		})
	}

	return catalog
}

// buildSelectionPrompt assembles the single user message for the collaborator
func buildSelectionPrompt(plan *planner.Plan, catalog []catalogEntry, maxPerStep int) (string, error) {
	var tools strings.Builder
	for _, t := range catalog {
		fmt.Fprintf(&tools, "- name: %s\n  servers: %s\n  categories: %s\n  description: %s\n",
			t.Name,
			orUnknown(strings.Join(t.Servers, ", ")),
			orUnknown(strings.Join(t.Categories, ", ")),
			t.Description,
		)
	}

	var steps strings.Builder
	for _, step := range plan.Steps {
		cats := "[]"
		if len(step.Categories) > 0 {
			cats = strings.Join(step.Categories, ", ")
		}
		fmt.Fprintf(&steps, "- step_id: %d\n  server: %s\n  categories: %s\n  goal: %s\n",
			step.ID, step.ServerAffinity, cats, step.Goal)
	}

	hints, err := json.MarshalIndent(orderedHints(), "", "  ")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`You will receive:
- The original SEO query and plan summary.
- A list of plan steps.
- A catalog of available tools (name, description, inferred servers, inferred categories).
- A hint map showing which tools are usually relevant for which SEO categories and servers.

Your job:
- For EACH plan step, choose a SMALL subset of tools to expose to the agent.
- Use at most %d tools per step.
- If a step is reasoning-only (server 'none'), leave its tool list empty.
- Prefer tools whose servers and categories match the step's server affinity and categories.
- Use the hint map as guidance, plus tool descriptions and the step goal text.
- Preserve the step_id and server from the input plan.

If you are unsure, choose a reasonable safe set of 1-3 tools that would likely help the step.

Original query:
%s

Plan summary:
%s

Plan steps:
%s

Available tools catalog:
%s

Category to tool hints:
%s`,
		maxPerStep,
		plan.OriginalQuery,
		plan.Summary,
		steps.String(),
		tools.String(),
		string(hints),
	), nil
}

// orderedHints renders the hint table with stable category ordering
func orderedHints() []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(hintCategoryOrder))
	for _, category := range hintCategoryOrder {
		entry := map[string]interface{}{"category": category}
		if names := categoryToolHints[category][planner.AffinityPrimary]; len(names) > 0 {
			entry["primary-analytics"] = names
		}
		if names := categoryToolHints[category][planner.AffinitySecondary]; len(names) > 0 {
			entry["secondary-analytics"] = names
		}
		out = append(out, entry)
	}
	return out
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
