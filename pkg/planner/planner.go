package planner

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/searchlens/searchlens/pkg/llm"
)

const planSystemPrompt = `You are an expert SEO strategist and planner.

Your job:
- Read the user's query.
- Decide what needs to be done USING TWO BACKENDS:
  - 'primary-analytics': Search Console tools (traffic, queries, pages, CTR, positions).
  - 'secondary-analytics': third-party SEO data tools (keywords, SERP, competitors, CPC, difficulty, backlinks).
- Break the work into 1-5 clear, ordered steps.

Rules:
- Focus only on PLANNING, not on writing code.
- Use:
  - server_affinity='primary-analytics' when the step depends mostly on Search Console data.
  - server_affinity='secondary-analytics' when the step depends mostly on third-party SEO data.
  - server_affinity='both' when the step combines/joins both systems.
  - server_affinity='none' when the step is pure reasoning or explanation without tool calls.
- Assign categories from: gsc_properties, gsc_pages, gsc_performance, gsc_queries, gsc_misc, technical_audit, keywords, serp, paid_search, backlinks, rank_tracking, domain_insights, dataforseo_misc.
- Be explicit about required_inputs (e.g. 'domain', 'date_range', 'country', 'device', 'keywords_list').
- steps id must start at 1 and increase sequentially.
- Respond with a single JSON object matching the requested schema. No prose.`

// planSchema constrains the structured planning response
var planSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"original_query", "summary", "steps"},
	"properties": map[string]interface{}{
		"original_query": map[string]interface{}{"type": "string"},
		"summary":        map[string]interface{}{"type": "string"},
		"steps": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"id", "goal", "server_affinity"},
				"properties": map[string]interface{}{
					"id":   map[string]interface{}{"type": "integer"},
					"goal": map[string]interface{}{"type": "string"},
					"server_affinity": map[string]interface{}{
						"type": "string",
						"enum": []interface{}{"primary-analytics", "secondary-analytics", "both", "none"},
					},
					"categories":      map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
					"required_inputs": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
					"notes":           map[string]interface{}{"type": []interface{}{"string", "null"}},
				},
			},
		},
	},
}

// Planner turns a free-text query into a structured Plan.
// It decides what needs to be done; it never calls tools itself.
type Planner struct {
	provider llm.Provider
	settings llm.Settings
}

// New creates a planner backed by the given generation provider
func New(provider llm.Provider, settings llm.Settings) *Planner {
	return &Planner{
		provider: provider,
		settings: settings,
	}
}

// Plan generates and validates a structured plan for the user query
func (p *Planner) Plan(ctx context.Context, userQuery string) (*Plan, error) {
	request := llm.Request{
		Model:        p.settings.Model,
		SystemPrompt: planSystemPrompt,
		Messages: []llm.Message{
			{
				Role:    "user",
				Content: fmt.Sprintf("User query:\n%s\n\nCreate a structured plan to answer this.", userQuery),
			},
		},
		Temperature: p.settings.Temperature,
		MaxTokens:   p.settings.MaxTokens,
	}

	var plan Plan
	if err := llm.Structured(ctx, p.provider, request, planSchema, &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlanningFailed, err)
	}

	if plan.OriginalQuery == "" {
		plan.OriginalQuery = userQuery
	}

	if err := Validate(&plan); err != nil {
		return nil, err
	}

	log.Debug().
		Int("steps", len(plan.Steps)).
		Str("summary", plan.Summary).
		Msg("Plan generated")

	return &plan, nil
}
