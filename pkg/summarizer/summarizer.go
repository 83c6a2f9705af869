package summarizer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/searchlens/searchlens/pkg/llm"
	"github.com/searchlens/searchlens/pkg/planner"
)

const summarySystemPrompt = `You are an expert SEO analyst.

You will be given:
- The original user query.
- The structured plan that was used to analyze data.
- The execution result from the analytics tools, as a JSON object with:
  {
    "summary": str,
    "steps": [
      {"step_id": int, "description": str, "raw_results": ..., "key_insights": str},
      ...
    ]
  }

Your job:
- Ignore low-level technical details.
- Give concise, data-driven, actionable SEO insights strictly based on the user's query.

Output requirements:
- Start with a short 2-3 line overview.
- Then 3-7 bullet points of key findings (what does the data say?).
- Then 3-7 bullet points of recommended actions (what should the user do next?).
- Be concise, avoid fluff.
- Explain in simple language but with expert-level depth.

Tone and style:
- No raw JSON.
- No long stories.
- No generic SEO advice.
- Only data-backed, query-specific insights.
- Clear, summary-style, prioritised recommendations.`

// Summarizer renders a structured execution result into a user-facing answer.
// A thin pass-through to the generation collaborator; the output is not
// structurally validated.
type Summarizer struct {
	provider llm.Provider
	settings llm.Settings
}

// New creates a summarizer backed by the given provider
func New(provider llm.Provider, settings llm.Settings) *Summarizer {
	return &Summarizer{
		provider: provider,
		settings: settings,
	}
}

// Summarize returns the final prose answer for the query
func (s *Summarizer) Summarize(ctx context.Context, userQuery string, plan *planner.Plan, executionResult interface{}) (string, error) {
	planJSON, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan: %w", err)
	}

	resultJSON, err := json.MarshalIndent(executionResult, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal execution result: %w", err)
	}

	request := llm.Request{
		Model:        s.settings.Model,
		SystemPrompt: summarySystemPrompt,
		Messages: []llm.Message{
			{
				Role: "user",
				Content: fmt.Sprintf(
					"Original user query:\n%s\n\nPlan used (JSON):\n%s\n\nExecution result (JSON):\n%s\n\nNow produce the final SEO answer as per the instructions.",
					userQuery, string(planJSON), string(resultJSON),
				),
			},
		},
		Temperature: s.settings.Temperature,
		MaxTokens:   s.settings.MaxTokens,
	}

	response, err := s.provider.Call(ctx, request)
	if err != nil {
		return "", fmt.Errorf("summarization failed: %w", err)
	}

	return response.Content, nil
}
