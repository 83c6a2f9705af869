package codegen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/searchlens/searchlens/pkg/llm"
	"github.com/searchlens/searchlens/pkg/planner"
	"github.com/searchlens/searchlens/pkg/registry"
	"github.com/searchlens/searchlens/pkg/selector"
)

const codegenSystemPrompt = `You are an expert JavaScript developer and SEO data analyst.

Your job:
- Given:
  - A user's SEO query
  - A structured multi-step plan
  - A small subset of allowed tools per step
- Generate JavaScript code that calls these tools via an injected async helper:

    runTool(toolName, args) -> result
    // Executes the named tool with the given arguments object and returns a
    // parsed JSON-like result. Await it.

## Defaults (apply always unless the user overrides them in required_inputs, for secondary-analytics tools)
- depth = 10
- language_code = "en"
- location_name = "India"

## Requirements for the code you output:
- OUTPUT ONLY JAVASCRIPT CODE. No backticks, no explanation, no text outside the code.
- Define exactly one async entrypoint:

    async function run() {
        ...
    }

- Inside run():
  - Execute the plan steps in a sensible order.
  - For each step, call runTool(...) only with tool names that are ALLOWED for that step.
  - Use exact tool names as provided in tools_catalog.
  - Pass arguments according to each tool's args_schema from tools_catalog.
  - Validate all required arguments are present before calling tools.
  - Tool results can be an object, array, string, number, boolean, or null. ALL types are VALID results. Store them AS-IS in raw_results; never replace a valid non-object result with an error object.
  - Wrap every tool call so a failure becomes an inline error value, never an uncaught exception:

    let rawResults, keyInsights;
    try {
        rawResults = await runTool("tool_name", {arg: "value"});
        keyInsights = describeResult(rawResults);
    } catch (e) {
        rawResults = {error: String(e), error_type: e && e.name ? e.name : "Error"};
        keyInsights = "Error: " + String(e);
    }

  - Build and return a result object:

    return {
        summary: "<short overall summary>",
        steps: [
            {
                step_id: <number>,
                description: "<what this step did>",
                raw_results: <the raw or lightly processed tool results>,
                key_insights: "<textual, human-readable insights from this step>",
            },
        ],
    };

## Constraints:
- The ONLY external capability is runTool. No imports, no require, no fetch, no filesystem, no timers.
- Use only plain language features (JSON, Math, String, Array, Object).
- Be defensive: if a tool result is missing, empty, or an unexpected type, handle it gracefully and still return a result.
- Do not print anything; just compute and return the object.
- Do not change the signature of run(). Keep it: async function run()
- Extract the domain/URL from the user query if needed for tool arguments.
- When accessing nested data, check the value's type first; only index into objects and arrays that actually are objects and arrays.`

// Generator emits the orchestration script for a planned query
type Generator struct {
	provider llm.Provider
	settings llm.Settings
}

// New creates a code generator backed by the given provider
func New(provider llm.Provider, settings llm.Settings) *Generator {
	return &Generator{
		provider: provider,
		settings: settings,
	}
}

// stepCatalog is the per-step view of allowed tools given to the collaborator
type stepCatalog struct {
	StepGoal string        `json:"step_goal"`
	Server   string        `json:"server"`
	Tools    []catalogTool `json:"tools"`
}

type catalogTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	ArgsSchema  map[string]interface{} `json:"args_schema"`
}

// Generate produces the script source for the plan and its tool selection.
// The output is raw source text; contract enforcement happens at execution.
func (g *Generator) Generate(
	ctx context.Context,
	userQuery string,
	plan *planner.Plan,
	selection *selector.PlanToolSelection,
	metadata map[string]registry.ToolMetadata,
) (string, error) {
	catalog := buildStepCatalogs(selection, metadata)

	payload, err := json.MarshalIndent(map[string]interface{}{
		"user_query":     userQuery,
		"plan":           plan,
		"tool_selection": selection,
		"tools_catalog":  catalog,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal codegen payload: %w", err)
	}

	request := llm.Request{
		Model:        g.settings.Model,
		SystemPrompt: codegenSystemPrompt,
		Messages: []llm.Message{
			{
				Role: "user",
				Content: fmt.Sprintf(
					"Here is the context for the task.\n\nJSON INPUT (user_query + plan + selected tools + tools_catalog):\n%s\n\nNow generate the JavaScript code for async function run().",
					string(payload),
				),
			},
		},
		Temperature: g.settings.Temperature,
		MaxTokens:   g.settings.MaxTokens,
	}

	response, err := g.provider.Call(ctx, request)
	if err != nil {
		return "", fmt.Errorf("code generation failed: %w", err)
	}

	log.Debug().Int("bytes", len(response.Content)).Msg("Orchestration script generated")

	return response.Content, nil
}

// buildStepCatalogs limits each step's catalog to its selected tools
func buildStepCatalogs(selection *selector.PlanToolSelection, metadata map[string]registry.ToolMetadata) map[int]stepCatalog {
	catalog := make(map[int]stepCatalog, len(selection.Steps))

	for _, stepSel := range selection.Steps {
		tools := make([]catalogTool, 0, len(stepSel.SelectedToolNames))
		for _, name := range stepSel.SelectedToolNames {
			meta := metadata[name]
			tools = append(tools, catalogTool{
				Name:        name,
				Description: meta.Description,
				ArgsSchema:  meta.ArgsSchema,
			})
		}

		catalog[stepSel.StepID] = stepCatalog{
			StepGoal: stepSel.StepGoal,
			Server:   string(stepSel.Server),
			Tools:    tools,
		}
	}

	return catalog
}
