package codegen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/searchlens/searchlens/pkg/llm"
	"github.com/searchlens/searchlens/pkg/planner"
	"github.com/searchlens/searchlens/pkg/registry"
	"github.com/searchlens/searchlens/pkg/selector"
)

type capturingProvider struct {
	content string
	err     error
	lastReq llm.Request
}

func (p *capturingProvider) Call(ctx context.Context, request llm.Request) (*llm.Response, error) {
	p.lastReq = request
	if p.err != nil {
		return nil, p.err
	}
	return &llm.Response{Content: p.content}, nil
}

func (p *capturingProvider) Provider() string { return "capturing" }

func fixtureSelection() *selector.PlanToolSelection {
	return &selector.PlanToolSelection{
		OriginalQuery: "q",
		Summary:       "s",
		Steps: []selector.ToolSelection{
			{StepID: 1, Server: planner.AffinitySecondary, StepGoal: "Fetch backlinks",
				SelectedToolNames: []string{"backlinks_summary", "backlinks_anchors"}},
			{StepID: 2, Server: planner.AffinityNone, StepGoal: "Summarize",
				SelectedToolNames: []string{}},
		},
	}
}

func fixtureMetadata() map[string]registry.ToolMetadata {
	return map[string]registry.ToolMetadata{
		"backlinks_summary": {
			Description: "Backlink profile summary",
			ArgsSchema: map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"target"},
			},
		},
		"backlinks_anchors": {Description: "Anchor text distribution"},
	}
}

func TestBuildStepCatalogs(t *testing.T) {
	catalog := buildStepCatalogs(fixtureSelection(), fixtureMetadata())

	if len(catalog) != 2 {
		t.Fatalf("expected 2 step catalogs, got %d", len(catalog))
	}

	step1 := catalog[1]
	if len(step1.Tools) != 2 {
		t.Fatalf("step 1 should expose exactly its selected tools, got %d", len(step1.Tools))
	}
	if step1.Tools[0].Name != "backlinks_summary" || step1.Tools[0].Description != "Backlink profile summary" {
		t.Errorf("metadata not joined: %+v", step1.Tools[0])
	}
	if step1.Tools[0].ArgsSchema == nil {
		t.Error("args schema dropped")
	}
	if step1.Server != "secondary-analytics" {
		t.Errorf("server = %s", step1.Server)
	}

	step2 := catalog[2]
	if len(step2.Tools) != 0 {
		t.Errorf("reasoning-only step must have an empty catalog, got %d tools", len(step2.Tools))
	}
}

func TestGeneratePassesContext(t *testing.T) {
	provider := &capturingProvider{content: "async function run() { return {}; }"}
	g := New(provider, llm.Settings{Model: "test-model"})

	plan := &planner.Plan{
		OriginalQuery: "audit backlinks",
		Summary:       "s",
		Steps:         []planner.PlanStep{{ID: 1, Goal: "Fetch backlinks", ServerAffinity: planner.AffinitySecondary}},
	}

	code, err := g.Generate(context.Background(), "audit backlinks", plan, fixtureSelection(), fixtureMetadata())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if code != provider.content {
		t.Errorf("code must be returned verbatim, got %q", code)
	}

	if !strings.Contains(provider.lastReq.SystemPrompt, "runTool") {
		t.Error("system prompt must describe the runTool helper")
	}
	if !strings.Contains(provider.lastReq.SystemPrompt, "async function run()") {
		t.Error("system prompt must pin the entry point signature")
	}

	body := provider.lastReq.Messages[0].Content
	for _, fragment := range []string{"audit backlinks", "backlinks_summary", "tools_catalog"} {
		if !strings.Contains(body, fragment) {
			t.Errorf("user message missing %q", fragment)
		}
	}
}

func TestGenerateProviderError(t *testing.T) {
	g := New(&capturingProvider{err: errors.New("overloaded")}, llm.Settings{Model: "test-model"})

	plan := &planner.Plan{Steps: []planner.PlanStep{{ID: 1, Goal: "g", ServerAffinity: planner.AffinityNone}}}
	if _, err := g.Generate(context.Background(), "q", plan, fixtureSelection(), fixtureMetadata()); err == nil {
		t.Fatal("expected error to propagate")
	}
}
