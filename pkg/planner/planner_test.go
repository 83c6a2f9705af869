package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/searchlens/searchlens/pkg/llm"
)

type scriptedProvider struct {
	content string
	err     error
	lastReq llm.Request
}

func (p *scriptedProvider) Call(ctx context.Context, request llm.Request) (*llm.Response, error) {
	p.lastReq = request
	if p.err != nil {
		return nil, p.err
	}
	return &llm.Response{Content: p.content}, nil
}

func (p *scriptedProvider) Provider() string { return "scripted" }

func TestPlanParsesStructuredResponse(t *testing.T) {
	provider := &scriptedProvider{content: "Here is the plan:\n" + `{
		"original_query": "audit backlinks for example.com",
		"summary": "Backlink audit",
		"steps": [
			{"id": 1, "goal": "Fetch the backlink summary", "server_affinity": "secondary-analytics",
			 "categories": ["backlinks"], "required_inputs": ["domain"]},
			{"id": 2, "goal": "Assess link quality", "server_affinity": "none"}
		]
	}`}

	plan, err := New(provider, llm.Settings{Model: "test-model"}).Plan(context.Background(), "audit backlinks for example.com")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	if len(plan.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(plan.Steps))
	}
	if plan.Steps[0].ServerAffinity != AffinitySecondary {
		t.Errorf("step 1 affinity = %s", plan.Steps[0].ServerAffinity)
	}
	if len(plan.Steps[0].RequiredInputs) != 1 || plan.Steps[0].RequiredInputs[0] != "domain" {
		t.Errorf("required inputs not carried: %v", plan.Steps[0].RequiredInputs)
	}
	if provider.lastReq.SystemPrompt == "" {
		t.Error("planning request missing system prompt")
	}
}

func TestPlanFillsMissingOriginalQuery(t *testing.T) {
	provider := &scriptedProvider{content: `{
		"original_query": "",
		"summary": "s",
		"steps": [{"id": 1, "goal": "g", "server_affinity": "none"}]
	}`}

	plan, err := New(provider, llm.Settings{Model: "test-model"}).Plan(context.Background(), "the actual question")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if plan.OriginalQuery != "the actual question" {
		t.Errorf("original query = %q", plan.OriginalQuery)
	}
}

func TestPlanAppliesGenerationSettings(t *testing.T) {
	provider := &scriptedProvider{content: `{
		"original_query": "q",
		"summary": "s",
		"steps": [{"id": 1, "goal": "g", "server_affinity": "none"}]
	}`}

	settings := llm.Settings{Model: "test-model", Temperature: 0.3, MaxTokens: 1024}
	_, err := New(provider, settings).Plan(context.Background(), "q")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	if provider.lastReq.Model != "test-model" {
		t.Errorf("model = %q", provider.lastReq.Model)
	}
	if provider.lastReq.Temperature != 0.3 {
		t.Errorf("temperature = %v, want 0.3", provider.lastReq.Temperature)
	}
	if provider.lastReq.MaxTokens != 1024 {
		t.Errorf("max tokens = %d, want 1024", provider.lastReq.MaxTokens)
	}
}

func TestPlanProviderFailure(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("boom")}

	_, err := New(provider, llm.Settings{Model: "test-model"}).Plan(context.Background(), "q")
	if !errors.Is(err, ErrPlanningFailed) {
		t.Errorf("error %v is not ErrPlanningFailed", err)
	}
}

func TestPlanNonJSONResponse(t *testing.T) {
	provider := &scriptedProvider{content: "I cannot help with that."}

	_, err := New(provider, llm.Settings{Model: "test-model"}).Plan(context.Background(), "q")
	if !errors.Is(err, ErrPlanningFailed) {
		t.Errorf("error %v is not ErrPlanningFailed", err)
	}
}

func TestPlanRejectsMalformedSteps(t *testing.T) {
	// Valid JSON per schema, but IDs do not start at 1.
	provider := &scriptedProvider{content: `{
		"original_query": "q",
		"summary": "s",
		"steps": [{"id": 2, "goal": "g", "server_affinity": "none"}]
	}`}

	_, err := New(provider, llm.Settings{Model: "test-model"}).Plan(context.Background(), "q")
	if !errors.Is(err, ErrMalformedPlan) {
		t.Errorf("error %v is not ErrMalformedPlan", err)
	}
}
