package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/searchlens/searchlens/pkg/llm"
	"github.com/searchlens/searchlens/pkg/planner"
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

func TestSummarize(t *testing.T) {
	provider := &capturingProvider{content: "Overview.\n- finding\n- action"}
	s := New(provider, llm.Settings{Model: "test-model"})

	plan := &planner.Plan{
		OriginalQuery: "audit backlinks",
		Summary:       "Backlink audit",
		Steps:         []planner.PlanStep{{ID: 1, Goal: "Fetch backlinks", ServerAffinity: planner.AffinitySecondary}},
	}
	result := map[string]interface{}{
		"summary": "done",
		"steps": []interface{}{
			map[string]interface{}{"step_id": 1, "key_insights": "85 referring domains"},
		},
	}

	answer, err := s.Summarize(context.Background(), "audit backlinks", plan, result)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if answer != provider.content {
		t.Errorf("answer must be the provider output verbatim, got %q", answer)
	}

	body := provider.lastReq.Messages[0].Content
	for _, fragment := range []string{"audit backlinks", "Backlink audit", "85 referring domains"} {
		if !strings.Contains(body, fragment) {
			t.Errorf("summarizer prompt missing %q", fragment)
		}
	}
}

func TestSummarizeAppliesGenerationSettings(t *testing.T) {
	provider := &capturingProvider{content: "Overview."}
	s := New(provider, llm.Settings{Model: "test-model", Temperature: 0.7, MaxTokens: 2048})

	if _, err := s.Summarize(context.Background(), "q", &planner.Plan{}, nil); err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if provider.lastReq.Temperature != 0.7 || provider.lastReq.MaxTokens != 2048 {
		t.Errorf("settings not forwarded: temperature %v, max tokens %d",
			provider.lastReq.Temperature, provider.lastReq.MaxTokens)
	}
}

func TestSummarizeProviderError(t *testing.T) {
	s := New(&capturingProvider{err: errors.New("overloaded")}, llm.Settings{Model: "test-model"})
	if _, err := s.Summarize(context.Background(), "q", &planner.Plan{}, nil); err == nil {
		t.Fatal("expected error to propagate")
	}
}
