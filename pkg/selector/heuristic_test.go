package selector

import (
	"reflect"
	"testing"

	"github.com/searchlens/searchlens/pkg/llm"
	"github.com/searchlens/searchlens/pkg/planner"
)

func newHeuristicSelector() *Selector {
	return New(&staticSource{tools: fixtureTools}, nil, llm.Settings{}, 0)
}

func TestSelectForStepReasoningOnly(t *testing.T) {
	s := newHeuristicSelector()
	step := planner.PlanStep{ID: 3, Goal: "Summarize the findings", ServerAffinity: planner.AffinityNone}

	sel := s.selectForStep(step, fixtureTools)
	if len(sel.SelectedToolNames) != 0 {
		t.Errorf("reasoning-only step must have no tools, got %v", sel.SelectedToolNames)
	}
	if sel.SelectedToolNames == nil {
		t.Error("tool list should be empty, not nil")
	}
	if sel.StepID != 3 || sel.Server != planner.AffinityNone {
		t.Errorf("step identity not preserved: %+v", sel)
	}
}

func TestSelectForStepCategoryMatch(t *testing.T) {
	s := newHeuristicSelector()
	step := planner.PlanStep{
		ID:             1,
		Goal:           "Pull the backlink profile",
		ServerAffinity: planner.AffinitySecondary,
		Categories:     []string{"backlinks"},
	}

	sel := s.selectForStep(step, fixtureTools)
	want := []string{"backlinks_summary", "backlinks_anchors"}
	got := sel.SelectedToolNames
	if len(got) != len(want) {
		t.Fatalf("tools = %v, want the backlink tools %v", got, want)
	}
	for _, name := range want {
		found := false
		for _, g := range got {
			if g == name {
				found = true
			}
		}
		if !found {
			t.Errorf("expected %s in selection %v", name, got)
		}
	}
}

func TestSelectForStepPrimaryMarkerMatch(t *testing.T) {
	s := newHeuristicSelector()
	// A primary-affinity category with no direct name-hint matches in the
	// catalog still collects tools via the gsc naming marker.
	step := planner.PlanStep{
		ID:             1,
		Goal:           "Inspect property settings",
		ServerAffinity: planner.AffinityPrimary,
		Categories:     []string{"gsc_misc"},
	}

	sel := s.selectForStep(step, fixtureTools)
	if len(sel.SelectedToolNames) == 0 {
		t.Fatal("expected marker-based matches for primary affinity")
	}
	for _, name := range sel.SelectedToolNames {
		if name[:3] != "gsc" {
			t.Errorf("unexpected non-gsc tool %s", name)
		}
	}
}

func TestSelectForStepInfersCategoryFromGoal(t *testing.T) {
	s := newHeuristicSelector()
	step := planner.PlanStep{
		ID:             1,
		Goal:           "Check the anchor text and referring domain spread",
		ServerAffinity: planner.AffinitySecondary,
	}

	sel := s.selectForStep(step, fixtureTools)
	if len(sel.SelectedToolNames) == 0 {
		t.Fatal("expected inferred backlinks category to yield tools")
	}
	for _, name := range sel.SelectedToolNames {
		if name[:9] != "backlinks" {
			t.Errorf("inferred category picked unrelated tool %s", name)
		}
	}
}

func TestInferCategoryFromGoal(t *testing.T) {
	tests := []struct {
		goal     string
		affinity planner.ServerAffinity
		want     string
	}{
		{"Analyze the backlink profile", planner.AffinitySecondary, "backlinks"},
		{"Find keyword ideas with search volume", planner.AffinitySecondary, "keywords"},
		{"Check SERP positions for the brand", planner.AffinitySecondary, "serp"},
		{"Review clicks and impressions trends", planner.AffinityPrimary, "gsc_performance"},
		// Primary-only groups are skipped for secondary steps; "ranking"
		// falls through to the serp group instead.
		{"Review clicks and ranking", planner.AffinitySecondary, "serp"},
		{"Validate the sitemap coverage", planner.AffinityPrimary, "technical_audit"},
		{"Do something unrelated", planner.AffinitySecondary, ""},
	}

	for _, tt := range tests {
		if got := inferCategoryFromGoal(tt.goal, tt.affinity); got != tt.want {
			t.Errorf("inferCategoryFromGoal(%q, %s) = %q, want %q", tt.goal, tt.affinity, got, tt.want)
		}
	}
}

func TestSelectForStepFallbackSet(t *testing.T) {
	s := newHeuristicSelector()
	step := planner.PlanStep{
		ID:             1,
		Goal:           "Do something entirely unmatched",
		ServerAffinity: planner.AffinitySecondary,
	}

	sel := s.selectForStep(step, fixtureTools)
	if len(sel.SelectedToolNames) == 0 || len(sel.SelectedToolNames) > fallbackMaxTools {
		t.Fatalf("fallback set size = %d, want 1..%d", len(sel.SelectedToolNames), fallbackMaxTools)
	}
}

func TestHeuristicDeterminism(t *testing.T) {
	s := newHeuristicSelector()
	plan := &planner.Plan{
		OriginalQuery: "q",
		Summary:       "s",
		Steps: []planner.PlanStep{
			{ID: 1, Goal: "Pull the backlink profile", ServerAffinity: planner.AffinitySecondary, Categories: []string{"backlinks"}},
			{ID: 2, Goal: "Check clicks and impressions", ServerAffinity: planner.AffinityPrimary},
			{ID: 3, Goal: "Do something entirely unmatched", ServerAffinity: planner.AffinityBoth},
			{ID: 4, Goal: "Summarize", ServerAffinity: planner.AffinityNone},
		},
	}

	first := s.selectHeuristic(plan, fixtureTools)
	for i := 0; i < 10; i++ {
		again := s.selectHeuristic(plan, fixtureTools)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("heuristic selection is not deterministic:\nfirst: %+v\nagain: %+v", first, again)
		}
	}

	if first.Strategy != StrategyHeuristic {
		t.Errorf("strategy = %s, want %s", first.Strategy, StrategyHeuristic)
	}
	for _, step := range first.Steps {
		if len(step.SelectedToolNames) > DefaultMaxToolsPerStep {
			t.Errorf("step %d selection exceeds cap: %d tools", step.StepID, len(step.SelectedToolNames))
		}
	}
}
