package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/searchlens/searchlens/pkg/codegen"
	"github.com/searchlens/searchlens/pkg/llm"
	"github.com/searchlens/searchlens/pkg/planner"
	"github.com/searchlens/searchlens/pkg/registry"
	"github.com/searchlens/searchlens/pkg/sandbox"
	"github.com/searchlens/searchlens/pkg/selector"
	"github.com/searchlens/searchlens/pkg/summarizer"
)

// stageProvider answers each pipeline stage by matching its system prompt
type stageProvider struct {
	planJSON      string
	selectionJSON string
	code          string
	summary       string
}

func (p *stageProvider) Call(ctx context.Context, request llm.Request) (*llm.Response, error) {
	switch {
	case strings.Contains(request.SystemPrompt, "strategist"):
		return &llm.Response{Content: p.planJSON}, nil
	case strings.Contains(request.SystemPrompt, "tool-routing"):
		return &llm.Response{Content: p.selectionJSON}, nil
	case strings.Contains(request.SystemPrompt, "JavaScript developer"):
		return &llm.Response{Content: p.code}, nil
	default:
		return &llm.Response{Content: p.summary}, nil
	}
}

func (p *stageProvider) Provider() string { return "staged" }

// fixedToolProvider serves one secondary-analytics tool in memory
type fixedToolProvider struct{}

func (f *fixedToolProvider) ID() string { return "secondary-analytics" }

func (f *fixedToolProvider) ListTools(ctx context.Context) ([]registry.ToolDescriptor, error) {
	return []registry.ToolDescriptor{
		{Name: "backlinks_summary", Description: "Backlink profile summary", Server: "secondary-analytics"},
	}, nil
}

func (f *fixedToolProvider) CallTool(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	return map[string]interface{}{"total": float64(321)}, nil
}

func (f *fixedToolProvider) Close() error { return nil }

func newTestPipeline(provider llm.Provider, snapDir string) *Pipeline {
	reg := registry.New(&fixedToolProvider{})
	settings := llm.Settings{Model: "test-model"}
	var snaps *Snapshots
	if snapDir != "" {
		snaps = NewSnapshots(snapDir)
	}
	return New(
		reg,
		planner.New(provider, settings),
		selector.New(reg, provider, settings, 0),
		codegen.New(provider, settings),
		sandbox.New(reg),
		summarizer.New(provider, settings),
		snaps,
	)
}

func workingStageProvider() *stageProvider {
	return &stageProvider{
		planJSON: `{
			"original_query": "how strong is the backlink profile of example.com",
			"summary": "Backlink strength check",
			"steps": [
				{"id": 1, "goal": "Fetch the backlink summary", "server_affinity": "secondary-analytics", "categories": ["backlinks"]},
				{"id": 2, "goal": "Interpret the numbers", "server_affinity": "none"}
			]
		}`,
		selectionJSON: `{
			"original_query": "how strong is the backlink profile of example.com",
			"summary": "Backlink strength check",
			"steps": [
				{"step_id": 1, "server": "secondary-analytics", "step_goal": "Fetch the backlink summary", "selected_tool_names": ["backlinks_summary"]},
				{"step_id": 2, "server": "none", "step_goal": "Interpret the numbers", "selected_tool_names": []}
			]
		}`,
		code: `async function run() {
			const data = await runTool("backlinks_summary", {target: "example.com"});
			return {summary: "backlink check", steps: [{step_id: 1, description: "fetched", raw_results: data, key_insights: "total " + data.total}]};
		}`,
		summary: "The backlink profile is healthy.\n- 321 backlinks total\n- Keep building links",
	}
}

func TestAnswerEndToEnd(t *testing.T) {
	dir := t.TempDir()
	p := newTestPipeline(workingStageProvider(), dir)

	answer, artifacts, err := p.Answer(context.Background(), "how strong is the backlink profile of example.com")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if !strings.Contains(answer, "backlink profile is healthy") {
		t.Errorf("unexpected answer %q", answer)
	}

	if artifacts.RunID == "" {
		t.Error("missing run id")
	}
	if len(artifacts.Plan.Steps) != 2 {
		t.Errorf("plan steps = %d", len(artifacts.Plan.Steps))
	}
	if artifacts.Selection.Strategy != selector.StrategyModelDriven {
		t.Errorf("strategy = %s", artifacts.Selection.Strategy)
	}
	if !artifacts.Execution.OK {
		t.Fatalf("execution failed: %s", artifacts.Execution.Error)
	}
	if len(artifacts.Execution.ToolLogs) != 1 {
		t.Errorf("tool calls = %d, want 1", len(artifacts.Execution.ToolLogs))
	}

	// Per-run artifact snapshots should be on disk.
	for _, name := range []string{"plan.json", "tool_selection.json", "code.js"} {
		if _, err := os.Stat(filepath.Join(dir, artifacts.RunID, name)); err != nil {
			t.Errorf("snapshot %s missing: %v", name, err)
		}
	}
}

func TestAnswerExecutionFailure(t *testing.T) {
	sp := workingStageProvider()
	sp.code = "async function run() { throw new Error('bad data'); }"
	p := newTestPipeline(sp, "")

	answer, artifacts, err := p.Answer(context.Background(), "q")
	if err != nil {
		t.Fatalf("execution failure must not be a pipeline error, got %v", err)
	}
	if artifacts.Execution.OK {
		t.Fatal("execution should have failed")
	}
	if !strings.Contains(answer, "Sorry, I ran into an error") {
		t.Errorf("failure answer missing apology preamble: %q", answer)
	}
	if !strings.Contains(answer, "bad data") {
		t.Errorf("failure answer missing diagnostic detail: %q", answer)
	}
}

func TestRunPlanningFailureAborts(t *testing.T) {
	sp := workingStageProvider()
	sp.planJSON = "I refuse to plan."
	p := newTestPipeline(sp, "")

	if _, _, err := p.Answer(context.Background(), "q"); err == nil {
		t.Fatal("unusable plan must abort the run")
	}
}

func TestSnapshotsNilSafe(t *testing.T) {
	var s *Snapshots
	s.WritePlan("run", map[string]int{"a": 1})
	s.WriteSelection("run", nil)
	s.WriteCode("run", "code")
}
