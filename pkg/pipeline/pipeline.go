package pipeline

import (
	"context"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog/log"

	"github.com/searchlens/searchlens/pkg/codegen"
	"github.com/searchlens/searchlens/pkg/planner"
	"github.com/searchlens/searchlens/pkg/registry"
	"github.com/searchlens/searchlens/pkg/sandbox"
	"github.com/searchlens/searchlens/pkg/selector"
	"github.com/searchlens/searchlens/pkg/summarizer"
)

// RunArtifacts holds every intermediate product of one pipeline run
type RunArtifacts struct {
	RunID     string                      `json:"run_id"`
	Query     string                      `json:"query"`
	Plan      *planner.Plan               `json:"plan"`
	Selection *selector.PlanToolSelection `json:"tool_selection"`
	Code      string                      `json:"code"`
	Execution *sandbox.ExecutionResult    `json:"execution"`
}

// Pipeline wires the plan, select, generate, execute and summarize stages.
// One query at a time; each stage's output is the next stage's input.
type Pipeline struct {
	registry   *registry.Registry
	planner    *planner.Planner
	selector   *selector.Selector
	generator  *codegen.Generator
	executor   *sandbox.Executor
	summarizer *summarizer.Summarizer
	snapshots  *Snapshots
}

// New assembles a pipeline. snapshots may be nil to disable artifact dumps.
func New(
	reg *registry.Registry,
	pln *planner.Planner,
	sel *selector.Selector,
	gen *codegen.Generator,
	exec *sandbox.Executor,
	sum *summarizer.Summarizer,
	snapshots *Snapshots,
) *Pipeline {
	return &Pipeline{
		registry:   reg,
		planner:    pln,
		selector:   sel,
		generator:  gen,
		executor:   exec,
		summarizer: sum,
		snapshots:  snapshots,
	}
}

// Run executes the full plan -> select -> generate -> execute flow and
// returns all intermediate artifacts.
func (p *Pipeline) Run(ctx context.Context, userQuery string) (*RunArtifacts, error) {
	runID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run id: %w", err)
	}

	logger := log.With().Str("run_id", runID).Logger()
	logger.Info().Str("query", userQuery).Msg("Pipeline run started")

	plan, err := p.planner.Plan(ctx, userQuery)
	if err != nil {
		return nil, err
	}
	p.snapshots.WritePlan(runID, plan)

	selection, err := p.selector.SelectForPlan(ctx, plan)
	if err != nil {
		return nil, err
	}
	p.snapshots.WriteSelection(runID, selection)
	logger.Debug().Str("strategy", string(selection.Strategy)).Msg("Tools selected")

	metadata, err := p.registry.Metadata(ctx)
	if err != nil {
		return nil, err
	}

	code, err := p.generator.Generate(ctx, userQuery, plan, selection, metadata)
	if err != nil {
		return nil, err
	}
	p.snapshots.WriteCode(runID, code)

	execution := p.executor.Execute(ctx, code)
	logger.Info().
		Bool("ok", execution.OK).
		Int("tool_calls", len(execution.ToolLogs)).
		Msg("Pipeline run finished")

	return &RunArtifacts{
		RunID:     runID,
		Query:     userQuery,
		Plan:      plan,
		Selection: selection,
		Code:      code,
		Execution: execution,
	}, nil
}

// Answer runs the pipeline and renders a final user-facing response: the
// summarizer's prose on success, or a short failure message plus the raw
// diagnostic trace when execution failed.
func (p *Pipeline) Answer(ctx context.Context, userQuery string) (string, *RunArtifacts, error) {
	artifacts, err := p.Run(ctx, userQuery)
	if err != nil {
		return "", nil, err
	}

	execution := artifacts.Execution
	if !execution.OK {
		msg := fmt.Sprintf("Sorry, I ran into an error while executing the analysis: %s", execution.Error)
		if execution.Traceback != "" {
			msg += "\n\n" + execution.Traceback
		}
		return msg, artifacts, nil
	}

	answer, err := p.summarizer.Summarize(ctx, userQuery, artifacts.Plan, execution.Result)
	if err != nil {
		return "", artifacts, err
	}

	return answer, artifacts, nil
}
