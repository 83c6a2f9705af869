package selector

import "github.com/searchlens/searchlens/pkg/planner"

// DefaultMaxToolsPerStep caps the number of tools exposed per plan step
const DefaultMaxToolsPerStep = 6

// Strategy names the selection path that produced a result
type Strategy string

const (
	// StrategyModelDriven means the generation collaborator picked the tools
	StrategyModelDriven Strategy = "model-driven"
	// StrategyHeuristic means the deterministic fallback picked the tools
	StrategyHeuristic Strategy = "heuristic"
)

// ToolSelection holds the tools authorized for one plan step
type ToolSelection struct {
	StepID            int                    `json:"step_id"`
	Server            planner.ServerAffinity `json:"server"`
	StepGoal          string                 `json:"step_goal"`
	SelectedToolNames []string               `json:"selected_tool_names"`
	Notes             string                 `json:"notes,omitempty"`
}

// PlanToolSelection maps every plan step to its selected tools
type PlanToolSelection struct {
	OriginalQuery string          `json:"original_query"`
	Summary       string          `json:"summary"`
	Steps         []ToolSelection `json:"steps"`
	Strategy      Strategy        `json:"strategy,omitempty"`
}

// SelectionFor returns the selection for a step ID, if present
func (p *PlanToolSelection) SelectionFor(stepID int) (ToolSelection, bool) {
	for _, s := range p.Steps {
		if s.StepID == stepID {
			return s, true
		}
	}
	return ToolSelection{}, false
}
