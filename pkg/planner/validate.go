package planner

import (
	"errors"
	"fmt"
)

const maxPlanSteps = 5

var (
	// ErrPlanningFailed is returned when no usable structured plan was produced
	ErrPlanningFailed = errors.New("planning failed")

	// ErrMalformedPlan is returned when a generated plan violates its invariants
	ErrMalformedPlan = errors.New("malformed plan")
)

// Validate checks the structural invariants of a generated plan: 1-5 steps,
// IDs sequential from 1 with no gaps or repeats, known affinity values and
// non-empty goals. Plans that fail are rejected, not repaired.
func Validate(plan *Plan) error {
	if plan == nil {
		return fmt.Errorf("%w: plan is nil", ErrMalformedPlan)
	}
	if len(plan.Steps) == 0 {
		return fmt.Errorf("%w: plan has no steps", ErrMalformedPlan)
	}
	if len(plan.Steps) > maxPlanSteps {
		return fmt.Errorf("%w: plan has %d steps, maximum is %d", ErrMalformedPlan, len(plan.Steps), maxPlanSteps)
	}

	for i, step := range plan.Steps {
		if step.ID != i+1 {
			return fmt.Errorf("%w: step at position %d has id %d, expected %d", ErrMalformedPlan, i, step.ID, i+1)
		}
		if step.Goal == "" {
			return fmt.Errorf("%w: step %d has an empty goal", ErrMalformedPlan, step.ID)
		}
		if !step.ServerAffinity.Valid() {
			return fmt.Errorf("%w: step %d has unknown server affinity %q", ErrMalformedPlan, step.ID, step.ServerAffinity)
		}
	}

	return nil
}
