package planner

// ServerAffinity identifies which backend class a plan step needs
type ServerAffinity string

const (
	// AffinityPrimary targets Search Console style analytics
	AffinityPrimary ServerAffinity = "primary-analytics"
	// AffinitySecondary targets third-party SEO data providers
	AffinitySecondary ServerAffinity = "secondary-analytics"
	// AffinityBoth combines data from both backend classes
	AffinityBoth ServerAffinity = "both"
	// AffinityNone marks a pure reasoning step with no tool calls
	AffinityNone ServerAffinity = "none"
)

// Valid reports whether the affinity is a known value
func (a ServerAffinity) Valid() bool {
	switch a {
	case AffinityPrimary, AffinitySecondary, AffinityBoth, AffinityNone:
		return true
	}
	return false
}

// PlanStep is one atomic step in a research plan
type PlanStep struct {
	ID             int            `json:"id"`
	Goal           string         `json:"goal"`
	ServerAffinity ServerAffinity `json:"server_affinity"`
	Categories     []string       `json:"categories"`
	RequiredInputs []string       `json:"required_inputs"`
	Notes          string         `json:"notes,omitempty"`
}

// Plan is the full structured decomposition of a user query
type Plan struct {
	OriginalQuery string     `json:"original_query"`
	Summary       string     `json:"summary"`
	Steps         []PlanStep `json:"steps"`
}
