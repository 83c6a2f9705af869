package selector

import (
	"strings"

	"github.com/searchlens/searchlens/pkg/planner"
	"github.com/searchlens/searchlens/pkg/registry"
)

// primaryToolMarker identifies Search Console style tools by naming convention
const primaryToolMarker = "gsc"

// fallbackMaxTools bounds the last-resort per-affinity tool set
const fallbackMaxTools = 3

// selectHeuristic builds a full selection without the collaborator. Given the
// same plan and catalog contents it always produces the same result.
func (s *Selector) selectHeuristic(plan *planner.Plan, allTools []registry.ToolDescriptor) *PlanToolSelection {
	selections := make([]ToolSelection, 0, len(plan.Steps))
	for _, step := range plan.Steps {
		selections = append(selections, s.selectForStep(step, allTools))
	}

	return &PlanToolSelection{
		OriginalQuery: plan.OriginalQuery,
		Summary:       plan.Summary,
		Steps:         selections,
		Strategy:      StrategyHeuristic,
	}
}

// selectForStep applies the deterministic per-step candidate search:
// category hints first, then a category inferred from the goal text, then a
// fixed per-affinity fallback set.
func (s *Selector) selectForStep(step planner.PlanStep, allTools []registry.ToolDescriptor) ToolSelection {
	if step.ServerAffinity == planner.AffinityNone {
		return ToolSelection{
			StepID:            step.ID,
			Server:            step.ServerAffinity,
			StepGoal:          step.Goal,
			SelectedToolNames: []string{},
			Notes:             "No tools needed (reasoning-only step).",
		}
	}

	candidates := matchByCategories(step.Categories, step.ServerAffinity, allTools)
	notes := "Selected tools based on categories and name-hints."

	if len(candidates) == 0 {
		if inferred := inferCategoryFromGoal(step.Goal, step.ServerAffinity); inferred != "" {
			candidates = matchByCategories([]string{inferred}, step.ServerAffinity, allTools)
			notes = "Selected tools based on inferred category '" + inferred + "' from step goal."
		}
	}

	if len(candidates) == 0 {
		candidates = fallbackToolsForAffinity(step.ServerAffinity, allTools)
		notes = "Used fallback tools for server; no category-based match found."
	}

	if len(candidates) > s.maxPerStep {
		candidates = candidates[:s.maxPerStep]
	}

	return ToolSelection{
		StepID:            step.ID,
		Server:            step.ServerAffinity,
		StepGoal:          step.Goal,
		SelectedToolNames: candidates,
		Notes:             notes,
	}
}

// matchByCategories collects registry tools whose names match hint substrings
// for the given categories, de-duplicated in first-seen order. Tools under a
// primary-analytics affinity also qualify by carrying the naming marker.
func matchByCategories(categories []string, affinity planner.ServerAffinity, allTools []registry.ToolDescriptor) []string {
	seen := make(map[string]bool)
	var candidates []string

	for _, category := range categories {
		hints := hintsForStep(category, affinity)
		if len(hints) == 0 && affinity != planner.AffinityPrimary {
			continue
		}

		for _, tool := range allTools {
			name := strings.ToLower(tool.Name)

			matched := false
			for _, hint := range hints {
				if strings.Contains(name, strings.ToLower(hint)) {
					matched = true
					break
				}
			}
			if affinity == planner.AffinityPrimary && !matched {
				matched = strings.Contains(name, primaryToolMarker)
			}
			if !matched || seen[tool.Name] {
				continue
			}

			seen[tool.Name] = true
			candidates = append(candidates, tool.Name)
		}
	}

	return candidates
}

// goalKeywordGroups maps goal-text keywords to a category, checked in order;
// the first matching group wins.
var goalKeywordGroups = []struct {
	category    string
	primaryOnly bool
	keywords    []string
}{
	{category: "backlinks", keywords: []string{"backlink", "referring domain", "anchor", "link profile"}},
	{category: "keywords", keywords: []string{"keyword", "search volume", "cpc", "keyword research", "keyword idea"}},
	{category: "serp", keywords: []string{"serp", "search result", "organic result", "ranking"}},
	{category: "gsc_performance", primaryOnly: true, keywords: []string{"performance", "traffic", "clicks", "impressions", "ctr"}},
	{category: "gsc_queries", primaryOnly: true, keywords: []string{"query", "queries", "search query"}},
	{category: "gsc_pages", primaryOnly: true, keywords: []string{"page", "pages", "url", "landing page"}},
	{category: "technical_audit", keywords: []string{"sitemap", "indexing", "coverage", "technical", "audit"}},
	{category: "rank_tracking", keywords: []string{"rank", "position", "ranking"}},
}

// inferCategoryFromGoal guesses a single category from the step goal text.
// Returns "" when nothing matches.
func inferCategoryFromGoal(goal string, affinity planner.ServerAffinity) string {
	goalLower := strings.ToLower(goal)

	for _, group := range goalKeywordGroups {
		if group.primaryOnly && affinity != planner.AffinityPrimary {
			continue
		}
		for _, kw := range group.keywords {
			if strings.Contains(goalLower, kw) {
				return group.category
			}
		}
	}

	return ""
}

// fallbackToolsForAffinity returns a fixed small set of well-known tools for
// the affinity, drawn from the hint table in its stable order and filtered to
// tools that actually exist in the catalog.
func fallbackToolsForAffinity(affinity planner.ServerAffinity, allTools []registry.ToolDescriptor) []string {
	if affinity == planner.AffinityNone {
		return []string{}
	}

	exists := make(map[string]bool, len(allTools))
	for _, tool := range allTools {
		exists[tool.Name] = true
	}

	seen := make(map[string]bool)
	var collected []string
	for _, category := range hintCategoryOrder {
		for _, name := range hintsForStep(category, affinity) {
			if !exists[name] || seen[name] {
				continue
			}
			seen[name] = true
			collected = append(collected, name)
			if len(collected) == fallbackMaxTools {
				return collected
			}
		}
	}

	return collected
}
