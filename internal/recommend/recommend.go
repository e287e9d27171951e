package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"resumizer/internal/ai"
	"resumizer/internal/errors"
	"resumizer/internal/markup"
	"resumizer/internal/types"
)

// Fixed priority policy. Priorities are assigned locally from the gap
// analysis, never parsed from model output.
const (
	PriorityMissingSkill          = 1
	PriorityMissingResponsibility = 2
	PriorityWeak                  = 3
)

// Drafter is the single external collaborator: one batched drafting call
// covering every gap item.
type Drafter interface {
	DraftRecommendations(ctx context.Context, input types.DraftRecommendationsInput) (types.DraftRecommendationsOutput, *ai.TokenUsage, error)
}

// Generator turns a gap report into an ordered recommendation set.
type Generator struct {
	drafter Drafter
	logger  *errors.Logger
}

// NewGenerator creates a recommendation generator.
func NewGenerator(drafter Drafter, logger *errors.Logger) *Generator {
	return &Generator{
		drafter: drafter,
		logger:  logger,
	}
}

// Generate drafts one edit per gap item in a single batched call, assigns
// priorities by the fixed policy, stable-sorts by priority, and numbers the
// result rec_001, rec_002, ... in presentation order. Items the model could
// not serve are reported in Failed, never dropped silently. With no gap
// items no call is made.
func (g *Generator) Generate(ctx context.Context, doc *types.ResumeDocument, requirements types.JobRequirements, report *types.GapReport) (*types.RecommendationSet, *ai.TokenUsage, error) {
	set := &types.RecommendationSet{
		Recommendations: []types.Recommendation{},
	}

	items := make([]types.GapItem, 0, len(report.Missing)+len(report.Weak))
	items = append(items, report.Missing...)
	items = append(items, report.Weak...)
	if len(items) == 0 {
		return set, nil, nil
	}

	output, usage, err := g.drafter.DraftRecommendations(ctx, types.DraftRecommendationsInput{
		ResumeText:   markup.Serialize(doc),
		Requirements: requirements,
		Items:        items,
		SectionNames: doc.SectionNames(),
	})
	if err != nil {
		return nil, usage, err
	}

	claimed := make([]bool, len(output.Drafts))
	for _, item := range items {
		draft := claimDraft(output.Drafts, claimed, item.Text)
		if draft == nil {
			set.Failed = append(set.Failed, types.FailedItem{
				Keyword: item.Text,
				Reason:  "no draft returned for this item",
			})
			continue
		}

		rec, reason := buildRecommendation(item, draft, doc)
		if reason != "" {
			set.Failed = append(set.Failed, types.FailedItem{
				Keyword: item.Text,
				Reason:  reason,
			})
			continue
		}
		set.Recommendations = append(set.Recommendations, rec)
	}

	// Stable sort keeps generation order within a priority
	sort.SliceStable(set.Recommendations, func(i, j int) bool {
		return set.Recommendations[i].Priority < set.Recommendations[j].Priority
	})
	for i := range set.Recommendations {
		set.Recommendations[i].ID = fmt.Sprintf("rec_%03d", i+1)
	}

	g.logger.Debug("Generated recommendations",
		"gap_items", len(items),
		"recommendations", len(set.Recommendations),
		"failed", len(set.Failed))

	return set, usage, nil
}

// claimDraft finds the first unclaimed draft for a keyword. Matching is
// case-insensitive; each draft serves at most one item.
func claimDraft(drafts []types.RecommendationDraft, claimed []bool, keyword string) *types.RecommendationDraft {
	for i := range drafts {
		if claimed[i] {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(drafts[i].Keyword), keyword) {
			claimed[i] = true
			return &drafts[i]
		}
	}
	return nil
}

// buildRecommendation validates a draft and pairs it with its item. The
// returned reason is non-empty when the draft cannot become a
// recommendation.
func buildRecommendation(item types.GapItem, draft *types.RecommendationDraft, doc *types.ResumeDocument) (types.Recommendation, string) {
	text := strings.TrimSpace(draft.Text)
	if text == "" {
		reason := strings.TrimSpace(draft.Rationale)
		if reason == "" {
			reason = "model declined to draft an edit"
		}
		return types.Recommendation{}, reason
	}

	section := strings.TrimSpace(draft.Section)
	if section == "" {
		return types.Recommendation{}, "draft names no target section"
	}
	if doc.Section(section) == nil {
		return types.Recommendation{}, fmt.Sprintf("draft targets unknown section %q", section)
	}

	action := types.EditAction(strings.ToLower(strings.TrimSpace(draft.Action)))
	entryIndex := -1
	switch action {
	case types.ActionAppend:
	case types.ActionReplace:
		if draft.BulletIndex < 0 {
			return types.Recommendation{}, fmt.Sprintf("replace draft has invalid bullet index %d", draft.BulletIndex)
		}
		entryIndex = draft.BulletIndex
	default:
		return types.Recommendation{}, fmt.Sprintf("unknown draft action %q", draft.Action)
	}

	return types.Recommendation{
		Priority:  policyPriority(item),
		Target:    types.TargetRef{Section: section, EntryIndex: entryIndex},
		Action:    action,
		Text:      text,
		Rationale: strings.TrimSpace(draft.Rationale),
		Keyword:   item.Text,
	}, ""
}

// policyPriority implements the fixed mapping: missing skills are critical,
// missing responsibilities important, weak items suggestions.
func policyPriority(item types.GapItem) int {
	if item.Occurrences > 0 {
		return PriorityWeak
	}
	if item.Kind == types.ItemSkill {
		return PriorityMissingSkill
	}
	return PriorityMissingResponsibility
}

// PriorityLabel names a priority for reports.
func PriorityLabel(priority int) string {
	switch priority {
	case PriorityMissingSkill:
		return "Critical"
	case PriorityMissingResponsibility:
		return "Important"
	case PriorityWeak:
		return "Suggested"
	default:
		return fmt.Sprintf("P%d", priority)
	}
}
