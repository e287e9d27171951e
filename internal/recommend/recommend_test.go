package recommend

import (
	"context"
	stderrors "errors"
	"log/slog"
	"testing"

	"resumizer/internal/ai"
	"resumizer/internal/errors"
	"resumizer/internal/markup"
	"resumizer/internal/types"
)

var testLogger = errors.NewLogger(slog.LevelError)

const sampleResume = `## Summary
Platform engineer with eight years of infrastructure experience.

## Skills
- Go
- PostgreSQL

## Experience
- Built deployment tooling for a multi-region fleet
- Led incident response for storage outages
`

type fakeDrafter struct {
	calls  int
	input  types.DraftRecommendationsInput
	output types.DraftRecommendationsOutput
	err    error
}

func (f *fakeDrafter) DraftRecommendations(ctx context.Context, input types.DraftRecommendationsInput) (types.DraftRecommendationsOutput, *ai.TokenUsage, error) {
	f.calls++
	f.input = input
	if f.err != nil {
		return types.DraftRecommendationsOutput{}, nil, f.err
	}
	return f.output, &ai.TokenUsage{InputTokens: 5, OutputTokens: 7, TotalTokens: 12}, nil
}

func mustParse(t *testing.T) *types.ResumeDocument {
	t.Helper()
	doc, err := markup.Parse(sampleResume)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}

func missingSkill(name string) types.GapItem {
	return types.GapItem{RequirementItem: types.RequirementItem{Text: name, Kind: types.ItemSkill}}
}

func missingResponsibility(text string) types.GapItem {
	return types.GapItem{RequirementItem: types.RequirementItem{Text: text, Kind: types.ItemResponsibility}}
}

func weakSkill(name string, occurrences int) types.GapItem {
	return types.GapItem{
		RequirementItem: types.RequirementItem{Text: name, Kind: types.ItemSkill},
		Occurrences:     occurrences,
	}
}

func appendDraft(keyword, section, text string) types.RecommendationDraft {
	return types.RecommendationDraft{
		Keyword: keyword,
		Section: section,
		Action:  "append",
		Text:    text,
	}
}

func TestGenerateNoGapItemsMakesNoCall(t *testing.T) {
	fake := &fakeDrafter{}
	generator := NewGenerator(fake, testLogger)

	report := &types.GapReport{Score: 100, Total: 3, Present: 3}
	set, usage, err := generator.Generate(context.Background(), mustParse(t), types.JobRequirements{}, report)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if fake.calls != 0 {
		t.Errorf("Expected no drafting call for a gap-free report, got %d", fake.calls)
	}
	if usage != nil {
		t.Errorf("Expected no token usage, got %+v", usage)
	}
	if set.Recommendations == nil || len(set.Recommendations) != 0 {
		t.Errorf("Expected empty non-nil recommendations, got %#v", set.Recommendations)
	}
	if len(set.Failed) != 0 {
		t.Errorf("Expected no failed items, got %v", set.Failed)
	}
}

func TestGeneratePriorityPolicyOrderingAndIDs(t *testing.T) {
	// Drafts arrive scrambled; keyword matching must pair them back up
	fake := &fakeDrafter{
		output: types.DraftRecommendationsOutput{
			Drafts: []types.RecommendationDraft{
				appendDraft("operate ci pipelines", "Experience", "Operate CI pipelines for forty services"),
				appendDraft("go", "Experience", "Shipped Go tooling used across the org"),
				appendDraft("terraform", "Skills", "Terraform"),
				appendDraft("Kubernetes", "Skills", "Kubernetes"),
			},
		},
	}
	generator := NewGenerator(fake, testLogger)

	report := &types.GapReport{
		Score:   20,
		Total:   5,
		Present: 1,
		Missing: []types.GapItem{
			missingSkill("kubernetes"),
			missingResponsibility("operate ci pipelines"),
			missingSkill("terraform"),
		},
		Weak: []types.GapItem{weakSkill("go", 1)},
	}

	requirements := types.JobRequirements{Title: "platform engineer"}
	set, usage, err := generator.Generate(context.Background(), mustParse(t), requirements, report)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if fake.calls != 1 {
		t.Fatalf("Expected exactly one batched call, got %d", fake.calls)
	}
	if usage == nil || usage.TotalTokens != 12 {
		t.Errorf("Token usage not propagated: %+v", usage)
	}

	// The batched input carries items missing-then-weak plus document context
	wantItems := []string{"kubernetes", "operate ci pipelines", "terraform", "go"}
	if len(fake.input.Items) != len(wantItems) {
		t.Fatalf("Expected %d input items, got %d", len(wantItems), len(fake.input.Items))
	}
	for i, want := range wantItems {
		if fake.input.Items[i].Text != want {
			t.Errorf("Input item %d: expected %q, got %q", i, want, fake.input.Items[i].Text)
		}
	}
	wantSections := []string{"Summary", "Skills", "Experience"}
	if len(fake.input.SectionNames) != len(wantSections) {
		t.Fatalf("Expected sections %v, got %v", wantSections, fake.input.SectionNames)
	}
	for i, want := range wantSections {
		if fake.input.SectionNames[i] != want {
			t.Errorf("Section %d: expected %q, got %q", i, want, fake.input.SectionNames[i])
		}
	}
	if fake.input.Requirements.Title != "platform engineer" {
		t.Errorf("Requirements not forwarded: %+v", fake.input.Requirements)
	}

	// Missing skills first, then missing responsibilities, then weak items;
	// generation order preserved inside each priority
	want := []struct {
		id       string
		keyword  string
		priority int
	}{
		{"rec_001", "kubernetes", PriorityMissingSkill},
		{"rec_002", "terraform", PriorityMissingSkill},
		{"rec_003", "operate ci pipelines", PriorityMissingResponsibility},
		{"rec_004", "go", PriorityWeak},
	}
	if len(set.Recommendations) != len(want) {
		t.Fatalf("Expected %d recommendations, got %d: %+v", len(want), len(set.Recommendations), set.Recommendations)
	}
	for i, w := range want {
		rec := set.Recommendations[i]
		if rec.ID != w.id || rec.Keyword != w.keyword || rec.Priority != w.priority {
			t.Errorf("Recommendation %d: expected (%s %s P%d), got (%s %s P%d)",
				i, w.id, w.keyword, w.priority, rec.ID, rec.Keyword, rec.Priority)
		}
	}
	if len(set.Failed) != 0 {
		t.Errorf("Expected no failed items, got %v", set.Failed)
	}
}

func TestGenerateFailedItemsReported(t *testing.T) {
	fake := &fakeDrafter{
		output: types.DraftRecommendationsOutput{
			Drafts: []types.RecommendationDraft{
				// kubernetes intentionally absent
				{Keyword: "docker", Section: "Skills", Action: "append", Text: "", Rationale: "no container experience in the resume"},
				{Keyword: "rust", Section: "Skills", Action: "rewrite", Text: "Rust"},
				{Keyword: "java", Section: "Skills", Action: "replace", BulletIndex: -1, Text: "Java services"},
				{Keyword: "helm", Section: "Certifications", Action: "append", Text: "Helm chart authoring"},
				{Keyword: "python", Section: "Skills", Action: "replace", BulletIndex: 1, Text: "PostgreSQL and Python data tooling", Rationale: "existing bullet covers data work"},
			},
		},
	}
	generator := NewGenerator(fake, testLogger)

	report := &types.GapReport{
		Total: 6,
		Missing: []types.GapItem{
			missingSkill("kubernetes"),
			missingSkill("docker"),
			missingSkill("rust"),
			missingSkill("java"),
			missingSkill("helm"),
			missingSkill("python"),
		},
	}

	set, _, err := generator.Generate(context.Background(), mustParse(t), types.JobRequirements{}, report)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	wantFailed := map[string]string{
		"kubernetes": "no draft returned for this item",
		"docker":     "no container experience in the resume",
		"rust":       `unknown draft action "rewrite"`,
		"java":       "replace draft has invalid bullet index -1",
		"helm":       `draft targets unknown section "Certifications"`,
	}
	if len(set.Failed) != len(wantFailed) {
		t.Fatalf("Expected %d failed items, got %d: %+v", len(wantFailed), len(set.Failed), set.Failed)
	}
	for _, f := range set.Failed {
		want, ok := wantFailed[f.Keyword]
		if !ok {
			t.Errorf("Unexpected failed keyword %q", f.Keyword)
			continue
		}
		if f.Reason != want {
			t.Errorf("Failed %q: expected reason %q, got %q", f.Keyword, want, f.Reason)
		}
	}

	if len(set.Recommendations) != 1 {
		t.Fatalf("Expected 1 recommendation, got %d", len(set.Recommendations))
	}
	rec := set.Recommendations[0]
	if rec.ID != "rec_001" || rec.Keyword != "python" {
		t.Errorf("Surviving recommendation wrong: %+v", rec)
	}
	if rec.Action != types.ActionReplace || rec.Target.Section != "Skills" || rec.Target.EntryIndex != 1 {
		t.Errorf("Replace target wrong: action=%s target=%+v", rec.Action, rec.Target)
	}
}

func TestGenerateDrafterErrorPropagates(t *testing.T) {
	wantErr := errors.NewAIError(errors.ErrCodeAIServiceFailed, "model unavailable", nil)
	fake := &fakeDrafter{err: wantErr}
	generator := NewGenerator(fake, testLogger)

	report := &types.GapReport{Total: 1, Missing: []types.GapItem{missingSkill("kubernetes")}}
	set, _, err := generator.Generate(context.Background(), mustParse(t), types.JobRequirements{}, report)
	if set != nil {
		t.Errorf("Expected nil set on error, got %+v", set)
	}
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) || appErr.Code != errors.ErrCodeAIServiceFailed {
		t.Fatalf("Expected AI_SERVICE_FAILED, got %v", err)
	}
}

func TestPriorityLabel(t *testing.T) {
	tests := []struct {
		priority int
		want     string
	}{
		{PriorityMissingSkill, "Critical"},
		{PriorityMissingResponsibility, "Important"},
		{PriorityWeak, "Suggested"},
		{5, "P5"},
	}
	for _, tt := range tests {
		if got := PriorityLabel(tt.priority); got != tt.want {
			t.Errorf("PriorityLabel(%d) = %q, want %q", tt.priority, got, tt.want)
		}
	}
}
