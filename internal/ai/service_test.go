package ai

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"resumizer/internal/config"
	"resumizer/internal/errors"
	"resumizer/internal/types"
)

// fakeProvider counts calls so tests can assert exactly when the external
// service would have been contacted.
type fakeProvider struct {
	extractCalls int
	draftCalls   int
	requirements types.JobRequirements
	drafts       types.DraftRecommendationsOutput
	err          error
}

func (f *fakeProvider) ExtractRequirements(ctx context.Context, input types.ExtractRequirementsInput) (types.JobRequirements, *TokenUsage, error) {
	f.extractCalls++
	if f.err != nil {
		return types.JobRequirements{}, nil, f.err
	}
	return f.requirements, &TokenUsage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30}, nil
}

func (f *fakeProvider) DraftRecommendations(ctx context.Context, input types.DraftRecommendationsInput) (types.DraftRecommendationsOutput, *TokenUsage, error) {
	f.draftCalls++
	if f.err != nil {
		return types.DraftRecommendationsOutput{}, nil, f.err
	}
	return f.drafts, &TokenUsage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30}, nil
}

func (f *fakeProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	return &ModelInfo{Name: "fake-model", Available: true}
}

func (f *fakeProvider) Close() error { return nil }

func newFakeService(provider AIProvider) *Service {
	return &Service{
		Provider: provider,
		config:   &config.OperationAIConfig{},
		logger:   testLogger,
	}
}

func assertAppErrorCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected error with code %s, got nil", wantCode)
	}
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("Expected *errors.AppError, got %T: %v", err, err)
	}
	if appErr.Code != wantCode {
		t.Errorf("Expected error code %s, got %s", wantCode, appErr.Code)
	}
}

func TestNewServiceMissingAPIKey(t *testing.T) {
	for _, key := range []string{"", "   ", "\t\n"} {
		cfg := &config.OperationAIConfig{
			Provider:         "gemini",
			Model:            "test-model",
			APIKey:           key,
			Timeout:          timePtr(30 * time.Second),
			MaxRetries:       intPtr(1),
			Temperature:      float32Ptr(0.5),
			UseSystemPrompts: boolPtr(false),
		}

		service, err := NewService(cfg, "requirements", nil, testLogger)
		if service != nil {
			t.Fatalf("Expected nil service for API key %q", key)
		}
		assertAppErrorCode(t, err, errors.ErrCodeMissingAPIKey)
	}
}

func TestNewServiceUnsupportedProvider(t *testing.T) {
	cfg := &config.OperationAIConfig{
		Provider:         "openai",
		Model:            "test-model",
		APIKey:           "test-key",
		Timeout:          timePtr(30 * time.Second),
		MaxRetries:       intPtr(1),
		Temperature:      float32Ptr(0.5),
		UseSystemPrompts: boolPtr(false),
	}

	_, err := NewService(cfg, "requirements", nil, testLogger)
	assertAppErrorCode(t, err, errors.ErrCodeInvalidConfig)
}

func TestExtractRequirementsEmptyInput(t *testing.T) {
	fake := &fakeProvider{}
	service := newFakeService(fake)

	for _, input := range []string{"", "   ", "\n\t  \n"} {
		_, _, err := service.ExtractRequirements(context.Background(), input)
		assertAppErrorCode(t, err, errors.ErrCodeEmptyInput)
	}

	if fake.extractCalls != 0 {
		t.Errorf("Provider should not be called for empty input, got %d calls", fake.extractCalls)
	}
}

func TestExtractRequirementsNormalizesOutput(t *testing.T) {
	fake := &fakeProvider{
		requirements: types.JobRequirements{
			Title: "  Senior Platform Engineer  ",
			Skills: []types.Skill{
				{Name: " Go ", Category: "Languages"},
				{Name: "go", Category: "languages"},
				{Name: "PostgreSQL", Category: " Databases "},
				{Name: "", Category: "tools"},
			},
			Responsibilities: []string{
				"  Design and operate APIs  ",
				"design and operate apis",
				"",
				"Mentor junior engineers",
			},
		},
	}
	service := newFakeService(fake)

	got, usage, err := service.ExtractRequirements(context.Background(), "We need a platform engineer.")
	if err != nil {
		t.Fatalf("ExtractRequirements failed: %v", err)
	}
	if fake.extractCalls != 1 {
		t.Fatalf("Expected exactly 1 provider call, got %d", fake.extractCalls)
	}
	if usage == nil || usage.TotalTokens != 30 {
		t.Errorf("Token usage not propagated: %+v", usage)
	}

	if got.Title != "Senior Platform Engineer" {
		t.Errorf("Title not trimmed: %q", got.Title)
	}

	wantSkills := []types.Skill{
		{Name: "go", Category: "languages"},
		{Name: "postgresql", Category: "databases"},
	}
	if len(got.Skills) != len(wantSkills) {
		t.Fatalf("Expected %d skills, got %d: %+v", len(wantSkills), len(got.Skills), got.Skills)
	}
	for i, want := range wantSkills {
		if got.Skills[i] != want {
			t.Errorf("Skill %d: expected %+v, got %+v", i, want, got.Skills[i])
		}
	}

	wantResponsibilities := []string{"Design and operate APIs", "Mentor junior engineers"}
	if len(got.Responsibilities) != len(wantResponsibilities) {
		t.Fatalf("Expected %d responsibilities, got %d: %v",
			len(wantResponsibilities), len(got.Responsibilities), got.Responsibilities)
	}
	for i, want := range wantResponsibilities {
		if got.Responsibilities[i] != want {
			t.Errorf("Responsibility %d: expected %q, got %q", i, want, got.Responsibilities[i])
		}
	}
}

func TestDraftRecommendationsEmptyResume(t *testing.T) {
	fake := &fakeProvider{}
	service := newFakeService(fake)

	_, _, err := service.DraftRecommendations(context.Background(), types.DraftRecommendationsInput{
		ResumeText: "   ",
		Items: []types.GapItem{
			{RequirementItem: types.RequirementItem{Text: "go", Kind: types.ItemSkill}},
		},
	})
	assertAppErrorCode(t, err, errors.ErrCodeEmptyInput)

	if fake.draftCalls != 0 {
		t.Errorf("Provider should not be called for empty resume, got %d calls", fake.draftCalls)
	}
}

func TestDraftRecommendationsSkipsEmptyBatch(t *testing.T) {
	fake := &fakeProvider{}
	service := newFakeService(fake)

	out, usage, err := service.DraftRecommendations(context.Background(), types.DraftRecommendationsInput{
		ResumeText: "## Skills\n- Go",
	})
	if err != nil {
		t.Fatalf("Empty batch should not fail: %v", err)
	}
	if len(out.Drafts) != 0 {
		t.Errorf("Expected no drafts, got %d", len(out.Drafts))
	}
	if usage != nil {
		t.Errorf("Expected no token usage for skipped call, got %+v", usage)
	}
	if fake.draftCalls != 0 {
		t.Errorf("Provider should not be called with no gap items, got %d calls", fake.draftCalls)
	}
}

func TestDraftRecommendationsPassthrough(t *testing.T) {
	fake := &fakeProvider{
		drafts: types.DraftRecommendationsOutput{
			Drafts: []types.RecommendationDraft{
				{Keyword: "kubernetes", Section: "Skills", Action: "append", Text: "- Kubernetes"},
				{Keyword: "terraform", Section: "Skills", Action: "append", Text: "- Terraform"},
			},
		},
	}
	service := newFakeService(fake)

	out, _, err := service.DraftRecommendations(context.Background(), types.DraftRecommendationsInput{
		ResumeText: "## Skills\n- Go",
		Items: []types.GapItem{
			{RequirementItem: types.RequirementItem{Text: "kubernetes", Kind: types.ItemSkill}},
			{RequirementItem: types.RequirementItem{Text: "terraform", Kind: types.ItemSkill}},
		},
		SectionNames: []string{"Skills"},
	})
	if err != nil {
		t.Fatalf("DraftRecommendations failed: %v", err)
	}
	if fake.draftCalls != 1 {
		t.Fatalf("Expected exactly 1 batched provider call, got %d", fake.draftCalls)
	}
	if len(out.Drafts) != 2 {
		t.Errorf("Expected 2 drafts, got %d", len(out.Drafts))
	}
}
