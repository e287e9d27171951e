package ai

import (
	"context"
	"fmt"
	"strings"

	"resumizer/internal/config"
	"resumizer/internal/errors"
	"resumizer/internal/types"
)

// Service handles AI operations for resume optimization
type Service struct {
	Provider AIProvider // Exported for access from pipeline and tests
	config   *config.OperationAIConfig
	logger   *errors.Logger
}

// NewService creates a new AI service instance with configuration for a
// specific operation. A missing API key fails here, before any provider or
// network client is constructed.
func NewService(cfg *config.OperationAIConfig, operationType string, limiter *RateLimiter, logger *errors.Logger) (*Service, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"No AI API key configured. Set ai.apiKey, the GEMINI_API_KEY environment variable, or enable Vault", nil)
	}

	var provider AIProvider
	var err error

	// Debug logging for service initialization
	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"operation_type", operationType,
		"model", cfg.Model,
		"temperature", *cfg.Temperature,
		"timeout", *cfg.Timeout,
		"max_retries", *cfg.MaxRetries,
		"use_system_prompts", *cfg.UseSystemPrompts)

	switch cfg.Provider {
	case "gemini":
		provider, err = NewGeminiProvider(cfg, operationType, limiter, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}

	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create AI provider", err)
	}

	return &Service{
		Provider: provider,
		config:   cfg,
		logger:   logger,
	}, nil
}

// ExtractRequirements turns a raw job description into normalized structured
// requirements. A blank description fails without contacting the provider.
func (s *Service) ExtractRequirements(ctx context.Context, jobDescription string) (types.JobRequirements, *TokenUsage, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return types.JobRequirements{}, nil, errors.NewValidationError(errors.ErrCodeEmptyInput,
			"Job description is empty", nil)
	}

	output, usage, err := s.Provider.ExtractRequirements(ctx, types.ExtractRequirementsInput{
		JobDescription: jobDescription,
	})
	if err != nil {
		return types.JobRequirements{}, nil, err
	}

	normalized := normalizeRequirements(output)
	s.logger.Debug("Extracted job requirements",
		"title", normalized.Title,
		"skills", len(normalized.Skills),
		"responsibilities", len(normalized.Responsibilities))

	return normalized, usage, nil
}

// DraftRecommendations requests one draft edit per gap item in a single
// batched provider call. With no gap items there is nothing to draft and no
// call is made.
func (s *Service) DraftRecommendations(ctx context.Context, input types.DraftRecommendationsInput) (types.DraftRecommendationsOutput, *TokenUsage, error) {
	if strings.TrimSpace(input.ResumeText) == "" {
		return types.DraftRecommendationsOutput{}, nil, errors.NewValidationError(errors.ErrCodeEmptyInput,
			"Resume text is empty", nil)
	}
	if len(input.Items) == 0 {
		return types.DraftRecommendationsOutput{}, nil, nil
	}

	output, usage, err := s.Provider.DraftRecommendations(ctx, input)
	if err != nil {
		return types.DraftRecommendationsOutput{}, nil, err
	}

	s.logger.Debug("Drafted recommendations",
		"gap_items", len(input.Items),
		"drafts", len(output.Drafts))

	return output, usage, nil
}

// GetModelInfo returns information about the AI model for diagnostics
func (s *Service) GetModelInfo(ctx context.Context) *ModelInfo {
	return s.Provider.GetModelInfo(ctx)
}

// Close releases provider resources
func (s *Service) Close() error {
	return s.Provider.Close()
}

// normalizeRequirements canonicalizes model output: skill names and
// categories are lowercased and deduplicated, responsibilities trimmed with
// blanks and case-insensitive duplicates dropped. Order is preserved.
func normalizeRequirements(r types.JobRequirements) types.JobRequirements {
	normalized := types.JobRequirements{
		Title: strings.TrimSpace(r.Title),
	}

	seenSkills := make(map[string]bool, len(r.Skills))
	for _, skill := range r.Skills {
		name := strings.ToLower(strings.TrimSpace(skill.Name))
		if name == "" || seenSkills[name] {
			continue
		}
		seenSkills[name] = true
		normalized.Skills = append(normalized.Skills, types.Skill{
			Name:     name,
			Category: strings.ToLower(strings.TrimSpace(skill.Category)),
		})
	}

	seenResponsibilities := make(map[string]bool, len(r.Responsibilities))
	for _, responsibility := range r.Responsibilities {
		trimmed := strings.TrimSpace(responsibility)
		key := strings.ToLower(trimmed)
		if trimmed == "" || seenResponsibilities[key] {
			continue
		}
		seenResponsibilities[key] = true
		normalized.Responsibilities = append(normalized.Responsibilities, trimmed)
	}

	return normalized
}
