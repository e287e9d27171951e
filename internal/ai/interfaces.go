package ai

import (
	"context"

	"resumizer/internal/types"
)

// AIProvider interface for different AI implementations
// All methods return token usage information - callers can ignore it if not needed
type AIProvider interface {
	ExtractRequirements(ctx context.Context, input types.ExtractRequirementsInput) (types.JobRequirements, *TokenUsage, error)
	DraftRecommendations(ctx context.Context, input types.DraftRecommendationsInput) (types.DraftRecommendationsOutput, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// SchemaBuilder interface for building AI request schemas
type SchemaBuilder interface {
	BuildRequirementsSchema() any
	BuildRecommendSchema() any
}

// PromptBuilder interface for building AI prompts
type PromptBuilder interface {
	BuildRequirementsPrompt(jobDescription string) string
	BuildRecommendPrompt(input types.DraftRecommendationsInput) string
}
