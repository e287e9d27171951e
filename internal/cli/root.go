package cli

import (
	"context"
	"fmt"

	"resumizer/internal/config"
	"resumizer/internal/errors"
	"resumizer/internal/observability"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}
type observabilityKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}
var observabilityKey = observabilityKeyType{}

var rootCmd = &cobra.Command{
	Use:   "resumizer",
	Short: "A CLI tool for optimizing resumes against job descriptions using AI",
	Long: `Resumizer scores a resume against a job description and closes the gaps.
It extracts the job's requirements using AI, computes a keyword match score,
generates prioritized edit recommendations, and applies the ones you approve
to a copy of the resume. The original resume file is never modified.`,
}

func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger, om *observability.ObservabilityManager) error {
	// Attach the shared dependencies to the context, making them available to all subcommands
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	ctx = context.WithValue(ctx, observabilityKey, om)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) (*config.Config, error) {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg, nil
	}
	return nil, fmt.Errorf("config not found in context")
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) (*errors.Logger, error) {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger, nil
	}
	return nil, fmt.Errorf("logger not found in context")
}

// getObservabilityFromContext is a helper function to get the observability manager from context
func getObservabilityFromContext(ctx context.Context) (*observability.ObservabilityManager, error) {
	if om, ok := ctx.Value(observabilityKey).(*observability.ObservabilityManager); ok {
		return om, nil
	}
	return nil, fmt.Errorf("observability manager not found in context")
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(versionCmd)
}
