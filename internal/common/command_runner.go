package common

import (
	"context"
	"fmt"
	"os"

	"resumizer/internal/ai"
	"resumizer/internal/errors"
)

// CreateInputFunc defines how to build the pipeline input from file contents.
type CreateInputFunc[Input any] func(contents []string) (Input, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// PipelineFunc is a generic signature for a pipeline run with token usage.
type PipelineFunc[Input, Output any] func(context.Context, Input) (Output, *ai.TokenUsage, error)

// RunPipelineCommand encapsulates the common logic for file-based CLI
// commands: read and validate the input files, build the pipeline input,
// run it, report token usage, and hand the result to the output formatter.
func RunPipelineCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	files []string,
	createInput CreateInputFunc[Input],
	pipeline PipelineFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	fileProcessor := NewFileProcessor(logger, cmdConfig.MaxFileSize)
	outputHandler := NewOutputHandler(logger)

	contents, err := fileProcessor.ValidateAndReadFiles(files...)
	if err != nil {
		return err
	}

	input, err := createInput(contents)
	if err != nil {
		return err
	}

	logDetails(input, cmdConfig)

	result, tokenUsage, err := pipeline(ctx, input)
	if err != nil {
		return err
	}

	// Report token usage
	if tokenUsage != nil {
		if logger != nil {
			logger.Info("AI token usage", "input_tokens", tokenUsage.InputTokens, "output_tokens", tokenUsage.OutputTokens, "total_tokens", tokenUsage.TotalTokens)
		} else {
			fmt.Fprintf(os.Stderr, "AI token usage: input=%d, output=%d, total=%d\n", tokenUsage.InputTokens, tokenUsage.OutputTokens, tokenUsage.TotalTokens)
		}
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
