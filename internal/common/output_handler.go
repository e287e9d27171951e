package common

import (
	"fmt"
	"path/filepath"
	"strings"

	"resumizer/internal/errors"
	"resumizer/internal/formatters"
)

// CommandConfig holds common configuration for commands
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
	MaxFileSize  int64
}

// OutputHandler handles formatting and writing output
type OutputHandler struct {
	fileProcessor *FileProcessor
	registry      *formatters.FormatterRegistry
	logger        *errors.Logger
}

// NewOutputHandler creates a new output handler
func NewOutputHandler(logger *errors.Logger) *OutputHandler {
	return &OutputHandler{
		fileProcessor: NewFileProcessor(logger, 0),
		registry:      formatters.GlobalRegistry,
		logger:        logger,
	}
}

// HandleOutput formats data and writes it to the specified output
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	// Validate output file
	if err := oh.fileProcessor.ValidateOutputFile(config.OutputFile); err != nil {
		return err
	}

	// Format output using the registry
	output, err := oh.registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", config.OutputFormat), err)
	}

	// Write output
	if config.OutputFile != "" {
		err = oh.fileProcessor.WriteFile(config.OutputFile, output)
		if err != nil {
			return err // Error already wrapped by WriteFile
		}

		// Log success
		oh.logger.Info("Output written successfully",
			"file", config.OutputFile, "format", config.OutputFormat)
	} else {
		fmt.Print(output)
	}

	return nil
}

// GetSupportedFormats returns all supported output formats
func (oh *OutputHandler) GetSupportedFormats() []string {
	return oh.registry.GetSupportedFormats()
}

// DefaultOutputPath derives the optimized-resume path from the resume path:
// report.txt becomes report_optimized.txt.
func DefaultOutputPath(resumePath string) string {
	ext := filepath.Ext(resumePath)
	base := strings.TrimSuffix(resumePath, ext)
	return base + "_optimized" + ext
}

// ValidateOutputTarget rejects an output path that would overwrite the
// resume file itself.
func ValidateOutputTarget(outputPath, resumePath string) error {
	outAbs, err := filepath.Abs(outputPath)
	if err != nil {
		outAbs = filepath.Clean(outputPath)
	}
	resumeAbs, err := filepath.Abs(resumePath)
	if err != nil {
		resumeAbs = filepath.Clean(resumePath)
	}

	if outAbs == resumeAbs {
		return errors.NewValidationError(errors.ErrCodeInvalidInput,
			fmt.Sprintf("Output path would overwrite the resume file: %s", resumePath), nil)
	}

	return nil
}
