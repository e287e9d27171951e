package cli

import (
	"context"
	"fmt"

	"resumizer/internal/ai"
	"resumizer/internal/common"
	"resumizer/internal/config"
	"resumizer/internal/errors"
	"resumizer/internal/observability"
	"resumizer/internal/pipeline"
	"resumizer/internal/types"
	"resumizer/internal/watch"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze how well a resume matches a job description",
	Long: `Analyze a resume against a job description without writing any resume
file. The resume structure is parsed, the job's requirements are extracted
with AI, and the resume is scored against them. The report lists the match
score, missing and weak keywords, and prioritized edit recommendations.

With --watch the command stays alive and re-runs the deterministic stages
(parse and gap scoring) whenever the resume file changes. Watch re-runs make
no AI calls; the requirements extracted on the initial run are reused.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		// Apply default format if not specified
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		analyzeConfig.MaxFileSize = cfg.App.MaxFileSize
		// Validate format against supported formats
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var analyzeConfig common.CommandConfig

var (
	analyzeResumePath string
	analyzeJobPath    string
	analyzeWatch      bool
)

// analyzeInput is the pair of file contents the analysis runs on.
type analyzeInput struct {
	Resume string
	Job    string
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeResumePath, "resume", "r", "", "Resume file in the section markup format (required)")
	analyzeCmd.Flags().StringVarP(&analyzeJobPath, "job", "j", "", "Job description file, plain text (required)")
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Report file path (default: stdout)")
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFormat, "format", "f", "", "Report format: json, text, or markdown")
	analyzeCmd.Flags().BoolVarP(&analyzeWatch, "watch", "w", false, "Re-run the analysis when the resume file changes")
	_ = analyzeCmd.MarkFlagRequired("resume")
	_ = analyzeCmd.MarkFlagRequired("job")

	// Add completion for format flag
	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := getConfigFromContext(ctx)
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(ctx)
	if err != nil {
		return err
	}
	om, err := getObservabilityFromContext(ctx)
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg, logger, om)
	if err != nil {
		return fmt.Errorf("failed to create analysis pipeline: %w", err)
	}
	defer func() {
		if closeErr := p.Close(); closeErr != nil {
			logger.Warn("Failed to close analysis pipeline", "error", closeErr)
		}
	}()

	st := &pipeline.State{}

	createInput := func(contents []string) (analyzeInput, error) {
		if len(contents) != 2 {
			return analyzeInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		input := analyzeInput{Resume: contents[0], Job: contents[1]}
		if err := common.ValidateMinChars("Resume", input.Resume, cfg.App.MinResumeChars); err != nil {
			return analyzeInput{}, err
		}
		if err := common.ValidateMinChars("Job description", input.Job, cfg.App.MinJobChars); err != nil {
			return analyzeInput{}, err
		}
		return input, nil
	}

	logDetails := func(input analyzeInput, cmdCfg common.CommandConfig) {
		logger.Info("Starting resume analysis",
			"resume_chars", len(input.Resume),
			"job_chars", len(input.Job),
			"output_format", cmdCfg.OutputFormat)
	}

	// The pipeline state outlives this closure so watch mode can rescore
	// against the same requirements.
	analyzeOperation := func(ctx context.Context, input analyzeInput) (types.AnalyzeReport, *ai.TokenUsage, error) {
		st.ResumeText = input.Resume
		st.JobText = input.Job
		if err := p.Analyze(ctx, st); err != nil {
			return types.AnalyzeReport{}, nil, err
		}
		return st.Report(), &st.Usage, nil
	}

	err = common.RunPipelineCommand(
		ctx,
		logger,
		analyzeConfig,
		[]string{analyzeResumePath, analyzeJobPath},
		createInput,
		analyzeOperation,
		logDetails,
	)
	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	logger.Info("Resume analysis completed successfully")

	if !analyzeWatch {
		printOptimizeHint()
		return nil
	}
	return watchAndReanalyze(ctx, cfg, logger, om, p, st)
}

// printOptimizeHint nudges toward the optimize command. Suppressed when the
// report went to stdout in a machine format.
func printOptimizeHint() {
	if analyzeConfig.OutputFile == "" && analyzeConfig.OutputFormat != "text" {
		return
	}
	color.New(color.Faint).Println("Use 'optimize' to apply recommendations.")
}

// watchAndReanalyze blocks until the context is cancelled, re-running the
// deterministic stages and re-rendering the report each time the resume file
// changes.
func watchAndReanalyze(ctx context.Context, cfg *config.Config, logger *errors.Logger, om *observability.ObservabilityManager, p *pipeline.Pipeline, st *pipeline.State) error {
	fileProcessor := common.NewFileProcessor(logger, cfg.App.MaxFileSize)
	outputHandler := common.NewOutputHandler(logger)
	metrics := om.GetMetrics()

	rerun := func() {
		text, err := fileProcessor.ReadFile(analyzeResumePath)
		if err != nil {
			logger.LogError(err, "Watch rerun could not read resume")
			return
		}
		if err := common.ValidateMinChars("Resume", text, cfg.App.MinResumeChars); err != nil {
			logger.LogError(err, "Watch rerun rejected resume")
			return
		}

		st.ResumeText = text
		if err := p.Reanalyze(ctx, st); err != nil {
			metrics.RecordBusinessMetric(ctx, "watch_reload", false, om)
			logger.LogError(err, "Watch rerun failed")
			return
		}
		metrics.RecordBusinessMetric(ctx, "watch_reload", true, om,
			attribute.Int("gap.score", st.Gap.Score))

		if err := outputHandler.HandleOutput(st.Report(), analyzeConfig); err != nil {
			logger.LogError(err, "Watch rerun could not render report")
		}
	}

	watcher, err := watch.NewFileWatcher([]string{analyzeResumePath}, cfg.Watch.DebounceDelay, rerun, logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	logger.Info("Watching resume for changes, press Ctrl+C to stop", "file", analyzeResumePath)
	<-ctx.Done()
	return watcher.Stop()
}
