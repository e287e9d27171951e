package cli

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"resumizer/internal/common"
	"resumizer/internal/diffview"
	"resumizer/internal/markup"
	"resumizer/internal/pipeline"
	"resumizer/internal/recommend"
	"resumizer/internal/selection"
	"resumizer/internal/types"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Optimize a resume for a specific job description",
	Long: `Run the full optimization pipeline: parse the resume, extract the job's
requirements with AI, score the match, generate prioritized edit
recommendations, and apply the ones you select. By default every
recommendation is presented for an accept/skip decision. --auto-priority N
accepts recommendations at or above the priority cutoff without prompting;
--auto selects nothing and reports only.

The original resume file is never modified. The optimized resume is written
to --output, which defaults to <resume>_optimized<ext> next to the input.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		// Apply default format if not specified
		if optimizeConfig.OutputFormat == "" {
			optimizeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		optimizeConfig.MaxFileSize = cfg.App.MaxFileSize
		if cmd.Flags().Changed("auto-priority") && (optimizeAutoPriority < 1 || optimizeAutoPriority > 5) {
			return fmt.Errorf("--auto-priority must be between 1 and 5, got %d", optimizeAutoPriority)
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(optimizeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runOptimize,
}

// optimizeConfig carries the run summary format. The summary always renders
// to stdout; --output names the optimized resume file, not the summary.
var optimizeConfig common.CommandConfig

var (
	optimizeResumePath   string
	optimizeJobPath      string
	optimizeOutputPath   string
	optimizeAuto         bool
	optimizeAutoPriority int
	optimizeShowDiff     bool
	optimizeOverwrite    bool
)

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeResumePath, "resume", "r", "", "Resume file in the section markup format (required)")
	optimizeCmd.Flags().StringVarP(&optimizeJobPath, "job", "j", "", "Job description file, plain text (required)")
	optimizeCmd.Flags().StringVarP(&optimizeOutputPath, "output", "o", "", "Output path for the optimized resume (default: <resume>_optimized<ext>)")
	optimizeCmd.Flags().StringVarP(&optimizeConfig.OutputFormat, "format", "f", "", "Run summary format: json, text, or markdown")
	optimizeCmd.Flags().BoolVar(&optimizeAuto, "auto", false, "Skip the interactive review and select no recommendations (report only)")
	optimizeCmd.Flags().IntVar(&optimizeAutoPriority, "auto-priority", 0, "Skip the interactive review and select recommendations with priority at or above N (1 is highest)")
	optimizeCmd.Flags().BoolVar(&optimizeShowDiff, "show-diff", true, "Show a diff between the original and optimized resume")
	optimizeCmd.Flags().BoolVar(&optimizeOverwrite, "overwrite", false, "Replace the output file if it already exists")
	optimizeCmd.MarkFlagsMutuallyExclusive("auto", "auto-priority")
	_ = optimizeCmd.MarkFlagRequired("resume")
	_ = optimizeCmd.MarkFlagRequired("job")

	// Add completion for format flag
	_ = optimizeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runOptimize(cmd *cobra.Command, args []string) error {
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

	outputPath := optimizeOutputPath
	if outputPath == "" {
		outputPath = common.DefaultOutputPath(optimizeResumePath)
	}
	if err := common.ValidateOutputTarget(outputPath, optimizeResumePath); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", color.CyanString("Reading resume from:"), optimizeResumePath)
	fmt.Fprintf(out, "%s %s\n", color.CyanString("Reading job description from:"), optimizeJobPath)

	fileProcessor := common.NewFileProcessor(logger, cfg.App.MaxFileSize)
	contents, err := fileProcessor.ValidateAndReadFiles(optimizeResumePath, optimizeJobPath)
	if err != nil {
		return err
	}
	resumeText, jobText := contents[0], contents[1]
	if err := common.ValidateMinChars("Resume", resumeText, cfg.App.MinResumeChars); err != nil {
		return err
	}
	if err := common.ValidateMinChars("Job description", jobText, cfg.App.MinJobChars); err != nil {
		return err
	}

	p, err := pipeline.New(cfg, logger, om)
	if err != nil {
		return fmt.Errorf("failed to create optimization pipeline: %w", err)
	}
	defer func() {
		if closeErr := p.Close(); closeErr != nil {
			logger.Warn("Failed to close optimization pipeline", "error", closeErr)
		}
	}()

	logger.Info("Starting resume optimization",
		"resume_chars", len(resumeText),
		"job_chars", len(jobText),
		"auto", optimizeAuto,
		"auto_priority", optimizeAutoPriority,
		"output_format", optimizeConfig.OutputFormat)

	st := &pipeline.State{ResumeText: resumeText, JobText: jobText}
	if err := p.Optimize(ctx, st, selectionFunc(st, cmd.InOrStdin(), out)); err != nil {
		return fmt.Errorf("failed to optimize resume: %w", err)
	}
	if st.Usage.TotalTokens > 0 {
		logger.Info("AI token usage",
			"input_tokens", st.Usage.InputTokens,
			"output_tokens", st.Usage.OutputTokens,
			"total_tokens", st.Usage.TotalTokens)
	}

	if optimizeShowDiff {
		diffview.Render(out, markup.Serialize(st.Document), markup.Serialize(st.Optimized.Document))
	}
	if len(st.Optimized.Failed) > 0 {
		fmt.Fprintf(out, "%s\n", color.YellowString("%d edit(s) could not be applied; details in the summary below.", len(st.Optimized.Failed)))
	}

	written := ""
	if len(st.Optimized.Applied) == 0 {
		fmt.Fprintf(out, "%s\n", color.YellowString("No modifications were made to the resume."))
	} else {
		if err := fileProcessor.WriteOutputFile(outputPath, markup.Serialize(st.Optimized.Document), optimizeOverwrite); err != nil {
			return err
		}
		written = outputPath
		fmt.Fprintf(out, "%s %s\n", color.GreenString("✓ Optimized resume saved to:"), outputPath)
	}

	fmt.Fprintf(out, "\n%s\n", color.New(color.FgCyan, color.Bold).Sprint("Final Results:"))
	outputHandler := common.NewOutputHandler(logger)
	if err := outputHandler.HandleOutput(st.Summary(written), optimizeConfig); err != nil {
		return err
	}

	logger.Info("Resume optimization completed successfully")
	return nil
}

// selectionFunc builds the selection callback for this run's flags. It runs
// after the recommendation stage, so the gap report on the state is complete
// by the time it fires.
func selectionFunc(st *pipeline.State, in io.Reader, out io.Writer) pipeline.SelectFunc {
	return func(set *types.RecommendationSet) ([]types.Recommendation, error) {
		printGapSummary(out, st.Gap)
		if len(set.Recommendations) == 0 {
			fmt.Fprintf(out, "%s\n", color.YellowString("No recommendations generated."))
			return []types.Recommendation{}, nil
		}

		switch {
		case optimizeAuto:
			fmt.Fprintf(out, "Generated %d recommendations. Running with --auto, none will be applied.\n",
				len(set.Recommendations))
			return selection.None(set), nil
		case optimizeAutoPriority > 0:
			selected := selection.UpToPriority(set, optimizeAutoPriority)
			fmt.Fprintf(out, "%s\n", color.GreenString("Auto-selected %d of %d recommendations (P%d and above)",
				len(selected), len(set.Recommendations), optimizeAutoPriority))
			return selected, nil
		default:
			return selectInteractively(set, in, out)
		}
	}
}

func printGapSummary(out io.Writer, gap *types.GapReport) {
	if gap == nil {
		return
	}
	fmt.Fprintf(out, "\n%s %s (%d of %d keywords present, %d missing, %d weak)\n",
		color.New(color.Bold).Sprint("Match score:"),
		scoreColor(gap.Score).Sprintf("%d/100", gap.Score),
		gap.Present, gap.Total, len(gap.Missing), len(gap.Weak))
}

// selectInteractively walks the recommendations in priority order, asking
// for a decision on each one.
func selectInteractively(set *types.RecommendationSet, in io.Reader, out io.Writer) ([]types.Recommendation, error) {
	total := len(set.Recommendations)
	fmt.Fprintf(out, "%s\n", color.New(color.FgCyan, color.Bold).Sprintf("Generated %d recommendations:", total))
	fmt.Fprintln(out, "For each one: y = apply, n = skip, a = apply all remaining, q = skip all remaining.")

	reader := bufio.NewReader(in)
	shown := 0
	decide := func(rec types.Recommendation) (selection.Decision, error) {
		shown++
		printRecommendation(out, rec, shown, total)
		return promptDecision(reader, out)
	}

	selected, err := selection.Interactive(set, decide)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "\n%s\n", color.GreenString("Selected %d of %d recommendations", len(selected), total))
	return selected, nil
}

func printRecommendation(out io.Writer, rec types.Recommendation, index, total int) {
	fmt.Fprintf(out, "\n%s\n", color.New(color.FgCyan, color.Bold).Sprintf("--- Recommendation %d/%d ---", index, total))
	fmt.Fprintf(out, "%s  [%s]  keyword: %s\n",
		rec.ID,
		priorityColor(rec.Priority).Sprintf("P%d %s", rec.Priority, recommend.PriorityLabel(rec.Priority)),
		rec.Keyword)
	fmt.Fprintf(out, "Action: %s\n", describeTarget(rec))
	fmt.Fprintf(out, "Text: %s\n", rec.Text)
	if rec.Rationale != "" {
		fmt.Fprintf(out, "Rationale: %s\n", rec.Rationale)
	}
}

func promptDecision(reader *bufio.Reader, out io.Writer) (selection.Decision, error) {
	for {
		fmt.Fprint(out, "Apply this change? [Y/n/a/q]: ")
		line, err := reader.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		if err != nil && answer == "" {
			if stderrors.Is(err, io.EOF) {
				// Closed input skips everything not yet answered
				fmt.Fprintln(out)
				return selection.SkipRest, nil
			}
			return selection.Skip, fmt.Errorf("failed to read selection input: %w", err)
		}

		switch answer {
		case "y", "yes", "":
			return selection.Accept, nil
		case "n", "no":
			return selection.Skip, nil
		case "a", "all":
			return selection.AcceptRest, nil
		case "q", "quit":
			return selection.SkipRest, nil
		}
		fmt.Fprintln(out, "Please answer y, n, a, or q.")
	}
}

func describeTarget(rec types.Recommendation) string {
	if rec.Action == types.ActionReplace {
		return fmt.Sprintf("replace entry %d in %q", rec.Target.EntryIndex, rec.Target.Section)
	}
	return fmt.Sprintf("append to %q", rec.Target.Section)
}

// scoreColor maps a match score to the severity palette.
func scoreColor(score int) *color.Color {
	switch {
	case score >= 80:
		return color.New(color.FgGreen, color.Bold)
	case score >= 60:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// priorityColor follows the same palette as scoreColor: critical red,
// important yellow, suggested cyan.
func priorityColor(priority int) *color.Color {
	switch priority {
	case recommend.PriorityMissingSkill:
		return color.New(color.FgRed, color.Bold)
	case recommend.PriorityMissingResponsibility:
		return color.New(color.FgYellow, color.Bold)
	case recommend.PriorityWeak:
		return color.New(color.FgCyan)
	}
	return color.New(color.Faint)
}
