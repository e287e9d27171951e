// Package pipeline drives the stages behind the optimize and analyze
// commands: parse resume, extract job requirements, analyze gaps, draft
// recommendations, apply edits. Stages run strictly in order and share one
// State; the two AI-backed stages are the only suspension points. Every run
// gets a root tracing span with one child span per stage.
package pipeline

import (
	"context"
	stderrors "errors"
	"maps"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"resumizer/internal/ai"
	"resumizer/internal/config"
	"resumizer/internal/editor"
	"resumizer/internal/errors"
	"resumizer/internal/gap"
	"resumizer/internal/markup"
	"resumizer/internal/observability"
	"resumizer/internal/recommend"
	"resumizer/internal/types"
)

const tracerName = "resumizer.pipeline"

// RequirementsExtractor turns raw job text into structured requirements in
// one AI call. *ai.Service implements it.
type RequirementsExtractor interface {
	ExtractRequirements(ctx context.Context, jobDescription string) (types.JobRequirements, *ai.TokenUsage, error)
}

// SelectFunc chooses which recommendations get applied. It runs between the
// recommendation and editing stages; interactive prompting, when any,
// happens inside it.
type SelectFunc func(set *types.RecommendationSet) ([]types.Recommendation, error)

// State accumulates the results of one run. Each stage reads the fields of
// the stages before it and fills in its own; nothing is mutated after being
// set.
type State struct {
	ResumeText string
	JobText    string

	Document        *types.ResumeDocument
	Requirements    types.JobRequirements
	Gap             *types.GapReport
	Recommendations *types.RecommendationSet

	Selected   []types.Recommendation
	Optimized  *types.OptimizedResume
	FinalScore int

	// Usage is the token usage accumulated across the run's AI calls.
	Usage ai.TokenUsage
}

// addUsage accumulates token usage from one AI call.
func (st *State) addUsage(usage *ai.TokenUsage) {
	if usage == nil {
		return
	}
	st.Usage.InputTokens += usage.InputTokens
	st.Usage.OutputTokens += usage.OutputTokens
	st.Usage.TotalTokens += usage.TotalTokens
}

// Report builds the renderable analyze report. Valid once Analyze has
// succeeded.
func (st *State) Report() types.AnalyzeReport {
	report := types.AnalyzeReport{Requirements: st.Requirements}
	if st.Gap != nil {
		report.Gap = *st.Gap
	}
	if st.Recommendations != nil {
		report.Recommendations = *st.Recommendations
	}
	return report
}

// Summary builds the renderable optimize summary. Valid once Optimize has
// succeeded; outputPath is empty when no file was written.
func (st *State) Summary(outputPath string) types.OptimizeSummary {
	summary := types.OptimizeSummary{
		OutputPath: outputPath,
		FinalScore: st.FinalScore,
		Selected:   len(st.Selected),
	}
	if st.Gap != nil {
		summary.Score = st.Gap.Score
		summary.GapCount = len(st.Gap.Missing) + len(st.Gap.Weak)
	}
	if st.Recommendations != nil {
		summary.Recommendations = len(st.Recommendations.Recommendations)
		summary.FailedItems = st.Recommendations.Failed
		counts := st.Recommendations.CountByPriority()
		for _, priority := range slices.Sorted(maps.Keys(counts)) {
			summary.Priorities = append(summary.Priorities, types.PriorityCount{
				Priority: priority,
				Label:    recommend.PriorityLabel(priority),
				Count:    counts[priority],
			})
		}
	}
	if st.Optimized != nil {
		summary.Applied = st.Optimized.Applied
		summary.FailedEdits = st.Optimized.Failed
	}
	return summary
}

// Pipeline wires the stage implementations together for one or more runs.
type Pipeline struct {
	cfg       *config.Config
	logger    *errors.Logger
	om        *observability.ObservabilityManager
	extractor RequirementsExtractor
	drafter   recommend.Drafter
	analyzer  *gap.Analyzer
	closers   []func() error
}

// New builds the production pipeline: one AI service per operation behind a
// shared rate limiter. A missing API key fails here, before any provider or
// network client is constructed.
func New(cfg *config.Config, logger *errors.Logger, om *observability.ObservabilityManager) (*Pipeline, error) {
	limiter := ai.NewRateLimiter(cfg.AI.RateLimit, logger)
	metrics := om.GetMetrics()
	limiter.SetOnWait(func(waited time.Duration) {
		metrics.RecordBusinessMetric(context.Background(), "rate_limit_wait", true, om,
			attribute.Float64("wait_seconds", waited.Seconds()))
	})

	requirementsConfig := cfg.GetRequirementsConfig()
	requirementsService, err := ai.NewService(&requirementsConfig, "requirements", limiter, logger)
	if err != nil {
		return nil, err
	}

	recommendConfig := cfg.GetRecommendConfig()
	recommendService, err := ai.NewService(&recommendConfig, "recommend", limiter, logger)
	if err != nil {
		if closeErr := requirementsService.Close(); closeErr != nil {
			logger.Warn("Failed to close requirements AI service", "error", closeErr)
		}
		return nil, err
	}

	p := NewWithCollaborators(cfg, requirementsService, recommendService, logger, om)
	p.closers = []func() error{requirementsService.Close, recommendService.Close}
	return p, nil
}

// NewWithCollaborators builds a pipeline around explicit AI collaborators.
// The observability manager must not be nil; pass a disabled manager when
// observability is off.
func NewWithCollaborators(cfg *config.Config, extractor RequirementsExtractor, drafter recommend.Drafter, logger *errors.Logger, om *observability.ObservabilityManager) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		logger:    logger,
		om:        om,
		extractor: extractor,
		drafter:   drafter,
		analyzer:  gap.NewAnalyzer(cfg.Analysis),
	}
}

// Close releases the AI providers, if the pipeline owns any.
func (p *Pipeline) Close() error {
	var firstErr error
	for _, closeFn := range p.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Analyze runs stages 1 through 4 and leaves the parsed document, the
// extracted requirements, the gap report, and the recommendation set on the
// state.
func (p *Pipeline) Analyze(ctx context.Context, st *State) error {
	ctx, span := p.om.Tracer(tracerName).Start(ctx, "pipeline.analyze")
	defer span.End()
	span.SetAttributes(
		attribute.Int("request.resume_length", len(st.ResumeText)),
		attribute.Int("request.job_length", len(st.JobText)),
	)

	metrics := p.om.GetMetrics()
	if err := p.runStages(ctx, st); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", errorType(err)))
		metrics.RecordBusinessMetric(ctx, "job_analyzed", false, p.om)
		return err
	}

	metrics.RecordBusinessMetric(ctx, "job_analyzed", true, p.om,
		attribute.Int("gap.score", st.Gap.Score),
		attribute.Int("recommendations", len(st.Recommendations.Recommendations)))
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("gap.score", st.Gap.Score),
		attribute.Int("recommendations", len(st.Recommendations.Recommendations)),
	)
	return nil
}

// Optimize runs the full pipeline: the four analysis stages, the caller's
// selection, and the editing stage. The parsed document on the state stays
// untouched; the optimized document and its recomputed score land on the
// state. selectRecs must not be nil.
func (p *Pipeline) Optimize(ctx context.Context, st *State, selectRecs SelectFunc) error {
	ctx, span := p.om.Tracer(tracerName).Start(ctx, "pipeline.optimize")
	defer span.End()
	span.SetAttributes(
		attribute.Int("request.resume_length", len(st.ResumeText)),
		attribute.Int("request.job_length", len(st.JobText)),
	)

	metrics := p.om.GetMetrics()
	if err := p.runStages(ctx, st); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", errorType(err)))
		metrics.RecordBusinessMetric(ctx, "resume_optimized", false, p.om)
		return err
	}

	selected, err := selectRecs(st.Recommendations)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", errorType(err)))
		metrics.RecordBusinessMetric(ctx, "resume_optimized", false, p.om)
		return err
	}
	st.Selected = selected

	p.stageEdit(ctx, st)

	metrics.RecordEditsApplied(ctx, len(st.Optimized.Applied), p.om)
	metrics.RecordBusinessMetric(ctx, "resume_optimized", true, p.om,
		attribute.Int("edits.applied", len(st.Optimized.Applied)),
		attribute.Int("edits.failed", len(st.Optimized.Failed)),
		attribute.Int("gap.final_score", st.FinalScore))
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("edits.applied", len(st.Optimized.Applied)),
		attribute.Int("gap.final_score", st.FinalScore),
	)
	return nil
}

// Reanalyze re-runs the deterministic stages against requirements already on
// the state. Watch mode calls this on every resume change; no AI call is
// made, so re-runs keep working if the provider becomes unreachable. The
// recommendation set is left as it was.
func (p *Pipeline) Reanalyze(ctx context.Context, st *State) error {
	ctx, span := p.om.Tracer(tracerName).Start(ctx, "pipeline.reanalyze")
	defer span.End()

	if err := p.stageParse(ctx, st); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", errorType(err)))
		return err
	}
	p.stageGap(ctx, st)

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("gap.score", st.Gap.Score),
	)
	return nil
}

// runStages executes the four analysis stages in order, credential check
// first.
func (p *Pipeline) runStages(ctx context.Context, st *State) error {
	if err := p.checkCredential(); err != nil {
		return err
	}
	if err := p.stageParse(ctx, st); err != nil {
		return err
	}
	if err := p.stageRequirements(ctx, st); err != nil {
		return err
	}
	p.stageGap(ctx, st)
	return p.stageRecommend(ctx, st)
}

// checkCredential fails before stage 1 when no AI credential is configured,
// so a misconfigured run never reaches an external call.
func (p *Pipeline) checkCredential() error {
	requirementsKey := p.cfg.GetRequirementsConfig().APIKey
	recommendKey := p.cfg.GetRecommendConfig().APIKey
	if strings.TrimSpace(requirementsKey) == "" || strings.TrimSpace(recommendKey) == "" {
		return errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"No AI API key configured. Set ai.apiKey, the GEMINI_API_KEY environment variable, or enable Vault", nil)
	}
	return nil
}

// Stage 1: resume structure extraction. Deterministic, no external calls.
func (p *Pipeline) stageParse(ctx context.Context, st *State) error {
	_, span := p.om.Tracer(tracerName).Start(ctx, "stage.parse")
	defer span.End()

	doc, err := markup.Parse(st.ResumeText)
	if err != nil {
		span.RecordError(err)
		return err
	}

	st.Document = doc
	span.SetAttributes(attribute.Int("resume.sections", len(doc.Sections)))
	return nil
}

// Stage 2: job requirement extraction, the first of the two AI calls.
func (p *Pipeline) stageRequirements(ctx context.Context, st *State) error {
	ctx, span := p.om.Tracer(tracerName).Start(ctx, "stage.requirements")
	defer span.End()

	metrics := p.om.GetMetrics()
	var requirements types.JobRequirements
	err := metrics.TrackAIOperationWithTokens(ctx, "requirements", func(ctx context.Context) *observability.AIOperationResult {
		extracted, usage, aiErr := p.extractor.ExtractRequirements(ctx, st.JobText)
		requirements = extracted
		st.addUsage(usage)
		return &observability.AIOperationResult{
			Error:      aiErr,
			TokenUsage: (*observability.TokenUsage)(usage),
		}
	}, p.om)
	if err != nil {
		span.RecordError(err)
		return err
	}

	st.Requirements = requirements
	span.SetAttributes(
		attribute.Int("requirements.skills", len(requirements.Skills)),
		attribute.Int("requirements.responsibilities", len(requirements.Responsibilities)),
	)
	return nil
}

// Stage 3: deterministic gap analysis.
func (p *Pipeline) stageGap(ctx context.Context, st *State) {
	_, span := p.om.Tracer(tracerName).Start(ctx, "stage.gap")
	defer span.End()

	st.Gap = p.analyzer.Analyze(st.Document, &st.Requirements)

	p.om.GetMetrics().RecordGapScore(ctx, st.Gap.Score, p.om)
	span.SetAttributes(
		attribute.Int("gap.score", st.Gap.Score),
		attribute.Int("gap.missing", len(st.Gap.Missing)),
		attribute.Int("gap.weak", len(st.Gap.Weak)),
	)
}

// Stage 4: recommendation drafting, the second AI call. One batched call
// covers every gap item; a gap-free report drafts nothing.
func (p *Pipeline) stageRecommend(ctx context.Context, st *State) error {
	ctx, span := p.om.Tracer(tracerName).Start(ctx, "stage.recommend")
	defer span.End()

	generator := recommend.NewGenerator(p.drafter, p.logger)
	metrics := p.om.GetMetrics()
	var set *types.RecommendationSet
	err := metrics.TrackAIOperationWithTokens(ctx, "recommend", func(ctx context.Context) *observability.AIOperationResult {
		generated, usage, aiErr := generator.Generate(ctx, st.Document, st.Requirements, st.Gap)
		set = generated
		st.addUsage(usage)
		return &observability.AIOperationResult{
			Error:      aiErr,
			TokenUsage: (*observability.TokenUsage)(usage),
		}
	}, p.om)
	if err != nil {
		span.RecordError(err)
		return err
	}

	st.Recommendations = set
	metrics.RecordRecommendationCount(ctx, len(set.Recommendations), p.om)
	span.SetAttributes(
		attribute.Int("recommendations", len(set.Recommendations)),
		attribute.Int("recommendations.failed", len(set.Failed)),
	)
	return nil
}

// Stage 5: edit application plus rescoring of the optimized document.
func (p *Pipeline) stageEdit(ctx context.Context, st *State) {
	_, span := p.om.Tracer(tracerName).Start(ctx, "stage.edit")
	defer span.End()

	st.Optimized = editor.Apply(st.Document, st.Selected)
	st.FinalScore = p.analyzer.Analyze(st.Optimized.Document, &st.Requirements).Score

	span.SetAttributes(
		attribute.Int("edits.applied", len(st.Optimized.Applied)),
		attribute.Int("edits.failed", len(st.Optimized.Failed)),
		attribute.Int("gap.final_score", st.FinalScore),
	)
}

// errorType labels an error for span attributes.
func errorType(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return string(appErr.Type)
	}
	return "internal"
}
