package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumizer/internal/recommend"
	"resumizer/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "AnalyzeReport", &AnalyzeTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalyzeReport", &AnalyzeMarkdownFormatter{})
	registry.RegisterFormatter("text", "OptimizeSummary", &OptimizeTextFormatter{})
	registry.RegisterFormatter("markdown", "OptimizeSummary", &OptimizeMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalyzeReport:
		return "AnalyzeReport"
	case types.OptimizeSummary:
		return "OptimizeSummary"
	default:
		return "any"
	}
}

func describeAction(rec types.Recommendation) string {
	if rec.Action == types.ActionReplace {
		return fmt.Sprintf("replace entry %d in %q", rec.Target.EntryIndex, rec.Target.Section)
	}
	return fmt.Sprintf("append to %q", rec.Target.Section)
}

func describeGapItem(item types.GapItem) string {
	if item.Category != "" {
		return fmt.Sprintf("%s (%s, %s)", item.Text, item.Kind, item.Category)
	}
	return fmt.Sprintf("%s (%s)", item.Text, item.Kind)
}

func priorityBreakdown(priorities []types.PriorityCount) string {
	if len(priorities) == 0 {
		return ""
	}
	parts := make([]string, 0, len(priorities))
	for _, p := range priorities {
		parts = append(parts, fmt.Sprintf("%d %s", p.Count, strings.ToLower(p.Label)))
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// AnalyzeTextFormatter handles text formatting for analyze reports
type AnalyzeTextFormatter struct{}

func (atf *AnalyzeTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalyzeReport)
	if !ok {
		return "", fmt.Errorf("expected AnalyzeReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== JOB REQUIREMENTS ===\n")
	if result.Requirements.Title != "" {
		output.WriteString(fmt.Sprintf("Title: %s\n", result.Requirements.Title))
	}
	output.WriteString("\n")
	if len(result.Requirements.Skills) > 0 {
		output.WriteString("Skills:\n")
		for _, skill := range result.Requirements.Skills {
			if skill.Category != "" {
				output.WriteString(fmt.Sprintf("- %s (%s)\n", skill.Name, skill.Category))
			} else {
				output.WriteString(fmt.Sprintf("- %s\n", skill.Name))
			}
		}
		output.WriteString("\n")
	}
	if len(result.Requirements.Responsibilities) > 0 {
		output.WriteString("Responsibilities:\n")
		for _, responsibility := range result.Requirements.Responsibilities {
			output.WriteString(fmt.Sprintf("- %s\n", responsibility))
		}
		output.WriteString("\n")
	}

	output.WriteString("=== GAP ANALYSIS ===\n")
	output.WriteString(fmt.Sprintf("Match Score: %d/100 (%d of %d keywords present)\n\n",
		result.Gap.Score, result.Gap.Present, result.Gap.Total))
	if len(result.Gap.Missing) > 0 {
		output.WriteString(fmt.Sprintf("Missing Keywords (%d):\n", len(result.Gap.Missing)))
		for _, item := range result.Gap.Missing {
			output.WriteString(fmt.Sprintf("- %s\n", describeGapItem(item)))
		}
		output.WriteString("\n")
	}
	if len(result.Gap.Weak) > 0 {
		output.WriteString(fmt.Sprintf("Weak Keywords (%d):\n", len(result.Gap.Weak)))
		for _, item := range result.Gap.Weak {
			output.WriteString(fmt.Sprintf("- %s: seen %d time(s)\n", describeGapItem(item), item.Occurrences))
		}
		output.WriteString("\n")
	}
	if len(result.Gap.Missing) == 0 && len(result.Gap.Weak) == 0 {
		output.WriteString("All requirement keywords are covered.\n\n")
	}

	output.WriteString("=== RECOMMENDATIONS ===\n")
	if len(result.Recommendations.Recommendations) > 0 {
		counts := result.Recommendations.CountByPriority()
		output.WriteString(fmt.Sprintf("%d recommendations (%d critical, %d important, %d suggested)\n\n",
			len(result.Recommendations.Recommendations),
			counts[recommend.PriorityMissingSkill],
			counts[recommend.PriorityMissingResponsibility],
			counts[recommend.PriorityWeak]))
		for i, rec := range result.Recommendations.Recommendations {
			output.WriteString(fmt.Sprintf("%d. [P%d %s] %s: %s\n",
				i+1, rec.Priority, recommend.PriorityLabel(rec.Priority), rec.ID, describeAction(rec)))
			output.WriteString("   Keyword: ")
			output.WriteString(rec.Keyword)
			output.WriteString("\n")
			output.WriteString("   Text: ")
			output.WriteString(rec.Text)
			output.WriteString("\n")
			output.WriteString("   Rationale: ")
			output.WriteString(rec.Rationale)
			output.WriteString("\n\n")
		}
	} else {
		output.WriteString("No recommendations generated.\n\n")
	}

	if len(result.Recommendations.Failed) > 0 {
		output.WriteString(fmt.Sprintf("Failed Items (%d):\n", len(result.Recommendations.Failed)))
		for _, failed := range result.Recommendations.Failed {
			output.WriteString(fmt.Sprintf("- %s: %s\n", failed.Keyword, failed.Reason))
		}
	}

	return output.String(), nil
}

func (atf *AnalyzeTextFormatter) SupportedType() string {
	return "AnalyzeReport"
}

// AnalyzeMarkdownFormatter handles markdown formatting for analyze reports
type AnalyzeMarkdownFormatter struct{}

func (amf *AnalyzeMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalyzeReport)
	if !ok {
		return "", fmt.Errorf("expected AnalyzeReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Resume Analysis\n\n")

	output.WriteString("## Job Requirements\n\n")
	if result.Requirements.Title != "" {
		output.WriteString(fmt.Sprintf("**Title:** %s\n\n", result.Requirements.Title))
	}
	if len(result.Requirements.Skills) > 0 {
		output.WriteString("### Skills\n")
		for _, skill := range result.Requirements.Skills {
			if skill.Category != "" {
				output.WriteString(fmt.Sprintf("- %s (%s)\n", skill.Name, skill.Category))
			} else {
				output.WriteString(fmt.Sprintf("- %s\n", skill.Name))
			}
		}
		output.WriteString("\n")
	}
	if len(result.Requirements.Responsibilities) > 0 {
		output.WriteString("### Responsibilities\n")
		for _, responsibility := range result.Requirements.Responsibilities {
			output.WriteString(fmt.Sprintf("- %s\n", responsibility))
		}
		output.WriteString("\n")
	}

	output.WriteString("## Gap Analysis\n\n")
	output.WriteString(fmt.Sprintf("**Match Score:** %d/100 (%d of %d keywords present)\n\n",
		result.Gap.Score, result.Gap.Present, result.Gap.Total))
	if len(result.Gap.Missing) > 0 {
		output.WriteString("### Missing Keywords\n")
		for _, item := range result.Gap.Missing {
			output.WriteString(fmt.Sprintf("- %s\n", describeGapItem(item)))
		}
		output.WriteString("\n")
	}
	if len(result.Gap.Weak) > 0 {
		output.WriteString("### Weak Keywords\n")
		for _, item := range result.Gap.Weak {
			output.WriteString(fmt.Sprintf("- %s: seen %d time(s)\n", describeGapItem(item), item.Occurrences))
		}
		output.WriteString("\n")
	}
	if len(result.Gap.Missing) == 0 && len(result.Gap.Weak) == 0 {
		output.WriteString("All requirement keywords are covered.\n\n")
	}

	output.WriteString("## Recommendations\n\n")
	if len(result.Recommendations.Recommendations) > 0 {
		for i, rec := range result.Recommendations.Recommendations {
			output.WriteString(fmt.Sprintf("### %d. %s (P%d %s)\n\n",
				i+1, rec.ID, rec.Priority, recommend.PriorityLabel(rec.Priority)))
			output.WriteString(fmt.Sprintf("**Action:** %s\n\n", describeAction(rec)))
			output.WriteString(fmt.Sprintf("**Keyword:** %s\n\n", rec.Keyword))
			output.WriteString("**Text:** ")
			output.WriteString(rec.Text)
			output.WriteString("\n\n")
			output.WriteString("**Rationale:** ")
			output.WriteString(rec.Rationale)
			output.WriteString("\n\n")
		}
	} else {
		output.WriteString("No recommendations generated.\n\n")
	}

	if len(result.Recommendations.Failed) > 0 {
		output.WriteString("## Failed Items\n\n")
		for _, failed := range result.Recommendations.Failed {
			output.WriteString(fmt.Sprintf("- **%s:** %s\n", failed.Keyword, failed.Reason))
		}
	}

	return output.String(), nil
}

func (amf *AnalyzeMarkdownFormatter) SupportedType() string {
	return "AnalyzeReport"
}

// OptimizeTextFormatter handles text formatting for optimization summaries
type OptimizeTextFormatter struct{}

func (otf *OptimizeTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.OptimizeSummary)
	if !ok {
		return "", fmt.Errorf("expected OptimizeSummary, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== OPTIMIZATION SUMMARY ===\n")
	output.WriteString(fmt.Sprintf("Match Score: %d/100 -> %d/100\n", result.Score, result.FinalScore))
	output.WriteString(fmt.Sprintf("Gaps Identified: %d\n", result.GapCount))
	output.WriteString(fmt.Sprintf("Recommendations: %d%s\n", result.Recommendations, priorityBreakdown(result.Priorities)))
	output.WriteString(fmt.Sprintf("Selected: %d\n", result.Selected))
	output.WriteString(fmt.Sprintf("Edits Applied: %d\n\n", len(result.Applied)))

	if len(result.Applied) > 0 {
		output.WriteString("Applied Changes:\n")
		for i, edit := range result.Applied {
			output.WriteString(fmt.Sprintf("%d. %s [%s]: %s\n", i+1, edit.RecommendationID, edit.Section, edit.After))
		}
		output.WriteString("\n")
	}

	if len(result.FailedEdits) > 0 {
		output.WriteString("Failed Edits:\n")
		for _, failed := range result.FailedEdits {
			output.WriteString(fmt.Sprintf("- %s [%s]: %s\n", failed.RecommendationID, failed.Section, failed.Reason))
		}
		output.WriteString("\n")
	}

	if len(result.FailedItems) > 0 {
		output.WriteString("Skipped Items:\n")
		for _, failed := range result.FailedItems {
			output.WriteString(fmt.Sprintf("- %s: %s\n", failed.Keyword, failed.Reason))
		}
		output.WriteString("\n")
	}

	if result.OutputPath != "" {
		output.WriteString(fmt.Sprintf("Output: %s\n", result.OutputPath))
	}

	return output.String(), nil
}

func (otf *OptimizeTextFormatter) SupportedType() string {
	return "OptimizeSummary"
}

// OptimizeMarkdownFormatter handles markdown formatting for optimization summaries
type OptimizeMarkdownFormatter struct{}

func (omf *OptimizeMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.OptimizeSummary)
	if !ok {
		return "", fmt.Errorf("expected OptimizeSummary, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Optimization Summary\n\n")
	output.WriteString(fmt.Sprintf("**Match Score:** %d/100 -> %d/100\n\n", result.Score, result.FinalScore))
	output.WriteString(fmt.Sprintf("**Gaps Identified:** %d\n\n", result.GapCount))
	output.WriteString(fmt.Sprintf("**Recommendations:** %d%s\n\n", result.Recommendations, priorityBreakdown(result.Priorities)))
	output.WriteString(fmt.Sprintf("**Selected:** %d\n\n", result.Selected))
	output.WriteString(fmt.Sprintf("**Edits Applied:** %d\n\n", len(result.Applied)))

	if len(result.Applied) > 0 {
		output.WriteString("## Applied Changes\n\n")
		for i, edit := range result.Applied {
			output.WriteString(fmt.Sprintf("%d. **%s** [%s]: %s\n", i+1, edit.RecommendationID, edit.Section, edit.After))
		}
		output.WriteString("\n")
	}

	if len(result.FailedEdits) > 0 {
		output.WriteString("## Failed Edits\n\n")
		for _, failed := range result.FailedEdits {
			output.WriteString(fmt.Sprintf("- **%s** [%s]: %s\n", failed.RecommendationID, failed.Section, failed.Reason))
		}
		output.WriteString("\n")
	}

	if len(result.FailedItems) > 0 {
		output.WriteString("## Skipped Items\n\n")
		for _, failed := range result.FailedItems {
			output.WriteString(fmt.Sprintf("- **%s:** %s\n", failed.Keyword, failed.Reason))
		}
		output.WriteString("\n")
	}

	if result.OutputPath != "" {
		output.WriteString(fmt.Sprintf("**Output:** %s\n", result.OutputPath))
	}

	return output.String(), nil
}

func (omf *OptimizeMarkdownFormatter) SupportedType() string {
	return "OptimizeSummary"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
