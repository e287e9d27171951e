// Package gap implements the deterministic comparison of a parsed resume
// against extracted job requirements. No external services are involved;
// the same inputs always produce the same report.
package gap

import (
	"math"
	"strings"
	"unicode"

	"resumizer/internal/config"
	"resumizer/internal/types"
)

// Analyzer scores a resume against job requirements and classifies each
// requirement item as present, weak, or missing.
type Analyzer struct {
	matching      string
	weakThreshold int
}

// NewAnalyzer creates an analyzer from analysis configuration. Unknown
// matching modes fall back to token matching; LoadConfig validates the mode
// before any analyzer is built.
func NewAnalyzer(cfg config.AnalysisConfig) *Analyzer {
	matching := cfg.Matching
	if matching != config.MatchingSubstring {
		matching = config.MatchingToken
	}
	threshold := cfg.WeakThreshold
	if threshold < 1 {
		threshold = 1
	}
	return &Analyzer{
		matching:      matching,
		weakThreshold: threshold,
	}
}

// Analyze produces a gap report for the document. Requirement items that
// normalize to nothing (punctuation-only text) are excluded from the scoring
// universe. With zero scorable items the score is 100: there is nothing to
// be missing.
func (a *Analyzer) Analyze(doc *types.ResumeDocument, reqs *types.JobRequirements) *types.GapReport {
	matcher := newDocMatcher(doc, a.matching)

	report := &types.GapReport{}
	for _, item := range reqs.Items() {
		occurrences, ok := matcher.occurrences(item.Text)
		if !ok {
			continue
		}

		report.Total++
		switch {
		case occurrences == 0:
			report.Missing = append(report.Missing, types.GapItem{RequirementItem: item})
		case occurrences < a.weakThreshold:
			report.Present++
			report.Weak = append(report.Weak, types.GapItem{RequirementItem: item, Occurrences: occurrences})
		default:
			report.Present++
		}
	}

	report.Score = score(report.Present, report.Total)
	return report
}

func score(present, total int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(present) / float64(total) * 100))
}

// docMatcher holds one normalized view of a document. Matching happens per
// line so that multi-word keywords never match across line boundaries.
type docMatcher struct {
	mode       string
	lineTokens [][]string
	normLines  []string
}

func newDocMatcher(doc *types.ResumeDocument, mode string) *docMatcher {
	lines := corpusLines(doc)
	m := &docMatcher{mode: mode}

	if mode == config.MatchingSubstring {
		m.normLines = make([]string, len(lines))
		for i, line := range lines {
			m.normLines[i] = normalizeText(line)
		}
		return m
	}

	m.lineTokens = make([][]string, len(lines))
	for i, line := range lines {
		m.lineTokens[i] = tokenize(line)
	}
	return m
}

// occurrences counts non-overlapping matches of the keyword across the
// document. The second return value is false when the keyword normalizes to
// nothing and cannot be matched at all.
func (m *docMatcher) occurrences(keyword string) (int, bool) {
	if m.mode == config.MatchingSubstring {
		norm := normalizeText(keyword)
		if norm == "" {
			return 0, false
		}
		count := 0
		for _, line := range m.normLines {
			count += strings.Count(line, norm)
		}
		return count, true
	}

	kw := tokenize(keyword)
	if len(kw) == 0 {
		return 0, false
	}
	count := 0
	for _, line := range m.lineTokens {
		count += countTokenSequence(line, kw)
	}
	return count, true
}

// corpusLines returns the searchable text of the document: preamble lines,
// section names, and entry text (bullet text without its "- " marker).
func corpusLines(doc *types.ResumeDocument) []string {
	lines := append([]string(nil), doc.Preamble...)
	for _, s := range doc.Sections {
		lines = append(lines, s.Name)
		for _, e := range s.Entries {
			lines = append(lines, e.Text)
		}
	}
	return lines
}

// countTokenSequence counts non-overlapping occurrences of kw as a
// contiguous subsequence of line.
func countTokenSequence(line, kw []string) int {
	count := 0
	for i := 0; i+len(kw) <= len(line); {
		if tokensMatchAt(line, kw, i) {
			count++
			i += len(kw)
		} else {
			i++
		}
	}
	return count
}

func tokensMatchAt(line, kw []string, at int) bool {
	for j, t := range kw {
		if line[at+j] != t {
			return false
		}
	}
	return true
}

// tokenize lower-cases text and splits it into tokens. Letters, digits and
// the characters "+", "#" and "." stay inside tokens so that terms like
// "c++", "c#" and "node.js" survive; sentence-final dots are stripped.
func tokenize(text string) []string {
	text = strings.ToLower(text)

	var tokens []string
	var current strings.Builder
	flush := func() {
		if current.Len() == 0 {
			return
		}
		tok := strings.TrimRight(current.String(), ".")
		current.Reset()
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			current.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	return tokens
}

// normalizeText lower-cases text and collapses runs of whitespace to single
// spaces for substring matching.
func normalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
