package gap

import (
	"testing"

	"resumizer/internal/config"
	"resumizer/internal/markup"
	"resumizer/internal/types"
)

const testResume = `## Skills
- Go
- Docker
- machine learning

## Experience
- Built services in Go
`

func mustParse(t *testing.T, text string) *types.ResumeDocument {
	t.Helper()
	doc, err := markup.Parse(text)
	if err != nil {
		t.Fatalf("failed to parse test resume: %v", err)
	}
	return doc
}

func tokenAnalyzer(weakThreshold int) *Analyzer {
	return NewAnalyzer(config.AnalysisConfig{Matching: config.MatchingToken, WeakThreshold: weakThreshold})
}

func TestAnalyzeScoring(t *testing.T) {
	doc := mustParse(t, testResume)
	reqs := &types.JobRequirements{
		Skills: []types.Skill{
			{Name: "go", Category: "languages"},
			{Name: "docker", Category: "tools"},
			{Name: "kubernetes", Category: "tools"},
		},
		Responsibilities: []string{"machine learning"},
	}

	report := tokenAnalyzer(1).Analyze(doc, reqs)

	if report.Total != 4 {
		t.Errorf("expected 4 total items, got %d", report.Total)
	}
	if report.Present != 3 {
		t.Errorf("expected 3 present items, got %d", report.Present)
	}
	if report.Score != 75 {
		t.Errorf("expected score 75, got %d", report.Score)
	}
	if len(report.Missing) != 1 || report.Missing[0].Text != "kubernetes" {
		t.Errorf("expected kubernetes to be the only missing item, got %v", report.Missing)
	}
	if len(report.Weak) != 0 {
		t.Errorf("expected empty weak set at threshold 1, got %v", report.Weak)
	}
}

func TestAnalyzeZeroRequirements(t *testing.T) {
	doc := mustParse(t, testResume)
	report := tokenAnalyzer(1).Analyze(doc, &types.JobRequirements{})

	if report.Score != 100 {
		t.Errorf("expected score 100 with no requirements, got %d", report.Score)
	}
	if report.Total != 0 {
		t.Errorf("expected total 0, got %d", report.Total)
	}
	if len(report.Missing) != 0 || len(report.Weak) != 0 {
		t.Errorf("expected empty missing and weak sets, got %v / %v", report.Missing, report.Weak)
	}
}

func TestAnalyzeScoreRounding(t *testing.T) {
	doc := mustParse(t, "## Skills\n- alpha\n")

	tests := []struct {
		name     string
		skills   []types.Skill
		expected int
	}{
		{
			name:     "one of three",
			skills:   []types.Skill{{Name: "alpha"}, {Name: "beta"}, {Name: "gamma"}},
			expected: 33,
		},
		{
			// "skills" matches the section name, which is part of the corpus
			name:     "two of three",
			skills:   []types.Skill{{Name: "alpha"}, {Name: "skills"}, {Name: "gamma"}},
			expected: 67,
		},
		{
			name:     "one of eight rounds half up",
			skills:   []types.Skill{{Name: "alpha"}, {Name: "b"}, {Name: "c"}, {Name: "d"}, {Name: "e"}, {Name: "f"}, {Name: "g"}, {Name: "h"}},
			expected: 13,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := tokenAnalyzer(1).Analyze(doc, &types.JobRequirements{Skills: tt.skills})
			if report.Score != tt.expected {
				t.Errorf("expected score %d, got %d (present=%d total=%d)",
					tt.expected, report.Score, report.Present, report.Total)
			}
		})
	}
}

func TestTokenMatchingWordBoundaries(t *testing.T) {
	doc := mustParse(t, "## Experience\n- golang services\n")
	reqs := &types.JobRequirements{Skills: []types.Skill{{Name: "go"}}}

	tokenReport := tokenAnalyzer(1).Analyze(doc, reqs)
	if tokenReport.Present != 0 {
		t.Error("token matching should not find \"go\" inside \"golang\"")
	}

	substringAnalyzer := NewAnalyzer(config.AnalysisConfig{Matching: config.MatchingSubstring, WeakThreshold: 1})
	substringReport := substringAnalyzer.Analyze(doc, reqs)
	if substringReport.Present != 1 {
		t.Error("substring matching should find \"go\" inside \"golang\"")
	}
}

func TestTokenMatchingNoStemming(t *testing.T) {
	doc := mustParse(t, "## Experience\n- Designed REST APIs for payments\n")
	reqs := &types.JobRequirements{Responsibilities: []string{"design REST APIs"}}

	report := tokenAnalyzer(1).Analyze(doc, reqs)
	if report.Present != 0 {
		t.Error("matching is exact; \"design\" must not match \"designed\"")
	}
}

func TestMultiWordKeywordStaysOnOneLine(t *testing.T) {
	doc := mustParse(t, "## Skills\n- machine\n- learning\n")
	reqs := &types.JobRequirements{Responsibilities: []string{"machine learning"}}

	report := tokenAnalyzer(1).Analyze(doc, reqs)
	if report.Present != 0 {
		t.Error("multi-word keyword must not match across line boundaries")
	}
}

func TestSpecialCharacterTokens(t *testing.T) {
	doc := mustParse(t, "## Skills\n- C++ and C#\n- node.js apps\n- Shipped in Go.\n")

	tests := []struct {
		keyword string
		present bool
	}{
		{keyword: "c++", present: true},
		{keyword: "c#", present: true},
		{keyword: "node.js", present: true},
		{keyword: "go", present: true},
		{keyword: "c", present: false},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			reqs := &types.JobRequirements{Skills: []types.Skill{{Name: tt.keyword}}}
			report := tokenAnalyzer(1).Analyze(doc, reqs)
			got := report.Present == 1
			if got != tt.present {
				t.Errorf("keyword %q: expected present=%v, got %v", tt.keyword, tt.present, got)
			}
		})
	}
}

func TestOccurrenceCountsAreNonOverlapping(t *testing.T) {
	doc := mustParse(t, "## Notes\n- go go go\n")

	singleReqs := &types.JobRequirements{Skills: []types.Skill{{Name: "go"}}}
	report := tokenAnalyzer(4).Analyze(doc, singleReqs)
	if len(report.Weak) != 1 || report.Weak[0].Occurrences != 3 {
		t.Errorf("expected 3 occurrences of \"go\", got %v", report.Weak)
	}

	pairReqs := &types.JobRequirements{Responsibilities: []string{"go go"}}
	report = tokenAnalyzer(4).Analyze(doc, pairReqs)
	if len(report.Weak) != 1 || report.Weak[0].Occurrences != 1 {
		t.Errorf("expected 1 non-overlapping occurrence of \"go go\", got %v", report.Weak)
	}
}

func TestWeakThreshold(t *testing.T) {
	doc := mustParse(t, "## Skills\n- Docker\n\n## Experience\n- Go services\n- More Go work\n")
	reqs := &types.JobRequirements{
		Skills: []types.Skill{
			{Name: "go", Category: "languages"},
			{Name: "docker", Category: "tools"},
		},
	}

	report := tokenAnalyzer(2).Analyze(doc, reqs)

	if report.Present != 2 {
		t.Errorf("expected both keywords present, got %d", report.Present)
	}
	if report.Score != 100 {
		t.Errorf("weak items still count as present; expected score 100, got %d", report.Score)
	}
	if len(report.Weak) != 1 || report.Weak[0].Text != "docker" {
		t.Errorf("expected docker to be weak at threshold 2, got %v", report.Weak)
	}
	if report.Weak[0].Occurrences != 1 {
		t.Errorf("expected 1 occurrence of docker, got %d", report.Weak[0].Occurrences)
	}
}

func TestUnmatchableKeywordExcludedFromUniverse(t *testing.T) {
	doc := mustParse(t, testResume)
	reqs := &types.JobRequirements{
		Skills: []types.Skill{
			{Name: "go"},
			{Name: "!!!"},
		},
	}

	report := tokenAnalyzer(1).Analyze(doc, reqs)
	if report.Total != 1 {
		t.Errorf("punctuation-only keyword should not count; expected total 1, got %d", report.Total)
	}
	if report.Score != 100 {
		t.Errorf("expected score 100, got %d", report.Score)
	}
}

func TestScoreMonotonicUnderKeywordAddition(t *testing.T) {
	doc := mustParse(t, testResume)
	reqs := &types.JobRequirements{
		Skills: []types.Skill{
			{Name: "go", Category: "languages"},
			{Name: "kubernetes", Category: "tools"},
			{Name: "terraform", Category: "tools"},
		},
	}

	analyzer := tokenAnalyzer(1)
	before := analyzer.Analyze(doc, reqs)

	// Append each missing keyword verbatim; the score must never decrease.
	current := doc
	prevScore := before.Score
	for _, missing := range before.Missing {
		next := current.Clone()
		skills := next.Section("Skills")
		skills.Entries = append(skills.Entries, markup.BulletEntry(missing.Text))

		report := analyzer.Analyze(next, reqs)
		if report.Score < prevScore {
			t.Fatalf("score decreased from %d to %d after adding %q", prevScore, report.Score, missing.Text)
		}
		prevScore = report.Score
		current = next
	}

	final := analyzer.Analyze(current, reqs)
	if final.Score != 100 {
		t.Errorf("expected score 100 after adding all missing keywords, got %d", final.Score)
	}
	if len(final.Missing) != 0 {
		t.Errorf("expected no missing items, got %v", final.Missing)
	}
}

func TestMissingPreservesItemOrder(t *testing.T) {
	doc := mustParse(t, "## Skills\n- nothing relevant\n")
	reqs := &types.JobRequirements{
		Skills: []types.Skill{
			{Name: "zig", Category: "languages"},
			{Name: "ada", Category: "languages"},
		},
		Responsibilities: []string{"ship compilers"},
	}

	report := tokenAnalyzer(1).Analyze(doc, reqs)
	if len(report.Missing) != 3 {
		t.Fatalf("expected 3 missing items, got %d", len(report.Missing))
	}

	expected := []string{"zig", "ada", "ship compilers"}
	for i, want := range expected {
		if report.Missing[i].Text != want {
			t.Errorf("missing[%d]: expected %q, got %q", i, want, report.Missing[i].Text)
		}
	}
	if report.Missing[0].Kind != types.ItemSkill || report.Missing[2].Kind != types.ItemResponsibility {
		t.Error("missing items should keep their requirement kind")
	}
}
