package types

import "strings"

// LineKind classifies a raw resume line within a section.
type LineKind int

const (
	LineText LineKind = iota
	LineBullet
	LineBlank
)

// Entry is a single line of a resume section. Raw holds the line exactly as
// read; Text holds the bullet content without the "- " marker for bullet
// lines and equals Raw otherwise.
type Entry struct {
	Raw  string   `json:"raw"`
	Text string   `json:"text"`
	Kind LineKind `json:"kind"`
}

// Section is a named resume section: its "## " marker line plus every line
// that follows it up to the next marker.
type Section struct {
	Name    string  `json:"name"`
	Marker  string  `json:"marker"`
	Entries []Entry `json:"entries"`
}

// Bullets returns the indexes of the bullet entries in order.
func (s *Section) Bullets() []int {
	var idx []int
	for i, e := range s.Entries {
		if e.Kind == LineBullet {
			idx = append(idx, i)
		}
	}
	return idx
}

// ResumeDocument is the structured form of a resume. Preamble holds the
// lines before the first section marker. Documents are treated as immutable
// after parsing; edits go through Clone.
type ResumeDocument struct {
	Preamble []string  `json:"preamble"`
	Sections []Section `json:"sections"`

	// trailingNewline records whether the source text ended with a newline
	// so serialization can reproduce the input byte for byte.
	TrailingNewline bool `json:"-"`
}

// Clone returns a deep copy of the document.
func (d *ResumeDocument) Clone() *ResumeDocument {
	out := &ResumeDocument{
		Preamble:        append([]string(nil), d.Preamble...),
		Sections:        make([]Section, len(d.Sections)),
		TrailingNewline: d.TrailingNewline,
	}
	for i, s := range d.Sections {
		out.Sections[i] = Section{
			Name:    s.Name,
			Marker:  s.Marker,
			Entries: append([]Entry(nil), s.Entries...),
		}
	}
	return out
}

// Section returns the section with the given name, matched
// case-insensitively, or nil.
func (d *ResumeDocument) Section(name string) *Section {
	for i := range d.Sections {
		if strings.EqualFold(d.Sections[i].Name, name) {
			return &d.Sections[i]
		}
	}
	return nil
}

// SectionNames returns the section names in document order.
func (d *ResumeDocument) SectionNames() []string {
	names := make([]string, len(d.Sections))
	for i, s := range d.Sections {
		names[i] = s.Name
	}
	return names
}

// Skill is a single required skill keyword with the category the job
// description groups it under (languages, tools, cloud, ...).
type Skill struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// JobRequirements is the structured form of a job description: deduplicated
// lower-cased skill keywords plus responsibility phrases. Immutable once
// extracted.
type JobRequirements struct {
	Title            string   `json:"title,omitempty"`
	Skills           []Skill  `json:"skills"`
	Responsibilities []string `json:"responsibilities"`
}

// Items returns every matchable requirement item: skills first in order,
// then responsibilities. This is the scoring universe for gap analysis.
func (r *JobRequirements) Items() []RequirementItem {
	items := make([]RequirementItem, 0, len(r.Skills)+len(r.Responsibilities))
	for _, s := range r.Skills {
		items = append(items, RequirementItem{Text: s.Name, Category: s.Category, Kind: ItemSkill})
	}
	for _, resp := range r.Responsibilities {
		items = append(items, RequirementItem{Text: resp, Kind: ItemResponsibility})
	}
	return items
}

// ItemKind distinguishes skill keywords from responsibility phrases.
type ItemKind string

const (
	ItemSkill          ItemKind = "skill"
	ItemResponsibility ItemKind = "responsibility"
)

// RequirementItem is one matchable unit of a job requirement.
type RequirementItem struct {
	Text     string   `json:"text"`
	Category string   `json:"category,omitempty"`
	Kind     ItemKind `json:"kind"`
}

// GapItem is a requirement item together with how often it occurs in the
// resume.
type GapItem struct {
	RequirementItem
	Occurrences int `json:"occurrences"`
}

// GapReport is the result of comparing a resume against job requirements.
// Score is in [0,100]; Missing items have zero occurrences; Weak items occur
// fewer times than the configured threshold.
type GapReport struct {
	Score   int       `json:"score"`
	Total   int       `json:"total"`
	Present int       `json:"present"`
	Missing []GapItem `json:"missing"`
	Weak    []GapItem `json:"weak"`
}

// ExtractRequirementsInput is the input for job requirement extraction.
type ExtractRequirementsInput struct {
	JobDescription string `json:"jobDescription"`
}

// DraftRecommendationsInput is the input for the batched recommendation
// drafting call: every gap item goes out in a single request.
type DraftRecommendationsInput struct {
	ResumeText   string          `json:"resumeText"`
	Requirements JobRequirements `json:"requirements"`
	Items        []GapItem       `json:"items"`
	SectionNames []string        `json:"sectionNames"`
}

// RecommendationDraft is one model-proposed edit before priorities and IDs
// are assigned. An empty Text marks a keyword the model declined to place;
// the rationale says why.
type RecommendationDraft struct {
	Keyword     string `json:"keyword"`
	Section     string `json:"section"`
	Action      string `json:"action"`
	BulletIndex int    `json:"bulletIndex"`
	Text        string `json:"text"`
	Rationale   string `json:"rationale"`
}

// DraftRecommendationsOutput is the model's batched response.
type DraftRecommendationsOutput struct {
	Drafts []RecommendationDraft `json:"drafts"`
}

// EditAction is what a recommendation does to its target.
type EditAction string

const (
	ActionAppend  EditAction = "append"
	ActionReplace EditAction = "replace"
)

// TargetRef locates the section (and, for replace actions, the bullet entry)
// a recommendation applies to. EntryIndex counts bullet entries within the
// section; -1 means the section itself.
type TargetRef struct {
	Section    string `json:"section"`
	EntryIndex int    `json:"entryIndex"`
}

// Recommendation is a single proposed text edit. Priority 1 is highest.
type Recommendation struct {
	ID        string     `json:"id"`
	Priority  int        `json:"priority"`
	Target    TargetRef  `json:"target"`
	Action    EditAction `json:"action"`
	Text      string     `json:"text"`
	Rationale string     `json:"rationale"`
	Keyword   string     `json:"keyword"`
}

// FailedItem is a gap item the generator could not turn into a
// recommendation, with the reason. Failed items are reported, never dropped.
type FailedItem struct {
	Keyword string `json:"keyword"`
	Reason  string `json:"reason"`
}

// RecommendationSet is the ordered output of the recommendation generator.
type RecommendationSet struct {
	Recommendations []Recommendation `json:"recommendations"`
	Failed          []FailedItem     `json:"failed,omitempty"`
}

// CountByPriority returns how many recommendations carry each priority.
func (rs *RecommendationSet) CountByPriority() map[int]int {
	counts := make(map[int]int)
	for _, r := range rs.Recommendations {
		counts[r.Priority]++
	}
	return counts
}

// AnalyzeReport is the renderable result of the analyze command: the full
// pipeline output short of editing.
type AnalyzeReport struct {
	Requirements    JobRequirements   `json:"requirements"`
	Gap             GapReport         `json:"gap"`
	Recommendations RecommendationSet `json:"recommendations"`
}

// OptimizeSummary is the renderable result of the optimize command.
// FinalScore is the gap score recomputed against the optimized document.
type OptimizeSummary struct {
	OutputPath      string          `json:"outputPath,omitempty"`
	Score           int             `json:"score"`
	FinalScore      int             `json:"finalScore"`
	GapCount        int             `json:"gapCount"`
	Recommendations int             `json:"recommendations"`
	Priorities      []PriorityCount `json:"priorities,omitempty"`
	Selected        int             `json:"selected"`
	Applied         []AppliedEdit   `json:"applied"`
	FailedEdits     []FailedEdit    `json:"failedEdits,omitempty"`
	FailedItems     []FailedItem    `json:"failedItems,omitempty"`
}

// PriorityCount is one row of the per-priority recommendation breakdown,
// ordered highest priority first.
type PriorityCount struct {
	Priority int    `json:"priority"`
	Label    string `json:"label"`
	Count    int    `json:"count"`
}

// AppliedEdit records one recommendation successfully applied to the
// document.
type AppliedEdit struct {
	RecommendationID string `json:"recommendationId"`
	Section          string `json:"section"`
	Before           string `json:"before,omitempty"`
	After            string `json:"after"`
}

// FailedEdit records one recommendation whose target could not be resolved.
type FailedEdit struct {
	RecommendationID string `json:"recommendationId"`
	Section          string `json:"section"`
	Reason           string `json:"reason"`
}

// OptimizedResume is the editor's output: a new document plus what was
// applied and what failed. The input document is never mutated.
type OptimizedResume struct {
	Document *ResumeDocument `json:"-"`
	Applied  []AppliedEdit   `json:"applied"`
	Failed   []FailedEdit    `json:"failed,omitempty"`
}
