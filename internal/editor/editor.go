// Package editor applies accepted recommendations to a resume document.
package editor

import (
	"fmt"

	"resumizer/internal/markup"
	"resumizer/internal/types"
)

// Apply applies the selected recommendations, in order, to a deep copy of
// the document. The input document is never modified, and lines no
// recommendation touches keep their exact bytes. A recommendation whose
// target cannot be resolved is recorded as a failed edit; it does not stop
// the remaining recommendations.
func Apply(doc *types.ResumeDocument, recs []types.Recommendation) *types.OptimizedResume {
	result := &types.OptimizedResume{
		Document: doc.Clone(),
		Applied:  []types.AppliedEdit{},
	}

	for _, rec := range recs {
		section := result.Document.Section(rec.Target.Section)
		if section == nil {
			result.Failed = append(result.Failed, types.FailedEdit{
				RecommendationID: rec.ID,
				Section:          rec.Target.Section,
				Reason:           fmt.Sprintf("section %q not found", rec.Target.Section),
			})
			continue
		}

		switch rec.Action {
		case types.ActionAppend:
			appendBullet(section, rec.Text)
			result.Applied = append(result.Applied, types.AppliedEdit{
				RecommendationID: rec.ID,
				Section:          section.Name,
				After:            rec.Text,
			})

		case types.ActionReplace:
			before, ok := replaceBullet(section, rec.Target.EntryIndex, rec.Text)
			if !ok {
				result.Failed = append(result.Failed, types.FailedEdit{
					RecommendationID: rec.ID,
					Section:          section.Name,
					Reason: fmt.Sprintf("bullet %d not found in section %q (%d bullets)",
						rec.Target.EntryIndex, section.Name, len(section.Bullets())),
				})
				continue
			}
			result.Applied = append(result.Applied, types.AppliedEdit{
				RecommendationID: rec.ID,
				Section:          section.Name,
				Before:           before,
				After:            rec.Text,
			})

		default:
			result.Failed = append(result.Failed, types.FailedEdit{
				RecommendationID: rec.ID,
				Section:          section.Name,
				Reason:           fmt.Sprintf("unsupported action %q", rec.Action),
			})
		}
	}

	return result
}

// appendBullet inserts a new bullet after the section's last non-blank
// entry, keeping trailing blank lines at the end of the section.
func appendBullet(section *types.Section, text string) {
	pos := 0
	for i, e := range section.Entries {
		if e.Kind != types.LineBlank {
			pos = i + 1
		}
	}

	entry := markup.BulletEntry(text)
	section.Entries = append(section.Entries, types.Entry{})
	copy(section.Entries[pos+1:], section.Entries[pos:])
	section.Entries[pos] = entry
}

// replaceBullet rewrites the section's n-th bullet entry, counting bullets
// only. It reports false when no such bullet exists.
func replaceBullet(section *types.Section, bulletIndex int, text string) (string, bool) {
	bullets := section.Bullets()
	if bulletIndex < 0 || bulletIndex >= len(bullets) {
		return "", false
	}

	entryIdx := bullets[bulletIndex]
	before := section.Entries[entryIdx].Text
	section.Entries[entryIdx] = markup.ReplaceBulletText(section.Entries[entryIdx], text)
	return before, true
}
