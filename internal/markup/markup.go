// Package markup parses and serializes the section-based resume format.
//
// A resume is plain text where lines starting with "## " open a named
// section and lines starting with "- " are bullet entries. Everything else
// is kept as free text. Parsing preserves every input line verbatim so that
// serializing an unmodified document reproduces the input byte for byte.
package markup

import (
	"strings"

	"resumizer/internal/errors"
	"resumizer/internal/types"
)

const (
	sectionMarkerPrefix = "## "
	bulletPrefix        = "- "
)

// Parse converts resume text into a structured document. It fails with a
// RESUME_PARSE_FAILED error when the text contains no section markers at
// all, which almost always means the input is not in the expected format.
func Parse(text string) (*types.ResumeDocument, error) {
	lines := strings.Split(text, "\n")
	trailing := strings.HasSuffix(text, "\n")
	if trailing && len(lines) > 0 && lines[len(lines)-1] == "" {
		// The final empty element is the trailing newline, not a blank line.
		lines = lines[:len(lines)-1]
	}

	doc := &types.ResumeDocument{TrailingNewline: trailing}
	current := -1

	for _, line := range lines {
		if name, ok := parseSectionMarker(line); ok {
			doc.Sections = append(doc.Sections, types.Section{Name: name, Marker: line})
			current = len(doc.Sections) - 1
			continue
		}
		if current < 0 {
			doc.Preamble = append(doc.Preamble, line)
			continue
		}
		doc.Sections[current].Entries = append(doc.Sections[current].Entries, classifyLine(line))
	}

	if len(doc.Sections) == 0 {
		return nil, errors.NewValidationError(
			errors.ErrCodeResumeParseFailed,
			"resume contains no section markers (expected lines starting with \"## \")",
			nil,
		).WithContext("lines", len(lines))
	}

	return doc, nil
}

// Serialize renders a document back to resume text. For a document that came
// out of Parse unmodified, the output equals the original input exactly.
func Serialize(doc *types.ResumeDocument) string {
	lineCount := len(doc.Preamble)
	for _, s := range doc.Sections {
		lineCount += 1 + len(s.Entries)
	}

	lines := make([]string, 0, lineCount)
	lines = append(lines, doc.Preamble...)
	for _, s := range doc.Sections {
		lines = append(lines, s.Marker)
		for _, e := range s.Entries {
			lines = append(lines, e.Raw)
		}
	}

	out := strings.Join(lines, "\n")
	if doc.TrailingNewline {
		out += "\n"
	}
	return out
}

// BulletEntry builds a new top-level bullet entry for the given text.
func BulletEntry(text string) types.Entry {
	return types.Entry{
		Raw:  bulletPrefix + text,
		Text: text,
		Kind: types.LineBullet,
	}
}

// ReplaceBulletText rewrites a bullet entry with new text, preserving the
// original line's indentation.
func ReplaceBulletText(entry types.Entry, text string) types.Entry {
	indent := entry.Raw[:len(entry.Raw)-len(strings.TrimLeft(entry.Raw, " \t"))]
	return types.Entry{
		Raw:  indent + bulletPrefix + text,
		Text: text,
		Kind: types.LineBullet,
	}
}

// parseSectionMarker reports whether a line opens a section and returns the
// section name. Markers must start at the first column.
func parseSectionMarker(line string) (string, bool) {
	if !strings.HasPrefix(line, sectionMarkerPrefix) {
		return "", false
	}
	return strings.TrimSpace(line[len(sectionMarkerPrefix):]), true
}

func classifyLine(line string) types.Entry {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return types.Entry{Raw: line, Text: line, Kind: types.LineBlank}
	case strings.HasPrefix(trimmed, bulletPrefix):
		return types.Entry{
			Raw:  line,
			Text: strings.TrimSpace(trimmed[len(bulletPrefix):]),
			Kind: types.LineBullet,
		}
	default:
		return types.Entry{Raw: line, Text: line, Kind: types.LineText}
	}
}
