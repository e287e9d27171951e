package diffview

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const defaultContextLines = 3

// Render writes a colored unified line diff between the original and
// optimized documents to w. Returns true when the documents differ.
func Render(w io.Writer, original, modified string) bool {
	return RenderContext(w, original, modified, defaultContextLines)
}

// RenderContext renders the diff with a caller-chosen number of context
// lines around each change.
func RenderContext(w io.Writer, original, modified string, contextLines int) bool {
	if original == modified {
		fmt.Fprintf(w, "\n%s\n\n", color.YellowString("No changes between original and optimized resume."))
		return false
	}

	lines := diffLines(original, modified)
	hunks := buildHunks(lines, contextLines)

	fmt.Fprintf(w, "\n%s\n", color.New(color.Bold).Sprint("--- Original Resume"))
	fmt.Fprintf(w, "%s\n", color.New(color.Bold).Sprint("+++ Optimized Resume"))

	for _, h := range hunks {
		fmt.Fprintf(w, "%s\n", color.CyanString("@@ -%d,%d +%d,%d @@", h.origStart, h.origCount, h.modStart, h.modCount))
		for _, l := range h.lines {
			switch l.op {
			case diffmatchpatch.DiffDelete:
				fmt.Fprintf(w, "%s\n", color.RedString("-%s", l.text))
			case diffmatchpatch.DiffInsert:
				fmt.Fprintf(w, "%s\n", color.GreenString("+%s", l.text))
			default:
				fmt.Fprintf(w, " %s\n", l.text)
			}
		}
	}
	fmt.Fprintln(w)

	return true
}

// tagged is one document line with its diff operation.
type tagged struct {
	op   diffmatchpatch.Operation
	text string
}

// diffLines computes a line-granular diff. The char-encoding round trip is
// the diffmatchpatch recipe for line mode.
func diffLines(original, modified string) []tagged {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(original, modified)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var lines []tagged
	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		for _, line := range strings.Split(text, "\n") {
			lines = append(lines, tagged{op: d.Type, text: line})
		}
	}
	return lines
}

// hunk is one contiguous display block in unified form.
type hunk struct {
	origStart, origCount int
	modStart, modCount   int
	lines                []tagged
}

// buildHunks groups changed lines into hunks with the requested context.
// Changed regions separated by at most 2*context equal lines share a hunk.
func buildHunks(lines []tagged, context int) []hunk {
	origNum := make([]int, len(lines))
	modNum := make([]int, len(lines))
	o, m := 1, 1
	for i, l := range lines {
		origNum[i] = o
		modNum[i] = m
		if l.op != diffmatchpatch.DiffInsert {
			o++
		}
		if l.op != diffmatchpatch.DiffDelete {
			m++
		}
	}

	var hunks []hunk
	i := 0
	for i < len(lines) {
		if lines[i].op == diffmatchpatch.DiffEqual {
			i++
			continue
		}

		start := i
		end := i
		equalRun := 0
		for j := i + 1; j < len(lines); j++ {
			if lines[j].op == diffmatchpatch.DiffEqual {
				equalRun++
				if equalRun > 2*context {
					break
				}
				continue
			}
			end = j
			equalRun = 0
		}

		lo := max(start-context, 0)
		hi := min(end+context, len(lines)-1)

		h := hunk{
			origStart: origNum[lo],
			modStart:  modNum[lo],
			lines:     lines[lo : hi+1],
		}
		for _, l := range h.lines {
			if l.op != diffmatchpatch.DiffInsert {
				h.origCount++
			}
			if l.op != diffmatchpatch.DiffDelete {
				h.modCount++
			}
		}
		hunks = append(hunks, h)

		i = hi + 1
	}
	return hunks
}
