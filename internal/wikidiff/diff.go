// Package wikidiff compares section bodies line by line and derives the
// review comparisons for an edit request.
package wikidiff

import (
	"strings"

	models "agora/internal/domain/models/wiki"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Lines computes a line-oriented diff from a to b.
// Consecutive lines of the same kind are merged into one segment; the
// concatenation of all unchanged and removed segments reproduces a, and of all
// unchanged and added segments reproduces b.
func Lines(a, b string) []models.DiffSegment {
	segments := make([]models.DiffSegment, 0)
	if a == b {
		if a != "" {
			segments = append(segments, models.DiffSegment{Kind: models.ChangeUnchanged, Text: a})
		}
		return segments
	}

	dmp := diffmatchpatch.New()
	// Hash each line to a rune so the character diff runs over whole lines
	charsA, charsB, lineArray := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffMain(charsA, charsB, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		kind := kindOf(d.Type)
		if n := len(segments); n > 0 && segments[n-1].Kind == kind {
			segments[n-1].Text += d.Text
			continue
		}
		segments = append(segments, models.DiffSegment{Kind: kind, Text: d.Text})
	}
	return segments
}

func kindOf(op diffmatchpatch.Operation) models.ChangeKind {
	switch op {
	case diffmatchpatch.DiffInsert:
		return models.ChangeAdded
	case diffmatchpatch.DiffDelete:
		return models.ChangeRemoved
	default:
		return models.ChangeUnchanged
	}
}

// HasChanges reports whether any segment is an addition or removal.
func HasChanges(segments []models.DiffSegment) bool {
	for _, s := range segments {
		if s.Kind != models.ChangeUnchanged {
			return true
		}
	}
	return false
}

// Stats counts added and removed lines.
func Stats(segments []models.DiffSegment) (added, removed int) {
	for _, s := range segments {
		n := lineCount(s.Text)
		switch s.Kind {
		case models.ChangeAdded:
			added += n
		case models.ChangeRemoved:
			removed += n
		}
	}
	return added, removed
}

func lineCount(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
