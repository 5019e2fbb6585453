package differ

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffProcessor handles the core diffing logic
type DiffProcessor struct {
	dmp    *diffmatchpatch.DiffMatchPatch
	config Config
}

// NewDiffProcessor creates a new diff processor
func NewDiffProcessor(config Config) *DiffProcessor {
	return &DiffProcessor{
		dmp:    diffmatchpatch.New(),
		config: config,
	}
}

// ProcessDiff generates the diff between two fragments. In line mode each
// diff chunk holds whole lines.
func (dp *DiffProcessor) ProcessDiff(text1, text2 string) []diffmatchpatch.Diff {
	var diffs []diffmatchpatch.Diff
	if dp.config.LineBased {
		a, b, lines := dp.dmp.DiffLinesToChars(text1, text2)
		diffs = dp.dmp.DiffMain(a, b, false)
		diffs = dp.dmp.DiffCharsToLines(diffs, lines)
	} else {
		diffs = dp.dmp.DiffMain(text1, text2, false)
	}

	if dp.config.SemanticCleanup {
		diffs = dp.dmp.DiffCleanupSemantic(diffs)
	}
	return diffs
}

// CalculateStats counts inserted and deleted lines. A chunk without a
// newline counts as one line.
func CalculateStats(diffs []diffmatchpatch.Diff) Stats {
	stats := Stats{Identical: true}
	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			stats.LinesAdded += countLines(diff.Text)
			stats.Identical = false
		case diffmatchpatch.DiffDelete:
			stats.LinesDeleted += countLines(diff.Text)
			stats.Identical = false
		}
	}
	return stats
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
