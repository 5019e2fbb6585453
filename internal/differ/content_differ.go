// Package differ summarizes how an extracted fragment changed between checks.
package differ

import (
	"github.com/rs/zerolog"
)

// Config controls diff generation.
type Config struct {
	LineBased       bool
	SemanticCleanup bool
	// MaxContentBytes skips the diff when either side is larger. Zero disables the limit.
	MaxContentBytes int
}

// DefaultConfig returns line-based diffing with a 1 MiB limit.
func DefaultConfig() Config {
	return Config{
		LineBased:       true,
		SemanticCleanup: true,
		MaxContentBytes: 1 << 20,
	}
}

// Stats summarizes a diff.
type Stats struct {
	LinesAdded   int
	LinesDeleted int
	Identical    bool
	TooLarge     bool
}

// ContentDiffer compares consecutive versions of a site's fragment.
type ContentDiffer struct {
	processor *DiffProcessor
	config    Config
	logger    zerolog.Logger
}

// NewContentDiffer creates a new instance of ContentDiffer
func NewContentDiffer(config Config, logger zerolog.Logger) *ContentDiffer {
	return &ContentDiffer{
		processor: NewDiffProcessor(config),
		config:    config,
		logger:    logger.With().Str("component", "ContentDiffer").Logger(),
	}
}

// Compare returns line statistics between previous and current.
func (cd *ContentDiffer) Compare(previous, current string) Stats {
	if previous == current {
		return Stats{Identical: true}
	}
	if limit := cd.config.MaxContentBytes; limit > 0 && (len(previous) > limit || len(current) > limit) {
		cd.logger.Debug().
			Int("previous_size", len(previous)).
			Int("current_size", len(current)).
			Int("limit", limit).
			Msg("Content too large for detailed diff")
		return Stats{TooLarge: true}
	}

	return CalculateStats(cd.processor.ProcessDiff(previous, current))
}
