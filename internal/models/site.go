package models

import (
	"strings"
	"time"
)

const (
	// DefaultIntervalSeconds is applied when a site is configured without an interval.
	DefaultIntervalSeconds = 900
	// FetchFailureStatus is stored as the last status when the fetch itself failed.
	FetchFailureStatus = -1
)

// ExtractionMode selects how the monitored fragment is cut out of a fetched body.
type ExtractionMode string

const (
	ModeFull     ExtractionMode = "full"
	ModeSelector ExtractionMode = "selector"
	ModeMarkers  ExtractionMode = "markers"
	ModeRegex    ExtractionMode = "regex"
)

// ParseExtractionMode normalizes a configured mode string. Empty means selector.
// Unknown values are returned lowercased with ok=false so callers can report them.
func ParseExtractionMode(raw string) (ExtractionMode, bool) {
	mode := ExtractionMode(strings.ToLower(strings.TrimSpace(raw)))
	switch mode {
	case "":
		return ModeSelector, true
	case ModeFull, ModeSelector, ModeMarkers, ModeRegex:
		return mode, true
	default:
		return mode, false
	}
}

// SiteConfig is the fetch and extraction policy for one monitored target.
type SiteConfig struct {
	ID              string            `json:"id" yaml:"id" validate:"required"`
	URL             string            `json:"url" yaml:"url" validate:"required"`
	IntervalSeconds uint32            `json:"interval_s" yaml:"interval_s"`
	Mode            ExtractionMode    `json:"mode" yaml:"mode"`
	SelectorCSS     string            `json:"selector_css" yaml:"selector_css"`
	StartMarker     string            `json:"start_marker" yaml:"start_marker"`
	EndMarker       string            `json:"end_marker" yaml:"end_marker"`
	Regex           string            `json:"regex" yaml:"regex"`
	Headers         map[string]string `json:"headers" yaml:"headers"`
	Paused          bool              `json:"paused" yaml:"paused"`
}

// ApplyDefaults fills the interval and mode when they were left unset.
func (c *SiteConfig) ApplyDefaults() {
	if c.IntervalSeconds == 0 {
		c.IntervalSeconds = DefaultIntervalSeconds
	}
	if c.Mode == "" {
		c.Mode = ModeSelector
	}
	if c.Headers == nil {
		c.Headers = map[string]string{}
	}
}

// SiteState is the last observation of a site. It is only ever replaced as a whole.
type SiteState struct {
	LastHash    string `json:"hash"`
	LastStatus  int    `json:"http"`
	LastSize    int    `json:"size"`
	LastChanged bool   `json:"changed"`
}

// SiteRecord pairs a site's configuration with its observation state.
// The configuration is embedded so the persisted form keeps config fields at
// the top level with the state nested under "state".
type SiteRecord struct {
	SiteConfig
	State SiteState `json:"state"`
}

// Interval returns the poll interval, falling back to the default for records
// persisted without one.
func (c SiteConfig) Interval() time.Duration {
	seconds := c.IntervalSeconds
	if seconds == 0 {
		seconds = DefaultIntervalSeconds
	}
	return time.Duration(seconds) * time.Second
}
