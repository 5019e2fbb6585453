// Package extractor cuts the monitored fragment out of a fetched body
// according to a site's extraction mode.
package extractor

import (
	"strings"

	"github.com/aleister1102/webwatch/internal/common/errorwrapper"
	"github.com/aleister1102/webwatch/internal/models"
	"github.com/aleister1102/webwatch/internal/selector"
)

// Failure messages reported in Outcome.Error.
const (
	MsgEmptySelector      = "empty selector"
	MsgSelectorNoMatch    = "selector produced no match"
	MsgEmptyStartMarker   = "empty start marker"
	MsgStartNotFound      = "start marker not found"
	MsgEndNotFound        = "end marker not found"
	MsgEmptyRegex         = "empty regex"
	MsgRegexNoMatch       = "regex produced no match"
	MsgRegexTimeout       = "regex match timed out"
	msgInvalidRegexPrefix = "invalid regex: "
	msgUnknownModePrefix  = "unknown mode: "
)

// Outcome is the result of one extraction. Content is meaningful only when OK.
type Outcome struct {
	OK      bool
	Content string
	Error   string
	Mode    models.ExtractionMode
}

// Err returns the failure as an error value, or nil when OK.
func (o Outcome) Err() error {
	if o.OK {
		return nil
	}
	return errorwrapper.NewExtractionError(string(o.Mode), o.Error)
}

func success(mode models.ExtractionMode, content string) Outcome {
	return Outcome{OK: true, Content: content, Mode: mode}
}

func failure(mode models.ExtractionMode, msg string) Outcome {
	return Outcome{Error: msg, Mode: mode}
}

// Extract applies cfg's extraction mode to body. It has no side effects.
func Extract(cfg models.SiteConfig, body string) Outcome {
	mode, known := models.ParseExtractionMode(string(cfg.Mode))
	if !known {
		return failure(mode, msgUnknownModePrefix+string(mode))
	}

	switch mode {
	case models.ModeFull:
		return success(mode, body)
	case models.ModeMarkers:
		return extractByMarkers(cfg, body)
	case models.ModeRegex:
		return extractByRegex(cfg, body)
	default:
		return extractBySelector(cfg, body)
	}
}

func extractBySelector(cfg models.SiteConfig, body string) Outcome {
	if cfg.SelectorCSS == "" {
		return failure(models.ModeSelector, MsgEmptySelector)
	}
	text, err := selector.SelectInnerText(body, cfg.SelectorCSS)
	if err != nil {
		return failure(models.ModeSelector, MsgSelectorNoMatch)
	}
	return success(models.ModeSelector, strings.TrimSpace(text))
}

func extractByMarkers(cfg models.SiteConfig, body string) Outcome {
	if cfg.StartMarker == "" {
		return failure(models.ModeMarkers, MsgEmptyStartMarker)
	}
	start := strings.Index(body, cfg.StartMarker)
	if start < 0 {
		return failure(models.ModeMarkers, MsgStartNotFound)
	}
	start += len(cfg.StartMarker)

	end := len(body)
	if cfg.EndMarker != "" {
		rel := strings.Index(body[start:], cfg.EndMarker)
		if rel < 0 {
			return failure(models.ModeMarkers, MsgEndNotFound)
		}
		end = start + rel
	}
	return success(models.ModeMarkers, strings.TrimSpace(body[start:end]))
}

func extractByRegex(cfg models.SiteConfig, body string) Outcome {
	if cfg.Regex == "" {
		return failure(models.ModeRegex, MsgEmptyRegex)
	}
	pattern, compileErr := CompileRegex(cfg.Regex)
	if compileErr != nil {
		return failure(models.ModeRegex, msgInvalidRegexPrefix+compileErr.Message)
	}
	matched, ok, err := pattern.FirstMatch(body)
	if err != nil {
		return failure(models.ModeRegex, MsgRegexTimeout)
	}
	if !ok {
		return failure(models.ModeRegex, MsgRegexNoMatch)
	}
	return success(models.ModeRegex, strings.TrimSpace(matched))
}
