// Package command authenticates, decodes and applies administrative commands
// addressed to the device, and signs them on the operator side.
package command

import (
	"strings"

	"github.com/aleister1102/webwatch/internal/models"
)

// CommandType is the closed set of recognised command tags.
type CommandType string

const (
	TypeUpsertSite CommandType = "UPSERT_SITE"
	TypeDeleteSite CommandType = "DELETE_SITE"
	TypePauseSite  CommandType = "PAUSE_SITE"
	TypeResumeSite CommandType = "RESUME_SITE"
	TypeCheckNow   CommandType = "CHECK_NOW"
)

// KnownTypes lists every recognised command type.
var KnownTypes = []CommandType{TypeUpsertSite, TypeDeleteSite, TypePauseSite, TypeResumeSite, TypeCheckNow}

// ParseCommandType matches a type name case-insensitively.
func ParseCommandType(raw string) (CommandType, bool) {
	want := strings.ToUpper(strings.TrimSpace(raw))
	for _, t := range KnownTypes {
		if string(t) == want {
			return t, true
		}
	}
	return CommandType(raw), false
}

// Command is a decoded instruction.
type Command interface {
	Type() CommandType
}

// UpsertSite creates or replaces a site configuration.
type UpsertSite struct {
	Site SitePayload
}

// DeleteSite removes every site with ID.
type DeleteSite struct {
	ID string
}

// PauseSite stops scheduled checks of a site.
type PauseSite struct {
	ID string
}

// ResumeSite re-enables scheduled checks of a site.
type ResumeSite struct {
	ID string
}

// CheckNow runs one check cycle immediately.
type CheckNow struct {
	ID string
}

// UnknownCommand carries an unrecognised type tag.
type UnknownCommand struct {
	Name string
}

func (UpsertSite) Type() CommandType       { return TypeUpsertSite }
func (DeleteSite) Type() CommandType       { return TypeDeleteSite }
func (PauseSite) Type() CommandType        { return TypePauseSite }
func (ResumeSite) Type() CommandType       { return TypeResumeSite }
func (CheckNow) Type() CommandType         { return TypeCheckNow }
func (c UnknownCommand) Type() CommandType { return CommandType(c.Name) }

// SitePayload is the wire form of a site in UPSERT_SITE. Field order is the
// order used when signing.
type SitePayload struct {
	ID              string            `json:"id" validate:"required,max=128,siteid"`
	URL             string            `json:"url,omitempty" validate:"required,url"`
	IntervalSeconds uint32            `json:"interval_s,omitempty" validate:"omitempty,min=30,max=86400"`
	Mode            string            `json:"mode,omitempty" validate:"omitempty,oneof=full selector markers regex"`
	SelectorCSS     string            `json:"selector_css,omitempty" validate:"max=1024"`
	StartMarker     string            `json:"start_marker,omitempty" validate:"max=1024"`
	EndMarker       string            `json:"end_marker,omitempty" validate:"max=1024"`
	Regex           string            `json:"regex,omitempty" validate:"max=1024"`
	Headers         map[string]string `json:"headers,omitempty" validate:"omitempty,dive,keys,required,endkeys,required"`
	Paused          *bool             `json:"paused,omitempty"`
}

// IDPayload is the payload of every command that addresses a single site.
type IDPayload struct {
	ID string `json:"id" validate:"required,max=128,siteid"`
}

// ToConfig converts the payload to a site configuration with defaults applied.
func (p SitePayload) ToConfig() models.SiteConfig {
	cfg := models.SiteConfig{
		ID:              p.ID,
		URL:             p.URL,
		IntervalSeconds: p.IntervalSeconds,
		Mode:            models.ExtractionMode(strings.TrimSpace(p.Mode)),
		SelectorCSS:     p.SelectorCSS,
		StartMarker:     p.StartMarker,
		EndMarker:       p.EndMarker,
		Regex:           p.Regex,
		Headers:         p.Headers,
		Paused:          p.Paused != nil && *p.Paused,
	}
	cfg.ApplyDefaults()
	return cfg
}

// SitePayloadFromConfig builds the wire form of cfg.
func SitePayloadFromConfig(cfg models.SiteConfig) SitePayload {
	paused := cfg.Paused
	p := SitePayload{
		ID:              cfg.ID,
		URL:             cfg.URL,
		IntervalSeconds: cfg.IntervalSeconds,
		Mode:            string(cfg.Mode),
		SelectorCSS:     cfg.SelectorCSS,
		StartMarker:     cfg.StartMarker,
		EndMarker:       cfg.EndMarker,
		Regex:           cfg.Regex,
		Paused:          &paused,
	}
	if len(cfg.Headers) > 0 {
		p.Headers = cfg.Headers
	}
	return p
}
