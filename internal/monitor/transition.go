package monitor

import (
	"github.com/aleister1102/webwatch/internal/extractor"
	"github.com/aleister1102/webwatch/internal/models"
	"github.com/aleister1102/webwatch/internal/security"
)

// FetchOutcome is what the fetch step hands to Transition.
type FetchOutcome struct {
	OK     bool
	Status int
	Body   string
	// Size is the raw body length. Body may be a truncated prefix of it.
	Size int
	Err  error
}

// Transition computes the next observation state of a site and the kind of
// event to report. ext is ignored when the fetch failed.
func Transition(prev models.SiteState, fetch FetchOutcome, ext *extractor.Outcome) (models.SiteState, models.EventKind) {
	next := prev
	next.LastStatus = fetch.Status

	if !fetch.OK {
		next.LastSize = 0
		return next, models.EventError
	}

	next.LastSize = max(fetch.Size, len(fetch.Body))
	if ext == nil || !ext.OK {
		return next, models.EventError
	}

	hash := security.SHA256Hex([]byte(ext.Content))
	next.LastChanged = hash != prev.LastHash
	next.LastHash = hash
	if next.LastChanged {
		return next, models.EventChangeDetected
	}
	return next, models.EventStatus
}
