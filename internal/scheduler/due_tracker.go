// Package scheduler decides which sites are due for a check.
package scheduler

import (
	"time"

	"github.com/aleister1102/webwatch/internal/models"
)

// DueTracker remembers when each site was last checked and decides which
// sites are due. It is not safe for concurrent use.
type DueTracker struct {
	lastChecked map[string]time.Time
}

// NewDueTracker creates an empty tracker. Every site starts out due.
func NewDueTracker() *DueTracker {
	return &DueTracker{lastChecked: make(map[string]time.Time)}
}

// Due returns the ids of unpaused sites whose interval has elapsed, in
// collection order.
func (d *DueTracker) Due(records []models.SiteRecord, now time.Time) []string {
	var due []string
	for _, rec := range records {
		if rec.Paused {
			continue
		}
		last, seen := d.lastChecked[rec.ID]
		if !seen || now.Sub(last) >= rec.Interval() {
			due = append(due, rec.ID)
		}
	}
	return due
}

// MarkChecked records a completed check cycle.
func (d *DueTracker) MarkChecked(id string, at time.Time) {
	d.lastChecked[id] = at
}

// Forget drops a deleted site so a later site with the same id starts due.
func (d *DueTracker) Forget(id string) {
	delete(d.lastChecked, id)
}

// NextDue returns how long until the earliest unpaused site is due, and false
// when no site is scheduled.
func (d *DueTracker) NextDue(records []models.SiteRecord, now time.Time) (time.Duration, bool) {
	var (
		best  time.Duration
		found bool
	)
	for _, rec := range records {
		if rec.Paused {
			continue
		}
		wait := time.Duration(0)
		if last, seen := d.lastChecked[rec.ID]; seen {
			wait = last.Add(rec.Interval()).Sub(now)
			if wait < 0 {
				wait = 0
			}
		}
		if !found || wait < best {
			best, found = wait, true
		}
	}
	return best, found
}
