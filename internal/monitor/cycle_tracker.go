package monitor

import (
	"fmt"
	"time"

	"github.com/aleister1102/webwatch/internal/models"
)

// CycleTracker counts what happened during one scheduler tick.
type CycleTracker struct {
	currentCycleID string
	currentCycle   int
	kinds          map[models.EventKind]int
	changedSites   []string
}

// NewCycleTracker creates a new CycleTracker
func NewCycleTracker() *CycleTracker {
	return &CycleTracker{kinds: make(map[models.EventKind]int)}
}

// StartCycle begins a new cycle, increments the counter and sets a new ID.
func (ct *CycleTracker) StartCycle(now time.Time) {
	ct.currentCycle++
	ct.currentCycleID = fmt.Sprintf("cycle-%s-%d", now.Format("20060102-150405"), ct.currentCycle)
	ct.kinds = make(map[models.EventKind]int)
	ct.changedSites = nil
}

// Add records the event kind reported for a site.
func (ct *CycleTracker) Add(siteID string, kind models.EventKind) {
	ct.kinds[kind]++
	if kind == models.EventChangeDetected {
		ct.changedSites = append(ct.changedSites, siteID)
	}
}

// CurrentCycleID returns the current cycle ID
func (ct *CycleTracker) CurrentCycleID() string {
	return ct.currentCycleID
}

// Checked returns the number of sites checked in the current cycle.
func (ct *CycleTracker) Checked() int {
	total := 0
	for _, n := range ct.kinds {
		total += n
	}
	return total
}

// Count returns how many checks in the current cycle reported kind.
func (ct *CycleTracker) Count(kind models.EventKind) int {
	return ct.kinds[kind]
}

// ChangedSites returns the ids that changed in the current cycle, in check order.
func (ct *CycleTracker) ChangedSites() []string {
	out := make([]string, len(ct.changedSites))
	copy(out, ct.changedSites)
	return out
}
