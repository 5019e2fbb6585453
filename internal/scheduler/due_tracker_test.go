package scheduler

import (
	"testing"
	"time"

	"github.com/aleister1102/webwatch/internal/models"
	"github.com/stretchr/testify/assert"
)

func site(id string, interval uint32, paused bool) models.SiteRecord {
	return models.SiteRecord{SiteConfig: models.SiteConfig{ID: id, IntervalSeconds: interval, Paused: paused}}
}

func TestDueTracker_NeverCheckedIsDue(t *testing.T) {
	d := NewDueTracker()
	now := time.Unix(1000, 0)
	records := []models.SiteRecord{site("a", 60, false), site("b", 60, true), site("c", 0, false)}

	assert.Equal(t, []string{"a", "c"}, d.Due(records, now))
}

func TestDueTracker_IntervalElapsed(t *testing.T) {
	d := NewDueTracker()
	start := time.Unix(1000, 0)
	records := []models.SiteRecord{site("a", 60, false), site("b", 120, false)}

	d.MarkChecked("a", start)
	d.MarkChecked("b", start)

	assert.Empty(t, d.Due(records, start.Add(59*time.Second)))
	assert.Equal(t, []string{"a"}, d.Due(records, start.Add(60*time.Second)))
	assert.Equal(t, []string{"a", "b"}, d.Due(records, start.Add(2*time.Minute)))
}

func TestDueTracker_DefaultIntervalWhenUnset(t *testing.T) {
	d := NewDueTracker()
	start := time.Unix(0, 0)
	records := []models.SiteRecord{site("a", 0, false)}
	d.MarkChecked("a", start)

	assert.Empty(t, d.Due(records, start.Add(899*time.Second)))
	assert.Equal(t, []string{"a"}, d.Due(records, start.Add(900*time.Second)))
}

func TestDueTracker_Forget(t *testing.T) {
	d := NewDueTracker()
	now := time.Unix(1000, 0)
	records := []models.SiteRecord{site("a", 60, false)}

	d.MarkChecked("a", now)
	assert.Empty(t, d.Due(records, now))

	d.Forget("a")
	assert.Equal(t, []string{"a"}, d.Due(records, now))
}

func TestDueTracker_NextDue(t *testing.T) {
	d := NewDueTracker()
	now := time.Unix(1000, 0)

	_, ok := d.NextDue([]models.SiteRecord{site("p", 60, true)}, now)
	assert.False(t, ok)

	records := []models.SiteRecord{site("a", 60, false), site("b", 30, false)}
	d.MarkChecked("a", now)
	d.MarkChecked("b", now.Add(-10*time.Second))

	wait, ok := d.NextDue(records, now)
	assert.True(t, ok)
	assert.Equal(t, 20*time.Second, wait)
}
