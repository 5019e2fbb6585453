package messaging

import "time"

// DefaultReconnectInterval is the minimum spacing between connection attempts.
const DefaultReconnectInterval = 2 * time.Second

// Reconnector rate-limits connection attempts.
type Reconnector struct {
	interval  time.Duration
	last      time.Time
	attempted bool
}

// NewReconnector creates a Reconnector. A non-positive interval uses the default.
func NewReconnector(interval time.Duration) *Reconnector {
	if interval <= 0 {
		interval = DefaultReconnectInterval
	}
	return &Reconnector{interval: interval}
}

// Allow reports whether an attempt may be made at now and, if so, records it.
func (r *Reconnector) Allow(now time.Time) bool {
	if r.attempted && now.Sub(r.last) < r.interval {
		return false
	}
	r.attempted = true
	r.last = now
	return true
}
