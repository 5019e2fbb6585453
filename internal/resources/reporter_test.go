package resources

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	usage := Snapshot(0)

	assert.Positive(t, usage.Goroutines)
	assert.GreaterOrEqual(t, usage.SysMB, usage.AllocMB)
	assert.Zero(t, usage.CPUUsagePercent)
}

func TestReporter_ReportOnceWarnsAndForwards(t *testing.T) {
	var buf bytes.Buffer
	var got []Usage

	r := NewReporter(ReporterConfig{Interval: time.Minute, SystemMemWarnPercent: 80}, zerolog.New(&buf)).
		WithSink(func(u Usage) { got = append(got, u) })
	r.snapshot = func(time.Duration) Usage {
		return Usage{Goroutines: 3, SystemMemUsedPercent: 95}
	}

	usage := r.ReportOnce()

	assert.Equal(t, 3, usage.Goroutines)
	require.Len(t, got, 1)
	assert.Contains(t, buf.String(), "System memory usage exceeded threshold")
	assert.Contains(t, buf.String(), "Current resource usage")
}

func TestReporter_RunStopsOnCancel(t *testing.T) {
	var mu sync.Mutex
	calls := 0

	r := NewReporter(ReporterConfig{Interval: 10 * time.Millisecond}, zerolog.Nop()).
		WithSink(func(Usage) {
			mu.Lock()
			calls++
			mu.Unlock()
		})
	r.snapshot = func(time.Duration) Usage { return Usage{} }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reporter did not stop")
	}
}
