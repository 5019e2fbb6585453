package logger

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// levelFilter drops entries below a level that can change while the
// process runs.
type levelFilter struct {
	next  zerolog.LevelWriter
	level atomic.Int32
}

func newLevelFilter(next zerolog.LevelWriter, level zerolog.Level) *levelFilter {
	f := &levelFilter{next: next}
	f.set(level)
	return f
}

func (f *levelFilter) set(level zerolog.Level) {
	f.level.Store(int32(level))
}

func (f *levelFilter) get() zerolog.Level {
	return zerolog.Level(f.level.Load())
}

func (f *levelFilter) Write(p []byte) (int, error) {
	return f.next.Write(p)
}

func (f *levelFilter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level != zerolog.NoLevel && level < f.get() {
		return len(p), nil
	}
	return f.next.WriteLevel(level, p)
}
