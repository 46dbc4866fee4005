package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeReaper struct {
	calls  atomic.Int32
	closed int
	err    error
	seen   time.Time
}

func (f *fakeReaper) ReapInactive(ctx context.Context, now time.Time) (int, error) {
	f.calls.Add(1)
	f.seen = now
	return f.closed, f.err
}

type fakePurger struct{ calls atomic.Int32 }

func (f *fakePurger) PurgeExpired() int {
	f.calls.Add(1)
	return 0
}

func TestRunOnce(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		reaper  *fakeReaper
		purger  *fakePurger
		wantLog string
	}{
		{name: "sessions closed", reaper: &fakeReaper{closed: 2}, purger: &fakePurger{}, wantLog: "closed inactive sessions"},
		{name: "nothing to close", reaper: &fakeReaper{}, purger: &fakePurger{}},
		{name: "store error", reaper: &fakeReaper{err: errors.New("database is locked")}, purger: &fakePurger{}, wantLog: "reaping inactive sessions failed"},
		{name: "no purger", reaper: &fakeReaper{closed: 1}, wantLog: "closed inactive sessions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)
			var purger CachePurger
			if tt.purger != nil {
				purger = tt.purger
			}
			s := New(tt.reaper, purger, time.Minute, zap.New(core))
			s.now = func() time.Time { return now }

			s.runOnce()

			assert.Equal(t, int32(1), tt.reaper.calls.Load())
			assert.True(t, tt.reaper.seen.Equal(now))
			if tt.purger != nil {
				assert.Equal(t, int32(1), tt.purger.calls.Load())
			}
			if tt.wantLog == "" {
				assert.Zero(t, logs.Len())
			} else {
				assert.Equal(t, 1, logs.FilterMessage(tt.wantLog).Len())
			}
		})
	}
}

func TestStartRunsImmediately(t *testing.T) {
	reaper := &fakeReaper{}
	purger := &fakePurger{}
	s := New(reaper, purger, time.Hour, zap.NewNop())

	assert.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return reaper.calls.Load() >= 1 && purger.calls.Load() >= 1 },
		2*time.Second, 10*time.Millisecond)
}
