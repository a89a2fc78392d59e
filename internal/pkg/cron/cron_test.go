package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubAttendanceService struct {
	attendance.AttendanceService
	calls  []time.Time
	closed int
	err    error
}

func (s *stubAttendanceService) AutoCheckout(ctx context.Context, now time.Time) (int, error) {
	s.calls = append(s.calls, now)
	return s.closed, s.err
}

func TestAttendanceJobs_AutoCheckoutPassesClock(t *testing.T) {
	svc := &stubAttendanceService{closed: 2}
	jobs := NewAttendanceJobs(svc, quietLogger())
	fixed := time.Date(2026, 3, 2, 20, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	jobs.now = func() time.Time { return fixed }

	require.NoError(t, jobs.AutoCheckout(context.Background()))
	require.Len(t, svc.calls, 1)
	assert.True(t, svc.calls[0].Equal(fixed))
	assert.Equal(t, time.UTC, svc.calls[0].Location())
}

func TestAttendanceJobs_AutoCheckoutWrapsError(t *testing.T) {
	boom := errors.New("boom")
	jobs := NewAttendanceJobs(&stubAttendanceService{err: boom}, quietLogger())

	err := jobs.AutoCheckout(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestScheduler_RunOnceJoinsErrorsAndRecovers(t *testing.T) {
	s := NewScheduler(quietLogger())
	var ran int32
	s.AddJob("ok", time.Hour, func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})
	s.AddJob("fails", time.Hour, func(ctx context.Context) error {
		return errors.New("failed")
	})
	s.AddJob("panics", time.Hour, func(ctx context.Context) error {
		panic("oops")
	})

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
	assert.Contains(t, err.Error(), "panicked")
	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
}

func TestScheduler_TicksUntilStopped(t *testing.T) {
	s := NewScheduler(quietLogger())
	var ran int32
	s.AddJob("tick", 5*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})

	s.Start()
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&ran) >= 2 }, time.Second, time.Millisecond)
	s.Stop()

	after := atomic.LoadInt32(&ran)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&ran))
}
