package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
)

const autoCheckoutJob = "attendance_auto_checkout"

// AttendanceJobs closes sessions whose employees stopped reporting activity.
type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
	logger            *slog.Logger
	now               func() time.Time
}

func NewAttendanceJobs(attendanceService attendance.AttendanceService, logger *slog.Logger) *AttendanceJobs {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceJobs{
		attendanceService: attendanceService,
		logger:            logger,
		now:               time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob(autoCheckoutJob, interval, j.AutoCheckout)
}

func (j *AttendanceJobs) AutoCheckout(ctx context.Context) error {
	closed, err := j.attendanceService.AutoCheckout(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("auto checkout: %w", err)
	}
	if closed > 0 {
		j.logger.Info("auto checkout closed attendances", "count", closed)
	}
	return nil
}
