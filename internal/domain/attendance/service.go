package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	CheckIn(ctx context.Context, actor user.Actor, req CheckInRequest) (AttendanceResponse, error)
	CheckOut(ctx context.Context, actor user.Actor, req CheckOutRequest) (AttendanceResponse, error)

	// Ping refreshes the activity timestamp of the caller's open record.
	Ping(ctx context.Context, actor user.Actor) (AttendanceResponse, error)

	// AutoCheckout closes inactive open records and returns how many it closed.
	AutoCheckout(ctx context.Context, now time.Time) (int, error)

	GetMyAttendance(ctx context.Context, actor user.Actor, filter MyAttendanceFilter) (ListAttendanceResponse, error)
	ListAttendance(ctx context.Context, actor user.Actor, filter AttendanceFilter) (ListAttendanceResponse, error)
	GetAttendance(ctx context.Context, actor user.Actor, id string) (AttendanceResponse, error)
	Statistics(ctx context.Context, actor user.Actor, filter StatisticsFilter) (StatisticsResponse, error)
}
