package notification

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

// Dispatcher accepts notifications without blocking the caller. Delivery
// failures are logged, never returned.
type Dispatcher interface {
	Dispatch(ctx context.Context, req CreateNotificationRequest)
}

// Service defines the notification service interface
type Service interface {
	Dispatcher

	GetNotifications(ctx context.Context, actor user.Actor, page, pageSize int) (NotificationListResponse, error)

	// Subscribe streams notifications for the actor's employee id and role.
	Subscribe(ctx context.Context, actor user.Actor) (<-chan SSEEvent, func())

	// Stop drains the queue and waits for workers to exit.
	Stop()
}
