package notification

import (
	"context"
)

// Repository defines the notification repository interface
type Repository interface {
	CreateBatch(ctx context.Context, notifications []Notification) error

	// ListForRecipient returns notifications addressed to the employee or to
	// the role, newest first.
	ListForRecipient(ctx context.Context, employeeID, role string, page, pageSize int) ([]Notification, int, error)
}
