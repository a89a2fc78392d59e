package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeRequestCreated NotificationType = "request_created"
	TypeLevelAdvanced  NotificationType = "level_advanced"
	TypeApproved       NotificationType = "approved"
	TypeRejected       NotificationType = "rejected"
	TypeCancelled      NotificationType = "cancelled"
	TypeAutoCheckout   NotificationType = "auto_checkout"
)

// Notification is addressed to an employee, to every holder of a role, or both.
type Notification struct {
	ID            string
	RecipientID   *string
	RecipientRole *string
	Type          NotificationType
	Title         string
	Message       string
	Data          map[string]interface{}
	CreatedAt     time.Time
}
