package notification

import (
	"time"
)

// ============= Request DTOs =============

// CreateNotificationRequest represents a request to create a notification
type CreateNotificationRequest struct {
	RecipientID   *string
	RecipientRole *string
	Type          NotificationType
	Title         string
	Message       string
	Data          map[string]interface{}
}

// ToEmployee addresses a notification to one employee.
func ToEmployee(employeeID string, t NotificationType, title, message string, data map[string]interface{}) CreateNotificationRequest {
	return CreateNotificationRequest{RecipientID: &employeeID, Type: t, Title: title, Message: message, Data: data}
}

// ToRole addresses a notification to every holder of a role.
func ToRole(role string, t NotificationType, title, message string, data map[string]interface{}) CreateNotificationRequest {
	return CreateNotificationRequest{RecipientRole: &role, Type: t, Title: title, Message: message, Data: data}
}

// ============= Response DTOs =============

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID            string                 `json:"id"`
	RecipientID   *string                `json:"recipient_id,omitempty"`
	RecipientRole *string                `json:"recipient_role,omitempty"`
	Type          NotificationType       `json:"type"`
	Title         string                 `json:"title"`
	Message       string                 `json:"message"`
	Data          map[string]interface{} `json:"data,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// NotificationListResponse represents a paginated list of notifications
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int                    `json:"total"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"page_size"`
}

// ============= SSE Event =============

// SSEEvent represents a Server-Sent Event
type SSEEvent struct {
	Event string               `json:"event"`
	Data  NotificationResponse `json:"data"`
}

// StreamTokenResponse carries a short-lived token for the event stream.
type StreamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
