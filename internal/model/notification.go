package model

import "time"

// NotificationType drives how clients render a notification.
type NotificationType string

const (
	NotifyInfo    NotificationType = "info"
	NotifyWarning NotificationType = "warning"
	NotifySuccess NotificationType = "success"
	NotifyError   NotificationType = "error"
)

// Notification is a message for one user, or for every student when
// UserID is nil.
type Notification struct {
	ID        string           `json:"id"`
	UserID    *string          `json:"user_id,omitempty"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"is_read"`
	CreatedBy *string          `json:"created_by,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// AdminLog records an admin action for auditing.
type AdminLog struct {
	ID           string         `json:"id"`
	AdminID      string         `json:"admin_id"`
	Action       string         `json:"action"`
	TargetUserID *string        `json:"target_user_id,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
