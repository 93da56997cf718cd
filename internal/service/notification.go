package service

import (
	"context"
	"strings"

	"github.com/iliyamo/library-seat-booking/internal/model"
)

// NotificationService sends and lists notifications.
type NotificationService struct {
	d Deps
}

func NewNotificationService(d Deps) *NotificationService {
	return &NotificationService{d: d.withDefaults()}
}

// NotificationInput is an admin message.  An empty UserID broadcasts to
// every student.
type NotificationInput struct {
	UserID string
	Title  string
	Body   string
	Type   string
}

func (s *NotificationService) Send(ctx context.Context, adminID string, in NotificationInput) (model.Notification, error) {
	typ := model.NotificationType(strings.ToLower(in.Type))
	switch typ {
	case "":
		typ = model.NotifyInfo
	case model.NotifyInfo, model.NotifyWarning, model.NotifySuccess, model.NotifyError:
	default:
		return model.Notification{}, ErrInvalidStatus
	}
	n := model.Notification{Title: in.Title, Body: in.Body, Type: typ, CreatedBy: ptr(adminID)}
	if in.UserID != "" {
		if _, err := s.d.Users.GetByID(ctx, in.UserID); err != nil {
			return model.Notification{}, err
		}
		n.UserID = ptr(in.UserID)
	}
	return s.d.Notifications.Create(ctx, n)
}

func (s *NotificationService) List(ctx context.Context, userID string) ([]model.Notification, error) {
	return s.d.Notifications.ListForUser(ctx, userID, 50)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.d.Notifications.MarkRead(ctx, id, userID)
}
