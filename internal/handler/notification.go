package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-seat-booking/internal/middleware"
	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/service"
)

// NotificationAPI is satisfied by *service.NotificationService.
type NotificationAPI interface {
	Send(ctx context.Context, adminID string, in service.NotificationInput) (model.Notification, error)
	List(ctx context.Context, userID string) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type NotificationHandler struct {
	Notifications NotificationAPI
}

func NewNotificationHandler(n NotificationAPI) *NotificationHandler {
	return &NotificationHandler{Notifications: n}
}

type notificationReq struct {
	UserID string `json:"user_id" validate:"omitempty,max=36"`
	Title  string `json:"title" validate:"required,max=200"`
	Body   string `json:"body" validate:"required"`
	Type   string `json:"type" validate:"omitempty,oneof=info warning success error"`
}

// Send handles POST /v1/admin/notifications.  Without user_id the message
// goes to every student.
func (h *NotificationHandler) Send(c echo.Context) error {
	var req notificationReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	n, err := h.Notifications.Send(c.Request().Context(), middleware.UserID(c), service.NotificationInput{
		UserID: req.UserID,
		Title:  req.Title,
		Body:   req.Body,
		Type:   req.Type,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, n)
}

func (h *NotificationHandler) List(c echo.Context) error {
	list, err := h.Notifications.List(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	if err := h.Notifications.MarkRead(c.Request().Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
