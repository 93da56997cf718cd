package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/library-seat-booking/internal/model"
)

// NotificationRepo persists notifications.  A NULL user_id addresses every
// student.
type NotificationRepo struct {
	db *sql.DB
}

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

func (r *NotificationRepo) Create(ctx context.Context, n model.Notification) (model.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Type == "" {
		n.Type = model.NotifyInfo
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, title, body, type, created_by) VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, nullString(n.UserID), n.Title, n.Body, string(n.Type), nullString(n.CreatedBy))
	if err != nil {
		return model.Notification{}, err
	}
	return r.getByID(ctx, n.ID)
}

func scanNotification(s scanner) (model.Notification, error) {
	var (
		n                 model.Notification
		userID, createdBy sql.NullString
		typ               string
	)
	if err := s.Scan(&n.ID, &userID, &n.Title, &n.Body, &typ, &n.IsRead, &createdBy, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return model.Notification{}, err
	}
	n.UserID = strPtr(userID)
	n.CreatedBy = strPtr(createdBy)
	n.Type = model.NotificationType(typ)
	return n, nil
}

const notificationColumns = `id, user_id, title, body, type, is_read, created_by, created_at, updated_at`

func (r *NotificationRepo) getByID(ctx context.Context, id string) (model.Notification, error) {
	n, err := scanNotification(r.db.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id))
	return n, notFound(err)
}

// ListForUser returns the user's own notifications and broadcasts, newest
// first.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE user_id = ? OR user_id IS NULL ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags one of the user's own notifications as read.  Broadcasts
// and other users' notifications report ErrNotFound.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE id = ? AND user_id = ?`, id, userID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// AdminLogRepo reads the admin audit trail.  Entries are written inside
// the transactions of the actions they record.
type AdminLogRepo struct {
	db *sql.DB
}

func NewAdminLogRepo(db *sql.DB) *AdminLogRepo { return &AdminLogRepo{db: db} }

// List returns the latest entries first.
func (r *AdminLogRepo) List(ctx context.Context, limit int) ([]model.AdminLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, admin_id, action, target_user_id, details, created_at FROM admin_logs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.AdminLog, 0)
	for rows.Next() {
		var (
			l       model.AdminLog
			target  sql.NullString
			details []byte
		)
		if err := rows.Scan(&l.ID, &l.AdminID, &l.Action, &target, &details, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.TargetUserID = strPtr(target)
		if len(details) > 0 {
			if err := json.Unmarshal(details, &l.Details); err != nil {
				return nil, err
			}
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func insertAdminLog(ctx context.Context, q querier, l model.AdminLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	var details any
	if l.Details != nil {
		b, err := json.Marshal(l.Details)
		if err != nil {
			return err
		}
		details = b
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO admin_logs (id, admin_id, action, target_user_id, details, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		l.ID, l.AdminID, l.Action, nullString(l.TargetUserID), details, l.CreatedAt.UTC())
	return err
}
