package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/library-seat-booking/internal/model"
)

// UserRepo persists accounts.
type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, email, password_hash, full_name, mobile_number, role, approval_status, approved_by, approved_at, created_at, updated_at`

func scanUser(s scanner) (model.User, error) {
	var (
		u          model.User
		status     string
		approvedBy sql.NullString
		approvedAt sql.NullTime
	)
	err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.MobileNumber, &u.Role, &status,
		&approvedBy, &approvedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.ApprovalStatus = model.ApprovalStatus(status)
	u.ApprovedBy = strPtr(approvedBy)
	u.ApprovedAt = timePtr(approvedAt)
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts u, whose PasswordHash is already set, and returns the
// stored row.
func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = model.RoleStudent
	}
	if u.ApprovalStatus == "" {
		u.ApprovalStatus = model.ApprovalPending
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, full_name, mobile_number, role, approval_status) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, normalizeEmail(u.Email), u.PasswordHash, u.FullName, u.MobileNumber, u.Role, string(u.ApprovalStatus))
	if isDuplicateKey(err) {
		return model.User{}, ErrEmailExists
	}
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, u.ID)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, normalizeEmail(email)))
	return u, notFound(err)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id))
	return u, notFound(err)
}

// ListStudents returns students with status, or all students when status
// is empty.
func (r *UserRepo) ListStudents(ctx context.Context, status model.ApprovalStatus) ([]model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE role = 'student'`
	args := []any{}
	if status != "" {
		q += ` AND approval_status = ?`
		args = append(args, string(status))
	}
	rows, err := r.db.QueryContext(ctx, q+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// SetApproval records the admin decision on a student and the matching
// admin log in one transaction.
func (r *UserRepo) SetApproval(ctx context.Context, userID string, status model.ApprovalStatus, adminID string, at time.Time) (model.User, error) {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE users SET approval_status = ?, approved_by = ?, approved_at = ? WHERE id = ? AND role = 'student'`,
			string(status), adminID, at.UTC(), userID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			var exists int
			if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id = ? AND role = 'student'`, userID).Scan(&exists); err != nil {
				return err
			}
			if exists == 0 {
				return ErrNotFound
			}
		}
		target := userID
		return insertAdminLog(ctx, tx, model.AdminLog{
			AdminID:      adminID,
			Action:       string(status) + "_student",
			TargetUserID: &target,
			Details:      map[string]any{"approvalStatus": string(status)},
			CreatedAt:    at,
		})
	})
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, userID)
}

// StudentCounts reports all students and approved ones.
func (r *UserRepo) StudentCounts(ctx context.Context) (total, approved int, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(approval_status = 'approved'), 0) FROM users WHERE role = 'student'`).Scan(&total, &approved)
	return total, approved, err
}
