package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/shift"
)

// AttendanceRepo persists attendance rows, one per (user, shift, date).
type AttendanceRepo struct {
	db *sql.DB
}

func NewAttendanceRepo(db *sql.DB) *AttendanceRepo { return &AttendanceRepo{db: db} }

const attendanceColumns = `id, user_id, shift, date, check_in_time, check_out_time, status, reason, created_at, updated_at`

func scanAttendance(s scanner) (model.AttendanceRecord, error) {
	var (
		rec     model.AttendanceRecord
		sh, st  string
		date    time.Time
		in, out sql.NullTime
	)
	if err := s.Scan(&rec.ID, &rec.UserID, &sh, &date, &in, &out, &st, &rec.Reason, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return model.AttendanceRecord{}, err
	}
	rec.Shift = shift.ID(sh)
	rec.Date = date.Format(model.DateLayout)
	rec.CheckInTime = timePtr(in)
	rec.CheckOutTime = timePtr(out)
	rec.Status = model.AttendanceStatus(st)
	return rec, nil
}

func (r *AttendanceRepo) query(ctx context.Context, q string, args ...any) ([]model.AttendanceRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.AttendanceRecord, 0)
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListByUser returns the user's rows dated within [from, to], newest first.
// Empty bounds are open.
func (r *AttendanceRepo) ListByUser(ctx context.Context, userID, from, to string) ([]model.AttendanceRecord, error) {
	q := `SELECT ` + attendanceColumns + ` FROM attendance WHERE user_id = ?`
	args := []any{userID}
	if from != "" {
		q += ` AND date >= ?`
		args = append(args, from)
	}
	if to != "" {
		q += ` AND date <= ?`
		args = append(args, to)
	}
	q += ` ORDER BY date DESC, shift`
	return r.query(ctx, q, args...)
}

// ListByDate returns every row of date.
func (r *AttendanceRepo) ListByDate(ctx context.Context, date string) ([]model.AttendanceRecord, error) {
	return r.query(ctx, `SELECT `+attendanceColumns+` FROM attendance WHERE date = ? ORDER BY user_id, shift`, date)
}

func (r *AttendanceRepo) GetByID(ctx context.Context, id string) (model.AttendanceRecord, error) {
	rec, err := scanAttendance(r.db.QueryRowContext(ctx, `SELECT `+attendanceColumns+` FROM attendance WHERE id = ?`, id))
	return rec, notFound(err)
}

// Create inserts a new row for a slot that must still be empty.  The slot
// is locked first; an existing row or a unique-key hit yields ErrConflict.
func (r *AttendanceRepo) Create(ctx context.Context, rec model.AttendanceRecord) (model.AttendanceRecord, error) {
	if err := rec.Validate(); err != nil {
		return model.AttendanceRecord{}, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var existing string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM attendance WHERE user_id = ? AND shift = ? AND date = ? FOR UPDATE`,
			rec.UserID, string(rec.Shift), rec.Date).Scan(&existing)
		switch {
		case err == nil:
			return ErrConflict
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO attendance (id, user_id, shift, date, check_in_time, check_out_time, status, reason)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.UserID, string(rec.Shift), rec.Date,
			nullTime(rec.CheckInTime), nullTime(rec.CheckOutTime), string(rec.Status), rec.Reason)
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	})
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	return r.GetByID(ctx, rec.ID)
}

// AttendancePatch is a partial update of one row.  Setting CheckInTime
// turns an absent row into a checked-in one; setting CheckOutTime closes an
// open row.
type AttendancePatch struct {
	CheckInTime  *time.Time
	CheckOutTime *time.Time
}

// Update applies p to row id.  Each field is written only while the row is
// still in the state the transition starts from, otherwise ErrConflict.
func (r *AttendanceRepo) Update(ctx context.Context, id string, p AttendancePatch) (model.AttendanceRecord, error) {
	var (
		res sql.Result
		err error
	)
	switch {
	case p.CheckInTime != nil:
		res, err = r.db.ExecContext(ctx,
			`UPDATE attendance SET check_in_time = ?, status = '', reason = ''
			 WHERE id = ? AND check_in_time IS NULL`,
			p.CheckInTime.UTC(), id)
	case p.CheckOutTime != nil:
		res, err = r.db.ExecContext(ctx,
			`UPDATE attendance SET check_out_time = ?, status = ?
			 WHERE id = ? AND check_in_time IS NOT NULL AND check_out_time IS NULL AND check_in_time <= ?`,
			p.CheckOutTime.UTC(), string(model.AttendancePresent), id, p.CheckOutTime.UTC())
	default:
		return r.GetByID(ctx, id)
	}
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.AttendanceRecord{}, err
		}
		return model.AttendanceRecord{}, ErrConflict
	}
	return r.GetByID(ctx, id)
}

// UpsertAbsences writes absence rows keyed by slot.  A slot that already
// carries a check-in keeps it; repeated sweeps rewrite the same rows.  It
// returns how many rows were inserted or changed.
func (r *AttendanceRepo) UpsertAbsences(ctx context.Context, absences []model.AbsenceRecord) (int, error) {
	if len(absences) == 0 {
		return 0, nil
	}
	written := 0
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, a := range absences {
			rec := a.AsAttendance()
			if err := rec.Validate(); err != nil {
				return err
			}
			res, err := tx.ExecContext(ctx,
				`INSERT INTO attendance (id, user_id, shift, date, status, reason)
				 VALUES (?, ?, ?, ?, ?, ?)
				 ON DUPLICATE KEY UPDATE
				   status = IF(check_in_time IS NULL, VALUES(status), status),
				   reason = IF(check_in_time IS NULL, VALUES(reason), reason)`,
				uuid.NewString(), rec.UserID, string(rec.Shift), rec.Date, string(rec.Status), rec.Reason)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n > 0 {
				written++
			}
		}
		return nil
	})
	return written, err
}
