package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/shift"
)

// AdmissionRepo persists admissions.  selected_shifts is stored as a
// comma separated list.
type AdmissionRepo struct {
	db *sql.DB
}

func NewAdmissionRepo(db *sql.DB) *AdmissionRepo { return &AdmissionRepo{db: db} }

const admissionColumns = `id, user_id, name, age, contact_number, full_address, email, course_name,
	father_name, father_contact, duration, selected_shifts, registration_fee, shift_fee, total_amount,
	payment_status, payment_date, start_date, end_date, created_at, updated_at`

func scanAdmission(s scanner) (model.Admission, error) {
	var (
		a                  model.Admission
		shifts, status     string
		paidAt, start, end sql.NullTime
	)
	err := s.Scan(&a.ID, &a.UserID, &a.Name, &a.Age, &a.ContactNumber, &a.FullAddress, &a.Email, &a.CourseName,
		&a.FatherName, &a.FatherContact, &a.Duration, &shifts, &a.RegistrationFee, &a.ShiftFee, &a.TotalAmount,
		&status, &paidAt, &start, &end, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return model.Admission{}, err
	}
	if a.SelectedShifts, err = shift.ParseList(shifts); err != nil {
		return model.Admission{}, fmt.Errorf("admission %s: %w", a.ID, err)
	}
	a.PaymentStatus = model.AdmissionPaymentStatus(status)
	a.PaymentDate = timePtr(paidAt)
	a.StartDate = timePtr(start)
	a.EndDate = timePtr(end)
	return a, nil
}

func (r *AdmissionRepo) query(ctx context.Context, q string, args ...any) ([]model.Admission, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Admission, 0)
	for rows.Next() {
		a, err := scanAdmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AdmissionRepo) Create(ctx context.Context, a model.Admission) (model.Admission, error) {
	if err := a.Validate(); err != nil {
		return model.Admission{}, err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.PaymentStatus == "" {
		a.PaymentStatus = model.AdmissionPending
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admissions (id, user_id, name, age, contact_number, full_address, email, course_name,
		   father_name, father_contact, duration, selected_shifts, registration_fee, shift_fee, total_amount, payment_status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Name, a.Age, a.ContactNumber, a.FullAddress, a.Email, a.CourseName,
		a.FatherName, a.FatherContact, a.Duration, shift.Join(a.SelectedShifts),
		a.RegistrationFee, a.ShiftFee, a.TotalAmount, string(a.PaymentStatus))
	if err != nil {
		return model.Admission{}, err
	}
	return r.GetByID(ctx, a.ID)
}

func (r *AdmissionRepo) GetByID(ctx context.Context, id string) (model.Admission, error) {
	a, err := scanAdmission(r.db.QueryRowContext(ctx, `SELECT `+admissionColumns+` FROM admissions WHERE id = ?`, id))
	return a, notFound(err)
}

// ListByUser returns the user's admissions, newest first.
func (r *AdmissionRepo) ListByUser(ctx context.Context, userID string) ([]model.Admission, error) {
	return r.query(ctx, `SELECT `+admissionColumns+` FROM admissions WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

// AdmissionFilter narrows List.  Zero values match everything.
type AdmissionFilter struct {
	PaymentStatus model.AdmissionPaymentStatus
}

// List returns admissions matching f.
func (r *AdmissionRepo) List(ctx context.Context, f AdmissionFilter) ([]model.Admission, error) {
	if f.PaymentStatus != "" {
		return r.query(ctx, `SELECT `+admissionColumns+` FROM admissions WHERE payment_status = ? ORDER BY user_id, created_at`,
			string(f.PaymentStatus))
	}
	return r.query(ctx, `SELECT `+admissionColumns+` FROM admissions ORDER BY user_id, created_at`)
}

func getAdmissionForUpdate(ctx context.Context, tx *sql.Tx, id string) (model.Admission, error) {
	a, err := scanAdmission(tx.QueryRowContext(ctx, `SELECT `+admissionColumns+` FROM admissions WHERE id = ? FOR UPDATE`, id))
	return a, notFound(err)
}

func markAdmissionPaidTx(ctx context.Context, tx *sql.Tx, a model.Admission) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE admissions SET payment_status = 'paid', payment_date = ?, start_date = ?, end_date = ? WHERE id = ?`,
		nullTime(a.PaymentDate), nullTime(a.StartDate), nullTime(a.EndDate), a.ID)
	return err
}
