package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/library-seat-booking/internal/model"
)

// PaymentRepo persists payments and applies admin decisions.
type PaymentRepo struct {
	db *sql.DB
}

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, user_id, amount, method, status, duration_months, receipt_number,
	booking_id, admission_id, approved_by, approved_at, payment_date, created_at, updated_at`

func scanPayment(s scanner) (model.Payment, error) {
	var (
		p                                  model.Payment
		method, status                     string
		bookingID, admissionID, approvedBy sql.NullString
		approvedAt                         sql.NullTime
	)
	err := s.Scan(&p.ID, &p.UserID, &p.Amount, &method, &status, &p.DurationMonths, &p.ReceiptNumber,
		&bookingID, &admissionID, &approvedBy, &approvedAt, &p.PaymentDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Payment{}, err
	}
	p.Method = model.PaymentMethod(method)
	p.Status = model.PaymentStatus(status)
	p.BookingID = strPtr(bookingID)
	p.AdmissionID = strPtr(admissionID)
	p.ApprovedBy = strPtr(approvedBy)
	p.ApprovedAt = timePtr(approvedAt)
	return p, nil
}

func (r *PaymentRepo) query(ctx context.Context, q string, args ...any) ([]model.Payment, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create stores a pending payment.
func (r *PaymentRepo) Create(ctx context.Context, p model.Payment) (model.Payment, error) {
	if err := p.Validate(); err != nil {
		return model.Payment{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.PaymentDate.IsZero() {
		p.PaymentDate = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (id, user_id, amount, method, status, duration_months, receipt_number, booking_id, admission_id, payment_date)
		 VALUES (?, ?, ?, ?, 'pending', ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Amount, string(p.Method), p.DurationMonths, p.ReceiptNumber,
		nullString(p.BookingID), nullString(p.AdmissionID), p.PaymentDate.UTC())
	if isDuplicateKey(err) {
		return model.Payment{}, ErrConflict
	}
	if err != nil {
		return model.Payment{}, err
	}
	return r.GetByID(ctx, p.ID)
}

func (r *PaymentRepo) GetByID(ctx context.Context, id string) (model.Payment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id))
	return p, notFound(err)
}

// List returns payments with status, all when status is empty, newest first.
func (r *PaymentRepo) List(ctx context.Context, status model.PaymentStatus) ([]model.Payment, error) {
	if status != "" {
		return r.query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE status = ? ORDER BY created_at DESC`, string(status))
	}
	return r.query(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY created_at DESC`)
}

func (r *PaymentRepo) ListByUser(ctx context.Context, userID string) ([]model.Payment, error) {
	return r.query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

func (r *PaymentRepo) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments WHERE status = 'pending'`).Scan(&n)
	return n, err
}

// PaymentDecision is an admin approval or rejection of a pending payment.
type PaymentDecision struct {
	PaymentID string
	AdminID   string
	Approve   bool
	At        time.Time
}

// DecisionResult reports what a decision changed.
type DecisionResult struct {
	Payment   model.Payment    `json:"payment"`
	Admission *model.Admission `json:"admission,omitempty"`
	BookingID string           `json:"booking_id,omitempty"`
}

// Decide applies d in one transaction: the payment must still be pending
// (ErrConflict otherwise).  Approval books the paid seat or activates the
// paid admission; rejection deletes the booking and leaves the admission
// pending.  An admin log row is written either way.
func (r *PaymentRepo) Decide(ctx context.Context, d PaymentDecision) (DecisionResult, error) {
	var out DecisionResult
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		p, err := scanPayment(tx.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ? FOR UPDATE`, d.PaymentID))
		if err != nil {
			return notFound(err)
		}
		if p.Status != model.PaymentPending {
			return ErrConflict
		}

		status := model.PaymentRejected
		action := "reject_cash_payment"
		if d.Approve {
			status = model.PaymentApproved
			action = "approve_cash_payment"
		}
		at := d.At.UTC()
		if _, err := tx.ExecContext(ctx,
			`UPDATE payments SET status = ?, approved_by = ?, approved_at = ? WHERE id = ?`,
			string(status), d.AdminID, at, p.ID); err != nil {
			return err
		}
		p.Status = status
		admin := d.AdminID
		p.ApprovedBy = &admin
		p.ApprovedAt = &at

		switch {
		case p.BookingID != nil:
			out.BookingID = *p.BookingID
			if d.Approve {
				err = setBookingStatusTx(ctx, tx, *p.BookingID, model.BookingBooked)
			} else if err = deleteBookingTx(ctx, tx, *p.BookingID); errors.Is(err, ErrNotFound) {
				err = nil
			}
			if err != nil {
				return err
			}
		case p.AdmissionID != nil:
			a, err := getAdmissionForUpdate(ctx, tx, *p.AdmissionID)
			if err != nil {
				return err
			}
			if d.Approve {
				a = a.Activate(at, p.DurationMonths)
				if err := markAdmissionPaidTx(ctx, tx, a); err != nil {
					return err
				}
			}
			out.Admission = &a
		}

		target := p.UserID
		if err := insertAdminLog(ctx, tx, model.AdminLog{
			AdminID:      d.AdminID,
			Action:       action,
			TargetUserID: &target,
			Details: map[string]any{
				"paymentId":   p.ID,
				"amount":      p.Amount,
				"paymentType": p.Kind(),
			},
			CreatedAt: at,
		}); err != nil {
			return err
		}
		out.Payment = p
		return nil
	})
	return out, err
}
