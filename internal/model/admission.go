package model

import (
	"errors"
	"time"

	"github.com/iliyamo/library-seat-booking/internal/shift"
)

// AdmissionPaymentStatus tracks whether the admission fee was paid.
type AdmissionPaymentStatus string

const (
	AdmissionPending AdmissionPaymentStatus = "pending"
	AdmissionPaid    AdmissionPaymentStatus = "paid"
)

// ValidDuration reports whether months is an offered admission length.
func ValidDuration(months int) bool {
	return months == 1 || months == 3 || months == 6
}

// Admission is a student's enrollment for a set of shifts.  StartDate and
// EndDate are set when the admin approves the payment.
type Admission struct {
	ID              string                 `json:"id"`
	UserID          string                 `json:"user_id"`
	Name            string                 `json:"name"`
	Age             int                    `json:"age"`
	ContactNumber   string                 `json:"contact_number"`
	FullAddress     string                 `json:"full_address"`
	Email           string                 `json:"email"`
	CourseName      string                 `json:"course_name"`
	FatherName      string                 `json:"father_name"`
	FatherContact   string                 `json:"father_contact"`
	Duration        int                    `json:"duration"`
	SelectedShifts  []shift.ID             `json:"selected_shifts"`
	RegistrationFee int                    `json:"registration_fee"`
	ShiftFee        int                    `json:"shift_fee"`
	TotalAmount     int                    `json:"total_amount"`
	PaymentStatus   AdmissionPaymentStatus `json:"payment_status"`
	PaymentDate     *time.Time             `json:"payment_date,omitempty"`
	StartDate       *time.Time             `json:"start_date,omitempty"`
	EndDate         *time.Time             `json:"end_date,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// IsPaid reports whether the admission is active for attendance and sweeps.
func (a Admission) IsPaid() bool { return a.PaymentStatus == AdmissionPaid }

// Covers reports whether id is one of the selected shifts.
func (a Admission) Covers(id shift.ID) bool {
	for _, s := range a.SelectedShifts {
		if s == id {
			return true
		}
	}
	return false
}

// Validate checks the admission before it is written.
func (a Admission) Validate() error {
	if a.UserID == "" {
		return errors.New("admission: user id required")
	}
	if len(a.SelectedShifts) == 0 {
		return errors.New("admission: at least one shift required")
	}
	for _, s := range a.SelectedShifts {
		if !shift.Valid(s) {
			return shift.ErrInvalidShift
		}
	}
	if !ValidDuration(a.Duration) {
		return errors.New("admission: duration must be 1, 3 or 6 months")
	}
	return nil
}

// Activate returns a copy marked paid from at for months months.  A
// non-positive months falls back to the admission's own duration.
func (a Admission) Activate(at time.Time, months int) Admission {
	if months <= 0 {
		months = a.Duration
	}
	start := at
	end := at.AddDate(0, months, 0)
	a.PaymentStatus = AdmissionPaid
	a.PaymentDate = &start
	a.StartDate = &start
	a.EndDate = &end
	return a
}
