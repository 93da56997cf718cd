package model

import (
	"errors"
	"time"
)

// PaymentStatus is the admin decision state of a payment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
)

// PaymentMethod is how the student paid.
type PaymentMethod string

const (
	MethodUPI  PaymentMethod = "upi"
	MethodCash PaymentMethod = "cash"
	MethodQR   PaymentMethod = "qr"
)

// Payment pays for exactly one booking or one admission.
type Payment struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user_id"`
	Amount         int           `json:"amount"`
	Method         PaymentMethod `json:"method"`
	Status         PaymentStatus `json:"status"`
	DurationMonths int           `json:"duration_months"`
	ReceiptNumber  string        `json:"receipt_number"`
	BookingID      *string       `json:"booking_id,omitempty"`
	AdmissionID    *string       `json:"admission_id,omitempty"`
	ApprovedBy     *string       `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time    `json:"approved_at,omitempty"`
	PaymentDate    time.Time     `json:"payment_date"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// ErrPaymentTarget is returned when a payment names neither or both of a
// booking and an admission.
var ErrPaymentTarget = errors.New("payment must reference exactly one of booking or admission")

// Validate checks the payment before it is written.
func (p Payment) Validate() error {
	if p.UserID == "" {
		return errors.New("payment: user id required")
	}
	if p.Amount <= 0 {
		return errors.New("payment: amount must be positive")
	}
	switch p.Method {
	case MethodUPI, MethodCash, MethodQR:
	default:
		return errors.New("payment: invalid method")
	}
	hasBooking := p.BookingID != nil && *p.BookingID != ""
	hasAdmission := p.AdmissionID != nil && *p.AdmissionID != ""
	if hasBooking == hasAdmission {
		return ErrPaymentTarget
	}
	return nil
}

// Kind names what the payment is for, as recorded in admin logs.
func (p Payment) Kind() string {
	if p.BookingID != nil && *p.BookingID != "" {
		return "booking"
	}
	return "admission"
}
