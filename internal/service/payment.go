package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/queue"
	"github.com/iliyamo/library-seat-booking/internal/repository"
)

// PaymentService records payments and applies admin decisions.
type PaymentService struct {
	d Deps
}

func NewPaymentService(d Deps) *PaymentService { return &PaymentService{d: d.withDefaults()} }

// PaymentInput pays for exactly one of a booking or an admission.
type PaymentInput struct {
	Amount         int
	Method         string
	DurationMonths int
	BookingID      string
	AdmissionID    string
}

// Submit records a pending payment for one of the user's own bookings or
// admissions.  An admission payment without an amount is charged the
// admission total.
func (s *PaymentService) Submit(ctx context.Context, userID string, in PaymentInput) (model.Payment, error) {
	if (in.BookingID == "") == (in.AdmissionID == "") {
		return model.Payment{}, ErrInvalidPaymentTarget
	}
	p := model.Payment{
		UserID:         userID,
		Amount:         in.Amount,
		Method:         model.PaymentMethod(strings.ToLower(in.Method)),
		Status:         model.PaymentPending,
		DurationMonths: in.DurationMonths,
		PaymentDate:    s.d.Clock.Now(),
	}
	if in.BookingID != "" {
		b, err := s.d.Bookings.GetByID(ctx, in.BookingID)
		if err != nil {
			return model.Payment{}, err
		}
		if b.UserID != userID {
			return model.Payment{}, repository.ErrNotFound
		}
		p.BookingID = ptr(b.ID)
	} else {
		a, err := s.d.Admissions.GetByID(ctx, in.AdmissionID)
		if err != nil {
			return model.Payment{}, err
		}
		if a.UserID != userID {
			return model.Payment{}, repository.ErrNotFound
		}
		if p.Amount == 0 {
			p.Amount = a.TotalAmount
		}
		if p.DurationMonths == 0 {
			p.DurationMonths = a.Duration
		}
		if !model.ValidDuration(p.DurationMonths) {
			return model.Payment{}, ErrInvalidDuration
		}
		p.AdmissionID = ptr(a.ID)
	}
	p.ReceiptNumber = receiptNumber(p.PaymentDate.Format("20060102"))
	if err := p.Validate(); err != nil {
		return model.Payment{}, err
	}
	return s.d.Payments.Create(ctx, p)
}

func receiptNumber(day string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "RCP-" + day + "-" + suffix
}

// List returns payments by status for the admin queue.
func (s *PaymentService) List(ctx context.Context, status string) ([]model.Payment, error) {
	st := model.PaymentStatus(strings.ToLower(status))
	switch st {
	case "", model.PaymentPending, model.PaymentApproved, model.PaymentRejected:
	default:
		return nil, ErrInvalidStatus
	}
	return s.d.Payments.List(ctx, st)
}

// Mine lists the user's payments.
func (s *PaymentService) Mine(ctx context.Context, userID string) ([]model.Payment, error) {
	return s.d.Payments.ListByUser(ctx, userID)
}

func (s *PaymentService) Approve(ctx context.Context, adminID, paymentID string) (repository.DecisionResult, error) {
	return s.decide(ctx, adminID, paymentID, true)
}

func (s *PaymentService) Reject(ctx context.Context, adminID, paymentID string) (repository.DecisionResult, error) {
	return s.decide(ctx, adminID, paymentID, false)
}

func (s *PaymentService) decide(ctx context.Context, adminID, paymentID string, approve bool) (repository.DecisionResult, error) {
	res, err := s.d.Payments.Decide(ctx, repository.PaymentDecision{
		PaymentID: paymentID,
		AdminID:   adminID,
		Approve:   approve,
		At:        s.d.Clock.Now(),
	})
	if errors.Is(err, repository.ErrConflict) {
		return repository.DecisionResult{}, ErrPaymentNotPending
	}
	if err != nil {
		return repository.DecisionResult{}, err
	}

	p := res.Payment
	decision := string(p.Status)
	s.d.Metrics.PaymentDecided(decision)
	s.d.Log.Info("payment decided", "payment_id", p.ID, "decision", decision, "admin_id", adminID)

	n := model.Notification{UserID: ptr(p.UserID), CreatedBy: ptr(adminID)}
	if approve {
		n.Title = "Payment Approved"
		n.Body = "Your " + p.Kind() + " payment has been approved."
		n.Type = model.NotifySuccess
	} else {
		n.Title = "Payment Rejected"
		n.Body = "Your " + p.Kind() + " payment was rejected. Please contact the library desk."
		n.Type = model.NotifyError
	}
	s.d.notify(ctx, n)
	s.d.publish(ctx, queue.TypePaymentDecided, queue.PaymentDecidedEvent{
		PaymentID:   p.ID,
		UserID:      p.UserID,
		AdminID:     adminID,
		Decision:    decision,
		PaymentType: p.Kind(),
		Amount:      p.Amount,
	})
	return res, nil
}
