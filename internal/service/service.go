// Package service orchestrates the pure decision packages (shift, ledger,
// attendance, absence) against the repositories: gate the caller, read a
// snapshot, decide, write conditionally, and re-evaluate once when the
// write loses a race.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/iliyamo/library-seat-booking/internal/metrics"
	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/repository"
	"github.com/iliyamo/library-seat-booking/internal/shift"
)

var (
	ErrNotApproved          = errors.New("account not approved")
	ErrShiftNotInAdmission  = errors.New("shift not included in admission")
	ErrNoActiveAdmission    = errors.New("no active paid admission")
	ErrPaymentNotPending    = errors.New("payment already decided")
	ErrInvalidDuration      = errors.New("duration must be 1, 3 or 6 months")
	ErrInvalidPaymentTarget = errors.New("payment must reference exactly one of booking or admission")
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidStatus        = errors.New("invalid status")
)

type UserStore interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	ListStudents(ctx context.Context, status model.ApprovalStatus) ([]model.User, error)
	SetApproval(ctx context.Context, userID string, status model.ApprovalStatus, adminID string, at time.Time) (model.User, error)
	StudentCounts(ctx context.Context) (total, approved int, err error)
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (string, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

type AdmissionStore interface {
	Create(ctx context.Context, a model.Admission) (model.Admission, error)
	GetByID(ctx context.Context, id string) (model.Admission, error)
	ListByUser(ctx context.Context, userID string) ([]model.Admission, error)
	List(ctx context.Context, f repository.AdmissionFilter) ([]model.Admission, error)
}

type BookingStore interface {
	ListByDate(ctx context.Context, date string) ([]model.SeatBooking, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]model.SeatBooking, error)
	GetByID(ctx context.Context, id string) (model.SeatBooking, error)
	Create(ctx context.Context, b model.SeatBooking) (model.SeatBooking, error)
	Delete(ctx context.Context, id string) error
}

type AttendanceStore interface {
	ListByUser(ctx context.Context, userID, from, to string) ([]model.AttendanceRecord, error)
	ListByDate(ctx context.Context, date string) ([]model.AttendanceRecord, error)
	Create(ctx context.Context, rec model.AttendanceRecord) (model.AttendanceRecord, error)
	Update(ctx context.Context, id string, p repository.AttendancePatch) (model.AttendanceRecord, error)
	UpsertAbsences(ctx context.Context, absences []model.AbsenceRecord) (int, error)
}

type PaymentStore interface {
	Create(ctx context.Context, p model.Payment) (model.Payment, error)
	GetByID(ctx context.Context, id string) (model.Payment, error)
	List(ctx context.Context, status model.PaymentStatus) ([]model.Payment, error)
	ListByUser(ctx context.Context, userID string) ([]model.Payment, error)
	CountPending(ctx context.Context) (int, error)
	Decide(ctx context.Context, d repository.PaymentDecision) (repository.DecisionResult, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n model.Notification) (model.Notification, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type AdminLogStore interface {
	List(ctx context.Context, limit int) ([]model.AdminLog, error)
}

// EventPublisher is satisfied by *queue.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// Clock yields readings in the library's time zone.
type Clock struct {
	Loc     *time.Location
	NowFunc func() time.Time
}

func (c Clock) Now() time.Time {
	now := time.Now
	if c.NowFunc != nil {
		now = c.NowFunc
	}
	loc := c.Loc
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc)
}

// Today is the calendar date of Now.
func (c Clock) Today() string { return model.DateOf(c.Now()) }

// Deps is everything a service may need.  Fields a service does not use
// may be left nil.
type Deps struct {
	Users         UserStore
	Tokens        TokenStore
	Admissions    AdmissionStore
	Bookings      BookingStore
	Attendance    AttendanceStore
	Payments      PaymentStore
	Notifications NotificationStore
	AdminLogs     AdminLogStore
	Events        EventPublisher
	Metrics       *metrics.Metrics
	Clock         Clock
	Log           *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return d
}

func (d Deps) publish(ctx context.Context, eventType string, payload any) {
	if d.Events == nil {
		return
	}
	if err := d.Events.Publish(ctx, eventType, payload); err != nil {
		d.Log.Warn("event publish failed", "type", eventType, "error", err)
	}
}

func (d Deps) notify(ctx context.Context, n model.Notification) {
	if d.Notifications == nil {
		return
	}
	if _, err := d.Notifications.Create(ctx, n); err != nil {
		d.Log.Warn("notification failed", "title", n.Title, "error", err)
	}
}

// requireEligible checks that userID is an approved account holding a
// paid, unexpired admission that covers sh.
func (d Deps) requireEligible(ctx context.Context, userID string, sh shift.ID, now time.Time) error {
	u, err := d.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !u.IsApproved() {
		return ErrNotApproved
	}
	admissions, err := d.Admissions.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	active := false
	for _, a := range admissions {
		if !a.IsPaid() || (a.EndDate != nil && now.After(*a.EndDate)) {
			continue
		}
		active = true
		if a.Covers(sh) {
			return nil
		}
	}
	if !active {
		return ErrNoActiveAdmission
	}
	return ErrShiftNotInAdmission
}

// resolveDate defaults raw to today and validates it.
func resolveDate(raw string, c Clock) (string, error) {
	if raw == "" {
		return c.Today(), nil
	}
	if !model.ValidDate(raw) {
		return "", ErrInvalidDate
	}
	return raw, nil
}

func ptr[T any](v T) *T { return &v }
