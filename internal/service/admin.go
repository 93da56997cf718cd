package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/library-seat-booking/internal/ledger"
	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/report"
)

// AdminService backs the admin console: student approvals, the dashboard
// and exports.
type AdminService struct {
	d Deps
}

func NewAdminService(d Deps) *AdminService { return &AdminService{d: d.withDefaults()} }

// Students lists student accounts, optionally by approval status.
func (s *AdminService) Students(ctx context.Context, status string) ([]model.User, error) {
	st := model.ApprovalStatus(strings.ToLower(status))
	if st != "" && !st.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.d.Users.ListStudents(ctx, st)
}

// DecideStudent approves or rejects a student account and tells them.
func (s *AdminService) DecideStudent(ctx context.Context, adminID, userID, status string) (model.User, error) {
	st := model.ApprovalStatus(strings.ToLower(status))
	if st != model.ApprovalApproved && st != model.ApprovalRejected {
		return model.User{}, ErrInvalidStatus
	}
	u, err := s.d.Users.SetApproval(ctx, userID, st, adminID, s.d.Clock.Now())
	if err != nil {
		return model.User{}, err
	}
	n := model.Notification{UserID: ptr(u.ID), CreatedBy: ptr(adminID)}
	if st == model.ApprovalApproved {
		n.Title, n.Body, n.Type = "Account Approved", "Your account has been approved. You can now submit an admission and book seats.", model.NotifySuccess
	} else {
		n.Title, n.Body, n.Type = "Account Rejected", "Your account registration was rejected. Please contact the library desk.", model.NotifyError
	}
	s.d.notify(ctx, n)
	return u, nil
}

// Dashboard is the admin overview for today.
type Dashboard struct {
	Date            string                  `json:"date"`
	TotalStudents   int                     `json:"total_students"`
	ActiveStudents  int                     `json:"active_students"`
	BookingsToday   int                     `json:"bookings_today"`
	PendingPayments int                     `json:"pending_payments"`
	Occupancy       []ledger.ShiftOccupancy `json:"occupancy"`
}

func (s *AdminService) Dashboard(ctx context.Context) (Dashboard, error) {
	today := s.d.Clock.Today()
	total, approved, err := s.d.Users.StudentCounts(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("student counts: %w", err)
	}
	pending, err := s.d.Payments.CountPending(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("pending payments: %w", err)
	}
	snapshot, err := s.d.Bookings.ListByDate(ctx, today)
	if err != nil {
		return Dashboard{}, fmt.Errorf("bookings: %w", err)
	}
	occ := ledger.Occupancy(snapshot)
	booked := 0
	for _, o := range occ {
		booked += o.Booked
	}
	return Dashboard{
		Date:            today,
		TotalStudents:   total,
		ActiveStudents:  approved,
		BookingsToday:   booked,
		PendingPayments: pending,
		Occupancy:       occ,
	}, nil
}

// ExportAttendance renders the attendance of rawDate (today when empty)
// as an xlsx workbook.
func (s *AdminService) ExportAttendance(ctx context.Context, rawDate string) (string, []byte, error) {
	date, err := resolveDate(rawDate, s.d.Clock)
	if err != nil {
		return "", nil, err
	}
	records, err := s.d.Attendance.ListByDate(ctx, date)
	if err != nil {
		return "", nil, err
	}
	users := make(map[string]model.User)
	rows := make([]report.AttendanceRow, 0, len(records))
	for _, r := range records {
		u, ok := users[r.UserID]
		if !ok {
			if u, err = s.d.Users.GetByID(ctx, r.UserID); err != nil {
				s.d.Log.Warn("export: user lookup failed", "user_id", r.UserID, "error", err)
			}
			users[r.UserID] = u
		}
		rows = append(rows, report.AttendanceRow{Record: r, FullName: u.FullName, Email: u.Email})
	}
	data, err := report.AttendanceWorkbook(date, rows)
	if err != nil {
		return "", nil, err
	}
	return "attendance-" + date + ".xlsx", data, nil
}

// Logs returns the most recent admin actions, newest first.
func (s *AdminService) Logs(ctx context.Context, limit int) ([]model.AdminLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.d.AdminLogs.List(ctx, limit)
}
