package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/repository"
	"github.com/iliyamo/library-seat-booking/internal/shift"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func fixedClock(t time.Time) Clock {
	return Clock{Loc: time.UTC, NowFunc: func() time.Time { return t }}
}

type seq struct{ n int }

func (s *seq) next(prefix string) string {
	s.n++
	return fmt.Sprintf("%s%d", prefix, s.n)
}

type fakeUsers struct {
	mu    sync.Mutex
	ids   seq
	users map[string]model.User
}

func newFakeUsers(us ...model.User) *fakeUsers {
	f := &fakeUsers{users: map[string]model.User{}}
	for _, u := range us {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u model.User) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	u.ID = f.ids.next("u")
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) ListStudents(_ context.Context, status model.ApprovalStatus) ([]model.User, error) {
	var out []model.User
	for _, u := range f.users {
		if u.Role == model.RoleStudent && (status == "" || u.ApprovalStatus == status) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsers) SetApproval(_ context.Context, userID string, status model.ApprovalStatus, adminID string, at time.Time) (model.User, error) {
	u, ok := f.users[userID]
	if !ok || u.Role != model.RoleStudent {
		return model.User{}, repository.ErrNotFound
	}
	u.ApprovalStatus = status
	u.ApprovedBy = &adminID
	u.ApprovedAt = &at
	f.users[userID] = u
	return u, nil
}

func (f *fakeUsers) StudentCounts(context.Context) (int, int, error) {
	total, approved := 0, 0
	for _, u := range f.users {
		if u.Role == model.RoleStudent {
			total++
			if u.ApprovalStatus == model.ApprovalApproved {
				approved++
			}
		}
	}
	return total, approved, nil
}

type fakeTokens struct {
	tokens  map[string]string
	exp     map[string]time.Time
	revoked map[string]bool
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{tokens: map[string]string{}, exp: map[string]time.Time{}, revoked: map[string]bool{}}
}

func (f *fakeTokens) StoreRefresh(_ context.Context, userID, hash string, exp time.Time) error {
	f.tokens[hash] = userID
	f.exp[hash] = exp
	return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, hash string, now time.Time) (string, error) {
	uid, ok := f.tokens[hash]
	if !ok || f.revoked[hash] || now.After(f.exp[hash]) {
		return "", repository.ErrNotFound
	}
	return uid, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
	f.revoked[hash] = true
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID string) error {
	for h, uid := range f.tokens {
		if uid == userID {
			f.revoked[h] = true
		}
	}
	return nil
}

type fakeAdmissions struct {
	ids  seq
	rows []model.Admission
}

func (f *fakeAdmissions) Create(_ context.Context, a model.Admission) (model.Admission, error) {
	if err := a.Validate(); err != nil {
		return model.Admission{}, err
	}
	a.ID = f.ids.next("adm")
	f.rows = append(f.rows, a)
	return a, nil
}

func (f *fakeAdmissions) GetByID(_ context.Context, id string) (model.Admission, error) {
	for _, a := range f.rows {
		if a.ID == id {
			return a, nil
		}
	}
	return model.Admission{}, repository.ErrNotFound
}

func (f *fakeAdmissions) ListByUser(_ context.Context, userID string) ([]model.Admission, error) {
	var out []model.Admission
	for _, a := range f.rows {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAdmissions) List(_ context.Context, filter repository.AdmissionFilter) ([]model.Admission, error) {
	var out []model.Admission
	for _, a := range f.rows {
		if filter.PaymentStatus == "" || a.PaymentStatus == filter.PaymentStatus {
			out = append(out, a)
		}
	}
	return out, nil
}

// fakeBookings enforces the same invariants as the MySQL repository.  A
// set raceWinner is inserted at the start of the next Create, mimicking a
// concurrent request that got there first.
type fakeBookings struct {
	ids         seq
	rows        []model.SeatBooking
	raceWinner  *model.SeatBooking
	createCalls int
	failOnce    bool
	alwaysClash bool
}

func (f *fakeBookings) ListByDate(_ context.Context, date string) ([]model.SeatBooking, error) {
	var out []model.SeatBooking
	for _, b := range f.rows {
		if b.BookingDate == date {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) ListByUser(_ context.Context, userID string, _ int) ([]model.SeatBooking, error) {
	var out []model.SeatBooking
	for _, b := range f.rows {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) GetByID(_ context.Context, id string) (model.SeatBooking, error) {
	for _, b := range f.rows {
		if b.ID == id {
			return b, nil
		}
	}
	return model.SeatBooking{}, repository.ErrNotFound
}

func (f *fakeBookings) Create(_ context.Context, b model.SeatBooking) (model.SeatBooking, error) {
	f.createCalls++
	if f.alwaysClash {
		return model.SeatBooking{}, repository.ErrConflict
	}
	if f.failOnce {
		f.failOnce = false
		return model.SeatBooking{}, repository.ErrConflict
	}
	if f.raceWinner != nil {
		w := *f.raceWinner
		f.raceWinner = nil
		w.ID = f.ids.next("b")
		f.rows = append(f.rows, w)
	}
	for _, r := range f.rows {
		if r.IsBooked() && r.BookingDate == b.BookingDate && r.Shift == b.Shift && (r.SeatNumber == b.SeatNumber || r.UserID == b.UserID) {
			return model.SeatBooking{}, repository.ErrConflict
		}
	}
	b.ID = f.ids.next("b")
	f.rows = append(f.rows, b)
	return b, nil
}

func (f *fakeBookings) Delete(_ context.Context, id string) error {
	for i, b := range f.rows {
		if b.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeAttendance struct {
	ids      seq
	rows     []model.AttendanceRecord
	upserted int
}

func (f *fakeAttendance) ListByUser(_ context.Context, userID, from, to string) ([]model.AttendanceRecord, error) {
	var out []model.AttendanceRecord
	for _, r := range f.rows {
		if r.UserID == userID && (from == "" || r.Date >= from) && (to == "" || r.Date <= to) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (f *fakeAttendance) ListByDate(_ context.Context, date string) ([]model.AttendanceRecord, error) {
	var out []model.AttendanceRecord
	for _, r := range f.rows {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAttendance) Create(_ context.Context, rec model.AttendanceRecord) (model.AttendanceRecord, error) {
	if err := rec.Validate(); err != nil {
		return model.AttendanceRecord{}, err
	}
	for _, r := range f.rows {
		if r.UserID == rec.UserID && r.Shift == rec.Shift && r.Date == rec.Date {
			return model.AttendanceRecord{}, repository.ErrConflict
		}
	}
	rec.ID = f.ids.next("att")
	f.rows = append(f.rows, rec)
	return rec, nil
}

func (f *fakeAttendance) Update(_ context.Context, id string, p repository.AttendancePatch) (model.AttendanceRecord, error) {
	for i, r := range f.rows {
		if r.ID != id {
			continue
		}
		switch {
		case p.CheckInTime != nil:
			if r.CheckInTime != nil {
				return model.AttendanceRecord{}, repository.ErrConflict
			}
			r.CheckInTime, r.Status, r.Reason = p.CheckInTime, "", ""
		case p.CheckOutTime != nil:
			if r.CheckInTime == nil || r.CheckOutTime != nil {
				return model.AttendanceRecord{}, repository.ErrConflict
			}
			r.CheckOutTime, r.Status = p.CheckOutTime, model.AttendancePresent
		}
		f.rows[i] = r
		return r, nil
	}
	return model.AttendanceRecord{}, repository.ErrNotFound
}

func (f *fakeAttendance) UpsertAbsences(_ context.Context, absences []model.AbsenceRecord) (int, error) {
	written := 0
	for _, a := range absences {
		found := false
		for i, r := range f.rows {
			if r.UserID == a.UserID && r.Shift == a.Shift && r.Date == a.Date {
				found = true
				if r.CheckInTime == nil {
					f.rows[i].Status, f.rows[i].Reason = a.Status, a.Reason
				}
			}
		}
		if !found {
			rec := a.AsAttendance()
			rec.ID = f.ids.next("att")
			f.rows = append(f.rows, rec)
			written++
		}
	}
	f.upserted += written
	return written, nil
}

type fakePayments struct {
	ids        seq
	rows       []model.Payment
	admissions *fakeAdmissions
	bookings   *fakeBookings
	logs       []model.AdminLog
}

func (f *fakePayments) Create(_ context.Context, p model.Payment) (model.Payment, error) {
	p.ID = f.ids.next("p")
	f.rows = append(f.rows, p)
	return p, nil
}

func (f *fakePayments) GetByID(_ context.Context, id string) (model.Payment, error) {
	for _, p := range f.rows {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Payment{}, repository.ErrNotFound
}

func (f *fakePayments) List(_ context.Context, status model.PaymentStatus) ([]model.Payment, error) {
	var out []model.Payment
	for _, p := range f.rows {
		if status == "" || p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePayments) ListByUser(_ context.Context, userID string) ([]model.Payment, error) {
	var out []model.Payment
	for _, p := range f.rows {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePayments) CountPending(context.Context) (int, error) {
	n := 0
	for _, p := range f.rows {
		if p.Status == model.PaymentPending {
			n++
		}
	}
	return n, nil
}

func (f *fakePayments) Decide(ctx context.Context, d repository.PaymentDecision) (repository.DecisionResult, error) {
	for i, p := range f.rows {
		if p.ID != d.PaymentID {
			continue
		}
		if p.Status != model.PaymentPending {
			return repository.DecisionResult{}, repository.ErrConflict
		}
		var out repository.DecisionResult
		action := "reject_cash_payment"
		p.Status = model.PaymentRejected
		if d.Approve {
			p.Status = model.PaymentApproved
			action = "approve_cash_payment"
		}
		p.ApprovedBy, p.ApprovedAt = &d.AdminID, &d.At
		if p.BookingID != nil {
			out.BookingID = *p.BookingID
			if !d.Approve {
				_ = f.bookings.Delete(ctx, *p.BookingID)
			}
		}
		if p.AdmissionID != nil {
			for j, a := range f.admissions.rows {
				if a.ID == *p.AdmissionID {
					if d.Approve {
						a = a.Activate(d.At, p.DurationMonths)
						f.admissions.rows[j] = a
					}
					out.Admission = &a
				}
			}
		}
		f.rows[i] = p
		f.logs = append(f.logs, model.AdminLog{AdminID: d.AdminID, Action: action, Details: map[string]any{"paymentId": p.ID}})
		out.Payment = p
		return out, nil
	}
	return repository.DecisionResult{}, repository.ErrNotFound
}

type fakeNotifications struct {
	ids  seq
	rows []model.Notification
}

func (f *fakeNotifications) Create(_ context.Context, n model.Notification) (model.Notification, error) {
	n.ID = f.ids.next("n")
	f.rows = append(f.rows, n)
	return n, nil
}

func (f *fakeNotifications) ListForUser(_ context.Context, userID string, _ int) ([]model.Notification, error) {
	var out []model.Notification
	for _, n := range f.rows {
		if n.UserID == nil || *n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, id, userID string) error {
	for i, n := range f.rows {
		if n.ID == id && n.UserID != nil && *n.UserID == userID {
			f.rows[i].IsRead = true
			return nil
		}
	}
	return repository.ErrNotFound
}

type event struct {
	typ     string
	payload any
}

type fakeEvents struct{ events []event }

func (f *fakeEvents) Publish(_ context.Context, typ string, payload any) error {
	f.events = append(f.events, event{typ, payload})
	return nil
}

// fakeAdminLogs reads the audit entries fakePayments records on decisions.
type fakeAdminLogs struct{ payments *fakePayments }

func (f fakeAdminLogs) List(_ context.Context, limit int) ([]model.AdminLog, error) {
	out := make([]model.AdminLog, 0, len(f.payments.logs))
	for i := len(f.payments.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.payments.logs[i])
	}
	return out, nil
}

// world wires every fake together with an approved student U1 holding a
// paid admission for morning and night, an approved student U2 holding
// morning, and an admin A1.
type world struct {
	users         *fakeUsers
	tokens        *fakeTokens
	admissions    *fakeAdmissions
	bookings      *fakeBookings
	attendance    *fakeAttendance
	payments      *fakePayments
	notifications *fakeNotifications
	events        *fakeEvents
}

func newWorld() *world {
	w := &world{
		users: newFakeUsers(
			model.User{ID: "U1", Email: "u1@example.com", FullName: "Asha", Role: model.RoleStudent, ApprovalStatus: model.ApprovalApproved},
			model.User{ID: "U2", Email: "u2@example.com", FullName: "Ravi", Role: model.RoleStudent, ApprovalStatus: model.ApprovalApproved},
			model.User{ID: "U3", Email: "u3@example.com", FullName: "Meena", Role: model.RoleStudent, ApprovalStatus: model.ApprovalPending},
			model.User{ID: "A1", Email: "admin@example.com", FullName: "Admin", Role: model.RoleAdmin},
		),
		tokens:        newFakeTokens(),
		admissions:    &fakeAdmissions{},
		bookings:      &fakeBookings{},
		attendance:    &fakeAttendance{},
		notifications: &fakeNotifications{},
		events:        &fakeEvents{},
	}
	w.payments = &fakePayments{admissions: w.admissions, bookings: w.bookings}
	w.admissions.rows = []model.Admission{
		{ID: "adm-U1", UserID: "U1", Duration: 1, SelectedShifts: []shift.ID{shift.Morning, shift.Night}, PaymentStatus: model.AdmissionPaid},
		{ID: "adm-U2", UserID: "U2", Duration: 1, SelectedShifts: []shift.ID{shift.Morning}, PaymentStatus: model.AdmissionPaid},
	}
	return w
}

func (w *world) deps(now time.Time) Deps {
	return Deps{
		Users:         w.users,
		Tokens:        w.tokens,
		Admissions:    w.admissions,
		Bookings:      w.bookings,
		Attendance:    w.attendance,
		Payments:      w.payments,
		Notifications: w.notifications,
		AdminLogs:     fakeAdminLogs{payments: w.payments},
		Events:        w.events,
		Clock:         fixedClock(now),
		Log:           quiet,
	}
}
