package service

import (
	"context"
	"strings"

	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/shift"
)

// AdmissionService handles enrollment requests and fee quotes.
type AdmissionService struct {
	d Deps
}

func NewAdmissionService(d Deps) *AdmissionService { return &AdmissionService{d: d.withDefaults()} }

// AdmissionInput is the enrollment form.
type AdmissionInput struct {
	Name           string
	Age            int
	ContactNumber  string
	FullAddress    string
	Email          string
	CourseName     string
	FatherName     string
	FatherContact  string
	Duration       int
	SelectedShifts []string
}

// Quote prices a selection of shifts.
type Quote struct {
	Shifts          []shift.ID `json:"shifts"`
	ShiftFee        int        `json:"shift_fee"`
	RegistrationFee int        `json:"registration_fee"`
	Total           int        `json:"total"`
}

// QuoteShifts parses a comma list and prices it.
func (s *AdmissionService) QuoteShifts(raw string) (Quote, error) {
	ids, err := shift.ParseList(raw)
	if err != nil {
		return Quote{}, err
	}
	fee := shift.QuoteFee(ids)
	return Quote{Shifts: ids, ShiftFee: fee, RegistrationFee: shift.RegistrationFee, Total: fee + shift.RegistrationFee}, nil
}

// Submit stores a pending admission priced on the server.
func (s *AdmissionService) Submit(ctx context.Context, userID string, in AdmissionInput) (model.Admission, error) {
	u, err := s.d.Users.GetByID(ctx, userID)
	if err != nil {
		return model.Admission{}, err
	}
	if !u.IsApproved() {
		return model.Admission{}, ErrNotApproved
	}
	if !model.ValidDuration(in.Duration) {
		return model.Admission{}, ErrInvalidDuration
	}
	q, err := s.QuoteShifts(strings.Join(in.SelectedShifts, ","))
	if err != nil {
		return model.Admission{}, err
	}
	if len(q.Shifts) == 0 {
		return model.Admission{}, shift.ErrInvalidShift
	}
	email := in.Email
	if email == "" {
		email = u.Email
	}
	return s.d.Admissions.Create(ctx, model.Admission{
		UserID:          userID,
		Name:            in.Name,
		Age:             in.Age,
		ContactNumber:   in.ContactNumber,
		FullAddress:     in.FullAddress,
		Email:           email,
		CourseName:      in.CourseName,
		FatherName:      in.FatherName,
		FatherContact:   in.FatherContact,
		Duration:        in.Duration,
		SelectedShifts:  q.Shifts,
		RegistrationFee: q.RegistrationFee,
		ShiftFee:        q.ShiftFee,
		TotalAmount:     q.Total,
		PaymentStatus:   model.AdmissionPending,
	})
}

// Mine lists the user's admissions.
func (s *AdmissionService) Mine(ctx context.Context, userID string) ([]model.Admission, error) {
	return s.d.Admissions.ListByUser(ctx, userID)
}
