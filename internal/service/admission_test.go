package service

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/shift"
)

func TestSubmitAdmission(t *testing.T) {
	w := newWorld()
	a, err := NewAdmissionService(w.deps(morningOf14th)).Submit(context.Background(), "U1", AdmissionInput{
		Name:           "Asha",
		Duration:       3,
		SelectedShifts: []string{"Noon", "morning"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if a.ShiftFee != 549 || a.RegistrationFee != shift.RegistrationFee || a.TotalAmount != 599 {
		t.Fatalf("pricing = %d + %d = %d", a.ShiftFee, a.RegistrationFee, a.TotalAmount)
	}
	if a.PaymentStatus != model.AdmissionPending || a.Email != "u1@example.com" {
		t.Fatalf("admission = %+v", a)
	}
}

func TestSubmitAdmissionRejections(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		in     AdmissionInput
		want   error
	}{
		{"not approved", "U3", AdmissionInput{Duration: 1, SelectedShifts: []string{"noon"}}, ErrNotApproved},
		{"bad duration", "U1", AdmissionInput{Duration: 2, SelectedShifts: []string{"noon"}}, ErrInvalidDuration},
		{"no shifts", "U1", AdmissionInput{Duration: 1}, shift.ErrInvalidShift},
		{"unknown shift", "U1", AdmissionInput{Duration: 1, SelectedShifts: []string{"noon", "dawn"}}, shift.ErrInvalidShift},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld()
			before := len(w.admissions.rows)
			if _, err := NewAdmissionService(w.deps(morningOf14th)).Submit(context.Background(), tt.userID, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if len(w.admissions.rows) != before {
				t.Fatal("admission stored")
			}
		})
	}
}

func TestQuoteShifts(t *testing.T) {
	q, err := NewAdmissionService(Deps{}).QuoteShifts("night,evening,noon,morning")
	if err != nil {
		t.Fatal(err)
	}
	if q.ShiftFee != 999 || q.Total != 1049 || len(q.Shifts) != 4 {
		t.Fatalf("quote = %+v", q)
	}
}
