package queue

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var at = time.Date(2026, 3, 14, 7, 30, 0, 0, time.UTC)

func TestFormatLine(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		payload any
		want    string
	}{
		{
			"seat booked", TypeSeatBooked,
			SeatBookedEvent{BookingID: "b1", UserID: "u1", Shift: "morning", SeatNumber: "S5", BookingDate: "2026-03-14"},
			"[2026-03-14T07:30:00Z] Seat booked | booking_id=b1 | user_id=u1 | date=2026-03-14 | shift=morning | seat=S5\n",
		},
		{
			"payment decided", TypePaymentDecided,
			PaymentDecidedEvent{PaymentID: "p1", UserID: "u1", AdminID: "a1", Decision: "approved", PaymentType: "admission", Amount: 599},
			"[2026-03-14T07:30:00Z] Payment approved | payment_id=p1 | user_id=u1 | admin_id=a1 | type=admission | amount=599\n",
		},
		{
			"absence marked", TypeAbsenceMarked,
			AbsenceMarkedEvent{Date: "2026-03-14", Count: 2, UserIDs: []string{"u1", "u2"}, Trigger: "cron"},
			"[2026-03-14T07:30:00Z] Absences marked | date=2026-03-14 | count=2 | trigger=cron | users=[u1,u2]\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := Encode(tt.typ, tt.payload, at)
			if err != nil {
				t.Fatal(err)
			}
			got, err := FormatLine(body)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("FormatLine =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestFormatLineRejectsUnknown(t *testing.T) {
	body, _ := Encode("seat.cancelled", map[string]string{}, at)
	if _, err := FormatLine(body); err == nil {
		t.Fatal("want error for unknown type")
	}
	if _, err := FormatLine([]byte("{")); err == nil {
		t.Fatal("want error for bad json")
	}
}

func TestConsumerHandleAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "events.log")
	c := NewConsumer("", "library_events", path, nil)
	body, _ := Encode(TypeSeatBooked, SeatBookedEvent{BookingID: "b1"}, at)
	for i := 0; i < 2; i++ {
		if err := c.handle(body); err != nil {
			t.Fatal(err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "Seat booked"); n != 2 {
		t.Fatalf("want 2 lines, got %d", n)
	}
}

func TestPublisherWithoutURLIsNoop(t *testing.T) {
	if err := NewPublisher("", "q", nil).Publish(context.Background(), TypeSeatBooked, SeatBookedEvent{}); err != nil {
		t.Fatal(err)
	}
	var p *Publisher
	if err := p.Publish(context.Background(), TypeSeatBooked, nil); err != nil {
		t.Fatal(err)
	}
}

func TestConsumerRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewConsumer("amqp://127.0.0.1:1/", "q", filepath.Join(t.TempDir(), "e.log"), nil).Run(ctx); err == nil {
		t.Fatal("want context error")
	}
}
