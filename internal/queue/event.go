// Package queue carries domain events over RabbitMQ: payload types, a
// publisher used by the services and a consumer that appends every event to
// an audit log.
package queue

import (
	"encoding/json"
	"time"
)

// Event types, also used as the AMQP message type.
const (
	TypeSeatBooked     = "seat.booked"
	TypePaymentDecided = "payment.decided"
	TypeAbsenceMarked  = "absence.marked"
)

// Envelope wraps every message on the queue.
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// SeatBookedEvent is published after a booking is stored.
type SeatBookedEvent struct {
	BookingID   string `json:"booking_id"`
	UserID      string `json:"user_id"`
	Shift       string `json:"shift"`
	SeatNumber  string `json:"seat_number"`
	BookingDate string `json:"booking_date"`
}

// PaymentDecidedEvent is published after an admin approves or rejects a
// payment.
type PaymentDecidedEvent struct {
	PaymentID   string `json:"payment_id"`
	UserID      string `json:"user_id"`
	AdminID     string `json:"admin_id"`
	Decision    string `json:"decision"`
	PaymentType string `json:"payment_type"`
	Amount      int    `json:"amount"`
}

// AbsenceMarkedEvent summarizes one absence sweep.
type AbsenceMarkedEvent struct {
	Date    string   `json:"date"`
	Count   int      `json:"count"`
	UserIDs []string `json:"user_ids"`
	Trigger string   `json:"trigger"`
}
