package domain

import (
	"errors"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrPaymentNotPending = errors.New("payment is not pending")
	ErrAlreadyRegistered = errors.New("phone is already registered")
	ErrNoPendingPayment  = errors.New("no pending payment")
)

type Booking struct {
	ID          int64
	ClientID    int64
	ServiceID   int
	ServiceName string
	VisitDate   string // YYYY-MM-DD
	VisitTime   string // HH:MM
	Address     string
	Status      BookingStatus
	PaymentType string
	NurseID     *int64
	SessionID   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Cancellable reports whether a caller may still cancel the booking.
func (b Booking) Cancellable() bool {
	return b.Status != BookingStatusCancelled && b.Status != BookingStatusCompleted
}
