package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

type Payment struct {
	ID          int64
	BookingID   int64
	ClientID    int64
	AmountTSh   int64
	Method      string
	Status      PaymentStatus
	Reference   string
	ServiceName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
