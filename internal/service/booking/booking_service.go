package booking

import (
	"context"
	"errors"

	"github.com/Domenick1991/homecare/internal/domain"
	"github.com/Domenick1991/homecare/internal/repository"
	"github.com/samber/lo"
)

var (
	ErrCancelled = errors.New("booking is already cancelled")
	ErrCompleted = errors.New("booking is already completed")
)

// BookingUseCase is the read side of the command channel plus cancellation.
type BookingUseCase interface {
	Get(ctx context.Context, clientID, bookingID int64) (*domain.Booking, error)
	Recent(ctx context.Context, clientID int64, limit int) ([]domain.Booking, error)
	Cancel(ctx context.Context, clientID, bookingID int64) (*domain.Booking, error)
	Balance(ctx context.Context, clientID int64) (total int64, count int, err error)
}

type BookingService struct {
	bookings repository.BookingRepository
	payments repository.PaymentRepository
}

func NewBookingService(bookings repository.BookingRepository, payments repository.PaymentRepository) *BookingService {
	return &BookingService{bookings: bookings, payments: payments}
}

func (s *BookingService) Get(ctx context.Context, clientID, bookingID int64) (*domain.Booking, error) {
	return s.bookings.GetForClient(ctx, clientID, bookingID)
}

func (s *BookingService) Recent(ctx context.Context, clientID int64, limit int) ([]domain.Booking, error) {
	return s.bookings.ListForClient(ctx, clientID, limit)
}

// Cancel moves a booking to CANCELLED unless it is already cancelled or
// completed. The check and the write are one conditional update.
func (s *BookingService) Cancel(ctx context.Context, clientID, bookingID int64) (*domain.Booking, error) {
	b, cancelled, err := s.bookings.CancelIfOpen(ctx, clientID, bookingID)
	if err != nil {
		return nil, err
	}
	if cancelled {
		return b, nil
	}
	switch b.Status {
	case domain.BookingStatusCompleted:
		return b, ErrCompleted
	default:
		return b, ErrCancelled
	}
}

func (s *BookingService) Balance(ctx context.Context, clientID int64) (int64, int, error) {
	pending, err := s.payments.ListPending(ctx, clientID)
	if err != nil {
		return 0, 0, err
	}
	total := lo.SumBy(pending, func(p domain.Payment) int64 { return p.AmountTSh })
	return total, len(pending), nil
}

var _ BookingUseCase = (*BookingService)(nil)
