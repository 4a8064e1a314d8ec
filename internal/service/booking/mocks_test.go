package booking

import (
	"context"
	"time"

	"github.com/Domenick1991/homecare/internal/domain"
	"github.com/Domenick1991/homecare/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreateWithPayment(ctx context.Context, b *domain.Booking, p *domain.Payment, ref repository.ReferenceFunc) (bool, error) {
	args := m.Called(ctx, b, p, ref)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) GetForClient(ctx context.Context, clientID, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, clientID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListForClient(ctx context.Context, clientID int64, limit int) ([]domain.Booking, error) {
	args := m.Called(ctx, clientID, limit)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) CancelIfOpen(ctx context.Context, clientID, bookingID int64) (*domain.Booking, bool, error) {
	args := m.Called(ctx, clientID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Booking), args.Bool(1), args.Error(2)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) ListPending(ctx context.Context, clientID int64) ([]domain.Payment, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetPendingForBooking(ctx context.Context, clientID, bookingID int64) (*domain.Payment, error) {
	args := m.Called(ctx, clientID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SettledBySession(ctx context.Context, sessionID string) (*domain.Payment, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Settle(ctx context.Context, sessionID string, paymentID int64, method string, ref repository.ReferenceFunc) (*domain.Payment, bool, error) {
	args := m.Called(ctx, sessionID, paymentID, method, ref)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Payment), args.Bool(1), args.Error(2)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, phone, text string) error {
	args := m.Called(ctx, phone, text)
	return args.Error(0)
}

func (m *MockSender) SendAlert(ctx context.Context, phone, text string) error {
	args := m.Called(ctx, phone, text)
	return args.Error(0)
}

type MockRewarder struct {
	mock.Mock
}

func (m *MockRewarder) Reward(ctx context.Context, phone string, amountTSh int64) error {
	args := m.Called(ctx, phone, amountTSh)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) AcquireFinalization(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) ReleaseFinalization(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) StoreOutcome(ctx context.Context, key, text string, ttl time.Duration) error {
	args := m.Called(ctx, key, text, ttl)
	return args.Error(0)
}

func (m *MockCache) Outcome(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

type fixedRefs struct{}

func (fixedRefs) Control(bookingID int64, methodCode string, now time.Time) string {
	return "REF-" + methodCode
}
