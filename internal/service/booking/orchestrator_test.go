package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/homecare/internal/domain"
	"github.com/Domenick1991/homecare/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	testClient = domain.Client{ID: 3, Name: "Amina", Phone: "+255712345678", Language: domain.LanguageEnglish}
	testDraft  = domain.Draft{
		Service:   domain.Service{ID: 2, Name: "Wound Care & Dressing", PriceTSh: 30000},
		VisitDate: "2026-03-01",
		VisitTime: "14:30",
		Address:   "Other",
		Method:    domain.PaymentMethod{Ordinal: 1, Code: "mpesa", DisplayName: "M-Pesa"},
	}
)

func newTestOrchestrator(bookings *MockBookingRepository, payments *MockPaymentRepository, sender *MockSender, rewarder *MockRewarder) *Orchestrator {
	return NewOrchestrator(bookings, payments, fixedRefs{}, sender, rewarder, zap.NewNop(),
		WithIncentive(500),
		WithAlertPhones([]string{"+255700000001"}),
		WithClock(func() time.Time { return time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC) }),
	)
}

func createdWith(id int64) func(args mock.Arguments) {
	return func(args mock.Arguments) {
		b := args.Get(1).(*domain.Booking)
		p := args.Get(2).(*domain.Payment)
		ref := args.Get(3).(repository.ReferenceFunc)
		b.ID = id
		p.ID = id * 10
		p.BookingID = id
		p.Reference = ref(id)
	}
}

func TestOrchestrator_CompleteBooking_Success(t *testing.T) {
	bookings, payments := &MockBookingRepository{}, &MockPaymentRepository{}
	sender, rewarder := &MockSender{}, &MockRewarder{}
	o := newTestOrchestrator(bookings, payments, sender, rewarder)
	ctx := context.Background()

	bookings.On("CreateWithPayment", ctx, mock.AnythingOfType("*domain.Booking"), mock.AnythingOfType("*domain.Payment"), mock.Anything).
		Run(createdWith(12)).Return(true, nil).Once()
	sender.On("Send", ctx, testClient.Phone, "HomeCare: Booking #12 confirmed. Wound Care & Dressing on 2026-03-01 at 14:30, Other.").Return(nil).Once()
	sender.On("Send", ctx, testClient.Phone, "HomeCare: Payment of TSh 30,000 via M-Pesa received for booking #12. Ref: REF-mpesa").Return(nil).Once()
	rewarder.On("Reward", ctx, testClient.Phone, int64(500)).Return(nil).Once()

	res, err := o.CompleteBooking(ctx, "ATUid_1", testClient, testDraft)

	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Equal(t, domain.BookingStatusConfirmed, res.Booking.Status)
	assert.Equal(t, "ATUid_1", res.Booking.SessionID)
	assert.Equal(t, "mpesa", res.Booking.PaymentType)
	assert.Equal(t, domain.PaymentStatusCompleted, res.Payment.Status)
	assert.Equal(t, int64(30000), res.Payment.AmountTSh)
	assert.Equal(t, "REF-mpesa", res.Payment.Reference)

	bookings.AssertExpectations(t)
	sender.AssertExpectations(t)
	rewarder.AssertExpectations(t)
}

func TestOrchestrator_CompleteBooking_NotificationFailureIsSwallowed(t *testing.T) {
	bookings, payments := &MockBookingRepository{}, &MockPaymentRepository{}
	sender, rewarder := &MockSender{}, &MockRewarder{}
	o := newTestOrchestrator(bookings, payments, sender, rewarder)
	ctx := context.Background()

	bookings.On("CreateWithPayment", ctx, mock.Anything, mock.Anything, mock.Anything).Run(createdWith(5)).Return(true, nil).Once()
	sender.On("Send", ctx, testClient.Phone, mock.Anything).Return(errors.New("gateway down")).Twice()
	rewarder.On("Reward", ctx, testClient.Phone, int64(500)).Return(errors.New("no float")).Once()

	res, err := o.CompleteBooking(ctx, "ATUid_2", testClient, testDraft)

	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Booking.ID)
	sender.AssertExpectations(t)
	rewarder.AssertExpectations(t)
}

func TestOrchestrator_CompleteBooking_Replay(t *testing.T) {
	bookings, payments := &MockBookingRepository{}, &MockPaymentRepository{}
	sender, rewarder := &MockSender{}, &MockRewarder{}
	o := newTestOrchestrator(bookings, payments, sender, rewarder)
	ctx := context.Background()

	bookings.On("CreateWithPayment", ctx, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Booking).ID = 12
			args.Get(2).(*domain.Payment).Reference = "MP2026022000124821"
		}).Return(false, nil).Once()

	res, err := o.CompleteBooking(ctx, "ATUid_1", testClient, testDraft)

	require.NoError(t, err)
	assert.True(t, res.Replayed)
	assert.Equal(t, "MP2026022000124821", res.Payment.Reference)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	rewarder.AssertNotCalled(t, "Reward", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrchestrator_CompleteBooking_StoreError(t *testing.T) {
	bookings, payments := &MockBookingRepository{}, &MockPaymentRepository{}
	sender, rewarder := &MockSender{}, &MockRewarder{}
	o := newTestOrchestrator(bookings, payments, sender, rewarder)
	ctx := context.Background()

	bookings.On("CreateWithPayment", ctx, mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("db down")).Once()
	sender.On("SendAlert", ctx, "+255700000001", mock.Anything).Return(nil).Once()

	res, err := o.CompleteBooking(ctx, "ATUid_3", testClient, testDraft)

	assert.Error(t, err)
	assert.Nil(t, res)
	sender.AssertExpectations(t)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

var (
	tigo       = domain.PaymentMethod{Ordinal: 2, Code: "tigopesa", DisplayName: "Tigo Pesa"}
	settled40  = &domain.Payment{ID: 40, BookingID: 8, AmountTSh: 25000, Method: "tigopesa", Status: domain.PaymentStatusCompleted, Reference: "TP1"}
	booking8   = &domain.Booking{ID: 8, ServiceName: "Elderly Care", Status: domain.BookingStatusConfirmed}
	pendingTwo = []domain.Payment{{ID: 40, BookingID: 8}, {ID: 41, BookingID: 9}}
)

func TestOrchestrator_SettleDue_Oldest(t *testing.T) {
	bookings, payments := &MockBookingRepository{}, &MockPaymentRepository{}
	sender, rewarder := &MockSender{}, &MockRewarder{}
	o := newTestOrchestrator(bookings, payments, sender, rewarder)
	ctx := context.Background()

	payments.On("SettledBySession", ctx, "pay:ATUid_1").Return(nil, domain.ErrNotFound).Once()
	payments.On("ListPending", ctx, testClient.ID).Return(pendingTwo, nil).Once()
	payments.On("Settle", ctx, "pay:ATUid_1", int64(40), "tigopesa", mock.Anything).Return(settled40, true, nil).Once()
	bookings.On("GetForClient", ctx, testClient.ID, int64(8)).Return(booking8, nil).Once()
	sender.On("Send", ctx, testClient.Phone, mock.Anything).Return(nil).Twice()

	res, err := o.SettleDue(ctx, "pay:ATUid_1", testClient, 0, tigo)

	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Equal(t, "TP1", res.Payment.Reference)
	assert.Equal(t, int64(8), res.Booking.ID)
	rewarder.AssertNotCalled(t, "Reward", mock.Anything, mock.Anything, mock.Anything)
	payments.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestOrchestrator_SettleDue_ForBooking(t *testing.T) {
	bookings, payments := &MockBookingRepository{}, &MockPaymentRepository{}
	sender := &MockSender{}
	o := newTestOrchestrator(bookings, payments, sender, &MockRewarder{})
	ctx := context.Background()

	payments.On("SettledBySession", ctx, "").Return(nil, domain.ErrNotFound).Once()
	payments.On("GetPendingForBooking", ctx, testClient.ID, int64(8)).Return(&domain.Payment{ID: 40, BookingID: 8}, nil).Once()
	payments.On("Settle", ctx, "", int64(40), "tigopesa", mock.Anything).Return(settled40, true, nil).Once()
	bookings.On("GetForClient", ctx, testClient.ID, int64(8)).Return(booking8, nil).Once()
	sender.On("Send", ctx, testClient.Phone, mock.Anything).Return(nil).Twice()

	res, err := o.SettleDue(ctx, "", testClient, 8, tigo)

	require.NoError(t, err)
	assert.Equal(t, int64(40), res.Payment.ID)
	payments.AssertNotCalled(t, "ListPending", mock.Anything, mock.Anything)

	payments.On("SettledBySession", ctx, "").Return(nil, domain.ErrNotFound).Once()
	payments.On("GetPendingForBooking", ctx, testClient.ID, int64(9)).Return(nil, domain.ErrNotFound).Once()

	_, err = o.SettleDue(ctx, "", testClient, 9, tigo)
	assert.ErrorIs(t, err, domain.ErrNoPendingPayment)
}

func TestOrchestrator_SettleDue_NothingPending(t *testing.T) {
	payments := &MockPaymentRepository{}
	o := newTestOrchestrator(&MockBookingRepository{}, payments, &MockSender{}, &MockRewarder{})
	ctx := context.Background()

	payments.On("SettledBySession", ctx, "pay:S").Return(nil, domain.ErrNotFound).Once()
	payments.On("ListPending", ctx, testClient.ID).Return([]domain.Payment{}, nil).Once()

	_, err := o.SettleDue(ctx, "pay:S", testClient, 0, tigo)

	assert.ErrorIs(t, err, domain.ErrNoPendingPayment)
	payments.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// A redelivered session gets the payment it settled before, even when other
// payments are still pending, and nothing is sent twice.
func TestOrchestrator_SettleDue_ReplaysSession(t *testing.T) {
	bookings, payments := &MockBookingRepository{}, &MockPaymentRepository{}
	sender := &MockSender{}
	o := newTestOrchestrator(bookings, payments, sender, &MockRewarder{})
	ctx := context.Background()

	payments.On("SettledBySession", ctx, "pay:ATUid_1").Return(settled40, nil).Once()
	bookings.On("GetForClient", ctx, testClient.ID, int64(8)).Return(booking8, nil).Once()

	res, err := o.SettleDue(ctx, "pay:ATUid_1", testClient, 0, tigo)

	require.NoError(t, err)
	assert.True(t, res.Replayed)
	assert.Equal(t, int64(40), res.Payment.ID)
	payments.AssertNotCalled(t, "ListPending", mock.Anything, mock.Anything)
	payments.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrchestrator_SettleDue_ConcurrentDeliveryWins(t *testing.T) {
	bookings, payments := &MockBookingRepository{}, &MockPaymentRepository{}
	sender := &MockSender{}
	o := newTestOrchestrator(bookings, payments, sender, &MockRewarder{})
	ctx := context.Background()

	payments.On("SettledBySession", ctx, "pay:ATUid_1").Return(nil, domain.ErrNotFound).Once()
	payments.On("ListPending", ctx, testClient.ID).Return(pendingTwo, nil).Once()
	payments.On("Settle", ctx, "pay:ATUid_1", int64(40), "tigopesa", mock.Anything).Return(settled40, false, nil).Once()
	bookings.On("GetForClient", ctx, testClient.ID, int64(8)).Return(booking8, nil).Once()

	res, err := o.SettleDue(ctx, "pay:ATUid_1", testClient, 0, tigo)

	require.NoError(t, err)
	assert.True(t, res.Replayed)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrchestrator_SettleDue_NotPending(t *testing.T) {
	bookings, payments := &MockBookingRepository{}, &MockPaymentRepository{}
	o := newTestOrchestrator(bookings, payments, &MockSender{}, &MockRewarder{})
	ctx := context.Background()

	payments.On("SettledBySession", ctx, "").Return(nil, domain.ErrNotFound).Once()
	payments.On("GetPendingForBooking", ctx, testClient.ID, int64(8)).Return(&domain.Payment{ID: 40, BookingID: 8}, nil).Once()
	payments.On("Settle", ctx, "", int64(40), "mpesa", mock.Anything).Return(nil, false, domain.ErrPaymentNotPending).Once()

	_, err := o.SettleDue(ctx, "", testClient, 8, testDraft.Method)

	assert.ErrorIs(t, err, domain.ErrPaymentNotPending)
	bookings.AssertNotCalled(t, "GetForClient", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmationTexts_Swahili(t *testing.T) {
	b := &domain.Booking{ID: 4, ServiceName: "Elderly Care", VisitDate: "2026-05-01", VisitTime: "08:00", Address: "Ilala, Dar es Salaam"}
	p := &domain.Payment{BookingID: 4, AmountTSh: 35000, Reference: "AM2026050100041234"}

	assert.Equal(t, "HomeCare: Miadi #4 imethibitishwa. Elderly Care tarehe 2026-05-01 saa 08:00, Ilala, Dar es Salaam.",
		bookingConfirmation(domain.LanguageSwahili, b))
	assert.Equal(t, "HomeCare: Malipo ya TSh 35,000 kwa Airtel Money yamepokelewa kwa miadi #4. Kumb: AM2026050100041234",
		paymentConfirmation(domain.LanguageSwahili, p, "Airtel Money"))
}
