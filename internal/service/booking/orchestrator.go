package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/homecare/internal/catalog"
	"github.com/Domenick1991/homecare/internal/domain"
	"github.com/Domenick1991/homecare/internal/notify"
	"github.com/Domenick1991/homecare/internal/repository"
	"go.uber.org/zap"
)

// OrchestratorUseCase turns a completed menu or command flow into stored
// booking and payment records plus outbound notifications.
type OrchestratorUseCase interface {
	CompleteBooking(ctx context.Context, sessionID string, client domain.Client, draft domain.Draft) (*Result, error)
	// SettleDue pays the client's pending payment for bookingID, or the oldest
	// pending payment when bookingID is 0. A repeated sessionID returns the
	// payment it already settled, with Replayed set.
	SettleDue(ctx context.Context, sessionID string, client domain.Client, bookingID int64, method domain.PaymentMethod) (*Result, error)
	PendingPayments(ctx context.Context, clientID int64) ([]domain.Payment, error)
}

// ReferenceGenerator mints payment control numbers.
type ReferenceGenerator interface {
	Control(bookingID int64, methodCode string, now time.Time) string
}

type Result struct {
	Booking  *domain.Booking
	Payment  *domain.Payment
	Replayed bool
}

type Orchestrator struct {
	bookings     repository.BookingRepository
	payments     repository.PaymentRepository
	refs         ReferenceGenerator
	sender       notify.Sender
	rewarder     notify.Rewarder
	logger       *zap.Logger
	incentiveTSh int64
	alertPhones  []string
	now          func() time.Time
}

type OrchestratorOption func(*Orchestrator)

func WithIncentive(amountTSh int64) OrchestratorOption {
	return func(o *Orchestrator) {
		o.incentiveTSh = amountTSh
	}
}

func WithAlertPhones(phones []string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.alertPhones = phones
	}
}

func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func NewOrchestrator(
	bookings repository.BookingRepository,
	payments repository.PaymentRepository,
	refs ReferenceGenerator,
	sender notify.Sender,
	rewarder notify.Rewarder,
	logger *zap.Logger,
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		bookings: bookings,
		payments: payments,
		refs:     refs,
		sender:   sender,
		rewarder: rewarder,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) CompleteBooking(ctx context.Context, sessionID string, client domain.Client, draft domain.Draft) (*Result, error) {
	b := &domain.Booking{
		ClientID:    client.ID,
		ServiceID:   draft.Service.ID,
		ServiceName: draft.Service.Name,
		VisitDate:   draft.VisitDate,
		VisitTime:   draft.VisitTime,
		Address:     draft.Address,
		Status:      domain.BookingStatusConfirmed,
		PaymentType: draft.Method.Code,
		SessionID:   sessionID,
	}
	p := &domain.Payment{
		AmountTSh: draft.Service.PriceTSh,
		Method:    draft.Method.Code,
		Status:    domain.PaymentStatusCompleted,
	}

	now := o.now()
	created, err := o.bookings.CreateWithPayment(ctx, b, p, func(bookingID int64) string {
		return o.refs.Control(bookingID, draft.Method.Code, now)
	})
	if err != nil {
		o.alert(ctx, fmt.Sprintf("booking finalization failed for %s (session %s): %v", client.Phone, sessionID, err))
		return nil, fmt.Errorf("create booking: %w", err)
	}

	if !created {
		o.logger.Info("replayed booking finalization",
			zap.String("session", sessionID),
			zap.Int64("booking", b.ID))
		return &Result{Booking: b, Payment: p, Replayed: true}, nil
	}

	o.logger.Info("booking created",
		zap.Int64("booking", b.ID),
		zap.Int64("client", client.ID),
		zap.String("reference", p.Reference))

	o.notify(ctx, client, bookingConfirmation(client.Lang(), b))
	o.notify(ctx, client, paymentConfirmation(client.Lang(), p, o.methodName(draft.Method)))
	if o.rewarder != nil && o.incentiveTSh > 0 {
		if err := o.rewarder.Reward(ctx, client.Phone, o.incentiveTSh); err != nil {
			o.logger.Warn("incentive failed", zap.String("phone", client.Phone), zap.Error(err))
		}
	}

	return &Result{Booking: b, Payment: p}, nil
}

func (o *Orchestrator) SettleDue(ctx context.Context, sessionID string, client domain.Client, bookingID int64, method domain.PaymentMethod) (*Result, error) {
	prior, err := o.payments.SettledBySession(ctx, sessionID)
	switch {
	case err == nil:
		return o.replaySettlement(ctx, sessionID, client, prior)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("lookup settlement for %s: %w", sessionID, err)
	}

	due, err := o.duePayment(ctx, client.ID, bookingID)
	if err != nil {
		return nil, err
	}

	now := o.now()
	p, settled, err := o.payments.Settle(ctx, sessionID, due.ID, method.Code, func(bookingID int64) string {
		return o.refs.Control(bookingID, method.Code, now)
	})
	if err != nil {
		return nil, fmt.Errorf("settle payment %d: %w", due.ID, err)
	}
	if !settled {
		return o.replaySettlement(ctx, sessionID, client, p)
	}

	b, err := o.bookings.GetForClient(ctx, client.ID, p.BookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking %d: %w", p.BookingID, err)
	}

	o.logger.Info("payment settled",
		zap.Int64("payment", p.ID),
		zap.Int64("booking", b.ID),
		zap.String("session", sessionID),
		zap.String("reference", p.Reference))

	o.notify(ctx, client, bookingConfirmation(client.Lang(), b))
	o.notify(ctx, client, paymentConfirmation(client.Lang(), p, o.methodName(method)))

	return &Result{Booking: b, Payment: p}, nil
}

// duePayment picks the payment to settle. bookingID 0 means the oldest.
func (o *Orchestrator) duePayment(ctx context.Context, clientID, bookingID int64) (*domain.Payment, error) {
	if bookingID != 0 {
		p, err := o.payments.GetPendingForBooking(ctx, clientID, bookingID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNoPendingPayment
		}
		return p, err
	}

	pending, err := o.payments.ListPending(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list pending payments: %w", err)
	}
	if len(pending) == 0 {
		return nil, domain.ErrNoPendingPayment
	}
	return &pending[0], nil
}

func (o *Orchestrator) replaySettlement(ctx context.Context, sessionID string, client domain.Client, p *domain.Payment) (*Result, error) {
	b, err := o.bookings.GetForClient(ctx, client.ID, p.BookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking %d: %w", p.BookingID, err)
	}
	o.logger.Info("replayed payment settlement",
		zap.String("session", sessionID),
		zap.Int64("payment", p.ID))
	return &Result{Booking: b, Payment: p, Replayed: true}, nil
}

func (o *Orchestrator) PendingPayments(ctx context.Context, clientID int64) ([]domain.Payment, error) {
	return o.payments.ListPending(ctx, clientID)
}

func (o *Orchestrator) methodName(m domain.PaymentMethod) string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Code
}

func (o *Orchestrator) notify(ctx context.Context, client domain.Client, text string) {
	if o.sender == nil {
		return
	}
	if err := o.sender.Send(ctx, client.Phone, text); err != nil {
		o.logger.Warn("notification failed", zap.String("phone", client.Phone), zap.Error(err))
	}
}

func (o *Orchestrator) alert(ctx context.Context, text string) {
	if o.sender == nil {
		return
	}
	for _, phone := range o.alertPhones {
		if err := o.sender.SendAlert(ctx, phone, text); err != nil {
			o.logger.Warn("alert failed", zap.String("phone", phone), zap.Error(err))
		}
	}
}

func bookingConfirmation(lang domain.Language, b *domain.Booking) string {
	if lang == domain.LanguageEnglish {
		return fmt.Sprintf("HomeCare: Booking #%d confirmed. %s on %s at %s, %s.",
			b.ID, b.ServiceName, b.VisitDate, b.VisitTime, b.Address)
	}
	return fmt.Sprintf("HomeCare: Miadi #%d imethibitishwa. %s tarehe %s saa %s, %s.",
		b.ID, b.ServiceName, b.VisitDate, b.VisitTime, b.Address)
}

func paymentConfirmation(lang domain.Language, p *domain.Payment, method string) string {
	if lang == domain.LanguageEnglish {
		return fmt.Sprintf("HomeCare: Payment of %s via %s received for booking #%d. Ref: %s",
			catalog.Money(p.AmountTSh), method, p.BookingID, p.Reference)
	}
	return fmt.Sprintf("HomeCare: Malipo ya %s kwa %s yamepokelewa kwa miadi #%d. Kumb: %s",
		catalog.Money(p.AmountTSh), method, p.BookingID, p.Reference)
}

var _ OrchestratorUseCase = (*Orchestrator)(nil)
