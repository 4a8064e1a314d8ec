// Package ussd decodes the menu gateway's cumulative buffer into a position in
// the booking/payment decision tree and renders the next screen. Nothing is
// written until the final segment of a session has been validated.
package ussd

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/homecare/internal/catalog"
	"github.com/Domenick1991/homecare/internal/domain"
	"github.com/Domenick1991/homecare/internal/service/booking"
	"go.uber.org/zap"
)

const (
	branchBook = "1"
	branchPay  = "2"
)

const (
	msgUnavailable = "Service temporarily unavailable. Please try again later."
	msgInFlight    = "Your request is being processed. You will receive an SMS shortly."
	msgNoPending   = "You have no pending payments."
	msgAlreadyPaid = "This payment has already been completed."
)

type Request struct {
	SessionID string
	Phone     string
	Text      string
	// Client is nil for an unregistered caller.
	Client *domain.Client
}

// Idempotency runs fn at most once per key and replays its reply afterwards.
type Idempotency interface {
	Once(ctx context.Context, key string, fn func(context.Context) (string, error)) (string, error)
}

type Machine struct {
	catalog      catalog.Registry
	orchestrator booking.OrchestratorUseCase
	guard        Idempotency
	logger       *zap.Logger
	shortcode    string
}

func NewMachine(reg catalog.Registry, orchestrator booking.OrchestratorUseCase, guard Idempotency, logger *zap.Logger, shortcode string) *Machine {
	if guard == nil {
		guard = (*booking.Guard)(nil)
	}
	return &Machine{
		catalog:      reg,
		orchestrator: orchestrator,
		guard:        guard,
		logger:       logger,
		shortcode:    shortcode,
	}
}

// Render maps one gateway callback to the screen to show.
func (m *Machine) Render(ctx context.Context, req Request) Screen {
	if req.Client == nil {
		return m.registrationPrompt()
	}

	segs := Segments(req.Text)
	if len(segs) == 0 {
		return continueWith(
			fmt.Sprintf("Welcome %s to HomeCare", req.Client.Name),
			"1. Book a nurse visit",
			"2. Pay for a visit",
		)
	}

	switch segs[0] {
	case branchBook:
		return m.renderBook(ctx, req, segs[1:])
	case branchPay:
		return m.renderPay(ctx, req, segs[1:])
	default:
		return end(errChoice.Error())
	}
}

func (m *Machine) registrationPrompt() Screen {
	hint := "SMS NISAJILI <your name>"
	if m.shortcode != "" {
		hint += " to " + m.shortcode
	}
	return end("Welcome to HomeCare. Your number is not registered.", hint+" to register.")
}

// renderBook walks the "book" steps over the caller's inputs. The first step
// with no input left renders its prompt; once every step has consumed an
// input the draft is finalized.
func (m *Machine) renderBook(ctx context.Context, req Request, inputs []string) Screen {
	d := &draft{}
	var deferred error
	next := 0

	for _, st := range bookSteps {
		if st.skip != nil && st.skip(d) {
			continue
		}
		if next == len(inputs) {
			return continueWith(st.prompt(m.catalog, d))
		}
		if err := st.consume(m.catalog, d, inputs[next]); err != nil {
			if !st.lazy {
				// an earlier deferred failure is reported first
				if deferred != nil {
					return end(deferred.Error())
				}
				return end(err.Error())
			}
			if deferred == nil {
				deferred = err
			}
		}
		next++
	}

	if deferred != nil {
		return end(deferred.Error())
	}
	return m.finalizeBooking(ctx, req, d.toDomain())
}

func (m *Machine) finalizeBooking(ctx context.Context, req Request, dr domain.Draft) Screen {
	text, err := m.guard.Once(ctx, "book:"+req.SessionID, func(ctx context.Context) (string, error) {
		res, err := m.orchestrator.CompleteBooking(ctx, req.SessionID, *req.Client, dr)
		if err != nil {
			return "", err
		}
		return m.bookingReceipt(res), nil
	})
	if err != nil {
		return m.failure(req, err)
	}
	return end(text)
}

// renderPay shows the oldest pending payment at count 1 and settles it once a
// method is chosen. The settlement itself picks the payment inside the guard,
// so a redelivered callback replays its receipt instead of paying the next one.
func (m *Machine) renderPay(ctx context.Context, req Request, inputs []string) Screen {
	if len(inputs) == 0 {
		return m.payPrompt(ctx, req)
	}

	method, ok := catalog.MethodAt(m.catalog, inputs[0])
	if !ok {
		return end(errMethod.Error())
	}

	key := "pay:" + req.SessionID
	text, err := m.guard.Once(ctx, key, func(ctx context.Context) (string, error) {
		res, err := m.orchestrator.SettleDue(ctx, key, *req.Client, 0, method)
		if err != nil {
			return "", err
		}
		return m.paymentReceipt(res), nil
	})
	if err != nil {
		return m.failure(req, err)
	}
	return end(text)
}

func (m *Machine) payPrompt(ctx context.Context, req Request) Screen {
	pending, err := m.orchestrator.PendingPayments(ctx, req.Client.ID)
	if err != nil {
		return m.failure(req, err)
	}
	if len(pending) == 0 {
		return end(msgNoPending)
	}

	due := pending[0]
	lines := []string{fmt.Sprintf("Pay booking #%d %s: %s", due.BookingID, due.ServiceName, catalog.Money(due.AmountTSh))}
	if len(pending) > 1 {
		lines = append(lines, fmt.Sprintf("(%d more pending)", len(pending)-1))
	}
	lines = append(lines, promptMethods(m.catalog, nil))
	return continueWith(lines...)
}

func (m *Machine) bookingReceipt(res *booking.Result) string {
	b, p := res.Booking, res.Payment
	return fmt.Sprintf("Booking #%d confirmed.\n%s\n%s %s, %s\nPaid %s via %s\nRef: %s",
		b.ID, b.ServiceName, b.VisitDate, b.VisitTime, b.Address,
		catalog.Money(p.AmountTSh), m.methodName(p.Method), p.Reference)
}

func (m *Machine) paymentReceipt(res *booking.Result) string {
	p := res.Payment
	return fmt.Sprintf("Payment received for booking #%d.\nPaid %s via %s\nRef: %s",
		p.BookingID, catalog.Money(p.AmountTSh), m.methodName(p.Method), p.Reference)
}

func (m *Machine) methodName(code string) string {
	if method, ok := catalog.MethodByCode(m.catalog, code); ok {
		return method.DisplayName
	}
	return code
}

// failure maps finalization errors to a terminal screen: domain outcomes get
// their own text, anything else the generic fault message.
func (m *Machine) failure(req Request, err error) Screen {
	switch {
	case errors.Is(err, booking.ErrInFlight):
		return end(msgInFlight)
	case errors.Is(err, domain.ErrPaymentNotPending):
		return end(msgAlreadyPaid)
	case errors.Is(err, domain.ErrNoPendingPayment):
		return end(msgNoPending)
	}
	m.logger.Error("menu finalization failed",
		zap.String("session", req.SessionID),
		zap.String("phone", req.Phone),
		zap.Error(err))
	return end(msgUnavailable)
}
