// Package command interprets free-text messages from the SMS shortcode.
// Replies are plain display text in the caller's language.
package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Domenick1991/homecare/internal/catalog"
	"github.com/Domenick1991/homecare/internal/domain"
	"github.com/Domenick1991/homecare/internal/service/booking"
	"github.com/Domenick1991/homecare/internal/service/directory"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	verbRegister   = "NISAJILI"
	verbHelp       = "HELP"
	verbServices   = "SERVICES"
	verbStatus     = "STATUS"
	verbMyBookings = "MYBOOKINGS"
	verbLast       = "LAST"
	verbCancel     = "CANCEL"
	verbBalance    = "BALANCE"
	verbPay        = "PAY"
	verbPayAlias   = "LIPA"
	verbLang       = "LANG"
)

const recentLimit = 5

// Message is one inbound shortcode message.
type Message struct {
	From   string
	To     string
	Text   string
	LinkID string
	Date   string
}

type Idempotency interface {
	Once(ctx context.Context, key string, fn func(context.Context) (string, error)) (string, error)
}

type Interpreter struct {
	directory    directory.DirectoryUseCase
	bookings     booking.BookingUseCase
	orchestrator booking.OrchestratorUseCase
	catalog      catalog.Registry
	guard        Idempotency
	logger       *zap.Logger
}

func NewInterpreter(
	dir directory.DirectoryUseCase,
	bookings booking.BookingUseCase,
	orchestrator booking.OrchestratorUseCase,
	reg catalog.Registry,
	guard Idempotency,
	logger *zap.Logger,
) *Interpreter {
	if guard == nil {
		guard = (*booking.Guard)(nil)
	}
	return &Interpreter{
		directory:    dir,
		bookings:     bookings,
		orchestrator: orchestrator,
		catalog:      reg,
		guard:        guard,
		logger:       logger,
	}
}

// Handle classifies msg and returns the reply to send back to the sender.
// It never fails: faults degrade to a generic reply.
func (in *Interpreter) Handle(ctx context.Context, msg Message) string {
	text := strings.TrimSpace(msg.Text)
	upper := strings.ToUpper(text)

	if strings.HasPrefix(upper, verbRegister) {
		return in.register(ctx, msg.From, text[len(verbRegister):])
	}

	client, err := in.directory.Resolve(ctx, msg.From)
	if err != nil {
		in.logger.Error("resolve caller failed", zap.String("phone", msg.From), zap.Error(err))
		return swahili.unavailable
	}
	if client == nil {
		return swahili.notRegistered
	}

	fields := strings.Fields(upper)
	verb, args := "", []string(nil)
	if len(fields) > 0 {
		verb, args = fields[0], fields[1:]
	}

	t := textsFor(client.Lang())
	switch verb {
	case verbHelp:
		return t.help
	case verbServices:
		return in.services(t)
	case verbStatus:
		return in.status(ctx, t, client, args)
	case verbMyBookings:
		return in.recent(ctx, t, client, recentLimit)
	case verbLast:
		return in.recent(ctx, t, client, 1)
	case verbCancel:
		return in.cancel(ctx, t, client, args)
	case verbBalance:
		return in.balance(ctx, t, client)
	case verbPay, verbPayAlias:
		return in.pay(ctx, t, client, args, msg.LinkID)
	case verbLang:
		return in.language(ctx, t, client, args)
	default:
		return t.unknown
	}
}

func (in *Interpreter) register(ctx context.Context, phone, rest string) string {
	name := strings.Join(strings.Fields(rest), " ")
	if name == "" {
		return swahili.registerUsage
	}

	client, err := in.directory.Register(ctx, phone, name)
	if errors.Is(err, domain.ErrAlreadyRegistered) && client == nil {
		// a concurrent registration won the insert
		client, _ = in.directory.Resolve(ctx, phone)
		if client == nil {
			return fmt.Sprintf(swahili.alreadyRegistered, name)
		}
	}
	switch {
	case errors.Is(err, domain.ErrAlreadyRegistered) && client != nil:
		return fmt.Sprintf(textsFor(client.Lang()).alreadyRegistered, client.Name)
	case err != nil:
		in.logger.Error("registration failed", zap.String("phone", phone), zap.Error(err))
		return swahili.unavailable
	}

	in.logger.Info("client registered", zap.Int64("client", client.ID), zap.String("phone", client.Phone))
	return fmt.Sprintf(textsFor(client.Lang()).registered, client.Name)
}

func (in *Interpreter) services(t texts) string {
	lines := lo.Map(in.catalog.Services(), func(s domain.Service, i int) string {
		return fmt.Sprintf("%d. %s - %s", i+1, s.Name, catalog.Money(s.PriceTSh))
	})
	return t.servicesHeader + "\n" + strings.Join(lines, "\n")
}

func (in *Interpreter) status(ctx context.Context, t texts, client *domain.Client, args []string) string {
	id, ok := bookingID(args)
	if !ok {
		return t.statusUsage
	}
	b, err := in.bookings.Get(ctx, client.ID, id)
	if err != nil {
		return in.lookupFailure(t, client, id, err)
	}
	return fmt.Sprintf(t.status, b.ID, b.ServiceName, b.VisitDate, b.VisitTime, b.Address, t.statusLabel(b.Status))
}

func (in *Interpreter) recent(ctx context.Context, t texts, client *domain.Client, limit int) string {
	list, err := in.bookings.Recent(ctx, client.ID, limit)
	if err != nil {
		return in.fault(t, client, "list bookings", err)
	}
	if len(list) == 0 {
		return t.noBookings
	}
	if limit == 1 {
		b := list[0]
		return fmt.Sprintf(t.status, b.ID, b.ServiceName, b.VisitDate, b.VisitTime, b.Address, t.statusLabel(b.Status))
	}
	lines := lo.Map(list, func(b domain.Booking, _ int) string {
		return fmt.Sprintf(t.bookingLine, b.ID, b.ServiceName, b.VisitDate, b.VisitTime, t.statusLabel(b.Status))
	})
	return t.myBookings + "\n" + strings.Join(lines, "\n")
}

func (in *Interpreter) cancel(ctx context.Context, t texts, client *domain.Client, args []string) string {
	id, ok := bookingID(args)
	if !ok {
		return t.cancelUsage
	}
	_, err := in.bookings.Cancel(ctx, client.ID, id)
	switch {
	case err == nil:
		in.logger.Info("booking cancelled", zap.Int64("booking", id), zap.Int64("client", client.ID))
		return fmt.Sprintf(t.cancelled, id)
	case errors.Is(err, booking.ErrCancelled):
		return fmt.Sprintf(t.alreadyCancelled, id)
	case errors.Is(err, booking.ErrCompleted):
		return fmt.Sprintf(t.cannotCancel, id)
	default:
		return in.lookupFailure(t, client, id, err)
	}
}

func (in *Interpreter) balance(ctx context.Context, t texts, client *domain.Client) string {
	total, count, err := in.bookings.Balance(ctx, client.ID)
	if err != nil {
		return in.fault(t, client, "balance", err)
	}
	if count == 0 {
		return t.noPending
	}
	return fmt.Sprintf(t.balance, count, catalog.Money(total))
}

func (in *Interpreter) pay(ctx context.Context, t texts, client *domain.Client, args []string, linkID string) string {
	methods := in.methodList()
	id, ok := bookingID(args)
	if !ok || len(args) < 2 {
		return fmt.Sprintf(t.payUsage, methods)
	}
	method, ok := catalog.MethodAt(in.catalog, args[1])
	if !ok {
		return fmt.Sprintf(t.payInvalid, methods)
	}

	key := ""
	if linkID != "" {
		key = "sms:" + linkID
	}
	reply, err := in.guard.Once(ctx, key, func(ctx context.Context) (string, error) {
		res, err := in.orchestrator.SettleDue(ctx, key, *client, id, method)
		if err != nil {
			return "", err
		}
		p := res.Payment
		return fmt.Sprintf(t.paid, catalog.Money(p.AmountTSh), method.DisplayName, p.BookingID, p.Reference), nil
	})
	switch {
	case err == nil:
		return reply
	case errors.Is(err, domain.ErrNoPendingPayment):
		return fmt.Sprintf(t.payNoPending, id)
	case errors.Is(err, domain.ErrPaymentNotPending):
		return t.alreadyPaid
	case errors.Is(err, booking.ErrInFlight):
		return t.payInFlight
	default:
		return in.fault(t, client, "settle payment", err)
	}
}

func (in *Interpreter) language(ctx context.Context, t texts, client *domain.Client, args []string) string {
	if len(args) == 0 {
		return t.langUsage
	}
	var lang domain.Language
	switch args[0] {
	case "EN":
		lang = domain.LanguageEnglish
	case "SW":
		lang = domain.LanguageSwahili
	default:
		return t.langUsage
	}
	if err := in.directory.SetLanguage(ctx, client, lang); err != nil {
		return in.fault(t, client, "set language", err)
	}
	return textsFor(lang).langChanged
}

func (in *Interpreter) methodList() string {
	lines := lo.Map(in.catalog.PaymentMethods(), func(m domain.PaymentMethod, _ int) string {
		return fmt.Sprintf("%d. %s", m.Ordinal, m.DisplayName)
	})
	return strings.Join(lines, "\n")
}

// lookupFailure separates a booking the caller does not own from a store fault.
func (in *Interpreter) lookupFailure(t texts, client *domain.Client, id int64, err error) string {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Sprintf(t.notFound, id)
	}
	return in.fault(t, client, "booking lookup", err)
}

func (in *Interpreter) fault(t texts, client *domain.Client, op string, err error) string {
	in.logger.Error("command failed",
		zap.String("op", op),
		zap.Int64("client", client.ID),
		zap.Error(err))
	return t.unavailable
}

func bookingID(args []string) (int64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
