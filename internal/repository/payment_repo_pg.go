package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/homecare/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentColumns = `p.id, p.booking_id, p.client_id, p.amount_tsh, p.method, p.status, p.reference, b.service_name, p.created_at, p.updated_at`

type PaymentRepository interface {
	// ListPending returns the client's unpaid payments, oldest first.
	ListPending(ctx context.Context, clientID int64) ([]domain.Payment, error)
	GetPendingForBooking(ctx context.Context, clientID, bookingID int64) (*domain.Payment, error)
	// SettledBySession returns the payment settled under sessionID.
	SettledBySession(ctx context.Context, sessionID string) (*domain.Payment, error)
	// Settle completes a pending payment and confirms its booking in one
	// transaction, recording sessionID as its settlement key. If sessionID
	// already settled a payment, that payment is returned and settled is
	// false. It fails with domain.ErrPaymentNotPending if the payment was
	// settled by another session.
	Settle(ctx context.Context, sessionID string, paymentID int64, method string, ref ReferenceFunc) (p *domain.Payment, settled bool, err error)
}

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

func (r *PGPaymentRepository) ListPending(ctx context.Context, clientID int64) ([]domain.Payment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+paymentColumns+` FROM payments p JOIN bookings b ON b.id = p.booking_id
		WHERE p.client_id=$1 AND p.status=$2 AND b.status <> $3
		ORDER BY p.created_at, p.id`, clientID, domain.PaymentStatusPending, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func (r *PGPaymentRepository) GetPendingForBooking(ctx context.Context, clientID, bookingID int64) (*domain.Payment, error) {
	return scanPayment(r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments p JOIN bookings b ON b.id = p.booking_id
		WHERE p.client_id=$1 AND p.booking_id=$2 AND p.status=$3
		ORDER BY p.id LIMIT 1`, clientID, bookingID, domain.PaymentStatusPending))
}

func (r *PGPaymentRepository) SettledBySession(ctx context.Context, sessionID string) (*domain.Payment, error) {
	if sessionID == "" {
		return nil, domain.ErrNotFound
	}
	return scanPayment(r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments p JOIN bookings b ON b.id = p.booking_id
		WHERE p.settled_session_id=$1`, sessionID))
}

func (r *PGPaymentRepository) Settle(ctx context.Context, sessionID string, paymentID int64, method string, ref ReferenceFunc) (*domain.Payment, bool, error) {
	p, err := r.settle(ctx, sessionID, paymentID, method, ref)
	if err == nil {
		return p, true, nil
	}

	// A concurrent delivery of the same session may have won the race.
	if errors.Is(err, domain.ErrPaymentNotPending) || isUniqueViolation(err) {
		prior, lookupErr := r.SettledBySession(ctx, sessionID)
		if lookupErr == nil {
			return prior, false, nil
		}
		if !errors.Is(lookupErr, domain.ErrNotFound) {
			return nil, false, lookupErr
		}
	}
	if isUniqueViolation(err) {
		return nil, false, domain.ErrPaymentNotPending
	}
	return nil, false, err
}

func (r *PGPaymentRepository) settle(ctx context.Context, sessionID string, paymentID int64, method string, ref ReferenceFunc) (*domain.Payment, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var bookingID int64
	if err := tx.QueryRow(ctx, `SELECT booking_id FROM payments WHERE id=$1 AND status=$2 FOR UPDATE`,
		paymentID, domain.PaymentStatusPending).Scan(&bookingID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotPending
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE payments SET status=$1, method=$2, reference=$3, settled_session_id=NULLIF($4, ''), updated_at=now()
		WHERE id=$5`,
		domain.PaymentStatusCompleted, method, ref(bookingID), sessionID, paymentID); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `UPDATE bookings SET status=$1, payment_type=$2, updated_at=now() WHERE id=$3`,
		domain.BookingStatusConfirmed, method, bookingID); err != nil {
		return nil, err
	}

	p, err := scanPayment(tx.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments p JOIN bookings b ON b.id = p.booking_id WHERE p.id=$1`, paymentID))
	if err != nil {
		return nil, err
	}
	return p, tx.Commit(ctx)
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	if err := row.Scan(&p.ID, &p.BookingID, &p.ClientID, &p.AmountTSh, &p.Method, &p.Status, &p.Reference, &p.ServiceName, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
