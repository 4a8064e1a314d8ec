package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/homecare/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const bookingColumns = `id, client_id, service_id, service_name, visit_date, visit_time, address, status, payment_type, nurse_id, COALESCE(session_id, ''), created_at, updated_at`

// ReferenceFunc derives a payment control reference once the booking id is known.
type ReferenceFunc func(bookingID int64) string

type BookingRepository interface {
	// CreateWithPayment stores a booking and its payment in one transaction.
	// When a booking with the same session id already exists, both records are
	// loaded into b and p instead and created is false.
	CreateWithPayment(ctx context.Context, b *domain.Booking, p *domain.Payment, ref ReferenceFunc) (created bool, err error)
	GetForClient(ctx context.Context, clientID, bookingID int64) (*domain.Booking, error)
	ListForClient(ctx context.Context, clientID int64, limit int) ([]domain.Booking, error)
	// CancelIfOpen cancels the client's booking unless it is already cancelled
	// or completed. When nothing changed it returns the booking as stored and
	// cancelled is false.
	CancelIfOpen(ctx context.Context, clientID, bookingID int64) (b *domain.Booking, cancelled bool, err error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) CreateWithPayment(ctx context.Context, b *domain.Booking, p *domain.Payment, ref ReferenceFunc) (bool, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `INSERT INTO bookings (client_id, service_id, service_name, visit_date, visit_time, address, status, payment_type, session_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''))
		ON CONFLICT (session_id) DO NOTHING
		RETURNING id, created_at, updated_at`,
		b.ClientID, b.ServiceID, b.ServiceName, b.VisitDate, b.VisitTime, b.Address, b.Status, b.PaymentType, b.SessionID).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, r.loadBySession(ctx, tx, b, p)
	}
	if err != nil {
		return false, err
	}

	p.BookingID = b.ID
	p.ClientID = b.ClientID
	p.ServiceName = b.ServiceName
	p.Reference = ref(b.ID)
	if err := tx.QueryRow(ctx, `INSERT INTO payments (booking_id, client_id, amount_tsh, method, status, reference)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		p.BookingID, p.ClientID, p.AmountTSh, p.Method, p.Status, p.Reference).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}

func (r *PGBookingRepository) loadBySession(ctx context.Context, tx pgx.Tx, b *domain.Booking, p *domain.Payment) error {
	existing, err := scanBooking(tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE session_id=$1`, b.SessionID))
	if err != nil {
		return err
	}
	*b = *existing

	row := tx.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments p JOIN bookings b ON b.id = p.booking_id
		WHERE p.booking_id=$1 ORDER BY p.id DESC LIMIT 1`, b.ID)
	existingPayment, err := scanPayment(row)
	if err != nil {
		return err
	}
	*p = *existingPayment
	return nil
}

func (r *PGBookingRepository) GetForClient(ctx context.Context, clientID, bookingID int64) (*domain.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1 AND client_id=$2`, bookingID, clientID))
}

func (r *PGBookingRepository) ListForClient(ctx context.Context, clientID int64, limit int) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE client_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2`, clientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) CancelIfOpen(ctx context.Context, clientID, bookingID int64) (*domain.Booking, bool, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now()
		WHERE id=$2 AND client_id=$3 AND status NOT IN ($4, $5)
		RETURNING `+bookingColumns,
		domain.BookingStatusCancelled, bookingID, clientID, domain.BookingStatusCancelled, domain.BookingStatusCompleted))
	if err == nil {
		return b, true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	current, err := r.GetForClient(ctx, clientID, bookingID)
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.ClientID, &b.ServiceID, &b.ServiceName, &b.VisitDate, &b.VisitTime, &b.Address, &b.Status, &b.PaymentType, &b.NurseID, &b.SessionID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
