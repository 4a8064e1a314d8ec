package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/homecare/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ClientRepository interface {
	GetByPhone(ctx context.Context, phone string) (*domain.Client, error)
	Create(ctx context.Context, client *domain.Client) error
	UpdateLanguage(ctx context.Context, id int64, lang domain.Language) error
}

type PGClientRepository struct {
	db *pgxpool.Pool
}

func NewClientRepository(db *pgxpool.Pool) ClientRepository {
	return &PGClientRepository{db: db}
}

func (r *PGClientRepository) GetByPhone(ctx context.Context, phone string) (*domain.Client, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, phone, language, created_at FROM clients WHERE phone=$1`, phone)
	var c domain.Client
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Language, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGClientRepository) Create(ctx context.Context, client *domain.Client) error {
	err := r.db.QueryRow(ctx, `INSERT INTO clients (name, phone, language) VALUES ($1, $2, $3) RETURNING id, created_at`,
		client.Name, client.Phone, client.Language).Scan(&client.ID, &client.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyRegistered
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (r *PGClientRepository) UpdateLanguage(ctx context.Context, id int64, lang domain.Language) error {
	cmd, err := r.db.Exec(ctx, `UPDATE clients SET language=$1 WHERE id=$2`, lang, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ ClientRepository = (*PGClientRepository)(nil)
