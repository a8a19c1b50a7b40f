package user

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"fixiestore/internal/domain"
	"fixiestore/internal/repository/pgutil"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id::text, email, password_hash, COALESCE(full_name, ''), is_admin, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	q := `
INSERT INTO users (email, password_hash, full_name, is_admin)
VALUES ($1, $2, NULLIF($3, ''), $4)
RETURNING ` + userColumns
	return r.scanUser(r.pool.QueryRow(ctx, q, strings.ToLower(u.Email), u.PasswordHash, u.FullName, u.IsAdmin))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	q := "SELECT " + userColumns + "\nFROM users\nWHERE lower(email) = lower($1)\nLIMIT 1"
	return r.scanUser(r.pool.QueryRow(ctx, q, email))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	q := "SELECT " + userColumns + "\nFROM users\nWHERE id = $1\nLIMIT 1"
	return r.scanUser(r.pool.QueryRow(ctx, q, id))
}

// SetAdmin grants or revokes the admin flag. Used by the seed command.
func (r *postgresRepo) SetAdmin(ctx context.Context, email string, admin bool) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE users SET is_admin = $2 WHERE lower(email) = lower($1)`, email, admin)
	if err != nil {
		r.logger.Printf("user repo: set admin email=%s error=%v", email, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("user repo: set admin email=%s admin=%t", email, admin)
	return nil
}

func (r *postgresRepo) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows), pgutil.IsInvalidInput(err):
			return nil, domain.ErrNotFound
		case pgutil.IsUniqueViolation(err):
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("user repo: scan error=%v", err)
		return nil, err
	}
	return &u, nil
}
