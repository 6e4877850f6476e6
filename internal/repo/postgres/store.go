package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/J2WFFDev/custody-manager/internal/crypto"
	"github.com/J2WFFDev/custody-manager/internal/usecase"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx. Repos are
// written against it so the same code runs pooled or inside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	Pool   *pgxpool.Pool
	Cipher *crypto.FieldCipher
}

func NewStore(dsn string, cipher *crypto.FieldCipher) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{Pool: pool, Cipher: cipher}, nil
}

func (s *Store) Close() {
	if s == nil || s.Pool == nil {
		return
	}
	s.Pool.Close()
}

func (s *Store) Repos() usecase.Repos {
	return s.repos(s.Pool)
}

// WithinTx runs fn with repositories bound to one transaction. Any error from
// fn rolls everything back.
func (s *Store) WithinTx(ctx context.Context, fn func(usecase.Repos) error) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(s.repos(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) repos(q Querier) usecase.Repos {
	return usecase.Repos{
		Kits:        &KitRepo{DB: q, Cipher: s.Cipher},
		Events:      &EventRepo{DB: q},
		Approvals:   &ApprovalRepo{DB: q},
		Maintenance: &MaintenanceRepo{DB: q},
		Items:       &ItemRepo{DB: q, Cipher: s.Cipher},
	}
}

// isUniqueViolation reports whether err is a Postgres unique_violation. The
// partial unique indexes turn duplicate pending requests and duplicate open
// maintenance windows into this error class.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
