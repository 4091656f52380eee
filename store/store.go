// Package store persists users and notes. Every exported operation runs in
// its own transaction, acquired when the call starts and released before it
// returns on every path.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"notes-backend/db"
)

type Store struct {
	conn    *sql.DB
	dialect db.Dialect
	now     func() time.Time
}

func New(conn *sql.DB, dialect db.Dialect) *Store {
	return &Store{conn: conn, dialect: dialect, now: time.Now}
}

// WithClock replaces the time source used for created/updated stamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Users() *Users { return &Users{s: s} }

func (s *Store) Notes() *Notes { return &Notes{s: s} }

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// stamp returns the current time at storage precision.
func (s *Store) stamp() time.Time {
	return db.FromMicros(db.ToMicros(s.now()))
}

// insertID runs an INSERT and returns the new row id.
func (s *Store) insertID(ctx context.Context, tx *sql.Tx, query string, args ...any) (int64, error) {
	if s.dialect.SupportsReturning() {
		var id int64
		err := tx.QueryRowContext(ctx, s.dialect.Rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}
	res, err := tx.ExecContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

type scanner interface {
	Scan(dest ...any) error
}
