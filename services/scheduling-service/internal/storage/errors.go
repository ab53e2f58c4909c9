package storage

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound      = errors.New("storage: record not found")
	ErrDuplicateSlot = errors.New("storage: slot already booked")
)

// IsConflict reports whether err is a duplicate-slot failure, either the
// in-memory sentinel or a Postgres unique violation on the slot index.
func IsConflict(err error) bool {
	if errors.Is(err, ErrDuplicateSlot) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, pgx.ErrNoRows)
}
