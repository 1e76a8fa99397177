// Package repository provides the PostgreSQL and Redis implementations of
// the domain repository interfaces.
package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/eslsoft/cyberpath/internal/entity"
)

const pgUniqueViolation = "23505"

// storageErr maps driver failures onto the storage sentinel so callers can
// distinguish outages from domain conditions. Not-found and constraint
// conditions are translated at the call sites that know their meaning.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, entity.ErrStorageUnavailable, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func normalizePage(no, size int32) (int32, int32) {
	if no < 1 {
		no = 1
	}
	if size < 1 {
		size = 20
	}
	if size > 200 {
		size = 200
	}
	return no, size
}
