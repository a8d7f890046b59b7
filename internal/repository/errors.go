// Package repository issues parameterized SQL against MySQL for members,
// time slots, themes and reservations. Driver errors that carry domain
// meaning are translated into the sentinel values below so services can
// branch on them with errors.Is.
package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a looked-up or deleted row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique index
// (MySQL error 1062).
var ErrDuplicate = errors.New("duplicate entry")

// ErrReferenced is returned when a delete is blocked by a foreign key from
// another table (MySQL error 1451).
var ErrReferenced = errors.New("row is referenced")

// ErrMissingReference is returned when an insert points at a parent row that
// does not exist (MySQL error 1452).
var ErrMissingReference = errors.New("referenced row does not exist")

const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

// mapError translates driver errors into repository sentinels, keeping the
// driver error in the chain.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDuplicateEntry:
			return fmt.Errorf("%s: %w: %w", op, ErrDuplicate, err)
		case mysqlRowIsReferenced:
			return fmt.Errorf("%s: %w: %w", op, ErrReferenced, err)
		case mysqlNoReferencedRow:
			return fmt.Errorf("%s: %w: %w", op, ErrMissingReference, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// requireAffected turns a zero-row DELETE into ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
