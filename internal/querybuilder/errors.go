package querybuilder

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors returned when a caller-supplied field set filters down to
// nothing against the allow-list. These indicate a programming error on the
// calling side, not a storage fault.
var (
	ErrNoValidColumns    = errors.New("no valid columns provided")
	ErrNoValidFields     = errors.New("no valid fields provided")
	ErrNoValidConditions = errors.New("no valid conditions provided")
)

// uniqueViolationCode is the PostgreSQL error code raised when an insert or
// update breaks a uniqueness constraint.
const uniqueViolationCode = "23505"

// DatabaseError wraps any storage-layer fault with the table and operation
// it occurred on plus the underlying PostgreSQL error code when available.
type DatabaseError struct {
	Table          string
	Operation      string
	Code           string
	ConstraintName string
	Err            error
}

func (e *DatabaseError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s on table %q failed with code %s: %v", e.Operation, e.Table, e.Code, e.Err)
	}
	return fmt.Sprintf("%s on table %q failed: %v", e.Operation, e.Table, e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// wrapError converts a storage fault into a *DatabaseError, extracting the
// PostgreSQL code and constraint name when the driver supplies them.
func wrapError(table, operation string, err error) error {
	dbErr := &DatabaseError{Table: table, Operation: operation, Err: err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		dbErr.Code = pgErr.Code
		dbErr.ConstraintName = pgErr.ConstraintName
	}
	return dbErr
}

// IsUniqueViolation reports whether the error stems from a uniqueness
// constraint. ConstraintName on the extracted DatabaseError tells which one.
func IsUniqueViolation(err error) bool {
	var dbErr *DatabaseError
	return errors.As(err, &dbErr) && dbErr.Code == uniqueViolationCode
}

// ConstraintName returns the violated constraint's name, or "" when the
// error is not a constraint violation.
func ConstraintName(err error) string {
	var dbErr *DatabaseError
	if errors.As(err, &dbErr) {
		return dbErr.ConstraintName
	}
	return ""
}
