package errs

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes that map onto client errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
	pgInvalidTextRep      = "22P02"
)

// FromDB classifies an error returned by pgx. entity names the resource for
// the client-facing message, e.g. "patient".
func FromDB(err error, entity string) error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return Wrap(NotFound, capitalize(entity)+" not found", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return Wrap(Conflict, uniqueMessage(entity, pgErr), err)
		case pgForeignKeyViolation:
			return Wrap(InvalidArgument, "referenced record does not exist", err)
		case pgNotNullViolation:
			return Wrap(InvalidArgument, pgErr.ColumnName+" is required", err)
		case pgCheckViolation, pgInvalidTextRep:
			return Wrap(InvalidArgument, "invalid "+entity+" data", err)
		}
	}

	return Wrap(Internal, "database error", err)
}

func uniqueMessage(entity string, pgErr *pgconn.PgError) string {
	if strings.Contains(pgErr.ConstraintName, "email") {
		return "a " + entity + " with this email already exists"
	}
	return "a " + entity + " with this identifier already exists"
}

func capitalize(s string) string {
	if s == "" {
		return "Record"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
