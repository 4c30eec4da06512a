package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Classify maps a persistence failure to the stable classification string
// carried in the client error envelope's "type" field.
func Classify(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return "UniqueViolation"
		case "23503":
			return "ForeignKeyViolation"
		case "23502":
			return "NotNullViolation"
		case "22P02":
			return "InvalidTextRepresentation"
		case "22007", "22008":
			return "InvalidDatetimeFormat"
		}
		return "DatabaseError"
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "ConnectionError"
	}
	return "PersistenceError"
}
