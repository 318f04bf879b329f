package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsPgDuplicateError checks if error is a unique constraint violation
func IsPgDuplicateError(err error) bool {
	// 23505 = unique_violation
	return pgCode(err) == "23505"
}

// IsPgNoRowsError checks if error is a "no rows" error
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgForeignKeyError checks if error is a foreign key violation
func IsPgForeignKeyError(err error) bool {
	// 23503 = foreign_key_violation
	return pgCode(err) == "23503"
}

// IsPgInvalidInputError checks if a parameter could not be parsed, e.g. a malformed UUID
func IsPgInvalidInputError(err error) bool {
	// 22P02 = invalid_text_representation
	return pgCode(err) == "22P02"
}

// IsPgRaisedException checks if a trigger or function raised the error
func IsPgRaisedException(err error) bool {
	// P0001 = raise_exception
	return pgCode(err) == "P0001"
}
