package sqlite

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"

	"userapp/internal/core/apperror"
)

// TranslateError maps driver failures onto apperror kinds. msg describes the
// operation and becomes the error message.
func TranslateError(err error, msg string) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return apperror.Wrap(apperror.KindNotFound, msg, err)
	}

	if errors.Is(err, sql.ErrConnDone) {
		return apperror.Wrap(apperror.KindConnectionFailure, msg, err)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch {
		case sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique,
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return apperror.Wrap(apperror.KindConstraintViolation, constraintMessage(sqliteErr.Error()), err)
		case sqliteErr.Code == sqlite3.ErrCantOpen,
			sqliteErr.Code == sqlite3.ErrNotADB,
			sqliteErr.Code == sqlite3.ErrIoErr:
			return apperror.Wrap(apperror.KindConnectionFailure, msg, err)
		}
	}

	return apperror.Wrap(apperror.KindInternal, msg, err)
}

// constraintMessage turns "UNIQUE constraint failed: users.email" into
// "email already exists".
func constraintMessage(text string) string {
	_, columns, found := strings.Cut(text, "failed: ")
	if !found {
		return "unique constraint violated"
	}

	column, _, _ := strings.Cut(columns, ",")
	if _, name, ok := strings.Cut(column, "."); ok {
		column = name
	}

	return strings.TrimSpace(column) + " already exists"
}
