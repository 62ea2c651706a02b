package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"userapp/internal/core/apperror"
)

const uniqueViolation = "23505"

// TranslateError maps pgx failures onto apperror kinds.
func TranslateError(err error, msg string) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.Wrap(apperror.KindNotFound, msg, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperror.Wrap(apperror.KindConstraintViolation, constraintMessage(pgErr.ConstraintName), err)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || pgconn.Timeout(err) {
		return apperror.Wrap(apperror.KindConnectionFailure, msg, err)
	}

	return apperror.Wrap(apperror.KindInternal, msg, err)
}

// constraintMessage turns users_email_unique into "email already exists".
func constraintMessage(constraint string) string {
	switch {
	case constraint == "users_pkey":
		return "id already exists"
	case strings.HasPrefix(constraint, "users_") && strings.HasSuffix(constraint, "_unique"):
		return strings.TrimSuffix(strings.TrimPrefix(constraint, "users_"), "_unique") + " already exists"
	default:
		return "unique constraint violated"
	}
}
