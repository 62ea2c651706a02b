package mysql

import (
	"database/sql/driver"
	"errors"
	"strings"

	drv "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"userapp/internal/core/apperror"
)

const duplicateEntry = 1062

// TranslateError maps gorm and driver failures onto apperror kinds.
func TranslateError(err error, msg string) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.Wrap(apperror.KindNotFound, msg, err)
	}

	var mysqlErr *drv.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == duplicateEntry {
		return apperror.Wrap(apperror.KindConstraintViolation, constraintMessage(mysqlErr.Message), err)
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Wrap(apperror.KindConstraintViolation, constraintMessage(err.Error()), err)
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, drv.ErrInvalidConn) {
		return apperror.Wrap(apperror.KindConnectionFailure, msg, err)
	}

	return apperror.Wrap(apperror.KindInternal, msg, err)
}

// constraintMessage turns "Duplicate entry 'x' for key 'users.users_email_unique'"
// into "email already exists".
func constraintMessage(text string) string {
	_, key, found := strings.Cut(text, "for key '")
	if !found {
		return "unique constraint violated"
	}

	key = strings.TrimSuffix(key, "'")
	if _, name, ok := strings.Cut(key, "."); ok {
		key = name
	}

	switch {
	case key == "PRIMARY":
		return "id already exists"
	case strings.HasPrefix(key, "users_") && strings.HasSuffix(key, "_unique"):
		return strings.TrimSuffix(strings.TrimPrefix(key, "users_"), "_unique") + " already exists"
	default:
		return "unique constraint violated"
	}
}
