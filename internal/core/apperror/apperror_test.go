package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Run("should resolve the kind through wrapping", func(t *testing.T) {
		err := fmt.Errorf("service: %w", NotFound("user not found"))

		assert.Equal(t, KindNotFound, KindOf(err))
		assert.True(t, IsKind(err, KindNotFound))
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.False(t, errors.Is(err, ErrConflict))
	})

	t.Run("should fall back to internal for foreign errors", func(t *testing.T) {
		assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
		assert.False(t, IsKind(nil, KindInternal))
	})
}

func TestError_Message(t *testing.T) {
	cause := errors.New("duplicate key")

	assert.Equal(t, "user exists: duplicate key", Wrap(KindConstraintViolation, "user exists", cause).Error())
	assert.Equal(t, "duplicate key", (&Error{Kind: KindInternal, Err: cause}).Error())
	assert.Equal(t, "not_found", (&Error{Kind: KindNotFound}).Error())
	assert.ErrorIs(t, Wrap(KindConstraintViolation, "user exists", cause), cause)
}

func TestValidation(t *testing.T) {
	err := Validation(map[string]string{"userName": "too short"})

	assert.Equal(t, KindValidationFailed, err.Kind)
	assert.Equal(t, "too short", err.Fields["userName"])
	assert.True(t, errors.Is(err, ErrValidationFailed))
}
