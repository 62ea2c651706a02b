package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUser_HasID(t *testing.T) {
	t.Run("should return false for the zero id", func(t *testing.T) {
		user := User{}

		assert.False(t, user.HasID())
	})

	t.Run("should return true when an id is assigned", func(t *testing.T) {
		user := User{ID: uuid.New()}

		assert.True(t, user.HasID())
	})
}

func TestUser_ToMap(t *testing.T) {
	t.Run("should store absent optional fields as NULL", func(t *testing.T) {
		user := User{UserName: "user1", Password: "secret"}

		values := user.ToMap()

		assert.Equal(t, "user1", values[ColumnUserName])
		assert.Nil(t, values[ColumnEmail])
		assert.Nil(t, values[ColumnPhoneNumber])
		assert.NotContains(t, values, ColumnID)
		assert.NotContains(t, values, ColumnCreatedAt)
	})

	t.Run("should keep present optional fields", func(t *testing.T) {
		user := User{UserName: "user1", Email: "user1@gmail.com", PhoneNumber: "+6282246924990"}

		values := user.ToMap()

		assert.Equal(t, "user1@gmail.com", values[ColumnEmail])
		assert.Equal(t, "+6282246924990", values[ColumnPhoneNumber])
	})
}
