package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the only resource of the API. Password holds the bcrypt hash once
// the user has been created.
type User struct {
	ID          uuid.UUID
	UserName    string
	Email       string
	PhoneNumber string
	Password    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Column names of the users table.
const (
	ColumnID          = "id"
	ColumnUserName    = "user_name"
	ColumnEmail       = "email"
	ColumnPhoneNumber = "phone_number"
	ColumnPassword    = "password"
	ColumnCreatedAt   = "created_at"
	ColumnUpdatedAt   = "updated_at"
)

var (
	// SearchableColumns are matched by the free-text search of the list endpoint.
	SearchableColumns = []string{ColumnUserName, ColumnEmail, ColumnPhoneNumber}

	// SortableColumns may be used as orderByKey.
	SortableColumns = []string{ColumnID, ColumnUserName, ColumnEmail, ColumnPhoneNumber, ColumnCreatedAt, ColumnUpdatedAt}

	// LookupColumns may be used as FindOne criteria.
	LookupColumns = []string{ColumnID, ColumnUserName, ColumnEmail, ColumnPhoneNumber}
)

func (u *User) HasID() bool {
	return u.ID != uuid.Nil
}

func (u *User) ToMap() map[string]interface{} {
	return map[string]interface{}{
		ColumnUserName:    u.UserName,
		ColumnEmail:       NullIfEmpty(u.Email),
		ColumnPhoneNumber: NullIfEmpty(u.PhoneNumber),
		ColumnPassword:    u.Password,
		ColumnUpdatedAt:   u.UpdatedAt,
	}
}

// NullIfEmpty maps an absent optional column to SQL NULL so that unique
// indexes accept any number of users without that value.
func NullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}

	return value
}
