package request

import (
	"github.com/google/uuid"

	"userapp/internal/core/domain"
)

// UserCreateRequest is the body of POST /api/v1/users. The unique* tags are
// registered by the HTTP validation layer and check the store.
type UserCreateRequest struct {
	UserName    string `json:"userName" validate:"required,min=4,max=16,alphanum,uniqueUserName"`
	Email       string `json:"email" validate:"omitempty,email,max=255,uniqueEmail"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,e164,uniquePhoneNumber"`
	Password    string `json:"password" validate:"required,min=4,max=16"`
}

func (r UserCreateRequest) ToEntity() domain.User {
	return domain.User{
		UserName:    r.UserName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Password:    r.Password,
	}
}

// UserUpdateRequest is the body of PUT /api/v1/users/{id}. Uniqueness checks
// ignore the user identified by ID.
type UserUpdateRequest struct {
	ID          string `json:"id" validate:"required,uuid"`
	UserName    string `json:"userName" validate:"required,min=4,max=16,alphanum,uniqueUserName"`
	Email       string `json:"email" validate:"omitempty,email,max=255,uniqueEmail"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,e164,uniquePhoneNumber"`
	Password    string `json:"password" validate:"required,min=4,max=16"`
}

// SelfID is the id excluded from uniqueness checks.
func (r UserUpdateRequest) SelfID() uuid.UUID {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return uuid.Nil
	}

	return id
}

func (r UserUpdateRequest) ToEntity() domain.User {
	return domain.User{
		ID:          r.SelfID(),
		UserName:    r.UserName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Password:    r.Password,
	}
}
