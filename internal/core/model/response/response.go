package response

import (
	"time"

	"userapp/internal/core/domain"
)

type UserDetail struct {
	ID          string    `json:"id"`
	UserName    string    `json:"userName"`
	Email       string    `json:"email,omitempty"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewUserDetail(user domain.User) UserDetail {
	return UserDetail{
		ID:          user.ID.String(),
		UserName:    user.UserName,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

func NewUserDetails(users []domain.User) []UserDetail {
	details := make([]UserDetail, 0, len(users))
	for _, user := range users {
		details = append(details, NewUserDetail(user))
	}

	return details
}

type PageInfo struct {
	Limit           int  `json:"limit"`
	PageNumber      int  `json:"pageNumber"`
	Count           int  `json:"count"`
	TotalCount      int  `json:"totalCount"`
	TotalPages      int  `json:"totalPages"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"`
}

type UserList struct {
	PageInfo PageInfo     `json:"pageInfo"`
	Results  []UserDetail `json:"results"`
}

func NewUserList(page domain.PageResult) UserList {
	return UserList{
		PageInfo: PageInfo{
			Limit:           page.Limit,
			PageNumber:      page.PageNumber,
			Count:           page.Count,
			TotalCount:      page.TotalCount,
			TotalPages:      page.TotalPages,
			HasPreviousPage: page.HasPreviousPage,
			HasNextPage:     page.HasNextPage,
		},
		Results: NewUserDetails(page.Results),
	}
}

type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Details any               `json:"details,omitempty"`
}

type ErrorResponse struct {
	Errors ErrorBody `json:"errors"`
}

type ErrorDetails struct {
	Error string `json:"error"`
	Type  string `json:"type"`
	Stack string `json:"stack,omitempty"`
}

type HomeResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
