package factory

import (
	"fmt"
	"sync/atomic"

	fab "github.com/Goldziher/fabricator"
	"github.com/google/uuid"
)

var sequence atomic.Int64

// NewUser builds a T with unique, valid user fields. T is any struct with
// the field names of domain.User or the request DTOs; customData wins over
// the generated values.
func NewUser[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	n := sequence.Add(1)

	defaults := map[string]any{
		"ID":          uuid.New(),
		"UserName":    fmt.Sprintf("user%04d", n),
		"Email":       fmt.Sprintf("user%04d@example.com", n),
		"PhoneNumber": fmt.Sprintf("+62822%08d", n),
		"Password":    "secret123",
	}

	for _, data := range customData {
		for key, value := range data {
			defaults[key] = value
		}
	}

	return instance.Build(defaults)
}
