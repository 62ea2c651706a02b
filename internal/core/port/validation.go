package port

import "context"

// Validator checks request DTOs and renders failures as field -> message.
type Validator interface {
	ValidateStruct(ctx context.Context, s interface{}) error
	FormatValidationErrors(err error) map[string]string
}
