package validation

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"

	"userapp/internal/core/apperror"
	"userapp/internal/core/domain"
	"userapp/internal/core/port"
)

// UserLookup is the part of the user service the uniqueness rules need.
type UserLookup interface {
	FindByUserName(ctx context.Context, userName string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByPhoneNumber(ctx context.Context, phoneNumber string) (domain.User, error)
}

// selfIdentified is implemented by update requests; the user it names is
// never a conflict with itself.
type selfIdentified interface {
	SelfID() uuid.UUID
}

type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
	users      UserLookup
}

var _ port.Validator = (*Validator)(nil)

func NewValidator(users UserLookup) *Validator {
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		users:    users,
	}

	english := en.New()
	uni := ut.New(english, english)
	v.translator, _ = uni.GetTranslator("en")

	if err := en_translations.RegisterDefaultTranslations(v.validate, v.translator); err != nil {
		panic(err)
	}

	v.validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}

		return name
	})

	v.registerUniqueRule("uniqueUserName", v.users.FindByUserName)
	v.registerUniqueRule("uniqueEmail", v.users.FindByEmail)
	v.registerUniqueRule("uniquePhoneNumber", v.users.FindByPhoneNumber)

	v.addCustomTranslations()

	return v
}

func (v *Validator) registerUniqueRule(tag string, find func(context.Context, string) (domain.User, error)) {
	err := v.validate.RegisterValidationCtx(tag, func(ctx context.Context, fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}

		existing, err := find(ctx, value)
		if err != nil {
			// Lookup failures other than NotFound surface later from the store.
			return true
		}

		if self, ok := fl.Top().Interface().(selfIdentified); ok && self.SelfID() == existing.ID {
			return true
		}

		return false
	})
	if err != nil {
		panic(err)
	}
}

func (v *Validator) addCustomTranslations() {
	for _, tag := range []string{"uniqueUserName", "uniqueEmail", "uniquePhoneNumber"} {
		v.translate(tag, "{0} already exists")
	}

	v.translate("e164", "{0} must be a valid E.164 phone number")
	v.translate("alphanum", "{0} can only contain letters and numbers")
}

func (v *Validator) translate(tag, text string) {
	_ = v.validate.RegisterTranslation(tag, v.translator, func(ut ut.Translator) error {
		return ut.Add(tag, text, true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T(tag, fe.Field())
		return t
	})
}

// ValidateStruct runs every rule and returns a ValidationFailed error carrying
// all failing fields.
func (v *Validator) ValidateStruct(ctx context.Context, s interface{}) error {
	err := v.validate.StructCtx(ctx, s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperror.Wrap(apperror.KindInvalidArgument, "request cannot be validated", err)
	}

	return apperror.Validation(v.FormatValidationErrors(err))
}

// FormatValidationErrors keeps the first message per field.
func (v *Validator) FormatValidationErrors(err error) map[string]string {
	fields := map[string]string{}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fields
	}

	for _, fieldError := range validationErrors {
		if _, seen := fields[fieldError.Field()]; seen {
			continue
		}

		fields[fieldError.Field()] = fieldError.Translate(v.translator)
	}

	return fields
}
