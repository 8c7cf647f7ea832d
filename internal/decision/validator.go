// internal/decision/validator.go
package decision

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"loan-intake/internal/sanitize"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// RequestValidator checks a Request before it is sent or after it is received.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()

	if err := v.RegisterValidation("letters", validateLetters); err != nil {
		panic(fmt.Sprintf("register 'letters' validation: %v", err))
	}
	if err := v.RegisterValidation("amount", validateAmount); err != nil {
		panic(fmt.Sprintf("register 'amount' validation: %v", err))
	}

	return &RequestValidator{validate: v}
}

func validateLetters(fl validator.FieldLevel) bool {
	return sanitize.IsName(fl.Field().String())
}

func validateAmount(fl validator.FieldLevel) bool {
	value, err := strconv.Atoi(fl.Field().String())
	if err != nil {
		return false
	}
	return value >= 0 && value <= sanitize.MaxRequestedAmount
}

func (v *RequestValidator) Validate(req *Request) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	switch req.PersonType {
	case "PF":
		if req.CPF == "" || req.CNPJ != "" {
			return ValidationErrors{{Field: "CPF", Message: "individual requests carry only a cpf"}}
		}
	case "PJ":
		if req.CNPJ == "" || req.CPF != "" {
			return ValidationErrors{{Field: "CNPJ", Message: "organization requests carry only a cnpj"}}
		}
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(errs))
	for _, e := range errs {
		out = append(out, ValidationError{
			Field:   e.Field(),
			Message: fieldMessage(e),
		})
	}
	return out
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", e.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", e.Param())
	case "len":
		return fmt.Sprintf("must have exactly %s digits", e.Param())
	case "numeric":
		return "must contain only digits"
	case "letters":
		return "must contain only letters and spaces"
	case "amount":
		return fmt.Sprintf("must be between 0 and %d", sanitize.MaxRequestedAmount)
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", e.Param())
	default:
		return fmt.Sprintf("failed '%s' validation", e.Tag())
	}
}
