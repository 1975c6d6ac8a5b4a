package validate

import (
	"errors"
	"fmt"
	"strings"

	"peer-lending-ledger/pkg/id"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidInput = errors.New("invalid input")

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error lists every failed field; it matches ErrInvalidInput.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(parts, "; "))
}

func (e *Error) Is(target error) bool { return target == ErrInvalidInput }

type Validator struct{ v *validator.Validate }

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// public ids = 32-char lowercase hex
	_ = v.RegisterValidation("hex32", func(fl validator.FieldLevel) bool {
		return id.Valid(fl.Field().String())
	})
	// repayment cadence
	_ = v.RegisterValidation("rate", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "weekly" || s == "monthly"
	})

	return &Validator{v: v}
}

// Struct validates i and returns an *Error on failure.
func (cv *Validator) Struct(i any) error {
	if err := cv.v.Struct(i); err != nil {
		return &Error{Fields: toFieldErrors(err)}
	}
	return nil
}

// Map validator.ValidationErrors → []FieldError with readable messages.
func toFieldErrors(err error) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "hex32":
			out = append(out, FieldError{Field: field, Message: "must be 32-char lowercase hex"})
		case "rate":
			out = append(out, FieldError{Field: field, Message: "must be weekly or monthly"})
		case "gt":
			out = append(out, FieldError{Field: field, Message: "must be greater than " + e.Param()})
		case "gte":
			out = append(out, FieldError{Field: field, Message: "must be at least " + e.Param()})
		case "gtefield":
			out = append(out, FieldError{Field: field, Message: "must not be before " + e.Param()})
		case "max":
			out = append(out, FieldError{Field: field, Message: "must be at most " + e.Param() + " characters"})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
