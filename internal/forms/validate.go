// ABOUTME: Shared validator with English messages for every form
// ABOUTME: Reports the first failing field as a ValidationError

package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// ValidationError is a client-side rejection; no request was sent
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a form rejection
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	initOnce sync.Once
	validate *validator.Validate
	trans    ut.Translator
)

// messages replaces the generic translation for field.tag pairs the user sees most
var messages = map[string]string{
	"title.required":    "Title must be at least 3 characters",
	"title.min":         "Title must be at least 3 characters",
	"title.max":         "Title must be at most 200 characters",
	"description.max":   "Description must be at most 1000 characters",
	"option.max":        "Option must be at most 500 characters",
	"options.min":       "Add at least 2 options",
	"options.max":       "A poll can have at most 10 options",
	"username.required": "Username is required",
	"password.required": "Password is required",
	"email.email":       "Enter a valid email address",
}

func setup() {
	initOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		english := en.New()
		uni := ut.New(english, english)
		trans, _ = uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)

		// report json names so messages and Field match the wire format
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
}

// check validates v and converts the first failure into a ValidationError
func check(v any) error {
	setup()
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate form: %w", err)
	}

	fe := fieldErrs[0]
	field := fe.Field()
	// dive errors are reported as options[2]; attribute them to the option list
	if i := strings.IndexByte(field, '['); i > 0 {
		field = field[:i]
	}
	if msg, ok := messages[field+"."+fe.Tag()]; ok {
		return &ValidationError{Field: field, Message: msg}
	}
	return &ValidationError{Field: field, Message: fe.Translate(trans)}
}

// checkVar validates a single value under the given field name
func checkVar(field string, value any, tag string) error {
	setup()
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate %s: %w", field, err)
	}
	fe := fieldErrs[0]
	if msg, ok := messages[field+"."+fe.Tag()]; ok {
		return &ValidationError{Field: field, Message: msg}
	}
	// Var errors carry no field name for the translation to use
	return &ValidationError{Field: field, Message: fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())}
}
