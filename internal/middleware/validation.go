package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9. ()-]{7,25}$`)
	registerOnce sync.Once
	registerErr  error
)

var fieldMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"future":   "must be in the future",
	"past":     "must be in the past",
	"phone":    "must be a valid phone number",
	"oneof":    "must be one of: %s",
	"min":      "must be at least %s",
	"max":      "must be at most %s",
}

// RegisterValidators installs the custom tags on gin's validator and makes
// error fields report their json names. Safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("unexpected validator engine")
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		custom := map[string]validator.Func{
			"future": timeAfterNow,
			"past":   timeBeforeNow,
			"phone":  phoneNumber,
		}
		for tag, fn := range custom {
			if err := v.RegisterValidation(tag, fn); err != nil {
				registerErr = fmt.Errorf("failed to register %s validator: %w", tag, err)
				return
			}
		}
	})
	return registerErr
}

func timeAfterNow(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	return ok && t.After(time.Now())
}

func timeBeforeNow(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	return ok && t.Before(time.Now())
}

func phoneNumber(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

// ValidationMessage turns a binding error into a single readable sentence.
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, e := range verrs {
			parts = append(parts, fieldMessage(e))
		}
		return strings.Join(parts, "; ")
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var timeErr *time.ParseError
	switch {
	case errors.As(err, &typeErr):
		return fmt.Sprintf("%s has an invalid type", typeErr.Field)
	case errors.As(err, &syntaxErr), errors.As(err, &timeErr):
		return "Malformed request body"
	}
	return "Invalid request: " + err.Error()
}

func fieldMessage(e validator.FieldError) string {
	tmpl, ok := fieldMessages[e.Tag()]
	if !ok {
		return fmt.Sprintf("%s is invalid", e.Field())
	}
	if strings.Contains(tmpl, "%s") {
		tmpl = fmt.Sprintf(tmpl, e.Param())
	}
	return e.Field() + " " + tmpl
}
