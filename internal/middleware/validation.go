package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes bounds every JSON request body.
const MaxBodyBytes = 1 << 20

// ValidationError is a client input error safe to return to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report JSON field names rather than Go field names.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks v against its validate struct tags.
func Validate(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Message: err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return &ValidationError{Message: strings.Join(msgs, "; ")}
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s item(s)", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s exceeds maximum length %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// DecodeJSON decodes a bounded JSON body into dst and validates it.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return &ValidationError{Message: "request body is empty"}
		case errors.As(err, &maxErr):
			return &ValidationError{Message: "request body too large"}
		default:
			return &ValidationError{Message: "invalid request body"}
		}
	}
	return Validate(dst)
}
