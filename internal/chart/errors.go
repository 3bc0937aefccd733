package chart

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound marks errors for users that do not exist upstream.
	ErrNotFound = errors.New("user not found")

	// ErrUpstream marks network, timeout and malformed-response failures
	// from the upstream API.
	ErrUpstream = errors.New("upstream request failed")

	// ErrValidation marks request validation failures.
	ErrValidation = errors.New("invalid request")
)

// ValidationError carries per-field messages for a rejected request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Fields[name]
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Field returns the message for one field, or "".
func (e *ValidationError) Field(name string) string {
	return e.Fields[name]
}

// Message returns the user-facing text for an error returned by a chart
// load.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "User not found"
	case errors.Is(err, ErrValidation):
		return err.Error()
	default:
		return "Something went wrong while talking to Last.fm"
	}
}

// newValidationError translates validator errors into field messages keyed
// by the form field name.
func newValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validation failed")
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[formFieldName(fe.Field())] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "format":
		return "must be a supported grid shape"
	default:
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}

func formFieldName(structField string) string {
	return strings.ToLower(structField)
}
