// Package requests holds the typed inbound payloads and their validation
// rules, decoupled from the HTTP transport.
package requests

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldError pinpoints a single failed constraint.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError carries field-level details so handlers can answer with a
// structured 422 body instead of an opaque string.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Field, f.Rule))
	}
	return "invalid request: " + strings.Join(parts, ", ")
}

type RegisterRequest struct {
	Name string `json:"name" validate:"required,min=2"`
}

type PostMessageRequest struct {
	To   string `json:"to" validate:"required,min=1"`
	Text string `json:"text" validate:"required,min=1"`
	Type string `json:"type" validate:"required,oneof=broadcast private"`
}

type HistoryQuery struct {
	Limit *int `validate:"omitempty,gt=0"`
}

func ValidateRegister(req RegisterRequest) *ValidationError {
	return check(req)
}

func ValidatePostMessage(req PostMessageRequest) *ValidationError {
	return check(req)
}

func ValidateHistory(query HistoryQuery) *ValidationError {
	return check(query)
}

func check(payload any) *ValidationError {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return &ValidationError{Fields: []FieldError{{Field: "request", Rule: err.Error()}}}
	}

	out := &ValidationError{}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}
