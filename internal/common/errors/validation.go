package errors

import (
	"fmt"
	"strings"
)

// ParameterType classifies which part of the request a violation refers to.
type ParameterType string

const (
	ParameterTypeEntity ParameterType = "entity"
	ParameterTypeHeader ParameterType = "header"
	ParameterTypeQuery  ParameterType = "query"
)

// Violation is one structured validation failure.
type Violation struct {
	ParameterName string        `json:"name"`
	ParameterType ParameterType `json:"type"`
	Reason        string        `json:"reason"`
	InvalidValue  interface{}   `json:"invalid_value"`
}

// ValidationError carries the full violation set, never just the first.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		names = append(names, v.ParameterName)
	}
	return fmt.Sprintf("validation failed for parameters [%s]", strings.Join(names, ", "))
}

// NewValidationError wraps a non-empty violation set.
func NewValidationError(violations []Violation) *ValidationError {
	return &ValidationError{Violations: violations}
}

// ProblemDetails is the error response document written at the HTTP boundary.
type ProblemDetails struct {
	Type              string      `json:"type"`
	Title             string      `json:"title"`
	Status            int         `json:"status"`
	Detail            string      `json:"detail"`
	Instance          string      `json:"instance"`
	InvalidParameters []Violation `json:"invalid_parameters,omitempty"`
}
