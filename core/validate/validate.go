// Package validate enforces the input contract of the merge pipeline.
//
// Violations are collected rather than reported one at a time, so a caller
// sees every bad paragraph or image in a single error.
package validate

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gaurav-prasanna/pagemerge/core"
)

// ErrInvalidInput is wrapped by every validation failure.
var ErrInvalidInput = errors.New("invalid input")

// FieldError describes one offending field.
type FieldError struct {
	Field   string
	Value   any
	Message string
}

// Error omits the value when none was captured.
func (e FieldError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// Error is a non-empty list of field errors.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *Error) Unwrap() error {
	return ErrInvalidInput
}

// Validator collects field errors.
type Validator struct {
	errs []FieldError
}

// Check records a FieldError when ok is false.
func (v *Validator) Check(ok bool, field string, value any, message string) *Validator {
	if !ok {
		v.errs = append(v.errs, FieldError{Field: field, Value: value, Message: message})
	}
	return v
}

// Err returns nil when nothing was recorded.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return &Error{Fields: v.errs}
}

// Inputs checks paragraphs and images against the input contract.
func Inputs(paragraphs []core.Paragraph, images []core.ImageRef) error {
	v := &Validator{}
	for i, p := range paragraphs {
		v.Check(p.PageNum >= 1, fmt.Sprintf("paragraphs[%d].page_num", i), p.PageNum, "must be >= 1")
		v.Check(isFinite(p.Y0), fmt.Sprintf("paragraphs[%d].y0", i), p.Y0, "must be a finite number")
	}
	for i, img := range images {
		v.Check(img.PageNum >= 1, fmt.Sprintf("images[%d].page_num", i), img.PageNum, "must be >= 1")
		v.Check(isFinite(img.Y0), fmt.Sprintf("images[%d].y0", i), img.Y0, "must be a finite number")
		v.Check(strings.TrimSpace(img.Path) != "", fmt.Sprintf("images[%d].path", i), img.Path, "is required")
	}
	return v.Err()
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
