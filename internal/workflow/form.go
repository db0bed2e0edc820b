// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRequired marks a required field left blank.
var ErrRequired = errors.New("is required")

// Field is one input of a submission form.
type Field struct {
	Name     string
	Value    string
	Required bool
	// Check runs on non blank values.
	Check func(string) error
}

// FieldError names the field that blocked a submission.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Form is an ordered set of fields.
type Form []Field

// Validate returns a *FieldError for the first invalid field, in order.
func (f Form) Validate() error {
	for _, field := range f {
		v := strings.TrimSpace(field.Value)
		if v == "" {
			if field.Required {
				return &FieldError{Field: field.Name, Err: ErrRequired}
			}
			continue
		}
		if field.Check != nil {
			if err := field.Check(v); err != nil {
				return &FieldError{Field: field.Name, Err: err}
			}
		}
	}
	return nil
}

// Value is the trimmed value of the named field.
func (f Form) Value(name string) string {
	for _, field := range f {
		if field.Name == name {
			return strings.TrimSpace(field.Value)
		}
	}
	return ""
}
