// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package validate checks sanitized form values against declarative field rules.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/olegiv/ocms-school/internal/model"
	"github.com/olegiv/ocms-school/internal/sanitize"
)

// Error messages
const (
	MsgInvalidEmail  = "Invalid email"
	MsgInvalidPhone  = "Invalid phone number"
	MsgInvalidOption = "Invalid selection"
)

// phoneRe accepts digits and common separators with an optional leading +.
var phoneRe = regexp.MustCompile(`^\+?[0-9 ()./-]{6,20}$`)

// minPhoneDigits rejects values made only of separators.
const minPhoneDigits = 6

// ErrorMap maps a field name to its validation message.
// An empty map means the values can be submitted.
type ErrorMap map[string]string

// OK reports whether there are no errors.
func (m ErrorMap) OK() bool {
	return len(m) == 0
}

// FirstField returns the first invalid field in schema order, or "" when valid.
func (m ErrorMap) FirstField(schema model.FormSchema) string {
	for _, f := range schema.Fields {
		if _, ok := m[f.Name]; ok {
			return f.Name
		}
	}
	return ""
}

// Validate runs every field rule of schema against values and returns the
// messages keyed by field name. It never modifies values.
func Validate(schema model.FormSchema, values map[string]string) ErrorMap {
	errs := make(ErrorMap)
	for _, f := range schema.Fields {
		if msg := Field(f, values[f.Name]); msg != "" {
			errs[f.Name] = msg
		}
	}
	return errs
}

// Field validates a single value. It returns "" when the value is acceptable.
// Use it for early feedback when a field loses focus.
func Field(f model.FormField, value string) string {
	err := validation.Validate(strings.TrimSpace(value), rulesFor(f)...)
	if err == nil {
		return ""
	}
	var verr validation.Error
	if errors.As(err, &verr) {
		return verr.Error()
	}
	return err.Error()
}

// rulesFor translates a field declaration into ozzo-validation rules.
// Format rules skip empty values, so optional fields may be left blank.
func rulesFor(f model.FormField) []validation.Rule {
	label := f.Label
	if label == "" {
		label = f.Name
	}

	var rules []validation.Rule
	if f.Required {
		rules = append(rules, validation.Required.Error(fmt.Sprintf("%s is required", label)))
	}

	switch f.Type {
	case model.FieldTypeEmail:
		rules = append(rules, validation.By(emailRule))
	case model.FieldTypePhone:
		rules = append(rules, validation.By(phoneRule))
	case model.FieldTypeSelect:
		if len(f.Options) > 0 {
			opts := make([]interface{}, len(f.Options))
			for i, o := range f.Options {
				opts[i] = o
			}
			rules = append(rules, validation.In(opts...).Error(MsgInvalidOption))
		}
	}

	if f.MinLength > 0 {
		rules = append(rules, validation.RuneLength(f.MinLength, 0).
			Error(fmt.Sprintf("%s must be at least %d characters", label, f.MinLength)))
	}
	if f.MaxLength > 0 {
		rules = append(rules, validation.RuneLength(0, f.MaxLength).
			Error(fmt.Sprintf("%s must be no more than %d characters", label, f.MaxLength)))
	}
	return rules
}

func emailRule(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if sanitize.Email(s) == "" {
		return validation.NewError("validation_invalid_email", MsgInvalidEmail)
	}
	return nil
}

func phoneRule(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if !phoneRe.MatchString(s) || countDigits(s) < minPhoneDigits {
		return validation.NewError("validation_invalid_phone", MsgInvalidPhone)
	}
	return nil
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
