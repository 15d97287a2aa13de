// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model contains domain models and constants for the application.
package model

// Form field type constants
const (
	FieldTypeText     = "text"
	FieldTypeEmail    = "email"
	FieldTypePhone    = "phone"
	FieldTypeTextarea = "textarea"
	FieldTypeURL      = "url"
	FieldTypeSelect   = "select"
	FieldTypeCheckbox = "checkbox"
)

// ValidFieldTypes returns all valid form field types.
func ValidFieldTypes() []string {
	return []string{
		FieldTypeText,
		FieldTypeEmail,
		FieldTypePhone,
		FieldTypeTextarea,
		FieldTypeURL,
		FieldTypeSelect,
		FieldTypeCheckbox,
	}
}

// IsValidFieldType checks if a field type is valid.
func IsValidFieldType(fieldType string) bool {
	for _, t := range ValidFieldTypes() {
		if t == fieldType {
			return true
		}
	}
	return false
}

// Default length limits applied when a field does not set MaxLength.
const (
	DefaultTextMaxLength     = 200
	DefaultTextareaMaxLength = 5000
	EmailMaxLength           = 254
	URLMaxLength             = 2048
)

// FormField describes one input of a public or admin form.
type FormField struct {
	Name      string   `json:"name"`
	Label     string   `json:"label"`
	Type      string   `json:"type"`
	Required  bool     `json:"required"`
	MinLength int      `json:"min_length,omitempty"`
	MaxLength int      `json:"max_length,omitempty"`
	Options   []string `json:"options,omitempty"`
}

// Limit returns the maximum rune length stored for the field.
func (f FormField) Limit() int {
	if f.MaxLength > 0 {
		return f.MaxLength
	}
	switch f.Type {
	case FieldTypeEmail:
		return EmailMaxLength
	case FieldTypeURL:
		return URLMaxLength
	case FieldTypeTextarea:
		return DefaultTextareaMaxLength
	default:
		return DefaultTextMaxLength
	}
}

// FormSchema is the ordered field list of a form.
type FormSchema struct {
	Name           string      `json:"name"`
	Title          string      `json:"title"`
	SuccessMessage string      `json:"success_message"`
	Fields         []FormField `json:"fields"`
}

// Field looks up a field by name.
func (s FormSchema) Field(name string) (FormField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FormField{}, false
}

// FieldNames returns field names in schema order.
func (s FormSchema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}
