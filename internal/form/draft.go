// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package form holds the form schemas of the site and the per-instance
// draft state that is sanitized on every write.
package form

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/olegiv/ocms-school/internal/model"
	"github.com/olegiv/ocms-school/internal/sanitize"
	"github.com/olegiv/ocms-school/internal/validate"
)

// ErrUnknownField is returned when a value is set for a field the schema
// does not declare.
var ErrUnknownField = errors.New("unknown form field")

// Draft is the unsaved state of one form instance: sanitized field values
// and the current field errors. It is safe for concurrent use.
type Draft struct {
	schema model.FormSchema

	mu     sync.Mutex
	values map[string]string
	errors validate.ErrorMap
}

// NewDraft creates an empty draft for schema.
func NewDraft(schema model.FormSchema) *Draft {
	d := &Draft{schema: schema}
	d.reset()
	return d
}

// Schema returns the schema the draft is bound to.
func (d *Draft) Schema() model.FormSchema {
	return d.schema
}

// Set sanitizes raw and stores it as the value of the named field.
// Any error previously reported for the field is cleared.
func (d *Draft) Set(name, raw string) error {
	f, ok := d.schema.Field(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	value := sanitize.Text(raw, f.Limit())

	d.mu.Lock()
	defer d.mu.Unlock()
	d.values[name] = value
	delete(d.errors, name)
	return nil
}

// SetAll stores every value whose key the schema declares and ignores the rest.
func (d *Draft) SetAll(values map[string]string) {
	for _, f := range d.schema.Fields {
		if raw, ok := values[f.Name]; ok {
			_ = d.Set(f.Name, raw)
		}
	}
}

// Value returns the sanitized value of the named field.
func (d *Draft) Value(name string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.values[name]
}

// Values returns a copy of all field values.
func (d *Draft) Values() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return maps.Clone(d.values)
}

// Errors returns a copy of the current field errors.
func (d *Draft) Errors() validate.ErrorMap {
	d.mu.Lock()
	defer d.mu.Unlock()
	return maps.Clone(d.errors)
}

// Validate runs the schema rules over the current values, records the
// resulting errors and returns them.
func (d *Draft) Validate() validate.ErrorMap {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.errors = validate.Validate(d.schema, d.values)
	return maps.Clone(d.errors)
}

// Blur validates a single field for early feedback and records the result.
func (d *Draft) Blur(name string) string {
	f, ok := d.schema.Field(name)
	if !ok {
		return ""
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	msg := validate.Field(f, d.values[name])
	if msg == "" {
		delete(d.errors, name)
	} else {
		d.errors[name] = msg
	}
	return msg
}

// Reset restores every field to its empty default and clears the errors.
func (d *Draft) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
}

func (d *Draft) reset() {
	d.values = make(map[string]string, len(d.schema.Fields))
	for _, f := range d.schema.Fields {
		d.values[f.Name] = ""
	}
	d.errors = make(validate.ErrorMap)
}

// Payload returns the final clean payload handed to a submit function.
// Emails and URLs get their stricter cleaning here; empty optional fields
// are omitted.
func (d *Draft) Payload() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.payloadLocked()
}

// Check validates the current values and builds the payload from the same
// values under one lock, so the payload is exactly what was validated.
// The payload is nil when the values are invalid.
func (d *Draft) Check() (validate.ErrorMap, map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.errors = validate.Validate(d.schema, d.values)
	if !d.errors.OK() {
		return maps.Clone(d.errors), nil
	}
	return maps.Clone(d.errors), d.payloadLocked()
}

func (d *Draft) payloadLocked() map[string]string {
	payload := make(map[string]string, len(d.values))
	for _, f := range d.schema.Fields {
		v := d.values[f.Name]
		switch f.Type {
		case model.FieldTypeEmail:
			v = sanitize.Email(v)
		case model.FieldTypeURL:
			v = sanitize.URLOrEmpty(v)
		}
		if v != "" {
			payload[f.Name] = v
		}
	}
	return payload
}
