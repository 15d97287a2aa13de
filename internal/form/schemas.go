// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package form

import (
	"github.com/olegiv/ocms-school/internal/model"
)

// Form names
const (
	NameAdmission  = "admission"
	NameContact    = "contact"
	NameNewsletter = "newsletter"
	NameArticle    = "article"
)

// GradeOptions are the year groups offered on the admission form.
var GradeOptions = []string{
	"Pre-K", "Kindergarten",
	"Grade 1", "Grade 2", "Grade 3", "Grade 4", "Grade 5", "Grade 6",
	"Grade 7", "Grade 8", "Grade 9", "Grade 10", "Grade 11", "Grade 12",
}

// Admission is the enquiry form for prospective families.
var Admission = model.FormSchema{
	Name:           NameAdmission,
	Title:          "Admission Enquiry",
	SuccessMessage: "Thank you! Our admissions team will contact you within two working days.",
	Fields: []model.FormField{
		{Name: "student_name", Label: "Student name", Type: model.FieldTypeText, Required: true, MaxLength: 100},
		{Name: "parent_name", Label: "Parent name", Type: model.FieldTypeText, Required: true, MaxLength: 100},
		{Name: "email", Label: "Email", Type: model.FieldTypeEmail, Required: true},
		{Name: "phone", Label: "Phone", Type: model.FieldTypePhone, Required: true},
		{Name: "grade", Label: "Grade", Type: model.FieldTypeSelect, Required: true, Options: GradeOptions},
		{Name: "message", Label: "Message", Type: model.FieldTypeTextarea, MaxLength: 1000},
	},
}

// Contact is the general contact form.
var Contact = model.FormSchema{
	Name:           NameContact,
	Title:          "Contact Us",
	SuccessMessage: "Thank you for your message. We will get back to you soon.",
	Fields: []model.FormField{
		{Name: "name", Label: "Name", Type: model.FieldTypeText, Required: true, MaxLength: 100},
		{Name: "email", Label: "Email", Type: model.FieldTypeEmail, Required: true},
		{Name: "phone", Label: "Phone", Type: model.FieldTypePhone},
		{Name: "subject", Label: "Subject", Type: model.FieldTypeText, MaxLength: 150},
		{Name: "message", Label: "Message", Type: model.FieldTypeTextarea, Required: true, MinLength: 10, MaxLength: 2000},
	},
}

// Newsletter is the footer sign-up form.
var Newsletter = model.FormSchema{
	Name:           NameNewsletter,
	Title:          "Newsletter",
	SuccessMessage: "You are subscribed. Watch your inbox for school news.",
	Fields: []model.FormField{
		{Name: "email", Label: "Email", Type: model.FieldTypeEmail, Required: true},
	},
}

// Article is the admin authoring form.
var Article = model.FormSchema{
	Name:           NameArticle,
	Title:          "Article",
	SuccessMessage: "Article saved.",
	Fields: []model.FormField{
		{Name: "title", Label: "Title", Type: model.FieldTypeText, Required: true, MinLength: 3, MaxLength: 150},
		{Name: "category", Label: "Category", Type: model.FieldTypeSelect, Required: true, Options: model.CategoryNames()},
		{Name: "excerpt", Label: "Excerpt", Type: model.FieldTypeTextarea, Required: true, MaxLength: 300},
		{Name: "author", Label: "Author", Type: model.FieldTypeText, Required: true, MaxLength: 100},
		{Name: "tags", Label: "Tags", Type: model.FieldTypeText, MaxLength: 200},
		{Name: "image", Label: "Image URL", Type: model.FieldTypeURL},
		{Name: "content", Label: "Content", Type: model.FieldTypeTextarea, Required: true, MinLength: 10, MaxLength: 20000},
		{Name: "featured", Label: "Featured", Type: model.FieldTypeCheckbox},
	},
}

// Public lists the forms visitors may submit, keyed by name.
var Public = map[string]model.FormSchema{
	NameAdmission:  Admission,
	NameContact:    Contact,
	NameNewsletter: Newsletter,
}

// Lookup returns the public schema with the given name.
func Lookup(name string) (model.FormSchema, bool) {
	s, ok := Public[name]
	return s, ok
}
