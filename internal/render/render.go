// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render turns article content blocks into safe HTML for the
// public blog.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/olegiv/ocms-school/internal/model"
	"github.com/olegiv/ocms-school/internal/sanitize"
)

// Article is an article prepared for display.
type Article struct {
	model.Article
	LeadHTML string `json:"lead_html"`
	BodyHTML string `json:"body_html"`
}

// Renderer converts block text (inline Markdown) to sanitized HTML.
type Renderer struct {
	md goldmark.Markdown
}

// New creates a Renderer.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough)),
	}
}

// Article renders a.Content. Lead blocks go to LeadHTML, headings and
// paragraphs to BodyHTML, both passed through the HTML sanitizer.
func (r *Renderer) Article(a model.Article) (Article, error) {
	var lead, body strings.Builder
	for _, b := range a.Content {
		switch b.Type {
		case model.BlockLead:
			lead.WriteString(b.Text)
			lead.WriteString("\n\n")
		case model.BlockHeading:
			body.WriteString("## ")
			body.WriteString(strings.ReplaceAll(b.Text, "\n", " "))
			body.WriteString("\n\n")
		default:
			body.WriteString(b.Text)
			body.WriteString("\n\n")
		}
	}

	leadHTML, err := r.markdown(lead.String())
	if err != nil {
		return Article{}, fmt.Errorf("rendering lead of %s: %w", a.ID, err)
	}
	bodyHTML, err := r.markdown(body.String())
	if err != nil {
		return Article{}, fmt.Errorf("rendering body of %s: %w", a.ID, err)
	}

	a.Image = sanitize.URLOrEmpty(a.Image)
	return Article{Article: a, LeadHTML: leadHTML, BodyHTML: bodyHTML}, nil
}

// markdown converts src to sanitized HTML.
func (r *Renderer) markdown(src string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return sanitize.HTML(buf.String()), nil
}
