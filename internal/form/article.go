// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package form

import (
	"fmt"
	"strings"

	"github.com/olegiv/ocms-school/internal/model"
)

// headingPrefix marks a heading line in article content.
const headingPrefix = "## "

// ArticleFromPayload builds an article from a validated article form
// payload. Status, slug and identifier are left for the store to assign.
func ArticleFromPayload(payload map[string]string) (model.Article, error) {
	category, ok := model.ParseCategory(payload["category"])
	if !ok {
		return model.Article{}, fmt.Errorf("invalid category %q", payload["category"])
	}
	return model.Article{
		Title:    payload["title"],
		Category: category,
		Excerpt:  payload["excerpt"],
		Author:   payload["author"],
		Tags:     SplitTags(payload["tags"]),
		Image:    payload["image"],
		Content:  ParseContent(payload["content"]),
		Featured: IsChecked(payload["featured"]),
	}, nil
}

// ArticlePatchFromPayload builds a patch replacing every editable field.
func ArticlePatchFromPayload(payload map[string]string) (model.ArticlePatch, error) {
	a, err := ArticleFromPayload(payload)
	if err != nil {
		return model.ArticlePatch{}, err
	}
	return model.ArticlePatch{
		Title:    &a.Title,
		Category: &a.Category,
		Excerpt:  &a.Excerpt,
		Author:   &a.Author,
		Tags:     &a.Tags,
		Image:    &a.Image,
		Content:  &a.Content,
		Featured: &a.Featured,
	}, nil
}

// ArticleValues converts an article back into form values for editing.
func ArticleValues(a model.Article) map[string]string {
	featured := ""
	if a.Featured {
		featured = "on"
	}
	return map[string]string{
		"title":    a.Title,
		"category": string(a.Category),
		"excerpt":  a.Excerpt,
		"author":   a.Author,
		"tags":     strings.Join(a.Tags, ", "),
		"image":    a.Image,
		"content":  ContentText(a.Content),
		"featured": featured,
	}
}

// SplitTags splits a comma-separated tag list.
func SplitTags(s string) []string {
	return model.NormalizeTags(strings.Split(s, ","))
}

// IsChecked interprets a checkbox value.
func IsChecked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}

// ParseContent splits text into blocks. Paragraphs are separated by blank
// lines, a line starting with "## " is a heading, and the first paragraph
// becomes the lead.
func ParseContent(text string) []model.Block {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var blocks []model.Block
	var para []string
	leadDone := false

	flush := func() {
		if len(para) == 0 {
			return
		}
		typ := model.BlockParagraph
		if !leadDone {
			typ = model.BlockLead
			leadDone = true
		}
		blocks = append(blocks, model.Block{Type: typ, Text: strings.Join(para, " ")})
		para = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, headingPrefix):
			flush()
			if h := strings.TrimSpace(strings.TrimPrefix(line, headingPrefix)); h != "" {
				blocks = append(blocks, model.Block{Type: model.BlockHeading, Text: h})
			}
		default:
			para = append(para, line)
		}
	}
	flush()
	return blocks
}

// ContentText is the inverse of ParseContent.
func ContentText(blocks []model.Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Type == model.BlockHeading {
			parts = append(parts, headingPrefix+b.Text)
			continue
		}
		parts = append(parts, b.Text)
	}
	return strings.Join(parts, "\n\n")
}
