// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"log/slog"

	"github.com/olegiv/ocms-school/internal/model"
)

// DemoArticles returns the articles the site ships with in demo mode.
func DemoArticles() []model.Article {
	return []model.Article{
		{
			Title:    "Welcome to the New School Year",
			Category: model.CategoryCommunity,
			Excerpt:  "A look at what is new on campus this autumn, from the library to the lunch menu.",
			Author:   "Head of School",
			Tags:     []string{"welcome", "campus"},
			Image:    "/images/blog/new-year.jpg",
			Content: []model.Block{
				{Type: model.BlockLead, Text: "Our doors are open again and the halls are full of energy."},
				{Type: model.BlockHeading, Text: "What is new"},
				{Type: model.BlockParagraph, Text: "The refurbished library now has a quiet reading room and a maker space."},
			},
			Featured:  true,
			Status:    model.StatusPublished,
			CreatedAt: "2025-09-01",
		},
		{
			Title:    "Robotics Team Reaches the Regional Final",
			Category: model.CategoryAcademics,
			Excerpt:  "Six weeks of after-school building paid off for our Year 9 engineers.",
			Author:   "STEM Department",
			Tags:     []string{"robotics", "stem", "competition"},
			Image:    "/images/blog/robotics.jpg",
			Content: []model.Block{
				{Type: model.BlockLead, Text: "The team qualified with the highest autonomous score of the day."},
				{Type: model.BlockParagraph, Text: "The final takes place next month and families are welcome to attend."},
			},
			Status:    model.StatusPublished,
			CreatedAt: "2025-10-14",
		},
		{
			Title:    "Open Day Registration Is Open",
			Category: model.CategoryAdmissions,
			Excerpt:  "Meet our teachers, tour the classrooms and ask the admissions team anything.",
			Author:   "Admissions Office",
			Tags:     []string{"admissions", "open day"},
			Image:    "/images/blog/open-day.jpg",
			Content: []model.Block{
				{Type: model.BlockLead, Text: "Open day runs from nine until one on the first Saturday of November."},
				{Type: model.BlockParagraph, Text: "Places are limited, so please register through the admissions form."},
			},
			Status:    model.StatusDraft,
			CreatedAt: "2025-10-20",
		},
		{
			Title:    "Winter Concert Programme",
			Category: model.CategoryArts,
			Excerpt:  "Choir, orchestra and the jazz band share the stage for our annual concert.",
			Author:   "Music Department",
			Tags:     []string{"music", "concert"},
			Image:    "/images/blog/concert.jpg",
			Content: []model.Block{
				{Type: model.BlockLead, Text: "Tickets are free, but seats must be reserved."},
			},
			Status:    model.StatusDraft,
			CreatedAt: "2025-11-02",
		},
		{
			Title:    "Sports Day Results",
			Category: model.CategorySports,
			Excerpt:  "Blue house takes the trophy after a close relay finish.",
			Author:   "PE Department",
			Tags:     []string{"sports day", "results"},
			Content: []model.Block{
				{Type: model.BlockLead, Text: "A record number of families came to cheer on the students."},
			},
			Status:    model.StatusArchived,
			CreatedAt: "2025-06-20",
		},
	}
}

// SeedDemo loads DemoArticles into an empty store. It does nothing when the
// store already holds articles.
func SeedDemo(s *ArticleStore) int {
	if s.Len() > 0 {
		slog.Info("articles already present, skipping demo seed")
		return 0
	}
	articles := DemoArticles()
	for _, a := range articles {
		s.Create(a)
	}
	slog.Info("seeded demo articles", "count", len(articles))
	return len(articles)
}
