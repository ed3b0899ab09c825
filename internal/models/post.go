// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// ValidPostStatus reports whether s is one of the known post states.
func ValidPostStatus(s PostStatus) bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// Post represents a blog post. Content is author-trusted HTML stored
// verbatim. Every post belongs to exactly one author and at least one
// category (via the post_categories join table).
type Post struct {
	ID            uuid.UUID  `json:"id"`
	AuthorID      uuid.UUID  `json:"author_id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Content       string     `json:"content"`
	FeaturedImage *string    `json:"featured_image,omitempty"`
	Status        PostStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Virtual fields populated by store methods.
	AuthorUsername  string     `json:"author_username,omitempty"`
	AuthorFirstName *string    `json:"author_first_name,omitempty"`
	AuthorLastName  *string    `json:"author_last_name,omitempty"`
	Categories      []Category `json:"categories,omitempty"`
}

// IsPublished returns true if the post is publicly visible.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// AuthorName returns the author's full name when set, falling back to the
// username. Mirrors User.DisplayName for the joined listing fields.
func (p *Post) AuthorName() string {
	if p.AuthorFirstName != nil && *p.AuthorFirstName != "" {
		name := *p.AuthorFirstName
		if p.AuthorLastName != nil && *p.AuthorLastName != "" {
			name += " " + *p.AuthorLastName
		}
		return name
	}
	return p.AuthorUsername
}
