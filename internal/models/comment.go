// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// CommentStatus represents the moderation state of a comment.
type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusSpam     CommentStatus = "spam"
)

// ValidCommentStatus reports whether s is one of the known comment states.
func ValidCommentStatus(s CommentStatus) bool {
	switch s {
	case CommentStatusPending, CommentStatusApproved, CommentStatusSpam:
		return true
	}
	return false
}

// Comment represents a comment on a post. Threading is one level deep:
// a top-level comment has ParentID == nil, a reply points at a top-level
// comment on the same post. Replies to replies are not modeled.
type Comment struct {
	ID        uuid.UUID     `json:"id"`
	PostID    uuid.UUID     `json:"post_id"`
	AuthorID  uuid.UUID     `json:"author_id"`
	ParentID  *uuid.UUID    `json:"parent_id,omitempty"`
	Content   string        `json:"content"`
	Status    CommentStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`

	// Virtual fields populated by store methods.
	AuthorUsername  string    `json:"author_username,omitempty"`
	AuthorFirstName *string   `json:"author_first_name,omitempty"`
	AuthorLastName  *string   `json:"author_last_name,omitempty"`
	PostTitle       string    `json:"post_title,omitempty"`
	PostSlug        string    `json:"post_slug,omitempty"`
	Replies         []Comment `json:"replies,omitempty"`
}

// IsReply returns true if the comment is a reply to a top-level comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// AuthorName returns the comment author's full name when set, falling
// back to the username.
func (c *Comment) AuthorName() string {
	if c.AuthorFirstName != nil && *c.AuthorFirstName != "" {
		name := *c.AuthorFirstName
		if c.AuthorLastName != nil && *c.AuthorLastName != "" {
			name += " " + *c.AuthorLastName
		}
		return name
	}
	return c.AuthorUsername
}

// CommentCounts holds per-status comment totals for the admin dashboard.
type CommentCounts struct {
	Total    int
	Pending  int
	Approved int
	Spam     int
}
