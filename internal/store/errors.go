// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import "errors"

// Sentinel errors surfaced to handlers. Matched with errors.Is so callers
// can map them to user-facing messages without string comparison.
var (
	// ErrCategoryInUse is returned when deleting a category that still
	// has posts associated with it.
	ErrCategoryInUse = errors.New("category has associated posts")

	// ErrParentNotFound is returned when a reply references a comment
	// that does not exist.
	ErrParentNotFound = errors.New("parent comment not found")

	// ErrParentMismatch is returned when a reply references a comment
	// on a different post.
	ErrParentMismatch = errors.New("parent comment belongs to a different post")

	// ErrReplyDepth is returned when a reply references another reply.
	// Threading is one level deep only.
	ErrReplyDepth = errors.New("replies to replies are not allowed")
)
