// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"vintageblog/internal/models"
)

// CommentStore handles all comment-related database operations.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore with the given database connection.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

// Create inserts a comment after validating its parent reference. A reply
// must point at an existing top-level comment on the same post; anything
// else is rejected with a sentinel error and nothing is written.
func (s *CommentStore) Create(c *models.Comment) (*models.Comment, error) {
	if c.ParentID != nil {
		var parentPost uuid.UUID
		var grandparent *uuid.UUID
		err := s.db.QueryRow(`
			SELECT post_id, parent_id FROM comments WHERE id = $1
		`, *c.ParentID).Scan(&parentPost, &grandparent)
		if err == sql.ErrNoRows {
			return nil, ErrParentNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("find parent comment: %w", err)
		}
		if parentPost != c.PostID {
			return nil, ErrParentMismatch
		}
		if grandparent != nil {
			return nil, ErrReplyDepth
		}
	}

	result := &models.Comment{}
	err := s.db.QueryRow(`
		INSERT INTO comments (post_id, author_id, parent_id, content, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, post_id, author_id, parent_id, content, status, created_at
	`, c.PostID, c.AuthorID, c.ParentID, c.Content, c.Status).Scan(
		&result.ID, &result.PostID, &result.AuthorID, &result.ParentID,
		&result.Content, &result.Status, &result.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return result, nil
}

// FindByID retrieves a comment by ID. Returns nil if not found.
func (s *CommentStore) FindByID(id uuid.UUID) (*models.Comment, error) {
	c := &models.Comment{}
	err := s.db.QueryRow(`
		SELECT id, post_id, author_id, parent_id, content, status, created_at
		FROM comments WHERE id = $1
	`, id).Scan(
		&c.ID, &c.PostID, &c.AuthorID, &c.ParentID, &c.Content, &c.Status, &c.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	return c, nil
}

// ListThreadForPost returns the approved comment thread for a post:
// top-level comments newest first, each with its approved replies oldest
// first attached.
func (s *CommentStore) ListThreadForPost(postID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.post_id, c.author_id, c.parent_id, c.content, c.status, c.created_at,
		       u.username, u.first_name, u.last_name
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1 AND c.status = 'approved'
		ORDER BY c.created_at ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comment thread: %w", err)
	}
	defer rows.Close()

	var all []models.Comment
	for rows.Next() {
		var c models.Comment
		err := rows.Scan(
			&c.ID, &c.PostID, &c.AuthorID, &c.ParentID, &c.Content, &c.Status, &c.CreatedAt,
			&c.AuthorUsername, &c.AuthorFirstName, &c.AuthorLastName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		all = append(all, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Replies arrive oldest first from the query; group them under their
	// parents, then reverse the top level to newest first.
	replies := make(map[uuid.UUID][]models.Comment)
	var topLevel []models.Comment
	for _, c := range all {
		if c.ParentID != nil {
			replies[*c.ParentID] = append(replies[*c.ParentID], c)
			continue
		}
		topLevel = append(topLevel, c)
	}

	thread := make([]models.Comment, 0, len(topLevel))
	for i := len(topLevel) - 1; i >= 0; i-- {
		c := topLevel[i]
		c.Replies = replies[c.ID]
		thread = append(thread, c)
	}
	return thread, nil
}

// List returns comments for admin moderation, newest first, joined with
// author and post info. An empty status matches all states. Page is
// 1-based; perPage <= 0 disables pagination.
func (s *CommentStore) List(status models.CommentStatus, page, perPage int) ([]models.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.author_id, c.parent_id, c.content, c.status, c.created_at,
		       u.username, u.first_name, u.last_name, p.title, p.slug
		FROM comments c
		JOIN users u ON u.id = c.author_id
		JOIN posts p ON p.id = c.post_id`

	var args []any
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" WHERE c.status = $%d", len(args))
	}
	query += " ORDER BY c.created_at DESC"

	if perPage > 0 {
		if page < 1 {
			page = 1
		}
		args = append(args, perPage)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, (page-1)*perPage)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		err := rows.Scan(
			&c.ID, &c.PostID, &c.AuthorID, &c.ParentID, &c.Content, &c.Status, &c.CreatedAt,
			&c.AuthorUsername, &c.AuthorFirstName, &c.AuthorLastName,
			&c.PostTitle, &c.PostSlug,
		)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// CountByStatus returns the number of comments in the given state, or all
// comments when status is empty.
func (s *CommentStore) CountByStatus(status models.CommentStatus) (int, error) {
	var count int
	var err error
	if status == "" {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM comments`).Scan(&count)
	} else {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM comments WHERE status = $1`, status).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return count, nil
}

// Counts returns the per-status totals for the moderation dashboard.
func (s *CommentStore) Counts() (models.CommentCounts, error) {
	var counts models.CommentCounts
	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'approved'),
		       COUNT(*) FILTER (WHERE status = 'spam')
		FROM comments
	`).Scan(&counts.Total, &counts.Pending, &counts.Approved, &counts.Spam)
	if err != nil {
		return counts, fmt.Errorf("comment counts: %w", err)
	}
	return counts, nil
}

// SetStatus moves a comment to a new moderation state.
func (s *CommentStore) SetStatus(id uuid.UUID, status models.CommentStatus) error {
	_, err := s.db.Exec(`UPDATE comments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("set comment status: %w", err)
	}
	return nil
}

// Delete removes a comment. Replies cascade.
func (s *CommentStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
