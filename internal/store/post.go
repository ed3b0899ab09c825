// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"vintageblog/internal/models"
)

// postColumns are the posts table columns joined with the author row.
const postColumns = `p.id, p.author_id, p.title, p.slug, p.content, p.featured_image,
	p.status, p.created_at, p.updated_at, u.username, u.first_name, u.last_name`

// PostStore handles all post-related database operations, including the
// post_categories association table.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// PostFilter describes the optional predicates for listing posts. All set
// fields are combined with AND. Page is 1-based; PerPage <= 0 disables
// pagination.
type PostFilter struct {
	Status     models.PostStatus
	CategoryID *uuid.UUID
	AuthorID   *uuid.UUID
	Search     string
	Page       int
	PerPage    int
}

// where builds the WHERE clause and arguments for the filter. List and
// Count both call it so the page and the total always agree.
func (f PostFilter) where() (string, []any) {
	var clauses []string
	var args []any

	if f.Status != "" {
		args = append(args, f.Status)
		clauses = append(clauses, fmt.Sprintf("p.status = $%d", len(args)))
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM post_categories pc WHERE pc.post_id = p.id AND pc.category_id = $%d)",
			len(args)))
	}
	if f.AuthorID != nil {
		args = append(args, *f.AuthorID)
		clauses = append(clauses, fmt.Sprintf("p.author_id = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(p.title ILIKE $%d OR p.content ILIKE $%d)", n, n))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	p := &models.Post{}
	err := scanner.Scan(
		&p.ID, &p.AuthorID, &p.Title, &p.Slug, &p.Content, &p.FeaturedImage,
		&p.Status, &p.CreatedAt, &p.UpdatedAt,
		&p.AuthorUsername, &p.AuthorFirstName, &p.AuthorLastName,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List returns posts matching the filter, newest first, with their
// categories attached.
func (s *PostStore) List(f PostFilter) ([]models.Post, error) {
	where, args := f.where()

	query := `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.author_id
		` + where + `
		ORDER BY p.created_at DESC`

	if f.PerPage > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		args = append(args, f.PerPage)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, (page-1)*f.PerPage)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range posts {
		cats, err := s.CategoriesFor(posts[i].ID)
		if err != nil {
			return nil, err
		}
		posts[i].Categories = cats
	}
	return posts, nil
}

// Count returns the number of posts matching the filter, ignoring
// pagination.
func (s *PostStore) Count(f PostFilter) (int, error) {
	where, args := f.where()
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts p `+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

// FindByID retrieves a post by its UUID with categories attached.
// Returns nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(`
		SELECT `+postColumns+`
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1
	`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}

	p.Categories, err = s.CategoriesFor(p.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FindPublishedBySlug retrieves a published post by its slug with
// categories attached. Used for public page rendering. Returns nil if
// not found or not published.
func (s *PostStore) FindPublishedBySlug(slug string) (*models.Post, error) {
	row := s.db.QueryRow(`
		SELECT `+postColumns+`
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.slug = $1 AND p.status = 'published'
	`, slug)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}

	p.Categories, err = s.CategoriesFor(p.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SlugExists reports whether a post slug is already taken.
func (s *PostStore) SlugExists(slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("post slug exists: %w", err)
	}
	return exists, nil
}

// Create inserts a post and its category associations in one transaction.
// Either the post row and every association commit together, or nothing
// is written.
func (s *PostStore) Create(p *models.Post, categoryIDs []uuid.UUID) (*models.Post, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result := &models.Post{}
	err = tx.QueryRow(`
		INSERT INTO posts (author_id, title, slug, content, featured_image, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, author_id, title, slug, content, featured_image, status, created_at, updated_at
	`, p.AuthorID, p.Title, p.Slug, p.Content, p.FeaturedImage, p.Status).Scan(
		&result.ID, &result.AuthorID, &result.Title, &result.Slug, &result.Content,
		&result.FeaturedImage, &result.Status, &result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	if err := insertCategories(tx, result.ID, categoryIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create post: %w", err)
	}
	return result, nil
}

// Update modifies a post and replaces its category associations in one
// transaction.
func (s *PostStore) Update(p *models.Post, categoryIDs []uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE posts SET
			title = $1, slug = $2, content = $3, featured_image = $4, status = $5,
			updated_at = NOW()
		WHERE id = $6
	`, p.Title, p.Slug, p.Content, p.FeaturedImage, p.Status, p.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM post_categories WHERE post_id = $1`, p.ID); err != nil {
		return fmt.Errorf("clear post categories: %w", err)
	}
	if err := insertCategories(tx, p.ID, categoryIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update post: %w", err)
	}
	return nil
}

func insertCategories(tx *sql.Tx, postID uuid.UUID, categoryIDs []uuid.UUID) error {
	for _, catID := range categoryIDs {
		_, err := tx.Exec(`
			INSERT INTO post_categories (post_id, category_id) VALUES ($1, $2)
		`, postID, catID)
		if err != nil {
			return fmt.Errorf("associate category %s: %w", catID, err)
		}
	}
	return nil
}

// SetStatus flips a post between draft and published.
func (s *PostStore) SetStatus(id uuid.UUID, status models.PostStatus) error {
	_, err := s.db.Exec(`UPDATE posts SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("set post status: %w", err)
	}
	return nil
}

// Delete removes a post. Comments and category associations cascade.
func (s *PostStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// CategoriesFor returns the categories associated with a post, ordered
// by name.
func (s *PostStore) CategoriesFor(postID uuid.UUID) ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.name, c.slug, c.description, c.created_at, c.updated_at
		FROM categories c
		JOIN post_categories pc ON pc.category_id = c.id
		WHERE pc.post_id = $1
		ORDER BY c.name
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("post categories: %w", err)
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, *c)
	}
	return cats, rows.Err()
}
