// store_test.go provides shared test database helpers for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"vintageblog/internal/database"
	"vintageblog/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "vintageblog")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "vintageblog")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Reset goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// uniq returns a short random suffix so fixtures never collide across
// test runs on a shared database.
func uniq() string {
	return uuid.NewString()[:8]
}

// testUser creates a user fixture and registers cleanup. Deleting the
// user cascades to their posts and comments.
func testUser(t *testing.T, db *sql.DB, role models.Role) *models.User {
	t.Helper()
	username := "test-" + uniq()
	u, err := NewUserStore(db).Create(username, username+"@test.local", "password123", role)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM users WHERE id = $1", u.ID)
	})
	return u
}

// testCategory creates a category fixture and registers cleanup. The
// cleanup clears any leftover associations first so it never trips the
// RESTRICT foreign key.
func testCategory(t *testing.T, db *sql.DB, name string) *models.Category {
	t.Helper()
	n := name + "-" + uniq()
	c, err := NewCategoryStore(db).Create(&models.Category{
		Name: n,
		Slug: n,
	})
	if err != nil {
		t.Fatalf("create test category: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM post_categories WHERE category_id = $1", c.ID)
		db.Exec("DELETE FROM categories WHERE id = $1", c.ID)
	})
	return c
}

// testPost creates a post fixture in the given categories and registers
// cleanup.
func testPost(t *testing.T, db *sql.DB, author *models.User, status models.PostStatus, cats ...*models.Category) *models.Post {
	t.Helper()
	slug := "test-post-" + uniq()
	ids := make([]uuid.UUID, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	p, err := NewPostStore(db).Create(&models.Post{
		AuthorID: author.ID,
		Title:    "Test Post " + slug,
		Slug:     slug,
		Content:  "<p>Test content about vintage cameras.</p>",
		Status:   status,
	}, ids)
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM posts WHERE id = $1", p.ID)
	})
	return p
}

// testComment creates a comment fixture and registers cleanup.
func testComment(t *testing.T, db *sql.DB, post *models.Post, author *models.User, status models.CommentStatus, parent *uuid.UUID) *models.Comment {
	t.Helper()
	c, err := NewCommentStore(db).Create(&models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		ParentID: parent,
		Content:  "A test comment.",
		Status:   status,
	})
	if err != nil {
		t.Fatalf("create test comment: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM comments WHERE id = $1", c.ID)
	})
	return c
}
