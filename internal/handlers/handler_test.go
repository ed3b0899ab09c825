// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Redis are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"vintageblog/internal/cache"
	"vintageblog/internal/database"
	"vintageblog/internal/middleware"
	"vintageblog/internal/models"
	"vintageblog/internal/render"
	"vintageblog/internal/session"
	"vintageblog/internal/storage"
	"vintageblog/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "vintageblog")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "vintageblog")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testRedis returns a Redis client for handler tests on DB 15.
func testRedis(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("REDIS_HOST", "localhost")
	port := envOr("REDIS_PORT", "6379")
	password := os.Getenv("REDIS_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Redis not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "page:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB         *sql.DB
	Redis      *redis.Client
	Renderer   *render.Renderer
	Sessions   *session.Store
	Posts      *store.PostStore
	Comments   *store.CommentStore
	Categories *store.CategoryStore
	Users      *store.UserStore
	Settings   *store.SiteSettingStore
	PageCache  *cache.PageCache
	Uploads    *storage.Local
	Auth       *Auth
	Public     *Public
	Member     *Posts
	Admin      *Admin
}

// newTestEnv creates a complete test environment with all handler
// dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	rds := testRedis(t)

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	uploads, err := storage.NewLocal(t.TempDir(), 5<<20)
	if err != nil {
		t.Fatalf("storage.NewLocal: %v", err)
	}

	sessions := session.NewStore(rds)
	posts := store.NewPostStore(db)
	comments := store.NewCommentStore(db)
	categories := store.NewCategoryStore(db)
	users := store.NewUserStore(db)
	settings := store.NewSiteSettingStore(db)
	pageCache := cache.NewPageCache(rds, 1*time.Minute)

	return &testEnv{
		DB:         db,
		Redis:      rds,
		Renderer:   renderer,
		Sessions:   sessions,
		Posts:      posts,
		Comments:   comments,
		Categories: categories,
		Users:      users,
		Settings:   settings,
		PageCache:  pageCache,
		Uploads:    uploads,
		Auth:       NewAuth(renderer, sessions, users, uploads),
		Public:     NewPublic(renderer, posts, comments, categories, settings, pageCache),
		Member:     NewPosts(renderer, posts, categories, uploads, pageCache),
		Admin:      NewAdmin(renderer, sessions, posts, comments, categories, users, settings, pageCache),
	}
}

// uniq returns a short random suffix for unique test fixtures.
func uniq() string {
	return uuid.NewString()[:8]
}

// testUser inserts a user directly and registers cleanup.
func testUser(t *testing.T, db *sql.DB, role models.Role) *models.User {
	t.Helper()

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	u := &models.User{Username: "user_" + uniq(), Role: role}
	u.Email = u.Username + "@example.com"

	err := db.QueryRow(`
		INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, u.Username, u.Email, string(hash), u.Role).Scan(&u.ID)
	if err != nil {
		t.Fatalf("insert test user: %v", err)
	}

	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

// testCategory inserts a category and registers cleanup.
func testCategory(t *testing.T, db *sql.DB) *models.Category {
	t.Helper()

	c := &models.Category{Name: "Cat " + uniq()}
	c.Slug = "cat-" + uniq()

	err := db.QueryRow(`
		INSERT INTO categories (name, slug, description)
		VALUES ($1, $2, $3)
		RETURNING id
	`, c.Name, c.Slug, c.Description).Scan(&c.ID)
	if err != nil {
		t.Fatalf("insert test category: %v", err)
	}

	t.Cleanup(func() { db.Exec("DELETE FROM categories WHERE id = $1", c.ID) })
	return c
}

// testPost inserts a post with one category and registers cleanup.
func testPost(t *testing.T, db *sql.DB, author *models.User, status models.PostStatus, category *models.Category) *models.Post {
	t.Helper()

	p := &models.Post{
		AuthorID: author.ID,
		Title:    "Post " + uniq(),
		Content:  "<p>Body</p>",
		Status:   status,
	}
	p.Slug = "post-" + uniq()

	err := db.QueryRow(`
		INSERT INTO posts (author_id, title, slug, content, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, p.AuthorID, p.Title, p.Slug, p.Content, p.Status).Scan(&p.ID)
	if err != nil {
		t.Fatalf("insert test post: %v", err)
	}
	if _, err := db.Exec(`
		INSERT INTO post_categories (post_id, category_id) VALUES ($1, $2)
	`, p.ID, category.ID); err != nil {
		t.Fatalf("insert post category: %v", err)
	}

	t.Cleanup(func() { db.Exec("DELETE FROM posts WHERE id = $1", p.ID) })
	return p
}

// sessionFor builds session data for a user.
func sessionFor(u *models.User) *session.Data {
	return &session.Data{UserID: u.ID, Username: u.Username, Role: string(u.Role)}
}

// withSession attaches session data to a request context.
func withSession(r *http.Request, data *session.Data) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.SessionKey, data)
	return r.WithContext(ctx)
}

// withURLParam adds a chi URL parameter to a request.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
