// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vintageblog/internal/cache"
	"vintageblog/internal/middleware"
	"vintageblog/internal/models"
	"vintageblog/internal/render"
	"vintageblog/internal/store"
)

// Public groups the visitor-facing handlers: the home feed, single
// posts, category archives, search, and comment submission.
type Public struct {
	renderer   *render.Renderer
	posts      *store.PostStore
	comments   *store.CommentStore
	categories *store.CategoryStore
	settings   *store.SiteSettingStore
	pageCache  *cache.PageCache
}

// NewPublic creates a new Public handler group.
func NewPublic(renderer *render.Renderer, posts *store.PostStore, comments *store.CommentStore,
	categories *store.CategoryStore, settings *store.SiteSettingStore, pageCache *cache.PageCache) *Public {
	return &Public{
		renderer:   renderer,
		posts:      posts,
		comments:   comments,
		categories: categories,
		settings:   settings,
		pageCache:  pageCache,
	}
}

// pageParam parses the ?page query parameter, defaulting to 1.
func pageParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// totalPages computes the page count for a result set.
func totalPages(count, perPage int) int {
	if count == 0 {
		return 1
	}
	return (count + perPage - 1) / perPage
}

// cacheable reports whether the rendered page may be served from and
// stored in the page cache. Pages rendered for signed-in users carry
// their nav state and must not be shared.
func cacheable(r *http.Request) bool {
	return middleware.SessionFromCtx(r.Context()) == nil
}

// Home renders the published post feed, newest first.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	key := cache.HomeKey(page)

	if cacheable(r) {
		if html, ok := p.pageCache.Get(r.Context(), key); ok {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(html)
			return
		}
	}

	config, err := p.settings.Config()
	if err != nil {
		slog.Error("load site config failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	filter := store.PostFilter{
		Status:  models.PostStatusPublished,
		Page:    page,
		PerPage: config.PostsPerPage,
	}
	posts, err := p.posts.List(filter)
	if err != nil {
		slog.Error("list posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	count, err := p.posts.Count(filter)
	if err != nil {
		slog.Error("count posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	html, err := p.renderer.HTML(r, "home", &render.PageData{
		Title:   config.SiteName,
		Section: "home",
		Data: map[string]any{
			"Posts":      posts,
			"Page":       page,
			"TotalPages": totalPages(count, config.PostsPerPage),
			"Config":     config,
		},
	})
	if err != nil {
		slog.Error("render home failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if cacheable(r) {
		p.pageCache.Set(r.Context(), key, html)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// Post renders a single published post with its approved comment thread.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	key := cache.PostKey(slug)

	if cacheable(r) {
		if html, ok := p.pageCache.Get(r.Context(), key); ok {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(html)
			return
		}
	}

	post, err := p.posts.FindPublishedBySlug(slug)
	if err != nil {
		slog.Error("find post failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if post == nil {
		// Unknown or unpublished slug: back to the feed instead of
		// an error page.
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	config, err := p.settings.Config()
	if err != nil {
		slog.Error("load site config failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	comments, err := p.comments.ListThreadForPost(post.ID)
	if err != nil {
		slog.Error("list comments failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	html, err := p.renderer.HTML(r, "post", &render.PageData{
		Title:   post.Title,
		Section: "home",
		Data: map[string]any{
			"Post":            post,
			"Comments":        comments,
			"CommentsAllowed": config.AllowComments,
			"Config":          config,
		},
	})
	if err != nil {
		slog.Error("render post failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if cacheable(r) {
		p.pageCache.Set(r.Context(), key, html)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// Category renders the published posts in one category.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	page := pageParam(r)
	key := cache.CategoryKey(slug, page)

	if cacheable(r) {
		if html, ok := p.pageCache.Get(r.Context(), key); ok {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(html)
			return
		}
	}

	category, err := p.categories.FindBySlug(slug)
	if err != nil {
		slog.Error("find category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if category == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	config, err := p.settings.Config()
	if err != nil {
		slog.Error("load site config failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	filter := store.PostFilter{
		Status:     models.PostStatusPublished,
		CategoryID: &category.ID,
		Page:       page,
		PerPage:    config.PostsPerPage,
	}
	posts, err := p.posts.List(filter)
	if err != nil {
		slog.Error("list category posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	count, err := p.posts.Count(filter)
	if err != nil {
		slog.Error("count category posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	html, err := p.renderer.HTML(r, "category", &render.PageData{
		Title:   category.Name,
		Section: "home",
		Data: map[string]any{
			"Category":   category,
			"Posts":      posts,
			"Page":       page,
			"TotalPages": totalPages(count, config.PostsPerPage),
			"Config":     config,
		},
	})
	if err != nil {
		slog.Error("render category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if cacheable(r) {
		p.pageCache.Set(r.Context(), key, html)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// Search renders published posts matching a query in title or content.
// Results are never cached.
func (p *Public) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	data := map[string]any{
		"Query": query,
		"Posts": []models.Post{},
	}

	if query != "" {
		posts, err := p.posts.List(store.PostFilter{
			Status:  models.PostStatusPublished,
			Search:  query,
			Page:    1,
			PerPage: 50,
		})
		if err != nil {
			slog.Error("search failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		data["Posts"] = posts
	}

	p.renderer.Page(w, r, "search", &render.PageData{
		Title:   "Search",
		Section: "search",
		Data:    data,
	})
}

// CommentSubmit accepts a new comment or reply on a published post from
// a signed-in member. The initial status follows the auto-approve
// setting.
func (p *Public) CommentSubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	slug := chi.URLParam(r, "slug")
	post, err := p.posts.FindPublishedBySlug(slug)
	if err != nil {
		slog.Error("find post failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if post == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	config, err := p.settings.Config()
	if err != nil {
		slog.Error("load site config failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !config.AllowComments {
		http.Error(w, "Comments are disabled", http.StatusForbidden)
		return
	}

	content := strings.TrimSpace(r.FormValue("content"))
	if msg := validateComment(content); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	var parentID *uuid.UUID
	if raw := r.FormValue("parent_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		parentID = &id
	}

	// Admin comments skip moderation; everyone else follows the
	// auto-approve setting.
	status := models.CommentStatusPending
	if config.AutoApproveComments || middleware.ActorFromCtx(r.Context()).IsAdmin() {
		status = models.CommentStatusApproved
	}

	_, err = p.comments.Create(&models.Comment{
		PostID:   post.ID,
		AuthorID: sess.UserID,
		ParentID: parentID,
		Content:  content,
		Status:   status,
	})
	switch {
	case err == nil:
	case errors.Is(err, store.ErrParentNotFound),
		errors.Is(err, store.ErrParentMismatch),
		errors.Is(err, store.ErrReplyDepth):
		http.Error(w, "Invalid reply target", http.StatusBadRequest)
		return
	default:
		slog.Error("create comment failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// An approved comment changes the cached post page.
	if status == models.CommentStatusApproved {
		p.pageCache.InvalidatePost(r.Context(), post.Slug)
	}

	http.Redirect(w, r, "/post/"+post.Slug, http.StatusSeeOther)
}
