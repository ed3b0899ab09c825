// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vintageblog/internal/cache"
	"vintageblog/internal/middleware"
	"vintageblog/internal/models"
	"vintageblog/internal/render"
	"vintageblog/internal/slug"
	"vintageblog/internal/storage"
	"vintageblog/internal/store"
)

const myPostsPerPage = 20

// Posts groups the member-area handlers for writing and managing posts.
type Posts struct {
	renderer   *render.Renderer
	posts      *store.PostStore
	categories *store.CategoryStore
	uploads    *storage.Local
	pageCache  *cache.PageCache
}

// NewPosts creates a new Posts handler group.
func NewPosts(renderer *render.Renderer, posts *store.PostStore, categories *store.CategoryStore,
	uploads *storage.Local, pageCache *cache.PageCache) *Posts {
	return &Posts{
		renderer:   renderer,
		posts:      posts,
		categories: categories,
		uploads:    uploads,
		pageCache:  pageCache,
	}
}

// uploadErrorMessage maps storage errors to a user-facing message.
func uploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, storage.ErrFileTooLarge):
		return "Image is too large (max 5 MB)."
	case errors.Is(err, storage.ErrUnsupportedType):
		return "Only JPEG, PNG, and GIF images are accepted."
	default:
		slog.Error("upload failed", "error", err)
		return "Could not save the uploaded image."
	}
}

// MyPosts lists the signed-in member's own posts with status and search
// filters.
func (h *Posts) MyPosts(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	page := pageParam(r)
	status := r.URL.Query().Get("status")
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	filter := store.PostFilter{
		AuthorID: &sess.UserID,
		Status:   models.PostStatus(status),
		Search:   query,
		Page:     page,
		PerPage:  myPostsPerPage,
	}
	posts, err := h.posts.List(filter)
	if err != nil {
		slog.Error("list my posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	count, err := h.posts.Count(filter)
	if err != nil {
		slog.Error("count my posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Page(w, r, "my_posts", &render.PageData{
		Title:   "My posts",
		Section: "my_posts",
		Data: map[string]any{
			"Posts":      posts,
			"Status":     status,
			"Query":      query,
			"Page":       page,
			"TotalPages": totalPages(count, myPostsPerPage),
		},
	})
}

// postForm holds the parsed and validated post form fields.
type postForm struct {
	Title       string
	Content     string
	Status      models.PostStatus
	CategoryIDs []uuid.UUID
	RawIDs      []string
}

// parsePostForm reads the multipart post form and validates everything
// except the image upload. Always returns a usable form so callers can
// re-render it with whatever values survived parsing.
func parsePostForm(r *http.Request) (*postForm, string) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		return &postForm{}, "Could not read the form."
	}

	f := &postForm{
		Title:   strings.TrimSpace(r.FormValue("title")),
		Content: r.FormValue("content"),
		Status:  models.PostStatus(r.FormValue("status")),
		RawIDs:  r.Form["categories"],
	}

	if msg := validatePost(f.Title, f.Content, f.RawIDs); msg != "" {
		return f, msg
	}
	if !models.ValidPostStatus(f.Status) {
		return f, "Invalid post status."
	}

	for _, raw := range f.RawIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, "Invalid category selection."
		}
		f.CategoryIDs = append(f.CategoryIDs, id)
	}
	return f, ""
}

// formPage renders the post form with the given state.
func (h *Posts) formPage(w http.ResponseWriter, r *http.Request, data map[string]any, flashes []render.Flash) {
	categories, err := h.categories.List()
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	data["Categories"] = categories
	if _, ok := data["Selected"]; !ok {
		data["Selected"] = map[string]bool{}
	}

	title := "New post"
	if edit, _ := data["IsEdit"].(bool); edit {
		title = "Edit post"
	}

	h.renderer.Page(w, r, "post_form", &render.PageData{
		Title:   title,
		Section: "my_posts",
		Flashes: flashes,
		Data:    data,
	})
}

// NewForm renders the empty post form.
func (h *Posts) NewForm(w http.ResponseWriter, r *http.Request) {
	h.formPage(w, r, map[string]any{
		"IsEdit":  false,
		"Action":  "/posts",
		"Title":   "",
		"Content": "",
		"Status":  "draft",
	}, nil)
}

// selectedSet builds the checkbox state for the form from raw form IDs.
func selectedSet(rawIDs []string) map[string]bool {
	set := make(map[string]bool, len(rawIDs))
	for _, id := range rawIDs {
		set[id] = true
	}
	return set
}

// Create stores a new post. The featured image is validated and written
// to disk before anything touches the database, so a rejected upload
// leaves no partial post behind.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	form, msg := parsePostForm(r)
	rerender := func(msg string) {
		data := map[string]any{
			"IsEdit":   false,
			"Action":   "/posts",
			"Title":    form.Title,
			"Content":  form.Content,
			"Status":   string(form.Status),
			"Selected": selectedSet(form.RawIDs),
		}
		h.formPage(w, r, data, flashError(msg))
	}
	if msg != "" {
		rerender(msg)
		return
	}

	var featuredImage *string
	if file, header, err := r.FormFile("featured_image"); err == nil {
		defer file.Close()
		name, err := h.uploads.Save(file, header)
		if err != nil {
			rerender(uploadErrorMessage(err))
			return
		}
		featuredImage = &name
	}

	postSlug, err := slug.Unique(form.Title, h.posts.SlugExists)
	if err != nil {
		slog.Error("slug generation failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	post, err := h.posts.Create(&models.Post{
		AuthorID:      sess.UserID,
		Title:         form.Title,
		Slug:          postSlug,
		Content:       form.Content,
		FeaturedImage: featuredImage,
		Status:        form.Status,
	}, form.CategoryIDs)
	if err != nil {
		slog.Error("create post failed", "error", err)
		if featuredImage != nil {
			h.uploads.Remove(*featuredImage)
		}
		rerender("Could not save the post.")
		return
	}

	if post.IsPublished() {
		h.pageCache.InvalidatePost(r.Context(), post.Slug)
	}

	http.Redirect(w, r, "/my-posts", http.StatusSeeOther)
}

// findOwned loads a post by the id URL parameter and checks that the
// current actor may modify it. Writes the error response itself when it
// returns nil.
func (h *Posts) findOwned(w http.ResponseWriter, r *http.Request) *models.Post {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return nil
	}

	post, err := h.posts.FindByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if post == nil {
		http.NotFound(w, r)
		return nil
	}

	actor := middleware.ActorFromCtx(r.Context())
	if !actor.CanModifyPost(post.AuthorID) {
		// Someone else's post: send them back to their own area
		// without rendering anything about it.
		http.Redirect(w, r, "/my-posts", http.StatusSeeOther)
		return nil
	}
	return post
}

// EditForm renders the post form pre-filled for editing.
func (h *Posts) EditForm(w http.ResponseWriter, r *http.Request) {
	post := h.findOwned(w, r)
	if post == nil {
		return
	}

	existing, err := h.posts.CategoriesFor(post.ID)
	if err != nil {
		slog.Error("load post categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	selected := make(map[string]bool, len(existing))
	for _, c := range existing {
		selected[c.ID.String()] = true
	}

	h.formPage(w, r, map[string]any{
		"IsEdit":        true,
		"Action":        "/posts/" + post.ID.String(),
		"Title":         post.Title,
		"Content":       post.Content,
		"Status":        string(post.Status),
		"FeaturedImage": deref(post.FeaturedImage),
		"Selected":      selected,
	}, nil)
}

// Update saves an edited post. The slug is regenerated only when the
// title actually changed, so published URLs stay stable across content
// edits.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	post := h.findOwned(w, r)
	if post == nil {
		return
	}
	oldSlug := post.Slug

	form, msg := parsePostForm(r)
	rerender := func(msg string) {
		data := map[string]any{
			"IsEdit":        true,
			"Action":        "/posts/" + post.ID.String(),
			"Title":         form.Title,
			"Content":       form.Content,
			"Status":        string(form.Status),
			"FeaturedImage": deref(post.FeaturedImage),
			"Selected":      selectedSet(form.RawIDs),
		}
		h.formPage(w, r, data, flashError(msg))
	}
	if msg != "" {
		rerender(msg)
		return
	}

	if form.Title != post.Title {
		newSlug, err := slug.Unique(form.Title, h.posts.SlugExists)
		if err != nil {
			slog.Error("slug generation failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		post.Slug = newSlug
	}

	oldImage := post.FeaturedImage
	if file, header, err := r.FormFile("featured_image"); err == nil {
		defer file.Close()
		name, err := h.uploads.Save(file, header)
		if err != nil {
			rerender(uploadErrorMessage(err))
			return
		}
		post.FeaturedImage = &name
	}

	post.Title = form.Title
	post.Content = form.Content
	post.Status = form.Status

	if err := h.posts.Update(post, form.CategoryIDs); err != nil {
		slog.Error("update post failed", "error", err)
		rerender("Could not save the post.")
		return
	}

	if oldImage != nil && post.FeaturedImage != oldImage {
		h.uploads.Remove(*oldImage)
	}

	h.pageCache.InvalidatePost(r.Context(), oldSlug)
	if post.Slug != oldSlug {
		h.pageCache.InvalidatePost(r.Context(), post.Slug)
	}

	http.Redirect(w, r, "/my-posts", http.StatusSeeOther)
}

// ToggleStatus flips a post between draft and published.
func (h *Posts) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	post := h.findOwned(w, r)
	if post == nil {
		return
	}

	next := models.PostStatusPublished
	if post.IsPublished() {
		next = models.PostStatusDraft
	}

	if err := h.posts.SetStatus(post.ID, next); err != nil {
		slog.Error("set post status failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.pageCache.InvalidatePost(r.Context(), post.Slug)
	http.Redirect(w, r, redirectTarget(r, "/my-posts"), http.StatusSeeOther)
}

// Delete removes a post, its comments (by cascade), and its featured
// image file.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	post := h.findOwned(w, r)
	if post == nil {
		return
	}

	if err := h.posts.Delete(post.ID); err != nil {
		slog.Error("delete post failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if post.FeaturedImage != nil {
		h.uploads.Remove(*post.FeaturedImage)
	}

	h.pageCache.InvalidatePost(r.Context(), post.Slug)
	http.Redirect(w, r, redirectTarget(r, "/my-posts"), http.StatusSeeOther)
}

// redirectTarget prefers the referer path so admin actions return to
// the admin listing they were triggered from, falling back to the given
// default.
func redirectTarget(r *http.Request, fallback string) string {
	ref, err := url.Parse(r.Header.Get("Referer"))
	if err != nil || ref.Path == "" || !strings.HasPrefix(ref.Path, "/") {
		return fallback
	}
	target := ref.Path
	if ref.RawQuery != "" {
		target += "?" + ref.RawQuery
	}
	return target
}

// deref safely dereferences an optional string.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
