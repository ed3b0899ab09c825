// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vintageblog/internal/cache"
	"vintageblog/internal/middleware"
	"vintageblog/internal/models"
	"vintageblog/internal/render"
	"vintageblog/internal/session"
	"vintageblog/internal/slug"
	"vintageblog/internal/store"
)

const (
	adminPostsPerPage    = 20
	adminCommentsPerPage = 20
	dashboardRecentRows  = 5
)

// Admin groups the admin interface handlers. Every route here sits
// behind the RequireAdmin middleware.
type Admin struct {
	renderer   *render.Renderer
	sessions   *session.Store
	posts      *store.PostStore
	comments   *store.CommentStore
	categories *store.CategoryStore
	users      *store.UserStore
	settings   *store.SiteSettingStore
	pageCache  *cache.PageCache
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(renderer *render.Renderer, sessions *session.Store, posts *store.PostStore,
	comments *store.CommentStore, categories *store.CategoryStore, users *store.UserStore,
	settings *store.SiteSettingStore, pageCache *cache.PageCache) *Admin {
	return &Admin{
		renderer:   renderer,
		sessions:   sessions,
		posts:      posts,
		comments:   comments,
		categories: categories,
		users:      users,
		settings:   settings,
		pageCache:  pageCache,
	}
}

// Dashboard shows site-wide counts and the latest activity.
func (h *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	postCount, err := h.posts.Count(store.PostFilter{})
	if err != nil {
		slog.Error("dashboard post count failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	userCount, err := h.users.Count()
	if err != nil {
		slog.Error("dashboard user count failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	categoryCount, err := h.categories.Count()
	if err != nil {
		slog.Error("dashboard category count failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	commentCounts, err := h.comments.Counts()
	if err != nil {
		slog.Error("dashboard comment counts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	recentPosts, err := h.posts.List(store.PostFilter{Page: 1, PerPage: dashboardRecentRows})
	if err != nil {
		slog.Error("dashboard recent posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	recentComments, err := h.comments.List("", 1, dashboardRecentRows)
	if err != nil {
		slog.Error("dashboard recent comments failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Page(w, r, "admin/dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data: map[string]any{
			"PostCount":      postCount,
			"UserCount":      userCount,
			"CategoryCount":  categoryCount,
			"CommentCounts":  commentCounts,
			"RecentPosts":    recentPosts,
			"RecentComments": recentComments,
		},
	})
}

// Posts lists every post with status, category, and search filters.
func (h *Admin) Posts(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	status := r.URL.Query().Get("status")
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	categoryID := r.URL.Query().Get("category")

	filter := store.PostFilter{
		Status:  models.PostStatus(status),
		Search:  query,
		Page:    page,
		PerPage: adminPostsPerPage,
	}
	if id, err := uuid.Parse(categoryID); err == nil {
		filter.CategoryID = &id
	}

	posts, err := h.posts.List(filter)
	if err != nil {
		slog.Error("admin list posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	count, err := h.posts.Count(filter)
	if err != nil {
		slog.Error("admin count posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	categories, err := h.categories.List()
	if err != nil {
		slog.Error("admin list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Page(w, r, "admin/posts", &render.PageData{
		Title:   "Posts",
		Section: "posts",
		Data: map[string]any{
			"Posts":      posts,
			"Categories": categories,
			"Status":     status,
			"CategoryID": categoryID,
			"Query":      query,
			"Page":       page,
			"TotalPages": totalPages(count, adminPostsPerPage),
		},
	})
}

// Comments lists comments for moderation, filtered by status.
func (h *Admin) Comments(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	status := r.URL.Query().Get("status")

	comments, err := h.comments.List(models.CommentStatus(status), page, adminCommentsPerPage)
	if err != nil {
		slog.Error("admin list comments failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	counts, err := h.comments.Counts()
	if err != nil {
		slog.Error("admin comment counts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	total := counts.Total
	switch models.CommentStatus(status) {
	case models.CommentStatusPending:
		total = counts.Pending
	case models.CommentStatusApproved:
		total = counts.Approved
	case models.CommentStatusSpam:
		total = counts.Spam
	}

	h.renderer.Page(w, r, "admin/comments", &render.PageData{
		Title:   "Comments",
		Section: "comments",
		Data: map[string]any{
			"Comments":   comments,
			"Counts":     counts,
			"Status":     status,
			"Page":       page,
			"TotalPages": totalPages(total, adminCommentsPerPage),
		},
	})
}

// moderate applies a status change to one comment and refreshes the
// affected post page in the cache.
func (h *Admin) moderate(w http.ResponseWriter, r *http.Request, status models.CommentStatus) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	comment, err := h.comments.FindByID(id)
	if err != nil {
		slog.Error("find comment failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if comment == nil {
		http.NotFound(w, r)
		return
	}

	if err := h.comments.SetStatus(id, status); err != nil {
		slog.Error("set comment status failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.invalidateCommentPost(r, comment)
	http.Redirect(w, r, redirectTarget(r, "/admin/comments"), http.StatusSeeOther)
}

// invalidateCommentPost drops the cached page of the post a comment
// belongs to. Moderation changes which comments are publicly visible.
func (h *Admin) invalidateCommentPost(r *http.Request, comment *models.Comment) {
	post, err := h.posts.FindByID(comment.PostID)
	if err != nil || post == nil {
		return
	}
	h.pageCache.InvalidatePost(r.Context(), post.Slug)
}

// ApproveComment marks a comment approved, making it publicly visible.
func (h *Admin) ApproveComment(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, models.CommentStatusApproved)
}

// SpamComment marks a comment as spam.
func (h *Admin) SpamComment(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, models.CommentStatusSpam)
}

// DeleteComment removes a comment and its replies.
func (h *Admin) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	comment, err := h.comments.FindByID(id)
	if err != nil {
		slog.Error("find comment failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if comment == nil {
		http.NotFound(w, r)
		return
	}

	if err := h.comments.Delete(id); err != nil {
		slog.Error("delete comment failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.invalidateCommentPost(r, comment)
	http.Redirect(w, r, redirectTarget(r, "/admin/comments"), http.StatusSeeOther)
}

// categoriesPage renders the category management page.
func (h *Admin) categoriesPage(w http.ResponseWriter, r *http.Request, editing *models.Category, flashes []render.Flash) {
	categories, err := h.categories.List()
	if err != nil {
		slog.Error("admin list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Page(w, r, "admin/categories", &render.PageData{
		Title:   "Categories",
		Section: "categories",
		Flashes: flashes,
		Data: map[string]any{
			"Categories": categories,
			"Editing":    editing,
		},
	})
}

// Categories lists categories with post counts. ?edit=<id> pre-fills
// the form for editing.
func (h *Admin) Categories(w http.ResponseWriter, r *http.Request) {
	var editing *models.Category
	if raw := r.URL.Query().Get("edit"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			editing, _ = h.categories.FindByID(id)
		}
	}
	h.categoriesPage(w, r, editing, nil)
}

// CreateCategory adds a new category with a derived slug.
func (h *Admin) CreateCategory(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	description := strings.TrimSpace(r.FormValue("description"))

	if msg := validateCategory(name); msg != "" {
		h.categoriesPage(w, r, nil, flashError(msg))
		return
	}

	exists, err := h.categories.NameExists(name, uuid.Nil)
	if err != nil {
		slog.Error("category name check failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if exists {
		h.categoriesPage(w, r, nil, flashError("A category with that name already exists."))
		return
	}

	categorySlug, err := slug.Unique(name, h.categories.SlugExists)
	if err != nil {
		slog.Error("slug generation failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if _, err := h.categories.Create(&models.Category{
		Name:        name,
		Slug:        categorySlug,
		Description: description,
	}); err != nil {
		slog.Error("create category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// UpdateCategory renames a category. The slug follows the new name.
func (h *Admin) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	category, err := h.categories.FindByID(id)
	if err != nil {
		slog.Error("find category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if category == nil {
		http.NotFound(w, r)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	description := strings.TrimSpace(r.FormValue("description"))

	if msg := validateCategory(name); msg != "" {
		h.categoriesPage(w, r, category, flashError(msg))
		return
	}

	exists, err := h.categories.NameExists(name, id)
	if err != nil {
		slog.Error("category name check failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if exists {
		h.categoriesPage(w, r, category, flashError("A category with that name already exists."))
		return
	}

	oldSlug := category.Slug
	if name != category.Name {
		newSlug, err := slug.Unique(name, h.categories.SlugExists)
		if err != nil {
			slog.Error("slug generation failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		category.Slug = newSlug
	}
	category.Name = name
	category.Description = description

	if err := h.categories.Update(category); err != nil {
		slog.Error("update category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.pageCache.InvalidateCategory(r.Context(), oldSlug)
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// DeleteCategory removes a category unless posts still reference it.
func (h *Admin) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	category, err := h.categories.FindByID(id)
	if err != nil {
		slog.Error("find category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if category == nil {
		http.NotFound(w, r)
		return
	}

	switch err := h.categories.Delete(id); {
	case err == nil:
	case errors.Is(err, store.ErrCategoryInUse):
		h.categoriesPage(w, r, nil, flashError(
			"Cannot delete \""+category.Name+"\": posts are still assigned to it."))
		return
	default:
		slog.Error("delete category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.pageCache.InvalidateCategory(r.Context(), category.Slug)
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// Users lists all accounts.
func (h *Admin) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		slog.Error("admin list users failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Page(w, r, "admin/users", &render.PageData{
		Title:   "Users",
		Section: "users",
		Data:    map[string]any{"Users": users},
	})
}

// SetUserRole promotes or demotes an account. Admins cannot change
// their own role.
func (h *Admin) SetUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	actor := middleware.ActorFromCtx(r.Context())
	if !actor.CanChangeRole(id) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	role := models.Role(r.FormValue("role"))
	if role != models.RoleMember && role != models.RoleAdmin {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	user, err := h.users.FindByID(id)
	if err != nil {
		slog.Error("find user failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.NotFound(w, r)
		return
	}

	if err := h.users.SetRole(id, role); err != nil {
		slog.Error("set user role failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Their open sessions still carry the old role; force a fresh login.
	if err := h.sessions.DestroyUser(r.Context(), id); err != nil {
		slog.Error("destroy user sessions failed", "error", err)
	}

	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// DeleteUser removes an account and all its posts and comments. Admins
// cannot delete themselves.
func (h *Admin) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	actor := middleware.ActorFromCtx(r.Context())
	if !actor.CanDeleteUser(id) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	user, err := h.users.FindByID(id)
	if err != nil {
		slog.Error("find user failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.NotFound(w, r)
		return
	}

	if err := h.users.Delete(id); err != nil {
		slog.Error("delete user failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.DestroyUser(r.Context(), id); err != nil {
		slog.Error("destroy user sessions failed", "error", err)
	}

	// Their published posts disappear from every listing.
	h.pageCache.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// Settings renders the site settings form.
func (h *Admin) Settings(w http.ResponseWriter, r *http.Request) {
	config, err := h.settings.Config()
	if err != nil {
		slog.Error("load site config failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Page(w, r, "admin/settings", &render.PageData{
		Title:   "Settings",
		Section: "settings",
		Data:    map[string]any{"Config": config},
	})
}

// SaveSettings persists the whole settings form in one transaction, so
// a failed save never leaves the site half-configured.
func (h *Admin) SaveSettings(w http.ResponseWriter, r *http.Request) {
	siteName := strings.TrimSpace(r.FormValue("site_name"))
	adminEmail := strings.TrimSpace(r.FormValue("admin_email"))
	postsPerPage := strings.TrimSpace(r.FormValue("posts_per_page"))

	if msg := validateSettings(siteName, adminEmail, postsPerPage); msg != "" {
		config, err := h.settings.Config()
		if err != nil {
			slog.Error("load site config failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		h.renderer.Page(w, r, "admin/settings", &render.PageData{
			Title:   "Settings",
			Section: "settings",
			Flashes: flashError(msg),
			Data:    map[string]any{"Config": config},
		})
		return
	}

	values := map[string]string{
		models.SettingSiteName:            siteName,
		models.SettingSiteDescription:     strings.TrimSpace(r.FormValue("site_description")),
		models.SettingPostsPerPage:        postsPerPage,
		models.SettingAllowComments:       checkbox(r, "allow_comments"),
		models.SettingAutoApproveComments: checkbox(r, "auto_approve_comments"),
		models.SettingNotifyOnComment:     checkbox(r, "notify_on_comment"),
		models.SettingAdminEmail:          adminEmail,
		models.SettingMaintenanceMode:     checkbox(r, "maintenance_mode"),
		models.SettingMaintenanceMessage:  strings.TrimSpace(r.FormValue("maintenance_message")),
	}

	if err := h.settings.SetMany(values); err != nil {
		slog.Error("save settings failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Settings feed every rendered page (site name, per-page count,
	// comment visibility), so drop the whole page cache.
	h.pageCache.InvalidateAll(r.Context())

	config, err := h.settings.Config()
	if err != nil {
		slog.Error("load site config failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.renderer.Page(w, r, "admin/settings", &render.PageData{
		Title:   "Settings",
		Section: "settings",
		Flashes: flashSuccess("Settings saved."),
		Data:    map[string]any{"Config": config},
	})
}

// checkbox maps an HTML checkbox to the stored setting value. An
// unchecked box is absent from the form entirely.
func checkbox(r *http.Request, name string) string {
	if r.FormValue(name) != "" {
		return "1"
	}
	return "0"
}
