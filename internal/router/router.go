// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains. Routes
// split into the public site, the member area, and the admin interface.
package router

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vintageblog/internal/handlers"
	"vintageblog/internal/middleware"
	"vintageblog/internal/session"
	"vintageblog/internal/storage"
	"vintageblog/internal/store"
	"vintageblog/web"
)

// New creates and returns the configured chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, settings *store.SiteSettingStore, uploads *storage.Local,
	auth *handlers.Auth, public *handlers.Public, posts *handlers.Posts, admin *handlers.Admin) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CSRF)
	r.Use(middleware.LoadSession(sessionStore))
	r.Use(middleware.Maintenance(settings))

	// Health check — no session, no HTML.
	r.Get("/health", healthHandler)

	// Static assets and uploaded images.
	staticFS, _ := fs.Sub(web.StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploads.Dir()))))

	// Authentication. Login and logout must stay reachable during
	// maintenance; the Maintenance middleware lets them through.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	r.Group(func(r chi.Router) {
		r.Use(loginLimiter.Middleware)
		r.Get("/login", auth.LoginPage)
		r.Post("/login", auth.LoginSubmit)
		r.Get("/register", auth.RegisterPage)
		r.Post("/register", auth.RegisterSubmit)
	})
	r.Post("/logout", auth.Logout)

	// Public site.
	r.Get("/", public.Home)
	r.Get("/post/{slug}", public.Post)
	r.Post("/post/{slug}/comments", public.CommentSubmit)
	r.Get("/category/{slug}", public.Category)
	r.Get("/search", public.Search)

	// Member area.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/my-posts", posts.MyPosts)
		r.Get("/posts/new", posts.NewForm)
		r.Post("/posts", posts.Create)
		r.Get("/posts/{id}/edit", posts.EditForm)
		r.Post("/posts/{id}", posts.Update)
		r.Post("/posts/{id}/status", posts.ToggleStatus)
		r.Post("/posts/{id}/delete", posts.Delete)

		r.Get("/profile", auth.ProfilePage)
		r.Post("/profile", auth.ProfileUpdate)
		r.Post("/profile/password", auth.PasswordUpdate)
	})

	// Admin interface.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)

		r.Get("/", admin.Dashboard)
		r.Get("/posts", admin.Posts)

		r.Get("/comments", admin.Comments)
		r.Post("/comments/{id}/approve", admin.ApproveComment)
		r.Post("/comments/{id}/spam", admin.SpamComment)
		r.Post("/comments/{id}/delete", admin.DeleteComment)

		r.Get("/categories", admin.Categories)
		r.Post("/categories", admin.CreateCategory)
		r.Post("/categories/{id}", admin.UpdateCategory)
		r.Post("/categories/{id}/delete", admin.DeleteCategory)

		r.Get("/users", admin.Users)
		r.Post("/users/{id}/role", admin.SetUserRole)
		r.Post("/users/{id}/delete", admin.DeleteUser)

		r.Get("/settings", admin.Settings)
		r.Post("/settings", admin.SaveSettings)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
