// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the public site, the
// member area, and the admin interface.
package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"vintageblog/internal/middleware"
	"vintageblog/internal/models"
	"vintageblog/internal/render"
	"vintageblog/internal/session"
	"vintageblog/internal/storage"
	"vintageblog/internal/store"
)

// Auth groups registration, login, and account handlers.
type Auth struct {
	renderer *render.Renderer
	sessions *session.Store
	users    *store.UserStore
	uploads  *storage.Local
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, users *store.UserStore, uploads *storage.Local) *Auth {
	return &Auth{
		renderer: renderer,
		sessions: sessions,
		users:    users,
		uploads:  uploads,
	}
}

func flashError(msg string) []render.Flash {
	return []render.Flash{{Type: "error", Message: msg}}
}

func flashSuccess(msg string) []render.Flash {
	return []render.Flash{{Type: "success", Message: msg}}
}

// RegisterPage renders the registration form.
func (a *Auth) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	a.renderer.Page(w, r, "register", &render.PageData{
		Title: "Register",
		Data:  map[string]any{"Username": "", "Email": ""},
	})
}

// RegisterSubmit processes the registration form, creates the account,
// and signs the new member in.
func (a *Auth) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirm := r.FormValue("password_confirm")

	rerender := func(flashes []render.Flash) {
		a.renderer.Page(w, r, "register", &render.PageData{
			Title:   "Register",
			Flashes: flashes,
			Data:    map[string]any{"Username": username, "Email": email},
		})
	}

	if errs := validateRegistration(username, email, password, confirm); len(errs) > 0 {
		rerender(render.Errors(errs))
		return
	}

	if existing, err := a.users.FindByUsername(username); err != nil {
		slog.Error("register username lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	} else if existing != nil {
		rerender(flashError("That username is already taken."))
		return
	}

	if existing, err := a.users.FindByEmail(email); err != nil {
		slog.Error("register email lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	} else if existing != nil {
		rerender(flashError("An account with that email already exists."))
		return
	}

	user, err := a.users.Create(username, email, password, models.RoleMember)
	if err != nil {
		slog.Error("register create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	}); err != nil {
		slog.Error("session create failed", "error", err)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	a.renderer.Page(w, r, "login", &render.PageData{
		Title: "Log in",
		Data:  map[string]any{"Username": ""},
	})
}

// LoginSubmit checks credentials and starts a session. Failures get a
// deliberately vague message.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	user, err := a.users.FindByUsername(username)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user == nil || !a.users.CheckPassword(user, password) {
		a.renderer.Page(w, r, "login", &render.PageData{
			Title:   "Log in",
			Flashes: flashError("Invalid username or password."),
			Data:    map[string]any{"Username": username},
		})
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	}); err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout destroys the session and returns to the home page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ProfilePage renders the account profile form.
func (a *Auth) ProfilePage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	user, err := a.users.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("profile lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "profile", &render.PageData{
		Title:   "Your profile",
		Section: "profile",
		Data:    map[string]any{"User": user},
	})
}

// ProfileUpdate saves the profile form, including an optional avatar
// upload.
func (a *Auth) ProfileUpdate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	user, err := a.users.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("profile lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	firstName := strings.TrimSpace(r.FormValue("first_name"))
	lastName := strings.TrimSpace(r.FormValue("last_name"))
	bio := strings.TrimSpace(r.FormValue("bio"))

	rerender := func(flashes []render.Flash) {
		a.renderer.Page(w, r, "profile", &render.PageData{
			Title:   "Your profile",
			Section: "profile",
			Flashes: flashes,
			Data:    map[string]any{"User": user},
		})
	}

	if msg := validateProfile(firstName, lastName, bio); msg != "" {
		rerender(flashError(msg))
		return
	}

	profileImage := user.ProfileImage
	if file, header, err := r.FormFile("profile_image"); err == nil {
		defer file.Close()
		name, err := a.uploads.Save(file, header)
		if err != nil {
			rerender(flashError(uploadErrorMessage(err)))
			return
		}
		if user.ProfileImage != nil {
			a.uploads.Remove(*user.ProfileImage)
		}
		profileImage = &name
	}

	if err := a.users.UpdateProfile(user.ID, optional(firstName), optional(lastName), optional(bio), profileImage); err != nil {
		slog.Error("profile update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// PasswordUpdate changes the account password after verifying the
// current one.
func (a *Auth) PasswordUpdate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	user, err := a.users.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("password lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	rerender := func(flashes []render.Flash) {
		a.renderer.Page(w, r, "profile", &render.PageData{
			Title:   "Your profile",
			Section: "profile",
			Flashes: flashes,
			Data:    map[string]any{"User": user},
		})
	}

	current := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")
	confirm := r.FormValue("new_password_confirm")

	if !a.users.CheckPassword(user, current) {
		rerender(flashError("Current password is incorrect."))
		return
	}
	if len(newPassword) < minPasswordLen {
		rerender(flashError("New password must be at least 8 characters."))
		return
	}
	if newPassword != confirm {
		rerender(flashError("New passwords do not match."))
		return
	}

	if err := a.users.UpdatePassword(user.ID, newPassword); err != nil {
		slog.Error("password update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "profile", &render.PageData{
		Title:   "Your profile",
		Section: "profile",
		Flashes: flashSuccess("Password changed."),
		Data:    map[string]any{"User": user},
	})
}

// optional maps an empty form value to a SQL NULL.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
