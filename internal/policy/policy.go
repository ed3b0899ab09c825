// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package policy centralizes the authorization rules. An Actor is built
// from the session once per request and compared against stored ownership.
package policy

import (
	"github.com/google/uuid"

	"vintageblog/internal/models"
)

// Actor is the authenticated principal for a request. The zero value is
// an anonymous visitor.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

// IsAuthenticated reports whether the actor is a logged-in user.
func (a Actor) IsAuthenticated() bool {
	return a.ID != uuid.Nil
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.IsAuthenticated() && a.Role == models.RoleAdmin
}

// CanModifyPost reports whether the actor may edit, delete, or change the
// status of the post with the given author. Admins override ownership.
func (a Actor) CanModifyPost(authorID uuid.UUID) bool {
	if !a.IsAuthenticated() {
		return false
	}
	return a.IsAdmin() || a.ID == authorID
}

// CanDeleteUser reports whether the actor may delete the given account.
// Admins may delete anyone but themselves.
func (a Actor) CanDeleteUser(userID uuid.UUID) bool {
	return a.IsAdmin() && a.ID != userID
}

// CanChangeRole reports whether the actor may change the given account's
// role. Admins cannot demote themselves.
func (a Actor) CanChangeRole(userID uuid.UUID) bool {
	return a.IsAdmin() && a.ID != userID
}
