package store

import (
	"testing"

	"vintageblog/internal/models"
)

func TestUserStore_CreateAndFind(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)

	username := "finder-" + uniq()
	created, err := users.Create(username, username+"@test.local", "secret123", models.RoleMember)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", created.ID) })

	if created.PasswordHash == "secret123" {
		t.Error("password stored in cleartext")
	}
	if created.Role != models.RoleMember {
		t.Errorf("role = %q, want member", created.Role)
	}

	byName, err := users.FindByUsername(username)
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if byName == nil || byName.ID != created.ID {
		t.Error("FindByUsername did not return the created user")
	}

	byEmail, err := users.FindByEmail(username + "@test.local")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if byEmail == nil || byEmail.ID != created.ID {
		t.Error("FindByEmail did not return the created user")
	}

	missing, err := users.FindByUsername("no-such-user-" + uniq())
	if err != nil {
		t.Fatalf("FindByUsername missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown username")
	}
}

func TestUserStore_CheckPassword(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	u := testUser(t, db, models.RoleMember)

	if !users.CheckPassword(u, "password123") {
		t.Error("correct password rejected")
	}
	if users.CheckPassword(u, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestUserStore_UpdatePassword(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	u := testUser(t, db, models.RoleMember)

	if err := users.UpdatePassword(u.ID, "newsecret456"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}

	reloaded, err := users.FindByID(u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !users.CheckPassword(reloaded, "newsecret456") {
		t.Error("new password rejected")
	}
	if users.CheckPassword(reloaded, "password123") {
		t.Error("old password still accepted")
	}
}

func TestUserStore_UpdateProfile(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	u := testUser(t, db, models.RoleMember)

	first, last, bio := "Jaime", "Smith", "Film photographer."
	if err := users.UpdateProfile(u.ID, &first, &last, &bio, nil); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	reloaded, err := users.FindByID(u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if reloaded.FirstName == nil || *reloaded.FirstName != "Jaime" {
		t.Errorf("first name = %v, want Jaime", reloaded.FirstName)
	}
	if reloaded.DisplayName() != "Jaime Smith" {
		t.Errorf("DisplayName = %q, want %q", reloaded.DisplayName(), "Jaime Smith")
	}
}

func TestUserStore_SetRole(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	u := testUser(t, db, models.RoleMember)

	if err := users.SetRole(u.ID, models.RoleAdmin); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	reloaded, _ := users.FindByID(u.ID)
	if !reloaded.IsAdmin() {
		t.Error("user not admin after SetRole")
	}

	if err := users.SetRole(u.ID, models.RoleMember); err != nil {
		t.Fatalf("SetRole back: %v", err)
	}
	reloaded, _ = users.FindByID(u.ID)
	if reloaded.IsAdmin() {
		t.Error("user still admin after demotion")
	}
}

func TestUserStore_DeleteCascades(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	u := testUser(t, db, models.RoleMember)
	cat := testCategory(t, db, "user-del")
	p := testPost(t, db, u, models.PostStatusPublished, cat)

	if err := users.Delete(u.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	gone, err := NewPostStore(db).FindByID(p.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if gone != nil {
		t.Error("post survived author deletion")
	}
}
