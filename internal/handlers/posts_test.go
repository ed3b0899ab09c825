// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vintageblog/internal/models"
)

// multipartForm builds a multipart request body from string fields,
// repeating the "categories" field per value.
func multipartForm(t *testing.T, path string, fields map[string][]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, values := range fields {
		for _, v := range values {
			if err := mw.WriteField(name, v); err != nil {
				t.Fatalf("write field %s: %v", name, err)
			}
		}
	}
	mw.Close()

	r := httptest.NewRequest("POST", path, &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestPosts_CreateDraft(t *testing.T) {
	env := newTestEnv(t)
	user := testUser(t, env.DB, "member")
	category := testCategory(t, env.DB)

	title := "Summer in Paris " + uniq()
	r := multipartForm(t, "/posts", map[string][]string{
		"title":      {title},
		"content":    {"<p>Light leaks everywhere.</p>"},
		"status":     {"draft"},
		"categories": {category.ID.String()},
	})
	r = withSession(r, sessionFor(user))
	w := httptest.NewRecorder()
	env.Member.Create(w, r)

	t.Cleanup(func() { env.DB.Exec("DELETE FROM posts WHERE title = $1", title) })

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303; body: %s", w.Code, w.Body.String())
	}

	var slug, status string
	err := env.DB.QueryRow("SELECT slug, status FROM posts WHERE title = $1", title).Scan(&slug, &status)
	if err != nil {
		t.Fatalf("post not created: %v", err)
	}
	if status != "draft" {
		t.Errorf("status = %q, want draft", status)
	}
	if !strings.HasPrefix(slug, "summer-in-paris-") {
		t.Errorf("slug = %q, want derived from title", slug)
	}
}

func TestPosts_CreateRequiresCategory(t *testing.T) {
	env := newTestEnv(t)
	user := testUser(t, env.DB, "member")

	title := "Uncategorized " + uniq()
	r := multipartForm(t, "/posts", map[string][]string{
		"title":   {title},
		"content": {"<p>Body</p>"},
		"status":  {"draft"},
	})
	r = withSession(r, sessionFor(user))
	w := httptest.NewRecorder()
	env.Member.Create(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 re-render", w.Code)
	}
	if !strings.Contains(w.Body.String(), "at least one category") {
		t.Error("expected category requirement message")
	}

	var count int
	env.DB.QueryRow("SELECT COUNT(*) FROM posts WHERE title = $1", title).Scan(&count)
	if count != 0 {
		t.Error("post should not have been created")
	}
}

func TestPosts_ToggleForbiddenForOtherMember(t *testing.T) {
	env := newTestEnv(t)
	owner := testUser(t, env.DB, "member")
	other := testUser(t, env.DB, "member")
	category := testCategory(t, env.DB)
	post := testPost(t, env.DB, owner, models.PostStatusDraft, category)

	r := withURLParam(httptest.NewRequest("POST", "/posts/"+post.ID.String()+"/status", nil), "id", post.ID.String())
	r = withSession(r, sessionFor(other))
	w := httptest.NewRecorder()
	env.Member.ToggleStatus(w, r)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 redirect away", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/my-posts" {
		t.Errorf("redirect = %q, want /my-posts", loc)
	}

	var status string
	env.DB.QueryRow("SELECT status FROM posts WHERE id = $1", post.ID).Scan(&status)
	if status != "draft" {
		t.Errorf("status = %q, post should be unchanged", status)
	}
}

func TestPosts_AdminCanToggleAnyPost(t *testing.T) {
	env := newTestEnv(t)
	owner := testUser(t, env.DB, "member")
	admin := testUser(t, env.DB, "admin")
	category := testCategory(t, env.DB)
	post := testPost(t, env.DB, owner, models.PostStatusDraft, category)

	r := withURLParam(httptest.NewRequest("POST", "/posts/"+post.ID.String()+"/status", nil), "id", post.ID.String())
	r = withSession(r, sessionFor(admin))
	w := httptest.NewRecorder()
	env.Member.ToggleStatus(w, r)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}

	var status string
	env.DB.QueryRow("SELECT status FROM posts WHERE id = $1", post.ID).Scan(&status)
	if status != "published" {
		t.Errorf("status = %q, want published", status)
	}
}

func TestPosts_SlugStableOnContentEdit(t *testing.T) {
	env := newTestEnv(t)
	owner := testUser(t, env.DB, "member")
	category := testCategory(t, env.DB)
	post := testPost(t, env.DB, owner, models.PostStatusPublished, category)

	r := multipartForm(t, "/posts/"+post.ID.String(), map[string][]string{
		"title":      {post.Title},
		"content":    {"<p>Rewritten body.</p>"},
		"status":     {"published"},
		"categories": {category.ID.String()},
	})
	r = withURLParam(r, "id", post.ID.String())
	r = withSession(r, sessionFor(owner))
	w := httptest.NewRecorder()
	env.Member.Update(w, r)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303; body: %s", w.Code, w.Body.String())
	}

	var slug, content string
	env.DB.QueryRow("SELECT slug, content FROM posts WHERE id = $1", post.ID).Scan(&slug, &content)
	if slug != post.Slug {
		t.Errorf("slug changed from %q to %q on a content-only edit", post.Slug, slug)
	}
	if content != "<p>Rewritten body.</p>" {
		t.Errorf("content not updated: %q", content)
	}
}

func TestPosts_SlugFollowsTitleEdit(t *testing.T) {
	env := newTestEnv(t)
	owner := testUser(t, env.DB, "member")
	category := testCategory(t, env.DB)
	post := testPost(t, env.DB, owner, models.PostStatusPublished, category)

	newTitle := "Renamed Expedition " + uniq()
	r := multipartForm(t, "/posts/"+post.ID.String(), map[string][]string{
		"title":      {newTitle},
		"content":    {post.Content},
		"status":     {"published"},
		"categories": {category.ID.String()},
	})
	r = withURLParam(r, "id", post.ID.String())
	r = withSession(r, sessionFor(owner))
	w := httptest.NewRecorder()
	env.Member.Update(w, r)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303; body: %s", w.Code, w.Body.String())
	}

	var slug string
	env.DB.QueryRow("SELECT slug FROM posts WHERE id = $1", post.ID).Scan(&slug)
	if !strings.HasPrefix(slug, "renamed-expedition-") {
		t.Errorf("slug = %q, want derived from the new title", slug)
	}
}

func TestPosts_DeleteRemovesPost(t *testing.T) {
	env := newTestEnv(t)
	owner := testUser(t, env.DB, "member")
	category := testCategory(t, env.DB)
	post := testPost(t, env.DB, owner, models.PostStatusPublished, category)

	r := withURLParam(httptest.NewRequest("POST", "/posts/"+post.ID.String()+"/delete", nil), "id", post.ID.String())
	r = withSession(r, sessionFor(owner))
	w := httptest.NewRecorder()
	env.Member.Delete(w, r)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}

	var count int
	env.DB.QueryRow("SELECT COUNT(*) FROM posts WHERE id = $1", post.ID).Scan(&count)
	if count != 0 {
		t.Error("post still exists after delete")
	}
}

func TestPosts_MyPostsListsOnlyOwn(t *testing.T) {
	env := newTestEnv(t)
	owner := testUser(t, env.DB, "member")
	other := testUser(t, env.DB, "member")
	category := testCategory(t, env.DB)
	mine := testPost(t, env.DB, owner, models.PostStatusDraft, category)
	theirs := testPost(t, env.DB, other, models.PostStatusDraft, category)

	r := withSession(httptest.NewRequest("GET", "/my-posts", nil), sessionFor(owner))
	w := httptest.NewRecorder()
	env.Member.MyPosts(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, mine.Title) {
		t.Error("expected own post in listing")
	}
	if strings.Contains(body, theirs.Title) {
		t.Error("another member's post leaked into the listing")
	}
}

func TestPosts_CreateMalformedFormRerenders(t *testing.T) {
	env := newTestEnv(t)
	author := testUser(t, env.DB, "member")

	r := httptest.NewRequest("POST", "/posts", strings.NewReader("not a multipart body"))
	r.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	r = withSession(r, sessionFor(author))
	w := httptest.NewRecorder()
	env.Member.Create(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 re-render with error", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Could not read the form.") {
		t.Error("expected form-read error message in response")
	}
}

func TestPosts_UpdateMalformedFormRerenders(t *testing.T) {
	env := newTestEnv(t)
	author := testUser(t, env.DB, "member")
	category := testCategory(t, env.DB)
	post := testPost(t, env.DB, author, models.PostStatusDraft, category)

	r := httptest.NewRequest("POST", "/posts/"+post.ID.String(), strings.NewReader("not a multipart body"))
	r.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	r = withURLParam(r, "id", post.ID.String())
	r = withSession(r, sessionFor(author))
	w := httptest.NewRecorder()
	env.Member.Update(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 re-render with error", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Could not read the form.") {
		t.Error("expected form-read error message in response")
	}

	var title string
	env.DB.QueryRow("SELECT title FROM posts WHERE id = $1", post.ID).Scan(&title)
	if title != post.Title {
		t.Errorf("title = %q, post should be unchanged", title)
	}
}
