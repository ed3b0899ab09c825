// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public site
// and the admin interface. Every page template is parsed against its
// section's base layout at startup so template errors surface before
// the server accepts traffic.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"vintageblog/internal/middleware"
	"vintageblog/internal/session"
)

//go:embed templates/*.html templates/admin/*.html
var templateFS embed.FS

// PageData holds all data passed to templates.
type PageData struct {
	Title     string         // Page title for <title> tag
	Section   string         // Active nav section (e.g., "home", "posts")
	Session   *session.Data  // Current user session (nil if unauthenticated)
	CSRFToken string         // CSRF token for forms
	Data      map[string]any // Page-specific data
	Flashes   []Flash        // One-time notification messages
}

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// Errors builds error flashes from a validation message list.
func Errors(messages []string) []Flash {
	flashes := make([]Flash, 0, len(messages))
	for _, m := range messages {
		flashes = append(flashes, Flash{Type: "error", Message: m})
	}
	return flashes
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
}

// standaloneTemplates render as full HTML pages without the base layout
// (they have their own <html>, <head>, etc.).
var standaloneTemplates = map[string]bool{
	"login":    true,
	"register": true,
}

var funcMap = template.FuncMap{
	// deref safely dereferences a string pointer for use in templates.
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	// raw marks post content as trusted HTML. Post bodies are
	// author-trusted and stored verbatim.
	"raw": func(s string) template.HTML {
		return template.HTML(s)
	},
	// excerpt returns the first n characters of a string with tags
	// stripped naively, for listing previews.
	"excerpt": func(s string, n int) string {
		var b strings.Builder
		inTag := false
		for _, r := range s {
			switch {
			case r == '<':
				inTag = true
			case r == '>':
				inTag = false
			case !inTag:
				b.WriteRune(r)
			}
		}
		out := b.String()
		if len(out) > n {
			return out[:n] + "…"
		}
		return out
	},
	"add": func(a, b int) int { return a + b },
	"sub": func(a, b int) int { return a - b },
}

// New creates a Renderer by parsing all templates from the embedded
// filesystem. Site pages pair with templates/base.html, admin pages with
// templates/admin/base.html and are keyed as "admin/<name>".
func New() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template)}

	if err := r.parseDir("templates", "templates/base.html", ""); err != nil {
		return nil, err
	}
	if err := r.parseDir("templates/admin", "templates/admin/base.html", "admin/"); err != nil {
		return nil, err
	}
	return r, nil
}

func (rn *Renderer) parseDir(dir, base, keyPrefix string) error {
	entries, err := templateFS.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read templates %s: %w", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() || e.Name() == "base.html" {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".html")

		var tmpl *template.Template
		if standaloneTemplates[name] && keyPrefix == "" {
			tmpl, err = template.New(e.Name()).Funcs(funcMap).ParseFS(
				templateFS, dir+"/"+e.Name(),
			)
		} else {
			tmpl, err = template.New("base.html").Funcs(funcMap).ParseFS(
				templateFS, base, dir+"/"+e.Name(),
			)
		}
		if err != nil {
			return fmt.Errorf("parse template %s: %w", e.Name(), err)
		}

		rn.templates[keyPrefix+name] = tmpl
	}
	return nil
}

// HTML renders a page to bytes. Used by handlers that cache the rendered
// output before writing it.
func (rn *Renderer) HTML(r *http.Request, name string, data *PageData) ([]byte, error) {
	tmpl, ok := rn.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}

	if data.CSRFToken == "" {
		data.CSRFToken = middleware.GetCSRFToken(r)
	}
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}

	execName := "base.html"
	if standaloneTemplates[name] {
		execName = name + ".html"
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, execName, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Page renders a full page to the response, mapping template errors to a
// 500.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	out, err := rn.HTML(r, name, data)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(out)
}
