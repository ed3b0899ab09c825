// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"html/template"
	"log/slog"
	"net/http"

	"vintageblog/internal/models"
)

// SiteConfigLoader supplies the current site configuration. Implemented
// by the settings store; declared here so the gate can be tested without
// a database.
type SiteConfigLoader interface {
	Config() (models.SiteConfig, error)
}

var maintenanceTmpl = template.Must(template.New("maintenance").Parse(`<!DOCTYPE html>
<html>
<head><title>Maintenance</title></head>
<body>
<h1>Down for maintenance</h1>
<p>{{.}}</p>
</body>
</html>
`))

// Maintenance gates public traffic while maintenance mode is enabled.
// Non-admin requests get a 503 with the configured message and nothing
// else runs. Authenticated admins pass through, and the login page stays
// reachable so admins can get in. Must be applied after LoadSession.
func Maintenance(settings SiteConfigLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cfg, err := settings.Config()
			if err != nil {
				slog.Error("maintenance gate: load settings", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if !cfg.MaintenanceMode {
				next.ServeHTTP(w, r)
				return
			}

			// Login stays reachable so admins can get in, and the
			// health check keeps answering for orchestration.
			switch r.URL.Path {
			case "/login", "/logout", "/health":
				next.ServeHTTP(w, r)
				return
			}

			if ActorFromCtx(r.Context()).IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Set("Retry-After", "3600")
			w.WriteHeader(http.StatusServiceUnavailable)
			maintenanceTmpl.Execute(w, cfg.MaintenanceMessage)
		})
	}
}
