// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strconv"
	"time"
)

// Setting keys recognized by the site configuration.
const (
	SettingSiteName            = "site_name"
	SettingSiteDescription     = "site_description"
	SettingPostsPerPage        = "posts_per_page"
	SettingAllowComments       = "allow_comments"
	SettingAutoApproveComments = "auto_approve_comments"
	SettingNotifyOnComment     = "notify_on_comment"
	SettingAdminEmail          = "admin_email"
	SettingMaintenanceMode     = "maintenance_mode"
	SettingMaintenanceMessage  = "maintenance_message"
)

// SiteSetting represents a single configuration key-value pair.
type SiteSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SiteSettings is a convenience map for accessing settings by key.
type SiteSettings map[string]string

// Get returns the value for a key, or the fallback if the key doesn't exist.
func (s SiteSettings) Get(key, fallback string) string {
	if v, ok := s[key]; ok && v != "" {
		return v
	}
	return fallback
}

// SiteConfig is the typed view over the settings table. Missing or
// malformed values fall back to the defaults below rather than erroring.
type SiteConfig struct {
	SiteName            string
	SiteDescription     string
	PostsPerPage        int
	AllowComments       bool
	AutoApproveComments bool
	NotifyOnComment     bool
	AdminEmail          string
	MaintenanceMode     bool
	MaintenanceMessage  string
}

// DefaultSiteConfig returns the configuration used when a key is absent.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		SiteName:            "Vintage Photo Blog",
		SiteDescription:     "A blog about vintage photography",
		PostsPerPage:        10,
		AllowComments:       true,
		AutoApproveComments: false,
		NotifyOnComment:     true,
		AdminEmail:          "admin@example.com",
		MaintenanceMode:     false,
		MaintenanceMessage:  "We are performing scheduled maintenance. Please check back soon.",
	}
}

// ParseSiteConfig builds a SiteConfig from raw settings, applying defaults
// for anything missing.
func ParseSiteConfig(s SiteSettings) SiteConfig {
	cfg := DefaultSiteConfig()
	cfg.SiteName = s.Get(SettingSiteName, cfg.SiteName)
	cfg.SiteDescription = s.Get(SettingSiteDescription, cfg.SiteDescription)
	if n, err := strconv.Atoi(s.Get(SettingPostsPerPage, "")); err == nil && n > 0 {
		cfg.PostsPerPage = n
	}
	cfg.AllowComments = parseBool(s.Get(SettingAllowComments, ""), cfg.AllowComments)
	cfg.AutoApproveComments = parseBool(s.Get(SettingAutoApproveComments, ""), cfg.AutoApproveComments)
	cfg.NotifyOnComment = parseBool(s.Get(SettingNotifyOnComment, ""), cfg.NotifyOnComment)
	cfg.AdminEmail = s.Get(SettingAdminEmail, cfg.AdminEmail)
	cfg.MaintenanceMode = parseBool(s.Get(SettingMaintenanceMode, ""), cfg.MaintenanceMode)
	cfg.MaintenanceMessage = s.Get(SettingMaintenanceMessage, cfg.MaintenanceMessage)
	return cfg
}

func parseBool(v string, fallback bool) bool {
	switch v {
	case "1", "true", "on", "yes":
		return true
	case "0", "false", "off", "no":
		return false
	}
	return fallback
}
