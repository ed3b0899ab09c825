package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"vintageblog/internal/models"
)

// Seed populates the database with initial development data: a default
// admin account and the baseline site settings. Existing rows are never
// overwritten.
func Seed(db *sql.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	return seedSettings(db)
}

func seedAdmin(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("users already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
	`, "admin", "admin@vintageblog.local", string(hash), string(models.RoleAdmin))
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"username", "admin",
		"password", "admin",
	)

	return nil
}

func seedSettings(db *sql.DB) error {
	cfg := models.DefaultSiteConfig()
	defaults := map[string]string{
		models.SettingSiteName:            cfg.SiteName,
		models.SettingSiteDescription:     cfg.SiteDescription,
		models.SettingPostsPerPage:        fmt.Sprintf("%d", cfg.PostsPerPage),
		models.SettingAllowComments:       boolSetting(cfg.AllowComments),
		models.SettingAutoApproveComments: boolSetting(cfg.AutoApproveComments),
		models.SettingNotifyOnComment:     boolSetting(cfg.NotifyOnComment),
		models.SettingAdminEmail:          cfg.AdminEmail,
		models.SettingMaintenanceMode:     boolSetting(cfg.MaintenanceMode),
		models.SettingMaintenanceMessage:  cfg.MaintenanceMessage,
	}

	for key, value := range defaults {
		_, err := db.Exec(`
			INSERT INTO settings (key, value)
			VALUES ($1, $2)
			ON CONFLICT (key) DO NOTHING
		`, key, value)
		if err != nil {
			return fmt.Errorf("seed setting %s: %w", key, err)
		}
	}

	slog.Info("default site settings ensured")
	return nil
}

func boolSetting(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
