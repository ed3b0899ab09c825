package handlers

import (
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Validation limits for user and content form fields.
const (
	minUsernameLen = 3
	maxUsernameLen = 30
	minPasswordLen = 8
	maxTitleLen    = 300
	maxContentLen  = 100_000
	maxCommentLen  = 5_000
	maxNameLen     = 100
	maxBioLen      = 2_000
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// validateRegistration checks the registration form and returns all
// problems found, so the user can fix them in one pass.
func validateRegistration(username, email, password, confirm string) []string {
	var errs []string

	username = strings.TrimSpace(username)
	switch {
	case username == "":
		errs = append(errs, "Username is required.")
	case utf8.RuneCountInString(username) < minUsernameLen:
		errs = append(errs, "Username must be at least 3 characters.")
	case utf8.RuneCountInString(username) > maxUsernameLen:
		errs = append(errs, "Username is too long (max 30 characters).")
	case !usernamePattern.MatchString(username):
		errs = append(errs, "Username may only contain letters, digits, and underscores.")
	}

	email = strings.TrimSpace(email)
	if email == "" {
		errs = append(errs, "Email is required.")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs = append(errs, "Email address is not valid.")
	}

	if len(password) < minPasswordLen {
		errs = append(errs, "Password must be at least 8 characters.")
	} else if password != confirm {
		errs = append(errs, "Passwords do not match.")
	}

	return errs
}

// validatePost checks post form inputs and returns the first error found.
func validatePost(title, content string, categoryIDs []string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if strings.TrimSpace(content) == "" {
		return "Content is required."
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return "Content is too long (max 100,000 characters)."
	}
	if len(categoryIDs) == 0 {
		return "Select at least one category."
	}
	return ""
}

// validateComment checks a comment body.
func validateComment(content string) string {
	if strings.TrimSpace(content) == "" {
		return "Comment cannot be empty."
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return "Comment is too long (max 5,000 characters)."
	}
	return ""
}

// validateCategory checks the category form.
func validateCategory(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Category name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Category name is too long (max 100 characters)."
	}
	return ""
}

// validateProfile checks the profile form.
func validateProfile(firstName, lastName, bio string) string {
	if utf8.RuneCountInString(firstName) > maxNameLen {
		return "First name is too long (max 100 characters)."
	}
	if utf8.RuneCountInString(lastName) > maxNameLen {
		return "Last name is too long (max 100 characters)."
	}
	if utf8.RuneCountInString(bio) > maxBioLen {
		return "Bio is too long (max 2,000 characters)."
	}
	return ""
}

// validateSettings checks the settings form and returns the first error
// found.
func validateSettings(siteName, adminEmail, postsPerPage string) string {
	if strings.TrimSpace(siteName) == "" {
		return "Site name is required."
	}
	if adminEmail != "" {
		if _, err := mail.ParseAddress(adminEmail); err != nil {
			return "Admin email is not valid."
		}
	}
	if n, err := strconv.Atoi(postsPerPage); err != nil || n < 1 {
		return "Posts per page must be a positive number."
	}
	return ""
}
