// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
package slug

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit,
	// whitespace, or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// separators collapses runs of whitespace and hyphens into one hyphen.
	separators = regexp.MustCompile(`[\s-]+`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Summer in Paris, 1962!" → "summer-in-paris-1962"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// Unique derives a slug from s and, when exists reports it as taken,
// appends a short random token so repeated titles never collide. The
// exists callback returns whether a candidate slug is already in use;
// a callback error is treated as taken so the caller never reuses a
// slug it could not verify.
func Unique(s string, exists func(slug string) (bool, error)) (string, error) {
	base := Generate(s)
	if base == "" {
		base = "post"
	}
	taken, err := exists(base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	return base + "-" + Token(), nil
}

// Token returns an 8-character random suffix for slug deduplication.
func Token() string {
	return uuid.NewString()[:8]
}
