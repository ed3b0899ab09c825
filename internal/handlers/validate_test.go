package handlers

import (
	"strings"
	"testing"
)

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
		confirm  string
		wantErr  string // substring of one expected error, "" for valid
	}{
		{"valid", "jaime_92", "jaime@example.com", "password1", "password1", ""},
		{"empty username", "", "jaime@example.com", "password1", "password1", "Username is required"},
		{"short username", "ab", "jaime@example.com", "password1", "password1", "at least 3"},
		{"bad characters", "jaime!", "jaime@example.com", "password1", "password1", "letters, digits"},
		{"bad email", "jaime", "not-an-email", "password1", "password1", "not valid"},
		{"short password", "jaime", "jaime@example.com", "short", "short", "at least 8"},
		{"mismatch", "jaime", "jaime@example.com", "password1", "password2", "do not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateRegistration(tt.username, tt.email, tt.password, tt.confirm)
			if tt.wantErr == "" {
				if len(errs) != 0 {
					t.Errorf("expected no errors, got %v", errs)
				}
				return
			}
			found := false
			for _, e := range errs {
				if strings.Contains(e, tt.wantErr) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, errs)
			}
		})
	}
}

func TestValidateRegistration_CollectsAll(t *testing.T) {
	errs := validateRegistration("", "bad", "x", "y")
	if len(errs) != 3 {
		t.Errorf("expected 3 errors, got %d: %v", len(errs), errs)
	}
}

func TestValidatePost(t *testing.T) {
	cats := []string{"11111111-1111-1111-1111-111111111111"}

	if msg := validatePost("Title", "Body", cats); msg != "" {
		t.Errorf("valid post rejected: %s", msg)
	}
	if msg := validatePost("", "Body", cats); !strings.Contains(msg, "Title") {
		t.Errorf("missing title not caught: %q", msg)
	}
	if msg := validatePost("Title", "  ", cats); !strings.Contains(msg, "Content") {
		t.Errorf("missing content not caught: %q", msg)
	}
	if msg := validatePost("Title", "Body", nil); !strings.Contains(msg, "category") {
		t.Errorf("missing categories not caught: %q", msg)
	}
	long := strings.Repeat("x", maxTitleLen+1)
	if msg := validatePost(long, "Body", cats); !strings.Contains(msg, "too long") {
		t.Errorf("overlong title not caught: %q", msg)
	}
}

func TestValidateComment(t *testing.T) {
	if msg := validateComment("Nice shot!"); msg != "" {
		t.Errorf("valid comment rejected: %s", msg)
	}
	if msg := validateComment("   "); msg == "" {
		t.Error("blank comment accepted")
	}
	if msg := validateComment(strings.Repeat("x", maxCommentLen+1)); msg == "" {
		t.Error("overlong comment accepted")
	}
}

func TestValidateSettings(t *testing.T) {
	if msg := validateSettings("My Blog", "admin@example.com", "10"); msg != "" {
		t.Errorf("valid settings rejected: %s", msg)
	}
	if msg := validateSettings("", "admin@example.com", "10"); msg == "" {
		t.Error("empty site name accepted")
	}
	if msg := validateSettings("My Blog", "nope", "10"); msg == "" {
		t.Error("bad admin email accepted")
	}
	if msg := validateSettings("My Blog", "admin@example.com", "0"); msg == "" {
		t.Error("zero posts per page accepted")
	}
	if msg := validateSettings("My Blog", "admin@example.com", "abc"); msg == "" {
		t.Error("non-numeric posts per page accepted")
	}
}
