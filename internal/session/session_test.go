package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// testRedisClient returns a Redis client connected to the test instance.
// Skips the test if Redis is unavailable.
func testRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("REDIS_HOST", "localhost")
	port := envOr("REDIS_PORT", "6379")
	password := os.Getenv("REDIS_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests to isolate from dev data.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Redis not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestSessionCreateAndGet(t *testing.T) {
	client := testRedisClient(t)
	store := NewStore(client)

	w := httptest.NewRecorder()
	ctx := context.Background()

	data := &Data{
		UserID:   uuid.New(),
		Username: "sessionuser",
		Role:     "admin",
	}

	sessionID, err := store.Create(ctx, w, data)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sessionID == "" {
		t.Error("expected non-empty session ID")
	}

	// Verify cookie was set.
	resp := w.Result()
	var sessionCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == CookieName {
			sessionCookie = c
			break
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected session cookie to be set")
	}
	if !sessionCookie.HttpOnly {
		t.Error("expected HttpOnly cookie")
	}

	// Get the session back.
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(sessionCookie)

	retrieved, err := store.Get(ctx, req)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if retrieved == nil {
		t.Fatal("expected session data, got nil")
	}
	if retrieved.Username != "sessionuser" {
		t.Errorf("username: got %q, want %q", retrieved.Username, "sessionuser")
	}
	if retrieved.UserID != data.UserID {
		t.Errorf("userID: got %s, want %s", retrieved.UserID, data.UserID)
	}
	if retrieved.Role != "admin" {
		t.Errorf("role: got %q, want %q", retrieved.Role, "admin")
	}
	if retrieved.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestSessionGetNoCookie(t *testing.T) {
	client := testRedisClient(t)
	store := NewStore(client)

	req := httptest.NewRequest("GET", "/", nil)
	data, err := store.Get(context.Background(), req)
	if err != nil {
		t.Fatalf("Get (no cookie): %v", err)
	}
	if data != nil {
		t.Error("expected nil for request without session cookie")
	}
}

func TestSessionGetExpired(t *testing.T) {
	client := testRedisClient(t)
	store := NewStore(client)

	// Request with a cookie pointing to a nonexistent session.
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "nonexistent-session-id"})

	data, err := store.Get(context.Background(), req)
	if err != nil {
		t.Fatalf("Get (expired): %v", err)
	}
	if data != nil {
		t.Error("expected nil for expired/nonexistent session")
	}
}

func TestSessionDestroy(t *testing.T) {
	client := testRedisClient(t)
	store := NewStore(client)
	ctx := context.Background()

	w := httptest.NewRecorder()
	_, err := store.Create(ctx, w, &Data{UserID: uuid.New(), Username: "bye", Role: "member"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("no session cookie set")
	}

	req := httptest.NewRequest("POST", "/logout", nil)
	req.AddCookie(cookie)
	w2 := httptest.NewRecorder()

	if err := store.Destroy(ctx, w2, req); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	// Cookie must be expired on the response.
	var cleared *http.Cookie
	for _, c := range w2.Result().Cookies() {
		if c.Name == CookieName {
			cleared = c
		}
	}
	if cleared == nil || cleared.MaxAge != -1 {
		t.Error("expected session cookie to be expired")
	}

	// Session must be gone from Redis.
	data, err := store.Get(ctx, req)
	if err != nil {
		t.Fatalf("Get after destroy: %v", err)
	}
	if data != nil {
		t.Error("session still readable after destroy")
	}
}

func TestSessionDestroyUser(t *testing.T) {
	client := testRedisClient(t)
	store := NewStore(client)
	ctx := context.Background()

	target := uuid.New()
	other := uuid.New()

	// Two sessions for the target, one for a bystander.
	targetA, err := store.Create(ctx, httptest.NewRecorder(), &Data{UserID: target, Username: "t", Role: "admin"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	targetB, err := store.Create(ctx, httptest.NewRecorder(), &Data{UserID: target, Username: "t", Role: "admin"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	bystander, err := store.Create(ctx, httptest.NewRecorder(), &Data{UserID: other, Username: "o", Role: "member"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.DestroyUser(ctx, target); err != nil {
		t.Fatalf("DestroyUser: %v", err)
	}

	for _, id := range []string{targetA, targetB} {
		if err := client.Get(ctx, keyPrefix+id).Err(); err != redis.Nil {
			t.Errorf("target session %s still present (err = %v)", id, err)
		}
	}
	if err := client.Get(ctx, keyPrefix+bystander).Err(); err != nil {
		t.Errorf("bystander session removed: %v", err)
	}
}
