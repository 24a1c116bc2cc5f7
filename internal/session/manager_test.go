package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coursereg/coursereg-go/internal/model"
)

const testSecret = "test-session-secret"

func newTestManager(t *testing.T) (*Manager, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore(0)
	t.Cleanup(store.Close)
	return NewManager(store, Options{Secret: testSecret, TTL: time.Hour}), store
}

// requestWithCookies replays the cookies set on rec onto a new request.
func requestWithCookies(rec *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/home", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestManagerCreateAndAuthorize(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	identity := model.Identity{ID: "u1", Username: "alice", Email: "alice@example.com"}

	rec := httptest.NewRecorder()
	sess, err := m.Create(ctx, rec, identity)
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if got := sess.ExpiresAt.Sub(sess.CreatedAt); got != time.Hour {
		t.Errorf("session lifetime = %v, want %v", got, time.Hour)
	}
	if store.Len() != 1 {
		t.Errorf("store Len() = %d, want 1", store.Len())
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("Create() set %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != DefaultCookieName {
		t.Errorf("cookie name = %q, want %q", c.Name, DefaultCookieName)
	}
	if !c.HttpOnly {
		t.Error("cookie HttpOnly = false, want true")
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie SameSite = %v, want Lax", c.SameSite)
	}

	got, err := m.Authorize(ctx, requestWithCookies(rec))
	if err != nil {
		t.Fatalf("Authorize() unexpected error: %v", err)
	}
	if got != identity {
		t.Errorf("Authorize() = %+v, want %+v", got, identity)
	}
}

func TestManagerAuthorizeRejects(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	rec := httptest.NewRecorder()
	if _, err := m.Create(ctx, rec, model.Identity{ID: "u1"}); err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	valid := rec.Result().Cookies()[0]

	other := NewManager(NewMemoryStore(0), Options{Secret: "another-secret", TTL: time.Hour})
	otherRec := httptest.NewRecorder()
	if _, err := other.Create(ctx, otherRec, model.Identity{ID: "u2"}); err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	forged := otherRec.Result().Cookies()[0]

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{name: "no cookie"},
		{name: "empty cookie", cookie: &http.Cookie{Name: DefaultCookieName, Value: ""}},
		{name: "garbage", cookie: &http.Cookie{Name: DefaultCookieName, Value: "not-a-token"}},
		{name: "wrong secret", cookie: forged},
		{name: "wrong name", cookie: &http.Cookie{Name: "other", Value: valid.Value}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/home", nil)
			if tt.cookie != nil {
				r.AddCookie(tt.cookie)
			}
			if _, err := m.Authorize(ctx, r); !errors.Is(err, ErrUnauthorized) {
				t.Errorf("Authorize() error = %v, want %v", err, ErrUnauthorized)
			}
		})
	}
}

func TestManagerSessionExpires(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)

	base := time.Now()
	m.now = func() time.Time { return base }

	rec := httptest.NewRecorder()
	if _, err := m.Create(ctx, rec, model.Identity{ID: "u1"}); err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	m.now = func() time.Time { return base.Add(59 * time.Minute) }
	if _, err := m.Authorize(ctx, requestWithCookies(rec)); err != nil {
		t.Fatalf("Authorize() before expiry unexpected error: %v", err)
	}

	m.now = func() time.Time { return base.Add(time.Hour) }
	if _, err := m.Authorize(ctx, requestWithCookies(rec)); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Authorize() after expiry error = %v, want %v", err, ErrUnauthorized)
	}
	if store.Len() != 0 {
		t.Errorf("expired session still stored, Len() = %d", store.Len())
	}
}

func TestManagerDestroy(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)

	rec := httptest.NewRecorder()
	if _, err := m.Create(ctx, rec, model.Identity{ID: "u1"}); err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	req := requestWithCookies(rec)

	out := httptest.NewRecorder()
	if err := m.Destroy(ctx, out, req); err != nil {
		t.Fatalf("Destroy() unexpected error: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("store Len() after Destroy = %d, want 0", store.Len())
	}

	cleared := out.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Errorf("Destroy() cookies = %+v, want one expired cookie", cleared)
	}

	if _, err := m.Authorize(ctx, req); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Authorize() after Destroy error = %v, want %v", err, ErrUnauthorized)
	}

	if err := m.Destroy(ctx, httptest.NewRecorder(), req); err != nil {
		t.Errorf("Destroy() twice unexpected error: %v", err)
	}
	if err := m.Destroy(ctx, httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)); err != nil {
		t.Errorf("Destroy() without cookie unexpected error: %v", err)
	}
}

func TestNewManagerDefaults(t *testing.T) {
	m := NewManager(NewMemoryStore(0), Options{Secret: testSecret})
	if m.TTL() != 24*time.Hour {
		t.Errorf("TTL() = %v, want 24h", m.TTL())
	}
	if m.opts.CookieName != DefaultCookieName {
		t.Errorf("CookieName = %q, want %q", m.opts.CookieName, DefaultCookieName)
	}
}
