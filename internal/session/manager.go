package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coursereg/coursereg-go/internal/crypto"
	"github.com/coursereg/coursereg-go/internal/model"
)

const DefaultCookieName = "sid"

// Options configures how session handles are signed and delivered.
type Options struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

// Manager issues, resolves and destroys sessions. The client only holds a
// signed handle carrying the session ID; identity lives in the Store.
type Manager struct {
	store Store
	opts  Options
	now   func() time.Time
}

func NewManager(store Store, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Manager{store: store, opts: opts, now: time.Now}
}

// TTL returns the absolute lifetime of new sessions.
func (m *Manager) TTL() time.Duration {
	return m.opts.TTL
}

// Create starts a session for identity and writes its handle cookie to w.
func (m *Manager) Create(ctx context.Context, w http.ResponseWriter, identity model.Identity) (*model.Session, error) {
	id, err := crypto.NewSessionID()
	if err != nil {
		return nil, fmt.Errorf("generating session id: %w", err)
	}

	now := m.now().UTC()
	sess := &model.Session{
		ID:        id,
		UserID:    identity.ID,
		Username:  identity.Username,
		Email:     identity.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(m.opts.TTL),
	}

	token, err := crypto.GenerateToken(sess.ID, m.opts.Secret, sess.CreatedAt, sess.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("signing session handle: %w", err)
	}

	if err := m.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(m.opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	return sess, nil
}

// Authorize resolves the identity behind the request's session handle.
// Any missing, forged, unknown or expired handle yields ErrUnauthorized.
func (m *Manager) Authorize(ctx context.Context, r *http.Request) (model.Identity, error) {
	sess, err := m.lookup(ctx, r)
	if err != nil {
		return model.Identity{}, err
	}
	return sess.Identity(), nil
}

// Destroy removes the request's session, if any, and clears the cookie.
// Calling it without a valid session is not an error.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	defer m.clearCookie(w)

	sessionID, ok := m.sessionID(r)
	if !ok {
		return nil
	}
	if err := m.store.Delete(ctx, sessionID); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func (m *Manager) lookup(ctx context.Context, r *http.Request) (*model.Session, error) {
	sessionID, ok := m.sessionID(r)
	if !ok {
		return nil, ErrUnauthorized
	}

	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if sess.Expired(m.now()) {
		_ = m.store.Delete(ctx, sess.ID)
		return nil, ErrUnauthorized
	}
	return sess, nil
}

func (m *Manager) sessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(m.opts.CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	claims, err := crypto.ValidateToken(cookie.Value, m.opts.Secret)
	if err != nil {
		return "", false
	}
	return claims.SessionID(), true
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
