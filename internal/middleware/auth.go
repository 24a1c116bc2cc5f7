package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/coursereg/coursereg-go/internal/model"
	"github.com/coursereg/coursereg-go/internal/session"
)

type contextKey string

const identityKey contextKey = "identity"

// Authorizer resolves the identity behind a request's session handle.
type Authorizer interface {
	Authorize(ctx context.Context, r *http.Request) (model.Identity, error)
}

// RequireSession rejects requests without a valid session with a JSON 401.
func RequireSession(auth Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := auth.Authorize(r.Context(), r)
			if err != nil {
				logAuthFailure(r, err)
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePageSession redirects requests without a valid session to target.
func RequirePageSession(auth Authorizer, target string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := auth.Authorize(r.Context(), r)
			if err != nil {
				logAuthFailure(r, err)
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext extracts the logged-in identity from the request context.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(model.Identity)
	return identity, ok
}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// logAuthFailure records session store failures. Plain missing or invalid
// sessions are expected and not logged.
func logAuthFailure(r *http.Request, err error) {
	if errors.Is(err, session.ErrUnauthorized) {
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("session lookup failed")
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
