// internal/membership/sessions.go
package membership

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "booklovers_session"

const sessionTTL = 7 * 24 * time.Hour

type contextKey struct{}

// SessionStore keeps opaque session tokens in memory. Sessions do not
// survive a restart, matching the original server-side session model.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]session
}

type session struct {
	userID    int
	expiresAt time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]session)}
}

// Create issues a new token for the user.
func (s *SessionStore) Create(userID int) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = session{userID: userID, expiresAt: time.Now().Add(sessionTTL)}
	s.mu.Unlock()
	return token
}

// Lookup resolves a token to a user id. Expired sessions are treated as
// absent and lazily removed.
func (s *SessionStore) Lookup(token string) (int, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return 0, false
	}
	if time.Now().After(sess.expiresAt) {
		s.Delete(token)
		return 0, false
	}
	return sess.userID, true
}

// Delete removes a token.
func (s *SessionStore) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// WithUser attaches the session's user id to the request context when a
// valid session cookie is present. It never rejects a request; use
// RequireAuth for that.
func (s *SessionStore) WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(SessionCookie); err == nil {
			if userID, ok := s.Lookup(cookie.Value); ok {
				r = r.WithContext(context.WithValue(r.Context(), contextKey{}, userID))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects requests without a session.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext extracts the authenticated user id, if any.
func UserFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(contextKey{}).(int)
	return userID, ok
}
