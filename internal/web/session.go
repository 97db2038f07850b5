package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

// CookieSession is the name of the signed session cookie.
const CookieSession = "litlens_session"

// Session is one visitor's server-side state. It lives in memory only.
type Session struct {
	ID      string
	expires time.Time

	mu            sync.Mutex
	authenticated bool
	apiKey        string
}

// Authenticated reports whether the visitor passed the access gate.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// SetAuthenticated records a successful gate check.
func (s *Session) SetAuthenticated(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = v
}

// APIKey returns the credential the visitor entered, if any.
func (s *Session) APIKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKey
}

// SetAPIKey stores a credential for later analyses in this session.
func (s *Session) SetAPIKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = key
}

// SessionStore keeps sessions keyed by a random id. The id reaches the
// browser in a signed cookie; nothing else leaves the process.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session

	codec  *securecookie.SecureCookie
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewSessionStore creates a store that signs cookies with hashKey.
func NewSessionStore(hashKey []byte, ttl time.Duration, secure bool) *SessionStore {
	codec := securecookie.New(hashKey, nil)
	codec.MaxAge(int(ttl.Seconds()))

	return &SessionStore{
		sessions: make(map[string]*Session),
		codec:    codec,
		ttl:      ttl,
		secure:   secure,
		now:      time.Now,
	}
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Middleware loads the caller's session, or starts a new unauthenticated
// one, and stores it in the request context.
func (s *SessionStore) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.lookup(r)
		if sess == nil {
			sess = s.create()
			if err := s.setCookie(w, sess); err != nil {
				slog.Error("failed to encode session cookie", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
	})
}

// Drop forgets sess and expires its cookie.
func (s *SessionStore) Drop(w http.ResponseWriter, sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess.ID)
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieSession,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *SessionStore) lookup(r *http.Request) *Session {
	cookie, err := r.Cookie(CookieSession)
	if err != nil {
		return nil
	}

	var id string
	if err := s.codec.Decode(CookieSession, cookie.Value, &id); err != nil {
		slog.Debug("rejected session cookie", "error", err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	if !s.now().Before(sess.expires) {
		delete(s.sessions, id)
		return nil
	}
	return sess
}

func (s *SessionStore) create() *Session {
	now := s.now()
	sess := &Session{
		ID:      uuid.NewString(),
		expires: now.Add(s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Sweep expired sessions while holding the lock anyway.
	for id, old := range s.sessions {
		if !now.Before(old.expires) {
			delete(s.sessions, id)
		}
	}
	s.sessions[sess.ID] = sess
	return sess
}

func (s *SessionStore) setCookie(w http.ResponseWriter, sess *Session) error {
	encoded, err := s.codec.Encode(CookieSession, sess.ID)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieSession,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

type contextKey string

const sessionKey contextKey = "session"

func withSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFrom returns the session stored by SessionStore.Middleware, or nil.
func SessionFrom(ctx context.Context) *Session {
	sess, ok := ctx.Value(sessionKey).(*Session)
	if !ok {
		return nil
	}
	return sess
}
