package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sloppy/pastyears/internal/auth"
	"github.com/sloppy/pastyears/internal/db"
)

const sessionCookie = "pastyears_session"

type sessionKey struct{}

// sessionRegistry maps session cookies to in-memory auth sessions. Each
// session persists its tokens in its own storage scope, so it can be rebuilt
// after a restart.
type sessionRegistry struct {
	backend auth.Client
	db      *db.DB
	logger  *zap.Logger
	ttl     time.Duration
	secure  bool

	mu       sync.Mutex
	sessions map[string]*auth.Session
}

func newSessionRegistry(backend auth.Client, database *db.DB, logger *zap.Logger, ttl time.Duration, secure bool) *sessionRegistry {
	return &sessionRegistry{
		backend:  backend,
		db:       database,
		logger:   logger,
		ttl:      ttl,
		secure:   secure,
		sessions: map[string]*auth.Session{},
	}
}

// middleware attaches the caller's session, if any, to the request context.
// Unknown or expired cookies are cleared.
func (reg *sessionRegistry) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		sess, err := reg.lookup(r.Context(), cookie.Value)
		if err != nil {
			reg.logger.Error("load session", zap.Error(err))
			http.Error(w, "failed to load session", http.StatusInternalServerError)
			return
		}
		if sess == nil {
			reg.clearCookie(w)
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, &webSession{id: cookie.Value, auth: sess})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type webSession struct {
	id   string
	auth *auth.Session
}

func currentSession(r *http.Request) *webSession {
	sess, _ := r.Context().Value(sessionKey{}).(*webSession)
	return sess
}

// lookup returns the session for id, or nil when it does not exist or has
// been idle for longer than the TTL.
func (reg *sessionRegistry) lookup(ctx context.Context, id string) (*auth.Session, error) {
	row, found, err := reg.db.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		reg.forget(id)
		return nil, nil
	}
	if time.Since(row.LastSeen) > reg.ttl {
		if err := reg.remove(ctx, id); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err := reg.db.TouchSession(ctx, id); err != nil {
		return nil, err
	}

	reg.mu.Lock()
	sess, ok := reg.sessions[id]
	reg.mu.Unlock()
	if ok {
		return sess, nil
	}

	sess = auth.NewSession(reg.backend, reg.db.Scope(db.SessionScope(id)), reg.logger.With(zap.String("session", id)))
	if err := sess.Init(ctx); err != nil {
		return nil, err
	}
	reg.mu.Lock()
	if existing, ok := reg.sessions[id]; ok {
		sess = existing
	} else {
		reg.sessions[id] = sess
	}
	reg.mu.Unlock()
	return sess, nil
}

// ensure returns the caller's session, creating one and setting its cookie
// when the request has none.
func (reg *sessionRegistry) ensure(w http.ResponseWriter, r *http.Request) (*webSession, error) {
	if sess := currentSession(r); sess != nil {
		return sess, nil
	}
	row, err := reg.db.CreateSession(r.Context())
	if err != nil {
		return nil, err
	}
	sess := auth.NewSession(reg.backend, reg.db.Scope(db.SessionScope(row.ID)), reg.logger.With(zap.String("session", row.ID)))
	reg.mu.Lock()
	reg.sessions[row.ID] = sess
	reg.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    row.ID,
		Path:     "/",
		MaxAge:   int(reg.ttl / time.Second),
		HttpOnly: true,
		Secure:   reg.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return &webSession{id: row.ID, auth: sess}, nil
}

// end deletes the session and its cookie.
func (reg *sessionRegistry) end(w http.ResponseWriter, r *http.Request, id string) error {
	reg.clearCookie(w)
	return reg.remove(r.Context(), id)
}

func (reg *sessionRegistry) remove(ctx context.Context, id string) error {
	reg.forget(id)
	return reg.db.DeleteSession(ctx, id)
}

func (reg *sessionRegistry) forget(id string) {
	reg.mu.Lock()
	delete(reg.sessions, id)
	reg.mu.Unlock()
}

func (reg *sessionRegistry) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   reg.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (reg *sessionRegistry) purge(ctx context.Context) (int, error) {
	ids, err := reg.db.PurgeSessions(ctx, time.Now().Add(-reg.ttl))
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		reg.forget(id)
	}
	if len(ids) > 0 {
		reg.logger.Info("purged idle sessions", zap.Int("count", len(ids)))
	}
	return len(ids), nil
}
