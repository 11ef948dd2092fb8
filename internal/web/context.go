package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/JonMunkholm/rreport/internal/logging"
	"github.com/JonMunkholm/rreport/internal/session"
)

type ctxKey int

const ctxKeySession ctxKey = iota

// WithRequestMetadata adds IP and User-Agent to context for the analysis log.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return logging.ContextWithClient(ctx, r.RemoteAddr, r.Header.Get("User-Agent")) // RemoteAddr already processed by TrustedRealIP
}

// sessions attaches the caller's session to the request context, issuing
// a new session cookie when the request has none or an expired one.
func (s *Server) sessions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" || strings.HasPrefix(r.URL.Path, "/static/") {
			next.ServeHTTP(w, r)
			return
		}

		var id string
		if c, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
			id = c.Value
		}

		sess, created := s.store.GetOrCreate(id)
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     s.cfg.Session.CookieName,
				Value:    sess.ID(),
				Path:     "/",
				HttpOnly: true,
				Secure:   s.cfg.Session.SecureCookie,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), ctxKeySession, sess)
		ctx = logging.ContextWithSessionID(ctx, sess.ID())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFrom returns the session attached by the sessions middleware.
func sessionFrom(r *http.Request) *session.Session {
	sess, _ := r.Context().Value(ctxKeySession).(*session.Session)
	return sess
}
