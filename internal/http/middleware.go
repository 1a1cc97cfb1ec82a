package http

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/OpenQueue/API/internal/auth"
	"github.com/OpenQueue/API/internal/observability/logger"
	"github.com/OpenQueue/API/internal/sessions"
)

// WithRequestID assigns or propagates X-Request-ID and scopes the logger.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if rid == "" {
			var b [16]byte
			_, _ = rand.Read(b[:])
			rid = hex.EncodeToString(b[:])
		}
		w.Header().Set("X-Request-ID", rid)

		l := logger.From(r.Context()).With(logger.RequestID(rid))
		next.ServeHTTP(w, r.WithContext(logger.ToContext(r.Context(), l)))
	})
}

// statusRecorder captures the status code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// WithRequestLogging logs one line per request at debug, slow or failed
// requests at warn.
func WithRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		l := logger.From(r.Context()).With(
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
			logger.Status(rec.status),
			logger.Duration(time.Since(start)),
		)
		switch {
		case rec.status >= http.StatusInternalServerError:
			l.Warn("request")
		default:
			l.Debug("request")
		}
	})
}

// WithCORS answers preflights and marks allowed origins.
func WithCORS(next http.Handler, allowed []string) http.Handler {
	trim := func(s string) string { return strings.TrimRight(strings.TrimSpace(s), "/") }

	alist := make([]string, len(allowed))
	for i, v := range allowed {
		alist[i] = trim(v)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := trim(r.Header.Get("Origin"))
		allowedOrigin := ""
		for _, a := range alist {
			if a == "*" || (origin != "" && strings.EqualFold(origin, a)) {
				allowedOrigin = origin
				break
			}
		}

		w.Header().Add("Vary", "Origin")

		if allowedOrigin != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowedOrigin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, CachingWebhook, X-Request-ID")
			h.Set("Access-Control-Max-Age", "600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Authenticate resolves every request's authorization context before the
// handler runs. Resolution failures end the request here; handlers behind
// this middleware always see a fully-resolved context.
func Authenticate(resolver *auth.Resolver, sess *sessions.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			q := r.URL.Query()

			req := auth.Request{
				Authorization:  r.Header.Get("Authorization"),
				CachingWebhook: r.Header.Get("CachingWebhook") != "",
				League:         q.Get("league"),
				User:           q.Get("user"),
				Match:          q.Get("match"),
				Ban:            q.Get("ban"),
				Queue:          q.Get("queue"),
				CheckAdmin:     q.Get("check_admin"),
			}

			// the session is only consulted when no API key is presented
			if req.Authorization == "" {
				rec, err := sess.Load(ctx, r)
				if err != nil {
					WriteError(w, r, err)
					return
				}
				req.Login = rec
			}

			ac, err := resolver.Resolve(ctx, req)
			if err != nil {
				WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAuth(ctx, ac)))
		})
	}
}
