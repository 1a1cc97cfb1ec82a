// Package sessions stores interactive login records behind an opaque
// session-id cookie. The record itself lives in the shared cache so any
// instance can read it; only the random id travels to the browser.
package sessions

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/OpenQueue/API/internal/cache"
	"github.com/OpenQueue/API/internal/domain/types"
)

const keyPrefix = "session-"

// Config controls the session cookie.
type Config struct {
	CookieName string
	Domain     string
	Secure     bool
	TTL        time.Duration
}

// Store reads and writes login records keyed by the session cookie.
type Store struct {
	cache cache.Client
	cfg   Config
}

// NewStore builds a session store over the given cache client.
func NewStore(c cache.Client, cfg Config) *Store {
	if cfg.CookieName == "" {
		cfg.CookieName = "sid"
	}
	if cfg.TTL == 0 {
		cfg.TTL = 12 * time.Hour
	}
	return &Store{cache: c, cfg: cfg}
}

// Load returns the login record for the request's session cookie, or nil
// when there is no session or it has expired. Backend failures propagate.
func (s *Store) Load(ctx context.Context, r *http.Request) (*types.LoginRecord, error) {
	c, err := r.Cookie(s.cfg.CookieName)
	if err != nil || c.Value == "" {
		return nil, nil
	}
	raw, err := s.cache.Get(ctx, keyPrefix+c.Value)
	if err != nil {
		if cache.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var rec types.LoginRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		// corrupt session, treat as logged out
		return nil, nil
	}
	return &rec, nil
}

// Save writes the record under a fresh session id and sets the cookie.
func (s *Store) Save(ctx context.Context, w http.ResponseWriter, rec *types.LoginRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	sid := uuid.NewString()
	if err := s.cache.Set(ctx, keyPrefix+sid, string(raw), s.cfg.TTL); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    sid,
		Path:     "/",
		Domain:   s.cfg.Domain,
		MaxAge:   int(s.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Destroy deletes the session record and clears the cookie.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if c, err := r.Cookie(s.cfg.CookieName); err == nil && c.Value != "" {
		if err := s.cache.Delete(ctx, keyPrefix+c.Value); err != nil {
			return err
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   s.cfg.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
