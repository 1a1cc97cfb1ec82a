package http

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/OpenQueue/API/internal/auth"
	"github.com/OpenQueue/API/internal/domain/types"
	httperrors "github.com/OpenQueue/API/internal/http/errors"
	"github.com/OpenQueue/API/internal/observability/logger"
	"github.com/OpenQueue/API/internal/util"
)

// TokenGenerate handles POST /api/auth/generate: a league (API-key
// credential) asks for a fresh login token to hand to a user's browser.
func (h *Handlers) TokenGenerate(w http.ResponseWriter, r *http.Request) {
	ac := AuthFrom(r.Context())
	if err := ac.Require(auth.ScopeLoginGenerate); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := ac.RequireStates("league"); err != nil {
		WriteError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, map[string]string{
		"token": h.tokens.Issue(ac.League.LeagueID),
	})
}

// LoginRedirect handles GET /api/auth/login: the browser arrives carrying
// a login token. With a session matching user_id the token is redeemed
// for a user token and the browser bounces to the league's redirect URL;
// otherwise it bounces to the frontend login page with everything intact.
func (h *Handlers) LoginRedirect(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	redirect := q.Get("redirect")
	loginToken := q.Get("login_token")
	leagueID := q.Get("league_id")

	switch {
	case redirect == "":
		WriteAppError(w, httperrors.ErrBadRequest.WithDetail("redirect not given"))
		return
	case loginToken == "":
		WriteAppError(w, httperrors.ErrBadRequest.WithDetail("login_token not given"))
		return
	case leagueID == "":
		WriteAppError(w, httperrors.ErrBadRequest.WithDetail("league_id not given"))
		return
	}

	rec, err := h.sess.Load(r.Context(), r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if rec != nil && q.Get("user_id") != "" && q.Get("user_id") == rec.UserID() {
		userToken, err := h.tokens.Redeem(leagueID, loginToken, rec.UserID())
		if err != nil {
			WriteError(w, r, err)
			return
		}
		sep := "?"
		if strings.Contains(redirect, "?") {
			sep = "&"
		}
		http.Redirect(w, r, redirect+sep+"user_token="+url.QueryEscape(userToken),
			http.StatusTemporaryRedirect)
		return
	}

	login := h.frontendURL + "login?login_token=" + url.QueryEscape(loginToken) +
		"&league_id=" + url.QueryEscape(leagueID) +
		"&redirect=" + url.QueryEscape(redirect)
	http.Redirect(w, r, login, http.StatusTemporaryRedirect)
}

// UserToken handles GET /api/auth/user: the league's backend consumes a
// user token and learns which user completed the login.
func (h *Handlers) UserToken(w http.ResponseWriter, r *http.Request) {
	ac := AuthFrom(r.Context())
	if err := ac.Require(auth.ScopeLoginUserGet); err != nil {
		WriteError(w, r, err)
		return
	}

	userToken := r.URL.Query().Get("user_token")
	if userToken == "" {
		WriteAppError(w, httperrors.ErrBadRequest.WithDetail("user_token not given"))
		return
	}

	userID, err := h.tokens.Consume(userToken)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, map[string]string{"user": userID})
}

// MyScopes handles GET /api/auth/site/scopes.
func (h *Handlers) MyScopes(w http.ResponseWriter, r *http.Request) {
	ac := AuthFrom(r.Context())
	if err := ac.Require(auth.ScopeLoggedIn); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, ac.Scopes.Scopes())
}

// SiteLogin handles POST /api/auth/site/login: password login creating
// the interactive session. Third-party logins (discord, steam) happen
// elsewhere and only contribute linked identifiers.
func (h *Handlers) SiteLogin(w http.ResponseWriter, r *http.Request) {
	if h.loginLimit != nil {
		res, err := h.loginLimit.Allow(r.Context(), clientAddr(r))
		if err != nil {
			// limiter backend down: fail open, logins keep working
			logger.From(r.Context()).Warn("login limiter unavailable",
				logger.Layer("http"), logger.Err(err))
		} else if !res.Allowed {
			WriteAppError(w, httperrors.ErrTooManyRequests)
			return
		}
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := ReadJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteAppError(w, httperrors.ErrBadRequest.WithDetail("email and password required"))
		return
	}

	row, err := h.logins.LookupLogin(r.Context(), req.Email)
	if err != nil {
		// unknown account reads the same as a wrong password
		logger.From(r.Context()).Warn("login failed",
			logger.Layer("http"), logger.String("email", util.MaskEmail(req.Email)))
		WriteAppError(w, httperrors.ErrUnauthorized)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(req.Password)) != nil {
		logger.From(r.Context()).Warn("login failed",
			logger.Layer("http"), logger.String("email", util.MaskEmail(req.Email)))
		WriteAppError(w, httperrors.ErrUnauthorized)
		return
	}

	rec := &types.LoginRecord{
		Identifiers:    map[string]string{"user": row.UserID},
		LeagueIDs:      row.LeagueIDs,
		EmailConfirmed: row.EmailConfirmed,
	}
	if err := h.sess.Save(r.Context(), w, rec); err != nil {
		WriteError(w, r, err)
		return
	}

	logger.From(r.Context()).Info("site login",
		logger.Layer("http"), logger.UserID(row.UserID))
	WriteData(w, http.StatusOK, map[string]any{
		"user_id":         row.UserID,
		"email_confirmed": row.EmailConfirmed,
	})
}

// clientAddr returns the request's client host without the port.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SiteLogout handles POST /api/auth/site/logout.
func (h *Handlers) SiteLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sess.Destroy(r.Context(), w, r); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, map[string]any{})
}

// SiteSession handles GET /api/auth/site/session: the frontend asks who
// is logged in.
func (h *Handlers) SiteSession(w http.ResponseWriter, r *http.Request) {
	rec, err := h.sess.Load(r.Context(), r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if rec == nil {
		WriteAppError(w, httperrors.ErrUnauthorized)
		return
	}
	WriteData(w, http.StatusOK, map[string]any{
		"user_id":         rec.UserID(),
		"league_ids":      rec.LeagueIDs,
		"email_confirmed": rec.EmailConfirmed,
	})
}
