package http

import (
	"net/http"

	"github.com/OpenQueue/API/internal/auth"
)

// LeagueGet handles GET /api/v1/league. The owner view carries the owner
// id; the public view is just the league id.
func (h *Handlers) LeagueGet(w http.ResponseWriter, r *http.Request) {
	ac := AuthFrom(r.Context())
	if err := ac.Require(auth.ScopeLeague); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := ac.RequireStates("league"); err != nil {
		WriteError(w, r, err)
		return
	}

	out := map[string]any{"league_id": ac.League.LeagueID}
	if !ac.Public(auth.ScopeLeague) {
		out["owner_id"] = ac.League.OwnerID
	}
	WriteData(w, http.StatusOK, out)
}

// LeagueUserGet handles GET /api/v1/league/user.
func (h *Handlers) LeagueUserGet(w http.ResponseWriter, r *http.Request) {
	ac := AuthFrom(r.Context())
	if err := ac.Require(auth.ScopeLeagueUser); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := ac.RequireStates("league", "user"); err != nil {
		WriteError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, map[string]any{
		"league_id": ac.League.LeagueID,
		"user_id":   ac.User.UserID,
		"owner":     ac.HasScope(auth.ScopeLeagueUserOwner),
	})
}

// LeagueUserBanGet handles GET /api/v1/league/user/ban.
func (h *Handlers) LeagueUserBanGet(w http.ResponseWriter, r *http.Request) {
	ac := AuthFrom(r.Context())
	if err := ac.Require(auth.ScopeLeagueUserBan); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := ac.RequireStates("league", "user", "ban"); err != nil {
		WriteError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, ac.Ban)
}

// MatchGet handles GET /api/v1/league/match.
func (h *Handlers) MatchGet(w http.ResponseWriter, r *http.Request) {
	ac := AuthFrom(r.Context())
	if err := ac.Require(auth.ScopeLeagueMatch); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := ac.RequireStates("league", "match"); err != nil {
		WriteError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, ac.Match)
}
