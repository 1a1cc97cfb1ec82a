// Package types holds the shared domain types for the OpenQueue API:
// scope maps, credential rows and the opaque handles the authorization
// layer resolves for downstream handlers.
package types

// ScopeMap maps a granted scope to its public flag. A scope that is not a
// key of the map is not granted; callers must treat absence as denial.
// The public flag decides whether the field set gated by the scope is
// serialized fully or redacted.
type ScopeMap map[string]bool

// Clone returns a copy of the map so cached resolutions stay immutable.
func (s ScopeMap) Clone() ScopeMap {
	out := make(ScopeMap, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Scopes returns the granted scope names, order unspecified.
func (s ScopeMap) Scopes() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}

// Merge copies every entry of other into s, overwriting on conflict.
func (s ScopeMap) Merge(other ScopeMap) {
	for k, v := range other {
		s[k] = v
	}
}

// KeyScopeRow is one row of the api_key scope join: the key's owning
// league and user plus one granted scope with its public flag.
type KeyScopeRow struct {
	LeagueID string
	UserID   string
	Scope    string
	Public   bool
}

// AdminScopeRow is one admin grant for a (user, league) pair.
type AdminScopeRow struct {
	Scope  string
	Public bool
}

// LoginRow is what the credential store knows about an interactive login:
// the principal, their password hash, whether the email was confirmed and
// the leagues they own.
type LoginRow struct {
	UserID         string
	PasswordHash   string
	EmailConfirmed bool
	LeagueIDs      []string
}

// LoginRecord is the session payload written at interactive login.
// Identifiers carries the principal user id plus any linked third-party
// ids (discord, steam) keyed by provider name.
type LoginRecord struct {
	Identifiers    map[string]string `json:"identifiers"`
	LeagueIDs      []string          `json:"league_ids"`
	EmailConfirmed bool              `json:"email_confirmed"`
}

// UserID returns the principal user id, empty when the record is partial.
func (r *LoginRecord) UserID() string {
	if r == nil || r.Identifiers == nil {
		return ""
	}
	return r.Identifiers["user"]
}

// OwnsLeague reports whether the principal owns the given league.
func (r *LoginRecord) OwnsLeague(leagueID string) bool {
	if r == nil {
		return false
	}
	for _, id := range r.LeagueIDs {
		if id == leagueID {
			return true
		}
	}
	return false
}
