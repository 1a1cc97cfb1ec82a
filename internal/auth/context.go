package auth

import (
	"fmt"

	"github.com/OpenQueue/API/internal/domain/types"
	"github.com/OpenQueue/API/internal/queue"
)

// Context is the result of one resolution: the visibility map, the
// principal, and whichever domain handles the request named and the
// resolver could bind. Handlers consult it through the guard methods
// before touching anything it references.
type Context struct {
	// Scopes maps each granted scope to its public flag. A scope absent
	// from the map is denied.
	Scopes types.ScopeMap

	// UserID is the principal. Empty for anonymous requests; "root" for
	// the caching-webhook system credential.
	UserID string

	League *types.LeagueHandle
	User   *types.UserHandle
	Match  *types.MatchHandle
	Ban    *types.BanHandle
	Queue  *queue.Queue
}

// HasScope reports whether scope was granted.
func (c *Context) HasScope(scope string) bool {
	_, ok := c.Scopes[scope]
	return ok
}

// Public returns the public flag for scope. A scope that was never
// granted reads as public; callers must check HasScope (or Require)
// first.
func (c *Context) Public(scope string) bool {
	public, ok := c.Scopes[scope]
	if !ok {
		return true
	}
	return public
}

// Require fails with ErrScopeDenied unless every listed scope is granted.
// Handlers call it before the gated operation runs.
func (c *Context) Require(scopes ...string) error {
	for _, s := range scopes {
		if !c.HasScope(s) {
			return fmt.Errorf("%w: %s", ErrScopeDenied, s)
		}
	}
	return nil
}

// RequireStates fails with ErrMissingState unless every named handle was
// resolved. Valid names: league, user, match, ban, queue.
func (c *Context) RequireStates(states ...string) error {
	for _, s := range states {
		var ok bool
		switch s {
		case "league":
			ok = c.League != nil
		case "user":
			ok = c.User != nil
		case "match":
			ok = c.Match != nil
		case "ban":
			ok = c.Ban != nil
		case "queue":
			ok = c.Queue != nil
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingState, s)
		}
	}
	return nil
}
