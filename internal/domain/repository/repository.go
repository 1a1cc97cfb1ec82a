// Package repository defines the narrow query interfaces the authorization
// core consumes. Implementations live under internal/store.
package repository

import (
	"context"
	"errors"

	"github.com/OpenQueue/API/internal/domain/types"
)

// ErrNotFound is returned by Directory lookups for ids that do not exist.
var ErrNotFound = errors.New("repository: not found")

// CredentialStore answers the two credential queries the resolver needs.
// Both are read-only; credential issuance and revocation happen elsewhere.
type CredentialStore interface {
	// LookupKey returns every scope row granted to the API key, already
	// filtered to leagues that either allow public API access or are owned
	// by the same user as the key. Zero rows means the key grants nothing.
	LookupKey(ctx context.Context, key string) ([]types.KeyScopeRow, error)

	// LookupAdmin returns the admin scope grants for (userID, leagueID).
	// Zero rows means the user is not an admin of the league.
	LookupAdmin(ctx context.Context, userID, leagueID string) ([]types.AdminScopeRow, error)
}

// LoginStore answers the interactive-login lookup.
type LoginStore interface {
	// LookupLogin returns the login row for an email address, or
	// ErrNotFound when no account exists.
	LookupLogin(ctx context.Context, email string) (*types.LoginRow, error)
}

// Directory resolves domain handles by id. Handles are non-owning; a failed
// lookup propagates as-is, the resolver never retries it.
type Directory interface {
	League(ctx context.Context, leagueID string) (*types.LeagueHandle, error)
	User(ctx context.Context, leagueID, userID string) (*types.UserHandle, error)
	Match(ctx context.Context, leagueID, matchID string) (*types.MatchHandle, error)
	Ban(ctx context.Context, leagueID, userID, banID string) (*types.BanHandle, error)
}
