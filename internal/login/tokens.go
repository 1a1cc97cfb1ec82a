// Package login implements the open-login token handoff: a league issues a
// login token, the frontend redeems it for a user token once the user has
// authenticated, and the league's backend consumes the user token to learn
// the user id. Every token is single-use; both maps live in process memory,
// so the handoff does not survive a restart and requires sticky routing
// when the service is scaled horizontally.
package login

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"
)

// ErrInvalidToken covers every handoff failure: unknown token, league
// mismatch, expired user token.
var ErrInvalidToken = errors.New("login: invalid token")

// userTokenTTL is how long a redeemed user token stays consumable.
// Login tokens have no expiry: they are expected to be redeemed
// immediately and are destroyed on first use either way.
const userTokenTTL = 45 * time.Second

type userEntry struct {
	issuedAt time.Time
	userID   string
}

// Tokens is the token-exchange state machine. One mutex guards both maps
// so a token can never be observed by two callers between the lookup and
// the delete.
type Tokens struct {
	mu          sync.Mutex
	loginTokens map[string]string    // login token -> league id
	userTokens  map[string]userEntry // user token -> (issued at, user id)

	// now is replaceable in tests.
	now func() time.Time
}

// NewTokens returns an empty token exchange.
func NewTokens() *Tokens {
	return &Tokens{
		loginTokens: make(map[string]string),
		userTokens:  make(map[string]userEntry),
		now:         time.Now,
	}
}

// Issue creates a login token bound to leagueID and returns it.
func (t *Tokens) Issue(leagueID string) string {
	token := opaqueToken()
	t.mu.Lock()
	t.loginTokens[token] = leagueID
	t.mu.Unlock()
	return token
}

// Redeem trades a login token for a user token bound to userID. The login
// token must exist and be bound to leagueID; it is destroyed on success,
// so a second redeem of the same token fails with ErrInvalidToken.
func (t *Tokens) Redeem(leagueID, loginToken, userID string) (string, error) {
	userToken := opaqueToken()

	t.mu.Lock()
	defer t.mu.Unlock()

	bound, ok := t.loginTokens[loginToken]
	if !ok || bound != leagueID {
		return "", ErrInvalidToken
	}
	delete(t.loginTokens, loginToken)

	t.userTokens[userToken] = userEntry{issuedAt: t.now(), userID: userID}
	return userToken, nil
}

// Consume returns the user id bound to userToken. The entry is deleted on
// every path that finds it, expired or not, so a token is never readable
// twice. Tokens older than 45 seconds fail with ErrInvalidToken.
func (t *Tokens) Consume(userToken string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.userTokens[userToken]
	if !ok {
		return "", ErrInvalidToken
	}
	delete(t.userTokens, userToken)

	if t.now().Sub(entry.issuedAt) > userTokenTTL {
		return "", ErrInvalidToken
	}
	return entry.userID, nil
}

// opaqueToken returns 36 bytes of entropy, URL-safe encoded.
func opaqueToken() string {
	b := make([]byte, 36)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
