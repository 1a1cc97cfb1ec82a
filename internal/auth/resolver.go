package auth

import (
	"context"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"

	"github.com/OpenQueue/API/internal/domain/repository"
	"github.com/OpenQueue/API/internal/domain/types"
	"github.com/OpenQueue/API/internal/observability/logger"
	"github.com/OpenQueue/API/internal/queue"
	"github.com/OpenQueue/API/internal/util"
	"github.com/OpenQueue/API/internal/validation"
)

// Request is what the resolver needs from an inbound call: the raw
// credential material and the resource ids named in the query string.
// The HTTP middleware fills it; tests construct it directly.
type Request struct {
	// Authorization is the raw Authorization header, empty when absent.
	Authorization string

	// CachingWebhook is true when the CachingWebhook header was present.
	CachingWebhook bool

	// Login is the session login record, nil when there is no session.
	// Only consulted when no Authorization header was presented.
	Login *types.LoginRecord

	// Resource identifiers from the query string, empty when absent.
	League string
	User   string
	Match  string
	Ban    string
	Queue  string

	// CheckAdmin is the raw check_admin query value.
	CheckAdmin string
}

// Config carries the resolver's static inputs.
type Config struct {
	// WebhookKey is the shared secret for the caching webhook. Empty
	// disables the short-circuit entirely.
	WebhookKey string

	// RootUsers are granted site.rootLoggedIn on the session pathway.
	RootUsers []string
}

// Resolver turns a credential plus request context into a Context. It is
// the only component that decides which scopes a caller holds; handlers
// never grant or widen scopes themselves.
type Resolver struct {
	store     repository.CredentialStore
	directory repository.Directory
	keys      *KeyCache
	queues    *queue.Registry

	webhookHash []byte
	rootUsers   map[string]struct{}

	// group collapses concurrent store lookups for the same API key.
	group singleflight.Group
}

// NewResolver wires a resolver. The webhook key is bcrypt-hashed once here
// so per-request comparison is constant-time.
func NewResolver(store repository.CredentialStore, directory repository.Directory,
	keys *KeyCache, queues *queue.Registry, cfg Config) *Resolver {

	r := &Resolver{
		store:     store,
		directory: directory,
		keys:      keys,
		queues:    queues,
		rootUsers: make(map[string]struct{}, len(cfg.RootUsers)),
	}
	for _, u := range cfg.RootUsers {
		r.rootUsers[u] = struct{}{}
	}
	if cfg.WebhookKey != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.WebhookKey), bcrypt.DefaultCost)
		if err == nil {
			r.webhookHash = hash
		}
	}
	return r
}

// Resolve runs exactly one of the two credential pathways. Every branch is
// evaluated before the context is returned; a failure on any of them
// aborts the whole resolution so the gated operation never sees a
// partially-resolved context.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Context, error) {
	if req.Authorization != "" {
		return r.resolveAPIKey(ctx, req)
	}
	return r.resolveSession(ctx, req)
}

// resolveAPIKey handles the stateless bearer pathway.
func (r *Resolver) resolveAPIKey(ctx context.Context, req Request) (*Context, error) {
	scheme, credentials, ok := splitAuthorization(req.Authorization)
	if !ok || !strings.EqualFold(scheme, "basic") {
		// wrong shape or scheme: unauthenticated, not an error
		return &Context{Scopes: types.ScopeMap{}}, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(credentials)
	if err != nil {
		return nil, ErrAuthentication
	}
	// Basic credentials are user:password; only the password half carries
	// the key.
	_, secret, _ := strings.Cut(string(decoded), ":")

	if req.CachingWebhook && r.webhookHash != nil {
		if bcrypt.CompareHashAndPassword(r.webhookHash, []byte(secret)) == nil {
			return &Context{
				Scopes: types.ScopeMap{ScopeCaching: false},
				UserID: "root",
			}, nil
		}
	}

	res, err := r.lookupKey(ctx, secret)
	if err != nil {
		return nil, err
	}

	out := &Context{
		// cached maps are shared; handlers get their own copy
		Scopes: res.Scopes.Clone(),
		UserID: res.UserID,
		League: res.League,
	}
	if err := r.bindHandles(ctx, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// lookupKey is the cache-aside read: cache first, store on miss, then
// populate. Concurrent misses for the same key share one store query.
func (r *Resolver) lookupKey(ctx context.Context, key string) (*CachedResolution, error) {
	cached, err := r.keys.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		rows, err := r.store.LookupKey(ctx, key)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, ErrAuthentication
		}

		scopes := make(types.ScopeMap, len(rows)+1)
		leagueID, userID := rows[0].LeagueID, rows[0].UserID
		for _, row := range rows {
			if !validation.ValidScopeName(row.Scope) {
				logger.From(ctx).Warn("dropping malformed scope row",
					logger.Component("auth"), logger.Key(util.MaskKey(key)))
				continue
			}
			scopes[row.Scope] = row.Public
			leagueID, userID = row.LeagueID, row.UserID
		}
		// every valid key can at least read its league
		if _, ok := scopes[ScopeLeague]; !ok {
			scopes[ScopeLeague] = true
		}

		league, err := r.directory.League(ctx, leagueID)
		if err != nil {
			return nil, err
		}

		res := &CachedResolution{League: league, UserID: userID, Scopes: scopes}
		if err := r.keys.Set(ctx, key, res); err != nil {
			// resolution already succeeded; a failed cache fill only
			// costs the next caller a store query
			logger.From(ctx).Warn("api key cache fill failed",
				logger.Component("auth"), logger.Key(util.MaskKey(key)), logger.Err(err))
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*CachedResolution), nil
}

// bindHandles attaches the optional user/ban/match/queue handles named by
// an API-key request. Queue binding silently skips inactive queues; the
// other lookups propagate their failure.
func (r *Resolver) bindHandles(ctx context.Context, req Request, out *Context) error {
	if req.User != "" {
		u, err := r.directory.User(ctx, out.League.LeagueID, req.User)
		if err != nil {
			return err
		}
		out.User = u

		if req.Ban != "" {
			b, err := r.directory.Ban(ctx, out.League.LeagueID, req.User, req.Ban)
			if err != nil {
				return err
			}
			out.Ban = b
		}
	}

	if req.Match != "" {
		m, err := r.directory.Match(ctx, out.League.LeagueID, req.Match)
		if err != nil {
			return err
		}
		out.Match = m
	}

	if req.Queue != "" {
		if q := r.queues.Get(req.Queue); q != nil {
			out.Queue = q
		}
	}
	return nil
}

// resolveSession handles the interactive pathway. Exactly one of the
// user-branch and league-branch fires, chosen by which identifiers the
// query named.
func (r *Resolver) resolveSession(ctx context.Context, req Request) (*Context, error) {
	rec := req.Login
	if rec == nil || !rec.EmailConfirmed {
		return &Context{Scopes: types.ScopeMap{ScopeSite: true}}, nil
	}

	userID := rec.UserID()
	scopes := types.ScopeMap{
		ScopeSite:     true,
		ScopeLoggedIn: true,
	}
	if _, ok := r.rootUsers[userID]; ok {
		scopes[ScopeRootLoggedIn] = true
	}

	out := &Context{Scopes: scopes, UserID: userID}

	switch {
	case req.User != "" && req.League == "":
		if err := r.sessionUserBranch(ctx, req, userID, out); err != nil {
			return nil, err
		}
	case req.League != "":
		if err := r.sessionLeagueBranch(ctx, req, rec, userID, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Resolver) sessionUserBranch(ctx context.Context, req Request, userID string, out *Context) error {
	u, err := r.directory.User(ctx, "", req.User)
	if err != nil {
		return err
	}
	out.User = u

	if req.User == userID {
		out.Scopes[ScopeUser] = false
		out.Scopes[ScopeUserOwner] = false
	} else {
		out.Scopes[ScopeUser] = true
	}

	if req.Queue != "" {
		if q := r.queues.Get(req.Queue); q != nil {
			out.Queue = q
			out.Scopes[ScopeQueueGet] = true
			out.Scopes[ScopeQueueUserJoin] = true
			out.Scopes[ScopeQueueUserLeave] = true
		}
	}
	return nil
}

func (r *Resolver) sessionLeagueBranch(ctx context.Context, req Request,
	rec *types.LoginRecord, userID string, out *Context) error {

	out.Scopes[ScopeLeagueMatches] = true
	out.Scopes[ScopeLeagueUsers] = true

	league, err := r.directory.League(ctx, req.League)
	if err != nil {
		return err
	}
	out.League = league

	if rec.OwnsLeague(req.League) {
		out.Scopes[ScopeLeague] = false
		out.Scopes[ScopeLeagueOwner] = false
	} else {
		out.Scopes[ScopeLeague] = true
	}

	if strings.EqualFold(req.CheckAdmin, "true") {
		rows, err := r.store.LookupAdmin(ctx, userID, req.League)
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			for _, row := range rows {
				if !validation.ValidScopeName(row.Scope) {
					continue
				}
				out.Scopes[row.Scope] = row.Public
			}
			out.Scopes[ScopeIsAdmin] = true
		}
	}

	if req.User != "" {
		out.Scopes[ScopeLeagueUserMatches] = true

		if req.User == userID {
			out.Scopes[ScopeLeagueUser] = false
			out.Scopes[ScopeLeagueUserOwner] = false
		} else {
			out.Scopes[ScopeLeagueUser] = true
		}

		u, err := r.directory.User(ctx, req.League, req.User)
		if err != nil {
			return err
		}
		out.User = u

		if req.Ban != "" {
			out.Scopes[ScopeLeagueUserBan] = true
			b, err := r.directory.Ban(ctx, req.League, req.User, req.Ban)
			if err != nil {
				return err
			}
			out.Ban = b
		}
	}

	if req.Match != "" {
		out.Scopes[ScopeLeagueMatch] = true
		out.Scopes[ScopeLeagueMatchScoreboard] = true

		m, err := r.directory.Match(ctx, req.League, req.Match)
		if err != nil {
			return err
		}
		out.Match = m
	}
	return nil
}

// splitAuthorization splits "Scheme credentials". Extra whitespace or a
// missing half reports !ok.
func splitAuthorization(header string) (scheme, credentials string, ok bool) {
	fields := strings.Fields(header)
	if len(fields) != 2 {
		return "", "", false
	}
	return fields[0], fields[1], true
}
