package auth

// Scope names are dotted strings by convention only; there is no
// hierarchy, and granting a parent never implies a child.
const (
	ScopeCaching = "caching"

	ScopeSite         = "site"
	ScopeLoggedIn     = "site.loggedIn"
	ScopeRootLoggedIn = "site.rootLoggedIn"

	ScopeUser      = "user"
	ScopeUserOwner = "user.owner"

	ScopeLeague        = "league"
	ScopeLeagueOwner   = "league.owner"
	ScopeLeagueMatches = "league.matches"
	ScopeLeagueUsers   = "league.users"

	ScopeLeagueUser        = "league.user"
	ScopeLeagueUserOwner   = "league.user.owner"
	ScopeLeagueUserMatches = "league.user.matches"
	ScopeLeagueUserBan     = "league.user.ban"

	ScopeLeagueMatch           = "league.match"
	ScopeLeagueMatchScoreboard = "league.match.scoreboard"

	ScopeQueueGet       = "queue.get"
	ScopeQueueEnd       = "queue.end"
	ScopeQueueCreate    = "create_queue"
	ScopeQueueUserJoin  = "queue.user.join"
	ScopeQueueUserLeave = "queue.user.leave"

	ScopeLoginGenerate = "league.login.generate"
	ScopeLoginUserGet  = "league.login.user.get"

	// ScopeIsAdmin is synthetic: added whenever at least one admin grant
	// row exists for the (user, league) pair, never stored itself.
	ScopeIsAdmin = "is_admin"
)
