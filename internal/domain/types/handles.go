package types

// Handles are non-owning references to domain entities. The authorization
// core resolves them by id and hands them to downstream handlers; it never
// creates or destroys the underlying entity.

// LeagueHandle references a league.
type LeagueHandle struct {
	LeagueID string `json:"league_id"`
	// OwnerID is the league owner's user id when known, otherwise empty.
	OwnerID string `json:"owner_id,omitempty"`
}

// UserHandle references a league member.
type UserHandle struct {
	LeagueID string `json:"league_id"`
	UserID   string `json:"user_id"`
}

// MatchHandle references a match within a league.
type MatchHandle struct {
	LeagueID string `json:"league_id"`
	MatchID  string `json:"match_id"`
}

// BanHandle references a ban placed on a league member.
type BanHandle struct {
	LeagueID string `json:"league_id"`
	UserID   string `json:"user_id"`
	BanID    string `json:"ban_id"`
}

// QueueSnapshot is the serializable state of an active queue at a point
// in time. Live queues are owned by internal/queue.
type QueueSnapshot struct {
	QueueID  string   `json:"queue_id"`
	LeagueID string   `json:"league_id,omitempty"`
	Capacity int      `json:"capacity"`
	Players  []string `json:"players"`
}
