package cache

// Key builders used by both the serializer cache and the caching webhook
// that purges entries when upstream data changes.

func MatchKey(leagueID, matchID string) string {
	return "league-" + leagueID + "-match-" + matchID
}

func ScoreboardKey(leagueID, matchID string) string {
	return "league-" + leagueID + "-scoreboard-" + matchID
}

func MatchesKey(leagueID string) string {
	return "league-" + leagueID + "-matches"
}

func UserKey(leagueID, userID string) string {
	return "league-" + leagueID + "-user-" + userID
}
