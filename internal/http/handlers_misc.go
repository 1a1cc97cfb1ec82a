package http

import (
	"context"
	"net/http"

	"github.com/OpenQueue/API/internal/auth"
	"github.com/OpenQueue/API/internal/cache"
	httperrors "github.com/OpenQueue/API/internal/http/errors"
	"github.com/OpenQueue/API/internal/observability/logger"
)

// Healthz handles GET /healthz: cache and store reachability.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := map[string]string{"cache": "ok", "store": "ok"}
	healthy := true

	if err := h.cache.Ping(ctx); err != nil {
		status["cache"] = err.Error()
		healthy = false
	}
	if h.pinger != nil {
		if err := h.pinger.Ping(ctx); err != nil {
			status["store"] = err.Error()
			healthy = false
		}
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	WriteData(w, code, status)
}

// CachingWebhook handles POST /api/caching: the upstream match engine
// signals that league data changed, and the affected serializer cache
// entries are purged. Requires the synthetic caching scope.
func (h *Handlers) CachingWebhook(w http.ResponseWriter, r *http.Request) {
	ac := AuthFrom(r.Context())
	if err := ac.Require(auth.ScopeCaching); err != nil {
		WriteError(w, r, err)
		return
	}

	var req struct {
		LeagueID string `json:"league_id"`
		MatchID  string `json:"match_id,omitempty"`
		UserID   string `json:"user_id,omitempty"`
	}
	if err := ReadJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if req.LeagueID == "" {
		WriteAppError(w, httperrors.ErrBadRequest.WithDetail("league_id required"))
		return
	}

	ctx := r.Context()
	keys := []string{cache.MatchesKey(req.LeagueID)}
	if req.MatchID != "" {
		keys = append(keys,
			cache.MatchKey(req.LeagueID, req.MatchID),
			cache.ScoreboardKey(req.LeagueID, req.MatchID))
	}
	if req.UserID != "" {
		keys = append(keys, cache.UserKey(req.LeagueID, req.UserID))
	}

	for _, k := range keys {
		if err := h.cache.Delete(ctx, k); err != nil {
			WriteError(w, r, err)
			return
		}
	}

	logger.From(ctx).Debug("cache purge",
		logger.Component("caching"), logger.LeagueID(req.LeagueID), logger.Count(len(keys)))
	WriteData(w, http.StatusOK, map[string]int{"purged": len(keys)})
}

// pinger is the slice of the store the health endpoint needs.
type pinger interface {
	Ping(ctx context.Context) error
}
