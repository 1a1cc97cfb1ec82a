package http

import (
	"errors"
	"net/http"

	"github.com/OpenQueue/API/internal/auth"
	"github.com/OpenQueue/API/internal/domain/types"
	httperrors "github.com/OpenQueue/API/internal/http/errors"
	"github.com/OpenQueue/API/internal/queue"
)

// queueView serializes a queue snapshot. The public view hides who is
// queued; only the player count survives redaction.
func queueView(snap types.QueueSnapshot, public bool) map[string]any {
	out := map[string]any{
		"queue_id":     snap.QueueID,
		"league_id":    snap.LeagueID,
		"capacity":     snap.Capacity,
		"player_count": len(snap.Players),
	}
	if !public {
		out["players"] = snap.Players
	}
	return out
}

// QueueGet handles GET /api/v1/league/queue.
func (h *Handlers) QueueGet(w http.ResponseWriter, r *http.Request) {
	ac := AuthFrom(r.Context())
	if err := ac.Require(auth.ScopeQueueGet); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := ac.RequireStates("queue"); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, queueView(ac.Queue.Snapshot(), ac.Public(auth.ScopeQueueGet)))
}

// QueueCreate handles POST /api/v1/league/queue.
func (h *Handlers) QueueCreate(w http.ResponseWriter, r *http.Request) {
	ac := AuthFrom(r.Context())
	if err := ac.Require(auth.ScopeQueueCreate); err != nil {
		WriteError(w, r, err)
		return
	}

	var req struct {
		Capacity int `json:"capacity"`
	}
	if err := ReadJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if req.Capacity < 0 {
		WriteAppError(w, httperrors.ErrBadRequest.WithDetail("capacity must be >= 0"))
		return
	}

	leagueID := ""
	if ac.League != nil {
		leagueID = ac.League.LeagueID
	}
	q := h.queues.Create(leagueID, req.Capacity)
	WriteData(w, http.StatusOK, queueView(q.Snapshot(), ac.Public(auth.ScopeQueueCreate)))
}

// QueueJoin handles PUT /api/v1/league/queue.
func (h *Handlers) QueueJoin(w http.ResponseWriter, r *http.Request) {
	ac := AuthFrom(r.Context())
	if err := ac.Require(auth.ScopeQueueUserJoin); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := ac.RequireStates("queue", "user"); err != nil {
		WriteError(w, r, err)
		return
	}

	if err := ac.Queue.Join(ac.User.UserID); err != nil {
		if errors.Is(err, queue.ErrQueueFull) {
			WriteAppError(w, httperrors.ErrConflict.WithDetail("queue is full"))
			return
		}
		WriteError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, queueView(ac.Queue.Snapshot(), ac.Public(auth.ScopeQueueUserJoin)))
}

// QueueLeave handles PATCH /api/v1/league/queue.
func (h *Handlers) QueueLeave(w http.ResponseWriter, r *http.Request) {
	ac := AuthFrom(r.Context())
	if err := ac.Require(auth.ScopeQueueUserLeave); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := ac.RequireStates("queue", "user"); err != nil {
		WriteError(w, r, err)
		return
	}

	if err := ac.Queue.Leave(ac.User.UserID); err != nil {
		if errors.Is(err, queue.ErrNotQueued) {
			WriteAppError(w, httperrors.ErrConflict.WithDetail("user not in queue"))
			return
		}
		WriteError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, queueView(ac.Queue.Snapshot(), ac.Public(auth.ScopeQueueUserLeave)))
}

// QueueEnd handles DELETE /api/v1/league/queue.
func (h *Handlers) QueueEnd(w http.ResponseWriter, r *http.Request) {
	ac := AuthFrom(r.Context())
	if err := ac.Require(auth.ScopeQueueEnd); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := ac.RequireStates("queue"); err != nil {
		WriteError(w, r, err)
		return
	}

	h.queues.End(ac.Queue.ID())
	WriteData(w, http.StatusOK, map[string]any{})
}
