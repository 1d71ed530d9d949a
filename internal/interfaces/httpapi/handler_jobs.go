package httpapi

import (
	"net/http"

	sonic "github.com/bytedance/sonic"
)

type rescoreJobRequest struct {
	PoolID string `json:"poolId" validate:"required"`
}

type rescoreResultDTO struct {
	PoolID          string `json:"poolId"`
	FinishedMatches int    `json:"finishedMatches"`
	Scored          int    `json:"scored"`
	Updated         int    `json:"updated"`
	UsersRecomputed int    `json:"usersRecomputed"`
}

// RunRescoreJob settles one pool against the latest feed results. It is the
// target of the queued rescore jobs.
func (h *Handler) RunRescoreJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRescoreJob")
	defer span.End()

	var req rescoreJobRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.rescoreService.RescorePool(ctx, req.PoolID)
	if err != nil {
		h.logger.ErrorContext(ctx, "rescore job failed", "pool_id", req.PoolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rescoreResultDTO{
		PoolID:          result.PoolID,
		FinishedMatches: result.FinishedMatches,
		Scored:          result.Scored,
		Updated:         result.Updated,
		UsersRecomputed: result.UsersRecomputed,
	})
}

// RunScheduleRescoresJob fans one rescore job per pool out onto the queue.
func (h *Handler) RunScheduleRescoresJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunScheduleRescoresJob")
	defer span.End()

	enqueued, err := h.rescoreService.ScheduleAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "schedule rescores failed", "enqueued", enqueued, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"enqueued": enqueued})
}
