package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/lapollita/polla-api/internal/usecase"
)

type savePredictionRequest struct {
	Home *int `json:"home" validate:"omitempty,min=0,max=99"`
	Away *int `json:"away" validate:"omitempty,min=0,max=99"`
}

func (h *Handler) SavePrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SavePrediction")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	poolID := r.PathValue("poolID")
	matchID, err := strconv.ParseInt(r.PathValue("matchID"), 10, 64)
	if err != nil || matchID <= 0 {
		writeError(ctx, w, fmt.Errorf("%w: match id must be a positive integer", usecase.ErrInvalidInput))
		return
	}

	var req savePredictionRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	saved, stored, err := h.predictionService.Save(ctx, usecase.SavePredictionInput{
		UserID:  principal.UserID,
		PoolID:  poolID,
		MatchID: matchID,
		Home:    req.Home,
		Away:    req.Away,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "save prediction failed",
			"pool_id", poolID,
			"match_id", matchID,
			"user_id", principal.UserID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}
	if !stored {
		writeSuccess(ctx, w, http.StatusOK, nil)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionToDTO(saved))
}

func (h *Handler) ListMyPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyPredictions")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	poolID := r.PathValue("poolID")
	items, err := h.predictionService.ListForUser(ctx, principal.UserID, poolID)
	if err != nil {
		h.logger.WarnContext(ctx, "list predictions failed", "pool_id", poolID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]predictionDTO, 0, len(items))
	for _, item := range items {
		out = append(out, predictionToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}
