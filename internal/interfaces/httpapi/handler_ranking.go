package httpapi

import (
	"fmt"
	"net/http"

	"github.com/lapollita/polla-api/internal/usecase"
)

func (h *Handler) ListStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListStandings")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	poolID := r.PathValue("poolID")
	standings, err := h.rankingService.Standings(ctx, poolID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list standings failed", "pool_id", poolID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]standingDTO, 0, len(standings))
	for _, row := range standings {
		items = append(items, standingDTO{
			Rank:     row.Rank,
			UserID:   row.UserID,
			Username: row.Username,
			Total:    row.Total,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, standingsDTO{
		Items:      items,
		CallerRank: usecase.RankFor(standings, principal.UserID),
	})
}
