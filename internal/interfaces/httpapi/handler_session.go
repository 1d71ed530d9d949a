package httpapi

import (
	"fmt"
	"net/http"

	"github.com/lapollita/polla-api/internal/usecase"
)

type sessionEntryRequest struct {
	MatchID int64 `json:"matchId" validate:"required,gt=0"`
	Home    *int  `json:"home" validate:"omitempty,min=0,max=99"`
	Away    *int  `json:"away" validate:"omitempty,min=0,max=99"`
}

type saveSessionRequest struct {
	Entries []sessionEntryRequest `json:"entries" validate:"required,min=1,max=200,dive"`
}

func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.OpenSession")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	poolID := r.PathValue("poolID")
	view, err := h.sessionService.Open(ctx, principal.UserID, poolID)
	if err != nil {
		h.logger.WarnContext(ctx, "open session failed", "pool_id", poolID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(view))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSession")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	poolID := r.PathValue("poolID")
	view, err := h.sessionService.View(ctx, principal.UserID, poolID)
	if err != nil {
		h.logger.WarnContext(ctx, "get session failed", "pool_id", poolID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(view))
}

func (h *Handler) SaveSessionPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveSessionPredictions")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req saveSessionRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	poolID := r.PathValue("poolID")
	entries := make([]usecase.SessionEntry, 0, len(req.Entries))
	for _, entry := range req.Entries {
		entries = append(entries, usecase.SessionEntry{
			MatchID: entry.MatchID,
			Home:    entry.Home,
			Away:    entry.Away,
		})
	}

	if err := h.sessionService.SaveAll(ctx, principal.UserID, poolID, entries); err != nil {
		h.logger.WarnContext(ctx, "save session batch failed",
			"pool_id", poolID,
			"user_id", principal.UserID,
			"entries", len(entries),
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	view, err := h.sessionService.View(ctx, principal.UserID, poolID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(view))
}

func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CloseSession")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	poolID := r.PathValue("poolID")
	h.sessionService.Teardown(principal.UserID, poolID)

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "closed"})
}
