package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// ----- Handler: GET /audit/recent -----

func (handler *DispatchHTTPHandler) handleRecentAudit(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			handler.httpError(ctx, w, http.StatusBadRequest, "limit must be an integer in 1..500", err)
			return
		}
		limit = n
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	entries, err := handler.svc.RecentAudit(ctxWithTimeout, limit)
	if err != nil {
		handler.httpError(ctxWithTimeout, w, http.StatusInternalServerError, "failed to load audit entries", err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}
