package handler

import (
	"context"
	"net/http"
	"time"
)

// ----- Handler: POST /status/force_update -----

func (handler *StatusHTTPHandler) handleForceUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := handler.svc.ForceUpdate(ctxWithTimeout)
	if err != nil {
		handler.httpError(ctxWithTimeout, w, http.StatusInternalServerError, "forced update failed", err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, res)
}

// ----- Handler: GET /status/info -----

func (handler *StatusHTTPHandler) handleInfo(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)
	handler.jsonResponse(ctx, w, http.StatusOK, handler.svc.Info())
}
