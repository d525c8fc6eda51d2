package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"fleet-dispatch/internal/general/jwt"
	"fleet-dispatch/internal/ports"
)

// --- Request DTO (HTTP boundary) ---

type confirmRequest struct {
	SessionID string `json:"session_id"`
	Confirmed *bool  `json:"confirmed"`
}

// ----- Handler: POST /commands/confirm -----

func (handler *DispatchHTTPHandler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		handler.httpError(ctx, w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 64<<10) // 64 KiB
	defer r.Body.Close()

	var req confirmRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON: "+err.Error(), err)
		return
	}

	if strings.TrimSpace(req.SessionID) == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "session_id is required", nil)
		return
	}
	if req.Confirmed == nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "confirmed is required", nil)
		return
	}

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	in := ports.ConfirmInput{
		SessionID: strings.TrimSpace(req.SessionID),
		Confirmed: *req.Confirmed,
		UserID:    strings.TrimSpace(claims.Subject),
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	res, err := handler.svc.ConfirmCommand(ctxWithTimeout, in)
	if err != nil {
		handler.httpError(ctxWithTimeout, w, statusForError(err), err.Error(), err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, res)
}
