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

type commandRequest struct {
	Text      string `json:"text"`
	ContextID string `json:"context_id"`
}

// ----- Handler: POST /commands -----

func (handler *DispatchHTTPHandler) handleCommand(w http.ResponseWriter, r *http.Request) {
	// generate a context with request ID
	ctx := handler.withReqID(r.Context(), r)

	// check the content type
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		handler.httpError(ctx, w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
		return
	}

	// limit body size
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10) // 64 KiB
	defer r.Body.Close()

	// decode strictly
	var req commandRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			handler.httpError(ctx, w, http.StatusRequestEntityTooLarge, "request body too large", err)
			return
		}
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON: "+err.Error(), err)
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "text is required", nil)
		return
	}

	// obtain the JWT claims; the subject identifies the acting dispatcher
	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}
	userID := strings.TrimSpace(claims.Subject)

	// the conversation context defaults to the user when the client has none
	contextID := strings.TrimSpace(req.ContextID)
	if contextID == "" {
		contextID = userID
	}

	in := ports.CommandInput{
		Text:      strings.TrimSpace(req.Text),
		UserID:    userID,
		ContextID: contextID,
	}

	// bound service call
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	res, err := handler.svc.ExecuteCommand(ctxWithTimeout, in)
	if err != nil {
		handler.httpError(ctxWithTimeout, w, statusForError(err), err.Error(), err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, res)
}
