package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fleet-dispatch/internal/domain/trip"
	"fleet-dispatch/internal/general/jwt"
	"fleet-dispatch/internal/ports"
)

// --- Request DTO (HTTP boundary) ---

type manualUpdateRequest struct {
	NewStatus string `json:"new_status"`
}

// ----- Handler: POST /trips/{trip_id}/status -----

func (handler *StatusHTTPHandler) handleManualUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	tripID, err := strconv.ParseInt(r.PathValue("trip_id"), 10, 64)
	if err != nil || tripID <= 0 {
		handler.httpError(ctx, w, http.StatusBadRequest, "trip_id must be a positive integer", err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 64<<10) // 64 KiB
	defer r.Body.Close()

	var req manualUpdateRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON: "+err.Error(), err)
		return
	}

	newStatus, err := trip.ParseStatus(req.NewStatus)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest,
			"new_status must be one of: SCHEDULED, IN_PROGRESS, COMPLETED, CANCELLED", err)
		return
	}

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	in := ports.ManualUpdateInput{
		TripID:    tripID,
		NewStatus: newStatus,
		UserID:    strings.TrimSpace(claims.Subject),
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.svc.ManualUpdate(ctxWithTimeout, in)
	if err != nil {
		handler.httpError(ctxWithTimeout, w, statusForError(err), err.Error(), err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, res)
}
