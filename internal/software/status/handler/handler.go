package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"fleet-dispatch/internal/domain/trip"
	"fleet-dispatch/internal/domain/user"
	"fleet-dispatch/internal/general/jwt"
	"fleet-dispatch/internal/general/logger"
	"fleet-dispatch/internal/ports"

	"github.com/jackc/pgx/v5/pgconn"
)

// StatusHTTPHandler adapts HTTP requests to the StatusService.
type StatusHTTPHandler struct {
	svc    ports.StatusService
	logger *logger.Logger
	auth   *jwt.Manager
}

// NewStatusHTTPHandler wires an HTTP handler around the StatusService.
func NewStatusHTTPHandler(
	svc ports.StatusService,
	logger *logger.Logger,
	auth *jwt.Manager,
) *StatusHTTPHandler {
	return &StatusHTTPHandler{svc: svc, logger: logger, auth: auth}
}

// RegisterRoutes mounts status endpoints on the provided mux.
func (handler *StatusHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /trips/{trip_id}/status",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDispatcher, user.RoleAdmin)(handler.handleManualUpdate),
	)
	mux.HandleFunc("POST /status/force_update",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleAdmin)(handler.handleForceUpdate),
	)
	mux.HandleFunc("GET /status/info",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDispatcher, user.RoleAdmin)(handler.handleInfo),
	)
}

// ----- general helpers -----

func (handler *StatusHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	var buf []byte
	var err error

	if data != nil {
		buf, err = json.Marshal(data)
		if err != nil {
			handler.logger.Error(ctx, "response_encode_failed", "Failed to encode response", err, nil)
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
	} else {
		buf = []byte("{}")
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

// httpError sends a JSON error response with a message.
func (handler *StatusHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	} else if status == http.StatusBadRequest {
		action = "validation_failed"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

// withReqID extracts or generates a request ID and adds it to the context.
func (handler *StatusHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		var b [12]byte
		_, _ = rand.Read(b[:])
		reqID = hex.EncodeToString(b[:])
	}
	return handler.logger.WithRequestID(ctx, reqID)
}

// statusForError maps status-machine rejections to HTTP status codes.
func statusForError(err error) int {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, trip.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, trip.ErrInvalidStatusTransition):
		return http.StatusConflict
	case errors.As(err, &pgErr):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
