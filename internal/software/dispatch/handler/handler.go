package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"fleet-dispatch/internal/domain/command"
	"fleet-dispatch/internal/domain/driver"
	"fleet-dispatch/internal/domain/trip"
	"fleet-dispatch/internal/domain/user"
	"fleet-dispatch/internal/domain/vehicle"
	"fleet-dispatch/internal/general/jwt"
	"fleet-dispatch/internal/general/logger"
	"fleet-dispatch/internal/ports"

	"github.com/jackc/pgx/v5/pgconn"
)

// DispatchHTTPHandler adapts HTTP requests to the CommandService.
type DispatchHTTPHandler struct {
	svc    ports.CommandService
	logger *logger.Logger
	auth   *jwt.Manager
}

// NewDispatchHTTPHandler wires an HTTP handler around the CommandService.
func NewDispatchHTTPHandler(
	svc ports.CommandService,
	logger *logger.Logger,
	auth *jwt.Manager,
) *DispatchHTTPHandler {
	return &DispatchHTTPHandler{svc: svc, logger: logger, auth: auth}
}

// RegisterRoutes mounts dispatch endpoints on the provided mux.
func (handler *DispatchHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /commands",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDispatcher, user.RoleAdmin)(handler.handleCommand),
	)
	mux.HandleFunc("POST /commands/confirm",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDispatcher, user.RoleAdmin)(handler.handleConfirm),
	)
	mux.HandleFunc("GET /audit/recent",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDispatcher, user.RoleAdmin)(handler.handleRecentAudit),
	)

	mux.HandleFunc("GET /dispatch/health", handler.handleHealth)
	mux.HandleFunc("POST /tokens", handler.handleCreateToken)
}

// ----- general helpers -----

type TokenRequest struct {
	UserID string    `json:"user_id"`
	Role   user.Role `json:"role"`
}

// TokenResponse represents the response for token generation
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Role      user.Role `json:"role"`
}

func (handler *DispatchHTTPHandler) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if strings.TrimSpace(req.UserID) == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "user_id is required", nil)
		return
	}
	if !req.Role.Valid() {
		handler.httpError(ctx, w, http.StatusBadRequest, "role must be one of: DISPATCHER, ADMIN", nil)
		return
	}

	tokenString, claims, err := handler.auth.IssueUserToken(req.UserID, req.Role)
	if err != nil {
		handler.httpError(ctx, w, http.StatusInternalServerError, "Failed to generate token", err)
		return
	}

	response := TokenResponse{
		Token:     tokenString,
		ExpiresAt: claims.ExpiresAt.Time,
		UserID:    req.UserID,
		Role:      req.Role,
	}

	handler.logger.Info(ctx, "token_generated", "JWT token generated successfully",
		map[string]any{"user_id": req.UserID, "role": req.Role.String()})

	handler.jsonResponse(ctx, w, http.StatusCreated, response)
}

func (handler *DispatchHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	handler.jsonResponse(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (handler *DispatchHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	// encode to buffer first so we can control status on failure
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
func (handler *DispatchHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	} else if status == http.StatusBadRequest {
		action = "validation_failed"
	} else if status == http.StatusUnsupportedMediaType {
		action = "unsupported_media_type"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

// withReqID extracts or generates a request ID and adds it to the context.
func (handler *DispatchHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		reqID = randID()
	}
	return handler.logger.WithRequestID(ctx, reqID)
}

// randID generates a random 24-char hex string suitable for request IDs.
func randID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// statusForError maps pipeline rejections to HTTP status codes. Unknown
// errors and database failures are internal.
func statusForError(err error) int {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, command.ErrTargetNotFound),
		errors.Is(err, command.ErrSessionNotFound),
		errors.Is(err, trip.ErrNotFound),
		errors.Is(err, vehicle.ErrNotFound),
		errors.Is(err, driver.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, command.ErrAmbiguousTarget),
		errors.Is(err, trip.ErrInvalidStatusTransition):
		return http.StatusConflict
	case errors.Is(err, command.ErrUnknownAction),
		errors.Is(err, command.ErrMissingParam),
		errors.Is(err, command.ErrIncompleteDescriptor),
		errors.Is(err, trip.ErrScheduleParse):
		return http.StatusBadRequest
	case errors.As(err, &pgErr):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
