package ports

import (
	"context"
	"time"

	"fleet-dispatch/internal/domain/command"
	"fleet-dispatch/internal/domain/trip"
)

// IntentClassifier is the external text-understanding service, consumed as a
// black box. It turns free text into a structured intent record; the record
// is validated into a typed Intent at the pipeline boundary.
type IntentClassifier interface {
	Classify(ctx context.Context, text string) (command.IntentRecord, error)
}

// ----- DTOs for the Command Service -----

// CommandInput is the validated input for POST /commands.
type CommandInput struct {
	Text      string
	UserID    string
	ContextID string // conversation/context id owning at most one pending session
}

// ConsequenceSummary describes the blast radius of a candidate action.
type ConsequenceSummary struct {
	BookingCount int  `json:"booking_count"`
	Destructive  bool `json:"destructive"`
	Reversible   bool `json:"reversible"`
}

// CommandResult is returned by CommandService.ExecuteCommand.
type CommandResult struct {
	ActionKind        string             `json:"action_kind"`
	TripID            int64              `json:"trip_id"`
	NeedsConfirmation bool               `json:"needs_confirmation"`
	Consequence       ConsequenceSummary `json:"consequence"`
	SessionID         string             `json:"session_id,omitempty"`
	Executed          bool               `json:"executed"`
	Message           string             `json:"message"`
}

// ConfirmInput is the validated input for POST /commands/confirm.
type ConfirmInput struct {
	SessionID string
	Confirmed bool
	UserID    string
}

// ConfirmResult is returned by CommandService.ConfirmCommand.
// Status is one of "executed", "cancelled", "expired".
type ConfirmResult struct {
	Status  string `json:"status"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AuditEntryView is the read model for GET /audit/recent.
type AuditEntryView struct {
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   int64          `json:"entity_id"`
	UserID     string         `json:"user_id"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ----- Command Service Interface -----

// CommandService runs the command pipeline: classify, resolve, analyze
// consequences, gate destructive actions behind confirmation, execute.
type CommandService interface {
	ExecuteCommand(ctx context.Context, in CommandInput) (CommandResult, error)
	ConfirmCommand(ctx context.Context, in ConfirmInput) (ConfirmResult, error)
	RecentAudit(ctx context.Context, limit int) ([]AuditEntryView, error)
	RunBackgroundConsumers(ctx context.Context)
}

// ---------------------------------------------------------------------------------------------------------------

// ----- DTOs for the Status Service -----

// ManualUpdateInput is the validated input for POST /trips/{trip_id}/status.
type ManualUpdateInput struct {
	TripID    int64
	NewStatus trip.Status
	UserID    string
}

// ManualUpdateResult matches the API response for a manual override.
type ManualUpdateResult struct {
	TripID    int64  `json:"trip_id"`
	NewStatus string `json:"new_status"`
	Message   string `json:"message"`
}

// ForceUpdateResult matches the API response for POST /status/force_update.
type ForceUpdateResult struct {
	Success      bool `json:"success"`
	Transitioned int  `json:"transitioned"`
}

// StatusInfo matches the API response for GET /status/info.
type StatusInfo struct {
	Running       bool     `json:"running"`
	TickInterval  string   `json:"tick_interval"`
	TripDuration  string   `json:"trip_duration"`
	ValidStatuses []string `json:"valid_statuses"`
}

// ----- Status Service Interface -----

// StatusService owns the autonomous trip-status state machine: a background
// loop that advances trip lifecycle state on a timer, plus the manual and
// forced entry points that share the same code path.
type StatusService interface {
	Start()
	Stop()
	Running() bool
	ForceUpdate(ctx context.Context) (ForceUpdateResult, error)
	ManualUpdate(ctx context.Context, in ManualUpdateInput) (ManualUpdateResult, error)
	Info() StatusInfo
}
