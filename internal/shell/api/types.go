package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/marofny/deckhand/internal/core/deploy"
)

// =============================================================================
// Request / Response Types
// =============================================================================

// PlanRequest asks the control plane for a deployment plan.
type PlanRequest struct {
	// Config is the raw manifest text.
	Config string `json:"config"`

	// Filter restricts the desired set to the named units.
	Filter []string `json:"filter,omitempty"`

	// ToBuild selects which apps get build tasks; absent means all.
	ToBuild []string `json:"to_build,omitempty"`
}

// RollbackRequest asks for the plan back to the previous snapshot.
type RollbackRequest struct {
	Config string `json:"config"`
}

// ApplyRequest submits a plan for application.
type ApplyRequest struct {
	Deploys []deploy.Deploy `json:"deploys"`
}

// SecretRequest creates or updates one secret.
type SecretRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SecretInfo is one listed secret; values are never listed.
type SecretInfo struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}

// UserInfo describes the authenticated user.
type UserInfo struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// Response Helpers
// =============================================================================

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
