package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/marofny/deckhand/internal/core/auth"
	"github.com/marofny/deckhand/internal/core/deploy"
	"github.com/marofny/deckhand/internal/core/domain"
	"github.com/marofny/deckhand/internal/core/manifest"
)

// =============================================================================
// Plan Handlers
// =============================================================================

// handlePlan computes a deployment plan for the submitted manifest. The
// handler gathers a consistent snapshot of secrets, last deploys, live
// services and image tags, then calls the pure planner.
func (h *Handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok || !auth.CanPlan(user.Role) {
		writeError(w, http.StatusForbidden, "insufficient role")
		return
	}

	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inputs, ok := h.gatherPlanInputs(w, r)
	if !ok {
		return
	}

	deploys, err := deploy.Plan(deploy.PlanParams{
		Config:       req.Config,
		LastDeploys:  inputs.snapshots,
		LiveServices: inputs.liveServices,
		Images:       inputs.imageTags,
		Secrets:      inputs.secrets,
		Filter:       req.Filter,
		ToBuild:      req.ToBuild,
		Now:          time.Now().Unix(),
	})
	if err != nil {
		h.writePlanError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deploys)
}

// handleRollback computes the plan back to the previous snapshot.
func (h *Handler) handleRollback(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok || !auth.CanDeploy(user.Role) {
		writeError(w, http.StatusForbidden, "insufficient role")
		return
	}

	var req RollbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snapshots, err := h.loadSnapshots(r)
	if err != nil {
		h.logger.Error("failed to load deploy snapshots", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load last deploys")
		return
	}

	deploys, err := deploy.Rollback(deploy.RollbackParams{
		Config:      req.Config,
		LastDeploys: snapshots,
	})
	if err != nil {
		h.writePlanError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deploys)
}

// handleApply applies a plan and persists the resulting snapshot.
func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok || !auth.CanDeploy(user.Role) {
		writeError(w, http.StatusForbidden, "insufficient role")
		return
	}

	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.applier.Apply(r.Context(), req.Deploys)
	if err != nil {
		h.logger.Error("apply failed", "failed_service", result.Failed, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":  err.Error(),
			"result": result,
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// =============================================================================
// Input Gathering
// =============================================================================

type planInputs struct {
	secrets      []deploy.SecretValue
	snapshots    []deploy.ProjectDeploys
	liveServices []string
	imageTags    []string
}

// gatherPlanInputs reads everything a planning run needs. On failure it
// writes the error response itself and returns ok=false.
func (h *Handler) gatherPlanInputs(w http.ResponseWriter, r *http.Request) (planInputs, bool) {
	var inputs planInputs

	storedSecrets, err := h.store.ListSecrets(r.Context())
	if err != nil {
		h.logger.Error("failed to list secrets", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get secret list")
		return inputs, false
	}
	inputs.secrets = make([]deploy.SecretValue, 0, len(storedSecrets))
	for _, s := range storedSecrets {
		inputs.secrets = append(inputs.secrets, deploy.SecretValue{Key: s.Key, Value: s.Value})
	}

	inputs.snapshots, err = h.loadSnapshots(r)
	if err != nil {
		h.logger.Error("failed to load deploy snapshots", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get last deploys")
		return inputs, false
	}

	inputs.liveServices, err = h.docker.ListServiceNames()
	if err != nil {
		h.logger.Error("failed to list services", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list services")
		return inputs, false
	}

	inputs.imageTags, err = h.docker.ListImageTags()
	if err != nil {
		h.logger.Error("failed to list images", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list images")
		return inputs, false
	}

	return inputs, true
}

// loadSnapshots decodes the stored snapshot history, newest first.
func (h *Handler) loadSnapshots(r *http.Request) ([]deploy.ProjectDeploys, error) {
	stored, err := h.store.ListSnapshots(r.Context())
	if err != nil {
		return nil, err
	}
	return h.decodeSnapshots(stored), nil
}

// decodeSnapshots converts stored snapshots into planner input. A snapshot
// with a corrupt payload is skipped rather than blocking every future plan.
func (h *Handler) decodeSnapshots(stored []domain.Snapshot) []deploy.ProjectDeploys {
	out := make([]deploy.ProjectDeploys, 0, len(stored))
	for _, snap := range stored {
		var deploys []deploy.Deploy
		if err := json.Unmarshal(snap.Payload, &deploys); err != nil {
			h.logger.Warn("skipping corrupt deploy snapshot",
				"project", snap.ProjectName, "snapshot_id", snap.ID)
			continue
		}
		out = append(out, deploy.ProjectDeploys{
			ProjectName: snap.ProjectName,
			Deploys:     deploys,
		})
	}
	return out
}

// writePlanError maps core errors onto status codes: invalid input is the
// caller's fault (400), everything else is ours (500).
func (h *Handler) writePlanError(w http.ResponseWriter, err error) {
	var parseErr *manifest.ParseError
	switch {
	case errors.As(err, &parseErr),
		errors.Is(err, manifest.ErrEmptyInput),
		errors.Is(err, deploy.ErrInvalidDatabaseType),
		errors.Is(err, deploy.ErrNoImage),
		errors.Is(err, deploy.ErrNoRollbackTarget):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("planning failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
