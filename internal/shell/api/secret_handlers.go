package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marofny/deckhand/internal/core/auth"
	"github.com/marofny/deckhand/internal/shell/store"
)

// =============================================================================
// Secret Handlers
// =============================================================================

func (h *Handler) handleCreateSecret(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok || !auth.CanManageSecrets(user.Role) {
		writeError(w, http.StatusForbidden, "insufficient role")
		return
	}

	var req SecretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.CreateSecret(r.Context(), req.Key, req.Value); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			writeError(w, http.StatusConflict, "secret already exists, delete it first or use another key")
			return
		}
		h.logger.Error("failed to create secret", "key", req.Key, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create secret")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"key": req.Key})
}

func (h *Handler) handleUpdateSecret(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok || !auth.CanManageSecrets(user.Role) {
		writeError(w, http.StatusForbidden, "insufficient role")
		return
	}

	var req SecretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.UpdateSecret(r.Context(), req.Key, req.Value); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "secret not found")
			return
		}
		h.logger.Error("failed to update secret", "key", req.Key, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update secret")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": req.Key})
}

func (h *Handler) handleDeleteSecret(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok || !auth.CanManageSecrets(user.Role) {
		writeError(w, http.StatusForbidden, "insufficient role")
		return
	}

	key := chi.URLParam(r, "key")
	if err := h.store.DeleteSecret(r.Context(), key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "secret not found")
			return
		}
		h.logger.Error("failed to delete secret", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete secret")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleShowSecret reveals one secret value.
func (h *Handler) handleShowSecret(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok || !auth.CanManageSecrets(user.Role) {
		writeError(w, http.StatusForbidden, "insufficient role")
		return
	}

	key := chi.URLParam(r, "key")
	secret, err := h.store.GetSecret(r.Context(), key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "secret not found")
			return
		}
		h.logger.Error("failed to get secret", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get secret")
		return
	}
	writeJSON(w, http.StatusOK, SecretRequest{Key: secret.Key, Value: secret.Value})
}

// handleListSecrets lists secret keys and creation times, never values.
func (h *Handler) handleListSecrets(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok || !auth.CanListSecrets(user.Role) {
		writeError(w, http.StatusForbidden, "insufficient role")
		return
	}

	secrets, err := h.store.ListSecrets(r.Context())
	if err != nil {
		h.logger.Error("failed to list secrets", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get secret list")
		return
	}

	infos := make([]SecretInfo, 0, len(secrets))
	for _, s := range secrets {
		infos = append(infos, SecretInfo{Key: s.Key, CreatedAt: s.CreatedAt})
	}
	writeJSON(w, http.StatusOK, infos)
}
