package api

import (
	"mime"
	"net/http"

	"github.com/marofny/deckhand/internal/core/auth"
)

// =============================================================================
// Image Upload Handler
// =============================================================================

// handleUploadImage receives an image tarball as a multipart upload and
// streams it straight into the engine. The body is never buffered whole; the
// multipart reader hands the part stream directly to docker load.
func (h *Handler) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok || !auth.CanDeploy(user.Role) {
		writeError(w, http.StatusForbidden, "insufficient role")
		return
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		writeError(w, http.StatusBadRequest, "expected multipart/form-data")
		return
	}

	reader, err := r.MultipartReader()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	for {
		part, err := reader.NextPart()
		if err != nil {
			writeError(w, http.StatusBadRequest, "multipart body has no file part")
			return
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}

		if err := h.docker.LoadImage(part); err != nil {
			part.Close()
			h.logger.Error("failed to load image", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load image")
			return
		}
		part.Close()
		break
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}
