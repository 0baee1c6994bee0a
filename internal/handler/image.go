package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/artblossom/artblossom/internal/ctxkeys"
	"github.com/artblossom/artblossom/internal/service"
	"github.com/artblossom/artblossom/internal/validation"
)

type ImageHandler struct {
	imageService  *service.ImageService
	maxUploadSize int64
}

func NewImageHandler(imageService *service.ImageService, maxUploadSize int64) *ImageHandler {
	return &ImageHandler{
		imageService:  imageService,
		maxUploadSize: maxUploadSize,
	}
}

// Save handles POST /api/images/save: multipart fields userId, prompt and an
// image file part. Responds 200 {"id": ...} once the record is durable.
func (h *ImageHandler) Save(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	// MaxBytesReader enforces the upload cap; the form parser only needs a
	// modest in-memory threshold before spilling parts to disk
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	err := r.ParseMultipartForm(10 << 20)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	userID := r.FormValue("userId")
	prompt := r.FormValue("prompt")

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		writeError(w, http.StatusBadRequest, "missing required fields: userId, prompt, or image")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image part")
		return
	}
	defer func() { _ = file.Close() }()

	if userID == "" || prompt == "" {
		writeError(w, http.StatusBadRequest, "missing required fields: userId, prompt, or image")
		return
	}

	// A principal may only write to its own gallery
	if userID != user.ID {
		writeError(w, http.StatusForbidden, "cannot save images for another user")
		return
	}

	constraints := validation.DefaultImageConstraints
	constraints.MaxSize = h.maxUploadSize
	contentType, err := validation.ValidateImagePart(header, constraints)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image")
		return
	}

	id, err := h.imageService.SaveImage(r.Context(), userID, prompt, payload, contentType)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to save image", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// ListByUser handles GET /api/images/user/{userId}: the owner's gallery,
// newest first, each entry carrying a renderable imageUrl.
func (h *ImageHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	userID := r.PathValue("userId")

	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	// A principal may only read its own gallery
	if userID != user.ID {
		writeError(w, http.StatusForbidden, "cannot view another user's gallery")
		return
	}

	entries, err := h.imageService.LoadGallery(r.Context(), userID)
	if err != nil {
		slog.Error("failed to load gallery", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to get user images")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}
