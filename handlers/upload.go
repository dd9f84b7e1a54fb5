package handlers

import (
	"net/http"

	"github.com/akocak/fotogram/models"
	"github.com/akocak/fotogram/pkg"
	"github.com/akocak/fotogram/services"
)

// UploadHandler, gönderi resmi yükleme endpoint'ini yönetir.
//
// Akış iki adımlıdır: önce resim buraya yüklenir, dönen file_url ile
// POST /api/posts çağrılır. Avatar yüklemesi ProfileHandler'dadır.
type UploadHandler struct {
	uploadService services.UploadService
	maxUploadSize int64
}

// NewUploadHandler, constructor.
func NewUploadHandler(uploadService services.UploadService, maxUploadSize int64) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		maxUploadSize: maxUploadSize,
	}
}

// UploadImage godoc
// POST /api/uploads
// Content-Type: multipart/form-data, "file" alanında resim.
// Response: { "file_url": "/api/uploads/..." }
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := r.Context().Value(UserContextKey).(*models.User); !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	fileURL, err := h.uploadService.UploadImage(file, header)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, map[string]string{"file_url": fileURL})
}
