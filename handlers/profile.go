package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akocak/fotogram/models"
	"github.com/akocak/fotogram/pkg"
	"github.com/akocak/fotogram/services"
)

// ProfileHandler, kullanıcı profili endpoint'lerini yöneten struct.
type ProfileHandler struct {
	profileService services.ProfileService
	uploadService  services.UploadService
	maxUploadSize  int64
}

// NewProfileHandler, constructor.
func NewProfileHandler(
	profileService services.ProfileService,
	uploadService services.UploadService,
	maxUploadSize int64,
) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		uploadService:  uploadService,
		maxUploadSize:  maxUploadSize,
	}
}

// Me godoc
// GET /api/users/me
// Auth middleware gerektirir — context'te user bilgisi olur.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	me, err := h.profileService.Me(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, me)
}

// Get godoc
// GET /api/users/{username}
// Herkese açık profil: kullanıcı + gönderi/takipçi sayıları + izleyenin takip durumu.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	username := r.PathValue("username")
	profile, err := h.profileService.Get(r.Context(), user.ID, username)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, profile)
}

// Update godoc
// PUT /api/users/me
// Body: { "display_name": "...", "bio": "..." } — gönderilmeyen alan değişmez.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.profileService.Update(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, updated)
}

// UploadAvatar godoc
// POST /api/users/me/avatar
// Content-Type: multipart/form-data, "file" alanında resim.
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	// ParseMultipartForm: verilen limit kadarını bellekte tutar,
	// fazlası geçici dosyaya taşar
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

	updated, err := h.profileService.UpdateAvatar(r.Context(), user.ID, fileURL)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, updated)
}
