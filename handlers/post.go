package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/akocak/fotogram/models"
	"github.com/akocak/fotogram/pkg"
	"github.com/akocak/fotogram/pkg/ratelimit"
	"github.com/akocak/fotogram/services"
)

// PostHandler, gönderi endpoint'lerini yöneten struct.
type PostHandler struct {
	postService services.PostService
	sendLimiter *ratelimit.SendRateLimiter
}

// NewPostHandler, constructor.
// sendLimiter: Gönderi spam koruması. nil ise devre dışı.
func NewPostHandler(postService services.PostService, sendLimiter *ratelimit.SendRateLimiter) *PostHandler {
	return &PostHandler{
		postService: postService,
		sendLimiter: sendLimiter,
	}
}

// Create godoc
// POST /api/posts
// Body: { "image_url": "...", "caption": "..." }
//
// Rate limiting: kullanıcı bazlı — pencere içinde çok fazla gönderi
// oluşturulursa 429 döner.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if h.sendLimiter != nil && !h.sendLimiter.Allow(user.ID) {
		retryAfter := h.sendLimiter.RetryAfterSeconds(user.ID)
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
		pkg.ErrorWithMessage(w, http.StatusTooManyRequests, "you are posting too fast, slow down")
		return
	}

	var req models.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, post)
}

// Feed godoc
// GET /api/feed?before=&limit=
// Takip edilenler + kendi gönderileri, cursor-based pagination.
func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	page, err := h.postService.Feed(r.Context(), user.ID, r.URL.Query().Get("before"), parseLimit(r, 20))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, page)
}

// ListByUser godoc
// GET /api/users/{username}/posts?before=&limit=
func (h *PostHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	username := r.PathValue("username")
	page, err := h.postService.ListByUser(r.Context(), user.ID, username, r.URL.Query().Get("before"), parseLimit(r, 20))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, page)
}

// Get godoc
// GET /api/posts/{postId}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	post, err := h.postService.Get(r.Context(), user.ID, r.PathValue("postId"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, post)
}

// ToggleLike godoc
// POST /api/posts/{postId}/like
// Beğeni varsa kaldırır, yoksa ekler. Response: { "liked": bool }
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	liked, err := h.postService.ToggleLike(r.Context(), user.ID, r.PathValue("postId"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

// Delete godoc
// DELETE /api/posts/{postId}
// Sadece gönderi sahibi silebilir.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if err := h.postService.Delete(r.Context(), user.ID, r.PathValue("postId")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
}

// parseLimit, ?limit= query parametresini okur; yoksa veya geçersizse
// verilen default'u döner. Üst sınır clamp'i service katmanında.
func parseLimit(r *http.Request, def int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}
