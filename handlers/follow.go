package handlers

import (
	"net/http"

	"github.com/akocak/fotogram/models"
	"github.com/akocak/fotogram/pkg"
	"github.com/akocak/fotogram/services"
)

// FollowHandler, takip endpoint'lerini yöneten struct.
type FollowHandler struct {
	followService services.FollowService
}

// NewFollowHandler, constructor.
func NewFollowHandler(followService services.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// Toggle godoc
// POST /api/users/{username}/follow
// Takip varsa bırakır, yoksa başlatır. Response: { "following": bool }
func (h *FollowHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	following, err := h.followService.Toggle(r.Context(), user.ID, r.PathValue("username"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]bool{"following": following})
}

// Followers godoc
// GET /api/users/{username}/followers
func (h *FollowHandler) Followers(w http.ResponseWriter, r *http.Request) {
	users, err := h.followService.Followers(r.Context(), r.PathValue("username"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, users)
}

// Following godoc
// GET /api/users/{username}/following
func (h *FollowHandler) Following(w http.ResponseWriter, r *http.Request) {
	users, err := h.followService.Following(r.Context(), r.PathValue("username"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, users)
}
