package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akocak/fotogram/models"
	"github.com/akocak/fotogram/pkg"
	"github.com/akocak/fotogram/services"
)

// CommentHandler, yorum endpoint'lerini yöneten struct.
type CommentHandler struct {
	commentService services.CommentService
}

// NewCommentHandler, constructor.
func NewCommentHandler(commentService services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Create godoc
// POST /api/posts/{postId}/comments
// Body: { "text": "..." }
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := h.commentService.Create(r.Context(), user.ID, r.PathValue("postId"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, comment)
}

// ListByPost godoc
// GET /api/posts/{postId}/comments
// Kronolojik sıralı (eskiden yeniye).
func (h *CommentHandler) ListByPost(w http.ResponseWriter, r *http.Request) {
	comments, err := h.commentService.ListByPost(r.Context(), r.PathValue("postId"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, comments)
}

// Delete godoc
// DELETE /api/comments/{commentId}
// Yorumu yazan veya gönderinin sahibi silebilir.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if err := h.commentService.Delete(r.Context(), user.ID, r.PathValue("commentId")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}
