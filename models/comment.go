package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Comment, bir gönderiye yapılan yorumu temsil eder.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	// JOIN ile doldurulan alan
	Author *User `json:"author,omitempty"`
}

// CreateCommentRequest, yeni yorum oluşturma isteği.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// Validate, CreateCommentRequest'in geçerli olup olmadığını kontrol eder.
func (r *CreateCommentRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	contentLen := utf8.RuneCountInString(r.Content)
	if contentLen < 1 {
		return fmt.Errorf("comment content is required")
	}
	if contentLen > 1000 {
		return fmt.Errorf("comment content must be at most 1000 characters")
	}
	return nil
}
