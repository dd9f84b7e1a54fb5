package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Post, paylaşılan bir fotoğrafı temsil eder.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ImageURL  string    `json:"image_url"`
	Caption   string    `json:"caption"`
	CreatedAt time.Time `json:"created_at"`

	// JOIN/aggregate ile doldurulan alanlar
	Author       *User `json:"author,omitempty"`
	LikeCount    int   `json:"like_count"`
	CommentCount int   `json:"comment_count"`
	LikedByMe    bool  `json:"liked_by_me"` // İsteği yapan kullanıcı beğenmiş mi
}

// CreatePostRequest, yeni gönderi oluşturma isteği.
// ImageURL upload endpoint'inden döner — gönderi oluşturma ayrı adımdır.
type CreatePostRequest struct {
	ImageURL string `json:"image_url"`
	Caption  string `json:"caption"`
}

// Validate, CreatePostRequest'in geçerli olup olmadığını kontrol eder.
func (r *CreatePostRequest) Validate() error {
	r.ImageURL = strings.TrimSpace(r.ImageURL)
	if r.ImageURL == "" {
		return fmt.Errorf("image_url is required")
	}
	r.Caption = strings.TrimSpace(r.Caption)
	if utf8.RuneCountInString(r.Caption) > 2000 {
		return fmt.Errorf("caption must be at most 2000 characters")
	}
	return nil
}

// PostPage, gönderiler için cursor-based pagination response.
type PostPage struct {
	Posts   []Post `json:"posts"`
	HasMore bool   `json:"has_more"`
}
