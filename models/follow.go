package models

import "time"

// Follow, bir kullanıcının başka bir kullanıcıyı takip etmesini temsil eder.
// UNIQUE(follower_id, followee_id) constraint'i sayesinde aynı çift için
// sadece tek kayıt oluşabilir — toggle mantığı service katmanında.
type Follow struct {
	ID         string    `json:"id"`
	FollowerID string    `json:"follower_id"`
	FolloweeID string    `json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}
