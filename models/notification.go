package models

import "time"

// NotificationType, bildirimin türünü temsil eder.
// Go'da enum yoktur, bunun yerine typed constant'lar kullanılır.
type NotificationType string

// İzin verilen NotificationType değerleri.
const (
	NotificationTypeLike    NotificationType = "like"
	NotificationTypeComment NotificationType = "comment"
	NotificationTypeFollow  NotificationType = "follow"
	NotificationTypeMessage NotificationType = "message"
)

// Notification, bir kullanıcıya gösterilecek bildirimi temsil eder.
// UserID alıcıdır, ActorID bildirimi tetikleyen kullanıcıdır.
// PostID sadece like/comment türlerinde doludur.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	ActorID   string           `json:"actor_id"`
	Type      NotificationType `json:"type"`
	PostID    *string          `json:"post_id,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`

	// JOIN ile doldurulan alan
	Actor *User `json:"actor,omitempty"`
}
