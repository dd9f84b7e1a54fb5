package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Message, bir konuşmadaki tek bir mesajı temsil eder.
//
// Mesajlar append-only'dir: oluşturulduktan sonra asla düzenlenmez
// veya silinmez. Tek yaşam döngüsü mutasyonu Read alanının false→true
// geçişidir — sadece alıcı thread'i açtığında, asla geri dönmez.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	ReceiverID     string    `json:"receiver_id"`
	Text           string    `json:"text"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"created_at"` // Server-assigned — sıralama için kanonik
}

// SendMessageRequest, yeni mesaj gönderme isteği.
type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id"`
	Text       string `json:"text"`
}

// Validate, SendMessageRequest'in geçerli olup olmadığını kontrol eder.
// Trim sonrası boş metin reddedilir — hiçbir yazma denenmez.
func (r *SendMessageRequest) Validate() error {
	if strings.TrimSpace(r.ReceiverID) == "" {
		return fmt.Errorf("receiver_id is required")
	}
	r.Text = strings.TrimSpace(r.Text)
	textLen := utf8.RuneCountInString(r.Text)
	if textLen < 1 {
		return fmt.Errorf("message text is required")
	}
	if textLen > 2000 {
		return fmt.Errorf("message text must be at most 2000 characters")
	}
	return nil
}
