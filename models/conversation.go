package models

import "time"

// Conversation, iki kullanıcı arasındaki mesajlaşma konuşmasını ve
// yuvarlanan özetini (son mesaj + zamanı) temsil eder.
//
// ID deterministiktir: katılımcı ID'leri sıralanıp "uid1_uid2" olarak
// birleştirilir (participant1_id < participant2_id). Bu sayede aynı iki
// kullanıcı arasında hiçbir zaman ikinci bir konuşma oluşamaz.
//
// Konuşma ilk mesaj gönderiminde örtük olarak oluşturulur (upsert-merge)
// ve asla silinmez. Özet alanlarını sadece mesaj gönderimi günceller.
type Conversation struct {
	ID              string    `json:"id"`
	Participant1ID  string    `json:"participant1_id"`
	Participant2ID  string    `json:"participant2_id"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
}

// OtherParticipant, konuşmadaki karşı tarafın ID'sini döner.
// userID katılımcılardan biri değilse boş string döner.
func (c *Conversation) OtherParticipant(userID string) string {
	switch userID {
	case c.Participant1ID:
		return c.Participant2ID
	case c.Participant2ID:
		return c.Participant1ID
	default:
		return ""
	}
}

// InboxEntry, bir konuşmanın tek bir kullanıcı için türetilmiş inbox
// görünümüdür: karşı tarafın kimliği + okunmamış sayısı.
//
// Persist edilmez — her snapshot'ta yeniden hesaplanır. Karşı tarafın
// profili çözümlenemezse OtherUserName "Unknown" olur (degraded entry);
// tek bir başarısız lookup tüm listeyi düşürmez.
type InboxEntry struct {
	ConversationID  string    `json:"conversation_id"`
	OtherUserID     string    `json:"other_user_id"`
	OtherUserName   string    `json:"other_user_name"`
	OtherUserAvatar string    `json:"other_user_avatar"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
	UnreadCount     int       `json:"unread_count"`
}
