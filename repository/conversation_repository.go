package repository

import (
	"context"

	"github.com/akocak/fotogram/models"
)

// ConversationRepository, konuşma özetleri için interface.
//
// Konuşmalar sadece UpsertSummary ile yazılır: yoksa oluşturulur,
// varsa yalnızca özet alanları (last_message, last_message_time)
// üzerine yazılır — katılımcılar oluşturulduktan sonra değişmez.
type ConversationRepository interface {
	GetByID(ctx context.Context, id string) (*models.Conversation, error)

	// ListForUser: kullanıcının katıldığı tüm konuşmalar,
	// last_message_time DESC sıralı. Eşit zamanlar için deterministik
	// tie-break: id ASC.
	ListForUser(ctx context.Context, userID string) ([]models.Conversation, error)

	UpsertSummary(ctx context.Context, conv *models.Conversation) error
}

// MessageRepository, mesaj veritabanı işlemleri için interface.
//
// Mesajlar append-only'dir: Create dışında tek yazma MarkRead'dir
// (read 0→1, asla geri dönmez).
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error

	// ListByConversation: konuşmanın tüm mesajları, server-assigned
	// created_at ASC sıralı (gönderim sırası değil).
	ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error)

	// CountUnread: alıcıya gelmiş ve henüz okunmamış mesaj sayısı —
	// çağrı anındaki point-in-time değer, subscription değil.
	CountUnread(ctx context.Context, conversationID, receiverID string) (int, error)

	// MarkRead: tek bir mesajı okundu yapar. Zaten okunmuşsa no-op —
	// read asla true→false dönmez.
	MarkRead(ctx context.Context, messageID string) error
}
