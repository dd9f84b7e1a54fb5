package repository

import (
	"context"
	"fmt"

	"github.com/akocak/fotogram/database"
	"github.com/akocak/fotogram/models"
)

// sqliteMessageRepo, MessageRepository interface'inin SQLite implementasyonu.
type sqliteMessageRepo struct {
	db database.TxQuerier
}

// NewSQLiteMessageRepo, constructor — interface döner.
func NewSQLiteMessageRepo(db database.TxQuerier) MessageRepository {
	return &sqliteMessageRepo{db: db}
}

// Create, mesajı read=false ile ekler. ID ve created_at server tarafından
// atanır ve RETURNING ile msg'a geri yazılır — created_at sıralama için
// kanonik zamandır, client saati hiç kullanılmaz.
func (r *sqliteMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (conversation_id, sender_id, receiver_id, text)
		VALUES (?, ?, ?, ?)
		RETURNING id, read, created_at`

	err := r.db.QueryRowContext(ctx, query,
		msg.ConversationID, msg.SenderID, msg.ReceiverID, msg.Text,
	).Scan(&msg.ID, &msg.Read, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListByConversation, konuşmanın tüm mesajlarını server timestamp'ine
// göre artan sırada döner. Aynı milisaniyede yazılan mesajlar için id ASC
// tie-break — sıralama iki okuma arasında değişmez.
func (r *sqliteMessageRepo) ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, receiver_id, text, read, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(
			&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.ReceiverID,
			&msg.Text, &msg.Read, &msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

func (r *sqliteMessageRepo) CountUnread(ctx context.Context, conversationID, receiverID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages
		 WHERE conversation_id = ? AND receiver_id = ? AND read = 0`,
		conversationID, receiverID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

// MarkRead, tek bir mesajı okundu işaretler. WHERE read = 0 sayesinde
// zaten okunmuş mesajda no-op — flag asla geri dönmez, tekrar çağrı
// idempotent'tir.
func (r *sqliteMessageRepo) MarkRead(ctx context.Context, messageID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE messages SET read = 1 WHERE id = ? AND read = 0`, messageID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	return nil
}
