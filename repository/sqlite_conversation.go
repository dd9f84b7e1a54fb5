package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akocak/fotogram/database"
	"github.com/akocak/fotogram/models"
	"github.com/akocak/fotogram/pkg"
)

// sqliteConversationRepo, ConversationRepository interface'inin SQLite implementasyonu.
type sqliteConversationRepo struct {
	db database.TxQuerier
}

// NewSQLiteConversationRepo, constructor — interface döner.
func NewSQLiteConversationRepo(db database.TxQuerier) ConversationRepository {
	return &sqliteConversationRepo{db: db}
}

func (r *sqliteConversationRepo) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	query := `
		SELECT id, participant1_id, participant2_id, last_message, last_message_time
		FROM conversations WHERE id = ?`

	conv := &models.Conversation{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&conv.ID, &conv.Participant1ID, &conv.Participant2ID,
		&conv.LastMessage, &conv.LastMessageTime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return conv, nil
}

// ListForUser, kullanıcının katıldığı konuşmaları son mesaj zamanına
// göre (en yeni en üstte) döner. Eşit zamanlarda id ASC — sıralama
// her çağrıda aynı kalsın diye deterministik tie-break.
func (r *sqliteConversationRepo) ListForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	query := `
		SELECT id, participant1_id, participant2_id, last_message, last_message_time
		FROM conversations
		WHERE participant1_id = ? OR participant2_id = ?
		ORDER BY last_message_time DESC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var convs []models.Conversation
	for rows.Next() {
		var conv models.Conversation
		if err := rows.Scan(
			&conv.ID, &conv.Participant1ID, &conv.Participant2ID,
			&conv.LastMessage, &conv.LastMessageTime,
		); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		convs = append(convs, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversation rows: %w", err)
	}

	if convs == nil {
		convs = []models.Conversation{}
	}
	return convs, nil
}

// UpsertSummary: konuşma yoksa oluşturur, varsa sadece özet alanlarını
// üzerine yazar (merge semantiği). Katılımcı alanları ON CONFLICT
// dalında güncellenmez — katılımcı kümesi oluşturuluştan sonra immutable.
//
// Eşzamanlı gönderenler aynı özet üzerinde yarışabilir; kazanan son
// yazandır (last-write-wins, sadece özet alanlarında).
func (r *sqliteConversationRepo) UpsertSummary(ctx context.Context, conv *models.Conversation) error {
	query := `
		INSERT INTO conversations (id, participant1_id, participant2_id, last_message, last_message_time)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id)
		DO UPDATE SET last_message = excluded.last_message,
		              last_message_time = excluded.last_message_time`

	_, err := r.db.ExecContext(ctx, query,
		conv.ID, conv.Participant1ID, conv.Participant2ID,
		conv.LastMessage, conv.LastMessageTime,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert conversation: %w", err)
	}
	return nil
}
