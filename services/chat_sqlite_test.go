package services

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/akocak/fotogram/database"
	"github.com/akocak/fotogram/live"
	"github.com/akocak/fotogram/models"
	"github.com/akocak/fotogram/repository"
)

// Fake repo'lar şema kısıtlarını uygulamaz; gönderimin yazma sırası ile
// gerçek şemanın uyumu ancak migrate edilmiş bir SQLite üzerinde görülür.
// Bu fixture tüm chat akışını gerçek DB'ye bağlar.
func newSQLiteChatFixture(t *testing.T) (ChatService, repository.UserRepository, repository.ConversationRepository, repository.MessageRepository) {
	t.Helper()

	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		t.Fatalf("failed to open embedded migrations: %v", err)
	}

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), migrationsFS)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	userRepo := repository.NewSQLiteUserRepo(db.Conn)
	convRepo := repository.NewSQLiteConversationRepo(db.Conn)
	msgRepo := repository.NewSQLiteMessageRepo(db.Conn)

	svc := NewChatService(convRepo, msgRepo, userRepo, &stubNotifier{}, &fakeBroadcaster{}, live.NewBus())
	return svc, userRepo, convRepo, msgRepo
}

func createTestUser(t *testing.T, userRepo repository.UserRepository, username string) *models.User {
	t.Helper()
	email := username + "@example.com"
	user := &models.User{
		Username:     username,
		Email:        &email,
		PasswordHash: "hash",
		DisplayName:  &username,
	}
	if err := userRepo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// İlk mesaj, konuşma özeti henüz yokken append edilir — özet satırı ancak
// mesajdan SONRA upsert edilir. Şema bu sırayla çalışmak zorunda.
func TestSendFirstMessageOnRealSchema(t *testing.T) {
	svc, userRepo, convRepo, msgRepo := newSQLiteChatFixture(t)
	ctx := context.Background()

	ayse := createTestUser(t, userRepo, "ayse")
	mehmet := createTestUser(t, userRepo, "mehmet")

	msg, err := svc.Send(ctx, ayse.ID, &models.SendMessageRequest{ReceiverID: mehmet.ID, Text: "selam"})
	if err != nil {
		t.Fatalf("first message to a fresh conversation must succeed: %v", err)
	}
	if msg.ID == "" || msg.CreatedAt.IsZero() {
		t.Fatalf("message must carry server-assigned id and timestamp, got %+v", msg)
	}
	if msg.Read {
		t.Fatal("new message must start unread")
	}

	conv, err := convRepo.GetByID(ctx, ConversationID(ayse.ID, mehmet.ID))
	if err != nil {
		t.Fatalf("conversation summary must exist after send: %v", err)
	}
	if conv.LastMessage != "selam" {
		t.Fatalf("summary must reflect the message, got %q", conv.LastMessage)
	}
	if conv.Participant1ID >= conv.Participant2ID {
		t.Fatalf("participants must be stored sorted, got %q / %q", conv.Participant1ID, conv.Participant2ID)
	}

	messages, err := msgRepo.ListByConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ListByConversation failed: %v", err)
	}
	if len(messages) != 1 || messages[0].Text != "selam" {
		t.Fatalf("expected the single sent message, got %+v", messages)
	}
}

// Ardışık gönderimler server timestamp sırasını korur; milisaniye
// hassasiyeti aynı saniyedeki mesajların sırasını belirsiz bırakmaz.
func TestSendSequenceKeepsServerOrderOnRealSchema(t *testing.T) {
	svc, userRepo, _, msgRepo := newSQLiteChatFixture(t)
	ctx := context.Background()

	ayse := createTestUser(t, userRepo, "ayse")
	mehmet := createTestUser(t, userRepo, "mehmet")

	texts := []string{"bir", "iki", "son"}
	for _, text := range texts {
		if _, err := svc.Send(ctx, ayse.ID, &models.SendMessageRequest{ReceiverID: mehmet.ID, Text: text}); err != nil {
			t.Fatalf("Send(%q) failed: %v", text, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	convID := ConversationID(ayse.ID, mehmet.ID)
	messages, err := msgRepo.ListByConversation(ctx, convID)
	if err != nil {
		t.Fatalf("ListByConversation failed: %v", err)
	}
	if len(messages) != len(texts) {
		t.Fatalf("expected %d messages, got %d", len(texts), len(messages))
	}
	for i, text := range texts {
		if messages[i].Text != text {
			t.Fatalf("position %d: expected %q, got %q", i, text, messages[i].Text)
		}
	}
	for i := 1; i < len(messages); i++ {
		if !messages[i-1].CreatedAt.Before(messages[i].CreatedAt) {
			t.Fatalf("timestamps must strictly increase: %v then %v",
				messages[i-1].CreatedAt, messages[i].CreatedAt)
		}
	}

	unread, err := msgRepo.CountUnread(ctx, convID, mehmet.ID)
	if err != nil {
		t.Fatalf("CountUnread failed: %v", err)
	}
	if unread != len(texts) {
		t.Fatalf("receiver must have %d unread, got %d", len(texts), unread)
	}
}
