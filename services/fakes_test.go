package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/akocak/fotogram/models"
	"github.com/akocak/fotogram/pkg"
	"github.com/akocak/fotogram/ws"
)

// Bu dosya, chat/inbox/thread testlerinde kullanılan in-memory fake
// repository'leri içerir. Repository interface'lerini birebir karşılarlar —
// service kodu SQLite ile mi fake ile mi konuştuğunu bilmez.

// ─── fakeUserRepo ───

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]models.User
	failIDs map[string]bool // lookup'ı bilerek patlatılacak kullanıcılar
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:   make(map[string]models.User),
		failIDs: make(map[string]bool),
	}
}

func (r *fakeUserRepo) add(id, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id] = models.User{ID: id, Username: username, CreatedAt: time.Now()}
}

func (r *fakeUserRepo) failLookup(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failIDs[id] = true
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = fmt.Sprintf("u%d", len(r.users)+1)
	user.CreatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failIDs[id] {
		return nil, fmt.Errorf("simulated lookup failure")
	}
	user, ok := r.users[id]
	if !ok {
		return nil, pkg.ErrNotFound
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, pkg.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, pkg.ErrNotFound
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id string, displayName, bio *string) error {
	return nil
}

func (r *fakeUserRepo) UpdateAvatar(ctx context.Context, id, avatarURL string) error { return nil }

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error { return nil }

// ─── fakeConversationRepo ───

type fakeConversationRepo struct {
	mu    sync.Mutex
	convs map[string]models.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{convs: make(map[string]models.Conversation)}
}

func (r *fakeConversationRepo) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.convs[id]
	if !ok {
		return nil, pkg.ErrNotFound
	}
	return &conv, nil
}

func (r *fakeConversationRepo) ListForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	convs := []models.Conversation{}
	for _, conv := range r.convs {
		if conv.Participant1ID == userID || conv.Participant2ID == userID {
			convs = append(convs, conv)
		}
	}
	// SQLite implementasyonuyla aynı sıralama: zaman DESC, id ASC
	sort.Slice(convs, func(i, j int) bool {
		if !convs[i].LastMessageTime.Equal(convs[j].LastMessageTime) {
			return convs[i].LastMessageTime.After(convs[j].LastMessageTime)
		}
		return convs[i].ID < convs[j].ID
	})
	return convs, nil
}

func (r *fakeConversationRepo) UpsertSummary(ctx context.Context, conv *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.convs[conv.ID]; ok {
		existing.LastMessage = conv.LastMessage
		existing.LastMessageTime = conv.LastMessageTime
		r.convs[conv.ID] = existing
		return nil
	}
	r.convs[conv.ID] = *conv
	return nil
}

// ─── fakeMessageRepo ───

type fakeMessageRepo struct {
	mu        sync.Mutex
	messages  []models.Message
	nextID    int
	clock     time.Time
	markCount int // MarkRead yazma sayısı — idempotence testleri için
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{clock: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	// Her mesaja artan "server timestamp" — gerçek DB'deki gibi
	r.clock = r.clock.Add(time.Second)
	msg.ID = fmt.Sprintf("m%d", r.nextID)
	msg.Read = false
	msg.CreatedAt = r.clock
	r.messages = append(r.messages, *msg)
	return nil
}

// addAt, testlerin belirli timestamp'lerle mesaj eklemesi için.
func (r *fakeMessageRepo) addAt(convID, senderID, receiverID, text string, at time.Time, read bool) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := fmt.Sprintf("m%d", r.nextID)
	r.messages = append(r.messages, models.Message{
		ID:             id,
		ConversationID: convID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Text:           text,
		Read:           read,
		CreatedAt:      at,
	})
	return id
}

func (r *fakeMessageRepo) ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	messages := []models.Message{}
	for _, msg := range r.messages {
		if msg.ConversationID == conversationID {
			messages = append(messages, msg)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		if !messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].CreatedAt.Before(messages[j].CreatedAt)
		}
		return messages[i].ID < messages[j].ID
	})
	return messages, nil
}

func (r *fakeMessageRepo) CountUnread(ctx context.Context, conversationID, receiverID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, msg := range r.messages {
		if msg.ConversationID == conversationID && msg.ReceiverID == receiverID && !msg.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) MarkRead(ctx context.Context, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.messages {
		if r.messages[i].ID == messageID && !r.messages[i].Read {
			r.messages[i].Read = true
			r.markCount++
		}
	}
	return nil
}

func (r *fakeMessageRepo) markReadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.markCount
}

// ─── fakeBroadcaster ───

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []ws.Event
}

func (b *fakeBroadcaster) BroadcastToAll(event ws.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *fakeBroadcaster) BroadcastToUser(userID string, event ws.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *fakeBroadcaster) GetOnlineUserIDs() []string { return nil }

// ─── stubNotifier ───

type stubNotifier struct {
	mu       sync.Mutex
	notified []models.NotificationType
}

func (n *stubNotifier) Notify(ctx context.Context, userID, actorID string, ntype models.NotificationType, postID *string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notified = append(n.notified, ntype)
}

func (n *stubNotifier) List(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	return nil, nil
}

func (n *stubNotifier) UnreadCount(ctx context.Context, userID string) (int, error) { return 0, nil }

func (n *stubNotifier) MarkAllRead(ctx context.Context, userID string) error { return nil }
