package services

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/akocak/fotogram/live"
	"github.com/akocak/fotogram/models"
	"github.com/akocak/fotogram/repository"
)

// InboxService, kullanıcının konuşma listesini (inbox) türetir.
//
// Inbox persist edilmez — her sinyalde konuşma özetlerinden yeniden
// hesaplanır: her konuşma için karşı tarafın profili ve okunmamış
// sayısı o anki değerleriyle çözümlenir (point-in-time). Profil ve
// sayaç okumaları snapshot'tan SONRA yapılır; eşzamanlı değişikliklerin
// bir tur geride kalması kabul edilen bir eventual-consistency boşluğudur.
type InboxService interface {
	// Snapshot: tek seferlik inbox hesabı.
	Snapshot(ctx context.Context, userID string) ([]models.InboxEntry, error)

	// Watch: canlı inbox aboneliği. Abonelik anında bir ilk liste
	// yayınlanır, sonrasında her ilgili değişiklikte tam liste yeniden
	// hesaplanıp yayınlanır. İş bitince Cancel çağrılmalı.
	Watch(ctx context.Context, userID string) *InboxWatch
}

type inboxService struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
	userRepo repository.UserRepository
	bus      *live.Bus
}

// NewInboxService, constructor.
func NewInboxService(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	bus *live.Bus,
) InboxService {
	return &inboxService{
		convRepo: convRepo,
		msgRepo:  msgRepo,
		userRepo: userRepo,
		bus:      bus,
	}
}

// Snapshot, inbox'ı tek seferde hesaplar.
//
// Konuşma listesi zaten sıralı gelir (last_message_time DESC, id ASC).
// Her konuşmanın zenginleştirmesi (profil + okunmamış sayısı) bağımsız
// goroutine'lerde eşzamanlı koşar; TEK bir başarısız lookup o girdiyi
// degraded yapar ("Unknown" + 0), asla tüm listeyi düşürmez. Sonuçlar
// index üzerinden yazılır — sıra korunur, tam liste tek parça döner.
func (s *inboxService) Snapshot(ctx context.Context, userID string) ([]models.InboxEntry, error) {
	convs, err := s.convRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]models.InboxEntry, len(convs))
	var wg sync.WaitGroup
	for i, conv := range convs {
		wg.Add(1)
		go func(i int, conv models.Conversation) {
			defer wg.Done()
			entries[i] = s.buildEntry(ctx, userID, conv)
		}(i, conv)
	}
	wg.Wait()

	return entries, nil
}

// buildEntry, tek bir konuşmanın inbox girdisini çözümler.
// Hiçbir hata dışarı sızmaz — girdi her durumda üretilir.
func (s *inboxService) buildEntry(ctx context.Context, userID string, conv models.Conversation) models.InboxEntry {
	entry := models.InboxEntry{
		ConversationID:  conv.ID,
		OtherUserID:     conv.OtherParticipant(userID),
		OtherUserName:   "Unknown",
		LastMessage:     conv.LastMessage,
		LastMessageTime: conv.LastMessageTime,
	}

	other, err := s.userRepo.GetByID(ctx, entry.OtherUserID)
	if err != nil {
		log.Printf("[inbox] profile lookup failed for user %s: %v", entry.OtherUserID, err)
	} else {
		entry.OtherUserName = other.Username
		if other.AvatarURL != nil {
			entry.OtherUserAvatar = *other.AvatarURL
		}
	}

	unread, err := s.msgRepo.CountUnread(ctx, conv.ID, userID)
	if err != nil {
		log.Printf("[inbox] unread count failed for conversation %s: %v", conv.ID, err)
	} else {
		entry.UnreadCount = unread
	}

	return entry
}

// Watch, canlı inbox aboneliği başlatır.
func (s *inboxService) Watch(ctx context.Context, userID string) *InboxWatch {
	sub := s.bus.Subscribe("inbox:" + userID)
	w := &InboxWatch{
		sub:     sub,
		updates: make(chan []models.InboxEntry, 1),
	}

	go func() {
		defer close(w.updates)
		for {
			select {
			case <-ctx.Done():
				sub.Cancel()
				return
			case <-sub.Done():
				return
			case <-sub.Signal():
				entries, err := s.Snapshot(ctx, userID)
				if err != nil {
					// Liste temizlenmez — abone son bilinen iyi durumda kalır
					log.Printf("[inbox] snapshot failed for user %s: %v", userID, err)
					continue
				}
				w.deliver(entries)
			}
		}
	}()

	return w
}

// InboxWatch, canlı bir inbox aboneliğinin tüketici ucudur.
type InboxWatch struct {
	sub     *live.Subscription
	updates chan []models.InboxEntry
}

// Updates, yeniden hesaplanan tam inbox listelerini taşıyan kanalı döner.
// Cancel sonrası kanal kapanır.
func (w *InboxWatch) Updates() <-chan []models.InboxEntry {
	return w.updates
}

// Cancel, aboneliği sonlandırır.
func (w *InboxWatch) Cancel() {
	w.sub.Cancel()
}

// deliver, en güncel listeyi kanala bırakır. Tüketici okumadıysa
// bekleyen eski liste atılır, yenisi geçer (latest-wins) — üretici
// tek goroutine olduğu için yarış yoktur.
func (w *InboxWatch) deliver(entries []models.InboxEntry) {
	select {
	case w.updates <- entries:
	default:
		select {
		case <-w.updates:
		default:
		}
		w.updates <- entries
	}
}

// FilterInbox, inbox girdilerini karşı tarafın görünen adına göre
// case-insensitive substring eşleşmesiyle süzer.
//
// Saf bir fonksiyondur: sadece çözümlenmiş listeyle çalışır, hiçbir
// backend çağrısı tetiklemez. Boş sorgu listeyi olduğu gibi döner.
func FilterInbox(entries []models.InboxEntry, query string) []models.InboxEntry {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return entries
	}

	filtered := []models.InboxEntry{}
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.OtherUserName), query) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}
