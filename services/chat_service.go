package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/akocak/fotogram/live"
	"github.com/akocak/fotogram/models"
	"github.com/akocak/fotogram/pkg"
	"github.com/akocak/fotogram/repository"
	"github.com/akocak/fotogram/ws"
)

// ChatService, mesaj gönderimi ve konuşma erişimi iş mantığı interface'i.
//
// Gönderim iki bağımsız yazmadır: önce mesaj append edilir, sonra
// konuşma özeti upsert edilir. İkisi tek transaction DEĞİLDİR — arada
// çökme olursa mesaj var ama özet bayat kalabilir. Okuyucular bunu
// tolere eder: inbox bir sonraki özet değişiminde kendini toparlar.
type ChatService interface {
	Send(ctx context.Context, senderID string, req *models.SendMessageRequest) (*models.Message, error)

	// GetConversation: katılımcı doğrulamasıyla konuşmayı döner.
	// Katılımcı olmayan kullanıcıya ErrForbidden.
	GetConversation(ctx context.Context, userID, conversationID string) (*models.Conversation, error)
}

type chatService struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
	userRepo repository.UserRepository
	notifier NotificationService
	hub      ws.Broadcaster
	bus      *live.Bus
}

// NewChatService, constructor.
func NewChatService(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	notifier NotificationService,
	hub ws.Broadcaster,
	bus *live.Bus,
) ChatService {
	return &chatService{
		convRepo: convRepo,
		msgRepo:  msgRepo,
		userRepo: userRepo,
		notifier: notifier,
		hub:      hub,
		bus:      bus,
	}
}

// ConversationID, iki kullanıcı için deterministik konuşma anahtarını üretir.
// ID'ler sıralanıp "_" ile birleştirilir — aynı çift her zaman aynı
// konuşmaya düşer, çağrı sırası fark etmez.
func ConversationID(a, b string) string {
	if a < b {
		return a + "_" + b
	}
	return b + "_" + a
}

// sortUserIDs, iki userID'yi sıralı döndürür (participant1 < participant2).
func sortUserIDs(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// Send, yeni mesaj gönderir.
//
// Akış:
//  1. Validation — trim sonrası boş metin reddedilir, yazma denenmez
//  2. Alıcı var mı kontrolü
//  3. Mesaj append (read=false, server timestamp)
//  4. Konuşma özeti upsert — last_message/last_message_time mesajın
//     değerleriyle üzerine yazılır, konuşma yoksa oluşturulur
//  5. Canlı abonelere sinyal + WS push + alıcıya bildirim
func (s *chatService) Send(ctx context.Context, senderID string, req *models.SendMessageRequest) (*models.Message, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if req.ReceiverID == senderID {
		return nil, fmt.Errorf("%w: you cannot message yourself", pkg.ErrBadRequest)
	}

	if _, err := s.userRepo.GetByID(ctx, req.ReceiverID); err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: receiver does not exist", pkg.ErrNotFound)
		}
		return nil, err
	}

	convID := ConversationID(senderID, req.ReceiverID)

	msg := &models.Message{
		ConversationID: convID,
		SenderID:       senderID,
		ReceiverID:     req.ReceiverID,
		Text:           req.Text,
	}
	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	// Özet zamanı mesajın server timestamp'idir — iki alan her zaman
	// aynı mesajı işaret eder. Eşzamanlı gönderenlerde son yazan kazanır.
	p1, p2 := sortUserIDs(senderID, req.ReceiverID)
	conv := &models.Conversation{
		ID:              convID,
		Participant1ID:  p1,
		Participant2ID:  p2,
		LastMessage:     msg.Text,
		LastMessageTime: msg.CreatedAt,
	}
	if err := s.convRepo.UpsertSummary(ctx, conv); err != nil {
		return nil, err
	}

	// Canlı sorgu abonelerini uyandır: açık thread'ler + iki tarafın inbox'ı
	s.bus.Publish("conversation:"+convID, "inbox:"+senderID, "inbox:"+req.ReceiverID)

	// WS push — alıcının açık tab'ları ve gönderenin diğer tab'ları
	s.hub.BroadcastToUser(req.ReceiverID, ws.Event{Op: ws.OpMessageCreate, Data: msg})
	s.hub.BroadcastToUser(senderID, ws.Event{Op: ws.OpMessageCreate, Data: msg})
	s.hub.BroadcastToUser(req.ReceiverID, ws.Event{Op: ws.OpConversationUpdate, Data: conv})
	s.hub.BroadcastToUser(senderID, ws.Event{Op: ws.OpConversationUpdate, Data: conv})

	s.notifier.Notify(ctx, req.ReceiverID, senderID, models.NotificationTypeMessage, nil)

	return msg, nil
}

// GetConversation, konuşmayı katılımcı doğrulamasıyla döner.
func (s *chatService) GetConversation(ctx context.Context, userID, conversationID string) (*models.Conversation, error) {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.OtherParticipant(userID) == "" {
		return nil, fmt.Errorf("%w: not a participant of this conversation", pkg.ErrForbidden)
	}
	return conv, nil
}
