package services

import (
	"context"
	"log"

	"github.com/akocak/fotogram/live"
	"github.com/akocak/fotogram/models"
	"github.com/akocak/fotogram/repository"
	"github.com/akocak/fotogram/ws"
)

// NotificationService, bildirim iş mantığı interface'i.
//
// Notify diğer service'ler tarafından çağrılır (like, comment, follow,
// message) — bildirimi kaydeder, WS ile push'lar ve live bus'a yayınlar.
type NotificationService interface {
	Notify(ctx context.Context, userID, actorID string, ntype models.NotificationType, postID *string)
	List(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkAllRead(ctx context.Context, userID string) error
}

type notificationService struct {
	notifRepo repository.NotificationRepository
	hub       ws.Broadcaster
	bus       *live.Bus
}

// NewNotificationService, constructor.
func NewNotificationService(
	notifRepo repository.NotificationRepository,
	hub ws.Broadcaster,
	bus *live.Bus,
) NotificationService {
	return &notificationService{
		notifRepo: notifRepo,
		hub:       hub,
		bus:       bus,
	}
}

// Notify, alıcıya bildirim oluşturur.
//
// Best-effort'tur: bildirim yazılamazsa sadece loglanır — beğeni veya
// yorum gibi asıl işlem bildirim yüzünden geri alınmaz. Kullanıcının
// kendi aksiyonları için bildirim oluşturulmaz.
func (s *notificationService) Notify(ctx context.Context, userID, actorID string, ntype models.NotificationType, postID *string) {
	if userID == actorID {
		return
	}

	n := &models.Notification{
		UserID:  userID,
		ActorID: actorID,
		Type:    ntype,
		PostID:  postID,
	}
	if err := s.notifRepo.Create(ctx, n); err != nil {
		log.Printf("[notification] failed to create %s notification for user %s: %v", ntype, userID, err)
		return
	}

	s.hub.BroadcastToUser(userID, ws.Event{Op: ws.OpNotificationCreate, Data: n})
	s.bus.Publish("notifications:" + userID)
}

func (s *notificationService) List(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.notifRepo.ListForUser(ctx, userID, limit)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.notifRepo.MarkAllRead(ctx, userID); err != nil {
		return err
	}
	s.bus.Publish("notifications:" + userID)
	return nil
}
