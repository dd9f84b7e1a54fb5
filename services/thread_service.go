package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/akocak/fotogram/live"
	"github.com/akocak/fotogram/models"
	"github.com/akocak/fotogram/pkg"
	"github.com/akocak/fotogram/repository"
)

// ThreadState, açık bir konuşma görünümünün durumunu temsil eder.
//
// Geçişler:
//   - Loading → NotFound: konuşma yok (terminal — çağıran yönlendirmeli)
//   - Loading → Ready: karşı tarafın profili çözümlendi (profil
//     bulunamazsa "Unknown" ile tolere edilir, konuşma yokluğu edilmez)
//
// Ready kalıcıdır: Cancel çağrılana kadar mesaj listesi snapshot'ları
// akmaya devam eder.
type ThreadState string

const (
	ThreadStateLoading  ThreadState = "loading"
	ThreadStateReady    ThreadState = "ready"
	ThreadStateNotFound ThreadState = "not_found"
)

// ThreadService, tek bir açık konuşmanın canlı senkronizasyonunu yönetir.
type ThreadService interface {
	// Open: konuşmayı açar. Konuşma yoksa State=NotFound ile döner
	// (hata değil); katılımcı olmayan kullanıcıya ErrForbidden.
	Open(ctx context.Context, userID, conversationID string) (*Thread, error)
}

type threadService struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
	userRepo repository.UserRepository
	bus      *live.Bus
}

// NewThreadService, constructor.
func NewThreadService(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	bus *live.Bus,
) ThreadService {
	return &threadService{
		convRepo: convRepo,
		msgRepo:  msgRepo,
		userRepo: userRepo,
		bus:      bus,
	}
}

// Thread, açık bir konuşma görünümüdür.
//
// OtherUser thread açılışında BİR KEZ çözümlenir — sonraki profil
// değişiklikleri bu görünüme yansımaz. Mesaj listesi ise canlıdır:
// her değişiklikte tam liste yeniden okunur ve Updates'e yayınlanır.
type Thread struct {
	State     ThreadState  `json:"state"`
	OtherUser *models.User `json:"other_user,omitempty"`

	sub     *live.Subscription
	updates chan []models.Message
}

// Updates, kronolojik sıralı (server timestamp ASC) mesaj listesi
// snapshot'larını taşıyan kanalı döner. State NotFound ise nil'dir.
func (t *Thread) Updates() <-chan []models.Message {
	return t.updates
}

// Cancel, canlı aboneliği sonlandırır. NotFound thread'de no-op.
func (t *Thread) Cancel() {
	if t.sub != nil {
		t.sub.Cancel()
	}
}

// Open, konuşma görünümünü başlatır.
//
// Akış:
//  1. Konuşma var mı? Yoksa NotFound (terminal)
//  2. Katılımcı doğrulaması
//  3. Karşı tarafın profili bir kez çözümlenir — bulunamazsa
//     "Unknown" placeholder, açılış engellenmez
//  4. Canlı abonelik başlar: her sinyalde mesaj listesi yeniden okunur,
//     yayınlanır ve alıcıya gelmiş okunmamışlar okundu işaretlenir
func (s *threadService) Open(ctx context.Context, userID, conversationID string) (*Thread, error) {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return &Thread{State: ThreadStateNotFound}, nil
		}
		return nil, err
	}

	otherID := conv.OtherParticipant(userID)
	if otherID == "" {
		return nil, fmt.Errorf("%w: not a participant of this conversation", pkg.ErrForbidden)
	}

	otherUser, err := s.userRepo.GetByID(ctx, otherID)
	if err != nil {
		// Profil yokluğu açılışı engellemez — placeholder ile devam
		log.Printf("[thread] profile lookup failed for user %s: %v", otherID, err)
		otherUser = &models.User{ID: otherID, Username: "Unknown"}
	}
	otherUser.PasswordHash = ""

	t := &Thread{
		State:     ThreadStateReady,
		OtherUser: otherUser,
		sub:       s.bus.Subscribe("conversation:" + conversationID),
		updates:   make(chan []models.Message, 1),
	}

	go s.run(ctx, t, userID, conversationID)

	return t, nil
}

// run, thread'in canlı döngüsüdür: sinyal → snapshot → yayın → okundu
// işaretleme. Abonelik kendi oluşturulma anında bir kez sinyallenir,
// ilk snapshot beklemeden gelir.
func (s *threadService) run(ctx context.Context, t *Thread, userID, conversationID string) {
	defer close(t.updates)
	for {
		select {
		case <-ctx.Done():
			t.sub.Cancel()
			return
		case <-t.sub.Done():
			return
		case <-t.sub.Signal():
			messages, err := s.msgRepo.ListByConversation(ctx, conversationID)
			if err != nil {
				// Görünüm son bilinen iyi durumda kalır
				log.Printf("[thread] message list failed for conversation %s: %v", conversationID, err)
				continue
			}

			t.deliver(messages)
			// İşaretleme teslim edilmiş bir gözlemin yan etkisidir.
			// Çağıranın context'i yanıt yazıldıktan hemen sonra iptal
			// olabilir; okundu yazmalarını o iptalle yarıştırmıyoruz.
			s.markObservedRead(context.WithoutCancel(ctx), userID, conversationID, messages)
		}
	}
}

// markObservedRead, snapshot'taki alıcıya ait okunmamış mesajları
// okundu işaretler.
//
// Geçişler tek tek uygulanır, tek bir batch transaction DEĞİLDİR —
// ortada kesinti kalırsa kısmi okundu durumu oluşur; sayaç her erişimde
// DB'den yeniden türetildiği için bu kabul edilebilir. Hiç işaretleme
// yapılmadıysa (thread zaten tamamen okunmuş) hiçbir yazma ve yayın
// olmaz — tekrar açmak idempotent'tir.
func (s *threadService) markObservedRead(ctx context.Context, userID, conversationID string, messages []models.Message) {
	marked := 0
	for _, msg := range messages {
		if msg.ReceiverID != userID || msg.Read {
			continue
		}
		if err := s.msgRepo.MarkRead(ctx, msg.ID); err != nil {
			log.Printf("[thread] failed to mark message %s read: %v", msg.ID, err)
			continue
		}
		marked++
	}

	if marked > 0 {
		// Okunmamış sayaçları ve karşı tarafın açık thread'i yenilensin
		s.bus.Publish("conversation:"+conversationID, "inbox:"+userID)
	}
}

// deliver, en güncel mesaj listesini kanala bırakır (latest-wins).
// Üretici tek goroutine — run döngüsü.
func (t *Thread) deliver(messages []models.Message) {
	select {
	case t.updates <- messages:
	default:
		select {
		case <-t.updates:
		default:
		}
		t.updates <- messages
	}
}
