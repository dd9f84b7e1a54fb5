package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akocak/fotogram/live"
	"github.com/akocak/fotogram/models"
	"github.com/akocak/fotogram/pkg"
)

func newThreadFixture() (ThreadService, *fakeConversationRepo, *fakeMessageRepo, *fakeUserRepo, *live.Bus) {
	convRepo := newFakeConversationRepo()
	msgRepo := newFakeMessageRepo()
	userRepo := newFakeUserRepo()
	bus := live.NewBus()
	svc := NewThreadService(convRepo, msgRepo, userRepo, bus)
	return svc, convRepo, msgRepo, userRepo, bus
}

func recvMessages(t *testing.T, thread *Thread) []models.Message {
	t.Helper()
	select {
	case messages, ok := <-thread.Updates():
		if !ok {
			t.Fatal("updates channel closed unexpectedly")
		}
		return messages
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message snapshot")
		return nil
	}
}

// recvUntilAllRead, her mesajın Read olduğu bir snapshot gelene kadar
// kanaldan tüketir.
func recvUntilAllRead(t *testing.T, thread *Thread) []models.Message {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case messages, ok := <-thread.Updates():
			if !ok {
				t.Fatal("updates channel closed unexpectedly")
			}
			allRead := true
			for _, msg := range messages {
				if !msg.Read {
					allRead = false
					break
				}
			}
			if allRead {
				return messages
			}
		case <-deadline:
			t.Fatal("timed out waiting for fully read snapshot")
			return nil
		}
	}
}

func TestOpenMissingConversationIsNotFoundState(t *testing.T) {
	svc, _, _, _, _ := newThreadFixture()

	thread, err := svc.Open(context.Background(), "me", "yok_boyle_bir_sey")
	if err != nil {
		t.Fatalf("missing conversation is a state, not an error: %v", err)
	}
	if thread.State != ThreadStateNotFound {
		t.Fatalf("State = %q, want %q", thread.State, ThreadStateNotFound)
	}
	if thread.Updates() != nil {
		t.Error("NotFound thread must not carry a live channel")
	}
	thread.Cancel() // no-op olmalı, panic etmemeli
}

func TestOpenRejectsNonParticipant(t *testing.T) {
	svc, convRepo, _, userRepo, _ := newThreadFixture()
	userRepo.add("u2", "mehmet")
	userRepo.add("u3", "zeynep")
	convID := addConv(convRepo, "u2", "u3", "hey", time.Now())

	_, err := svc.Open(context.Background(), "davetsiz", convID)
	if !errors.Is(err, pkg.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestOpenDeliversMessagesAndMarksUnreadRead(t *testing.T) {
	svc, convRepo, msgRepo, userRepo, _ := newThreadFixture()
	userRepo.add("me", "ben")
	userRepo.add("u2", "mehmet")

	at := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	convID := addConv(convRepo, "me", "u2", "iki", at)
	msgRepo.addAt(convID, "u2", "me", "bir", at, false)
	msgRepo.addAt(convID, "u2", "me", "iki", at.Add(time.Second), false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	thread, err := svc.Open(ctx, "me", convID)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer thread.Cancel()

	if thread.State != ThreadStateReady {
		t.Fatalf("State = %q, want %q", thread.State, ThreadStateReady)
	}
	if thread.OtherUser == nil || thread.OtherUser.Username != "mehmet" {
		t.Fatalf("unexpected OtherUser: %+v", thread.OtherUser)
	}

	// Okundu işaretleme self-publish tetikler → takip eden snapshot'ta
	// mesajlar okunmuş görünür. Kanal latest-wins olduğu için ara
	// snapshot kaçabilir; tamamı okunana kadar tüketiyoruz.
	final := recvUntilAllRead(t, thread)
	if len(final) != 2 {
		t.Fatalf("got %d messages, want 2", len(final))
	}

	unread, _ := msgRepo.CountUnread(ctx, convID, "me")
	if unread != 0 {
		t.Errorf("unread count = %d, want 0", unread)
	}
}

func TestReopeningFullyReadThreadWritesNothing(t *testing.T) {
	svc, convRepo, msgRepo, userRepo, _ := newThreadFixture()
	userRepo.add("me", "ben")
	userRepo.add("u2", "mehmet")

	at := time.Now()
	convID := addConv(convRepo, "me", "u2", "hey", at)
	msgRepo.addAt(convID, "u2", "me", "hey", at, false)

	ctx := context.Background()

	first, err := svc.Open(ctx, "me", convID)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	recvUntilAllRead(t, first)
	first.Cancel()

	writesAfterFirstOpen := msgRepo.markReadCount()
	if writesAfterFirstOpen != 1 {
		t.Fatalf("first open must mark exactly 1 message, marked %d", writesAfterFirstOpen)
	}

	second, err := svc.Open(ctx, "me", convID)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	recvMessages(t, second)
	second.Cancel()

	if got := msgRepo.markReadCount(); got != writesAfterFirstOpen {
		t.Errorf("reopening a fully read thread wrote %d extra marks", got-writesAfterFirstOpen)
	}
}

func TestMessagesOrderedByServerTimestamp(t *testing.T) {
	svc, convRepo, msgRepo, userRepo, _ := newThreadFixture()
	userRepo.add("me", "ben")
	userRepo.add("u2", "mehmet")

	at := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	convID := addConv(convRepo, "me", "u2", "son", at)
	// Ekleme sırası karışık — görünüm server timestamp'e göre dizmeli
	msgRepo.addAt(convID, "me", "u2", "ikinci", at.Add(time.Second), true)
	msgRepo.addAt(convID, "u2", "me", "ilk", at, true)
	msgRepo.addAt(convID, "me", "u2", "son", at.Add(2*time.Second), true)

	thread, err := svc.Open(context.Background(), "me", convID)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer thread.Cancel()

	messages := recvMessages(t, thread)
	want := []string{"ilk", "ikinci", "son"}
	for i, w := range want {
		if messages[i].Text != w {
			t.Errorf("messages[%d].Text = %q, want %q", i, messages[i].Text, w)
		}
	}
}

func TestOpenToleratesMissingProfile(t *testing.T) {
	svc, convRepo, _, userRepo, _ := newThreadFixture()
	userRepo.add("me", "ben")
	userRepo.failLookup("u2")
	convID := addConv(convRepo, "me", "u2", "hey", time.Now())

	thread, err := svc.Open(context.Background(), "me", convID)
	if err != nil {
		t.Fatalf("missing profile must not block opening: %v", err)
	}
	defer thread.Cancel()

	if thread.State != ThreadStateReady {
		t.Fatalf("State = %q, want %q", thread.State, ThreadStateReady)
	}
	if thread.OtherUser.Username != "Unknown" {
		t.Errorf("OtherUser.Username = %q, want placeholder", thread.OtherUser.Username)
	}
}

func TestOwnMessagesNeverMarkedRead(t *testing.T) {
	svc, convRepo, msgRepo, userRepo, _ := newThreadFixture()
	userRepo.add("me", "ben")
	userRepo.add("u2", "mehmet")

	at := time.Now()
	convID := addConv(convRepo, "me", "u2", "selam", at)
	// Karşı taraf henüz okumadı — bu BENİM mesajım, ben açınca
	// okundu İŞARETLENMEMELİ
	msgRepo.addAt(convID, "me", "u2", "selam", at, false)

	thread, err := svc.Open(context.Background(), "me", convID)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer thread.Cancel()
	recvMessages(t, thread)

	if got := msgRepo.markReadCount(); got != 0 {
		t.Errorf("marked %d messages, want 0 — sender must not consume own unread", got)
	}

	unread, _ := msgRepo.CountUnread(context.Background(), convID, "u2")
	if unread != 1 {
		t.Errorf("receiver's unread count = %d, want 1", unread)
	}
}

func TestNewMessageWakesOpenThread(t *testing.T) {
	svc, convRepo, msgRepo, userRepo, bus := newThreadFixture()
	userRepo.add("me", "ben")
	userRepo.add("u2", "mehmet")

	at := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	convID := addConv(convRepo, "me", "u2", "ilk", at)
	msgRepo.addAt(convID, "u2", "me", "ilk", at, true)

	thread, err := svc.Open(context.Background(), "me", convID)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer thread.Cancel()
	recvMessages(t, thread)

	// Yeni mesaj geldi, gönderen taraf yayınladı
	msgRepo.addAt(convID, "u2", "me", "yeni", at.Add(time.Minute), false)
	bus.Publish("conversation:" + convID)

	updated := recvMessages(t, thread)
	if len(updated) != 2 || updated[1].Text != "yeni" {
		t.Fatalf("open thread must observe the new message, got %+v", updated)
	}
}

// gatedMessageRepo, MarkRead'i test serbest bırakana kadar bekletir ve
// gerçek sürücü gibi iptal edilmiş context ile yazmayı reddeder.
type gatedMessageRepo struct {
	*fakeMessageRepo
	release chan struct{}
}

func (r *gatedMessageRepo) MarkRead(ctx context.Context, messageID string) error {
	<-r.release
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.fakeMessageRepo.MarkRead(ctx, messageID)
}

// Okundu işaretleme, teslim edilmiş bir gözlemin yan etkisidir: çağıranın
// context'i yanıt yazıldıktan hemen sonra iptal edilse bile tamamlanmalı.
func TestReadMarkingOutlivesCallerCancellation(t *testing.T) {
	convRepo := newFakeConversationRepo()
	msgRepo := &gatedMessageRepo{fakeMessageRepo: newFakeMessageRepo(), release: make(chan struct{})}
	userRepo := newFakeUserRepo()
	svc := NewThreadService(convRepo, msgRepo, userRepo, live.NewBus())

	userRepo.add("ayse", "ayse")
	userRepo.add("mehmet", "mehmet")
	at := time.Date(2026, 1, 6, 10, 0, 0, 0, time.UTC)
	convID := addConv(convRepo, "ayse", "mehmet", "selam", at)
	msgRepo.fakeMessageRepo.addAt(convID, "mehmet", "ayse", "selam", at, false)

	ctx, cancel := context.WithCancel(context.Background())
	thread, err := svc.Open(ctx, "ayse", convID)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer thread.Cancel()

	recvMessages(t, thread) // ilk snapshot teslim edildi
	cancel()                // çağıran yanıtı yazıp döndü
	close(msgRepo.release)  // bekleyen okundu yazması şimdi koşuyor

	// run döngüsü iptalden sonra kanalı kapatarak çıkar; işaretleme
	// çıkıştan önce bitmiş olmalı.
	deadline := time.After(2 * time.Second)
	for open := true; open; {
		select {
		case _, ok := <-thread.Updates():
			open = ok
		case <-deadline:
			t.Fatal("timed out waiting for thread shutdown")
		}
	}

	if got := msgRepo.markReadCount(); got != 1 {
		t.Fatalf("expected 1 read transition, got %d", got)
	}
	unread, _ := msgRepo.CountUnread(context.Background(), convID, "ayse")
	if unread != 0 {
		t.Fatalf("expected no unread messages after observation, got %d", unread)
	}
}
