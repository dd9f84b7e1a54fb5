package services

import (
	"context"
	"errors"
	"testing"

	"github.com/akocak/fotogram/live"
	"github.com/akocak/fotogram/models"
	"github.com/akocak/fotogram/pkg"
)

func newChatFixture() (ChatService, *fakeConversationRepo, *fakeMessageRepo, *fakeUserRepo, *stubNotifier) {
	convRepo := newFakeConversationRepo()
	msgRepo := newFakeMessageRepo()
	userRepo := newFakeUserRepo()
	notifier := &stubNotifier{}
	svc := NewChatService(convRepo, msgRepo, userRepo, notifier, &fakeBroadcaster{}, live.NewBus())
	return svc, convRepo, msgRepo, userRepo, notifier
}

func TestConversationIDIsOrderIndependent(t *testing.T) {
	if ConversationID("u1", "u2") != ConversationID("u2", "u1") {
		t.Fatal("conversation id must not depend on argument order")
	}
	if ConversationID("u1", "u2") != "u1_u2" {
		t.Fatalf("unexpected conversation id: %s", ConversationID("u1", "u2"))
	}
}

func TestSendCreatesConversationAndMessage(t *testing.T) {
	svc, convRepo, msgRepo, userRepo, notifier := newChatFixture()
	userRepo.add("u1", "ayse")
	userRepo.add("u2", "mehmet")

	msg, err := svc.Send(context.Background(), "u1", &models.SendMessageRequest{
		ReceiverID: "u2",
		Text:       "hello",
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if msg.Read {
		t.Error("new message must start unread")
	}
	if msg.SenderID != "u1" || msg.ReceiverID != "u2" {
		t.Errorf("wrong participants: sender=%s receiver=%s", msg.SenderID, msg.ReceiverID)
	}
	if msg.CreatedAt.IsZero() {
		t.Error("message must carry a server-assigned timestamp")
	}

	conv, err := convRepo.GetByID(context.Background(), "u1_u2")
	if err != nil {
		t.Fatalf("conversation was not created: %v", err)
	}
	if conv.LastMessage != "hello" {
		t.Errorf("lastMessage = %q, want %q", conv.LastMessage, "hello")
	}
	if !conv.LastMessageTime.Equal(msg.CreatedAt) {
		t.Error("lastMessageTime must equal the message timestamp")
	}
	if conv.Participant1ID != "u1" || conv.Participant2ID != "u2" {
		t.Errorf("participants not sorted: %s, %s", conv.Participant1ID, conv.Participant2ID)
	}

	unread, _ := msgRepo.CountUnread(context.Background(), "u1_u2", "u2")
	if unread != 1 {
		t.Errorf("receiver unread = %d, want 1", unread)
	}

	if len(notifier.notified) != 1 || notifier.notified[0] != models.NotificationTypeMessage {
		t.Errorf("expected one message notification, got %v", notifier.notified)
	}
}

func TestSendUpdatesSummaryOnExistingConversation(t *testing.T) {
	svc, convRepo, _, userRepo, _ := newChatFixture()
	userRepo.add("u1", "ayse")
	userRepo.add("u2", "mehmet")

	ctx := context.Background()
	if _, err := svc.Send(ctx, "u1", &models.SendMessageRequest{ReceiverID: "u2", Text: "first"}); err != nil {
		t.Fatalf("first Send failed: %v", err)
	}
	second, err := svc.Send(ctx, "u2", &models.SendMessageRequest{ReceiverID: "u1", Text: "second"})
	if err != nil {
		t.Fatalf("second Send failed: %v", err)
	}

	conv, _ := convRepo.GetByID(ctx, "u1_u2")
	if conv.LastMessage != "second" {
		t.Errorf("lastMessage = %q, want %q", conv.LastMessage, "second")
	}
	if !conv.LastMessageTime.Equal(second.CreatedAt) {
		t.Error("summary must reflect the newest message's timestamp")
	}
}

func TestSendRejectsEmptyTextWithoutWriting(t *testing.T) {
	svc, convRepo, msgRepo, userRepo, _ := newChatFixture()
	userRepo.add("u1", "ayse")
	userRepo.add("u2", "mehmet")

	_, err := svc.Send(context.Background(), "u1", &models.SendMessageRequest{
		ReceiverID: "u2",
		Text:       "   \t  ",
	})
	if !errors.Is(err, pkg.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}

	if len(msgRepo.messages) != 0 {
		t.Error("no message may be written for empty text")
	}
	if len(convRepo.convs) != 0 {
		t.Error("no conversation may be created for empty text")
	}
}

func TestSendTrimsText(t *testing.T) {
	svc, _, _, userRepo, _ := newChatFixture()
	userRepo.add("u1", "ayse")
	userRepo.add("u2", "mehmet")

	msg, err := svc.Send(context.Background(), "u1", &models.SendMessageRequest{
		ReceiverID: "u2",
		Text:       "  merhaba  ",
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if msg.Text != "merhaba" {
		t.Errorf("text = %q, want trimmed %q", msg.Text, "merhaba")
	}
}

func TestSendToUnknownReceiver(t *testing.T) {
	svc, _, _, userRepo, _ := newChatFixture()
	userRepo.add("u1", "ayse")

	_, err := svc.Send(context.Background(), "u1", &models.SendMessageRequest{
		ReceiverID: "ghost",
		Text:       "anyone there?",
	})
	if !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSendToSelfRejected(t *testing.T) {
	svc, _, _, userRepo, _ := newChatFixture()
	userRepo.add("u1", "ayse")

	_, err := svc.Send(context.Background(), "u1", &models.SendMessageRequest{
		ReceiverID: "u1",
		Text:       "echo",
	})
	if !errors.Is(err, pkg.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func TestGetConversationMembership(t *testing.T) {
	svc, _, _, userRepo, _ := newChatFixture()
	userRepo.add("u1", "ayse")
	userRepo.add("u2", "mehmet")
	userRepo.add("u3", "zeynep")

	ctx := context.Background()
	if _, err := svc.Send(ctx, "u1", &models.SendMessageRequest{ReceiverID: "u2", Text: "hi"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if _, err := svc.GetConversation(ctx, "u1", "u1_u2"); err != nil {
		t.Errorf("participant must access the conversation: %v", err)
	}
	if _, err := svc.GetConversation(ctx, "u3", "u1_u2"); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("non-participant must get ErrForbidden, got %v", err)
	}
	if _, err := svc.GetConversation(ctx, "u1", "u1_u9"); !errors.Is(err, pkg.ErrNotFound) {
		t.Errorf("missing conversation must yield ErrNotFound, got %v", err)
	}
}
