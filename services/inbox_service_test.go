package services

import (
	"context"
	"testing"
	"time"

	"github.com/akocak/fotogram/live"
	"github.com/akocak/fotogram/models"
)

func newInboxFixture() (InboxService, *fakeConversationRepo, *fakeMessageRepo, *fakeUserRepo, *live.Bus) {
	convRepo := newFakeConversationRepo()
	msgRepo := newFakeMessageRepo()
	userRepo := newFakeUserRepo()
	bus := live.NewBus()
	svc := NewInboxService(convRepo, msgRepo, userRepo, bus)
	return svc, convRepo, msgRepo, userRepo, bus
}

func addConv(convRepo *fakeConversationRepo, a, b, lastMsg string, at time.Time) string {
	p1, p2 := sortUserIDs(a, b)
	id := ConversationID(a, b)
	convRepo.UpsertSummary(context.Background(), &models.Conversation{
		ID:              id,
		Participant1ID:  p1,
		Participant2ID:  p2,
		LastMessage:     lastMsg,
		LastMessageTime: at,
	})
	return id
}

func TestSnapshotOrderedByLastMessageTimeDesc(t *testing.T) {
	svc, convRepo, _, userRepo, _ := newInboxFixture()
	userRepo.add("me", "ben")
	userRepo.add("u2", "mehmet")
	userRepo.add("u3", "zeynep")
	userRepo.add("u4", "ali")

	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	addConv(convRepo, "me", "u2", "old", base)
	addConv(convRepo, "me", "u3", "newest", base.Add(2*time.Hour))
	addConv(convRepo, "me", "u4", "middle", base.Add(time.Hour))

	entries, err := svc.Snapshot(context.Background(), "me")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	want := []string{"newest", "middle", "old"}
	for i, w := range want {
		if entries[i].LastMessage != w {
			t.Errorf("entries[%d].LastMessage = %q, want %q", i, entries[i].LastMessage, w)
		}
	}
}

func TestSnapshotTieBrokenByConversationID(t *testing.T) {
	svc, convRepo, _, userRepo, _ := newInboxFixture()
	userRepo.add("me", "ben")
	userRepo.add("u2", "mehmet")
	userRepo.add("u3", "zeynep")

	at := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	idA := addConv(convRepo, "me", "u3", "a", at)
	idB := addConv(convRepo, "me", "u2", "b", at)

	entries, err := svc.Snapshot(context.Background(), "me")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	first, second := idA, idB
	if idB < idA {
		first, second = idB, idA
	}
	if entries[0].ConversationID != first || entries[1].ConversationID != second {
		t.Errorf("tie must break by conversation id asc, got %s then %s",
			entries[0].ConversationID, entries[1].ConversationID)
	}
}

func TestSnapshotExcludesForeignConversations(t *testing.T) {
	svc, convRepo, _, userRepo, _ := newInboxFixture()
	userRepo.add("me", "ben")
	userRepo.add("u2", "mehmet")
	userRepo.add("u3", "zeynep")

	at := time.Now()
	addConv(convRepo, "me", "u2", "mine", at)
	addConv(convRepo, "u2", "u3", "not mine", at)

	entries, err := svc.Snapshot(context.Background(), "me")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(entries) != 1 || entries[0].LastMessage != "mine" {
		t.Fatalf("inbox must only contain the actor's conversations, got %+v", entries)
	}
}

func TestSnapshotUnreadCount(t *testing.T) {
	svc, convRepo, msgRepo, userRepo, _ := newInboxFixture()
	userRepo.add("me", "ben")
	userRepo.add("u2", "mehmet")

	at := time.Now()
	convID := addConv(convRepo, "me", "u2", "hey", at)
	msgRepo.addAt(convID, "u2", "me", "one", at, false)
	msgRepo.addAt(convID, "u2", "me", "two", at.Add(time.Second), false)
	msgRepo.addAt(convID, "u2", "me", "seen", at.Add(2*time.Second), true)
	msgRepo.addAt(convID, "me", "u2", "sent by me", at.Add(3*time.Second), false)

	entries, err := svc.Snapshot(context.Background(), "me")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	// Sadece BANA gelen ve okunmamış olanlar sayılır
	if entries[0].UnreadCount != 2 {
		t.Errorf("UnreadCount = %d, want 2", entries[0].UnreadCount)
	}
}

func TestSnapshotDegradedEntryOnProfileFailure(t *testing.T) {
	svc, convRepo, _, userRepo, _ := newInboxFixture()
	userRepo.add("me", "ben")
	userRepo.add("u2", "mehmet")
	userRepo.failLookup("u3") // u3 profili çözümlenemiyor

	at := time.Now()
	addConv(convRepo, "me", "u2", "fine", at.Add(time.Hour))
	addConv(convRepo, "me", "u3", "degraded", at)

	entries, err := svc.Snapshot(context.Background(), "me")
	if err != nil {
		t.Fatalf("one failing lookup must not fail the whole list: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 — degraded entry must still be present", len(entries))
	}
	if entries[0].OtherUserName != "mehmet" {
		t.Errorf("healthy entry degraded unexpectedly: %q", entries[0].OtherUserName)
	}
	if entries[1].OtherUserName != "Unknown" {
		t.Errorf("failed lookup must yield placeholder, got %q", entries[1].OtherUserName)
	}
	if entries[1].OtherUserAvatar != "" {
		t.Errorf("degraded entry must have empty avatar, got %q", entries[1].OtherUserAvatar)
	}
	if entries[1].LastMessage != "degraded" {
		t.Error("degraded entry must keep its conversation summary fields")
	}
}

func TestWatchDeliversInitialAndUpdatedSnapshots(t *testing.T) {
	svc, convRepo, _, userRepo, bus := newInboxFixture()
	userRepo.add("me", "ben")
	userRepo.add("u2", "mehmet")

	at := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	addConv(convRepo, "me", "u2", "first", at)

	watch := svc.Watch(context.Background(), "me")
	defer watch.Cancel()

	initial := recvEntries(t, watch)
	if len(initial) != 1 || initial[0].LastMessage != "first" {
		t.Fatalf("unexpected initial snapshot: %+v", initial)
	}

	// Konuşma özeti değişti → yayın → yeni tam liste gelmeli
	addConv(convRepo, "me", "u2", "second", at.Add(time.Minute))
	bus.Publish("inbox:me")

	updated := recvEntries(t, watch)
	if len(updated) != 1 || updated[0].LastMessage != "second" {
		t.Fatalf("unexpected updated snapshot: %+v", updated)
	}
}

func TestWatchCancelClosesUpdates(t *testing.T) {
	svc, _, _, userRepo, _ := newInboxFixture()
	userRepo.add("me", "ben")

	watch := svc.Watch(context.Background(), "me")
	recvEntries(t, watch) // ilk snapshot
	watch.Cancel()

	select {
	case _, ok := <-watch.Updates():
		if ok {
			t.Fatal("no further snapshots expected after Cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("Updates must close after Cancel")
	}
}

func recvEntries(t *testing.T, watch *InboxWatch) []models.InboxEntry {
	t.Helper()
	select {
	case entries, ok := <-watch.Updates():
		if !ok {
			t.Fatal("updates channel closed unexpectedly")
		}
		return entries
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for inbox snapshot")
		return nil
	}
}

func TestFilterInboxIsCaseInsensitiveSubstring(t *testing.T) {
	entries := []models.InboxEntry{
		{ConversationID: "c1", OtherUserName: "Mehmet"},
		{ConversationID: "c2", OtherUserName: "zeynep"},
		{ConversationID: "c3", OtherUserName: "Ahmet"},
	}

	got := FilterInbox(entries, "MET")
	if len(got) != 2 || got[0].ConversationID != "c1" || got[1].ConversationID != "c3" {
		t.Fatalf("unexpected filter result: %+v", got)
	}
}

func TestFilterInboxNoMatchYieldsEmptyList(t *testing.T) {
	entries := []models.InboxEntry{{OtherUserName: "mehmet"}}

	got := FilterInbox(entries, "zz")
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %+v", got)
	}
}

func TestFilterInboxEmptyQueryReturnsAll(t *testing.T) {
	entries := []models.InboxEntry{{OtherUserName: "a"}, {OtherUserName: "b"}}

	got := FilterInbox(entries, "   ")
	if len(got) != 2 {
		t.Fatalf("empty query must return the full list, got %+v", got)
	}
}
