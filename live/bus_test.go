package live

import (
	"testing"
	"time"
)

func recvSignal(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case <-sub.Signal():
	case <-time.After(time.Second):
		t.Fatal("expected signal, got none")
	}
}

func expectNoSignal(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case <-sub.Signal():
		t.Fatal("unexpected signal")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeFiresImmediately(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("inbox:u1")
	defer sub.Cancel()

	recvSignal(t, sub)
	expectNoSignal(t, sub)
}

func TestPublishWakesSubscriber(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("inbox:u1")
	defer sub.Cancel()

	recvSignal(t, sub) // ilk sinyal

	bus.Publish("inbox:u1")
	recvSignal(t, sub)
}

func TestPublishOtherTopicDoesNotWake(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("inbox:u1")
	defer sub.Cancel()

	recvSignal(t, sub)

	bus.Publish("inbox:u2")
	expectNoSignal(t, sub)
}

func TestSignalsCoalesce(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("conversation:c1")
	defer sub.Cancel()

	recvSignal(t, sub)

	// Abone okumazken gelen sinyaller tek sinyale çökmeli
	bus.Publish("conversation:c1")
	bus.Publish("conversation:c1")
	bus.Publish("conversation:c1")

	recvSignal(t, sub)
	expectNoSignal(t, sub)
}

func TestCancelStopsDelivery(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("inbox:u1")

	recvSignal(t, sub)
	sub.Cancel()

	bus.Publish("inbox:u1")
	expectNoSignal(t, sub)

	select {
	case <-sub.Done():
	default:
		t.Fatal("Done should be closed after Cancel")
	}

	// İkinci Cancel panic'lememeli
	sub.Cancel()
}

func TestMultipleTopics(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("inbox:u1", "conversation:c1")
	defer sub.Cancel()

	recvSignal(t, sub)

	bus.Publish("conversation:c1")
	recvSignal(t, sub)

	bus.Publish("inbox:u1")
	recvSignal(t, sub)
}

func TestIndependentSubscriptions(t *testing.T) {
	bus := NewBus()
	sub1 := bus.Subscribe("inbox:u1")
	sub2 := bus.Subscribe("inbox:u1")
	defer sub1.Cancel()
	defer sub2.Cancel()

	recvSignal(t, sub1)
	recvSignal(t, sub2)

	// sub1 iptal edilince sub2 yayın almaya devam etmeli
	sub1.Cancel()
	bus.Publish("inbox:u1")

	expectNoSignal(t, sub1)
	recvSignal(t, sub2)
}
