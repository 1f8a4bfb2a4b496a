package eventbus

import (
	"testing"
	"time"
)

func TestPublish_ReachesExactSubscriber(t *testing.T) {
	b := NewBus(4)
	sub := b.Subscribe(GameTopic("started"))

	b.Publish(GameTopic("started"), "player-1")
	expectMessage(t, sub, "player-1")
}

func TestPublish_FamilyConstructorsStayDisjoint(t *testing.T) {
	b := NewBus(4)
	gameSub := b.Subscribe(GameTopic("ended"))
	ballSub := b.Subscribe(BallTopic("starting"))
	mediaSub := b.Subscribe(MediaTopic("tilt"))

	b.Publish(GameTopic("ended"), "g")
	b.Publish(BallTopic("starting"), "b")
	b.Publish(MediaTopic("tilt"), "m")

	expectMessage(t, gameSub, "g")
	expectMessage(t, ballSub, "b")
	expectMessage(t, mediaSub, "m")
}

func TestPublish_DifferentEventNameDoesNotMatch(t *testing.T) {
	b := NewBus(4)
	sub := b.Subscribe(MediaTopic("tilt"))

	b.Publish(MediaTopic("tilt_warning"), "w")
	expectNoMessage(t, sub)
}

func TestSubscribe_FamilyWildcard(t *testing.T) {
	b := NewBus(4)
	sub := b.Subscribe(FamilyTopic(FamilyMedia))

	b.Publish(MediaTopic("bonus_step"), "m1")
	expectMessage(t, sub, "m1")

	b.Publish(GameTopic("started"), "g1")
	expectNoMessage(t, sub)
}

func TestSubscribe_AllTopics(t *testing.T) {
	b := NewBus(4)
	sub := b.Subscribe(AllTopics())

	b.Publish(GameTopic("started"), "g")
	b.Publish(BallTopic("ended"), "b")
	b.Publish(MediaTopic("tilt"), "m")

	expectMessage(t, sub, "g")
	expectMessage(t, sub, "b")
	expectMessage(t, sub, "m")
}

func TestUnsubscribe_StopsDeliveryAndClosesChannel(t *testing.T) {
	b := NewBus(4)
	sub := b.Subscribe(GameTopic("started"))
	sub.Unsubscribe()

	b.Publish(GameTopic("started"), "late")
	if _, ok := <-sub.Channel(); ok {
		t.Fatal("expected a closed, empty channel after Unsubscribe")
	}
}

func TestUnsubscribe_TwiceIsSafe(t *testing.T) {
	b := NewBus(4)
	sub := b.Subscribe(GameTopic("started"))
	sub.Unsubscribe()
	sub.Unsubscribe()

	other := b.Subscribe(GameTopic("started"))
	b.Publish(GameTopic("started"), "fresh")
	expectMessage(t, other, "fresh")
}

func TestDeliver_FullQueueShedsOldest(t *testing.T) {
	b := NewBus(1)
	sub := b.Subscribe(MediaTopic("score"))

	b.Publish(MediaTopic("score"), "old")
	b.Publish(MediaTopic("score"), "new")

	expectMessage(t, sub, "new")
	expectNoMessage(t, sub)
}

func TestMessage_SequenceIncreases(t *testing.T) {
	b := NewBus(4)
	sub := b.Subscribe(AllTopics())

	b.Publish(GameTopic("started"), nil)
	b.Publish(GameTopic("ended"), nil)

	first := <-sub.Channel()
	second := <-sub.Channel()
	if second.Seq <= first.Seq {
		t.Fatalf("sequence must increase: got %d then %d", first.Seq, second.Seq)
	}
}

// -----------------------------------------------------------------------------
// helpers
// -----------------------------------------------------------------------------

func expectMessage(t *testing.T, sub *Subscription, want any) {
	t.Helper()
	select {
	case got := <-sub.Channel():
		if got.Payload != want {
			t.Fatalf("unexpected payload: %v (want %v)", got.Payload, want)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timeout waiting for %v", want)
	}
}

func expectNoMessage(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case got, ok := <-sub.Channel():
		if ok {
			t.Fatalf("unexpected message: %#v", got)
		}
	case <-time.After(60 * time.Millisecond):
	}
}
