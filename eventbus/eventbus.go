// Package eventbus carries game, ball, and media events outward to any
// number of in-process subscribers (a websocket pusher, a scorekeeping
// log, a metrics counter) without the publisher knowing who, if anyone,
// is listening. It is deliberately narrower than a general pub/sub
// broker: a topic is one of three fixed families plus an event name, a
// subscriber asks for one event, one family, or everything, and
// delivery never blocks the publisher — a slow subscriber sheds its
// oldest queued message instead.
package eventbus

import "sync"

// Family groups topics by origin. The three families cover everything
// the game emits.
type Family string

const (
	FamilyGame  Family = "game"
	FamilyBall  Family = "ball"
	FamilyMedia Family = "media"
)

// Any is the wildcard event name (or family) in a subscription topic.
const Any = "*"

// Topic names one event, or — with Any in either position — a
// subscription pattern.
type Topic struct {
	Family Family
	Name   string
}

// GameTopic names a game-lifecycle event (game_started, game_ended, ...).
func GameTopic(event string) Topic { return Topic{FamilyGame, event} }

// BallTopic names a ball-lifecycle event (ball_starting, ball_ended, ...).
func BallTopic(event string) Topic { return Topic{FamilyBall, event} }

// MediaTopic names any other media event posted through a Sink.
func MediaTopic(event string) Topic { return Topic{FamilyMedia, event} }

// FamilyTopic matches every event in one family.
func FamilyTopic(f Family) Topic { return Topic{f, Any} }

// AllTopics matches every event on the bus.
func AllTopics() Topic { return Topic{Family(Any), Any} }

// Message is one published event, stamped with a bus-wide sequence
// number useful for log correlation.
type Message struct {
	Topic   Topic
	Payload any
	Seq     uint64
}

// Subscription is a live registration against one topic pattern.
// Messages arrive on Channel until Unsubscribe, which closes it.
type Subscription struct {
	topic Topic
	ch    chan *Message
	bus   *Bus
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.bus.unsubscribe(s) }

// deliver never blocks: a full queue sheds its oldest message to make
// room; if the queue is somehow still full, the new message is dropped.
func (s *Subscription) deliver(m *Message) {
	select {
	case s.ch <- m:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- m:
	default:
	}
}

const defaultQueueLen = 3

// Bus fans published events out to matching subscriptions. Delivery
// happens under the bus lock with non-blocking sends, so Publish,
// Subscribe, and Unsubscribe are safe from any goroutine and none of
// them can stall the game loop.
type Bus struct {
	mu   sync.Mutex
	subs map[Topic][]*Subscription
	qLen int
	seq  uint64
}

// NewBus returns a Bus whose subscriptions each buffer queueLen
// messages (a small default if queueLen <= 0).
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = defaultQueueLen
	}
	return &Bus{
		subs: make(map[Topic][]*Subscription),
		qLen: queueLen,
	}
}

// Subscribe registers for a concrete topic, a family (FamilyTopic), or
// everything (AllTopics).
func (b *Bus) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{topic: topic, ch: make(chan *Message, b.qLen), bus: b}
	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()
	return sub
}

// Publish delivers payload to every subscription matching topic: the
// exact topic, its family wildcard, and the all-topics wildcard.
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	msg := &Message{Topic: topic, Payload: payload, Seq: b.seq}
	for _, pattern := range []Topic{topic, {topic.Family, Any}, AllTopics()} {
		for _, sub := range b.subs[pattern] {
			sub.deliver(msg)
		}
	}
}

// unsubscribe removes sub and closes its channel. Calling it again for
// an already-removed subscription is a no-op.
func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	list := b.subs[sub.topic]
	removed := false
	for i, s := range list {
		if s == sub {
			b.subs[sub.topic] = append(list[:i], list[i+1:]...)
			removed = true
			break
		}
	}
	if len(b.subs[sub.topic]) == 0 {
		delete(b.subs, sub.topic)
	}
	b.mu.Unlock()

	if removed {
		close(sub.ch)
	}
}
