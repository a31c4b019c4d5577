package events

import (
	"log/slog"
	"sync"
)

// subscriberBuffer bounds each subscriber's pending message queue. A slow
// subscriber drops messages rather than blocking publishers.
const subscriberBuffer = 64

// Broadcaster is an in-process publish/subscribe hub keyed by channel name.
// Publishers never block: a subscriber whose buffer is full misses the
// message.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Subscription]bool
	logger      *slog.Logger
}

// Subscription is one subscriber's handle on a channel.
type Subscription struct {
	channel string
	ch      chan any
	once    sync.Once
}

// C returns the subscription's message channel. Closed on Cancel.
func (s *Subscription) C() <-chan any {
	return s.ch
}

// Channel returns the channel name this subscription is bound to.
func (s *Subscription) Channel() string {
	return s.channel
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]map[*Subscription]bool),
		logger:      slog.Default().With("component", "broadcaster"),
	}
}

// Subscribe registers a new subscription on a channel.
func (b *Broadcaster) Subscribe(channel string) *Subscription {
	sub := &Subscription{channel: channel, ch: make(chan any, subscriberBuffer)}
	b.mu.Lock()
	if b.subscribers[channel] == nil {
		b.subscribers[channel] = make(map[*Subscription]bool)
	}
	b.subscribers[channel][sub] = true
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscription and closes its channel. Safe to call
// more than once.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	if subs, ok := b.subscribers[sub.channel]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.subscribers, sub.channel)
		}
	}
	b.mu.Unlock()
	sub.once.Do(func() { close(sub.ch) })
}

// Publish delivers a payload to every subscriber of a channel without
// blocking; full subscriber buffers drop the payload.
func (b *Broadcaster) Publish(channel string, payload any) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subscribers[channel] {
		select {
		case sub.ch <- payload:
		default:
			b.logger.Warn("Subscriber buffer full, dropping message", "channel", channel)
		}
	}
}

// SubscriberCount reports how many subscriptions a channel has.
func (b *Broadcaster) SubscriberCount(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[channel])
}
