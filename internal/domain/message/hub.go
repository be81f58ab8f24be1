package message

import "sync"

const subscriberBuffer = 16

// Hub fans events out to connected clients, keyed by user id. Delivery is
// at most once: a subscriber that cannot keep up has events dropped rather
// than blocking the sender. A user may hold several concurrent
// subscriptions (multiple tabs); presence changes fire on the first and
// last of them.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: map[string]map[chan Event]struct{}{}}
}

// Subscribe registers a client for the user and returns its event channel
// plus a cancel function. The channel is closed on cancel.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	set, ok := h.subs[userID]
	if !ok {
		set = map[chan Event]struct{}{}
		h.subs[userID] = set
	}
	set[ch] = struct{}{}
	first := len(set) == 1
	h.mu.Unlock()

	if first {
		h.Broadcast(Event{Type: EventUserOnline, Data: map[string]string{"userId": userID}})
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], ch)
			last := len(h.subs[userID]) == 0
			if last {
				delete(h.subs, userID)
			}
			h.mu.Unlock()
			close(ch)
			if last {
				h.Broadcast(Event{Type: EventUserOffline, Data: map[string]string{"userId": userID}})
			}
		})
	}
	return ch, cancel
}

// Send delivers an event to every subscription of one user. Full channels
// are skipped.
func (h *Hub) Send(userID string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[userID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Broadcast delivers an event to every connected user.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, set := range h.subs {
		for ch := range set {
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// Online lists the ids of users with at least one active subscription.
func (h *Hub) Online() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	return ids
}

func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID]) > 0
}
