package message

import "testing"

func TestHubDeliversToSubscriber(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("u1")
	defer cancel()

	hub.Send("u1", Event{Type: EventMessage, Data: "hello"})
	select {
	case ev := <-ch:
		if ev.Type != EventMessage {
			t.Fatalf("unexpected event: %+v", ev)
		}
	default:
		t.Fatal("event not delivered")
	}

	hub.Send("u2", Event{Type: EventMessage})
	select {
	case ev := <-ch:
		t.Fatalf("event for another user delivered: %+v", ev)
	default:
	}
}

func TestHubDropsWhenSubscriberFull(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("u1")
	defer cancel()

	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Send("u1", Event{Type: EventUnreadCount, Data: i})
	}
	if len(ch) != subscriberBuffer {
		t.Fatalf("expected %d buffered events, got %d", subscriberBuffer, len(ch))
	}
}

func TestHubPresence(t *testing.T) {
	hub := NewHub()

	watcher, cancelWatcher := hub.Subscribe("w")
	defer cancelWatcher()

	_, cancelA := hub.Subscribe("u1")
	if !hub.IsOnline("u1") {
		t.Fatal("u1 should be online")
	}
	select {
	case ev := <-watcher:
		if ev.Type != EventUserOnline {
			t.Fatalf("expected online event, got %+v", ev)
		}
	default:
		t.Fatal("online event not broadcast")
	}

	// A second connection for the same user must not re-announce.
	_, cancelB := hub.Subscribe("u1")
	select {
	case ev := <-watcher:
		t.Fatalf("unexpected event on second connection: %+v", ev)
	default:
	}

	cancelA()
	if !hub.IsOnline("u1") {
		t.Fatal("u1 still has one connection")
	}
	cancelB()
	if hub.IsOnline("u1") {
		t.Fatal("u1 should be offline")
	}
	select {
	case ev := <-watcher:
		if ev.Type != EventUserOffline {
			t.Fatalf("expected offline event, got %+v", ev)
		}
	default:
		t.Fatal("offline event not broadcast")
	}
}

func TestHubOnlineList(t *testing.T) {
	hub := NewHub()
	_, c1 := hub.Subscribe("u1")
	_, c2 := hub.Subscribe("u2")
	defer c1()
	defer c2()

	online := hub.Online()
	if len(online) != 2 {
		t.Fatalf("expected 2 online users, got %v", online)
	}
}

func TestHubCancelIsIdempotent(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe("u1")
	cancel()
	cancel()
	if hub.IsOnline("u1") {
		t.Fatal("u1 should be offline")
	}
}
