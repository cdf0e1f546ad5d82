package relay

import (
	"encoding/json"
	"testing"
	"time"
)

func newTestClient(userID string) *Client {
	return &Client{
		Send:   make(chan []byte, 10),
		UserID: userID,
	}
}

func TestHubJoinBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := newTestClient("u1")
	hub.register <- client
	hub.join <- membership{client: client, room: "chat1"}

	payload := map[string]any{"action": "new_message", "message": "hello test"}
	hub.Emit("chat1", payload)

	want, _ := json.Marshal(payload)
	select {
	case got := <-client.Send:
		if string(got) != string(want) {
			t.Fatalf("expected %s, got %s", want, got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for message")
	}

	hub.unregister <- client

	// channel is closed once the unregister is processed
	select {
	case _, ok := <-client.Send:
		if ok {
			t.Fatal("expected closed send channel")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for channel close")
	}
}

func TestHubBroadcastExcludesSender(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	sender := newTestClient("u1")
	peer := newTestClient("u2")
	for _, c := range []*Client{sender, peer} {
		hub.register <- c
		hub.join <- membership{client: c, room: "chat1"}
	}

	hub.EmitExcept("chat1", map[string]any{"action": "user_typing", "userId": "u1"}, sender)

	select {
	case <-peer.Send:
	case <-time.After(1 * time.Second):
		t.Fatal("peer never received typing event")
	}

	select {
	case got := <-sender.Send:
		t.Fatalf("sender should not receive its own typing event, got %s", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubRoomsAreIsolated(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	a := newTestClient("u1")
	b := newTestClient("u2")
	hub.register <- a
	hub.register <- b
	hub.join <- membership{client: a, room: "chat1"}
	hub.join <- membership{client: b, room: "chat2"}

	hub.Emit("chat1", map[string]any{"action": "new_message"})

	select {
	case <-a.Send:
	case <-time.After(1 * time.Second):
		t.Fatal("room member missed broadcast")
	}

	select {
	case <-b.Send:
		t.Fatal("broadcast leaked across rooms")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSendJSONAfterCloseIsNoop(t *testing.T) {
	c := newTestClient("u1")
	c.closeSend()
	c.closeSend() // second close must also be safe

	// writes racing a drop must be dropped, not panic
	c.sendError("late reply")
	c.sendJSON(map[string]any{"action": "message_delivered"})

	select {
	case _, ok := <-c.Send:
		if ok {
			t.Fatal("expected closed send channel")
		}
	default:
		t.Fatal("send channel not closed")
	}
}

func TestHubDropsSlowConsumerSafely(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	slow := &Client{Send: make(chan []byte, 1), UserID: "u1"}
	healthy := newTestClient("u2")
	for _, c := range []*Client{slow, healthy} {
		hub.register <- c
		hub.join <- membership{client: c, room: "chat1"}
	}

	// second frame overflows slow's buffer and gets it dropped
	hub.Emit("chat1", map[string]any{"seq": 1})
	hub.Emit("chat1", map[string]any{"seq": 2})

	// healthy receiving both frames means the hub has processed both
	for i := 0; i < 2; i++ {
		select {
		case <-healthy.Send:
		case <-time.After(1 * time.Second):
			t.Fatal("timeout waiting for broadcast")
		}
	}

	// must be a no-op, not a send on a closed channel
	slow.sendError("late reply")

	if _, ok := <-slow.Send; !ok {
		t.Fatal("buffered frame lost on drop")
	}
	select {
	case _, ok := <-slow.Send:
		if ok {
			t.Fatal("expected closed send channel after drop")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for channel close")
	}
}

func TestHubLeaveStopsDelivery(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	c := newTestClient("u1")
	hub.register <- c
	hub.join <- membership{client: c, room: "chat1"}
	hub.leave <- membership{client: c, room: "chat1"}

	hub.Emit("chat1", map[string]any{"action": "new_message"})

	select {
	case <-c.Send:
		t.Fatal("received broadcast after leaving room")
	case <-time.After(100 * time.Millisecond):
	}
}
