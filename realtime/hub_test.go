package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func registerClient(t *testing.T, hub *Hub, userID uuid.UUID) *Client {
	t.Helper()
	client := &Client{
		hub:    hub,
		send:   make(chan []byte, 8),
		userID: userID,
	}
	hub.Register <- client
	waitForConnections(t, hub, userID, 1)
	return client
}

// waitForConnections polls until the hub reports at least n connections for
// the user, Register is handled asynchronously by Run.
func waitForConnections(t *testing.T, hub *Hub, userID uuid.UUID, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ConnectionCount(userID) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("hub never reached %d connection(s) for user %s", n, userID)
}

func TestHubDeliversCartChangedToUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := uuid.New()
	client := registerClient(t, hub, userID)

	hub.PublishCartChanged(userID)

	select {
	case raw := <-client.send:
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			t.Fatal(err)
		}
		if ev.Type != EventCartChanged {
			t.Fatalf("expected event type %q, got %q", EventCartChanged, ev.Type)
		}
		if ev.UserID != userID {
			t.Fatalf("expected user %s, got %s", userID, ev.UserID)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestHubDoesNotLeakEventsAcrossUsers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	alice := uuid.New()
	bob := uuid.New()
	aliceClient := registerClient(t, hub, alice)
	bobClient := registerClient(t, hub, bob)

	hub.PublishCartChanged(alice)

	select {
	case <-aliceClient.send:
	case <-time.After(time.Second):
		t.Fatal("alice never received her event")
	}

	select {
	case <-bobClient.send:
		t.Fatal("bob must not receive alice's cart event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubFansOutToAllConnectionsOfUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := uuid.New()
	first := registerClient(t, hub, userID)

	second := &Client{hub: hub, send: make(chan []byte, 8), userID: userID}
	hub.Register <- second
	waitForConnections(t, hub, userID, 2)

	hub.PublishCartChanged(userID)

	for i, client := range []*Client{first, second} {
		select {
		case <-client.send:
		case <-time.After(time.Second):
			t.Fatalf("connection %d never received the event", i+1)
		}
	}
}

func TestHubDropsEventWhenBufferFull(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := uuid.New()
	client := &Client{hub: hub, send: make(chan []byte, 1), userID: userID}
	hub.Register <- client
	waitForConnections(t, hub, userID, 1)

	// Second publish must not block with a full buffer
	done := make(chan struct{})
	go func() {
		hub.PublishCartChanged(userID)
		hub.PublishCartChanged(userID)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow client")
	}

	if got := len(client.send); got != 1 {
		t.Fatalf("expected exactly 1 buffered event, got %d", got)
	}
}

// The send channel may only be closed once the connection is out of the
// user index, otherwise a concurrent publish would hit a closed channel.
func TestHubPublishDuringUnregisterDoesNotPanic(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := uuid.New()

	for i := 0; i < 200; i++ {
		client := registerClient(t, hub, userID)

		done := make(chan struct{})
		go func() {
			defer close(done)
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("publish panicked: %v", r)
				}
			}()
			hub.PublishCartChanged(userID)
		}()

		hub.Unregister <- client
		<-done

		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) && hub.ConnectionCount(userID) > 0 {
			time.Sleep(time.Millisecond)
		}
		if hub.ConnectionCount(userID) != 0 {
			t.Fatal("connection never unregistered")
		}
	}
}

func TestHubPublishAfterUnregisterIsNoOp(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := uuid.New()
	client := registerClient(t, hub, userID)

	hub.Unregister <- client
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && hub.ConnectionCount(userID) > 0 {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.ConnectionCount(userID) != 0 {
		t.Fatal("connection count never dropped to zero")
	}

	// The channel is closed by now; publish must neither panic nor send
	hub.PublishCartChanged(userID)

	if _, open := <-client.send; open {
		t.Fatal("expected send channel closed after unregister")
	}
}

func TestHubUnregisterRemovesConnection(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := uuid.New()
	client := registerClient(t, hub, userID)

	hub.Unregister <- client

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ConnectionCount(userID) == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("connection count never dropped to zero")
}
