package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

// newTestSession, pompaları çalışmayan çıplak bir session oluşturur.
// Hub ve tracker testleri sadece send channel'ını ve focus durumunu kullanır.
func newTestSession(hub *Hub, userID string, bufSize int) *Session {
	return &Session{
		hub:    hub,
		id:     uuid.NewString(),
		userID: userID,
		send:   make(chan []byte, bufSize),
		done:   make(chan struct{}),
	}
}

func newTestHub(t *testing.T) (*Hub, *ActivityTracker) {
	t.Helper()
	tracker := NewActivityTracker()
	hub := NewHub(tracker)
	go hub.Run()
	return hub, tracker
}

// receiveEvent, session'ın send channel'ından bir event okur.
func receiveEvent(t *testing.T, s *Session) Event {
	t.Helper()
	select {
	case data := <-s.send:
		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("failed to unmarshal event: %v", err)
		}
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

// expectNoEvent, session'ın hiçbir event almadığını doğrular.
func expectNoEvent(t *testing.T, s *Session) {
	t.Helper()
	select {
	case data := <-s.send:
		t.Fatalf("expected no event, got: %s", data)
	default:
	}
}

// waitFor, koşul sağlanana kadar bekler (asenkron unregister akışı için).
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestHubJoinMovesFocus(t *testing.T) {
	hub, _ := newTestHub(t)
	s := newTestSession(hub, "u1", 8)
	hub.register <- s
	waitFor(t, func() bool { return hub.SessionCount() == 1 })

	hub.Join(s, "conv-a")
	if got := s.FocusedConversation(); got != "conv-a" {
		t.Fatalf("focus = %q, want conv-a", got)
	}

	// Yeni focus eskisini bırakmalı — session aynı anda tek sette bulunur.
	hub.Join(s, "conv-b")
	if got := s.FocusedConversation(); got != "conv-b" {
		t.Fatalf("focus = %q, want conv-b", got)
	}
	if n := hub.FocusedCount("conv-a"); n != 0 {
		t.Errorf("conv-a focused count = %d, want 0", n)
	}
	if n := hub.FocusedCount("conv-b"); n != 1 {
		t.Errorf("conv-b focused count = %d, want 1", n)
	}
}

func TestHubLeaveIdempotent(t *testing.T) {
	hub, _ := newTestHub(t)
	s := newTestSession(hub, "u1", 8)
	hub.register <- s
	waitFor(t, func() bool { return hub.SessionCount() == 1 })

	hub.Join(s, "conv-a")
	hub.Leave(s)
	hub.Leave(s) // ikinci leave no-op olmalı

	if got := s.FocusedConversation(); got != "" {
		t.Fatalf("focus = %q, want empty", got)
	}
	if n := hub.FocusedCount("conv-a"); n != 0 {
		t.Errorf("conv-a focused count = %d, want 0", n)
	}
}

func TestHubPublishReachesOnlyFocused(t *testing.T) {
	hub, _ := newTestHub(t)
	focused := newTestSession(hub, "u1", 8)
	elsewhere := newTestSession(hub, "u2", 8)
	unfocused := newTestSession(hub, "u3", 8)
	for _, s := range []*Session{focused, elsewhere, unfocused} {
		hub.register <- s
	}
	waitFor(t, func() bool { return hub.SessionCount() == 3 })

	hub.Join(focused, "conv-a")
	hub.Join(elsewhere, "conv-b")

	hub.PublishMessage("conv-a", map[string]string{"content": "merhaba"})

	event := receiveEvent(t, focused)
	if event.Op != OpMessage {
		t.Fatalf("op = %q, want %q", event.Op, OpMessage)
	}
	var data MessageData
	raw, _ := json.Marshal(event.Data)
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("failed to decode message data: %v", err)
	}
	if diff := cmp.Diff("conv-a", data.ConversationID); diff != "" {
		t.Errorf("conversation id mismatch (-want +got):\n%s", diff)
	}

	expectNoEvent(t, elsewhere)
	expectNoEvent(t, unfocused)
}

func TestHubPublishOrderAndSeq(t *testing.T) {
	hub, _ := newTestHub(t)
	s := newTestSession(hub, "u1", 8)
	hub.register <- s
	waitFor(t, func() bool { return hub.SessionCount() == 1 })
	hub.Join(s, "conv-a")

	contents := []string{"bir", "iki", "üç"}
	for _, c := range contents {
		hub.PublishMessage("conv-a", map[string]string{"content": c})
	}

	var lastSeq int64
	for i, want := range contents {
		event := receiveEvent(t, s)
		var data struct {
			Message map[string]string `json:"message"`
		}
		raw, _ := json.Marshal(event.Data)
		if err := json.Unmarshal(raw, &data); err != nil {
			t.Fatalf("failed to decode message data: %v", err)
		}
		if got := data.Message["content"]; got != want {
			t.Errorf("message %d = %q, want %q", i, got, want)
		}
		if event.Seq <= lastSeq {
			t.Errorf("seq %d not increasing: %d after %d", i, event.Seq, lastSeq)
		}
		lastSeq = event.Seq
	}
}

func TestHubSlowSessionPruned(t *testing.T) {
	hub, _ := newTestHub(t)
	slow := newTestSession(hub, "u1", 1)
	healthy := newTestSession(hub, "u2", 8)
	hub.register <- slow
	hub.register <- healthy
	waitFor(t, func() bool { return hub.SessionCount() == 2 })

	hub.Join(slow, "conv-a")
	hub.Join(healthy, "conv-a")

	// Slow session'ın buffer'ını doldur, sonra bir event daha yayınla:
	// publish bloklanmamalı, slow session düşürülmeli, healthy almaya
	// devam etmeli.
	hub.PublishMessage("conv-a", map[string]string{"content": "dolduran"})
	hub.PublishMessage("conv-a", map[string]string{"content": "taşıran"})

	waitFor(t, func() bool { return hub.SessionCount() == 1 })

	receiveEvent(t, healthy)
	receiveEvent(t, healthy)

	// Düşen session odak setinden de çıkmış olmalı.
	waitFor(t, func() bool { return hub.FocusedCount("conv-a") == 1 })
}

func TestHubUnregisterIdempotent(t *testing.T) {
	hub, _ := newTestHub(t)
	s := newTestSession(hub, "u1", 8)
	hub.register <- s
	waitFor(t, func() bool { return hub.SessionCount() == 1 })

	hub.unregister <- s
	hub.unregister <- s // ikinci unregister panic'lememeli (çift close yok)

	waitFor(t, func() bool { return hub.SessionCount() == 0 })
}

func TestHubShutdownDropsSessions(t *testing.T) {
	tracker := NewActivityTracker()
	hub := NewHub(tracker)
	go hub.Run()

	s := newTestSession(hub, "u1", 8)
	hub.register <- s
	waitFor(t, func() bool { return hub.SessionCount() == 1 })

	hub.Shutdown()

	select {
	case <-s.done:
	default:
		t.Fatal("session should be signalled after shutdown")
	}
	if n := hub.SessionCount(); n != 0 {
		t.Errorf("session count = %d, want 0", n)
	}
}

func TestHubJoinAfterRemovalRejected(t *testing.T) {
	hub, _ := newTestHub(t)
	s := newTestSession(hub, "u1", 8)
	hub.register <- s
	waitFor(t, func() bool { return hub.SessionCount() == 1 })

	hub.unregister <- s
	waitFor(t, func() bool { return hub.SessionCount() == 0 })

	// Çıkarılma ile yarışan bir focus isteği, session'ı focused map'e geri
	// sokamamalı — sokarsa yayın artık kimsenin dinlemediği bir kayda gider.
	hub.Join(s, "conv-a")

	if n := hub.FocusedCount("conv-a"); n != 0 {
		t.Fatalf("focused count = %d, want 0", n)
	}
	if got := s.FocusedConversation(); got != "" {
		t.Fatalf("focus = %q, want empty", got)
	}

	// Sohbete yayın session düşmüş olsa da güvenle ilerlemeli.
	hub.PublishMessage("conv-a", map[string]string{"content": "kimseye"})
	expectNoEvent(t, s)
}
