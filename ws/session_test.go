package ws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// fakeConn, gerçek ağ bağlantısı olmadan session davranışını test etmek
// için connWriter'ın no-op implementasyonu.
type fakeConn struct{}

func (fakeConn) ReadMessage() (int, []byte, error) { return 0, nil, errors.New("closed") }
func (fakeConn) WriteMessage(int, []byte) error    { return nil }
func (fakeConn) SetReadLimit(int64)                {}
func (fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (fakeConn) Close() error                      { return nil }

type fakeParticipants struct {
	allowed map[string]bool
	err     error
}

func (f *fakeParticipants) IsParticipant(ctx context.Context, userID, conversationID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.allowed[conversationID], nil
}

func newOpTestSession(hub *Hub, participants ParticipantChecker, submit SubmitFunc) *Session {
	return &Session{
		hub:          hub,
		conn:         fakeConn{},
		id:           uuid.NewString(),
		userID:       "u1",
		username:     "alice",
		send:         make(chan []byte, 8),
		done:         make(chan struct{}),
		participants: participants,
		submit:       submit,
	}
}

func TestSessionFocusParticipantGate(t *testing.T) {
	hub, _ := newTestHub(t)
	participants := &fakeParticipants{allowed: map[string]bool{"conv-a": true}}
	s := newOpTestSession(hub, participants, nil)
	hub.register <- s
	waitFor(t, func() bool { return hub.SessionCount() == 1 })

	// Katılımcısı olduğu sohbet — focus uygulanır, ack döner.
	s.handleEvent(Event{Op: OpFocus, Data: FocusData{ConversationID: "conv-a"}})
	if got := s.FocusedConversation(); got != "conv-a" {
		t.Fatalf("focus = %q, want conv-a", got)
	}
	ack := receiveEvent(t, s)
	if ack.Op != OpFocusAck {
		t.Fatalf("op = %q, want %q", ack.Op, OpFocusAck)
	}

	// Katılımcısı olmadığı sohbet — reddedilir, MEVCUT odak değişmez.
	s.handleEvent(Event{Op: OpFocus, Data: FocusData{ConversationID: "conv-b"}})
	if got := s.FocusedConversation(); got != "conv-a" {
		t.Fatalf("focus after rejected switch = %q, want conv-a", got)
	}
	rejection := receiveEvent(t, s)
	if rejection.Op != OpError {
		t.Fatalf("op = %q, want %q", rejection.Op, OpError)
	}
}

func TestSessionFocusWithoutConversationID(t *testing.T) {
	hub, _ := newTestHub(t)
	s := newOpTestSession(hub, &fakeParticipants{}, nil)

	s.handleEvent(Event{Op: OpFocus, Data: FocusData{}})

	event := receiveEvent(t, s)
	if event.Op != OpError {
		t.Fatalf("op = %q, want %q", event.Op, OpError)
	}
}

func TestSessionUnfocus(t *testing.T) {
	hub, _ := newTestHub(t)
	participants := &fakeParticipants{allowed: map[string]bool{"conv-a": true}}
	s := newOpTestSession(hub, participants, nil)
	hub.register <- s
	waitFor(t, func() bool { return hub.SessionCount() == 1 })

	s.handleEvent(Event{Op: OpFocus, Data: FocusData{ConversationID: "conv-a"}})
	receiveEvent(t, s) // focus_ack

	s.handleEvent(Event{Op: OpUnfocus})
	if got := s.FocusedConversation(); got != "" {
		t.Fatalf("focus = %q, want empty", got)
	}
	if n := hub.FocusedCount("conv-a"); n != 0 {
		t.Errorf("focused count = %d, want 0", n)
	}
}

func TestSessionMessageCreateErrorOnlyToSender(t *testing.T) {
	hub, _ := newTestHub(t)
	submitErr := errors.New("rejected")
	var gotConv, gotAuthor, gotContent string
	submit := func(ctx context.Context, conversationID, authorID, content string) error {
		gotConv, gotAuthor, gotContent = conversationID, authorID, content
		return submitErr
	}
	s := newOpTestSession(hub, &fakeParticipants{}, submit)

	s.handleEvent(Event{Op: OpMessageCreate, Data: SubmitData{ConversationID: "conv-a", Content: "selam"}})

	if gotConv != "conv-a" || gotAuthor != "u1" || gotContent != "selam" {
		t.Errorf("submit called with conv=%q author=%q content=%q", gotConv, gotAuthor, gotContent)
	}

	// Hata sadece gönderen session'a error event'i olarak döner.
	event := receiveEvent(t, s)
	if event.Op != OpError {
		t.Fatalf("op = %q, want %q", event.Op, OpError)
	}
	var data ErrorData
	raw, _ := json.Marshal(event.Data)
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("failed to decode error data: %v", err)
	}
	if data.Op != OpMessageCreate {
		t.Errorf("error op = %q, want %q", data.Op, OpMessageCreate)
	}
}

func TestSessionMessageCreateSuccessNoAck(t *testing.T) {
	hub, _ := newTestHub(t)
	submit := func(ctx context.Context, conversationID, authorID, content string) error { return nil }
	s := newOpTestSession(hub, &fakeParticipants{}, submit)

	s.handleEvent(Event{Op: OpMessageCreate, Data: SubmitData{ConversationID: "conv-a", Content: "selam"}})

	// Başarılı gönderimde ayrıca ack yok — mesaj hub/HTTP yolundan görünür.
	expectNoEvent(t, s)
}

func TestSessionInFlightOpAfterRemovalNoop(t *testing.T) {
	hub, _ := newTestHub(t)
	s := newOpTestSession(hub, &fakeParticipants{}, nil)
	hub.register <- s
	waitFor(t, func() bool { return hub.SessionCount() == 1 })

	hub.unregister <- s
	waitFor(t, func() bool { return hub.SessionCount() == 0 })

	// Read pump'ta işlenmekte olan bir operasyon, hub session'ı
	// çıkardıktan sonra tamamlanabilir. Yavaş bir client tam bu pencerede
	// heartbeat gönderir: yanıt denemesi no-op olmalı, panic değil.
	s.handleEvent(Event{Op: OpHeartbeat})
	s.handleEvent(Event{Op: OpFocus, Data: FocusData{}})

	expectNoEvent(t, s)
}

func TestSessionHeartbeatAck(t *testing.T) {
	hub, _ := newTestHub(t)
	s := newOpTestSession(hub, &fakeParticipants{}, nil)

	s.handleEvent(Event{Op: OpHeartbeat})

	event := receiveEvent(t, s)
	if event.Op != OpHeartbeatAck {
		t.Fatalf("op = %q, want %q", event.Op, OpHeartbeatAck)
	}
	if event.Seq == 0 {
		t.Error("outbound events should carry a seq number")
	}
}
