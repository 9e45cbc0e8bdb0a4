package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"

	"github.com/akinalp/sohbet/models"
)

type fakeTokenValidator struct {
	claims *models.TokenClaims
	err    error
}

func (f *fakeTokenValidator) ValidateAccessToken(string) (*models.TokenClaims, error) {
	return f.claims, f.err
}

type fakeSubscriptions struct {
	ids []string
	err error
}

func (f *fakeSubscriptions) SubscribedTopicIDs(ctx context.Context, userID string) ([]string, error) {
	return f.ids, f.err
}

// dialTestHandler, handler'ı gerçek bir HTTP server arkasına koyup
// websocket bağlantısı kurar.
func dialTestHandler(t *testing.T, h *Handler, token string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.HandleConnection))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHandlerReadyCarriesPendingMarks(t *testing.T) {
	hub, tracker := newTestHub(t)

	// u1'in başka bir sekmesi bağlıyken konusunda görülmemiş aktivite birikir.
	other := newTestSession(hub, "u1", 8)
	hub.register <- other
	waitFor(t, func() bool { return hub.SessionCount() == 1 })
	tracker.Register(other, []string{"top-1"})
	tracker.RecordActivity("top-1", "conv-a", "selam", "bob")

	h := NewHandler(hub, tracker,
		&fakeTokenValidator{claims: &models.TokenClaims{UserID: "u1", Username: "alice"}},
		&fakeSubscriptions{ids: []string{"top-1"}},
		&fakeParticipants{}, nil)

	conn := dialTestHandler(t, h, "dummy")

	// İlk frame ready olmalı: session kimliği, abonelikler ve diğer
	// sekmede birikmiş aktivite işaretleri.
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read ready frame: %v", err)
	}
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		t.Fatalf("unmarshal ready frame: %v", err)
	}
	if event.Op != OpReady {
		t.Fatalf("op = %q, want %q", event.Op, OpReady)
	}

	ready, err := decodeData[ReadyData](event)
	if err != nil {
		t.Fatalf("decode ready data: %v", err)
	}
	if ready.SessionID == "" {
		t.Error("ready should carry a session id")
	}
	if diff := cmp.Diff([]string{"top-1"}, ready.SubscribedTopicIDs); diff != "" {
		t.Errorf("subscribed topics mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"conv-a": "top-1"}, ready.ActivityMarks); diff != "" {
		t.Errorf("activity marks mismatch (-want +got):\n%s", diff)
	}
}

func TestHandlerRejectsMissingToken(t *testing.T) {
	hub, tracker := newTestHub(t)
	h := NewHandler(hub, tracker,
		&fakeTokenValidator{claims: &models.TokenClaims{UserID: "u1", Username: "alice"}},
		&fakeSubscriptions{}, &fakeParticipants{}, nil)

	srv := httptest.NewServer(http.HandlerFunc(h.HandleConnection))
	defer srv.Close()

	resp, err := http.Get(srv.URL) // token query parametresi yok
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}
