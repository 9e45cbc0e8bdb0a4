package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
)

func TestMessageCreateAndList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	topic := createTestTopic(t, db, "General Discussion")
	conv := createTestConversation(t, db, topic.ID, "General Chat")
	other := createTestConversation(t, db, topic.ID, "Other Chat")

	repo := NewSQLiteMessageRepo(db.Conn)

	msg := &models.Message{ConversationID: conv.ID, AuthorID: alice.ID, Content: "Hello, everyone!"}
	if err := repo.Create(ctx, msg); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if msg.ID == "" {
		t.Fatal("Create should fill the generated ID")
	}
	if msg.CreatedAt.IsZero() {
		t.Fatal("Create should fill created_at")
	}

	// Başka sohbete de bir mesaj — listeleme sohbet bazlı filtrelemeli.
	if err := repo.Create(ctx, &models.Message{ConversationID: other.ID, AuthorID: alice.ID, Content: "elsewhere"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	messages, err := repo.ListByConversation(ctx, conv.ID, "", 10)
	if err != nil {
		t.Fatalf("ListByConversation: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(messages))
	}
	if messages[0].Content != "Hello, everyone!" {
		t.Errorf("content = %q", messages[0].Content)
	}

	// Yazar bilgisi JOIN ile gelmiş olmalı.
	if messages[0].Author == nil {
		t.Fatal("author should be joined")
	}
	if diff := cmp.Diff("alice", messages[0].Author.Username); diff != "" {
		t.Errorf("author mismatch (-want +got):\n%s", diff)
	}
}

func TestMessageCreateUnknownConversation(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")

	repo := NewSQLiteMessageRepo(db.Conn)
	err := repo.Create(context.Background(), &models.Message{
		ConversationID: "does-not-exist",
		AuthorID:       alice.ID,
		Content:        "hello",
	})
	if !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMessageCursorPagination(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	topic := createTestTopic(t, db, "General Discussion")
	conv := createTestConversation(t, db, topic.ID, "General Chat")

	repo := NewSQLiteMessageRepo(db.Conn)

	// Aynı saniyede yazılan satırların created_at değeri çakışır —
	// cursor testinin deterministik olması için zaman damgaları elle açılır.
	ids := make([]string, 5)
	for i := range ids {
		msg := &models.Message{ConversationID: conv.ID, AuthorID: alice.ID, Content: fmt.Sprintf("m%d", i+1)}
		if err := repo.Create(ctx, msg); err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids[i] = msg.ID
		if _, err := db.Conn.Exec(
			`UPDATE messages SET created_at = datetime('2026-01-01 10:00:00', ?) WHERE id = ?`,
			fmt.Sprintf("+%d seconds", i), msg.ID,
		); err != nil {
			t.Fatalf("failed to adjust created_at: %v", err)
		}
	}

	// İlk sayfa: en yeni 2 mesaj, DESC sıralı.
	page1, err := repo.ListByConversation(ctx, conv.ID, "", 2)
	if err != nil {
		t.Fatalf("ListByConversation: %v", err)
	}
	if got := contentsOf(page1); !cmp.Equal([]string{"m5", "m4"}, got) {
		t.Fatalf("page1 = %v, want [m5 m4]", got)
	}

	// İkinci sayfa: cursor'dan eski 2 mesaj.
	page2, err := repo.ListByConversation(ctx, conv.ID, page1[len(page1)-1].ID, 2)
	if err != nil {
		t.Fatalf("ListByConversation with cursor: %v", err)
	}
	if got := contentsOf(page2); !cmp.Equal([]string{"m3", "m2"}, got) {
		t.Fatalf("page2 = %v, want [m3 m2]", got)
	}

	// Son sayfa: tek mesaj kalır.
	page3, err := repo.ListByConversation(ctx, conv.ID, page2[len(page2)-1].ID, 2)
	if err != nil {
		t.Fatalf("ListByConversation last page: %v", err)
	}
	if got := contentsOf(page3); !cmp.Equal([]string{"m1"}, got) {
		t.Fatalf("page3 = %v, want [m1]", got)
	}
}

func TestMessageCursorPaginationSameSecond(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	topic := createTestTopic(t, db, "General Discussion")
	conv := createTestConversation(t, db, topic.ID, "General Chat")

	repo := NewSQLiteMessageRepo(db.Conn)

	// CURRENT_TIMESTAMP saniye hassasiyetindedir — yoğun bir sohbette
	// birden fazla mesaj aynı saniyeye düşer. Cursor (created_at, id)
	// çifti ile karşılaştırmalı, yoksa aynı saniyedeki satırlar sayfalar
	// arasında kaybolur.
	for i := 0; i < 3; i++ {
		msg := &models.Message{ConversationID: conv.ID, AuthorID: alice.ID, Content: fmt.Sprintf("m%d", i+1)}
		if err := repo.Create(ctx, msg); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, err := db.Conn.Exec(`UPDATE messages SET created_at = '2026-01-01 10:00:00'`); err != nil {
		t.Fatalf("failed to collapse created_at: %v", err)
	}

	var seen []string
	cursor := ""
	for i := 0; i < 3; i++ {
		page, err := repo.ListByConversation(ctx, conv.ID, cursor, 1)
		if err != nil {
			t.Fatalf("ListByConversation page %d: %v", i+1, err)
		}
		if len(page) != 1 {
			t.Fatalf("page %d has %d messages, want 1", i+1, len(page))
		}
		seen = append(seen, page[0].Content)
		cursor = page[0].ID
	}

	// Hiçbir mesaj atlanmamalı ve tekrar gelmemeli.
	sort.Strings(seen)
	if !cmp.Equal([]string{"m1", "m2", "m3"}, seen) {
		t.Fatalf("paginated contents = %v, want all of [m1 m2 m3]", seen)
	}

	// Son cursor'dan sonrası boş olmalı.
	tail, err := repo.ListByConversation(ctx, conv.ID, cursor, 1)
	if err != nil {
		t.Fatalf("ListByConversation past end: %v", err)
	}
	if len(tail) != 0 {
		t.Fatalf("expected empty page past the last cursor, got %v", contentsOf(tail))
	}
}

func contentsOf(messages []models.Message) []string {
	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = m.Content
	}
	return out
}
