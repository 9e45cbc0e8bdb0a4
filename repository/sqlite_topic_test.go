package repository

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTopicSubscriptions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	general := createTestTopic(t, db, "General Discussion")
	tech := createTestTopic(t, db, "Tech Talk")
	createTestTopic(t, db, "Random Thoughts") // abone olunmayan konu

	repo := NewSQLiteTopicRepo(db.Conn)

	if err := repo.Subscribe(ctx, general.ID, alice.ID); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if err := repo.Subscribe(ctx, tech.ID, alice.ID); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	// Tekrarlanan abonelik no-op olmalı.
	if err := repo.Subscribe(ctx, general.ID, alice.ID); err != nil {
		t.Fatalf("duplicate Subscribe: %v", err)
	}

	ids, err := repo.SubscribedTopicIDs(ctx, alice.ID)
	if err != nil {
		t.Fatalf("SubscribedTopicIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d subscribed topics, want 2", len(ids))
	}

	subscribed, err := repo.ListSubscribed(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListSubscribed: %v", err)
	}
	var names []string
	for _, topic := range subscribed {
		names = append(names, topic.Name)
	}
	if !cmp.Equal(2, len(names)) {
		t.Fatalf("subscribed names = %v", names)
	}

	// Abonelikten çık — liste daralmalı.
	if err := repo.Unsubscribe(ctx, tech.ID, alice.ID); err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	ids, err = repo.SubscribedTopicIDs(ctx, alice.ID)
	if err != nil {
		t.Fatalf("SubscribedTopicIDs: %v", err)
	}
	if diff := cmp.Diff([]string{general.ID}, ids); diff != "" {
		t.Errorf("subscribed ids mismatch (-want +got):\n%s", diff)
	}
}

func TestConversationParticipants(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	topic := createTestTopic(t, db, "General Discussion")
	conv := createTestConversation(t, db, topic.ID, "General Chat")

	repo := NewSQLiteConversationRepo(db.Conn)

	if err := repo.AddParticipant(ctx, conv.ID, alice.ID); err != nil {
		t.Fatalf("AddParticipant: %v", err)
	}
	// Tekrarlanan ekleme no-op olmalı.
	if err := repo.AddParticipant(ctx, conv.ID, alice.ID); err != nil {
		t.Fatalf("duplicate AddParticipant: %v", err)
	}

	ok, err := repo.IsParticipant(ctx, alice.ID, conv.ID)
	if err != nil {
		t.Fatalf("IsParticipant: %v", err)
	}
	if !ok {
		t.Error("alice should be a participant")
	}

	ok, err = repo.IsParticipant(ctx, bob.ID, conv.ID)
	if err != nil {
		t.Fatalf("IsParticipant: %v", err)
	}
	if ok {
		t.Error("bob should not be a participant")
	}

	participants, err := repo.ListParticipants(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ListParticipants: %v", err)
	}
	if len(participants) != 1 || participants[0].Username != "alice" {
		t.Errorf("participants = %v", participants)
	}

	if err := repo.RemoveParticipant(ctx, conv.ID, alice.ID); err != nil {
		t.Fatalf("RemoveParticipant: %v", err)
	}
	ok, err = repo.IsParticipant(ctx, alice.ID, conv.ID)
	if err != nil {
		t.Fatalf("IsParticipant: %v", err)
	}
	if ok {
		t.Error("alice should no longer be a participant")
	}
}
