package repository

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/akinalp/sohbet/database"
	"github.com/akinalp/sohbet/models"
)

// newTestDB, her test için izole bir SQLite dosyası açar ve migration'ları
// uygular. t.TempDir() test bitince otomatik silinir.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		t.Fatalf("failed to access embedded migrations: %v", err)
	}

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), migrationsFS)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// createTestUser, test için kullanıcı oluşturur.
func createTestUser(t *testing.T, db *database.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "x"}
	if err := NewSQLiteUserRepo(db.Conn).Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// createTestTopic, test için konu oluşturur.
func createTestTopic(t *testing.T, db *database.DB, name string) *models.Topic {
	t.Helper()
	topic := &models.Topic{Name: name}
	if err := NewSQLiteTopicRepo(db.Conn).Create(context.Background(), topic); err != nil {
		t.Fatalf("failed to create topic %s: %v", name, err)
	}
	return topic
}

// createTestConversation, test için sohbet oluşturur.
func createTestConversation(t *testing.T, db *database.DB, topicID, name string) *models.Conversation {
	t.Helper()
	conversation := &models.Conversation{TopicID: topicID, Name: name}
	if err := NewSQLiteConversationRepo(db.Conn).Create(context.Background(), conversation); err != nil {
		t.Fatalf("failed to create conversation %s: %v", name, err)
	}
	return conversation
}
