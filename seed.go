// Package main — geliştirme için örnek veri.
//
// SEED_DATA=true iken boot sırasında boş veritabanına örnek kullanıcı,
// konu, sohbet, mesaj ve döküman verisi yazılır. DB boş değilse hiçbir
// şey yapılmaz — seed idempotent'tir, her boot'ta güvenle çağrılabilir.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/akinalp/sohbet/database"
	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/repository"
)

// seedPassword: tüm örnek kullanıcıların şifresi (sadece geliştirme).
const seedPassword = "password123"

// seedDatabase, tüm yazma işlemlerini tek bir transaction içinde yürütür —
// yarım kalan seed (crash, disk dolu) sonraki boot'u tutarsız DB ile karşılamaz.
func seedDatabase(ctx context.Context, db *database.DB) error {
	// DB boş mu? İlk örnek kullanıcı varsa seed daha önce koşmuştur.
	_, err := repository.NewSQLiteUserRepo(db.Conn).GetByUsername(ctx, "alice")
	if err == nil {
		log.Println("[seed] database already seeded, skipping")
		return nil
	}
	if !errors.Is(err, pkg.ErrNotFound) {
		return err
	}

	log.Println("[seed] seeding database with sample data...")

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), 12)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	return database.WithTx(ctx, db.Conn, func(tx *sql.Tx) error {
		return seedData(ctx, tx, string(hash))
	})
}

// seedData, transaction'a bağlı repository'ler üzerinden örnek veriyi yazar.
func seedData(ctx context.Context, tx *sql.Tx, hash string) error {
	userRepo := repository.NewSQLiteUserRepo(tx)
	topicRepo := repository.NewSQLiteTopicRepo(tx)
	conversationRepo := repository.NewSQLiteConversationRepo(tx)
	messageRepo := repository.NewSQLiteMessageRepo(tx)
	pageRepo := repository.NewSQLitePageRepo(tx)

	// Kullanıcılar
	users := make(map[string]*models.User)
	for _, name := range []string{"alice", "bob", "charlie"} {
		u := &models.User{Username: name, PasswordHash: hash}
		if err := userRepo.Create(ctx, u); err != nil {
			return fmt.Errorf("failed to create user %s: %w", name, err)
		}
		users[name] = u
	}

	// Konular
	newTopic := func(name, description string) (*models.Topic, error) {
		t := &models.Topic{Name: name, Description: &description}
		if err := topicRepo.Create(ctx, t); err != nil {
			return nil, fmt.Errorf("failed to create topic %s: %w", name, err)
		}
		return t, nil
	}

	general, err := newTopic("General Discussion", "A place for general chat")
	if err != nil {
		return err
	}
	tech, err := newTopic("Tech Talk", "Discuss the latest in technology")
	if err != nil {
		return err
	}
	random, err := newTopic("Random Thoughts", "Anything goes here")
	if err != nil {
		return err
	}

	// Sohbetler
	newConversation := func(topicID, name string) (*models.Conversation, error) {
		c := &models.Conversation{TopicID: topicID, Name: name}
		if err := conversationRepo.Create(ctx, c); err != nil {
			return nil, fmt.Errorf("failed to create conversation %s: %w", name, err)
		}
		return c, nil
	}

	generalChat, err := newConversation(general.ID, "General Chat")
	if err != nil {
		return err
	}
	techUpdates, err := newConversation(tech.ID, "Tech Updates")
	if err != nil {
		return err
	}
	randomMusings, err := newConversation(random.ID, "Random Musings")
	if err != nil {
		return err
	}

	// Katılımcılar
	participants := []struct {
		conversationID string
		username       string
	}{
		{generalChat.ID, "alice"},
		{generalChat.ID, "bob"},
		{techUpdates.ID, "alice"},
		{techUpdates.ID, "charlie"},
		{randomMusings.ID, "bob"},
		{randomMusings.ID, "charlie"},
	}
	for _, p := range participants {
		if err := conversationRepo.AddParticipant(ctx, p.conversationID, users[p.username].ID); err != nil {
			return fmt.Errorf("failed to add participant: %w", err)
		}
	}

	// Abonelikler
	subscriptions := []struct {
		topicID  string
		username string
	}{
		{general.ID, "alice"},
		{general.ID, "bob"},
		{tech.ID, "alice"},
		{tech.ID, "charlie"},
		{random.ID, "bob"},
		{random.ID, "charlie"},
	}
	for _, s := range subscriptions {
		if err := topicRepo.Subscribe(ctx, s.topicID, users[s.username].ID); err != nil {
			return fmt.Errorf("failed to subscribe: %w", err)
		}
	}

	// Mesajlar — doğrudan repo'ya yazılır: boot sırasında bağlı client yok,
	// fan-out anlamsız.
	messages := []struct {
		conversationID string
		username       string
		content        string
	}{
		{generalChat.ID, "alice", "Hello, everyone!"},
		{generalChat.ID, "bob", "Hi Alice!"},
		{techUpdates.ID, "alice", "What's the latest in tech?"},
		{techUpdates.ID, "charlie", "AI is taking over!"},
		{randomMusings.ID, "bob", "Random thoughts are the best."},
		{randomMusings.ID, "charlie", "I agree!"},
	}
	for _, m := range messages {
		msg := &models.Message{
			ConversationID: m.conversationID,
			AuthorID:       users[m.username].ID,
			Content:        m.content,
		}
		if err := messageRepo.Create(ctx, msg); err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
	}

	// Dökümanlar
	pages := []struct {
		topicID string
		title   string
		content string
	}{
		{general.ID, "Welcome", "Welcome to the General Discussion topic!"},
		{tech.ID, "Tech Trends", "A summary of the latest trends in technology."},
		{random.ID, "Random Ideas", "A collection of random ideas and thoughts."},
	}
	for _, p := range pages {
		page := &models.Page{TopicID: p.topicID, Title: p.title, Content: p.content}
		if err := pageRepo.Create(ctx, page); err != nil {
			return fmt.Errorf("failed to create page: %w", err)
		}
	}

	log.Printf("[seed] done: %d users, 3 topics, 3 conversations, %d messages, %d pages",
		len(users), len(messages), len(pages))
	return nil
}
