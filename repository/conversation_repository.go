package repository

import (
	"context"

	"github.com/akinalp/sohbet/models"
)

// ConversationRepository, sohbet ve katılımcı veritabanı işlemleri için interface.
//
// IsParticipant, gerçek zamanlı core'un iki noktasında kullanılır:
// mesaj gönderiminde (ingress validasyonu) ve websocket focus geçişinde
// (bir session sadece katılımcısı olduğu sohbete odaklanabilir).
type ConversationRepository interface {
	Create(ctx context.Context, conversation *models.Conversation) error
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	ListByTopic(ctx context.Context, topicID string) ([]models.Conversation, error)

	AddParticipant(ctx context.Context, conversationID, userID string) error
	RemoveParticipant(ctx context.Context, conversationID, userID string) error
	ListParticipants(ctx context.Context, conversationID string) ([]models.User, error)
	IsParticipant(ctx context.Context, userID, conversationID string) (bool, error)
}
