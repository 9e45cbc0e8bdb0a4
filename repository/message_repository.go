package repository

import (
	"context"

	"github.com/akinalp/sohbet/models"
)

// MessageRepository, mesaj veritabanı işlemleri için interface.
//
// Create tek bir INSERT'tir — mesaj ya tamamen kalıcıdır ya da hiç
// oluşmamıştır; yarım yazım yoktur. Başarılı dönüşte message'ın ID ve
// CreatedAt alanları doldurulmuş olur; fan-out bu tamamlanmış mesaj
// ile yapılır (persistence happens-before notification).
//
// ListByConversation cursor-based pagination kullanır:
// beforeID = bu ID'den önceki mesajları getir (boşsa en yenilerden başla).
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	ListByConversation(ctx context.Context, conversationID string, beforeID string, limit int) ([]models.Message, error)
}
