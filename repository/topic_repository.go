package repository

import (
	"context"

	"github.com/akinalp/sohbet/models"
)

// TopicRepository, konu ve abonelik veritabanı işlemleri için interface.
//
// Abonelikler ayrı bir repository'ye bölünmedi — subscription satırları
// konudan bağımsız bir anlam taşımaz ve tüm sorgular topic ekseninde döner.
type TopicRepository interface {
	Create(ctx context.Context, topic *models.Topic) error
	GetByID(ctx context.Context, id string) (*models.Topic, error)
	List(ctx context.Context) ([]models.Topic, error)
	ListSubscribed(ctx context.Context, userID string) ([]models.Topic, error)

	Subscribe(ctx context.Context, topicID, userID string) error
	Unsubscribe(ctx context.Context, topicID, userID string) error
	// SubscribedTopicIDs, kullanıcının abone olduğu konu ID'lerini döner.
	// Websocket bağlantısı kurulurken session'ın ambient activity kaydı
	// için kullanılır.
	SubscribedTopicIDs(ctx context.Context, userID string) ([]string, error)
}
