package services

import (
	"context"
	"fmt"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/repository"
)

// TopicService interface'i — konu (topic) yönetimi ve abonelikler.
type TopicService interface {
	Create(ctx context.Context, req *models.CreateTopicRequest) (*models.Topic, error)
	Get(ctx context.Context, topicID string) (*models.Topic, error)
	List(ctx context.Context) ([]models.Topic, error)
	// ListSubscribed, kullanıcının abone olduğu konuları sohbetleriyle
	// birlikte döner — client'ın sidebar'ı tek istekte dolar.
	ListSubscribed(ctx context.Context, userID string) ([]models.TopicWithConversations, error)
	Subscribe(ctx context.Context, topicID, userID string) error
	Unsubscribe(ctx context.Context, topicID, userID string) error
}

type topicService struct {
	topicRepo        repository.TopicRepository
	conversationRepo repository.ConversationRepository
}

// NewTopicService, constructor.
func NewTopicService(
	topicRepo repository.TopicRepository,
	conversationRepo repository.ConversationRepository,
) TopicService {
	return &topicService{
		topicRepo:        topicRepo,
		conversationRepo: conversationRepo,
	}
}

func (s *topicService) Create(ctx context.Context, req *models.CreateTopicRequest) (*models.Topic, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	topic := &models.Topic{Name: req.Name}
	if req.Description != "" {
		topic.Description = &req.Description
	}

	if err := s.topicRepo.Create(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *topicService) Get(ctx context.Context, topicID string) (*models.Topic, error) {
	return s.topicRepo.GetByID(ctx, topicID)
}

func (s *topicService) List(ctx context.Context) ([]models.Topic, error) {
	return s.topicRepo.List(ctx)
}

// ListSubscribed, abonelikleri sohbet listeleriyle zenginleştirir.
// N+1 sorgu burada kabul edilebilir — kullanıcı başına abonelik sayısı
// küçüktür ve SQLite'ta round-trip maliyeti yoktur.
func (s *topicService) ListSubscribed(ctx context.Context, userID string) ([]models.TopicWithConversations, error) {
	topics, err := s.topicRepo.ListSubscribed(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]models.TopicWithConversations, 0, len(topics))
	for _, topic := range topics {
		conversations, err := s.conversationRepo.ListByTopic(ctx, topic.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.TopicWithConversations{
			Topic:         topic,
			Conversations: conversations,
		})
	}
	return out, nil
}

// Subscribe, kullanıcıyı konuya abone eder. Zaten aboneyse no-op.
// Abonelik ancak reconnect'te ws tarafına yansır — aktif bağlantıların
// konu listesi bağlantı kurulurken sabitlenir.
func (s *topicService) Subscribe(ctx context.Context, topicID, userID string) error {
	// Konunun varlığını doğrula — FK hatası yerine net bir not found dönsün.
	if _, err := s.topicRepo.GetByID(ctx, topicID); err != nil {
		return err
	}
	return s.topicRepo.Subscribe(ctx, topicID, userID)
}

func (s *topicService) Unsubscribe(ctx context.Context, topicID, userID string) error {
	return s.topicRepo.Unsubscribe(ctx, topicID, userID)
}
