package services

import (
	"context"
	"fmt"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/repository"
)

// ConversationService interface'i — sohbet ve katılımcı yönetimi.
type ConversationService interface {
	Create(ctx context.Context, topicID, creatorID string, req *models.CreateConversationRequest) (*models.Conversation, error)
	GetDetail(ctx context.Context, conversationID string) (*models.ConversationDetail, error)
	ListByTopic(ctx context.Context, topicID string) ([]models.Conversation, error)
	AddParticipant(ctx context.Context, conversationID, requesterID, userID string) error
	RemoveParticipant(ctx context.Context, conversationID, requesterID, userID string) error
}

type conversationService struct {
	conversationRepo repository.ConversationRepository
	topicRepo        repository.TopicRepository
	userRepo         repository.UserRepository
}

// NewConversationService, constructor.
func NewConversationService(
	conversationRepo repository.ConversationRepository,
	topicRepo repository.TopicRepository,
	userRepo repository.UserRepository,
) ConversationService {
	return &conversationService{
		conversationRepo: conversationRepo,
		topicRepo:        topicRepo,
		userRepo:         userRepo,
	}
}

// Create, konu altında yeni bir sohbet açar.
// Sohbeti açan kullanıcı otomatik olarak ilk katılımcı olur.
func (s *conversationService) Create(ctx context.Context, topicID, creatorID string, req *models.CreateConversationRequest) (*models.Conversation, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if _, err := s.topicRepo.GetByID(ctx, topicID); err != nil {
		return nil, err
	}

	conversation := &models.Conversation{
		TopicID: topicID,
		Name:    req.Name,
	}
	if err := s.conversationRepo.Create(ctx, conversation); err != nil {
		return nil, err
	}

	if err := s.conversationRepo.AddParticipant(ctx, conversation.ID, creatorID); err != nil {
		return nil, err
	}

	return conversation, nil
}

// GetDetail, sohbeti katılımcı listesiyle birlikte döner.
func (s *conversationService) GetDetail(ctx context.Context, conversationID string) (*models.ConversationDetail, error) {
	conversation, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	participants, err := s.conversationRepo.ListParticipants(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	return &models.ConversationDetail{
		Conversation: *conversation,
		Participants: participants,
	}, nil
}

func (s *conversationService) ListByTopic(ctx context.Context, topicID string) ([]models.Conversation, error) {
	if _, err := s.topicRepo.GetByID(ctx, topicID); err != nil {
		return nil, err
	}
	return s.conversationRepo.ListByTopic(ctx, topicID)
}

// AddParticipant, sohbete yeni katılımcı ekler.
// Sadece mevcut bir katılımcı başkasını ekleyebilir. Zaten katılımcıysa no-op.
func (s *conversationService) AddParticipant(ctx context.Context, conversationID, requesterID, userID string) error {
	ok, err := s.conversationRepo.IsParticipant(ctx, requesterID, conversationID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: not a participant of this conversation", pkg.ErrForbidden)
	}

	// Eklenecek kullanıcının varlığını doğrula
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}

	return s.conversationRepo.AddParticipant(ctx, conversationID, userID)
}

// RemoveParticipant, katılımcıyı sohbetten çıkarır.
// Kullanıcı kendini her zaman çıkarabilir; başkasını çıkarmak için
// katılımcı olmak gerekir.
func (s *conversationService) RemoveParticipant(ctx context.Context, conversationID, requesterID, userID string) error {
	if requesterID != userID {
		ok, err := s.conversationRepo.IsParticipant(ctx, requesterID, conversationID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: not a participant of this conversation", pkg.ErrForbidden)
		}
	}

	return s.conversationRepo.RemoveParticipant(ctx, conversationID, userID)
}
