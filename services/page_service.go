package services

import (
	"context"
	"fmt"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/repository"
)

// PageService interface'i — konu altındaki kalıcı dökümanlar.
// Page'ler mesaj akışının dışındadır: gerçek zamanlı dağıtıma girmez,
// normal HTTP istekleriyle okunup yazılır.
type PageService interface {
	Create(ctx context.Context, topicID string, req *models.CreatePageRequest) (*models.Page, error)
	Get(ctx context.Context, pageID string) (*models.Page, error)
	ListByTopic(ctx context.Context, topicID string) ([]models.Page, error)
}

type pageService struct {
	pageRepo  repository.PageRepository
	topicRepo repository.TopicRepository
}

// NewPageService, constructor.
func NewPageService(pageRepo repository.PageRepository, topicRepo repository.TopicRepository) PageService {
	return &pageService{pageRepo: pageRepo, topicRepo: topicRepo}
}

func (s *pageService) Create(ctx context.Context, topicID string, req *models.CreatePageRequest) (*models.Page, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if _, err := s.topicRepo.GetByID(ctx, topicID); err != nil {
		return nil, err
	}

	page := &models.Page{
		TopicID: topicID,
		Title:   req.Title,
		Content: req.Content,
	}
	if err := s.pageRepo.Create(ctx, page); err != nil {
		return nil, err
	}
	return page, nil
}

func (s *pageService) Get(ctx context.Context, pageID string) (*models.Page, error) {
	return s.pageRepo.GetByID(ctx, pageID)
}

func (s *pageService) ListByTopic(ctx context.Context, topicID string) ([]models.Page, error) {
	if _, err := s.topicRepo.GetByID(ctx, topicID); err != nil {
		return nil, err
	}
	return s.pageRepo.ListByTopic(ctx, topicID)
}
