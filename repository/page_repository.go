package repository

import (
	"context"

	"github.com/akinalp/sohbet/models"
)

// PageRepository, sayfa veritabanı işlemleri için interface.
type PageRepository interface {
	Create(ctx context.Context, page *models.Page) error
	GetByID(ctx context.Context, id string) (*models.Page, error)
	ListByTopic(ctx context.Context, topicID string) ([]models.Page, error)
}
