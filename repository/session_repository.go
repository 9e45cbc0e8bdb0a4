package repository

import (
	"context"

	"github.com/akinalp/sohbet/models"
)

// AuthSessionRepository, refresh token oturumları için interface.
type AuthSessionRepository interface {
	Create(ctx context.Context, session *models.AuthSession) error
	GetByRefreshToken(ctx context.Context, refreshToken string) (*models.AuthSession, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) error
}
