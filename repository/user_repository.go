// Package repository, veritabanı erişim katmanını barındırır.
//
// Her entity için bir interface + bir SQLite implementasyonu vardır.
// Service katmanı interface'e bağımlıdır — testlerde hand-written fake,
// production'da SQLite implementasyonu geçilir.
package repository

import (
	"context"

	"github.com/akinalp/sohbet/models"
)

// UserRepository, kullanıcı veritabanı işlemleri için interface.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
