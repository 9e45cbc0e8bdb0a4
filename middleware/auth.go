// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Middleware Pattern nedir?
// Her HTTP request, handler'a ulaşmadan önce bir veya daha fazla middleware'dan geçer.
// Middleware'lar zincir şeklinde çalışır: Auth → Handler
//
// Go'da middleware bir fonksiyondur:
//
//	func(next http.Handler) http.Handler
//
// "next" parametresi zincirdeki bir sonraki handler'dır.
// Middleware kendi işini yapar (ör: token doğrula), sonra next'i çağırır.
// Eğer hata varsa next'i çağırmaz → request burada durur.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/akinalp/sohbet/handlers"
	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/pkg/cache"
	"github.com/akinalp/sohbet/repository"
	"github.com/akinalp/sohbet/services"
)

// userCacheTTL: Doğrulanmış kullanıcı kaydının cache'te kalma süresi.
// Kısa tutulur — silinen kullanıcı en geç bu süre sonunda yetkisiz kalır.
const userCacheTTL = 30 * time.Second

// AuthMiddleware, JWT token doğrulama middleware'ı.
type AuthMiddleware struct {
	authService services.AuthService
	userRepo    repository.UserRepository

	// userCache: userID → User. Her request'te DB'ye gitmemek için
	// doğrulanmış kullanıcılar kısa süreli cache'lenir.
	userCache *cache.TTLCache[string, *models.User]
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(authService services.AuthService, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		userRepo:    userRepo,
		userCache:   cache.New[string, *models.User](userCacheTTL, time.Minute),
	}
}

// Close, cache'in arka plan temizlik goroutine'ini durdurur.
func (m *AuthMiddleware) Close() {
	m.userCache.Close()
}

// Require, JWT token zorunlu kılan middleware.
// Token yoksa veya geçersizse → 401 Unauthorized.
//
// HTTP header formatı: Authorization: Bearer <token>
//
// Middleware nasıl çalışır?
// 1. "Authorization" header'ını oku
// 2. "Bearer " prefix'ini kaldır → raw token string
// 3. AuthService.ValidateAccessToken() ile doğrula
// 4. Token geçerliyse → kullanıcıyı getir (cache/DB) → context'e ekle → next
// 5. Geçersizse → 401 döndür, next ÇAĞIRILMAZ
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Header'dan token'ı al
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		// 2. "Bearer " prefix'ini kaldır
		if !strings.HasPrefix(authHeader, "Bearer ") {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "invalid authorization format, use: Bearer <token>")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		// 3. Token'ı doğrula
		claims, err := m.authService.ValidateAccessToken(tokenString)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		// 4. Kullanıcıyı getir — token geçerli ama kullanıcı silinmiş olabilir.
		// Önce cache, yoksa DB.
		user, ok := m.userCache.Get(claims.UserID)
		if !ok {
			user, err = m.userRepo.GetByID(r.Context(), claims.UserID)
			if err != nil {
				pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found")
				return
			}
			// Password hash'i temizle — context'te taşınmamalı
			user.PasswordHash = ""
			m.userCache.Set(claims.UserID, user)
		}

		// 5. Context'e kullanıcıyı ekle
		// context.WithValue: mevcut context'e key-value ekler.
		// Downstream handler'lar handlers.CurrentUser(r) ile erişir.
		ctx := context.WithValue(r.Context(), handlers.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
