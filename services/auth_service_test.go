package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
)

// In-memory fake'ler — auth akışı DB olmadan uçtan uca test edilir.

type memUserRepo struct {
	byID       map[string]*models.User
	byUsername map[string]*models.User
	nextID     int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byID:       make(map[string]*models.User),
		byUsername: make(map[string]*models.User),
	}
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) error {
	if _, ok := r.byUsername[user.Username]; ok {
		return pkg.ErrAlreadyExists
	}
	r.nextID++
	user.ID = "u" + string(rune('0'+r.nextID))
	user.CreatedAt = time.Now()
	stored := *user
	r.byID[user.ID] = &stored
	r.byUsername[user.Username] = &stored
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, pkg.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, ok := r.byUsername[username]
	if !ok {
		return nil, pkg.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

type memAuthSessionRepo struct {
	byToken map[string]*models.AuthSession
}

func newMemAuthSessionRepo() *memAuthSessionRepo {
	return &memAuthSessionRepo{byToken: make(map[string]*models.AuthSession)}
}

func (r *memAuthSessionRepo) Create(ctx context.Context, session *models.AuthSession) error {
	session.CreatedAt = time.Now()
	stored := *session
	r.byToken[session.RefreshToken] = &stored
	return nil
}

func (r *memAuthSessionRepo) GetByRefreshToken(ctx context.Context, refreshToken string) (*models.AuthSession, error) {
	s, ok := r.byToken[refreshToken]
	if !ok {
		return nil, pkg.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *memAuthSessionRepo) Delete(ctx context.Context, id string) error {
	for token, s := range r.byToken {
		if s.ID == id {
			delete(r.byToken, token)
		}
	}
	return nil
}

func (r *memAuthSessionRepo) DeleteExpired(ctx context.Context) error { return nil }

func newTestAuthService() AuthService {
	return NewAuthService(newMemUserRepo(), newMemAuthSessionRepo(), "test-secret-key", 15, 7)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	tokens, err := svc.Register(ctx, &models.CreateUserRequest{Username: "alice", Password: "password123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatal("register should return both tokens")
	}
	if tokens.User.PasswordHash != "" {
		t.Error("password hash must not leak in the response")
	}

	// Access token doğrulanabilmeli ve claims doğru olmalı.
	claims, err := svc.ValidateAccessToken(tokens.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.Username != "alice" || claims.UserID != tokens.User.ID {
		t.Errorf("claims = %+v", claims)
	}

	// Doğru şifreyle login
	if _, err := svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "password123"}); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Yanlış şifre — belirsiz mesajlı unauthorized
	_, err = svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "wrong-pass"})
	if !errors.Is(err, pkg.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}

	// Olmayan kullanıcı — aynı hata sınıfı, kullanıcı varlığı sızmaz
	_, err = svc.Login(ctx, &models.LoginRequest{Username: "nobody", Password: "password123"})
	if !errors.Is(err, pkg.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.CreateUserRequest
	}{
		{"short username", models.CreateUserRequest{Username: "ab", Password: "password123"}},
		{"short password", models.CreateUserRequest{Username: "alice", Password: "pw"}},
		{"invalid chars", models.CreateUserRequest{Username: "al ice!", Password: "password123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, &tt.req); !errors.Is(err, pkg.ErrBadRequest) {
				t.Fatalf("err = %v, want ErrBadRequest", err)
			}
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, &models.CreateUserRequest{Username: "alice", Password: "password123"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := svc.Register(ctx, &models.CreateUserRequest{Username: "alice", Password: "password456"})
	if !errors.Is(err, pkg.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	tokens, err := svc.Register(ctx, &models.CreateUserRequest{Username: "alice", Password: "password123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	rotated, err := svc.RefreshToken(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if rotated.RefreshToken == tokens.RefreshToken {
		t.Error("refresh token should rotate")
	}

	// Eski refresh token artık geçersiz — rotation tek kullanımlıktır.
	if _, err := svc.RefreshToken(ctx, tokens.RefreshToken); !errors.Is(err, pkg.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestLogout(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	tokens, err := svc.Register(ctx, &models.CreateUserRequest{Username: "alice", Password: "password123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.Logout(ctx, tokens.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	// Logout sonrası refresh çalışmamalı.
	if _, err := svc.RefreshToken(ctx, tokens.RefreshToken); !errors.Is(err, pkg.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	// Bilinmeyen token ile logout no-op.
	if err := svc.Logout(ctx, "unknown-token"); err != nil {
		t.Fatalf("Logout unknown token: %v", err)
	}
}

func TestValidateAccessTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService()

	if _, err := svc.ValidateAccessToken("not-a-jwt"); !errors.Is(err, pkg.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}
