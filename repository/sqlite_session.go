package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akinalp/sohbet/database"
	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
)

// sqliteAuthSessionRepo, AuthSessionRepository interface'inin SQLite implementasyonu.
type sqliteAuthSessionRepo struct {
	db database.TxQuerier
}

// NewSQLiteAuthSessionRepo, constructor — interface döner.
func NewSQLiteAuthSessionRepo(db database.TxQuerier) AuthSessionRepository {
	return &sqliteAuthSessionRepo{db: db}
}

func (r *sqliteAuthSessionRepo) Create(ctx context.Context, session *models.AuthSession) error {
	query := `
		INSERT INTO auth_sessions (id, user_id, refresh_token, expires_at)
		VALUES (?, ?, ?, ?)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		session.ID,
		session.UserID,
		session.RefreshToken,
		session.ExpiresAt,
	).Scan(&session.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create auth session: %w", err)
	}

	return nil
}

func (r *sqliteAuthSessionRepo) GetByRefreshToken(ctx context.Context, refreshToken string) (*models.AuthSession, error) {
	query := `
		SELECT id, user_id, refresh_token, expires_at, created_at
		FROM auth_sessions
		WHERE refresh_token = ?`

	session := &models.AuthSession{}
	err := r.db.QueryRowContext(ctx, query, refreshToken).Scan(
		&session.ID, &session.UserID, &session.RefreshToken,
		&session.ExpiresAt, &session.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get auth session: %w", err)
	}

	return session, nil
}

func (r *sqliteAuthSessionRepo) Delete(ctx context.Context, id string) error {
	// Idempotent — satır yoksa hata dönmez, logout tekrarlanabilir.
	if _, err := r.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete auth session: %w", err)
	}
	return nil
}

func (r *sqliteAuthSessionRepo) DeleteExpired(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM auth_sessions WHERE expires_at < CURRENT_TIMESTAMP`,
	); err != nil {
		return fmt.Errorf("failed to delete expired auth sessions: %w", err)
	}
	return nil
}
