package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/akinalp/sohbet/database"
	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
)

// sqliteConversationRepo, ConversationRepository interface'inin SQLite implementasyonu.
type sqliteConversationRepo struct {
	db database.TxQuerier
}

// NewSQLiteConversationRepo, constructor — interface döner.
func NewSQLiteConversationRepo(db database.TxQuerier) ConversationRepository {
	return &sqliteConversationRepo{db: db}
}

func (r *sqliteConversationRepo) Create(ctx context.Context, conversation *models.Conversation) error {
	query := `
		INSERT INTO conversations (id, topic_id, name)
		VALUES (lower(hex(randomblob(8))), ?, ?)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		conversation.TopicID,
		conversation.Name,
	).Scan(&conversation.ID, &conversation.CreatedAt)

	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return fmt.Errorf("%w: topic does not exist", pkg.ErrNotFound)
		}
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	return nil
}

func (r *sqliteConversationRepo) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	query := `SELECT id, topic_id, name, created_at FROM conversations WHERE id = ?`

	conv := &models.Conversation{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&conv.ID, &conv.TopicID, &conv.Name, &conv.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation by id: %w", err)
	}

	return conv, nil
}

func (r *sqliteConversationRepo) ListByTopic(ctx context.Context, topicID string) ([]models.Conversation, error) {
	query := `
		SELECT id, topic_id, name, created_at
		FROM conversations
		WHERE topic_id = ?
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations by topic: %w", err)
	}
	defer rows.Close()

	var convs []models.Conversation
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.TopicID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		convs = append(convs, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversation rows: %w", err)
	}

	if convs == nil {
		convs = []models.Conversation{}
	}

	return convs, nil
}

func (r *sqliteConversationRepo) AddParticipant(ctx context.Context, conversationID, userID string) error {
	// ON CONFLICT DO NOTHING — tekrar eklemek hata değildir (idempotent).
	query := `
		INSERT INTO participants (conversation_id, user_id)
		VALUES (?, ?)
		ON CONFLICT(conversation_id, user_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, conversationID, userID); err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return pkg.ErrNotFound
		}
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

func (r *sqliteConversationRepo) RemoveParticipant(ctx context.Context, conversationID, userID string) error {
	query := `DELETE FROM participants WHERE conversation_id = ? AND user_id = ?`

	if _, err := r.db.ExecContext(ctx, query, conversationID, userID); err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	return nil
}

func (r *sqliteConversationRepo) ListParticipants(ctx context.Context, conversationID string) ([]models.User, error) {
	query := `
		SELECT u.id, u.username, u.created_at
		FROM users u
		INNER JOIN participants p ON p.user_id = u.id
		WHERE p.conversation_id = ?
		ORDER BY u.username ASC`

	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}

	if users == nil {
		users = []models.User{}
	}

	return users, nil
}

func (r *sqliteConversationRepo) IsParticipant(ctx context.Context, userID, conversationID string) (bool, error) {
	query := `SELECT 1 FROM participants WHERE conversation_id = ? AND user_id = ?`

	var one int
	err := r.db.QueryRowContext(ctx, query, conversationID, userID).Scan(&one)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}

	return true, nil
}
