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

// sqliteTopicRepo, TopicRepository interface'inin SQLite implementasyonu.
type sqliteTopicRepo struct {
	db database.TxQuerier
}

// NewSQLiteTopicRepo, constructor — interface döner.
func NewSQLiteTopicRepo(db database.TxQuerier) TopicRepository {
	return &sqliteTopicRepo{db: db}
}

func (r *sqliteTopicRepo) Create(ctx context.Context, topic *models.Topic) error {
	query := `
		INSERT INTO topics (id, name, description)
		VALUES (lower(hex(randomblob(8))), ?, ?)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		topic.Name,
		topic.Description,
	).Scan(&topic.ID, &topic.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}

	return nil
}

func (r *sqliteTopicRepo) GetByID(ctx context.Context, id string) (*models.Topic, error) {
	query := `SELECT id, name, description, created_at FROM topics WHERE id = ?`

	topic := &models.Topic{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&topic.ID, &topic.Name, &topic.Description, &topic.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic by id: %w", err)
	}

	return topic, nil
}

func (r *sqliteTopicRepo) List(ctx context.Context) ([]models.Topic, error) {
	query := `SELECT id, name, description, created_at FROM topics ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	defer rows.Close()

	return scanTopics(rows)
}

// ListSubscribed, kullanıcının abone olduğu konuları döner.
func (r *sqliteTopicRepo) ListSubscribed(ctx context.Context, userID string) ([]models.Topic, error) {
	query := `
		SELECT t.id, t.name, t.description, t.created_at
		FROM topics t
		INNER JOIN subscriptions s ON s.topic_id = t.id
		WHERE s.user_id = ?
		ORDER BY t.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribed topics: %w", err)
	}
	defer rows.Close()

	return scanTopics(rows)
}

func (r *sqliteTopicRepo) Subscribe(ctx context.Context, topicID, userID string) error {
	// ON CONFLICT DO NOTHING — tekrar abone olmak hata değildir (idempotent).
	query := `
		INSERT INTO subscriptions (topic_id, user_id)
		VALUES (?, ?)
		ON CONFLICT(topic_id, user_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, topicID, userID); err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return pkg.ErrNotFound
		}
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	return nil
}

func (r *sqliteTopicRepo) Unsubscribe(ctx context.Context, topicID, userID string) error {
	query := `DELETE FROM subscriptions WHERE topic_id = ? AND user_id = ?`

	if _, err := r.db.ExecContext(ctx, query, topicID, userID); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	return nil
}

func (r *sqliteTopicRepo) SubscribedTopicIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT topic_id FROM subscriptions WHERE user_id = ?`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscribed topic ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan topic id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating topic id rows: %w", err)
	}

	return ids, nil
}

// scanTopics, topic satırlarını slice'a okur.
func scanTopics(rows *sql.Rows) ([]models.Topic, error) {
	var topics []models.Topic
	for rows.Next() {
		var t models.Topic
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan topic row: %w", err)
		}
		topics = append(topics, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating topic rows: %w", err)
	}

	if topics == nil {
		topics = []models.Topic{}
	}

	return topics, nil
}
