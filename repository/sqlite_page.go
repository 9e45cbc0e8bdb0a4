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

// sqlitePageRepo, PageRepository interface'inin SQLite implementasyonu.
type sqlitePageRepo struct {
	db database.TxQuerier
}

// NewSQLitePageRepo, constructor — interface döner.
func NewSQLitePageRepo(db database.TxQuerier) PageRepository {
	return &sqlitePageRepo{db: db}
}

func (r *sqlitePageRepo) Create(ctx context.Context, page *models.Page) error {
	query := `
		INSERT INTO pages (id, topic_id, title, content)
		VALUES (lower(hex(randomblob(8))), ?, ?, ?)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		page.TopicID,
		page.Title,
		page.Content,
	).Scan(&page.ID, &page.CreatedAt)

	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return fmt.Errorf("%w: topic does not exist", pkg.ErrNotFound)
		}
		return fmt.Errorf("failed to create page: %w", err)
	}

	return nil
}

func (r *sqlitePageRepo) GetByID(ctx context.Context, id string) (*models.Page, error) {
	query := `SELECT id, topic_id, title, content, created_at FROM pages WHERE id = ?`

	page := &models.Page{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&page.ID, &page.TopicID, &page.Title, &page.Content, &page.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page by id: %w", err)
	}

	return page, nil
}

func (r *sqlitePageRepo) ListByTopic(ctx context.Context, topicID string) ([]models.Page, error) {
	query := `
		SELECT id, topic_id, title, content, created_at
		FROM pages
		WHERE topic_id = ?
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages by topic: %w", err)
	}
	defer rows.Close()

	var pages []models.Page
	for rows.Next() {
		var p models.Page
		if err := rows.Scan(&p.ID, &p.TopicID, &p.Title, &p.Content, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan page row: %w", err)
		}
		pages = append(pages, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating page rows: %w", err)
	}

	if pages == nil {
		pages = []models.Page{}
	}

	return pages, nil
}
