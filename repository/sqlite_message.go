package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/akinalp/sohbet/database"
	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
)

// sqliteMessageRepo, MessageRepository interface'inin SQLite implementasyonu.
type sqliteMessageRepo struct {
	db database.TxQuerier
}

// NewSQLiteMessageRepo, constructor — interface döner.
func NewSQLiteMessageRepo(db database.TxQuerier) MessageRepository {
	return &sqliteMessageRepo{db: db}
}

func (r *sqliteMessageRepo) Create(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, author_id, content)
		VALUES (lower(hex(randomblob(8))), ?, ?, ?)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		message.ConversationID,
		message.AuthorID,
		message.Content,
	).Scan(&message.ID, &message.CreatedAt)

	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return fmt.Errorf("%w: conversation does not exist", pkg.ErrNotFound)
		}
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// ListByConversation, cursor-based pagination ile mesajları getirir.
//
// Sorgu mantığı:
// 1. beforeID boşsa → en yeni mesajlardan başla
// 2. beforeID doluysa → cursor satırından öncekileri getir. Karşılaştırma
//    (created_at, id) çifti üzerinden yapılır: CURRENT_TIMESTAMP saniye
//    hassasiyetindedir, aynı saniyeye düşen mesajlar sadece created_at ile
//    karşılaştırılsaydı sayfalar arasında kaybolurdu.
// 3. ORDER BY created_at DESC, id DESC → kararlı sıralama
//
// Satırlar DESC döner; service katmanı display için ters çevirir
// (en eski üstte). Yazar bilgisi LEFT JOIN ile gelir — kullanıcı
// silinmiş olsa bile mesaj görünür.
func (r *sqliteMessageRepo) ListByConversation(ctx context.Context, conversationID string, beforeID string, limit int) ([]models.Message, error) {
	var query string
	var args []any

	if beforeID == "" {
		query = `
			SELECT m.id, m.conversation_id, m.author_id, m.content, m.created_at,
			       u.id, u.username, u.created_at
			FROM messages m
			LEFT JOIN users u ON m.author_id = u.id
			WHERE m.conversation_id = ?
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT ?`
		args = []any{conversationID, limit}
	} else {
		query = `
			SELECT m.id, m.conversation_id, m.author_id, m.content, m.created_at,
			       u.id, u.username, u.created_at
			FROM messages m
			LEFT JOIN users u ON m.author_id = u.id
			WHERE m.conversation_id = ?
			  AND (m.created_at, m.id) < (SELECT created_at, id FROM messages WHERE id = ?)
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT ?`
		args = []any{conversationID, beforeID, limit}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		var author models.User
		var authorID sql.NullString
		var authorName sql.NullString
		var authorCreated sql.NullTime

		if err := rows.Scan(
			&msg.ID, &msg.ConversationID, &msg.AuthorID, &msg.Content, &msg.CreatedAt,
			&authorID, &authorName, &authorCreated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}

		if authorID.Valid {
			author.ID = authorID.String
			author.Username = authorName.String
			author.CreatedAt = authorCreated.Time
			msg.Author = &author
		}

		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	return messages, nil
}
