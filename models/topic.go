package models

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Topic, sohbetlerin ve sayfaların gruplandığı konuyu temsil eder.
// DB'deki "topics" tablosunun Go karşılığı.
// Abonelik (subscription) birimi konudur: kullanıcı bir konuya abone olur
// ve o konunun sohbetlerindeki aktivite ping'lerini alır.
type Topic struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"` // Nullable
	CreatedAt   time.Time `json:"created_at"`
}

// Subscription, bir kullanıcının bir konuya aboneliğini temsil eder.
// DB'deki "subscriptions" tablosunun Go karşılığı.
type Subscription struct {
	TopicID string `json:"topic_id"`
	UserID  string `json:"user_id"`
}

// TopicWithConversations, bir konuyu altındaki sohbetlerle birlikte taşır.
// Abone olunan konu listesi endpoint'inde kullanılır — client tek istekle
// sidebar'ı kurabilir.
type TopicWithConversations struct {
	Topic         Topic          `json:"topic"`
	Conversations []Conversation `json:"conversations"`
}

// CreateTopicRequest, yeni konu oluşturma isteği.
type CreateTopicRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"` // Opsiyonel
}

// Validate, CreateTopicRequest'in geçerli olup olmadığını kontrol eder.
func (r *CreateTopicRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	nameLen := utf8.RuneCountInString(r.Name)
	if nameLen < 1 || nameLen > 100 {
		return fmt.Errorf("topic name must be between 1 and 100 characters")
	}

	for _, ch := range r.Name {
		if !isValidNameChar(ch) {
			return fmt.Errorf("topic name contains invalid characters")
		}
	}

	r.Description = strings.TrimSpace(r.Description)
	if utf8.RuneCountInString(r.Description) > 1024 {
		return fmt.Errorf("topic description must be at most 1024 characters")
	}

	return nil
}

// isValidNameChar, konu/sohbet adında izin verilen karakterleri kontrol eder.
// unicode.IsLetter tüm dillerdeki harfleri kapsar (Türkçe ş/ç/ğ/ı/ö/ü dahil).
func isValidNameChar(ch rune) bool {
	return unicode.IsLetter(ch) ||
		unicode.IsDigit(ch) ||
		ch == '-' || ch == '_' || ch == ' '
}
