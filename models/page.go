package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Page, bir konuya bağlı serbest biçimli dokümanı temsil eder.
// DB'deki "pages" tablosunun Go karşılığı.
// Sayfalar mesaj akışının dışındadır — konu hakkında kalıcı içerik tutar
// (karşılama metni, notlar vb.).
type Page struct {
	ID        string    `json:"id"`
	TopicID   string    `json:"topic_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePageRequest, yeni sayfa oluşturma isteği.
type CreatePageRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate, CreatePageRequest'in geçerli olup olmadığını kontrol eder.
func (r *CreatePageRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	titleLen := utf8.RuneCountInString(r.Title)
	if titleLen < 1 || titleLen > 200 {
		return fmt.Errorf("page title must be between 1 and 200 characters")
	}

	r.Content = strings.TrimSpace(r.Content)
	if utf8.RuneCountInString(r.Content) > 65536 {
		return fmt.Errorf("page content must be at most 65536 characters")
	}

	return nil
}
