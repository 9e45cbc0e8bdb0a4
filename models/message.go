package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Message, bir sohbet mesajını temsil eder.
// DB'deki "messages" tablosunun Go karşılığı.
//
// Mesajlar append-only'dir: oluşturulduktan sonra düzenlenemez ve silinemez.
// Bu yüzden edited_at benzeri alanlar yoktur.
//
// Author alanı JOIN sorgusu ile doldurulur — veritabanında ayrı tablodadır
// ama API response'unda ve push payload'ında birlikte döner, client ekstra
// lookup yapmaz.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	AuthorID       string    `json:"author_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	Author         *User     `json:"author,omitempty"` // JOIN ile gelen yazar bilgisi
}

// MessagePage, cursor-based pagination sonucu.
//
// Offset-based ("LIMIT 50 OFFSET 100") yerine "bu ID'den önceki 50 mesajı
// getir" kullanılır — yeni mesaj eklendiğinde sayfa kayması olmaz.
type MessagePage struct {
	Messages []Message `json:"messages"`
	HasMore  bool      `json:"has_more"` // Daha eski mesajlar var mı?
}

// CreateMessageRequest, yeni mesaj gönderme isteği.
type CreateMessageRequest struct {
	Content string `json:"content"`
}

// Validate, CreateMessageRequest'in geçerli olup olmadığını kontrol eder.
// İçerik 1-2000 karakter arası olmalı.
func (r *CreateMessageRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	contentLen := utf8.RuneCountInString(r.Content)
	if contentLen < 1 {
		return fmt.Errorf("message content is required")
	}
	if contentLen > 2000 {
		return fmt.Errorf("message content must be at most 2000 characters")
	}
	return nil
}
