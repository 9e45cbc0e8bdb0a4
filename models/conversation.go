package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Conversation, bir konu altındaki sıralı mesaj akışını temsil eder.
// DB'deki "conversations" tablosunun Go karşılığı.
// Katılım (participant) ve focus birimi sohbettir: bir kullanıcı sadece
// katılımcısı olduğu sohbetin mesajlarını okuyup yazabilir.
type Conversation struct {
	ID        string    `json:"id"`
	TopicID   string    `json:"topic_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Participant, bir kullanıcının bir sohbete katılımını temsil eder.
// DB'deki "participants" tablosunun Go karşılığı.
type Participant struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
}

// ConversationDetail, bir sohbeti katılımcılarıyla birlikte taşır.
type ConversationDetail struct {
	Conversation Conversation `json:"conversation"`
	Participants []User       `json:"participants"`
}

// CreateConversationRequest, yeni sohbet oluşturma isteği.
type CreateConversationRequest struct {
	Name string `json:"name"`
}

// Validate, CreateConversationRequest'in geçerli olup olmadığını kontrol eder.
func (r *CreateConversationRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	nameLen := utf8.RuneCountInString(r.Name)
	if nameLen < 1 || nameLen > 100 {
		return fmt.Errorf("conversation name must be between 1 and 100 characters")
	}

	for _, ch := range r.Name {
		if !isValidNameChar(ch) {
			return fmt.Errorf("conversation name contains invalid characters")
		}
	}

	return nil
}

// AddParticipantRequest, sohbete katılımcı ekleme isteği.
type AddParticipantRequest struct {
	UserID string `json:"user_id"`
}

// Validate, AddParticipantRequest'in geçerli olup olmadığını kontrol eder.
func (r *AddParticipantRequest) Validate() error {
	r.UserID = strings.TrimSpace(r.UserID)
	if r.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	return nil
}
