package services

import (
	"context"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/repository"
	"github.com/akinalp/sohbet/ws"
)

// previewLimit: Aktivite ping'ine eklenen içerik önizlemesinin maksimum
// uzunluğu (rune). Ping hafif kalmalı — tam içerik Hub'dan veya HTTP'den gelir.
const previewLimit = 80

// MessageService interface'i — mesaj giriş noktası ve geçmiş okuma.
type MessageService interface {
	// Submit, tek mesaj giriş noktasıdır. HTTP handler'ı da ws
	// message_create operasyonu da buradan geçer.
	Submit(ctx context.Context, conversationID, authorID, content string) (*models.Message, error)
	List(ctx context.Context, conversationID, requesterID, beforeID string, limit int) (*models.MessagePage, error)
}

// messageService, MessageService interface'inin implementasyonu.
//
// Publisher ve recorder ws paketinin küçük interface'leridir — main.go'da
// Hub ve ActivityTracker bağlanır. Test ederken fake'leriyle değiştirilir.
type messageService struct {
	messageRepo      repository.MessageRepository
	conversationRepo repository.ConversationRepository
	userRepo         repository.UserRepository
	publisher        ws.MessagePublisher
	recorder         ws.ActivityRecorder

	// convLocks: conversationID başına bir mutex.
	//
	// Neden global tek kilit değil?
	// Sıralama garantisi sohbet BAZLIDIR: aynı sohbetteki iki mesajın
	// kalıcılık sırası ile yayın sırası aynı olmalıdır. Farklı sohbetler
	// birbirini beklememelidir — kilit sohbet başına tutulur, yoğun bir
	// sohbet diğerlerini yavaşlatmaz.
	convLocks sync.Map // conversationID → *sync.Mutex
}

// NewMessageService, constructor.
func NewMessageService(
	messageRepo repository.MessageRepository,
	conversationRepo repository.ConversationRepository,
	userRepo repository.UserRepository,
	publisher ws.MessagePublisher,
	recorder ws.ActivityRecorder,
) MessageService {
	return &messageService{
		messageRepo:      messageRepo,
		conversationRepo: conversationRepo,
		userRepo:         userRepo,
		publisher:        publisher,
		recorder:         recorder,
	}
}

// Submit, bir mesajı kalıcılaştırır ve gerçek zamanlı dağıtımını tetikler.
//
// Sıralama sözleşmesi:
//  1. Validation — hata varsa HİÇBİR yan etki oluşmaz
//  2. DB'ye yaz — kalıcılık bildirimin ön koşuludur
//  3. Hub'a yayınla — sohbete odaklanmış session'lar tam mesajı alır
//  4. Tracker'a kaydet — abone olup odaklanmamış olanlara ping gider
//
// 2-4 adımları sohbet bazlı kilit altında koşar: aynı sohbette persist
// sırası ile publish sırası asla çaprazlanamaz. DB yazımı başarısızsa
// fan-out hiç yapılmaz — hiçbir alıcı var olmayan bir mesajı görmez.
func (s *messageService) Submit(ctx context.Context, conversationID, authorID, content string) (*models.Message, error) {
	req := &models.CreateMessageRequest{Content: content}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}
	content = req.Content // Validate içeriği trim'ler

	conversation, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err // ErrNotFound olabilir
	}

	ok, err := s.conversationRepo.IsParticipant(ctx, authorID, conversationID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: not a participant of this conversation", pkg.ErrForbidden)
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	// Author mesaja iliştirilir — alıcılar ekstra fetch yapmadan render eder.
	message := &models.Message{
		ConversationID: conversationID,
		AuthorID:       authorID,
		Content:        content,
		Author:         author,
	}

	mu := s.lockFor(conversationID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	// Fan-out: önce odaklanmış session'lara tam mesaj, sonra konuya
	// abone diğerlerine hafif ping. Dağıtım hataları buraya dönmez —
	// yazılamayan session loglanıp düşürülür, gönderici etkilenmez.
	s.publisher.PublishMessage(conversationID, message)
	s.recorder.RecordActivity(conversation.TopicID, conversationID, preview(content), author.Username)

	return message, nil
}

// List, sohbet geçmişini cursor bazlı sayfalar halinde döner.
// Sadece katılımcılar okuyabilir. Mesajlar eski → yeni sıralı döner.
func (s *messageService) List(ctx context.Context, conversationID, requesterID, beforeID string, limit int) (*models.MessagePage, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	ok, err := s.conversationRepo.IsParticipant(ctx, requesterID, conversationID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: not a participant of this conversation", pkg.ErrForbidden)
	}

	// limit+1 çek: fazladan satır geldiyse daha eski sayfa vardır.
	messages, err := s.messageRepo.ListByConversation(ctx, conversationID, beforeID, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := false
	if len(messages) > limit {
		hasMore = true
		messages = messages[:limit]
	}

	// Repo yeniden eskiye döner (cursor için); görüntüleme sırası tersi.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return &models.MessagePage{Messages: messages, HasMore: hasMore}, nil
}

// lockFor, sohbete ait mutex'i döner (yoksa oluşturur).
//
// sync.Map nedir?
// Concurrent erişime dayanıklı map — LoadOrStore atomiktir, iki goroutine
// aynı sohbet için asla iki farklı mutex alamaz.
func (s *messageService) lockFor(conversationID string) *sync.Mutex {
	mu, _ := s.convLocks.LoadOrStore(conversationID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// preview, ping'e eklenecek içerik önizlemesini üretir.
func preview(content string) string {
	if utf8.RuneCountInString(content) <= previewLimit {
		return content
	}
	runes := []rune(content)
	return string(runes[:previewLimit]) + "…"
}
