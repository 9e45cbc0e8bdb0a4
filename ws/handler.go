package ws

import (
	"context"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/akinalp/sohbet/models"
)

// TokenValidator, WebSocket handler'ın JWT doğrulaması için kullandığı interface.
//
// Neden services.AuthService yerine kendi interface'imizi tanımlıyoruz?
// Circular dependency'yi önlemek için:
// - services paketi ws.MessagePublisher'ı kullanıyor (fan-out için)
// - ws paketi services.AuthService'i kullansaydı → ws → services → ws döngüsü oluşurdu
//
// Interface Segregation Principle (ISP):
// WS handler'ın AuthService'in tüm metodlarına (Register, Login, Logout, vb.) ihtiyacı yok.
// Sadece ValidateAccessToken yeterli. Küçük, odaklı bir interface tanımlıyoruz.
// main.go'da authService bu interface'i otomatik olarak karşılar (Go'da implicit interface).
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
}

// SubscriptionLister, bağlantı kurulurken kullanıcının abone olduğu
// konuları çekmek için kullanılır. repository.TopicRepository karşılar.
type SubscriptionLister interface {
	SubscribedTopicIDs(ctx context.Context, userID string) ([]string, error)
}

// upgrader, HTTP bağlantısını WebSocket bağlantısına yükseltir.
//
// WebSocket Upgrade nedir?
// WebSocket, normal HTTP bağlantısı olarak başlar ve "upgrade" ile
// kalıcı, çift yönlü (bidirectional) bir bağlantıya dönüşür.
// HTTP: istek → yanıt → bağlantı kapanır
// WebSocket: bağlantı açık kalır, her iki taraf istediği zaman mesaj gönderebilir
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CheckOrigin: Production'da domain kontrolü yapılmalı.
	// Şimdilik tüm origin'lere izin veriyoruz (development için).
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler, WebSocket bağlantı isteklerini işleyen HTTP handler'ı.
type Handler struct {
	hub            *Hub
	tracker        *ActivityTracker
	tokenValidator TokenValidator
	subscriptions  SubscriptionLister
	participants   ParticipantChecker
	submit         SubmitFunc
}

// NewHandler, yeni bir WebSocket handler oluşturur.
//
// Parametrelerin hepsi interface'tir (submit bir fonksiyon tipi) —
// main.go'da authService, topicRepo, conversationRepo ve
// messageService.Submit bu slotları doldurur. Go'da interface'ler
// implicit'tir: metod imzası uyuşan her struct otomatik karşılar.
func NewHandler(
	hub *Hub,
	tracker *ActivityTracker,
	tokenValidator TokenValidator,
	subscriptions SubscriptionLister,
	participants ParticipantChecker,
	submit SubmitFunc,
) *Handler {
	return &Handler{
		hub:            hub,
		tracker:        tracker,
		tokenValidator: tokenValidator,
		subscriptions:  subscriptions,
		participants:   participants,
		submit:         submit,
	}
}

// HandleConnection, HTTP bağlantısını WebSocket'e yükseltir ve session'ı kaydeder.
//
// Neden normal auth middleware kullanmıyoruz?
// WebSocket bağlantısında HTTP header göndermek zordur (tarayıcı sınırlaması).
// Bu yüzden token URL query parameter'ı olarak gönderilir:
//
//	ws://server/ws?token=JWT_TOKEN
//
// Flow:
// 1. Query'den token al, doğrula (JWT imza kontrolü)
// 2. Kullanıcının abone olduğu konuları DB'den çek
// 3. HTTP → WebSocket upgrade
// 4. Session oluştur (yeni UUID), Hub'a ve Tracker'a kaydet
// 5. ready event'i gönder, ReadPump ve WritePump'ı başlat
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	// 1. Token'ı query parameter'dan al ve doğrula
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokenValidator.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	// 2. Abonelikler upgrade'den ÖNCE çekilir — DB hatası varsa bağlantı
	// hiç kurulmaz, client normal HTTP hatası alır.
	topicIDs, err := h.subscriptions.SubscribedTopicIDs(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("[ws] failed to load subscriptions for user %s: %v", claims.UserID, err)
		http.Error(w, "could not load subscriptions", http.StatusInternalServerError)
		return
	}

	// 3. HTTP → WebSocket upgrade
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for user %s: %v", claims.UserID, err)
		return
	}

	// 4. Session oluştur. Kimlik her bağlantıda yenidir — reconnect
	// taze bir session'dır, eski focus durumu geri gelmez.
	session := &Session{
		hub:          h.hub,
		conn:         conn,
		id:           uuid.NewString(),
		userID:       claims.UserID,
		username:     claims.Username,
		send:         make(chan []byte, sendBufferSize),
		done:         make(chan struct{}),
		participants: h.participants,
		submit:       h.submit,
	}

	h.hub.register <- session
	h.tracker.Register(session, topicIDs)

	// 5. İlk event: session kimliği, abone olunan konular ve kullanıcının
	// bekleyen aktivite işaretleri. Client listeyle hangi konulardan ping
	// bekleyeceğini bilir; işaretlerle badge'leri sıfırdan kurar — başka
	// bir sekmede birikmiş görülmemiş aktivite yeni sekmede de görünür.
	session.sendEvent(Event{
		Op: OpReady,
		Data: ReadyData{
			SessionID:          session.id,
			SubscribedTopicIDs: topicIDs,
			ActivityMarks:      h.tracker.PendingMarks(claims.UserID),
		},
	})

	// `go session.WritePump()` → yeni goroutine başlatır.
	// ReadPump mevcut goroutine'de çalışmalı — aksi halde bu fonksiyon hemen
	// döner ve HTTP handler sonlanır. ReadPump bağlantı kapanana kadar bloklar.
	go session.WritePump()
	session.ReadPump()
}
