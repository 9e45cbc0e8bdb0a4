package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/akinalp/sohbet/pkg"
)

// WebSocket bağlantı sabitleri
const (
	// writeWait: Bir mesajı yazmak için maksimum bekleme süresi.
	// Bu süre aşılırsa bağlantı kapatılır (ağ sorunu olabilir).
	writeWait = 10 * time.Second

	// pongWait: Client'ın heartbeat göndermesi için beklenen maksimum süre.
	// 3 heartbeat kaçırma = 30s × 3 = 90s.
	// Bu sürede heartbeat gelmezse client bağlantısı kopmuş sayılır.
	pongWait = 90 * time.Second

	// maxMessageSize: Client'ın gönderebileceği maksimum mesaj boyutu (byte).
	// WebSocket mesajları küçük olmalı — büyük veri HTTP ile gönderilir.
	maxMessageSize = 8192

	// sendBufferSize: Her session'ın send channel'ının buffer boyutu.
	// Buffer doluysa (client yavaş) session disconnect edilir — yavaş bir
	// alıcının tüm sohbeti yavaşlatmasına izin verilmez.
	sendBufferSize = 256

	// opTimeout: Client operasyonlarının (focus, mesaj gönderimi) DB'ye
	// dokunan kısımları için üst sınır.
	opTimeout = 5 * time.Second
)

// ParticipantChecker, focus isteklerinde katılımcı kontrolü için kullanılan
// interface. Circular dependency'yi önlemek için burada tanımlıdır:
// services paketi ws.MessagePublisher'ı kullanıyor, ws paketi
// services'e bağlansaydı ws → services → ws döngüsü oluşurdu.
// Pratikte repository.ConversationRepository bu interface'i karşılar.
type ParticipantChecker interface {
	IsParticipant(ctx context.Context, userID, conversationID string) (bool, error)
}

// SubmitFunc, ws üzerinden gelen mesaj gönderimini service katmanına
// ileten callback. main.go'da messageService.Submit'e bağlanır —
// doğrulama, kalıcılık ve fan-out sorumluluğu tamamen service'indir.
type SubmitFunc func(ctx context.Context, conversationID, authorID, content string) error

// Session, tek bir WebSocket bağlantısını temsil eder.
//
// Her bağlantı için iki goroutine oluşturulur:
// - ReadPump: Client'dan gelen operasyonları okur ve işler
// - WritePump: send channel'ından gelen event'leri bağlantıya yazar
//
// Neden iki goroutine?
// gorilla/websocket aynı anda sadece bir okuma ve bir yazma işlemi destekler.
// İki ayrı goroutine kullanarak okuma ve yazma birbirini bloklamaz.
//
// Bir session'ın TÜM inbound operasyonları (focus, unfocus, mesaj
// gönderimi) ReadPump goroutine'inde sırayla işlenir. Bu, focus
// geçişlerinin yarışmasını yapısal olarak imkansız kılar: aynı session'dan
// gelen iki focus isteği hiçbir zaman paralel koşmaz, son gelen kazanır.
type Session struct {
	hub  *Hub
	conn connWriter

	// id: Bu bağlantıya özgü rastgele kimlik (UUID). Reconnect eski
	// session'ı diriltmez — her bağlantı yeni bir kimlik alır.
	id       string
	userID   string
	username string

	// send, session'a gönderilecek event'lerin buffer'landığı Go channel'ı.
	//
	// Go channel nedir?
	// Goroutine'ler arası veri iletimi için kullanılan tipli boru (pipe).
	// `make(chan []byte, 256)` → 256 elemanlık buffer'lı bir kanal.
	// Hub/Tracker event göndermek istediğinde `session.send <- data` yapar,
	// WritePump `data := <-session.send` ile okur.
	//
	// send HİÇBİR ZAMAN kapatılmaz: read pump'ta işlenmekte olan bir
	// operasyon, hub session'ı çıkardıktan sonra da gönderim yapabilir —
	// kapatılmış channel'a gönderim panic'tir. Çıkış sinyali done'dan gelir.
	send chan []byte

	// done, hub session'ı çıkardığında kapatılır. Kapalı done hem
	// WritePump'ı sonlandırır hem de sonraki tüm gönderimleri no-op yapar.
	done chan struct{}

	mu sync.Mutex // conn yazma çağrılarını korur

	// focus: session'ın o an odaklandığı conversationID ("" = odak yok).
	// Hub'ın focused map'i ile birlikte hub mutex'i altında güncellenir;
	// focusMu sadece okumaların hub kilidi olmadan da güvenli olmasını sağlar.
	focus   string
	focusMu sync.RWMutex

	participants ParticipantChecker
	submit       SubmitFunc
}

// connWriter, gorilla/websocket bağlantısının session'ın kullandığı alt
// kümesi. Testlerde gerçek ağ bağlantısı kurmadan sahte bir conn ile
// session davranışı doğrulanabilir.
type connWriter interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// ID, session'ın bağlantı kimliğini döner.
func (s *Session) ID() string { return s.id }

// UserID, session'ın ait olduğu kullanıcıyı döner.
func (s *Session) UserID() string { return s.userID }

// FocusedConversation, session'ın o an odaklandığı sohbeti döner ("" = yok).
func (s *Session) FocusedConversation() string {
	s.focusMu.RLock()
	defer s.focusMu.RUnlock()
	return s.focus
}

// setFocus, odak alanını günceller. Sadece Hub tarafından, hub mutex'i
// altında çağrılır — focused map ile bu alan hep tutarlı kalır.
func (s *Session) setFocus(conversationID string) {
	s.focusMu.Lock()
	s.focus = conversationID
	s.focusMu.Unlock()
}

// ReadPump, WebSocket bağlantısından gelen operasyonları okur ve işler.
//
// Bu fonksiyon bir goroutine olarak çalışır — bağlantı kapanana kadar döngüde kalır.
// Bağlantı kapandığında Hub'dan çıkış yapar ve kaynakları temizler.
func (s *Session) ReadPump() {
	// defer: Fonksiyon bittiğinde (return veya panic) çalışır.
	// Bağlantı kapandığında session'ı Hub'dan çıkar ve WS bağlantısını kapat.
	defer func() {
		s.hub.unregister <- s
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)

	// SetReadDeadline: Bu süre içinde mesaj gelmezse Read hata verir.
	// Her heartbeat geldiğinde deadline yenilenir.
	if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("[ws] failed to set read deadline for session %s: %v", s.id, err)
		return
	}

	for {
		_, rawMessage, err := s.conn.ReadMessage()
		if err != nil {
			// Bağlantı kapandı veya hata oluştu — ReadPump sonlanır.
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] unexpected close for session %s: %v", s.id, err)
			}
			return
		}

		// Gelen operasyonu parse et
		var event Event
		if err := json.Unmarshal(rawMessage, &event); err != nil {
			log.Printf("[ws] invalid message from session %s: %v", s.id, err)
			continue
		}

		s.handleEvent(event)
	}
}

// handleEvent, client'dan gelen operasyonları türüne göre işler.
// ReadPump goroutine'inde çağrılır — operasyonlar her zaman sıralıdır.
func (s *Session) handleEvent(event Event) {
	switch event.Op {
	case OpHeartbeat:
		// Heartbeat geldi — deadline'ı yenile ve ack gönder.
		if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("[ws] failed to set read deadline for session %s: %v", s.id, err)
			return
		}
		s.sendEvent(Event{Op: OpHeartbeatAck})

	case OpFocus:
		s.handleFocus(event)

	case OpUnfocus:
		// Odağı bırak — session bağlı kalır, sadece aktivite ping'leri alır.
		s.hub.Leave(s)

	case OpMessageCreate:
		s.handleMessageCreate(event)

	default:
		log.Printf("[ws] unknown op from session %s: %s", s.id, event.Op)
	}
}

// handleFocus, focus operasyonunu işler.
//
// Client { op: "focus", d: { conversation_id: "abc" } } gönderdiğinde
// önce katılımcı kontrolü yapılır — katılımcısı olmadığı bir sohbete
// odaklanmak reddedilir ve mevcut odak DEĞİŞMEZ. Kontrol geçerse Hub
// odağı atomik olarak taşır (eski bırakılır, yenisi eklenir).
func (s *Session) handleFocus(event Event) {
	data, err := decodeData[FocusData](event)
	if err != nil || data.ConversationID == "" {
		s.sendError(OpFocus, "conversation_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	ok, err := s.participants.IsParticipant(ctx, s.userID, data.ConversationID)
	if err != nil {
		log.Printf("[ws] participant check failed for session %s: %v", s.id, err)
		s.sendError(OpFocus, "could not verify conversation access")
		return
	}
	if !ok {
		s.sendError(OpFocus, "not a participant of this conversation")
		return
	}

	s.hub.Join(s, data.ConversationID)
	s.sendEvent(Event{Op: OpFocusAck, Data: FocusData{ConversationID: data.ConversationID}})
}

// handleMessageCreate, ws üzerinden mesaj gönderimini işler.
//
// Doğrulama ve kalıcılık service'in işidir; burada sadece payload parse
// edilir ve sonuç client'a raporlanır. Reddedilen gönderim SADECE bu
// session'a error event'i olarak döner — başka kimse bir şey görmez.
func (s *Session) handleMessageCreate(event Event) {
	data, err := decodeData[SubmitData](event)
	if err != nil || data.ConversationID == "" {
		s.sendError(OpMessageCreate, "conversation_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := s.submit(ctx, data.ConversationID, s.userID, data.Content); err != nil {
		s.sendError(OpMessageCreate, pkg.UserMessage(err))
	}
	// Başarı durumunda ayrıca ack yok: session odaktaysa mesaj zaten
	// "message" event'i olarak gelir, değilse HTTP geçmişinden görünür.
}

// decodeData, event.Data'yı (any) hedef payload tipine çevirir.
//
// json.Marshal + json.Unmarshal neden?
// event.Data tipi `any` (interface{}), doğrudan cast edemeyiz.
// JSON'a çevirip tekrar parse etmek en güvenli yöntem.
func decodeData[T any](event Event) (T, error) {
	var out T
	raw, err := json.Marshal(event.Data)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

// sendEvent, session'a tek bir event gönderir.
//
// Session hub'dan çıkarıldıysa (done kapalı) gönderim no-op'tur: read
// pump'taki in-flight bir operasyon, çıkarılma ile yarışsa bile panic
// üretemez ve çıkarılmış session'a teslimat denemez.
func (s *Session) sendEvent(event Event) {
	select {
	case <-s.done:
		return
	default:
	}

	event.Seq = s.hub.nextSeq()

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal event for session %s: %v", s.id, err)
		return
	}

	select {
	case s.send <- data:
		// Başarıyla buffer'a eklendi
	case <-s.done:
		// Gönderim sırasında çıkarıldı — event'in alıcısı kalmadı.
	default:
		// Buffer dolu — client muhtemelen donmuş, bağlantıyı kapat
		log.Printf("[ws] send buffer full for session %s, dropping connection", s.id)
		s.hub.unregister <- s
	}
}

// sendError, reddedilen bir operasyonu sadece bu session'a raporlar.
func (s *Session) sendError(op, message string) {
	s.sendEvent(Event{Op: OpError, Data: ErrorData{Op: op, Message: message}})
}

// WritePump, send channel'ından gelen event'leri WebSocket bağlantısına yazar.
//
// Bu fonksiyon bir goroutine olarak çalışır.
// send channel'dan mesaj bekler ve WS'e yazar; done kapanınca sonlanır.
func (s *Session) WritePump() {
	defer s.conn.Close()

	for {
		select {
		case message := <-s.send:
			if err := s.writeMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-s.done:
			// Hub session'ı çıkardı — client'a düzgün kapanış çerçevesi gönder.
			s.writeMessage(websocket.CloseMessage, nil)
			return
		}
	}
}

// writeMessage, WebSocket'e mesaj yazar (mutex ile korunur).
// gorilla/websocket conn'a aynı anda birden fazla yazma YASAK —
// bu yüzden mutex ile koruyoruz.
func (s *Session) writeMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(messageType, data)
}
