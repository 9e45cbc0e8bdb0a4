package ws

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
)

// MessagePublisher, service katmanının kalıcılaşan mesajları odaklanmış
// session'lara iletmek için kullandığı interface.
//
// Dependency Inversion: Service'ler Hub'ın concrete struct'ına değil,
// bu interface'e bağımlıdır. Böylece:
// 1. Service test edilirken fake bir publisher kullanılabilir
// 2. Hub implementasyonu değişse bile service kodu etkilenmez
type MessagePublisher interface {
	PublishMessage(conversationID string, message any)
}

// Hub, sohbet (conversation) bazlı broadcast gruplarını yöneten merkezi yapıdır.
//
// Observer pattern nedir?
// Bir "subject" (Hub) birden fazla "observer"ı (Session) takip eder.
// Bir mesaj kalıcılaştığında Hub, o sohbete odaklanmış tüm session'lara iletir.
//
// Buradaki kritik ayrım: Hub HERKESİ değil, sadece odaklanmış olanları bilgilendirir.
// Odaklanmamış aboneler hafif aktivite ping'lerini ActivityTracker'dan alır.
//
// Go channel nedir? (register, unregister)
// Goroutine'ler arası güvenli iletişim sağlayan yapılar.
// Hub.Run() goroutine'i bu channel'lardan `select` ile okur:
// - register channel'dan yeni session gelirse → sessions map'e ekle
// - unregister channel'dan session gelirse → map'ten çıkar, kaynakları temizle
type Hub struct {
	// sessions: bağlı tüm session'ların set'i.
	// map[*Session]bool — Go'da set yoktur, map[*Session]bool kullanılır.
	// bool değeri her zaman true'dur — sadece varlık kontrolü için kullanılır.
	sessions map[*Session]bool

	// focused: conversationID → o sohbete odaklanmış Session set'i.
	// Bir session en fazla bir set'te bulunur (tek focus kuralı).
	// Set boşaldığında map entry'si silinir — terk edilmiş sohbetler birikmez.
	focused map[string]map[*Session]bool

	// mu: sessions ve focused map'lerini koruyan read-write mutex.
	//
	// sync.RWMutex nedir?
	// Mutex'in gelişmiş hali — birden fazla okuyucu aynı anda erişebilir (RLock),
	// ama yazma işlemi sırasında tüm erişim bloklanır (Lock).
	// Mesaj fan-out'u okuma ağırlıklıdır, RLock ile paralel ilerler.
	mu sync.RWMutex

	// register/unregister: Session giriş/çıkış sinyalleri.
	register   chan *Session
	unregister chan *Session

	// seq: Her outbound event'e verilen artan sayaç.
	// atomic.Int64: Birden fazla goroutine'in güvenle okuyup yazabildiği sayı.
	// Normal int64 kullanılsaydı race condition oluşurdu.
	seq atomic.Int64

	// tracker: session yaşam döngüsünü aktivite kayıtlarıyla senkron tutar.
	// Session hub'dan düşünce tracker'daki kayıtları da temizlenir.
	tracker *ActivityTracker
}

// NewHub, yeni bir Hub oluşturur.
func NewHub(tracker *ActivityTracker) *Hub {
	return &Hub{
		sessions:   make(map[*Session]bool),
		focused:    make(map[string]map[*Session]bool),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		tracker:    tracker,
	}
}

// Run, Hub'ın ana event loop'udur. main.go'da `go hub.Run()` ile başlatılır.
//
// select nedir?
// Birden fazla channel'ı aynı anda dinler.
// Hangi channel'dan veri gelirse o case çalışır.
// Hiçbirinden gelmezse bekler (blocking).
func (h *Hub) Run() {
	for {
		select {
		case session := <-h.register:
			h.addSession(session)

		case session := <-h.unregister:
			h.removeSession(session)
		}
	}
}

// addSession, yeni bir session'ı Hub'a ekler.
func (h *Hub) addSession(session *Session) {
	h.mu.Lock()
	h.sessions[session] = true
	total := len(h.sessions)
	h.mu.Unlock()

	log.Printf("[ws] session connected: id=%s user=%s (%s) (total sessions: %d)",
		session.id, session.userID, session.username, total)
}

// removeSession, bir session'ı Hub'dan çıkarır ve kaynaklarını temizler.
//
// Idempotent'tir: aynı session hem ReadPump'ın defer'ından hem de dolu
// buffer tespitinden unregister edilebilir. İkinci çağrı no-op olur —
// aksi halde done channel iki kez kapatılır ve panic oluşur.
func (h *Hub) removeSession(session *Session) {
	h.mu.Lock()
	if _, ok := h.sessions[session]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, session)
	h.detachFocusLocked(session)
	total := len(h.sessions)
	h.mu.Unlock()

	// Tracker temizliği mutex dışında: tracker kendi kilidini alır.
	// Unregister döndüğünde hiçbir aktivite ping'i artık bu session'ı
	// hedefleyemez. send channel'ı kapatılmaz — read pump'taki in-flight
	// bir operasyon hâlâ gönderim deneyebilir; çıkış sinyali done'dur,
	// kapanınca WritePump sonlanır ve geç gönderimler no-op olur.
	h.tracker.Unregister(session)
	close(session.done)

	log.Printf("[ws] session disconnected: id=%s user=%s (%s) (remaining sessions: %d)",
		session.id, session.userID, session.username, total)
}

// Join, session'ın odağını verilen sohbete taşır.
//
// Tek focus kuralı: önce mevcut odak (varsa) bırakılır, sonra yenisi eklenir.
// Aynı durum bilgisi iki yerde yaşar ve tek mutex altında güncellenir:
// hub'ın focused map'i ve session'ın kendi focus alanı.
//
// Odaklanmak o sohbetin bekleyen aktivite işaretini de siler — kullanıcı
// içeriği görmek üzere, ping artık anlamsızdır.
func (h *Hub) Join(session *Session, conversationID string) {
	h.mu.Lock()
	if _, ok := h.sessions[session]; !ok {
		// Session çıkarılmış: çıkarılma ile yarışan bir focus isteği onu
		// focused map'ine geri sokamaz. Aksi halde map'te artık kimsenin
		// dinlemediği bir kanala işaret eden yetim bir kayıt kalırdı.
		h.mu.Unlock()
		return
	}
	h.detachFocusLocked(session)
	if _, ok := h.focused[conversationID]; !ok {
		h.focused[conversationID] = make(map[*Session]bool)
	}
	h.focused[conversationID][session] = true
	session.setFocus(conversationID)
	h.mu.Unlock()

	h.tracker.ClearActivity(session.userID, conversationID)
}

// Leave, session'ın mevcut odağını bırakır. Odak yoksa no-op.
func (h *Hub) Leave(session *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachFocusLocked(session)
}

// detachFocusLocked, session'ı odaklandığı sohbetin set'inden çıkarır.
// h.mu yazma kilidi alınmış olmalıdır.
func (h *Hub) detachFocusLocked(session *Session) {
	current := session.FocusedConversation()
	if current == "" {
		return
	}
	if set, ok := h.focused[current]; ok {
		delete(set, session)
		if len(set) == 0 {
			delete(h.focused, current)
		}
	}
	session.setFocus("")
}

// PublishMessage, kalıcılaşmış bir mesajı o sohbete odaklanmış tüm
// session'lara iletir.
//
// Çağıran taraf (message service) mesajı ÖNCE DB'ye yazmıştır — bu metod
// sadece dağıtımdan sorumludur. Event bir kez marshal edilir, aynı byte
// dizisi tüm alıcılara gönderilir.
//
// Yavaş alıcılar akışı bloklamaz: send buffer'ı dolu olan session kuyruğa
// alınmadan unregister edilir. Client reconnect edip mesaj geçmişini
// HTTP'den çekerek toparlanır — seq boşluğu bunun sinyalidir.
func (h *Hub) PublishMessage(conversationID string, message any) {
	event := Event{
		Op:   OpMessage,
		Data: MessageData{ConversationID: conversationID, Message: message},
		Seq:  h.seq.Add(1),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal message event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for session := range h.focused[conversationID] {
		select {
		case session.send <- data:
		default:
			// Buffer dolu — bu session yavaş, kapat
			go func(s *Session) { h.unregister <- s }(session)
		}
	}
}

// nextSeq, session bazlı gönderimler (ready, heartbeat_ack, activity) için
// de aynı global sayaçtan numara verir. Tek sayaç olması client'ın boşluk
// tespitini basit tutar.
func (h *Hub) nextSeq() int64 {
	return h.seq.Add(1)
}

// FocusedCount, bir sohbete odaklanmış session sayısını döner.
func (h *Hub) FocusedCount(conversationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.focused[conversationID])
}

// SessionCount, bağlı toplam session sayısını döner.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Shutdown, tüm session bağlantılarını kapatır (graceful shutdown).
func (h *Hub) Shutdown() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for session := range h.sessions {
		sessions = append(sessions, session)
	}
	h.sessions = make(map[*Session]bool)
	h.focused = make(map[string]map[*Session]bool)
	h.mu.Unlock()

	for _, session := range sessions {
		h.tracker.Unregister(session)
		close(session.done)
	}
	log.Println("[ws] hub shut down, all connections closed")
}
