package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// ActivityRecorder, service katmanının aktivite ping'leri yayınlamak için
// kullandığı interface. Hub'daki MessagePublisher ile aynı mantık:
// service concrete tracker'a değil, bu küçük interface'e bağlanır.
type ActivityRecorder interface {
	RecordActivity(topicID, conversationID, preview, author string)
}

// ActivityTracker, konu (topic) bazlı aktivite bildirimlerini yönetir.
//
// Hub ile işbölümü:
// - Hub: odaklanılan sohbete TAM mesajı iletir
// - Tracker: abone olunup odaklanılmayan sohbetler için HAFİF ping gönderir
//
// Ping bir "görülmemiş aktivite var" işaretidir — mesajın kendisi değil.
// Client ping alınca konu başlığında badge gösterir; kullanıcı sohbete
// odaklanınca tam geçmişi HTTP'den çeker.
//
// Tamamen in-memory'dir: sunucu yeniden başlarsa kayıtlar sıfırlanır.
// Bu kabul edilebilir — aktivite işaretleri anlık duruma dair ipucudur,
// kalıcı okunma durumu (read state) değildir.
type ActivityTracker struct {
	mu sync.Mutex

	// topics: topicID → o konuya abone olan bağlı session'ların set'i.
	// Session bağlanırken abone olduğu tüm konulara kaydedilir (ambient
	// kayıt) — focus'tan bağımsızdır ve bağlantı boyunca değişmez.
	topics map[string]map[*Session]bool

	// marks: userID → conversationID → topicID.
	// Kullanıcının henüz görmediği aktivitelerin işaretleri.
	// Kullanıcı sohbete odaklanınca ilgili işaret silinir; kullanıcının
	// son session'ı koptuğunda tüm işaretleri düşer.
	marks map[string]map[string]string

	// userSessions: userID → bağlı session sayısı.
	// Aynı kullanıcının birden fazla sekmesi olabilir — işaretler ancak
	// son bağlantı da kopunca temizlenir.
	userSessions map[string]int
}

// NewActivityTracker, yeni bir ActivityTracker oluşturur.
func NewActivityTracker() *ActivityTracker {
	return &ActivityTracker{
		topics:       make(map[string]map[*Session]bool),
		marks:        make(map[string]map[string]string),
		userSessions: make(map[string]int),
	}
}

// Register, bağlanan session'ı abone olduğu konuların alıcı listelerine ekler.
// Handler bağlantı kurulurken kullanıcının aboneliklerini DB'den çekip buraya verir.
func (t *ActivityTracker) Register(session *Session, topicIDs []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, topicID := range topicIDs {
		if _, ok := t.topics[topicID]; !ok {
			t.topics[topicID] = make(map[*Session]bool)
		}
		t.topics[topicID][session] = true
	}
	t.userSessions[session.userID]++
}

// Unregister, kopan session'ı tüm konu listelerinden çıkarır.
//
// Kullanıcının son session'ıysa aktivite işaretleri de düşer: işaretler
// bağlı kullanıcılara anlık ipucu vermek içindir, offline kullanıcı için
// saklamanın anlamı yoktur (reconnect'te client zaten geçmişi çeker).
func (t *ActivityTracker) Unregister(session *Session) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for topicID, set := range t.topics {
		if set[session] {
			delete(set, session)
			if len(set) == 0 {
				delete(t.topics, topicID)
			}
		}
	}

	if n, ok := t.userSessions[session.userID]; ok {
		if n <= 1 {
			delete(t.userSessions, session.userID)
			delete(t.marks, session.userID)
		} else {
			t.userSessions[session.userID] = n - 1
		}
	}
}

// RecordActivity, bir sohbette yeni mesaj kalıcılaştığında çağrılır.
//
// Konuya abone olup o an BAŞKA yere bakan (o sohbete odaklanmamış) her
// session'a hafif bir ping gönderir ve kullanıcı bazında görülmemiş
// aktivite işareti bırakır. Odaklanmış session'lar atlanır — onlar tam
// mesajı Hub'dan zaten alıyor; ikinci bir bildirim gürültü olur.
//
// Bilinmeyen topicID sessizce yok sayılır: abonesi bağlı olmayan bir
// konu için yapılacak iş yoktur.
func (t *ActivityTracker) RecordActivity(topicID, conversationID, preview, author string) {
	event := Event{
		Op: OpActivity,
		Data: ActivityData{
			TopicID:        topicID,
			ConversationID: conversationID,
			Preview:        preview,
			Author:         author,
		},
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.topics[topicID]
	if !ok {
		return
	}

	for session := range set {
		if session.FocusedConversation() == conversationID {
			continue
		}

		if _, ok := t.marks[session.userID]; !ok {
			t.marks[session.userID] = make(map[string]string)
		}
		t.marks[session.userID][conversationID] = topicID

		// Her session kendi seq numarasını alır — tek sayaç, tek sıra.
		event.Seq = session.hub.nextSeq()
		data, err := json.Marshal(event)
		if err != nil {
			log.Printf("[ws] failed to marshal activity event: %v", err)
			return
		}

		select {
		case session.send <- data:
		default:
			// Buffer dolu — session yavaş, kapat
			go func(s *Session) { s.hub.unregister <- s }(session)
		}
	}
}

// ClearActivity, kullanıcının bir sohbetteki görülmemiş aktivite işaretini
// siler. Kullanıcı sohbete odaklandığında Hub.Join tarafından çağrılır.
// İşaret yoksa no-op.
func (t *ActivityTracker) ClearActivity(userID, conversationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if convs, ok := t.marks[userID]; ok {
		delete(convs, conversationID)
		if len(convs) == 0 {
			delete(t.marks, userID)
		}
	}
}

// PendingMarks, kullanıcının görülmemiş aktivite işaretlerinin kopyasını
// döner (conversationID → topicID). Bağlantı kurulurken ready frame'ine
// eklenir — yeni sekme, diğer sekmelerde birikmiş işaretleri devralır.
func (t *ActivityTracker) PendingMarks(userID string) map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()

	convs, ok := t.marks[userID]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(convs))
	for convID, topicID := range convs {
		out[convID] = topicID
	}
	return out
}
