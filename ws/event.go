// Package ws, WebSocket bağlantı yönetimi ve gerçek zamanlı dağıtımı sağlar.
//
// Mimari:
//   - Hub: sohbet bazlı broadcast grupları — bir sohbete odaklanmış (focus)
//     session'lara kalıcılaşmış mesajları sırayla iletir.
//   - ActivityTracker: konu bazlı aktivite kayıtları — abone olup da o an
//     o sohbete odaklanmamış session'lara hafif ping gönderir.
//   - Session: tek bir WebSocket bağlantısı; en fazla bir focus.
//   - Event: client-server arası iletilen mesaj formatı.
//
// Akış:
//  1. Kullanıcı mesaj gönderir (HTTP POST veya ws message_create)
//  2. Service mesajı DB'ye yazar — kalıcılık her zaman bildirimden ÖNCE gelir
//  3. Service, Hub.PublishMessage ile odaklanmış session'lara mesajı iletir
//  4. Service, ActivityTracker.RecordActivity ile diğer abonelere ping atar
//  5. Her session'ın WritePump'ı event'i kendi bağlantısına yazar
package ws

// Event, WebSocket üzerinden iletilen bir mesajı temsil eder.
//
// Op: event türü — "message", "activity", "heartbeat" vb.
// Data: event'e özgü payload.
// Seq: her outbound event'e verilen artan sayı — client eksik event
// tespiti için takip eder (seq 5'ten sonra 7 gelirse 6 kaybolmuştur).
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → Server operasyonları
const (
	OpHeartbeat     = "heartbeat"      // Client periyodik gönderir — "hâlâ bağlıyım" sinyali
	OpFocus         = "focus"          // Bu sohbete odaklan — canlı mesaj akışını buraya bağla
	OpUnfocus       = "unfocus"        // Odağı bırak — sadece aktivite ping'leri kalır
	OpMessageCreate = "message_create" // WebSocket üzerinden mesaj gönderimi
)

// Server → Client operasyonları
const (
	OpReady        = "ready"         // Bağlantı kurulduğunda ilk event — session kimliği + abone olunan konular
	OpHeartbeatAck = "heartbeat_ack" // Heartbeat'e yanıt
	OpMessage      = "message"       // Odaklanılan sohbete yeni mesaj
	OpActivity     = "activity"      // Abone olunan bir konunun sohbetinde görülmemiş aktivite
	OpFocusAck     = "focus_ack"     // Focus geçişi uygulandı
	OpError        = "error"         // Client'ın ws üzerinden yaptığı işlem reddedildi
)

// ReadyData, bağlantı kurulduğunda gönderilen ilk event'in payload'ı.
// SessionID her bağlantı için yenidir — reconnect eski session'ı diriltmez,
// yeni bir kimlik oluşturur.
//
// ActivityMarks (conversationID → topicID), kullanıcının o ana kadar
// birikmiş görülmemiş aktivite işaretleridir: başka bir sekme bağlıyken
// biriken badge'ler yeni bağlantıda da gösterilebilir.
type ReadyData struct {
	SessionID          string            `json:"session_id"`
	SubscribedTopicIDs []string          `json:"subscribed_topic_ids"`
	ActivityMarks      map[string]string `json:"activity_marks,omitempty"`
}

// MessageData, odaklanılan sohbete gelen mesajın payload'ı.
// Message alanı tam mesaj objesidir (yazar bilgisi dahil) — client ekstra
// fetch yapmadan render edebilir.
type MessageData struct {
	ConversationID string `json:"conversation_id"`
	Message        any    `json:"message"`
}

// ActivityData, aktivite ping'inin payload'ı.
//
// Preview ve Author bilgilendirme amaçlıdır, kontrat değildir — client
// sadece topic_id/conversation_id ile badge gösterebilir.
type ActivityData struct {
	TopicID        string `json:"topic_id"`
	ConversationID string `json:"conversation_id"`
	Preview        string `json:"preview,omitempty"`
	Author         string `json:"author,omitempty"`
}

// FocusData, focus event'inin payload'ı.
type FocusData struct {
	ConversationID string `json:"conversation_id"`
}

// SubmitData, ws üzerinden mesaj gönderiminin payload'ı.
type SubmitData struct {
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
}

// ErrorData, reddedilen ws işleminin payload'ı.
// Sadece işlemi yapan client'a gönderilir — başka session'lara sızmaz.
type ErrorData struct {
	Op      string `json:"op"` // Reddedilen operasyon
	Message string `json:"message"`
}
