// Package ws, WebSocket bağlantı yönetimi ve gerçek zamanlı event dağıtımını sağlar.
//
// Mimari:
// - Hub: Tüm bağlantıları yöneten merkezi yapı (Observer pattern)
// - Client: Her WebSocket bağlantısını temsil eder
// - Event: Client-server arası iletilen mesaj formatı
//
// Event akışı:
// 1. Kullanıcı mesaj gönderir → HTTP POST → Service → DB kayıt
// 2. Service, Hub'ın BroadcastToUser metodunu çağırır
// 3. Hub, event'i ilgili kullanıcının tüm bağlantılarına iletir
// 4. Her client'ın WritePump'ı event'i WebSocket'e yazar
package ws

// Event, WebSocket üzerinden iletilen bir mesajı temsil eder.
//
// Op (operation): Event türü — "message_create", "heartbeat" vb.
// Data: Event'e özgü payload — mesaj objesi, bildirim vb.
// Seq (sequence number): Her outbound event'e verilen artan sayı.
//   Frontend eksik event tespit etmek için seq'i takip eder.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → Server operasyonları
const (
	OpHeartbeat = "heartbeat" // Client her 30sn'de gönderir — "hâlâ bağlıyım" sinyali
	OpTyping    = "typing"    // Kullanıcı bir konuşmada yazıyor
)

// Server → Client operasyonları
const (
	OpReady        = "ready"         // Bağlantı kurulduğunda ilk gönderilen
	OpHeartbeatAck = "heartbeat_ack" // Heartbeat'e yanıt — "seni duydum"

	OpMessageCreate      = "message_create"      // Yeni DM mesajı geldi
	OpConversationUpdate = "conversation_update" // Konuşma özeti değişti — inbox yenilenmeli
	OpTypingStart        = "typing_start"        // Karşı taraf yazıyor

	OpNotificationCreate = "notification_create" // Yeni bildirim (like/comment/follow/message)
	OpPostCreate         = "post_create"         // Takip edilen biri gönderi paylaştı
)

// ReadyData, bağlantı kurulduğunda client'a gönderilen ilk event'in payload'ı.
type ReadyData struct {
	OnlineUserIDs []string `json:"online_user_ids"`
}

// TypingData, typing event'inin payload'ı (Client → Server).
type TypingData struct {
	ConversationID string `json:"conversation_id"`
}

// TypingStartData, typing_start event'inin payload'ı (broadcast edilen).
type TypingStartData struct {
	UserID         string `json:"user_id"`
	Username       string `json:"username"`
	ConversationID string `json:"conversation_id"`
}
