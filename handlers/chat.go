package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akocak/fotogram/models"
	"github.com/akocak/fotogram/pkg"
	"github.com/akocak/fotogram/services"
)

// ChatHandler, DM endpoint'lerini yöneten struct.
//
// Canlı akış WS üzerinden gider (hub broadcast); buradaki endpoint'ler
// HTTP snapshot yüzeyidir: inbox listesi, konuşma açma, mesaj gönderme.
type ChatHandler struct {
	chatService   services.ChatService
	inboxService  services.InboxService
	threadService services.ThreadService
}

// NewChatHandler, constructor.
func NewChatHandler(
	chatService services.ChatService,
	inboxService services.InboxService,
	threadService services.ThreadService,
) *ChatHandler {
	return &ChatHandler{
		chatService:   chatService,
		inboxService:  inboxService,
		threadService: threadService,
	}
}

// Send godoc
// POST /api/messages
// Body: { "receiver_id": "...", "text": "..." }
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.chatService.Send(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, msg)
}

// Inbox godoc
// GET /api/conversations?q=
// Kullanıcının konuşma listesi, son mesaj zamanına göre yeniden eskiye.
// ?q= verilirse karşı tarafın görünen adına göre süzülür (case-insensitive).
func (h *ChatHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	entries, err := h.inboxService.Snapshot(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	// Süzme tamamen bellekte — ek backend çağrısı yok
	entries = services.FilterInbox(entries, r.URL.Query().Get("q"))

	pkg.JSON(w, http.StatusOK, entries)
}

// threadResponse, Open sonucunun HTTP karşılığı.
type threadResponse struct {
	State     services.ThreadState `json:"state"`
	OtherUser *models.User         `json:"other_user,omitempty"`
	Messages  []models.Message     `json:"messages"`
}

// OpenThread godoc
// GET /api/conversations/{conversationId}
//
// Konuşmayı açar: karşı taraf bilgisi + kronolojik mesaj listesi döner,
// alıcıya gelmiş okunmamış mesajlar okundu işaretlenir. Konuşma yoksa
// 404 + state: not_found.
func (h *ChatHandler) OpenThread(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	thread, err := h.threadService.Open(r.Context(), user.ID, r.PathValue("conversationId"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if thread.State == services.ThreadStateNotFound {
		pkg.JSON(w, http.StatusNotFound, threadResponse{
			State:    services.ThreadStateNotFound,
			Messages: []models.Message{},
		})
		return
	}
	defer thread.Cancel()

	// İlk snapshot'ı bekle — abonelik açılış anında sinyallendiği için
	// hemen gelir. Client'ın kendi iptali (context) burada da geçerli.
	select {
	case messages, ok := <-thread.Updates():
		if !ok {
			pkg.ErrorWithMessage(w, http.StatusInternalServerError, "conversation stream closed")
			return
		}
		if messages == nil {
			messages = []models.Message{}
		}
		pkg.JSON(w, http.StatusOK, threadResponse{
			State:     thread.State,
			OtherUser: thread.OtherUser,
			Messages:  messages,
		})
	case <-r.Context().Done():
		return
	}
}
