// Package main, fotogram backend uygulamasının giriş noktasıdır.
//
// Bu dosyanın görevi — Dependency Injection "wire-up":
//   1.  Config'i yükle
//   2.  Database'i başlat (embedded migration'lar ile)
//   3.  Upload dizinini oluştur
//   4.  Repository'leri oluştur (DB bağlantısı ile)
//   5.  Live bus + WebSocket Hub'ı başlat
//   6.  Service'leri oluştur (repository'ler + hub + bus ile)
//   7.  Handler'ları oluştur (service'ler ile)
//   8.  Middleware'ları oluştur (service + repo'lar ile)
//   9.  HTTP router'ı kur, route'ları bağla
//  10.  CORS yapılandır
//  11.  HTTP Server'ı başlat
//  12.  Graceful shutdown
//
// Global değişken YOK — her şey bu fonksiyonda oluşturulup birbirine bağlanıyor.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/akocak/fotogram/config"
	"github.com/akocak/fotogram/database"
	"github.com/akocak/fotogram/handlers"
	"github.com/akocak/fotogram/live"
	"github.com/akocak/fotogram/middleware"
	"github.com/akocak/fotogram/pkg/email"
	"github.com/akocak/fotogram/pkg/ratelimit"
	"github.com/akocak/fotogram/repository"
	"github.com/akocak/fotogram/services"
	"github.com/akocak/fotogram/ws"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] fotogram server starting...")

	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (port=%d)", cfg.Server.Port)

	// ─── 2. Database ───
	// Migration'lar binary'ye gömülü — deployment'ta ayrıca dosya taşımaya
	// gerek yok.
	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		log.Fatalf("[main] failed to open embedded migrations: %v", err)
	}

	db, err := database.New(cfg.Database.Path, migrationsFS)
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer db.Close()

	// ─── 3. Upload Dizini ───
	if err := os.MkdirAll(cfg.Upload.Dir, 0755); err != nil {
		log.Fatalf("[main] failed to create upload directory: %v", err)
	}

	// ─── 4. Repository Layer ───
	userRepo := repository.NewSQLiteUserRepo(db.Conn)
	sessionRepo := repository.NewSQLiteSessionRepo(db.Conn)
	resetRepo := repository.NewSQLitePasswordResetRepo(db.Conn)
	postRepo := repository.NewSQLitePostRepo(db.Conn)
	commentRepo := repository.NewSQLiteCommentRepo(db.Conn)
	followRepo := repository.NewSQLiteFollowRepo(db.Conn)
	notifRepo := repository.NewSQLiteNotificationRepo(db.Conn)
	convRepo := repository.NewSQLiteConversationRepo(db.Conn)
	msgRepo := repository.NewSQLiteMessageRepo(db.Conn)

	// ─── 5. Live Bus + WebSocket Hub ───
	//
	// bus: in-process yayın/abone katmanı. Inbox ve açık konuşma
	// görünümleri ilgili topic'e abone olur, yazan taraf yayınlar.
	// hub: tüm WebSocket bağlantılarını yöneten merkezi yapıdır.
	// `go hub.Run()` ayrı bir goroutine'de event loop başlatır.
	// Service'ler hub'a Broadcaster interface'i üzerinden erişir.
	bus := live.NewBus()
	hub := ws.NewHub()

	// ─── 6. Service Layer ───

	// Email service (opsiyonel) — üç alan da ayarlıysa aktif
	var emailSender email.EmailSender
	if cfg.Email.ResendAPIKey != "" && cfg.Email.FromEmail != "" && cfg.Email.AppURL != "" {
		emailSender = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromEmail, cfg.Email.AppURL)
		log.Println("[main] email sending enabled")
	} else {
		log.Println("[main] email sending disabled (RESEND_API_KEY / RESEND_FROM / APP_URL not set)")
	}

	authService := services.NewAuthService(
		userRepo,
		sessionRepo,
		resetRepo,
		emailSender,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	notificationService := services.NewNotificationService(notifRepo, hub, bus)
	postService := services.NewPostService(postRepo, userRepo, followRepo, notificationService, hub)
	commentService := services.NewCommentService(commentRepo, postRepo, userRepo, notificationService)
	followService := services.NewFollowService(followRepo, userRepo, notificationService)
	profileService := services.NewProfileService(userRepo, postRepo, followRepo)
	uploadService := services.NewUploadService(cfg.Upload.Dir, cfg.Upload.MaxSize)
	chatService := services.NewChatService(convRepo, msgRepo, userRepo, notificationService, hub, bus)
	inboxService := services.NewInboxService(convRepo, msgRepo, userRepo, bus)
	threadService := services.NewThreadService(convRepo, msgRepo, userRepo, bus)

	// Rate limiter'lar — login brute-force ve gönderi spam koruması
	loginLimiter := ratelimit.NewLoginRateLimiter(5, 15*time.Minute)
	postLimiter := ratelimit.NewSendRateLimiter(10, time.Minute, 30*time.Second)

	// Typing callback — Hub ws paketinde yaşıyor, katılımcı çözümlemesi
	// service katmanında. Hub'ın service'lere bağımlı olmasını
	// istemiyoruz (Dependency Inversion); main.go wire-up noktasıdır.
	hub.SetTypingCallback(func(userID, username, conversationID string) {
		conv, err := chatService.GetConversation(context.Background(), userID, conversationID)
		if err != nil {
			log.Printf("[typing] conversation lookup failed user=%s conv=%s: %v", userID, conversationID, err)
			return
		}
		hub.BroadcastToUser(conv.OtherParticipant(userID), ws.Event{
			Op: ws.OpTypingStart,
			Data: ws.TypingStartData{
				UserID:         userID,
				Username:       username,
				ConversationID: conversationID,
			},
		})
	})

	go hub.Run()

	// ─── 7. Handler Layer ───
	authHandler := handlers.NewAuthHandler(authService, loginLimiter)
	profileHandler := handlers.NewProfileHandler(profileService, uploadService, cfg.Upload.MaxSize)
	postHandler := handlers.NewPostHandler(postService, postLimiter)
	commentHandler := handlers.NewCommentHandler(commentService)
	followHandler := handlers.NewFollowHandler(followService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	chatHandler := handlers.NewChatHandler(chatService, inboxService, threadService)
	uploadHandler := handlers.NewUploadHandler(uploadService, cfg.Upload.MaxSize)
	wsHandler := ws.NewHandler(hub, authService)

	// ─── 8. Middleware ───
	authMw := middleware.NewAuthMiddleware(authService, userRepo)
	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(http.HandlerFunc(handler))
	}

	// ─── 9. HTTP Router ───
	// Route sıralama kuralı: literal path'ler parametrik path'lerden önce.
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","service":"fotogram"}`)
	})

	// Auth — public endpoint'ler (token gerekmez)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("POST /api/auth/forgot-password", authHandler.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", authHandler.ResetPassword)

	// User / Profile
	mux.Handle("GET /api/users/me", auth(profileHandler.Me))
	mux.Handle("PUT /api/users/me", auth(profileHandler.Update))
	mux.Handle("POST /api/users/me/password", auth(authHandler.ChangePassword))
	mux.Handle("POST /api/users/me/avatar", auth(profileHandler.UploadAvatar))
	mux.Handle("GET /api/users/{username}", auth(profileHandler.Get))
	mux.Handle("GET /api/users/{username}/posts", auth(postHandler.ListByUser))
	mux.Handle("POST /api/users/{username}/follow", auth(followHandler.Toggle))
	mux.Handle("GET /api/users/{username}/followers", auth(followHandler.Followers))
	mux.Handle("GET /api/users/{username}/following", auth(followHandler.Following))

	// Posts
	mux.Handle("GET /api/feed", auth(postHandler.Feed))
	mux.Handle("POST /api/posts", auth(postHandler.Create))
	mux.Handle("GET /api/posts/{postId}", auth(postHandler.Get))
	mux.Handle("DELETE /api/posts/{postId}", auth(postHandler.Delete))
	mux.Handle("POST /api/posts/{postId}/like", auth(postHandler.ToggleLike))
	mux.Handle("POST /api/posts/{postId}/comments", auth(commentHandler.Create))
	mux.Handle("GET /api/posts/{postId}/comments", auth(commentHandler.ListByPost))
	mux.Handle("DELETE /api/comments/{commentId}", auth(commentHandler.Delete))

	// Notifications
	mux.Handle("GET /api/notifications", auth(notificationHandler.List))
	mux.Handle("GET /api/notifications/unread-count", auth(notificationHandler.UnreadCount))
	mux.Handle("POST /api/notifications/read", auth(notificationHandler.MarkAllRead))

	// Direct Messages
	mux.Handle("POST /api/messages", auth(chatHandler.Send))
	mux.Handle("GET /api/conversations", auth(chatHandler.Inbox))
	mux.Handle("GET /api/conversations/{conversationId}", auth(chatHandler.OpenThread))

	// Upload — gönderi resmi yükleme
	mux.Handle("POST /api/uploads", auth(uploadHandler.UploadImage))

	// Static file serving — yüklenen dosyalara erişim
	//
	// http.StripPrefix: URL'den "/api/uploads/" kısmını çıkarır.
	// http.FileServer: Kalan path'i upload dizininde dosya olarak arar.
	//
	// Path traversal koruması: sadece düz dosya isimleri kabul edilir,
	// subdirectory'ler reddedilir.
	uploadsHandler := http.StripPrefix("/api/uploads/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/") || strings.Contains(r.URL.Path, "\\") {
			http.NotFound(w, r)
			return
		}
		http.FileServer(http.Dir(cfg.Upload.Dir)).ServeHTTP(w, r)
	}))
	mux.Handle("GET /api/uploads/", uploadsHandler)

	// WebSocket — token query parameter ile authenticate edilir
	//
	// Neden auth middleware kullanmıyoruz?
	// WebSocket upgrade sırasında tarayıcılar custom HTTP header gönderemez.
	// Bu yüzden JWT token URL query parameter olarak gönderilir:
	//   ws://server/ws?token=JWT_TOKEN
	// WS handler kendi içinde token doğrulaması yapar.
	mux.HandleFunc("GET /ws", wsHandler.HandleConnection)

	// ─── 10. CORS ───
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173", // Vite dev server
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		Debug:            false,
	})

	handler := corsHandler.Handler(mux)

	// ─── 11. HTTP Server ───
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ─── 12. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	// Önce WebSocket bağlantılarını kapat, sonra HTTP server'ı —
	// yeni request kabul etmeyi durdurur, mevcutların bitmesini bekler.
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[main] forced shutdown: %v", err)
	}

	log.Println("[main] server stopped gracefully")
}
