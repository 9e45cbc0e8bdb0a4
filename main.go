// Package main, sohbet backend uygulamasının giriş noktasıdır.
//
// Bu dosyanın görevi — Dependency Injection "wire-up":
//  1. Config'i yükle
//  2. Database'i başlat (embedded migration'lar ile)
//  3. Repository'leri oluştur (DB bağlantısı ile)
//  4. ActivityTracker ve WebSocket Hub'ı başlat
//  5. Service'leri oluştur (repository'ler + hub/tracker ile)
//  6. Handler'ları oluştur (service'ler ile)
//  7. Middleware ve rate limiter'ları oluştur
//  8. HTTP router'ı kur, route'ları bağla
//  9. CORS yapılandır
//  10. HTTP Server'ı başlat
//  11. Graceful shutdown
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
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/akinalp/sohbet/config"
	"github.com/akinalp/sohbet/database"
	"github.com/akinalp/sohbet/handlers"
	"github.com/akinalp/sohbet/middleware"
	"github.com/akinalp/sohbet/pkg/ratelimit"
	"github.com/akinalp/sohbet/repository"
	"github.com/akinalp/sohbet/services"
	"github.com/akinalp/sohbet/ws"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] sohbet server starting...")

	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (port=%d)", cfg.Server.Port)

	// ─── 2. Database ───
	// Migration'lar binary'ye gömülüdür — deploy'da yanına dosya gerekmez.
	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		log.Fatalf("[main] failed to access embedded migrations: %v", err)
	}

	db, err := database.New(cfg.Database.Path, migrationsFS)
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer db.Close()

	// ─── 3. Repository Layer ───
	userRepo := repository.NewSQLiteUserRepo(db.Conn)
	authSessionRepo := repository.NewSQLiteAuthSessionRepo(db.Conn)
	topicRepo := repository.NewSQLiteTopicRepo(db.Conn)
	conversationRepo := repository.NewSQLiteConversationRepo(db.Conn)
	messageRepo := repository.NewSQLiteMessageRepo(db.Conn)
	pageRepo := repository.NewSQLitePageRepo(db.Conn)

	// Seed — geliştirme için örnek veri (SEED_DATA=true ve DB boşsa)
	if cfg.Seed.Enabled {
		if err := seedDatabase(context.Background(), db); err != nil {
			log.Fatalf("[main] failed to seed database: %v", err)
		}
	}

	// ─── 4. ActivityTracker + WebSocket Hub ───
	//
	// Tracker, abone olunan konulardaki aktiviteyi takip eder; Hub, sohbet
	// bazlı canlı mesaj dağıtımını yapar. `go hub.Run()` ayrı bir
	// goroutine'de event loop başlatır: register/unregister channel'larını
	// dinler ve session map'lerini günceller.
	// Hub ws.MessagePublisher'ı, tracker ws.ActivityRecorder'ı implement
	// eder — service'ler concrete tiplere değil interface'lere bağlanır.
	tracker := ws.NewActivityTracker()
	hub := ws.NewHub(tracker)
	go hub.Run()

	// ─── 5. Service Layer ───
	authService := services.NewAuthService(
		userRepo,
		authSessionRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	topicService := services.NewTopicService(topicRepo, conversationRepo)
	conversationService := services.NewConversationService(conversationRepo, topicRepo, userRepo)
	messageService := services.NewMessageService(messageRepo, conversationRepo, userRepo, hub, tracker)
	pageService := services.NewPageService(pageRepo, topicRepo)

	// ─── 6. Rate Limiter'lar ───
	loginLimiter := ratelimit.NewLoginRateLimiter(5, time.Minute)
	defer loginLimiter.Stop()
	messageLimiter := ratelimit.NewMessageRateLimiter(10, 10*time.Second, 5*time.Second)
	defer messageLimiter.Stop()

	// ─── 7. Handler Layer ───
	authHandler := handlers.NewAuthHandler(authService, loginLimiter)
	topicHandler := handlers.NewTopicHandler(topicService)
	conversationHandler := handlers.NewConversationHandler(conversationService)
	messageHandler := handlers.NewMessageHandler(messageService, messageLimiter)
	pageHandler := handlers.NewPageHandler(pageService)

	// WS handler: token doğrulama authService'ten, abonelik listesi
	// topicRepo'dan, katılımcı kontrolü conversationRepo'dan gelir.
	// Mesaj gönderimi HTTP ile aynı yoldan geçer: messageService.Submit.
	wsHandler := ws.NewHandler(hub, tracker, authService, topicRepo, conversationRepo,
		func(ctx context.Context, conversationID, authorID, content string) error {
			_, err := messageService.Submit(ctx, conversationID, authorID, content)
			return err
		})

	// ─── 8. Middleware ───
	authMiddleware := middleware.NewAuthMiddleware(authService, userRepo)
	defer authMiddleware.Close()

	// ─── 9. HTTP Router ───
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","service":"sohbet"}`)
	})

	// Auth — public endpoint'ler (token gerekmez)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)

	// Protected endpoint'ler — authMiddleware.Require() sarar
	mux.Handle("GET /api/users/me", authMiddleware.Require(http.HandlerFunc(authHandler.Me)))

	// Topics
	mux.Handle("GET /api/topics", authMiddleware.Require(
		http.HandlerFunc(topicHandler.List)))
	mux.Handle("POST /api/topics", authMiddleware.Require(
		http.HandlerFunc(topicHandler.Create)))
	mux.Handle("GET /api/topics/subscribed", authMiddleware.Require(
		http.HandlerFunc(topicHandler.ListSubscribed)))
	mux.Handle("GET /api/topics/{topicID}", authMiddleware.Require(
		http.HandlerFunc(topicHandler.Get)))
	mux.Handle("POST /api/topics/{topicID}/subscribe", authMiddleware.Require(
		http.HandlerFunc(topicHandler.Subscribe)))
	mux.Handle("DELETE /api/topics/{topicID}/subscribe", authMiddleware.Require(
		http.HandlerFunc(topicHandler.Unsubscribe)))

	// Conversations
	mux.Handle("GET /api/topics/{topicID}/conversations", authMiddleware.Require(
		http.HandlerFunc(conversationHandler.ListByTopic)))
	mux.Handle("POST /api/topics/{topicID}/conversations", authMiddleware.Require(
		http.HandlerFunc(conversationHandler.Create)))
	mux.Handle("GET /api/conversations/{conversationID}", authMiddleware.Require(
		http.HandlerFunc(conversationHandler.Get)))
	mux.Handle("POST /api/conversations/{conversationID}/participants", authMiddleware.Require(
		http.HandlerFunc(conversationHandler.AddParticipant)))
	mux.Handle("DELETE /api/conversations/{conversationID}/participants/{userID}", authMiddleware.Require(
		http.HandlerFunc(conversationHandler.RemoveParticipant)))

	// Messages — sadece katılımcılar okuyup yazabilir (kontrol service'te)
	mux.Handle("GET /api/conversations/{conversationID}/messages", authMiddleware.Require(
		http.HandlerFunc(messageHandler.List)))
	mux.Handle("POST /api/conversations/{conversationID}/messages", authMiddleware.Require(
		http.HandlerFunc(messageHandler.Create)))

	// Pages — konu altındaki kalıcı dökümanlar
	mux.Handle("GET /api/topics/{topicID}/pages", authMiddleware.Require(
		http.HandlerFunc(pageHandler.ListByTopic)))
	mux.Handle("POST /api/topics/{topicID}/pages", authMiddleware.Require(
		http.HandlerFunc(pageHandler.Create)))
	mux.Handle("GET /api/pages/{pageID}", authMiddleware.Require(
		http.HandlerFunc(pageHandler.Get)))

	// WebSocket — token query parameter ile authenticate edilir
	//
	// Neden auth middleware kullanmıyoruz?
	// WebSocket upgrade sırasında tarayıcılar custom HTTP header gönderemez.
	// Bu yüzden JWT token URL query parameter olarak gönderilir:
	//	ws://server/ws?token=JWT_TOKEN
	// WS handler kendi içinde token doğrulaması yapar.
	mux.HandleFunc("GET /ws", wsHandler.HandleConnection)

	// ─── 10. CORS ───
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000", // Vite dev server
			"http://localhost:5173",
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
