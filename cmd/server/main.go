package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"messenger-backend/internal/carrier"
	"messenger-backend/internal/config"
	"messenger-backend/internal/database"
	"messenger-backend/internal/handler"
	"messenger-backend/internal/middleware"
	"messenger-backend/internal/repository"
	"messenger-backend/internal/service"
	"messenger-backend/internal/storage"
	"messenger-backend/internal/websocket"
)

type messageCarrier interface {
	service.Carrier
	Connect(ctx context.Context) error
	Disconnect()
}

func main() {
	cfg := config.LoadConfig()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	store, err := storage.NewLocalStore(cfg.MediaDir, cfg.MediaBaseURL)
	if err != nil {
		log.Fatalf("media store init failed: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	contactRepo := repository.NewContactRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	mediaRepo := repository.NewMediaRepository(db)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	contactService := service.NewContactService(contactRepo)
	mediaService := service.NewMediaService(mediaRepo, store)

	// Messaging, hub and carrier reference each other; wire the cycle by
	// filling the service's collaborators after construction.
	messagingService := service.NewMessagingService(conversationRepo, messageRepo, contactRepo, mediaService, nil, nil)

	hub := websocket.NewHub(messagingService)
	go hub.Run()
	messagingService.Events = hub

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var msgCarrier messageCarrier
	if cfg.CarrierEnabled {
		wa, err := carrier.NewWhatsAppCarrier(ctx, cfg.DatabaseURL, cfg.LogLevel, store, messagingService)
		if err != nil {
			log.Fatalf("carrier init failed: %v", err)
		}
		wa.OnQR = func(code string) {
			hub.BroadcastSystem(websocket.EventCarrierQR, map[string]interface{}{"code": code})
		}
		if err := wa.Connect(ctx); err != nil {
			log.Fatalf("carrier connect failed: %v", err)
		}
		msgCarrier = wa
	} else {
		log.Println("carrier disabled, outbound sends will fail")
		msgCarrier = carrier.NewDisabled()
	}
	defer msgCarrier.Disconnect()
	messagingService.Carrier = msgCarrier

	reconcilerStop := make(chan struct{})
	go messagingService.StartReconciler(cfg.ReconcileInterval, cfg.SendingStaleAfter, reconcilerStop)
	defer close(reconcilerStop)

	authHandler := handler.NewAuthHandler(authService)
	contactHandler := handler.NewContactHandler(contactService)
	conversationHandler := handler.NewConversationHandler(messagingService)
	messageHandler := handler.NewMessageHandler(messagingService)
	mediaHandler := handler.NewMediaHandler(mediaService)
	webhookHandler := handler.NewWebhookHandler(messagingService)
	wsHandler := handler.NewWSHandler(hub, cfg)

	mw := middleware.NewMiddleware(cfg)

	router := mux.NewRouter()
	router.Use(mw.CORS)

	api := router.PathPrefix("/api").Subrouter()

	auth := api.PathPrefix("/auth").Subrouter()
	auth.Use(mw.RateLimitMiddleware)
	auth.HandleFunc("/register", authHandler.Register).Methods("POST", "OPTIONS")
	auth.HandleFunc("/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Carrier callbacks authenticate by obscurity of the deployment URL,
	// not by user token.
	api.HandleFunc("/webhook/inbound", webhookHandler.Receive).Methods("POST")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(mw.AuthMiddleware)

	protected.HandleFunc("/contacts", contactHandler.CreateContact).Methods("POST", "OPTIONS")
	protected.HandleFunc("/contacts", contactHandler.ListContacts).Methods("GET")
	protected.HandleFunc("/contacts/{id:[0-9]+}", contactHandler.GetContact).Methods("GET")
	protected.HandleFunc("/contacts/{id:[0-9]+}", contactHandler.UpdateContact).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/contacts/{id:[0-9]+}", contactHandler.DeleteContact).Methods("DELETE", "OPTIONS")

	protected.HandleFunc("/conversations", conversationHandler.ListConversations).Methods("GET")
	protected.HandleFunc("/conversations", conversationHandler.CreateConversation).Methods("POST", "OPTIONS")
	protected.HandleFunc("/conversations/{id:[0-9]+}/messages", messageHandler.ListMessages).Methods("GET")
	protected.HandleFunc("/conversations/{id:[0-9]+}/read", conversationHandler.MarkRead).Methods("POST", "OPTIONS")

	protected.HandleFunc("/messages/send", messageHandler.SendMessage).Methods("POST", "OPTIONS")

	protected.HandleFunc("/media/upload", mediaHandler.Upload).Methods("POST", "OPTIONS")
	protected.HandleFunc("/media", mediaHandler.ListMediaFiles).Methods("GET")
	protected.HandleFunc("/media/{id:[0-9]+}", mediaHandler.GetMediaFile).Methods("GET")
	protected.HandleFunc("/media/{id:[0-9]+}/download", mediaHandler.Download).Methods("GET")
	protected.HandleFunc("/media/{id:[0-9]+}", mediaHandler.DeleteMediaFile).Methods("DELETE", "OPTIONS")

	router.HandleFunc("/ws", wsHandler.Serve)

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on :%s", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
