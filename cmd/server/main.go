package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"pairchat/internal/config"
	"pairchat/internal/database"
	"pairchat/internal/livequery"
	postgresrepo "pairchat/internal/repository/postgres"
	"pairchat/internal/repository/redisrepo"
	"pairchat/internal/service"
	"pairchat/internal/transport/http/handlers"
	"pairchat/internal/transport/http/middleware"
	"pairchat/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("Connected to database")

	if err := database.Migrate(context.Background(), pool); err != nil {
		log.Fatal(err)
	}

	redisClient, err := database.ConnectRedis(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer redisClient.Close()
	log.Println("Connected to redis")

	// Repositories
	identityRepo := postgresrepo.NewIdentityRepo(pool)
	roomRepo := postgresrepo.NewRoomRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)
	mailboxRepo := redisrepo.NewMailboxRepo(redisClient)

	// Live-query bus (cross-instance fan-out over redis pub/sub)
	bus := livequery.NewRedisBus(redisClient)

	// Services
	identityService := service.NewIdentityService(identityRepo, cfg.JWTSecret)
	roomService := service.NewRoomService(roomRepo, mailboxRepo, bus, cfg.RoomTTL)
	pairingService := service.NewPairingService(mailboxRepo, bus)
	messageService := service.NewMessageService(messageRepo, roomRepo, bus, cfg.RoomTTL)

	// Handlers
	identityHandler := handlers.NewIdentityHandler(identityService)
	roomHandler := handlers.NewRoomHandler(roomService, identityService)
	messageHandler := handlers.NewMessageHandler(messageService)

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	auth := middleware.Auth(cfg.JWTSecret)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})

	// Public
	r.Post("/api/v1/identity", identityHandler.Register)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Get("/api/v1/identity/me", identityHandler.Me)
		r.Get("/api/v1/identity/qr-payload", identityHandler.QRPayload)

		r.Post("/api/v1/rooms/join", roomHandler.Join)
		r.Get("/api/v1/rooms", roomHandler.List)
		r.Get("/api/v1/rooms/{id}", roomHandler.Get)
		r.Post("/api/v1/rooms/{id}/extend", roomHandler.Extend)

		r.Get("/api/v1/rooms/{id}/messages", messageHandler.List)
		r.Post("/api/v1/rooms/{id}/messages", messageHandler.Send)
	})

	// WebSocket (token via query param)
	r.Get("/ws", ws.ServeWS(hub, roomService, messageService, pairingService, cfg.JWTSecret))

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("Starting server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
