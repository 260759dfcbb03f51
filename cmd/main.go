package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agricare-server/config"
	_ "agricare-server/docs"
	"agricare-server/internal/genai"
	"agricare-server/internal/handler"
	"agricare-server/internal/inference"
	"agricare-server/internal/repository"
	"agricare-server/internal/security"
	"agricare-server/internal/service"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Agricare-server
// @version 1.0
// @description REST API для мобильного приложения: аутентификация, распознавание болезней растений, агро-чат

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка при закрытии БД: %v", err)
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		log.Fatalf("Ошибка подключения к Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Ошибка при закрытии Redis: %v", err)
		}
	}()

	srv, router := config.SetupServer(cfg.ServerAddr)

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, time.Duration(cfg.TTL.PredictionCache)*time.Second)

	jwtService, err := security.NewJWTService(&cfg.JWT)
	if err != nil {
		log.Fatalf("Ошибка создания JWT сервиса: %v", err)
	}

	s3Service, err := service.NewS3Service(ctx, &cfg.S3Config)
	if err != nil {
		log.Fatalf("Ошибка создания S3 сервиса: %v", err)
	}

	inferenceClient, err := inference.NewClient(&cfg.ML)
	if err != nil {
		log.Fatalf("Ошибка создания клиента инференса: %v", err)
	}

	generativeClient, err := genai.NewClient(&cfg.GenAI)
	if err != nil {
		log.Fatalf("Ошибка создания генеративного клиента: %v", err)
	}

	authService := service.NewAuthenticationService(tokenRepo, userRepo, jwtService, &cfg.JWT)
	userService := service.NewUserService(userRepo, authService)
	predictionService := service.NewPredictionService(inferenceClient, cacheRepo, s3Service, time.Duration(cfg.TTL.PresignURL)*time.Second)
	chatService := service.NewChatService(conversationRepo, generativeClient)

	authHandler := handler.NewAuthenticationHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	predictionHandler := handler.NewPredictionHandler(predictionService)
	chatHandler := handler.NewChatHandler(chatService)

	router.Use(config.DBMiddleware(db))
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/health-check", handler.HealthCheck)

	setupAuthRoutes(router, authHandler, userHandler, jwtService, userRepo)
	setupAPIRoutes(router, predictionHandler, chatHandler, jwtService, userRepo)

	runServer(ctx, srv)
}

func setupAuthRoutes(r chi.Router, h *handler.AuthenticationHandler, uh *handler.UserHandler, jwtService *security.JWTService, userRepo *repository.UserRepository) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Post("/register", uh.RegisterUser)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)
			r.Post("/logout", h.Logout)
		})
		r.Group(func(r chi.Router) {
			r.Use(security.JWTMiddleware(jwtService, userRepo))
			r.Get("/me", h.Me)
			r.Post("/logout-all", h.LogoutAll)
			r.Post("/revoke-token", h.RevokeToken)
		})
	})
}

func setupAPIRoutes(r chi.Router, ph *handler.PredictionHandler, ch *handler.ChatHandler, jwtService *security.JWTService, userRepo *repository.UserRepository) {
	r.Route("/api", func(r chi.Router) {
		r.Use(security.JWTMiddleware(jwtService, userRepo))

		r.Post("/predict", ph.Predict)

		r.Post("/chat", ch.Chat)
		r.Post("/chat/prediction", ch.PredictionChat)
		r.Get("/conversations", ch.ListConversations)
		r.Get("/conversations/{conversation_id}", ch.GetConversation)
	})
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Fatalf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}
