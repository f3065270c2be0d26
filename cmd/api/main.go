package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizhost-api/internal/config"
	"github.com/yourusername/quizhost-api/internal/domain/repository"
	"github.com/yourusername/quizhost-api/internal/handler"
	"github.com/yourusername/quizhost-api/internal/middleware"
	pgRepo "github.com/yourusername/quizhost-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/quizhost-api/internal/repository/redis"
	"github.com/yourusername/quizhost-api/internal/runtime"
	"github.com/yourusername/quizhost-api/internal/service"
	"github.com/yourusername/quizhost-api/internal/service/grader"
	"github.com/yourusername/quizhost-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Redis опционален: без него грейдер работает без кеша вердиктов
	var cacheRepo repository.CacheRepository
	if cfg.Redis.Addr != "" || len(cfg.Redis.Addrs) > 0 {
		redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
		if err != nil {
			log.Printf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		log.Println("Successfully connected to Redis")

		repo, err := redisRepo.NewCacheRepo(redisClient)
		if err != nil {
			log.Printf("Failed to initialize CacheRepo: %v", err)
			os.Exit(1)
		}
		cacheRepo = repo
	} else {
		log.Println("Redis не сконфигурирован, кеш вердиктов отключен")
	}

	// Инициализируем репозитории
	quizRepo := pgRepo.NewQuizRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	sessionRepo := pgRepo.NewSessionRepo(db)
	playerRepo := pgRepo.NewPlayerRepo(db)
	answerRepo := pgRepo.NewAnswerRepo(db)
	snapshotRepo := pgRepo.NewSnapshotRepo(db)

	// Грейдер текстовых ответов (без API-ключа контроллер сравнивает строки сам)
	var graderOracle runtime.Grader
	graderService := grader.New(cfg.Grader, cacheRepo)
	if graderService.Enabled() {
		graderOracle = graderService
		log.Printf("Грейдер включен (модель %s)", cfg.Grader.Model)
	} else {
		log.Println("Грейдер отключен: текстовые ответы сравниваются локально")
	}

	// Отчеты по завершенным сессиям через Resend (опционально)
	var reportService service.ReportService = &service.NoopReportService{}
	if cfg.Email.ResendAPIKey != "" {
		resendService, err := service.NewResendReportService(cfg.Email.ResendAPIKey, cfg.Email.FromEmail, cfg.Email.ReportTo)
		if err != nil {
			log.Printf("Failed to initialize ResendReportService: %v", err)
			os.Exit(1)
		}
		reportService = resendService
		log.Println("Отчеты по сессиям включены")
	}

	// Контроллер live-сессий
	broadcaster := runtime.NewBroadcaster()
	controller := runtime.NewController(runtime.Dependencies{
		Sessions:  sessionRepo,
		Players:   playerRepo,
		Answers:   answerRepo,
		Snapshots: snapshotRepo,
		Grader:    graderOracle,
		Notifier:  reportService,
	}, broadcaster)

	// Инициализируем сервисы
	quizService := service.NewQuizService(quizRepo, questionRepo)
	importService := service.NewImportService(quizRepo, questionRepo)
	sessionService := service.NewSessionService(sessionRepo, playerRepo, answerRepo, snapshotRepo, quizRepo, controller)

	// Инициализируем обработчики
	quizHandler := handler.NewQuizHandler(quizService, importService)
	sessionHandler := handler.NewSessionHandler(sessionService, controller)
	wsHandler := handler.NewWSHandler(controller, cfg.CORS)
	authHandler := handler.NewAuthHandler(cfg.Auth)
	mediaHandler, err := handler.NewMediaHandler(cfg.Media)
	if err != nil {
		log.Printf("Failed to initialize MediaHandler: %v", err)
		os.Exit(1)
	}

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS (список origin синхронизирован с CheckOrigin WebSocket)
	allowedOrigins := cfg.CORS.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Медиафайлы вопросов
	router.StaticFS("/media", http.Dir(mediaHandler.Root()))

	// Маршруты API
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)

		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuth(cfg.Auth))
		{
			quizzes := admin.Group("/quizzes")
			{
				quizzes.GET("", quizHandler.ListQuizzes)
				quizzes.POST("", quizHandler.CreateQuiz)
				quizzes.POST("/import", quizHandler.ImportQuiz)
				quizzes.GET("/:quiz_id", quizHandler.GetQuiz)
				quizzes.PUT("/:quiz_id", quizHandler.UpdateQuiz)
				quizzes.DELETE("/:quiz_id", quizHandler.DeleteQuiz)
				quizzes.POST("/:quiz_id/questions", quizHandler.AddQuestion)
				quizzes.PUT("/:quiz_id/reorder", quizHandler.ReorderQuestions)
			}

			questions := admin.Group("/questions")
			{
				questions.PUT("/:question_id", quizHandler.UpdateQuestion)
				questions.DELETE("/:question_id", quizHandler.DeleteQuestion)
			}

			sessions := admin.Group("/sessions")
			{
				sessions.GET("", sessionHandler.ListSessions)
				sessions.POST("", sessionHandler.CreateSession)
				sessions.GET("/:session_id", sessionHandler.GetSession)
				sessions.GET("/:session_id/state", sessionHandler.GetState)
				sessions.POST("/:session_id/start", sessionHandler.StartSession)
				sessions.POST("/:session_id/resume", sessionHandler.ResumeSession)
				sessions.POST("/:session_id/next", sessionHandler.ForceNext)
				sessions.POST("/:session_id/manual", sessionHandler.SetManual)
				sessions.POST("/:session_id/reset", sessionHandler.ResetSession)
				sessions.POST("/:session_id/reveal_scores", sessionHandler.RevealScores)
				sessions.POST("/:session_id/duplicate", sessionHandler.DuplicateSession)
				sessions.DELETE("/:session_id", sessionHandler.DeleteSession)
			}

			admin.POST("/media", mediaHandler.Upload)
		}
	}

	// WebSocket маршруты наблюдателей
	router.GET("/ws/admin/:session_id", wsHandler.HandleAdmin)
	router.GET("/ws/player/:session_id", wsHandler.HandlePlayer)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	readTimeout := cfg.Server.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 15
	}
	writeTimeout := cfg.Server.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 15
	}
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Останавливаем активную сессию: снапшот последнего этапа уже в БД,
	// после рестарта ее можно поднять через resume
	if activeID := controller.ActiveSessionID(); activeID != "" {
		log.Printf("Активная сессия %s будет остановлена; возобновление через resume", activeID)
		controller.Cancel(activeID)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
