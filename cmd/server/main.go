package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"

	"github.com/courseboard/api/internal/config"
	"github.com/courseboard/api/internal/constants"
	"github.com/courseboard/api/internal/database"
	"github.com/courseboard/api/internal/handlers"
	"github.com/courseboard/api/internal/logger"
	"github.com/courseboard/api/internal/metrics"
	"github.com/courseboard/api/internal/middleware"
	"github.com/courseboard/api/internal/notify"
	"github.com/courseboard/api/internal/repository"
	"github.com/courseboard/api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	db := database.GetDB()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	entryRepo := repository.NewEntryRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	// Notification sink. Without a configured relay, sync payloads are
	// logged instead of pushed.
	var pushClient *notify.PushClient
	var notifier notify.Notifier
	if cfg.PushHost != "" {
		pushClient = notify.NewPushClient(cfg.PushHost, cfg.PushHTTPPort, cfg.PushSocketPort, cfg.PushAuthKey)
		notifier = pushClient
	} else {
		notifier = notify.NewLogNotifier(logger.New("notify"))
	}

	// Services
	authService := services.NewAuthService(userRepo, cfg.CookieSalt)
	courseService := services.NewCourseService(courseRepo)
	entryService := services.NewEntryService(entryRepo, courseService)
	questionService := services.NewQuestionService(questionRepo, answerRepo, entryService, courseService)
	answerService := services.NewAnswerService(answerRepo, questionService, courseService)
	attachmentService := services.NewAttachmentService(attachmentRepo, userRepo)
	contextService := services.NewContextService(userRepo, courseService, entryService, questionService, answerService)
	syncService := services.NewSyncService(contextService, courseService, userRepo, notifier)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, attachmentService, contextService)
	courseHandler := handlers.NewCourseHandler(courseService, authService, contextService)
	entryHandler := handlers.NewEntryHandler(entryService, courseService, attachmentService, contextService)
	questionHandler := handlers.NewQuestionHandler(questionService, entryService, contextService)
	answerHandler := handlers.NewAnswerHandler(answerService, questionService, contextService)
	pushHandler := handlers.NewPushHandler(pushClient)

	// Initialize Gin router
	r := gin.Default()
	r.Use(metrics.Middleware())

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Every request gets its own unit of work; pending change
	// notifications flush when the handler chain finishes.
	r.Use(middleware.UnitOfWork(syncService))
	r.Use(middleware.LoadUser(authService))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Courseboard API is running",
		})
	})
	r.GET("/metrics", metrics.Handler())

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/temp-password", authHandler.IssueTempPassword)
			auth.GET("/me", middleware.RequireAuth(), authHandler.Me)
			auth.POST("/password", middleware.RequireAuth(), authHandler.ChangePassword)
			auth.POST("/verify-email", middleware.RequireAuth(), authHandler.VerifyEmail)
			auth.POST("/avatar", middleware.RequireAuth(), authHandler.SetAvatar)
			auth.DELETE("/avatar", middleware.RequireAuth(), authHandler.ClearAvatar)
		}

		// Push relay tickets (protected)
		api.GET("/push/ticket", middleware.RequireAuth(), pushHandler.Ticket)

		// Course routes (protected)
		courses := api.Group("/courses")
		courses.Use(middleware.RequireAuth())
		{
			courses.POST("", courseHandler.Create)
			courses.GET("", courseHandler.List)
			courses.GET("/:id", courseHandler.Get)
			courses.PATCH("/:id", courseHandler.Update)
			courses.POST("/:id/students", courseHandler.AddStudent)
			courses.POST("/:id/professors", courseHandler.AddProfessor)
			courses.DELETE("/:id/members/:user_id", courseHandler.RemoveMember)
			courses.POST("/:id/entries", entryHandler.Create)
		}

		// Entry routes (protected)
		entries := api.Group("/entries")
		entries.Use(middleware.RequireAuth())
		{
			entries.GET("/:id", entryHandler.Get)
			entries.PATCH("/:id", entryHandler.Update)
			entries.DELETE("/:id", entryHandler.Delete)
			entries.POST("/:id/attachments", entryHandler.Attach)
			entries.DELETE("/:id/attachments/:attachment_id", entryHandler.Detach)
			entries.POST("/:id/questions", questionHandler.Create)
		}

		// Question routes (protected)
		questions := api.Group("/questions")
		questions.Use(middleware.RequireAuth())
		{
			questions.GET("/:id", questionHandler.Get)
			questions.PATCH("/:id", questionHandler.Update)
			questions.DELETE("/:id", questionHandler.Delete)
			questions.POST("/:id/answers", answerHandler.Create)
		}

		// Answer routes (protected)
		answers := api.Group("/answers")
		answers.Use(middleware.RequireAuth())
		{
			answers.GET("/:id", answerHandler.Get)
			answers.PATCH("/:id", answerHandler.Update)
			answers.DELETE("/:id", answerHandler.Delete)
			answers.POST("/:id/like", answerHandler.ToggleLike)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
