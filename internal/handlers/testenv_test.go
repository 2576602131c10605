package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/courseboard/api/internal/constants"
	"github.com/courseboard/api/internal/database"
	"github.com/courseboard/api/internal/logger"
	"github.com/courseboard/api/internal/middleware"
	"github.com/courseboard/api/internal/models"
	"github.com/courseboard/api/internal/notify"
	"github.com/courseboard/api/internal/repository"
	"github.com/courseboard/api/internal/services"
)

type handlerTestEnv struct {
	db     *gorm.DB
	router *gin.Engine

	auth     *services.AuthService
	courses  *services.CourseService
	entries  *services.EntryService
	contexts *services.ContextService
}

func setupHandlerTestEnv(t *testing.T) *handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.CourseMember{},
		&models.Entry{},
		&models.Question{},
		&models.Answer{},
		&models.AnswerLike{},
		&models.Attachment{},
		&models.EntryAttachment{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	entryRepo := repository.NewEntryRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	authService := services.NewAuthService(userRepo, "test-cookie-salt")
	courseService := services.NewCourseService(courseRepo)
	entryService := services.NewEntryService(entryRepo, courseService)
	questionService := services.NewQuestionService(questionRepo, answerRepo, entryService, courseService)
	answerService := services.NewAnswerService(answerRepo, questionService, courseService)
	attachmentService := services.NewAttachmentService(attachmentRepo, userRepo)
	contextService := services.NewContextService(userRepo, courseService, entryService, questionService, answerService)
	syncService := services.NewSyncService(contextService, courseService, userRepo, notify.NewLogNotifier(logger.New("test")))

	authHandler := NewAuthHandler(authService, attachmentService, contextService)
	courseHandler := NewCourseHandler(courseService, authService, contextService)
	entryHandler := NewEntryHandler(entryService, courseService, attachmentService, contextService)
	questionHandler := NewQuestionHandler(questionService, entryService, contextService)
	answerHandler := NewAnswerHandler(answerService, questionService, contextService)

	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.Use(middleware.UnitOfWork(syncService))
	r.Use(middleware.LoadUser(authService))

	api := r.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", middleware.RequireAuth(), authHandler.Me)
	auth.POST("/password", middleware.RequireAuth(), authHandler.ChangePassword)
	auth.POST("/avatar", middleware.RequireAuth(), authHandler.SetAvatar)
	auth.DELETE("/avatar", middleware.RequireAuth(), authHandler.ClearAvatar)

	courses := api.Group("/courses", middleware.RequireAuth())
	courses.POST("", courseHandler.Create)
	courses.GET("", courseHandler.List)
	courses.GET("/:id", courseHandler.Get)
	courses.PATCH("/:id", courseHandler.Update)
	courses.POST("/:id/students", courseHandler.AddStudent)
	courses.POST("/:id/entries", entryHandler.Create)

	entries := api.Group("/entries", middleware.RequireAuth())
	entries.GET("/:id", entryHandler.Get)
	entries.POST("/:id/questions", questionHandler.Create)

	questions := api.Group("/questions", middleware.RequireAuth())
	questions.GET("/:id", questionHandler.Get)
	questions.POST("/:id/answers", answerHandler.Create)

	answers := api.Group("/answers", middleware.RequireAuth())
	answers.POST("/:id/like", answerHandler.ToggleLike)

	return &handlerTestEnv{
		db:       db,
		router:   r,
		auth:     authService,
		courses:  courseService,
		entries:  entryService,
		contexts: contextService,
	}
}

// signup registers a user through the API and returns the session
// cookies of the fresh account.
func (e *handlerTestEnv) signup(t *testing.T, email string) []*http.Cookie {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"first_name": "Test",
		"last_name":  "User",
		"email":      email,
		"password":   "supersecret",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	return w.Result().Cookies()
}

// do runs one request through the router.
func (e *handlerTestEnv) do(t *testing.T, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}
