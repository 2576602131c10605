package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/courseboard/api/internal/models"
	"github.com/courseboard/api/internal/repository"
	"github.com/courseboard/api/internal/uow"
)

// testEnv wires every service against one in-memory database. Each test
// gets its own database and a frozen clock.
type testEnv struct {
	db    *gorm.DB
	clock time.Time

	users       repository.UserRepository
	auth        *AuthService
	courses     *CourseService
	entries     *EntryService
	questions   *QuestionService
	answers     *AnswerService
	attachments *AttachmentService
	contexts    *ContextService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

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

	env := &testEnv{
		db:    db,
		clock: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
		users: userRepo,
	}

	env.auth = NewAuthService(userRepo, "app-cookie-salt")
	env.auth.now = env.now
	env.courses = NewCourseService(courseRepo)
	env.entries = NewEntryService(entryRepo, env.courses)
	env.entries.now = env.now
	env.questions = NewQuestionService(questionRepo, answerRepo, env.entries, env.courses)
	env.questions.now = env.now
	env.answers = NewAnswerService(answerRepo, env.questions, env.courses)
	env.answers.now = env.now
	env.attachments = NewAttachmentService(attachmentRepo, userRepo)
	env.contexts = NewContextService(userRepo, env.courses, env.entries, env.questions, env.answers)
	env.contexts.now = env.now

	return env
}

func (e *testEnv) now() time.Time {
	return e.clock
}

func guest() models.User {
	return models.Guest
}

// createUser inserts a bare account; credential fields are filled with
// placeholders since most tests only care about identity and roles.
func (e *testEnv) createUser(t *testing.T, name string, admin bool) models.User {
	t.Helper()

	user := &models.User{
		FirstName:    name,
		LastName:     "Test",
		Email:        fmt.Sprintf("%s@example.com", name),
		Admin:        admin,
		PasswordHash: "x",
		PasswordSalt: "x",
		CookieSalt:   "x",
	}
	require.NoError(t, e.users.Create(user))
	return *user
}

// createCourse creates a course owned by the professor, through the
// service so the creator enrollment happens.
func (e *testEnv) createCourse(t *testing.T, scope *uow.Scope, professor models.User) *models.Course {
	t.Helper()

	course, err := e.courses.Create(scope, professor, "Distributed Systems", "DS-101")
	require.NoError(t, err)
	return course
}

// createVisibleEntry posts an already-displayed visible entry.
func (e *testEnv) createVisibleEntry(t *testing.T, scope *uow.Scope, professor models.User, course *models.Course) *models.Entry {
	t.Helper()

	entry, err := e.entries.Create(scope, professor, course, CreateEntryInput{
		Title:     "Week 1",
		DisplayAt: e.clock.Add(-time.Hour).Unix(),
		Visible:   true,
	})
	require.NoError(t, err)
	return entry
}
