package repository

import (
	"github.com/courseboard/api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id int64) (*models.User, error)

	// FindByEmail finds a user by email address (case-insensitive)
	FindByEmail(email string) (*models.User, error)

	// Update persists all fields of the user
	Update(user *models.User) error

	// ListAdmins lists every site-wide admin, not scoped to any course
	ListAdmins() ([]models.User, error)
}

// CourseRepository defines the interface for course data access
type CourseRepository interface {
	// Create creates a new course
	Create(course *models.Course) error

	// FindByID finds a course by ID
	FindByID(id int64) (*models.Course, error)

	// ListForUser lists the courses a user is enrolled in, ordered by title
	ListForUser(userID int64) ([]models.Course, error)

	// Update persists all fields of the course
	Update(course *models.Course) error

	// AddMember enrolls a user in a course with a role
	AddMember(member *models.CourseMember) error

	// RemoveMember removes a user's enrollment
	RemoveMember(courseID, userID int64) error

	// ListMembers lists all enrollments of a course with users preloaded,
	// ordered by user id
	ListMembers(courseID int64) ([]models.CourseMember, error)
}

// EntryRepository defines the interface for entry data access
type EntryRepository interface {
	// Create creates a new entry
	Create(entry *models.Entry) error

	// FindByID finds an entry by ID
	FindByID(id int64) (*models.Entry, error)

	// ListByCourse lists a course's entries ordered by display time
	ListByCourse(courseID int64) ([]models.Entry, error)

	// Update persists all fields of the entry
	Update(entry *models.Entry) error

	// Delete removes the entry row
	Delete(id int64) error

	// Attach links an attachment to an entry
	Attach(link *models.EntryAttachment) error

	// Detach unlinks an attachment from an entry
	Detach(entryID, attachmentID int64) error

	// ListAttachments lists the attachments linked to an entry
	ListAttachments(entryID int64) ([]models.Attachment, error)
}

// QuestionRepository defines the interface for question data access
type QuestionRepository interface {
	// CreateWithFirstAnswer inserts the question, its first answer and the
	// first-answer backfill in one transaction. On success both structs
	// carry their generated ids and q.FirstAnswerID is set.
	CreateWithFirstAnswer(q *models.Question, a *models.Answer) error

	// FindByID finds a question by ID
	FindByID(id int64) (*models.Question, error)

	// ListByEntry lists an entry's questions, newest first
	ListByEntry(entryID int64) ([]models.Question, error)

	// Update persists all fields of the question
	Update(q *models.Question) error

	// DeleteCascade removes the question, all of its answers and their
	// likes in one transaction, returning the deleted answer ids.
	DeleteCascade(id int64) ([]int64, error)
}

// AnswerRepository defines the interface for answer data access
type AnswerRepository interface {
	// Create creates a new answer
	Create(a *models.Answer) error

	// FindByID finds an answer by ID
	FindByID(id int64) (*models.Answer, error)

	// ListByQuestion lists a question's answers, oldest first
	ListByQuestion(questionID int64) ([]models.Answer, error)

	// Update persists all fields of the answer
	Update(a *models.Answer) error

	// Delete removes the answer row and its likes
	Delete(id int64) error

	// Like records a user liking an answer
	Like(like *models.AnswerLike) error

	// Unlike removes a user's like
	Unlike(answerID, userID int64) error

	// HasLiked reports whether the user has liked the answer
	HasLiked(answerID, userID int64) (bool, error)

	// ListLikes lists an answer's likes with users preloaded
	ListLikes(answerID int64) ([]models.AnswerLike, error)
}

// AttachmentRepository defines the interface for attachment metadata access
type AttachmentRepository interface {
	// Create creates a new attachment record
	Create(a *models.Attachment) error

	// FindByID finds an attachment by ID
	FindByID(id int64) (*models.Attachment, error)

	// Delete removes the attachment record
	Delete(id int64) error
}
