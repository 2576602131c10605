package dto

// Context payloads are permission-filtered snapshots of the content
// tree: what one specific viewer is allowed to see. They are what sync
// pushes to the relay and what the read endpoints return.

// UserContext is the identity snapshot embedded wherever a user is
// referenced.
type UserContext struct {
	IsGuest            bool   `json:"is_guest"`
	IsAdmin            bool   `json:"is_admin"`
	UserID             int64  `json:"userid"`
	Email              string `json:"email"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	FullName           string `json:"full_name"`
	EmailVerified      bool   `json:"email_verified"`
	AvatarAttachmentID int64  `json:"avatar_attachmentid,omitempty"`
}

// AttachmentContext describes one attachment of an entry.
type AttachmentContext struct {
	AttachmentID int64  `json:"attachmentid"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	CreatedAt    int64  `json:"created_at"`
}

// AnswerContext is one answer as seen by the requesting user.
type AnswerContext struct {
	AnswerID       int64         `json:"answerid"`
	QuestionID     int64         `json:"questionid"`
	CreatedAt      int64         `json:"created_at"`
	CreatedBy      UserContext   `json:"created_by"`
	Edited         bool          `json:"edited"`
	EditedAt       int64         `json:"edited_at"`
	EditedBy       UserContext   `json:"edited_by"`
	Text           string        `json:"text"`
	CanEdit        bool          `json:"can_edit"`
	LikeCount      int           `json:"like_count"`
	Likes          []UserContext `json:"likes"`
	HasLiked       bool          `json:"has_liked"`
	ProfessorLiked bool          `json:"professor_liked"`
}

// QuestionContext is one question thread as seen by the requesting user.
type QuestionContext struct {
	QuestionID int64           `json:"questionid"`
	EntryID    int64           `json:"entryid"`
	CourseID   int64           `json:"courseid"`
	Title      string          `json:"title"`
	IsPrivate  bool            `json:"is_private"`
	IsClosed   bool            `json:"is_closed"`
	CanAnswer  bool            `json:"can_answer"`
	CanEdit    bool            `json:"can_edit"`
	Answers    []AnswerContext `json:"answers"`
}

// EntryContext is one entry as seen by the requesting user.
type EntryContext struct {
	EntryID     int64               `json:"entryid"`
	CourseID    int64               `json:"courseid"`
	CreatedBy   UserContext         `json:"created_by"`
	CanEdit     bool                `json:"can_edit"`
	IsDue       bool                `json:"is_due"`
	DueAt       int64               `json:"due_at"`
	DisplayAt   int64               `json:"display_at"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	IsVisible   bool                `json:"is_visible"`
	IsImportant bool                `json:"is_important"`
	Questions   []QuestionContext   `json:"questions"`
	Attachments []AttachmentContext `json:"attachments"`
}

// CourseContext is the root payload. Unlike the child contexts it is
// always produced; when the viewer cannot see the course it carries
// only the flags and headline fields, never the tree below.
type CourseContext struct {
	CourseID   int64          `json:"courseid"`
	CanView    bool           `json:"can_view"`
	CanEdit    bool           `json:"can_edit"`
	Title      string         `json:"title"`
	Code       string         `json:"code"`
	Professors []UserContext  `json:"professors,omitempty"`
	Students   []UserContext  `json:"students,omitempty"`
	Entries    []EntryContext `json:"entries,omitempty"`
}
