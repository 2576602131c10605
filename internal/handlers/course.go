package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/courseboard/api/internal/errors"
	"github.com/courseboard/api/internal/middleware"
	"github.com/courseboard/api/internal/models"
	"github.com/courseboard/api/internal/services"
	"github.com/courseboard/api/internal/uow"
)

// CourseHandler coordinates course-related HTTP handlers.
type CourseHandler struct {
	courseService  *services.CourseService
	authService    *services.AuthService
	contextService *services.ContextService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(
	courseService *services.CourseService,
	authService *services.AuthService,
	contextService *services.ContextService,
) *CourseHandler {
	return &CourseHandler{
		courseService:  courseService,
		authService:    authService,
		contextService: contextService,
	}
}

// Create creates a course with the signed-in user as professor.
func (h *CourseHandler) Create(c *gin.Context) {
	type CreateCourseRequest struct {
		Title string `json:"title" binding:"required,max=255"`
		Code  string `json:"code" binding:"required,max=50"`
	}

	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	scope := middleware.GetScope(c)
	user := middleware.GetUser(c)

	course, err := h.courseService.Create(scope, user, req.Title, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, err := h.contextService.Course(scope, course, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ctx)
}

// List returns the courses the signed-in user is enrolled in.
func (h *CourseHandler) List(c *gin.Context) {
	user := middleware.GetUser(c)

	courses, err := h.courseService.ListForUser(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

// Get returns the full course payload for the signed-in user. The
// payload is always produced; viewers without access get only the
// headline fields and flags.
func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	scope := middleware.GetScope(c)
	user := middleware.GetUser(c)

	course, err := h.courseService.FromID(scope, id)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, err := h.contextService.Course(scope, course, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctx)
}

// Update applies partial changes to the course.
func (h *CourseHandler) Update(c *gin.Context) {
	type UpdateCourseRequest struct {
		Title *string `json:"title"`
		Code  *string `json:"code"`
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	scope := middleware.GetScope(c)
	user := middleware.GetUser(c)

	course, err := h.requireEditable(c, scope, id, user)
	if err != nil {
		return
	}

	if req.Title != nil {
		if err := h.courseService.SetTitle(scope, course, *req.Title); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Code != nil {
		if err := h.courseService.SetCode(scope, course, *req.Code); err != nil {
			respondError(c, err)
			return
		}
	}

	ctx, err := h.contextService.Course(scope, course, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctx)
}

// AddStudent enrolls a user as a student of the course.
func (h *CourseHandler) AddStudent(c *gin.Context) {
	h.addMember(c, false)
}

// AddProfessor enrolls a user as a professor of the course.
func (h *CourseHandler) AddProfessor(c *gin.Context) {
	h.addMember(c, true)
}

func (h *CourseHandler) addMember(c *gin.Context, asProfessor bool) {
	type AddMemberRequest struct {
		UserID int64 `json:"user_id" binding:"required"`
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	scope := middleware.GetScope(c)
	user := middleware.GetUser(c)

	course, err := h.requireEditable(c, scope, id, user)
	if err != nil {
		return
	}

	member, err := h.authService.UserFromID(scope, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	if asProfessor {
		err = h.courseService.AddProfessor(scope, course, *member)
	} else {
		err = h.courseService.AddStudent(scope, course, *member)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, err := h.contextService.Course(scope, course, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctx)
}

// RemoveMember withdraws a user from the course.
func (h *CourseHandler) RemoveMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	scope := middleware.GetScope(c)
	user := middleware.GetUser(c)

	course, err := h.requireEditable(c, scope, id, user)
	if err != nil {
		return
	}

	member, err := h.authService.UserFromID(scope, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.courseService.RemoveUser(scope, course, *member); err != nil {
		respondError(c, err)
		return
	}

	ctx, err := h.contextService.Course(scope, course, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctx)
}

// requireEditable loads the course and rejects users who cannot edit
// it. Writes the error response itself; callers just return on error.
func (h *CourseHandler) requireEditable(c *gin.Context, scope *uow.Scope, id int64, user models.User) (*models.Course, error) {
	course, err := h.courseService.FromID(scope, id)
	if err != nil {
		respondError(c, err)
		return nil, err
	}

	canEdit, err := h.courseService.CanEdit(scope, course, user)
	if err != nil {
		respondError(c, err)
		return nil, err
	}
	if !canEdit {
		err := apierrors.PermissionError("you are not allowed to manage this course")
		respondError(c, err)
		return nil, err
	}
	return course, nil
}
