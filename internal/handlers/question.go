package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/courseboard/api/internal/errors"
	"github.com/courseboard/api/internal/middleware"
	"github.com/courseboard/api/internal/models"
	"github.com/courseboard/api/internal/services"
)

// QuestionHandler coordinates question-related HTTP handlers.
type QuestionHandler struct {
	questionService *services.QuestionService
	entryService    *services.EntryService
	contextService  *services.ContextService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(
	questionService *services.QuestionService,
	entryService *services.EntryService,
	contextService *services.ContextService,
) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		entryService:    entryService,
		contextService:  contextService,
	}
}

// Create asks a question under an entry. The question and its first
// answer are created together.
func (h *QuestionHandler) Create(c *gin.Context) {
	type CreateQuestionRequest struct {
		Title     string `json:"title" binding:"required,max=255"`
		Text      string `json:"text" binding:"required"`
		IsPrivate bool   `json:"is_private"`
	}

	entryID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	scope := middleware.GetScope(c)
	user := middleware.GetUser(c)

	entry, err := h.entryService.FromID(scope, entryID)
	if err != nil {
		respondError(c, err)
		return
	}

	q, err := h.questionService.Create(scope, user, entry, req.Title, req.Text, req.IsPrivate)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, err := h.contextService.Question(scope, q, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ctx)
}

// Get returns the question payload for the signed-in user.
func (h *QuestionHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	scope := middleware.GetScope(c)
	user := middleware.GetUser(c)

	q, err := h.questionService.FromID(scope, id)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, err := h.contextService.Question(scope, q, user)
	if err != nil {
		respondError(c, err)
		return
	}
	if ctx == nil {
		apierrors.Forbidden(c, "you are not allowed to view this question")
		return
	}
	c.JSON(http.StatusOK, ctx)
}

// Update applies partial changes to the question.
func (h *QuestionHandler) Update(c *gin.Context) {
	type UpdateQuestionRequest struct {
		Title     *string `json:"title"`
		IsPrivate *bool   `json:"is_private"`
		IsClosed  *bool   `json:"is_closed"`
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	scope := middleware.GetScope(c)
	user := middleware.GetUser(c)

	q, err := h.questionService.FromID(scope, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.requireEdit(c, q, user) {
		return
	}

	if req.Title != nil {
		if err := h.questionService.SetTitle(scope, q, *req.Title); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.IsPrivate != nil {
		if err := h.questionService.SetPrivate(scope, q, *req.IsPrivate); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.IsClosed != nil {
		if err := h.questionService.SetClosed(scope, q, *req.IsClosed); err != nil {
			respondError(c, err)
			return
		}
	}

	ctx, err := h.contextService.Question(scope, q, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctx)
}

// Delete removes the question with its answers and likes.
func (h *QuestionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	scope := middleware.GetScope(c)
	user := middleware.GetUser(c)

	q, err := h.questionService.FromID(scope, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.requireEdit(c, q, user) {
		return
	}

	if err := h.questionService.Delete(scope, q); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// requireEdit rejects users who cannot modify the question, writing the
// error response itself.
func (h *QuestionHandler) requireEdit(c *gin.Context, q *models.Question, user models.User) bool {
	scope := middleware.GetScope(c)
	canEdit, err := h.questionService.CanEdit(scope, q, user)
	if err != nil {
		respondError(c, err)
		return false
	}
	if !canEdit {
		apierrors.Forbidden(c, "you are not allowed to modify this question")
		return false
	}
	return true
}
