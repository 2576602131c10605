package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/courseboard/api/internal/errors"
	"github.com/courseboard/api/internal/middleware"
	"github.com/courseboard/api/internal/services"
)

// AnswerHandler coordinates answer-related HTTP handlers.
type AnswerHandler struct {
	answerService   *services.AnswerService
	questionService *services.QuestionService
	contextService  *services.ContextService
}

// NewAnswerHandler creates a new AnswerHandler.
func NewAnswerHandler(
	answerService *services.AnswerService,
	questionService *services.QuestionService,
	contextService *services.ContextService,
) *AnswerHandler {
	return &AnswerHandler{
		answerService:   answerService,
		questionService: questionService,
		contextService:  contextService,
	}
}

// Create posts an answer to a question.
func (h *AnswerHandler) Create(c *gin.Context) {
	type CreateAnswerRequest struct {
		Text string `json:"text" binding:"required"`
	}

	questionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CreateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	scope := middleware.GetScope(c)
	user := middleware.GetUser(c)

	q, err := h.questionService.FromID(scope, questionID)
	if err != nil {
		respondError(c, err)
		return
	}

	a, err := h.answerService.Create(scope, user, q, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, err := h.contextService.Answer(scope, a, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ctx)
}

// Get returns the answer payload for the signed-in user.
func (h *AnswerHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	scope := middleware.GetScope(c)
	user := middleware.GetUser(c)

	a, err := h.answerService.FromID(scope, id)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, err := h.contextService.Answer(scope, a, user)
	if err != nil {
		respondError(c, err)
		return
	}
	if ctx == nil {
		apierrors.Forbidden(c, "you are not allowed to view this answer")
		return
	}
	c.JSON(http.StatusOK, ctx)
}

// Update replaces the answer text.
func (h *AnswerHandler) Update(c *gin.Context) {
	type UpdateAnswerRequest struct {
		Text string `json:"text" binding:"required"`
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	scope := middleware.GetScope(c)
	user := middleware.GetUser(c)

	a, err := h.answerService.FromID(scope, id)
	if err != nil {
		respondError(c, err)
		return
	}

	canEdit, err := h.answerService.CanEdit(scope, a, user)
	if err != nil {
		respondError(c, err)
		return
	}
	if !canEdit {
		apierrors.Forbidden(c, "you are not allowed to modify this answer")
		return
	}

	if err := h.answerService.Edit(scope, user, a, req.Text); err != nil {
		respondError(c, err)
		return
	}

	ctx, err := h.contextService.Answer(scope, a, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctx)
}

// Delete removes the answer. Deleting a question's first answer removes
// the whole question.
func (h *AnswerHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	scope := middleware.GetScope(c)
	user := middleware.GetUser(c)

	a, err := h.answerService.FromID(scope, id)
	if err != nil {
		respondError(c, err)
		return
	}

	canEdit, err := h.answerService.CanEdit(scope, a, user)
	if err != nil {
		respondError(c, err)
		return
	}
	if !canEdit {
		apierrors.Forbidden(c, "you are not allowed to delete this answer")
		return
	}

	if err := h.answerService.Delete(scope, a); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleLike flips the signed-in user's like on the answer.
func (h *AnswerHandler) ToggleLike(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	scope := middleware.GetScope(c)
	user := middleware.GetUser(c)

	a, err := h.answerService.FromID(scope, id)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.answerService.ToggleLike(scope, user, a); err != nil {
		respondError(c, err)
		return
	}

	ctx, err := h.contextService.Answer(scope, a, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctx)
}
