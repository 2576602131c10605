package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/courseboard/api/internal/errors"
	"github.com/courseboard/api/internal/middleware"
	"github.com/courseboard/api/internal/models"
	"github.com/courseboard/api/internal/services"
)

// EntryHandler coordinates entry-related HTTP handlers.
type EntryHandler struct {
	entryService      *services.EntryService
	courseService     *services.CourseService
	attachmentService *services.AttachmentService
	contextService    *services.ContextService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(
	entryService *services.EntryService,
	courseService *services.CourseService,
	attachmentService *services.AttachmentService,
	contextService *services.ContextService,
) *EntryHandler {
	return &EntryHandler{
		entryService:      entryService,
		courseService:     courseService,
		attachmentService: attachmentService,
		contextService:    contextService,
	}
}

// Create posts an entry into a course.
func (h *EntryHandler) Create(c *gin.Context) {
	type CreateEntryRequest struct {
		Title       string `json:"title" binding:"required,max=255"`
		Description string `json:"description"`
		DisplayAt   int64  `json:"display_at"`
		DueAt       int64  `json:"due_at"`
		Visible     bool   `json:"is_visible"`
	}

	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	scope := middleware.GetScope(c)
	user := middleware.GetUser(c)

	course, err := h.courseService.FromID(scope, courseID)
	if err != nil {
		respondError(c, err)
		return
	}

	entry, err := h.entryService.Create(scope, user, course, services.CreateEntryInput{
		Title:       req.Title,
		Description: req.Description,
		DisplayAt:   req.DisplayAt,
		DueAt:       req.DueAt,
		Visible:     req.Visible,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, err := h.contextService.Entry(scope, entry, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ctx)
}

// Get returns the entry payload for the signed-in user.
func (h *EntryHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	scope := middleware.GetScope(c)
	user := middleware.GetUser(c)

	entry, err := h.entryService.FromID(scope, id)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, err := h.contextService.Entry(scope, entry, user)
	if err != nil {
		respondError(c, err)
		return
	}
	if ctx == nil {
		apierrors.Forbidden(c, "you are not allowed to view this entry")
		return
	}
	c.JSON(http.StatusOK, ctx)
}

// Update applies partial changes to the entry.
func (h *EntryHandler) Update(c *gin.Context) {
	type UpdateEntryRequest struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		DisplayAt   *int64  `json:"display_at"`
		DueAt       *int64  `json:"due_at"`
		Visible     *bool   `json:"is_visible"`
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	scope := middleware.GetScope(c)
	user := middleware.GetUser(c)

	entry, err := h.entryService.FromID(scope, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.requireEdit(c, entry, user) {
		return
	}

	if req.Title != nil {
		if err := h.entryService.SetTitle(scope, entry, *req.Title); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Description != nil {
		if err := h.entryService.SetDescription(scope, entry, *req.Description); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.DisplayAt != nil {
		if err := h.entryService.SetDisplayTime(scope, entry, *req.DisplayAt); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.DueAt != nil {
		if err := h.entryService.SetDueTime(scope, entry, *req.DueAt); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Visible != nil {
		if err := h.entryService.SetVisible(scope, entry, *req.Visible); err != nil {
			respondError(c, err)
			return
		}
	}

	ctx, err := h.contextService.Entry(scope, entry, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctx)
}

// Delete removes the entry.
func (h *EntryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	scope := middleware.GetScope(c)
	user := middleware.GetUser(c)

	entry, err := h.entryService.FromID(scope, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.requireEdit(c, entry, user) {
		return
	}

	if err := h.entryService.Delete(scope, entry); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Attach records an uploaded file and links it to the entry.
func (h *EntryHandler) Attach(c *gin.Context) {
	type AttachRequest struct {
		Name string `json:"name" binding:"required,max=255"`
		Path string `json:"path" binding:"required,max=512"`
		Size int64  `json:"size"`
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req AttachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	scope := middleware.GetScope(c)
	user := middleware.GetUser(c)

	entry, err := h.entryService.FromID(scope, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.requireEdit(c, entry, user) {
		return
	}

	att, err := h.attachmentService.Create(scope, user, req.Name, req.Path, req.Size)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.entryService.Attach(scope, entry, att); err != nil {
		respondError(c, err)
		return
	}

	ctx, err := h.contextService.Entry(scope, entry, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ctx)
}

// Detach unlinks an attachment from the entry and deletes its record.
func (h *EntryHandler) Detach(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := pathID(c, "attachment_id")
	if !ok {
		return
	}

	scope := middleware.GetScope(c)
	user := middleware.GetUser(c)

	entry, err := h.entryService.FromID(scope, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.requireEdit(c, entry, user) {
		return
	}

	att, err := h.attachmentService.FromID(scope, attachmentID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.entryService.Detach(scope, entry, att.ID); err != nil {
		respondError(c, err)
		return
	}
	if err := h.attachmentService.Delete(scope, att); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// requireEdit rejects users who cannot modify the entry, writing the
// error response itself.
func (h *EntryHandler) requireEdit(c *gin.Context, entry *models.Entry, user models.User) bool {
	scope := middleware.GetScope(c)
	canEdit, err := h.entryService.CanEdit(scope, entry, user)
	if err != nil {
		respondError(c, err)
		return false
	}
	if !canEdit {
		apierrors.Forbidden(c, "you are not allowed to modify this entry")
		return false
	}
	return true
}
