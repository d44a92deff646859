// Package api exposes the chat room over HTTP. Handlers stay thin: bind,
// call the service, map sentinel errors to status codes. Identity travels in
// the User header as the participant's registered name.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"

	apperrors "sala-chat/errors"
	"sala-chat/sanitize"
	"sala-chat/services"
)

// identityHeader carries the requester's registered name. No token or
// session exists beyond it.
const identityHeader = "User"

type Handler struct {
	participants services.IParticipantService
	messages     services.IMessageService
	log          *slog.Logger
}

func NewHandler(
	participants services.IParticipantService,
	messages services.IMessageService,
	log *slog.Logger,
) *Handler {
	return &Handler{participants: participants, messages: messages, log: log}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/participants", h.RegisterParticipant)
	r.GET("/participants", h.ListParticipants)
	r.POST("/messages", h.PostMessage)
	r.GET("/messages", h.ListMessages)
	r.GET("/messages/search", h.SearchMessages)
	r.PUT("/messages/:id", h.EditMessage)
	r.DELETE("/messages/:id", h.DeleteMessage)
	r.POST("/status", h.PingStatus)
	r.GET("/health", h.Health)
}

func (h *Handler) RegisterParticipant(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []string{"body must be a JSON object with a name field"}})
		return
	}

	if err := h.participants.Register(req.Name); err != nil {
		h.writeError(c, err, http.StatusUnprocessableEntity)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *Handler) ListParticipants(c *gin.Context) {
	participants, err := h.participants.List()
	if err != nil {
		h.writeError(c, err, http.StatusUnprocessableEntity)
		return
	}
	c.JSON(http.StatusOK, toParticipantResponses(participants))
}

func (h *Handler) PostMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []string{"body must be a JSON object with to, text and type fields"}})
		return
	}

	id, err := h.messages.Post(h.identity(c), req.To, req.Text, req.Type)
	if err != nil {
		// An unregistered sender is a request-level defect here, not a 404.
		h.writeError(c, err, http.StatusUnprocessableEntity)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id.String()})
}

func (h *Handler) ListMessages(c *gin.Context) {
	limit, ok := h.limitParam(c)
	if !ok {
		return
	}

	messages, err := h.messages.ListFor(h.identity(c), limit)
	if err != nil {
		h.writeError(c, err, http.StatusUnprocessableEntity)
		return
	}
	c.JSON(http.StatusOK, toMessageResponses(messages))
}

func (h *Handler) SearchMessages(c *gin.Context) {
	limit, ok := h.limitParam(c)
	if !ok {
		return
	}

	results, err := h.messages.Search(c.Request.Context(), h.identity(c), c.Query("q"), limit)
	if err != nil {
		h.writeError(c, err, http.StatusUnprocessableEntity)
		return
	}
	c.JSON(http.StatusOK, toMessageResponses(results))
}

func (h *Handler) EditMessage(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []string{"body must be a JSON object with to, text and type fields"}})
		return
	}

	if err := h.messages.Edit(id, h.identity(c), req.To, req.Text, req.Type); err != nil {
		h.writeError(c, err, http.StatusNotFound)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) DeleteMessage(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	if err := h.messages.Delete(id, h.identity(c)); err != nil {
		h.writeError(c, err, http.StatusNotFound)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) PingStatus(c *gin.Context) {
	if err := h.participants.Ping(h.identity(c)); err != nil {
		h.writeError(c, err, http.StatusNotFound)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) identity(c *gin.Context) string {
	return sanitize.Clean(c.GetHeader(identityHeader))
}

// limitParam parses the optional limit query. Missing or non-positive means
// no limit; a malformed value fails the request.
func (h *Handler) limitParam(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []string{"limit must be an integer"}})
		return 0, false
	}
	return limit, true
}

// idParam parses the message id path segment. A malformed id cannot name any
// stored message, so it reads as not found.
func (h *Handler) idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": apperrors.ErrMessageNotFound.Error()})
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps service failures to status codes. unregisteredStatus
// decides how a missing participant surfaces: 422 on the message endpoints,
// 404 on ping and the mutation endpoints.
func (h *Handler) writeError(c *gin.Context, err error, unregisteredStatus int) {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": fieldMessages(validationErrs)})
	case errors.Is(err, apperrors.ErrNameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrParticipantNotFound):
		c.JSON(unregisteredStatus, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotMessageOwner):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		h.log.Error("Request failed", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func fieldMessages(errs validator.ValidationErrors) []string {
	return lo.Map(errs, func(fe validator.FieldError, _ int) string {
		return fe.Field() + " failed " + fe.Tag() + " validation"
	})
}
