package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"schoolpay_backend/internal/middleware"
	svcMessaging "schoolpay_backend/internal/services/messaging"
	"schoolpay_backend/pkg/apperrors"
)

type MessagingHandler struct {
	threads  *svcMessaging.ThreadService
	messages *svcMessaging.MessageService
}

func NewMessagingHandler(threads *svcMessaging.ThreadService, messages *svcMessaging.MessageService) *MessagingHandler {
	return &MessagingHandler{threads: threads, messages: messages}
}

func (h *MessagingHandler) RegisterRoutes(r *gin.RouterGroup) {
	threads := r.Group("/threads")
	threads.Use(middleware.AuthMiddleware())
	{
		threads.GET("", h.ListThreads)
		threads.POST("", h.CreateThread)
		threads.GET("/:threadID", h.GetThread)
		threads.GET("/:threadID/messages", h.ListMessages)
		threads.POST("/:threadID/messages", h.SendMessage)
		threads.POST("/:threadID/read", h.MarkRead)
	}
}

// ListThreads returns the caller's threads, freshest first, with unread
// counts.
func (h *MessagingHandler) ListThreads(c *gin.Context) {
	summaries, err := h.threads.ListForUser(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"threads": summaries})
}

func (h *MessagingHandler) CreateThread(c *gin.Context) {
	var input svcMessaging.CreateThreadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.HandleBindingError(c, err)
		return
	}

	thread, err := h.threads.Create(c.Request.Context(), CurrentUserID(c), input)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, thread)
}

func (h *MessagingHandler) GetThread(c *gin.Context) {
	thread, err := h.threads.GetThread(c.Request.Context(), c.Param("threadID"), CurrentUserID(c))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, thread)
}

// ListMessages returns one page of thread messages, oldest first. An
// optional ?before=RFC3339 fetches the page older than that instant.
func (h *MessagingHandler) ListMessages(c *gin.Context) {
	var before time.Time
	if raw := c.Query("before"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			apperrors.HandleError(c, apperrors.ValidationError("message", "before must be an RFC3339 timestamp"))
			return
		}
		before = parsed
	}

	messages, err := h.messages.List(c.Request.Context(), c.Param("threadID"), CurrentUserID(c), before)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *MessagingHandler) SendMessage(c *gin.Context) {
	var input svcMessaging.SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.HandleBindingError(c, err)
		return
	}

	message, err := h.messages.Send(c.Request.Context(), c.Param("threadID"), CurrentUserID(c), input)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (h *MessagingHandler) MarkRead(c *gin.Context) {
	if err := h.threads.MarkRead(c.Request.Context(), c.Param("threadID"), CurrentUserID(c)); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
