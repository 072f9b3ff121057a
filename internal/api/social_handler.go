package api

import (
	"fmt"
	"net/http"

	"alcyxob/gym-dashboard/internal/domain"
	"alcyxob/gym-dashboard/internal/state"

	"github.com/gin-gonic/gin"
)

// SocialHandler serves notifications, direct messages, the feed and announcements.
type SocialHandler struct {
	store *state.Store
}

func NewSocialHandler(store *state.Store) *SocialHandler {
	return &SocialHandler{store: store}
}

type SendMessageRequest struct {
	ReceiverID string `json:"receiverId" binding:"required"`
	Text       string `json:"text" binding:"required"`
}

type CreatePostRequest struct {
	Content string `json:"content" binding:"required"`
}

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type AnnouncementRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
}

// --- Notifications ---

func (h *SocialHandler) ListNotifications(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.store.NotificationsFor(userID))
}

func (h *SocialHandler) MarkNotificationRead(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	if err := h.store.MarkNotificationRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SocialHandler) MarkAllNotificationsRead(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": h.store.MarkAllNotificationsRead(c.Request.Context(), userID)})
}

// --- Messages ---

// SendMessage godoc
// @Summary Send a direct message
// @Tags Messages
// @Accept json
// @Produce json
// @Param message body SendMessageRequest true "Message"
// @Success 201 {object} domain.Message
// @Failure 404 {object} gin.H "Receiver not found"
// @Router /messages [post]
func (h *SocialHandler) SendMessage(c *gin.Context) {
	senderID, _, ok := caller(c)
	if !ok {
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	if _, found := h.store.User(req.ReceiverID); !found {
		abortWithError(c, http.StatusNotFound, state.ErrUserNotFound.Error())
		return
	}
	msg, err := h.store.SendMessage(c.Request.Context(), domain.Message{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Text:       req.Text,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// GetConversation returns the caller's conversation with :userId.
func (h *SocialHandler) GetConversation(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.store.Conversation(state.ConversationID(userID, c.Param("userId"))))
}

func (h *SocialHandler) MarkConversationRead(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	convID := state.ConversationID(userID, c.Param("userId"))
	c.JSON(http.StatusOK, gin.H{"updated": h.store.MarkMessagesAsRead(c.Request.Context(), convID, userID)})
}

func (h *SocialHandler) UnreadCount(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": h.store.UnreadMessageCount(userID)})
}

// --- Feed ---

func (h *SocialHandler) ListPosts(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Posts())
}

func (h *SocialHandler) CreatePost(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	post, err := h.store.AddPost(c.Request.Context(), domain.SocialPost{AuthorID: userID, Content: req.Content})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// LikePost toggles the caller's like.
func (h *SocialHandler) LikePost(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	liked, err := h.store.LikePost(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

func (h *SocialHandler) AddComment(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	comment, err := h.store.AddComment(c.Request.Context(), c.Param("id"), domain.Comment{AuthorID: userID, Text: req.Text})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// --- Announcements ---

func (h *SocialHandler) ListAnnouncements(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Announcements())
}

func (h *SocialHandler) CreateAnnouncement(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	a, err := h.store.AddAnnouncement(c.Request.Context(), domain.Announcement{AuthorID: userID, Title: req.Title, Body: req.Body})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}
