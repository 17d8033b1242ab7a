package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ujjwal-07/RAG-CHAT/internal/app"
	"github.com/ujjwal-07/RAG-CHAT/internal/transport/http/middleware"
	"github.com/ujjwal-07/RAG-CHAT/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type CreateChatRequest struct {
	Title      string `json:"title" binding:"max=128"`
	DocumentID uint   `json:"document_id"`
}

type SendMessageRequest struct {
	ChatID     uint   `json:"chat_id"`
	DocumentID uint   `json:"document_id"`
	Content    string `json:"content" binding:"required"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) CreateChat(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	chat, err := h.chatService.CreateChat(app.CreateChatInput{
		UserID:     userID,
		DocumentID: req.DocumentID,
		Title:      req.Title,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create chat failed")
		}
		return
	}

	response.OK(c, chat)
}

func (h *ChatHandler) ListChats(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	chats, err := h.chatService.ListChats(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list chats failed")
		return
	}

	response.OK(c, chats)
}

func (h *ChatHandler) DeleteChat(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	chatID, err := parseUintParam(c, "id")
	if err != nil || chatID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid chat id")
		return
	}

	if err := h.chatService.DeleteChat(userID, chatID); err != nil {
		switch {
		case errors.Is(err, app.ErrChatNotFound):
			response.Error(c, http.StatusNotFound, response.CodeChatNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete chat failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted_chat_id": chatID})
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), app.SendMessageInput{
		UserID:     userID,
		ChatID:     req.ChatID,
		DocumentID: req.DocumentID,
		Content:    req.Content,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrMessageEmpty):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrChatNotFound):
			response.Error(c, http.StatusNotFound, response.CodeChatNotFound, err.Error())
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		case errors.Is(err, app.ErrTurnInFlight):
			response.Error(c, http.StatusConflict, response.CodeTurnInFlight, err.Error())
		case errors.Is(err, app.ErrMessageEnqueue):
			response.Error(c, http.StatusServiceUnavailable, response.CodeInternalServer, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "send message failed")
		}
		return
	}

	response.OK(c, result)
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	chatID, err := parseUintParam(c, "id")
	if err != nil || chatID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid chat id")
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, parseErr := strconv.Atoi(raw); parseErr == nil {
			limit = parsed
		}
	}

	history, err := h.chatService.GetHistory(userID, chatID, limit)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrChatNotFound):
			response.Error(c, http.StatusNotFound, response.CodeChatNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get history failed")
		}
		return
	}

	response.OK(c, history)
}

// DeleteLastMessage is the compensating cleanup a client calls after
// abandoning a send mid-flight; it only removes an unanswered user turn.
func (h *ChatHandler) DeleteLastMessage(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	chatID, err := parseUintParam(c, "id")
	if err != nil || chatID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid chat id")
		return
	}

	deleted, err := h.chatService.DeleteLastMessage(userID, chatID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrChatNotFound):
			response.Error(c, http.StatusNotFound, response.CodeChatNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete last message failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted": deleted})
}

func getUserIDFromContext(c *gin.Context) (uint, bool) {
	userIDAny, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := userIDAny.(uint)
	return userID, ok
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	u, err := strconv.ParseUint(c.Param(key), 10, 64)
	return uint(u), err
}
