package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"agricare-server/internal/model"
	"agricare-server/internal/model/requestresponse"
	"agricare-server/internal/ports"
	"agricare-server/internal/security"

	"github.com/go-chi/chi/v5"
)

type ChatHandler struct {
	ports.ChatService
}

func NewChatHandler(chatService ports.ChatService) *ChatHandler {
	return &ChatHandler{chatService}
}

// Chat godoc
// @Summary Сообщение чат-боту
// @Description Свободный диалог с агро-ассистентом; память диалога хранится на сервере
// @Tags Chat
// @Accept json
// @Produce json
// @Param body body requestresponse.ChatRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ChatResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Достигнут лимит сообщений"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse "Диалог не найден"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/chat [post]
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	user, err := security.GetUserFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		return
	}

	var req requestresponse.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "некорректный JSON")
		return
	}

	if req.Message == "" {
		sendErrorResponse(w, http.StatusBadRequest, "message обязателен")
		return
	}

	response, conversationID, err := h.ChatService.Chat(r.Context(), user, req.Message, req.ConversationID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, requestresponse.ChatResponse{
		Response:       response,
		ConversationID: conversationID,
	})
}

// PredictionChat godoc
// @Summary Диалог по результату распознавания
// @Description Обсуждение распознанной болезни; диалог привязан к паре культура/болезнь
// @Tags Chat
// @Accept json
// @Produce json
// @Param body body requestresponse.PredictionChatRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ChatResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/chat/prediction [post]
func (h *ChatHandler) PredictionChat(w http.ResponseWriter, r *http.Request) {
	user, err := security.GetUserFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		return
	}

	var req requestresponse.PredictionChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "некорректный JSON")
		return
	}

	if req.Crop == "" || req.Disease == "" {
		sendErrorResponse(w, http.StatusBadRequest, "crop и disease обязательны")
		return
	}

	response, conversationID, err := h.ChatService.PredictionChat(r.Context(), user, req.Crop, req.Disease, req.FollowUpMessage, req.ConversationID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, requestresponse.ChatResponse{
		Response:       response,
		ConversationID: conversationID,
	})
}

// ListConversations godoc
// @Summary Список диалогов пользователя
// @Tags Chat
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {array} requestresponse.ConversationResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/conversations [get]
func (h *ChatHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	user, err := security.GetUserFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		return
	}

	conversations, messages, err := h.ChatService.ListConversations(r.Context(), user)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	result := make([]requestresponse.ConversationResponse, 0, len(conversations))
	for _, conversation := range conversations {
		result = append(result, toConversationResponse(&conversation, messages[conversation.ID]))
	}

	sendJSON(w, http.StatusOK, result)
}

// GetConversation godoc
// @Summary Диалог со всеми сообщениями
// @Tags Chat
// @Produce json
// @Param conversation_id path int true "ID диалога"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ConversationResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse "Диалог не найден"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/conversations/{conversation_id} [get]
func (h *ChatHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	user, err := security.GetUserFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		return
	}

	conversationID, err := strconv.ParseInt(chi.URLParam(r, "conversation_id"), 10, 64)
	if err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "некорректный ID диалога")
		return
	}

	conversation, messages, err := h.ChatService.GetConversation(r.Context(), user, conversationID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, toConversationResponse(conversation, messages))
}

func toConversationResponse(conversation *model.Conversation, messages []model.Message) requestresponse.ConversationResponse {
	items := make([]requestresponse.ChatMessageItem, 0, len(messages))
	for _, msg := range messages {
		items = append(items, requestresponse.ChatMessageItem{
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}

	return requestresponse.ConversationResponse{
		ID:        conversation.ID,
		Type:      conversation.Type,
		Crop:      conversation.Crop.String,
		Disease:   conversation.Disease.String,
		CreatedAt: conversation.CreatedAt,
		UpdatedAt: conversation.UpdatedAt,
		Messages:  items,
	}
}
