package service

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"agricare-server/config"
	"agricare-server/internal/model"
	"agricare-server/internal/ports"
	"agricare-server/internal/util"
)

// ChatService : диалоги с агро-ассистентом.
// Два типа диалогов: general (свободный чат) и prediction (обсуждение
// распознанной болезни). История хранится в БД, в один диалог помещается
// не больше model.MaxMessagesPerConversation сообщений
type ChatService struct {
	conversationRepository ports.ConversationRepository
	generativeClient       ports.GenerativeClient
}

func NewChatService(
	conversationRepository ports.ConversationRepository,
	generativeClient ports.GenerativeClient,
) *ChatService {
	return &ChatService{
		conversationRepository: conversationRepository,
		generativeClient:       generativeClient,
	}
}

// Chat : свободный диалог с памятью
func (s *ChatService) Chat(ctx context.Context, user *model.User, message string, conversationID *int64) (string, int64, error) {
	db, err := config.DBFromContext(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("[ChatService] %w", err)
	}

	var conversation *model.Conversation
	var history []model.Message

	if conversationID != nil {
		conversation, history, err = s.loadConversation(ctx, db, user.ID, *conversationID, model.ConversationTypeGeneral)
		if err != nil {
			return "", 0, err
		}
	} else {
		conversation, err = s.conversationRepository.CreateConversation(ctx, db, &model.Conversation{
			UserID: user.ID,
			Type:   model.ConversationTypeGeneral,
		})
		if err != nil {
			return "", 0, util.LogError("[ChatService] не удалось создать диалог", err)
		}
	}

	prompt := buildGeneralPrompt(message, history)
	response, err := s.generativeClient.GenerateContent(ctx, prompt)
	if err != nil {
		return "", 0, util.LogError("[ChatService] ошибка генерации ответа", err)
	}
	response = truncateToOneParagraph(response)

	if err := s.saveExchange(ctx, db, conversation.ID, message, response); err != nil {
		return "", 0, err
	}

	return response, conversation.ID, nil
}

// PredictionChat : диалог по результату распознавания болезни
func (s *ChatService) PredictionChat(ctx context.Context, user *model.User, crop, disease, followUp string, conversationID *int64) (string, int64, error) {
	db, err := config.DBFromContext(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("[ChatService] %w", err)
	}

	var conversation *model.Conversation
	var history []model.Message

	if conversationID != nil {
		conversation, history, err = s.loadConversation(ctx, db, user.ID, *conversationID, model.ConversationTypePrediction)
		if err != nil {
			return "", 0, err
		}
		// диалог привязан к конкретной паре культура/болезнь
		if conversation.Crop.String != crop || conversation.Disease.String != disease {
			return "", 0, ErrConversationNotFound
		}
	} else {
		conversation, err = s.conversationRepository.CreateConversation(ctx, db, &model.Conversation{
			UserID:  user.ID,
			Type:    model.ConversationTypePrediction,
			Crop:    sql.NullString{String: crop, Valid: true},
			Disease: sql.NullString{String: disease, Valid: true},
		})
		if err != nil {
			return "", 0, util.LogError("[ChatService] не удалось создать диалог", err)
		}
	}

	prompt := buildDiseasePrompt(disease, crop, history)
	response, err := s.generativeClient.GenerateContent(ctx, prompt)
	if err != nil {
		return "", 0, util.LogError("[ChatService] ошибка генерации ответа", err)
	}
	response = truncateToOneParagraph(response)

	userMessage := followUp
	if userMessage == "" {
		userMessage = fmt.Sprintf("Detected %s in %s", disease, crop)
	}

	if err := s.saveExchange(ctx, db, conversation.ID, userMessage, response); err != nil {
		return "", 0, err
	}

	return response, conversation.ID, nil
}

// ListConversations : все диалоги пользователя с сообщениями
func (s *ChatService) ListConversations(ctx context.Context, user *model.User) ([]model.Conversation, map[int64][]model.Message, error) {
	db, err := config.DBFromContext(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("[ChatService] %w", err)
	}

	conversations, err := s.conversationRepository.ListByUser(ctx, db, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("[ChatService] не удалось получить диалоги: %w", err)
	}

	messages := make(map[int64][]model.Message, len(conversations))
	for _, conversation := range conversations {
		list, err := s.conversationRepository.ListMessages(ctx, db, conversation.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("[ChatService] не удалось получить сообщения: %w", err)
		}
		messages[conversation.ID] = list
	}

	return conversations, messages, nil
}

// GetConversation : один диалог пользователя со всеми сообщениями
func (s *ChatService) GetConversation(ctx context.Context, user *model.User, conversationID int64) (*model.Conversation, []model.Message, error) {
	db, err := config.DBFromContext(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("[ChatService] %w", err)
	}

	conversation, err := s.conversationRepository.FindByIDAndUser(ctx, db, conversationID, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("[ChatService] ошибка поиска диалога: %w", err)
	}
	if conversation == nil {
		return nil, nil, ErrConversationNotFound
	}

	messages, err := s.conversationRepository.ListMessages(ctx, db, conversationID)
	if err != nil {
		return nil, nil, fmt.Errorf("[ChatService] не удалось получить сообщения: %w", err)
	}

	return conversation, messages, nil
}

// loadConversation проверяет принадлежность и тип диалога и лимит сообщений
func (s *ChatService) loadConversation(ctx context.Context, db *config.Database, userID, conversationID int64, conversationType string) (*model.Conversation, []model.Message, error) {
	conversation, err := s.conversationRepository.FindByIDAndUser(ctx, db, conversationID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("[ChatService] ошибка поиска диалога: %w", err)
	}
	if conversation == nil || conversation.Type != conversationType {
		return nil, nil, ErrConversationNotFound
	}

	history, err := s.conversationRepository.ListMessages(ctx, db, conversationID)
	if err != nil {
		return nil, nil, fmt.Errorf("[ChatService] не удалось получить сообщения: %w", err)
	}
	if len(history) >= model.MaxMessagesPerConversation {
		return nil, nil, ErrMessageLimit
	}

	return conversation, history, nil
}

func (s *ChatService) saveExchange(ctx context.Context, db *config.Database, conversationID int64, userMessage, response string) error {
	err := s.conversationRepository.AppendMessage(ctx, db, &model.Message{
		ConversationID: conversationID,
		Role:           "user",
		Content:        userMessage,
	})
	if err != nil {
		return fmt.Errorf("[ChatService] не удалось сохранить сообщение: %w", err)
	}

	err = s.conversationRepository.AppendMessage(ctx, db, &model.Message{
		ConversationID: conversationID,
		Role:           "assistant",
		Content:        response,
	})
	if err != nil {
		return fmt.Errorf("[ChatService] не удалось сохранить ответ: %w", err)
	}

	return nil
}

func buildGeneralPrompt(message string, history []model.Message) string {
	var sb strings.Builder

	if len(history) > 0 {
		sb.WriteString("Previous conversation:\n")
		for _, msg := range history {
			sb.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, msg.Content))
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("User: %s\n\n", message))
		sb.WriteString("You are an agriculture expert chatbot helping rural farmers. Continue the conversation naturally and helpfully.\n")
		sb.WriteString("Provide practical, supportive advice related to farming, crops, weather, or any agricultural concerns.\n")
		sb.WriteString("Keep responses clear, friendly, and actionable for rural farmers.\n")
		sb.WriteString("Limit your response to a single paragraph (max 3 sentences).")
		return sb.String()
	}

	sb.WriteString("You are an agriculture expert chatbot helping rural farmers.\n\n")
	sb.WriteString(fmt.Sprintf("User: %s\n\n", message))
	sb.WriteString("Provide practical, supportive advice related to farming, crops, weather, or any agricultural concerns.\n")
	sb.WriteString("Keep responses clear, friendly, and actionable for rural farmers.\n")
	sb.WriteString("Limit your response to a single paragraph (max 3 sentences).")

	return sb.String()
}

func buildDiseasePrompt(disease, crop string, history []model.Message) string {
	var sb strings.Builder

	if len(history) > 0 {
		sb.WriteString(fmt.Sprintf("Previous conversation about %s in %s:\n", disease, crop))
		for _, msg := range history {
			sb.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, msg.Content))
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Continue the conversation about %s in %s. The user is asking a follow-up question.\n", disease, crop))
		sb.WriteString("Please provide a helpful, supportive response that builds on the previous conversation.\n")
		sb.WriteString("Keep the tone clear, supportive, and practical for a rural farmer.\n")
		sb.WriteString("Limit your response to a single paragraph (max 3 sentences).")
		return sb.String()
	}

	sb.WriteString("You are an agriculture expert chatbot helping a rural farmer.\n")
	sb.WriteString(fmt.Sprintf("The AI system has detected %q in their %q plant.\n\n", disease, crop))
	sb.WriteString("Please give a simple response in one paragraph (max 3 sentences):\n")
	sb.WriteString("- What the disease is (simple explanation)\n")
	sb.WriteString("- How to recognize symptoms (visually)\n")
	sb.WriteString("- Organic and chemical treatments or preventive actions\n")
	sb.WriteString("- Friendly message in local context (short)\n\n")
	sb.WriteString("Keep the tone clear, supportive, and practical.")

	return sb.String()
}

var sentenceSplit = regexp.MustCompile(`(?:[.!?]) +`)

// truncateToOneParagraph обрезает ответ модели до первого абзаца
// и не больше трёх предложений
func truncateToOneParagraph(text string) string {
	paragraph := strings.TrimSpace(strings.SplitN(text, "\n\n", 2)[0])

	ends := sentenceSplit.FindAllStringIndex(paragraph, -1)
	if len(ends) < 3 {
		return paragraph
	}

	return strings.TrimSpace(paragraph[:ends[2][0]+1])
}
