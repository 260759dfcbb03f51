package ports

import (
	"context"

	"agricare-server/internal/model"

	"github.com/jmoiron/sqlx"
)

type ConversationRepository interface {
	CreateConversation(ctx context.Context, exec sqlx.ExtContext, conversation *model.Conversation) (*model.Conversation, error)
	FindByIDAndUser(ctx context.Context, exec sqlx.ExtContext, conversationID, userID int64) (*model.Conversation, error)
	ListByUser(ctx context.Context, exec sqlx.ExtContext, userID int64) ([]model.Conversation, error)
	AppendMessage(ctx context.Context, exec sqlx.ExtContext, message *model.Message) error
	ListMessages(ctx context.Context, exec sqlx.ExtContext, conversationID int64) ([]model.Message, error)
}

type ChatService interface {
	Chat(ctx context.Context, user *model.User, message string, conversationID *int64) (string, int64, error)
	PredictionChat(ctx context.Context, user *model.User, crop, disease, followUp string, conversationID *int64) (string, int64, error)
	ListConversations(ctx context.Context, user *model.User) ([]model.Conversation, map[int64][]model.Message, error)
	GetConversation(ctx context.Context, user *model.User, conversationID int64) (*model.Conversation, []model.Message, error)
}

// GenerativeClient : внешний сервис генерации текста (prompt -> текст)
type GenerativeClient interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
