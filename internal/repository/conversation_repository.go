package repository

import (
	"context"
	"database/sql"
	"errors"

	"agricare-server/config"
	"agricare-server/internal/model"
	"agricare-server/internal/util"

	"github.com/jmoiron/sqlx"
)

type ConversationRepository struct {
	*config.Database
}

func NewConversationRepository(database *config.Database) *ConversationRepository {
	return &ConversationRepository{database}
}

// CreateConversation : создаёт новый диалог
func (r *ConversationRepository) CreateConversation(ctx context.Context, exec sqlx.ExtContext, conversation *model.Conversation) (*model.Conversation, error) {
	query := `
	INSERT INTO conversations (user_id, conversation_type, crop, disease)
	VALUES ($1, $2, $3, $4)
	RETURNING id, user_id, conversation_type, crop, disease, created_at, updated_at
	`

	created := &model.Conversation{}
	err := exec.QueryRowxContext(ctx, query,
		conversation.UserID,
		conversation.Type,
		conversation.Crop,
		conversation.Disease,
	).StructScan(created)

	if err != nil {
		return nil, util.LogError("[ConversationRepo] ошибка создания диалога", err)
	}

	return created, nil
}

// FindByIDAndUser : ищет диалог пользователя.
// Возвращает (nil, nil), если диалога нет или он принадлежит другому
func (r *ConversationRepository) FindByIDAndUser(ctx context.Context, exec sqlx.ExtContext, conversationID, userID int64) (*model.Conversation, error) {
	query := `SELECT id, user_id, conversation_type, crop, disease, created_at, updated_at
				FROM conversations WHERE id = $1 AND user_id = $2`

	var conversation model.Conversation
	err := sqlx.GetContext(ctx, exec, &conversation, query, conversationID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, util.LogError("[ConversationRepo] ошибка при выполнении запроса", err)
	}

	return &conversation, nil
}

// ListByUser : все диалоги пользователя, недавно обновлённые первыми
func (r *ConversationRepository) ListByUser(ctx context.Context, exec sqlx.ExtContext, userID int64) ([]model.Conversation, error) {
	query := `SELECT id, user_id, conversation_type, crop, disease, created_at, updated_at
				FROM conversations WHERE user_id = $1 ORDER BY updated_at DESC`

	var conversations []model.Conversation
	if err := sqlx.SelectContext(ctx, exec, &conversations, query, userID); err != nil {
		return nil, util.LogError("[ConversationRepo] не удалось получить список диалогов", err)
	}

	return conversations, nil
}

// AppendMessage : добавляет сообщение и сдвигает updated_at диалога
func (r *ConversationRepository) AppendMessage(ctx context.Context, exec sqlx.ExtContext, message *model.Message) error {
	query := `INSERT INTO messages (conversation_id, role, content) VALUES ($1, $2, $3)`
	if _, err := exec.ExecContext(ctx, query, message.ConversationID, message.Role, message.Content); err != nil {
		return util.LogError("[ConversationRepo] ошибка добавления сообщения", err)
	}

	touch := `UPDATE conversations SET updated_at = NOW() WHERE id = $1`
	if _, err := exec.ExecContext(ctx, touch, message.ConversationID); err != nil {
		return util.LogError("[ConversationRepo] не удалось обновить updated_at диалога", err)
	}

	return nil
}

// ListMessages : сообщения диалога в порядке создания
func (r *ConversationRepository) ListMessages(ctx context.Context, exec sqlx.ExtContext, conversationID int64) ([]model.Message, error) {
	query := `SELECT id, conversation_id, role, content, created_at
				FROM messages WHERE conversation_id = $1 ORDER BY created_at ASC, id ASC`

	var messages []model.Message
	if err := sqlx.SelectContext(ctx, exec, &messages, query, conversationID); err != nil {
		return nil, util.LogError("[ConversationRepo] не удалось получить сообщения", err)
	}

	return messages, nil
}
