package model

import (
	"database/sql"
	"time"
)

const (
	ConversationTypeGeneral    = "general"
	ConversationTypePrediction = "prediction"

	// MaxMessagesPerConversation : лимит сообщений в одном диалоге
	MaxMessagesPerConversation = 5
)

type Conversation struct {
	ID        int64          `db:"id"`
	UserID    int64          `db:"user_id"`
	Type      string         `db:"conversation_type"`
	Crop      sql.NullString `db:"crop"`
	Disease   sql.NullString `db:"disease"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type Message struct {
	ID             int64     `db:"id"`
	ConversationID int64     `db:"conversation_id"`
	Role           string    `db:"role"`
	Content        string    `db:"content"`
	CreatedAt      time.Time `db:"created_at"`
}
