package requestresponse

import "time"

// ChatRequest : сообщение пользователя чат-боту
type ChatRequest struct {
	Message        string `json:"message" example:"Как поливать томаты в жару?"`
	ConversationID *int64 `json:"conversation_id,omitempty" example:"12"`
}

// ChatResponse : ответ чат-бота
type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID int64  `json:"conversation_id" example:"12"`
}

// PredictionChatRequest : диалог по результату распознавания болезни
type PredictionChatRequest struct {
	Crop            string `json:"crop" example:"Tomato"`
	Disease         string `json:"disease" example:"Late blight"`
	ConversationID  *int64 `json:"conversation_id,omitempty" example:"13"`
	FollowUpMessage string `json:"follow_up_message,omitempty" example:"Чем обработать?"`
}

// ChatMessageItem : одно сообщение диалога
type ChatMessageItem struct {
	Role      string    `json:"role" example:"user"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationResponse : диалог со всеми сообщениями
type ConversationResponse struct {
	ID        int64             `json:"id" example:"12"`
	Type      string            `json:"conversation_type" example:"general"`
	Crop      string            `json:"crop,omitempty" example:"Tomato"`
	Disease   string            `json:"disease,omitempty" example:"Late blight"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Messages  []ChatMessageItem `json:"messages"`
}
