package models

import (
	"time"

	"gorm.io/gorm"
)

// Message rows with a nil SenderID are system messages (admin transfers and
// similar notices).
type Message struct {
	gorm.Model
	ConversationID uint         `gorm:"index" json:"conversation_id"`
	Conversation   Conversation `json:"-"`
	SenderID       *uint        `json:"sender_id"`
	Content        string       `gorm:"not null" json:"content"`
	SeenAt         *time.Time   `json:"seen_at"`
}

// MessageRecord is the canonical wire shape of a persisted message.
type MessageRecord struct {
	ID             uint       `json:"id"`
	ConversationID uint       `json:"conversation_id"`
	SenderID       *uint      `json:"sender_id"`
	Content        string     `json:"content"`
	CreatedAt      time.Time  `json:"created_at"`
	SeenAt         *time.Time `json:"seen_at,omitempty"`
}

func (message *Message) ToRecord() *MessageRecord {
	return &MessageRecord{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		SenderID:       message.SenderID,
		Content:        message.Content,
		CreatedAt:      message.CreatedAt,
		SeenAt:         message.SeenAt,
	}
}
