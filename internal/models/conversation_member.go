package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	MEMBER_ROLE_ADMIN  = "admin"
	MEMBER_ROLE_MEMBER = "member"
)

// ConversationMember represents the mapping of users to conversations
type ConversationMember struct {
	gorm.Model
	ConversationID uint      `gorm:"index" json:"conversation_id"`
	UserID         uint      `gorm:"index" json:"user_id"`
	Role           string    `gorm:"not null;default:member" json:"role"`
	JoinedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"joined_at"`
}
