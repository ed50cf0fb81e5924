package models

import (
	"fmt"

	"gorm.io/gorm"
)

const (
	CONVERSATION_TYPE_DIRECT = "direct"
	CONVERSATION_TYPE_GROUP  = "group"
)

type Conversation struct {
	gorm.Model
	Type           string    `gorm:"not null" json:"type"`
	Name           *string   `json:"name"`
	PrivatePairKey *string   `gorm:"uniqueIndex" json:"-"`
	Members        []User    `gorm:"many2many:conversation_members;" json:"-"`
	Messages       []Message `json:"-"`
}

// PairKeyForUsers builds the canonical key that makes a direct conversation
// between two users unique regardless of who initiated it.
func PairKeyForUsers(a, b uint) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("direct:%d:%d", a, b)
}

func (conversation *Conversation) ToConversationResponse(lastMessage *MessageRecord, unread int) ConversationResponse {
	members := []*UserResponse{}
	for _, member := range conversation.Members {
		members = append(members, member.ToUserResponse())
	}
	return ConversationResponse{
		ID:          conversation.ID,
		Type:        conversation.Type,
		Name:        conversation.Name,
		Members:     members,
		LastMessage: lastMessage,
		Unread:      unread,
	}
}

func (conversation *Conversation) ToConversationInfo() ConversationInfo {
	return ConversationInfo{
		ID:   conversation.ID,
		Type: conversation.Type,
		Name: conversation.Name,
	}
}
