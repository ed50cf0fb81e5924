package models

type ConversationResponse struct {
	ID          uint            `json:"id"`
	Type        string          `json:"type"`
	Name        *string         `json:"name"`
	Members     []*UserResponse `json:"members"`
	LastMessage *MessageRecord  `json:"last_message"`
	Unread      int             `json:"unread"`
}

// ConversationInfo is the slim shape used inside socket events.
type ConversationInfo struct {
	ID   uint    `json:"id"`
	Type string  `json:"type"`
	Name *string `json:"name"`
}
