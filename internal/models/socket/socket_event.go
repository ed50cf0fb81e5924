package socket

import (
	"chatRelay/internal/enums"
	"chatRelay/internal/models"
)

// Event is a single server-to-client payload. Build events through the New*
// constructors only, so every discriminant keeps a fixed wire shape and no
// partially filled payload reaches a connection. Events are immutable once
// constructed and serialize identically for every recipient.
type Event struct {
	Type           string                   `json:"type"`
	UserID         uint                     `json:"user_id,omitempty"`
	ConversationID uint                     `json:"conversation_id,omitempty"`
	Message        any                      `json:"message,omitempty"`
	Conversation   *models.ConversationInfo `json:"conversation,omitempty"`
	KickedUser     *models.UserResponse     `json:"kicked_user,omitempty"`
	KickedBy       *models.UserResponse     `json:"kicked_by,omitempty"`
	OldAdminID     uint                     `json:"old_admin_id,omitempty"`
	NewAdminID     uint                     `json:"new_admin_id,omitempty"`
}

func NewConnectedEvent() Event {
	return Event{
		Type:    enums.SOCKET_EVENT_CONNECTED,
		Message: "WebSocket connected successfully",
	}
}

func NewPongEvent() Event {
	return Event{Type: enums.SOCKET_EVENT_PONG}
}

func NewMessageEvent(record *models.MessageRecord) Event {
	return Event{
		Type:    enums.SOCKET_EVENT_NEW_MESSAGE,
		Message: record,
	}
}

// NewUserStatusEvent reports an online/offline presence transition.
func NewUserStatusEvent(userID uint, online bool) Event {
	eventType := enums.SOCKET_EVENT_USER_OFFLINE
	if online {
		eventType = enums.SOCKET_EVENT_USER_ONLINE
	}
	return Event{Type: eventType, UserID: userID}
}

func NewJoinedConversationEvent(conversationID uint) Event {
	return Event{
		Type:           enums.SOCKET_EVENT_JOINED_CONVERSATION,
		ConversationID: conversationID,
	}
}

func NewConversationUpdatedEvent(conversation models.ConversationInfo) Event {
	return Event{
		Type:         enums.SOCKET_EVENT_CONVERSATION_UPDATED,
		Conversation: &conversation,
	}
}

func NewMemberKickedEvent(conversationID uint, kicked, by *models.UserResponse) Event {
	return Event{
		Type:           enums.SOCKET_EVENT_MEMBER_KICKED,
		ConversationID: conversationID,
		KickedUser:     kicked,
		KickedBy:       by,
	}
}

func NewKickedFromConversationEvent(conversationID uint, text string) Event {
	return Event{
		Type:           enums.SOCKET_EVENT_KICKED_FROM_CONVERSATION,
		ConversationID: conversationID,
		Message:        text,
	}
}

func NewAdminTransferredEvent(conversationID, oldAdminID, newAdminID uint, record *models.MessageRecord) Event {
	return Event{
		Type:           enums.SOCKET_EVENT_ADMIN_TRANSFERRED,
		ConversationID: conversationID,
		OldAdminID:     oldAdminID,
		NewAdminID:     newAdminID,
		Message:        record,
	}
}

func NewErrorEvent(text string) Event {
	return Event{
		Type:    enums.SOCKET_EVENT_ERROR,
		Message: text,
	}
}
