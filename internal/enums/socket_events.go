package enums

// Server -> client event discriminants.
const (
	SOCKET_EVENT_CONNECTED                = "connected"
	SOCKET_EVENT_PONG                     = "pong"
	SOCKET_EVENT_NEW_MESSAGE              = "message.new"
	SOCKET_EVENT_USER_ONLINE              = "user_online"
	SOCKET_EVENT_USER_OFFLINE             = "user_offline"
	SOCKET_EVENT_JOINED_CONVERSATION      = "joined_conversation"
	SOCKET_EVENT_CONVERSATION_UPDATED     = "conversation_updated"
	SOCKET_EVENT_MEMBER_KICKED            = "member_kicked"
	SOCKET_EVENT_KICKED_FROM_CONVERSATION = "kicked_from_conversation"
	SOCKET_EVENT_ADMIN_TRANSFERRED        = "conversation.admin_transferred"
	SOCKET_EVENT_ERROR                    = "error"
)

// Client -> server message types.
const (
	SOCKET_EVENT_PING              = "ping"
	SOCKET_EVENT_JOIN_CONVERSATION = "join_conversation"
	SOCKET_EVENT_CREATE_MESSAGE    = "message.create"
)
