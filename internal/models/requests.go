package models

type LoginRequestBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// CreateConversationRequestBody creates either a direct conversation (Users
// holds the single peer id) or a named group.
type CreateConversationRequestBody struct {
	Type  string  `json:"type"`
	Name  *string `json:"name"`
	Users []uint  `json:"users"`
}

type MessageRequest struct {
	Content string `json:"content"`
}

type AddMemberRequestBody struct {
	Email string `json:"email"`
}

type UpdateConversationRequestBody struct {
	Name string `json:"name"`
}

type TransferAdminRequestBody struct {
	NewAdminID uint `json:"new_admin_id"`
}

type FriendRequestBody struct {
	UserID uint `json:"user_id"`
}
