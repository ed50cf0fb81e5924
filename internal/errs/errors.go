package errs

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrInvalidRequestBody     = Error("invalid request body")
	ErrUserAlreadyExists      = Error("user already exists")
	ErrUserNotFound           = Error("user not found")
	ErrWrongPassword          = Error("wrong password")
	ErrInvalidToken           = Error("invalid token")
	ErrInvalidEmail           = Error("invalid email")
	ErrInvalidPassword        = Error("invalid password")
	ErrInvalidUser            = Error("invalid user")
	ErrInvalidRequest         = Error("invalid request")
	ErrInvalidPageOrSize      = Error("invalid page or size")
	ErrFirstName              = Error("first name is empty or too short")
	ErrLastName               = Error("last name is empty or too short")
	ErrUnauthorized           = Error("unauthorized")
	ErrInvalidConversationId  = Error("invalid conversation id")
	ErrConversationNotFound   = Error("conversation not found")
	ErrNotAMember             = Error("user is not a member of this conversation")
	ErrAlreadyMember          = Error("user is already a member of this conversation")
	ErrNotAnAdmin             = Error("only the conversation admin can do this")
	ErrCannotKickYourself     = Error("cannot kick yourself")
	ErrMemberNotFound         = Error("member not found in this conversation")
	ErrFriendshipExists       = Error("friendship already exists")
	ErrFriendshipNotFound     = Error("friendship not found")
	ErrCannotBefriendYourself = Error("cannot send a friend request to yourself")
)
