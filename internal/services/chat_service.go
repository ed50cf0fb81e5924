package services

import (
	"chatRelay/internal/errs"
	"chatRelay/internal/models"
	"chatRelay/internal/repositories"
)

type ChatService struct {
	chatRepo *repositories.ChatRepository
	authRepo *repositories.AuthenticationRepository
}

func NewChatService(chatRepo *repositories.ChatRepository, authRepo *repositories.AuthenticationRepository) *ChatService {
	return &ChatService{
		chatRepo: chatRepo,
		authRepo: authRepo,
	}
}

// LookupMembers implements realtime.MemberLookup.
func (cs *ChatService) LookupMembers(conversationID uint) ([]uint, error) {
	return cs.chatRepo.GetConversationMemberIds(conversationID)
}

// CreateConversation creates a direct conversation (get-or-create against
// the pair key) or a new group with the creator as admin.
func (cs *ChatService) CreateConversation(creatorID uint, body *models.CreateConversationRequestBody) (*models.Conversation, []error) {
	switch body.Type {
	case models.CONVERSATION_TYPE_DIRECT:
		if len(body.Users) != 1 || body.Users[0] == creatorID {
			return nil, []error{errs.ErrInvalidRequestBody}
		}
		return cs.chatRepo.GetOrCreateDirectConversation(creatorID, body.Users[0])
	case models.CONVERSATION_TYPE_GROUP:
		return cs.chatRepo.CreateGroupConversation(creatorID, body.Name, body.Users)
	default:
		return nil, []error{errs.ErrInvalidRequestBody}
	}
}

func (cs *ChatService) GetUserConversations(userID uint, page, size int) (*models.ConversationListResponse, []error) {
	return cs.chatRepo.GetUserConversations(userID, page, size)
}

func (cs *ChatService) CheckConversationExists(conversationID uint) bool {
	return cs.chatRepo.CheckConversationExists(conversationID)
}

func (cs *ChatService) CheckUserInConversation(userID, conversationID uint) bool {
	return cs.chatRepo.CheckUserInConversation(userID, conversationID)
}

func (cs *ChatService) GetConversationMemberIds(conversationID uint) ([]uint, error) {
	return cs.chatRepo.GetConversationMemberIds(conversationID)
}

func (cs *ChatService) GetConversationById(conversationID uint) (*models.Conversation, error) {
	return cs.chatRepo.GetConversationById(conversationID)
}

// SaveMessage persists a message and returns its canonical record.
func (cs *ChatService) SaveMessage(conversationID, senderID uint, content string) (*models.MessageRecord, []error) {
	if content == "" {
		return nil, []error{errs.ErrInvalidRequestBody}
	}
	message := &models.Message{
		ConversationID: conversationID,
		SenderID:       &senderID,
		Content:        content,
	}
	saved, saveErrs := cs.chatRepo.SaveMessage(message)
	if len(saveErrs) > 0 {
		return nil, saveErrs
	}
	return saved.ToRecord(), nil
}

func (cs *ChatService) GetMessages(conversationID uint, page, size int) (*models.MessageListResponse, []error) {
	return cs.chatRepo.GetMessagesByConversationId(conversationID, page, size)
}

func (cs *ChatService) UpdateConversationName(userID, conversationID uint, name string) (*models.Conversation, []error) {
	if !cs.chatRepo.CheckUserInConversation(userID, conversationID) {
		return nil, []error{errs.ErrNotAMember}
	}
	return cs.chatRepo.UpdateConversationName(conversationID, name)
}

// AddMemberByEmail finds the user by email and adds them as a member.
func (cs *ChatService) AddMemberByEmail(actorID, conversationID uint, email string) (*models.User, []error) {
	if !cs.chatRepo.CheckUserInConversation(actorID, conversationID) {
		return nil, []error{errs.ErrNotAMember}
	}
	user := cs.authRepo.CheckIfUserExists(email)
	if user == nil {
		return nil, []error{errs.ErrUserNotFound}
	}
	if addErrs := cs.chatRepo.AddMember(conversationID, user.ID); len(addErrs) > 0 {
		return nil, addErrs
	}
	return user, nil
}

// KickMember removes a member; only the admin may kick, and never
// themselves.
func (cs *ChatService) KickMember(actorID, conversationID, memberID uint) (*models.User, []error) {
	role, err := cs.chatRepo.GetMemberRole(actorID, conversationID)
	if err != nil || role != models.MEMBER_ROLE_ADMIN {
		return nil, []error{errs.ErrNotAnAdmin}
	}
	if memberID == actorID {
		return nil, []error{errs.ErrCannotKickYourself}
	}
	kicked, err := cs.authRepo.GetUserById(memberID)
	if err != nil {
		return nil, []error{errs.ErrMemberNotFound}
	}
	if removeErrs := cs.chatRepo.RemoveMember(conversationID, memberID); len(removeErrs) > 0 {
		return nil, removeErrs
	}
	return kicked, nil
}

// TransferAdmin hands the admin role to another member and returns the
// system message recorded for it.
func (cs *ChatService) TransferAdmin(actorID, conversationID, newAdminID uint, notice string) (*models.MessageRecord, []error) {
	role, err := cs.chatRepo.GetMemberRole(actorID, conversationID)
	if err != nil || role != models.MEMBER_ROLE_ADMIN {
		return nil, []error{errs.ErrNotAnAdmin}
	}
	systemMessage, transferErrs := cs.chatRepo.TransferAdmin(conversationID, actorID, newAdminID, notice)
	if len(transferErrs) > 0 {
		return nil, transferErrs
	}
	return systemMessage.ToRecord(), nil
}

func (cs *ChatService) GetConversationMembers(actorID, conversationID uint) ([]map[string]interface{}, []error) {
	if !cs.chatRepo.CheckUserInConversation(actorID, conversationID) {
		return nil, []error{errs.ErrNotAMember}
	}
	members, err := cs.chatRepo.GetConversationMembersDetailed(conversationID)
	if err != nil {
		return nil, []error{err}
	}
	return members, nil
}
