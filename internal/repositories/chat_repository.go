package repositories

import (
	"errors"
	"fmt"
	"time"

	"chatRelay/internal/errs"
	"chatRelay/internal/models"
	"chatRelay/internal/utils"

	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{
		db: db,
	}
}

// GetOrCreateDirectConversation returns the direct conversation between the
// two users, creating it (with both members) when absent. The pair key keeps
// it unique regardless of who initiated.
func (chr *ChatRepository) GetOrCreateDirectConversation(userA, userB uint) (*models.Conversation, []error) {
	var errorList []error
	pairKey := models.PairKeyForUsers(userA, userB)

	var conversation models.Conversation
	err := chr.db.
		Where("private_pair_key = ? AND type = ?", pairKey, models.CONVERSATION_TYPE_DIRECT).
		First(&conversation).Error
	if err == nil {
		return &conversation, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		errorList = append(errorList, err)
		return nil, errorList
	}

	conversation = models.Conversation{
		Type:           models.CONVERSATION_TYPE_DIRECT,
		PrivatePairKey: &pairKey,
	}
	txErr := chr.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&conversation).Error; err != nil {
			return err
		}
		for _, userID := range []uint{userA, userB} {
			member := models.ConversationMember{
				ConversationID: conversation.ID,
				UserID:         userID,
				Role:           models.MEMBER_ROLE_MEMBER,
			}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		errorList = append(errorList, txErr)
		return nil, errorList
	}
	return &conversation, nil
}

// CreateGroupConversation creates a group with the creator as admin and the
// initial members as plain members.
func (chr *ChatRepository) CreateGroupConversation(creatorID uint, name *string, memberIDs []uint) (*models.Conversation, []error) {
	var errorList []error
	conversation := models.Conversation{
		Type: models.CONVERSATION_TYPE_GROUP,
		Name: name,
	}
	txErr := chr.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&conversation).Error; err != nil {
			return err
		}
		admin := models.ConversationMember{
			ConversationID: conversation.ID,
			UserID:         creatorID,
			Role:           models.MEMBER_ROLE_ADMIN,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		seen := map[uint]bool{creatorID: true}
		for _, userID := range memberIDs {
			if seen[userID] {
				continue
			}
			seen[userID] = true
			member := models.ConversationMember{
				ConversationID: conversation.ID,
				UserID:         userID,
				Role:           models.MEMBER_ROLE_MEMBER,
			}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		errorList = append(errorList, txErr)
		return nil, errorList
	}
	return &conversation, nil
}

func (chr *ChatRepository) GetConversationById(conversationID uint) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := chr.db.Preload("Members").First(&conversation, conversationID).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (chr *ChatRepository) CheckConversationExists(conversationID uint) bool {
	var count int64
	chr.db.Model(&models.Conversation{}).Where("id = ?", conversationID).Count(&count)
	return count > 0
}

func (chr *ChatRepository) CheckUserInConversation(userID, conversationID uint) bool {
	var count int64
	chr.db.Model(&models.ConversationMember{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count)
	return count > 0
}

func (chr *ChatRepository) GetConversationMemberIds(conversationID uint) ([]uint, error) {
	var memberIDs []uint
	if err := chr.db.Model(&models.ConversationMember{}).
		Where("conversation_id = ?", conversationID).
		Pluck("user_id", &memberIDs).Error; err != nil {
		return nil, err
	}
	return memberIDs, nil
}

func (chr *ChatRepository) GetMemberRole(userID, conversationID uint) (string, error) {
	var member models.ConversationMember
	err := chr.db.
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		First(&member).Error
	if err != nil {
		return "", err
	}
	return member.Role, nil
}

func (chr *ChatRepository) AddMember(conversationID, userID uint) []error {
	var errorList []error
	if chr.CheckUserInConversation(userID, conversationID) {
		errorList = append(errorList, errs.ErrAlreadyMember)
		return errorList
	}
	member := models.ConversationMember{
		ConversationID: conversationID,
		UserID:         userID,
		Role:           models.MEMBER_ROLE_MEMBER,
	}
	if err := chr.db.Create(&member).Error; err != nil {
		errorList = append(errorList, err)
		return errorList
	}
	return nil
}

func (chr *ChatRepository) RemoveMember(conversationID, userID uint) []error {
	var errorList []error
	result := chr.db.
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Delete(&models.ConversationMember{})
	if result.Error != nil {
		errorList = append(errorList, result.Error)
		return errorList
	}
	if result.RowsAffected == 0 {
		errorList = append(errorList, errs.ErrMemberNotFound)
		return errorList
	}
	return nil
}

// TransferAdmin swaps the admin role between two members and records a
// system message about it.
func (chr *ChatRepository) TransferAdmin(conversationID, oldAdminID, newAdminID uint, notice string) (*models.Message, []error) {
	var errorList []error
	systemMessage := models.Message{
		ConversationID: conversationID,
		SenderID:       nil,
		Content:        notice,
	}
	txErr := chr.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ConversationMember{}).
			Where("conversation_id = ? AND user_id = ?", conversationID, oldAdminID).
			Update("role", models.MEMBER_ROLE_MEMBER).Error; err != nil {
			return err
		}
		result := tx.Model(&models.ConversationMember{}).
			Where("conversation_id = ? AND user_id = ?", conversationID, newAdminID).
			Update("role", models.MEMBER_ROLE_ADMIN)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errs.ErrMemberNotFound
		}
		return tx.Create(&systemMessage).Error
	})
	if txErr != nil {
		errorList = append(errorList, txErr)
		return nil, errorList
	}
	return &systemMessage, nil
}

func (chr *ChatRepository) UpdateConversationName(conversationID uint, name string) (*models.Conversation, []error) {
	var errorList []error
	if err := chr.db.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("name", name).Error; err != nil {
		errorList = append(errorList, err)
		return nil, errorList
	}
	conversation, err := chr.GetConversationById(conversationID)
	if err != nil {
		errorList = append(errorList, err)
		return nil, errorList
	}
	return conversation, nil
}

func (chr *ChatRepository) GetUserConversations(userID uint, page, size int) (*models.ConversationListResponse, []error) {
	var errorList []error
	var conversations []models.Conversation
	var total int64

	txErr := chr.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Scopes(utils.Paginate(page, size)).
			Preload("Members").
			Where("id IN (SELECT conversation_id FROM conversation_members WHERE user_id = ? AND deleted_at IS NULL)", userID).
			Order("updated_at DESC").
			Find(&conversations).Error; err != nil {
			return err
		}
		return tx.
			Model(&models.Conversation{}).
			Where("id IN (SELECT conversation_id FROM conversation_members WHERE user_id = ? AND deleted_at IS NULL)", userID).
			Count(&total).Error
	})
	if txErr != nil {
		errorList = append(errorList, txErr)
		return nil, errorList
	}

	responses := []models.ConversationResponse{}
	for _, conversation := range conversations {
		lastMessage, _ := chr.GetConversationLastMessage(conversation.ID)
		unread, err := chr.GetConversationUnreadForUser(conversation.ID, userID)
		if err != nil {
			errorList = append(errorList, err)
			return nil, errorList
		}
		responses = append(responses, conversation.ToConversationResponse(lastMessage, unread))
	}

	return &models.ConversationListResponse{
		Conversations: responses,
		Page:          page,
		Size:          size,
		Total:         total,
	}, nil
}

func (chr *ChatRepository) SaveMessage(message *models.Message) (*models.Message, []error) {
	var errorList []error
	txErr := chr.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", message.ConversationID).
			Update("updated_at", time.Now()).Error
	})
	if txErr != nil {
		errorList = append(errorList, txErr)
		return nil, errorList
	}
	return message, nil
}

func (chr *ChatRepository) GetConversationLastMessage(conversationID uint) (*models.MessageRecord, error) {
	var message models.Message
	if err := chr.db.
		Where("conversation_id = ?", conversationID).
		Last(&message).Error; err != nil {
		return nil, err
	}
	return message.ToRecord(), nil
}

func (chr *ChatRepository) GetConversationUnreadForUser(conversationID, userID uint) (int, error) {
	var count int64
	err := chr.db.Model(&models.Message{}).
		Where("conversation_id = ? AND seen_at IS NULL AND (sender_id IS NULL OR sender_id <> ?)", conversationID, userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (chr *ChatRepository) GetMessagesByConversationId(conversationID uint, page, size int) (*models.MessageListResponse, []error) {
	var errorList []error
	var messages []models.Message
	var total int64

	txErr := chr.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Scopes(utils.Paginate(page, size)).
			Where("conversation_id = ?", conversationID).
			Order("created_at DESC").
			Find(&messages).Error; err != nil {
			return err
		}
		return tx.Model(&models.Message{}).
			Where("conversation_id = ?", conversationID).
			Count(&total).Error
	})
	if txErr != nil {
		errorList = append(errorList, txErr)
		return nil, errorList
	}

	records := []models.MessageRecord{}
	for _, message := range messages {
		records = append(records, *message.ToRecord())
	}
	return &models.MessageListResponse{
		Messages: records,
		Page:     page,
		Size:     size,
		Total:    total,
	}, nil
}

// GetConversationMembersDetailed returns members joined with their user rows.
func (chr *ChatRepository) GetConversationMembersDetailed(conversationID uint) ([]map[string]interface{}, error) {
	var members []models.ConversationMember
	if err := chr.db.
		Where("conversation_id = ?", conversationID).
		Find(&members).Error; err != nil {
		return nil, err
	}

	result := []map[string]interface{}{}
	for _, member := range members {
		var user models.User
		if err := chr.db.First(&user, member.UserID).Error; err != nil {
			return nil, fmt.Errorf("member %d: %w", member.UserID, err)
		}
		result = append(result, map[string]interface{}{
			"id":         user.ID,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"email":      user.Email,
			"role":       member.Role,
			"is_owner":   member.Role == models.MEMBER_ROLE_ADMIN,
		})
	}
	return result, nil
}
