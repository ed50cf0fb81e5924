package repositories

import (
	"chatRelay/internal/errs"
	"chatRelay/internal/models"

	"gorm.io/gorm"
)

type FriendshipRepository struct {
	db *gorm.DB
}

func NewFriendshipRepository(db *gorm.DB) *FriendshipRepository {
	return &FriendshipRepository{
		db: db,
	}
}

func (fr *FriendshipRepository) CreateFriendRequest(requesterID, receiverID uint) (*models.Friendship, []error) {
	var errorList []error

	var count int64
	fr.db.Model(&models.Friendship{}).
		Where("(requester_id = ? AND receiver_id = ?) OR (requester_id = ? AND receiver_id = ?)",
			requesterID, receiverID, receiverID, requesterID).
		Count(&count)
	if count > 0 {
		errorList = append(errorList, errs.ErrFriendshipExists)
		return nil, errorList
	}

	friendship := models.Friendship{
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Status:      models.FRIENDSHIP_STATUS_PENDING,
	}
	if err := fr.db.Create(&friendship).Error; err != nil {
		errorList = append(errorList, err)
		return nil, errorList
	}
	return &friendship, nil
}

// AcceptFriendRequest marks the pending request as accepted; only the
// receiver may accept.
func (fr *FriendshipRepository) AcceptFriendRequest(friendshipID, receiverID uint) (*models.Friendship, []error) {
	var errorList []error
	var friendship models.Friendship
	err := fr.db.
		Where("id = ? AND receiver_id = ? AND status = ?", friendshipID, receiverID, models.FRIENDSHIP_STATUS_PENDING).
		First(&friendship).Error
	if err != nil {
		errorList = append(errorList, errs.ErrFriendshipNotFound)
		return nil, errorList
	}
	friendship.Status = models.FRIENDSHIP_STATUS_ACCEPTED
	if err := fr.db.Save(&friendship).Error; err != nil {
		errorList = append(errorList, err)
		return nil, errorList
	}
	return &friendship, nil
}

// GetFriendIds returns ids of accepted friends in either direction.
func (fr *FriendshipRepository) GetFriendIds(userID uint) ([]uint, error) {
	var friendships []models.Friendship
	err := fr.db.
		Where("status = ? AND (requester_id = ? OR receiver_id = ?)",
			models.FRIENDSHIP_STATUS_ACCEPTED, userID, userID).
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}

	friendIDs := make([]uint, 0, len(friendships))
	for _, friendship := range friendships {
		if friendship.RequesterID == userID {
			friendIDs = append(friendIDs, friendship.ReceiverID)
		} else {
			friendIDs = append(friendIDs, friendship.RequesterID)
		}
	}
	return friendIDs, nil
}

func (fr *FriendshipRepository) GetFriends(userID uint) ([]models.User, error) {
	friendIDs, err := fr.GetFriendIds(userID)
	if err != nil {
		return nil, err
	}
	if len(friendIDs) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := fr.db.Where("id IN ?", friendIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
