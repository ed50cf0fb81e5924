package services

import (
	"chatRelay/internal/errs"
	"chatRelay/internal/models"
	"chatRelay/internal/repositories"
)

type FriendshipService struct {
	friendshipRepo *repositories.FriendshipRepository
}

func NewFriendshipService(friendshipRepo *repositories.FriendshipRepository) *FriendshipService {
	return &FriendshipService{
		friendshipRepo: friendshipRepo,
	}
}

// LookupFriends implements realtime.FriendLookup.
func (fs *FriendshipService) LookupFriends(userID uint) ([]uint, error) {
	return fs.friendshipRepo.GetFriendIds(userID)
}

func (fs *FriendshipService) SendFriendRequest(requesterID, receiverID uint) (*models.Friendship, []error) {
	if requesterID == receiverID {
		return nil, []error{errs.ErrCannotBefriendYourself}
	}
	return fs.friendshipRepo.CreateFriendRequest(requesterID, receiverID)
}

func (fs *FriendshipService) AcceptFriendRequest(friendshipID, receiverID uint) (*models.Friendship, []error) {
	return fs.friendshipRepo.AcceptFriendRequest(friendshipID, receiverID)
}

func (fs *FriendshipService) GetFriends(userID uint) ([]*models.UserResponse, []error) {
	users, err := fs.friendshipRepo.GetFriends(userID)
	if err != nil {
		return nil, []error{err}
	}
	responses := []*models.UserResponse{}
	for i := range users {
		responses = append(responses, users[i].ToUserResponse())
	}
	return responses, nil
}
