package models

import (
	"gorm.io/gorm"
)

const (
	FRIENDSHIP_STATUS_PENDING  = "pending"
	FRIENDSHIP_STATUS_ACCEPTED = "accepted"
)

// Friendship links two users; RequesterID sent the request, ReceiverID
// accepted (or has not yet). A user's friends are the accepted rows in
// either direction.
type Friendship struct {
	gorm.Model
	RequesterID uint   `gorm:"not null;index" json:"requester_id"`
	ReceiverID  uint   `gorm:"not null;index" json:"receiver_id"`
	Status      string `gorm:"not null;default:pending" json:"status"`
}
