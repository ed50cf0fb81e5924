package realtime

import (
	socketModels "chatRelay/internal/models/socket"

	"github.com/rs/zerolog"
)

// FriendLookup resolves the accepted friend ids of a user.
type FriendLookup interface {
	LookupFriends(userID uint) ([]uint, error)
}

// StatusRecorder persists a user's online flag and last-seen timestamp.
// Recording is best-effort; failures never break the connection.
type StatusRecorder interface {
	SetUserOnlineStatus(userID uint, online bool) error
}

// PresenceBroadcaster pushes online/offline events to a user's friends on
// offline-to-online and online-to-offline transitions only. Intermediate
// connects and disconnects while already in a state produce nothing.
type PresenceBroadcaster struct {
	engine  *Engine
	friends FriendLookup
	status  StatusRecorder
	log     zerolog.Logger
}

func NewPresenceBroadcaster(engine *Engine, friends FriendLookup, status StatusRecorder, log zerolog.Logger) *PresenceBroadcaster {
	return &PresenceBroadcaster{
		engine:  engine,
		friends: friends,
		status:  status,
		log:     log.With().Str("component", "presence").Logger(),
	}
}

// BroadcastStatus records the transition and notifies the user's friends.
// Collaborator failures are logged and swallowed.
func (pb *PresenceBroadcaster) BroadcastStatus(userID uint, online bool) {
	if pb.status != nil {
		if err := pb.status.SetUserOnlineStatus(userID, online); err != nil {
			pb.log.Warn().Err(err).Uint("user_id", userID).Msg("failed to record online status")
		}
	}

	friends, err := pb.friends.LookupFriends(userID)
	if err != nil {
		pb.log.Warn().Err(err).Uint("user_id", userID).Msg("friend lookup failed, skipping presence broadcast")
		return
	}
	if len(friends) == 0 {
		return
	}
	pb.engine.DeliverToUsers(friends, socketModels.NewUserStatusEvent(userID, online))
}

// SendFriendsSnapshot pushes the current online/offline state of every
// friend to a user that just connected. The registry keeps no history, so
// this pull-then-push is the catch-up mechanism.
func (pb *PresenceBroadcaster) SendFriendsSnapshot(userID uint) {
	friends, err := pb.friends.LookupFriends(userID)
	if err != nil {
		pb.log.Warn().Err(err).Uint("user_id", userID).Msg("friend lookup failed, skipping friends snapshot")
		return
	}
	target := []uint{userID}
	for _, friendID := range friends {
		online := pb.engine.registry.IsOnline(friendID)
		pb.engine.DeliverToSet(target, socketModels.NewUserStatusEvent(friendID, online))
	}
}
