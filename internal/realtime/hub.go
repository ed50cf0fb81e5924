package realtime

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Hub composes the connection registry, membership index, fan-out engine,
// presence broadcaster and optional relay into the single instance route
// handlers hold. One Hub is constructed per process and passed by reference;
// there is no package-level state, so tests get isolation by building fresh
// hubs.
type Hub struct {
	Registry   *ConnectionRegistry
	Membership *MembershipIndex
	Engine     *Engine
	Presence   *PresenceBroadcaster

	relay *Relay
	log   zerolog.Logger
}

// NewHub wires the components together. rdb may be nil, in which case the
// relay is disabled and fan-out stays single-process.
func NewHub(
	members MemberLookup,
	friends FriendLookup,
	status StatusRecorder,
	rdb *redis.Client,
	channel string,
	log zerolog.Logger,
) *Hub {
	registry := NewConnectionRegistry()
	membership := NewMembershipIndex(members)
	engine := NewEngine(registry, membership, log)
	presence := NewPresenceBroadcaster(engine, friends, status, log)
	engine.SetOfflineHook(func(userID uint) {
		presence.BroadcastStatus(userID, false)
	})

	hub := &Hub{
		Registry:   registry,
		Membership: membership,
		Engine:     engine,
		Presence:   presence,
		log:        log.With().Str("component", "hub").Logger(),
	}
	if rdb != nil {
		hub.relay = NewRelay(rdb, channel, engine, log)
	}
	return hub
}

// Start brings up the relay subscription when a bus is configured. A bus
// failure is logged and the hub continues in local-only mode.
func (h *Hub) Start(ctx context.Context) {
	if h.relay == nil {
		h.log.Info().Msg("no bus configured, running single-process fan-out")
		return
	}
	if err := h.relay.Start(ctx); err != nil {
		h.log.Warn().Err(err).Msg("relay unavailable, running single-process fan-out")
		h.relay = nil
	}
}

// Stop shuts the relay down and closes every live connection.
func (h *Hub) Stop() {
	if h.relay != nil {
		h.relay.Stop()
	}
	h.Registry.CloseAll()
}

// Connect registers a connection and fires the presence machinery: an
// online broadcast to friends on the offline-to-online transition, then a
// friends-status snapshot to the newly connected user.
func (h *Hub) Connect(userID uint, conn Conn) {
	if wasOffline := h.Registry.Connect(userID, conn); wasOffline {
		h.Presence.BroadcastStatus(userID, true)
	}
	h.Presence.SendFriendsSnapshot(userID)
}

// Disconnect removes a connection, broadcasting offline to friends when it
// was the user's last one. Safe to call repeatedly for the same pair.
func (h *Hub) Disconnect(userID uint, conn Conn) {
	if becameOffline := h.Registry.Disconnect(userID, conn); becameOffline {
		h.Presence.BroadcastStatus(userID, false)
	}
}
