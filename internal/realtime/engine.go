package realtime

import (
	"encoding/json"
	"sync"

	socketModels "chatRelay/internal/models/socket"

	"github.com/rs/zerolog"
)

// Publisher shares a locally-originated event with other processes. The
// event is already serialized; targets were resolved by the caller.
type Publisher interface {
	Publish(event json.RawMessage, targets []uint)
}

// Engine resolves delivery targets through the registry and the membership
// index and performs best-effort delivery. A failed send never aborts
// delivery to sibling connections or to other users; the failing connection
// is closed and deregistered, which may cascade into an offline broadcast
// through the registered hook.
type Engine struct {
	registry    *ConnectionRegistry
	membership  *MembershipIndex
	offlineHook func(userID uint)
	log         zerolog.Logger

	pubMu     sync.RWMutex
	publisher Publisher
}

func NewEngine(registry *ConnectionRegistry, membership *MembershipIndex, log zerolog.Logger) *Engine {
	return &Engine{
		registry:   registry,
		membership: membership,
		log:        log.With().Str("component", "fanout").Logger(),
	}
}

// SetPublisher wires the optional cross-process relay. Without one, all
// delivery stays local. The relay clears it again during shutdown while
// connection read loops may still be fanning out, hence the lock.
func (e *Engine) SetPublisher(publisher Publisher) {
	e.pubMu.Lock()
	defer e.pubMu.Unlock()
	e.publisher = publisher
}

func (e *Engine) currentPublisher() Publisher {
	e.pubMu.RLock()
	defer e.pubMu.RUnlock()
	return e.publisher
}

// SetOfflineHook registers the callback fired when evicting a dead
// connection empties a user's connection set.
func (e *Engine) SetOfflineHook(hook func(userID uint)) {
	e.offlineHook = hook
}

// DeliverToUser serializes event once and sends it to every live connection
// of userID, locally and via the relay. Returns the local delivered count.
func (e *Engine) DeliverToUser(userID uint, event socketModels.Event) int {
	return e.DeliverToUsers([]uint{userID}, event)
}

// DeliverToUsers fans event out to an explicit target set and publishes it
// once to the relay with that same set.
func (e *Engine) DeliverToUsers(userIDs []uint, event socketModels.Event) int {
	data, err := json.Marshal(event)
	if err != nil {
		e.log.Error().Err(err).Str("event", event.Type).Msg("failed to marshal event")
		return 0
	}
	delivered := 0
	for _, userID := range userIDs {
		delivered += e.deliverLocal(userID, data)
	}
	if publisher := e.currentPublisher(); publisher != nil {
		publisher.Publish(data, userIDs)
	}
	return delivered
}

// DeliverToConversation resolves the member set and fans out to it. An empty
// set is treated as a cache miss: the index is invalidated and resolution
// retried once. The event is never broadcast to unrelated users.
func (e *Engine) DeliverToConversation(conversationID uint, event socketModels.Event) (int, error) {
	members, err := e.membership.MembersOf(conversationID)
	if err != nil {
		return 0, err
	}
	if len(members) == 0 {
		e.membership.Invalidate(conversationID)
		members, err = e.membership.MembersOf(conversationID)
		if err != nil {
			return 0, err
		}
		if len(members) == 0 {
			e.log.Warn().
				Uint("conversation_id", conversationID).
				Str("event", event.Type).
				Msg("conversation has no members, dropping event")
			return 0, nil
		}
	}
	return e.DeliverToUsers(members, event), nil
}

// DeliverToSet delivers only to local connections of the given users. The
// relay replays remote events through here, so a message received from the
// bus is never re-published.
func (e *Engine) DeliverToSet(userIDs []uint, event socketModels.Event) int {
	data, err := json.Marshal(event)
	if err != nil {
		e.log.Error().Err(err).Str("event", event.Type).Msg("failed to marshal event")
		return 0
	}
	return e.deliverToSetRaw(userIDs, data)
}

func (e *Engine) deliverToSetRaw(userIDs []uint, data []byte) int {
	delivered := 0
	for _, userID := range userIDs {
		delivered += e.deliverLocal(userID, data)
	}
	return delivered
}

func (e *Engine) deliverLocal(userID uint, data []byte) int {
	delivered := 0
	for _, conn := range e.registry.ConnectionsFor(userID) {
		if err := conn.WriteMessage(data); err != nil {
			e.log.Warn().Err(err).Uint("user_id", userID).Msg("send failed, evicting connection")
			_ = conn.Close()
			if e.registry.Disconnect(userID, conn) && e.offlineHook != nil {
				e.offlineHook(userID)
			}
			continue
		}
		delivered++
	}
	return delivered
}
