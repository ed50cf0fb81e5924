package redis

import "encoding/json"

const REDIS_CHANNEL_CHAT = "chat_events"

// RelayMessage is the bus shape shared between processes. Event is the
// already-serialized socket event; Targets were resolved on the origin
// process so the receiving side never re-expands membership.
type RelayMessage struct {
	Event   json.RawMessage `json:"event"`
	Targets []uint          `json:"targets"`
}
