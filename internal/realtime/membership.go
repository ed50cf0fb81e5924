package realtime

import "sync"

// MemberLookup resolves the persisted member set of a conversation. The call
// may block on the data store, so the index never holds its lock across it.
type MemberLookup interface {
	LookupMembers(conversationID uint) ([]uint, error)
}

// MembershipIndex caches conversation member sets for fan-out. The cache is
// invalidate-on-write: every membership-mutating operation calls Invalidate
// or NoteMembership before its next fan-out, so a kicked member stops
// receiving events immediately. There is deliberately no TTL.
type MembershipIndex struct {
	mu     sync.Mutex
	lookup MemberLookup
	rooms  map[uint][]uint
	gens   map[uint]uint64
}

func NewMembershipIndex(lookup MemberLookup) *MembershipIndex {
	return &MembershipIndex{
		lookup: lookup,
		rooms:  make(map[uint][]uint),
		gens:   make(map[uint]uint64),
	}
}

// MembersOf returns the cached member set, fetching from the collaborator on
// a miss. A fetch result is discarded when an Invalidate or NoteMembership
// happened while the fetch was in flight.
func (mi *MembershipIndex) MembersOf(conversationID uint) ([]uint, error) {
	mi.mu.Lock()
	if members, ok := mi.rooms[conversationID]; ok {
		snapshot := append([]uint(nil), members...)
		mi.mu.Unlock()
		return snapshot, nil
	}
	gen := mi.gens[conversationID]
	mi.mu.Unlock()

	members, err := mi.lookup.LookupMembers(conversationID)
	if err != nil {
		return nil, err
	}

	mi.mu.Lock()
	defer mi.mu.Unlock()
	if mi.gens[conversationID] == gen {
		mi.rooms[conversationID] = append([]uint(nil), members...)
	}
	return members, nil
}

// Invalidate forces a re-fetch on the next access.
func (mi *MembershipIndex) Invalidate(conversationID uint) {
	mi.mu.Lock()
	defer mi.mu.Unlock()
	delete(mi.rooms, conversationID)
	mi.gens[conversationID]++
}

// NoteMembership sets the member set after a known mutation, saving the
// round trip a plain Invalidate would cost.
func (mi *MembershipIndex) NoteMembership(conversationID uint, userIDs []uint) {
	mi.mu.Lock()
	defer mi.mu.Unlock()
	mi.rooms[conversationID] = append([]uint(nil), userIDs...)
	mi.gens[conversationID]++
}
