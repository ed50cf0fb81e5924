package realtime

import (
	"errors"
	"testing"
)

func newTestHub(friends *fakeFriendLookup, members *fakeMemberLookup) *Hub {
	return NewHub(members, friends, nil, nil, "", testLogger())
}

func countEvents(t *testing.T, conn *fakeConn, eventType string, userID uint) int {
	t.Helper()
	count := 0
	for _, ev := range conn.events(t) {
		if ev["type"] != eventType {
			continue
		}
		if id, ok := ev["user_id"].(float64); ok && uint(id) == userID {
			count++
		}
	}
	return count
}

func TestPresenceBroadcastFiresOncePerTransition(t *testing.T) {
	friends := &fakeFriendLookup{friends: map[uint][]uint{
		1: {2},
		2: {1},
	}}
	hub := newTestHub(friends, &fakeMemberLookup{})

	friendConn := &fakeConn{}
	hub.Connect(2, friendConn)

	first := &fakeConn{}
	second := &fakeConn{}
	hub.Connect(1, first)
	hub.Connect(1, second)

	if got := countEvents(t, friendConn, "user_online", 1); got != 1 {
		t.Fatalf("expected exactly one user_online for two connects, got %d", got)
	}

	// the snapshot sent at friendConn's own connect already contains one
	// user_offline for the then-offline user 1
	offlineBase := countEvents(t, friendConn, "user_offline", 1)

	hub.Disconnect(1, first)
	if got := countEvents(t, friendConn, "user_offline", 1); got != offlineBase {
		t.Fatalf("offline broadcast fired while a connection remains, got %d", got-offlineBase)
	}

	hub.Disconnect(1, second)
	if got := countEvents(t, friendConn, "user_offline", 1); got != offlineBase+1 {
		t.Fatalf("expected exactly one user_offline after last disconnect, got %d", got-offlineBase)
	}
}

func TestConnectDeliversFriendsSnapshot(t *testing.T) {
	friends := &fakeFriendLookup{friends: map[uint][]uint{
		1: {2, 3},
		2: {1},
	}}
	hub := newTestHub(friends, &fakeMemberLookup{})

	// B connects first, then A; B sees A come online and A gets a snapshot
	// with B online and C offline.
	connB := &fakeConn{}
	hub.Connect(2, connB)

	connA := &fakeConn{}
	hub.Connect(1, connA)

	if got := countEvents(t, connB, "user_online", 1); got != 1 {
		t.Fatalf("friend did not see the online broadcast, got %d", got)
	}
	if got := countEvents(t, connA, "user_online", 2); got != 1 {
		t.Fatalf("snapshot missing online friend, got %d", got)
	}
	if got := countEvents(t, connA, "user_offline", 3); got != 1 {
		t.Fatalf("snapshot missing offline friend, got %d", got)
	}
}

func TestFriendLookupFailureIsSwallowed(t *testing.T) {
	friends := &fakeFriendLookup{err: errors.New("store unreachable")}
	hub := newTestHub(friends, &fakeMemberLookup{})

	conn := &fakeConn{}
	hub.Connect(1, conn)
	hub.Disconnect(1, conn)

	if len(conn.sent) != 0 {
		t.Fatalf("no events expected when friend lookup fails, got %d", len(conn.sent))
	}
	if hub.Registry.IsOnline(1) {
		t.Fatal("registry state should be consistent despite lookup failure")
	}
}

type failingRecorder struct{ calls int }

func (r *failingRecorder) SetUserOnlineStatus(userID uint, online bool) error {
	r.calls++
	return errors.New("db down")
}

func TestStatusRecorderFailureDoesNotBlockBroadcast(t *testing.T) {
	friends := &fakeFriendLookup{friends: map[uint][]uint{1: {2}, 2: {1}}}
	recorder := &failingRecorder{}
	hub := NewHub(&fakeMemberLookup{}, friends, recorder, nil, "", testLogger())

	friendConn := &fakeConn{}
	hub.Connect(2, friendConn)
	hub.Connect(1, &fakeConn{})

	if recorder.calls == 0 {
		t.Fatal("status recorder was never consulted")
	}
	if got := countEvents(t, friendConn, "user_online", 1); got != 1 {
		t.Fatalf("broadcast should survive recorder failure, got %d", got)
	}
}
