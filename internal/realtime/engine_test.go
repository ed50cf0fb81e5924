package realtime

import (
	"fmt"
	"sync"
	"testing"

	socketModels "chatRelay/internal/models/socket"
)

func newTestEngine(lookup MemberLookup) (*Engine, *ConnectionRegistry) {
	registry := NewConnectionRegistry()
	membership := NewMembershipIndex(lookup)
	return NewEngine(registry, membership, testLogger()), registry
}

func TestDeliverToUserWithoutConnections(t *testing.T) {
	engine, _ := newTestEngine(&fakeMemberLookup{})

	if delivered := engine.DeliverToUser(42, socketModels.NewPongEvent()); delivered != 0 {
		t.Fatalf("expected 0 delivered, got %d", delivered)
	}
}

func TestDeliverToUserReachesEveryConnection(t *testing.T) {
	engine, registry := newTestEngine(&fakeMemberLookup{})
	first := &fakeConn{}
	second := &fakeConn{}
	registry.Connect(1, first)
	registry.Connect(1, second)

	delivered := engine.DeliverToUser(1, socketModels.NewUserStatusEvent(9, true))
	if delivered != 2 {
		t.Fatalf("expected 2 delivered, got %d", delivered)
	}
	for _, conn := range []*fakeConn{first, second} {
		types := conn.eventTypes(t)
		if len(types) != 1 || types[0] != "user_online" {
			t.Fatalf("unexpected events: %v", types)
		}
	}
}

func TestSendFailureEvictsOnlyTheDeadConnection(t *testing.T) {
	engine, registry := newTestEngine(&fakeMemberLookup{})
	healthy := &fakeConn{}
	dead := &fakeConn{fail: true}
	registry.Connect(1, healthy)
	registry.Connect(1, dead)

	delivered := engine.DeliverToUser(1, socketModels.NewPongEvent())
	if delivered != 1 {
		t.Fatalf("expected delivery to the healthy sibling, got %d", delivered)
	}
	if dead.closed != 1 {
		t.Fatalf("expected the dead connection closed exactly once, got %d", dead.closed)
	}
	if !registry.IsOnline(1) {
		t.Fatal("user should stay online through the healthy connection")
	}
	if len(registry.ConnectionsFor(1)) != 1 {
		t.Fatal("dead connection should have been deregistered")
	}
}

func TestEvictingLastConnectionFiresOfflineHook(t *testing.T) {
	engine, registry := newTestEngine(&fakeMemberLookup{})
	var gone []uint
	engine.SetOfflineHook(func(userID uint) { gone = append(gone, userID) })

	dead := &fakeConn{fail: true}
	registry.Connect(3, dead)

	engine.DeliverToUser(3, socketModels.NewPongEvent())

	if len(gone) != 1 || gone[0] != 3 {
		t.Fatalf("expected one offline hook call for user 3, got %v", gone)
	}
	if registry.IsOnline(3) {
		t.Fatal("user should be offline after the last connection was evicted")
	}
}

func TestDeliverToConversationTracksMembershipChanges(t *testing.T) {
	lookup := &fakeMemberLookup{}
	lookup.set(10, []uint{1, 2, 3})
	engine, registry := newTestEngine(lookup)

	conns := map[uint]*fakeConn{}
	for _, userID := range []uint{1, 2, 3, 4} {
		conn := &fakeConn{}
		conns[userID] = conn
		registry.Connect(userID, conn)
	}

	event := socketModels.NewMessageEvent(nil)
	delivered, err := engine.DeliverToConversation(10, event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delivered != 3 {
		t.Fatalf("expected delivery to 3 members, got %d", delivered)
	}
	if len(conns[4].sent) != 0 {
		t.Fatal("non-member received a conversation event")
	}

	// user 3 leaves, user 4 joins
	lookup.set(10, []uint{1, 2, 4})
	engine.membership.Invalidate(10)

	if _, err := engine.DeliverToConversation(10, event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conns[3].sent) != 1 {
		t.Fatal("departed member received an event after leaving")
	}
	if len(conns[4].sent) != 1 {
		t.Fatal("new member did not receive the event")
	}
}

func TestDeliverToConversationRetriesEmptyMemberSetOnce(t *testing.T) {
	lookup := &fakeMemberLookup{}
	engine, registry := newTestEngine(lookup)
	conn := &fakeConn{}
	registry.Connect(1, conn)

	// first resolution comes back empty, the retry finds the member
	if _, err := engine.membership.MembersOf(10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lookup.set(10, []uint{1})

	delivered, err := engine.DeliverToConversation(10, socketModels.NewPongEvent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delivered != 1 {
		t.Fatalf("expected retry to deliver to 1 member, got %d", delivered)
	}
	if lookup.calls != 2 {
		t.Fatalf("expected exactly one retry lookup, got %d calls", lookup.calls)
	}
}

func TestDeliverToUsersPublishesOnceWithTargets(t *testing.T) {
	engine, _ := newTestEngine(&fakeMemberLookup{})
	publisher := &fakePublisher{}
	engine.SetPublisher(publisher)

	engine.DeliverToUsers([]uint{1, 2}, socketModels.NewUserStatusEvent(1, true))

	if publisher.count() != 1 {
		t.Fatalf("expected one publish, got %d", publisher.count())
	}
	if got := publisher.targets[0]; len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected publish targets: %v", got)
	}
}

func TestReplayedEventIsNeverRepublished(t *testing.T) {
	engine, registry := newTestEngine(&fakeMemberLookup{})
	publisher := &fakePublisher{}
	engine.SetPublisher(publisher)
	conn := &fakeConn{}
	registry.Connect(2, conn)

	engine.DeliverToUsers([]uint{1, 2}, socketModels.NewUserStatusEvent(1, true))
	if publisher.count() != 1 {
		t.Fatalf("expected one publish, got %d", publisher.count())
	}

	// full round trip: the bus hands the published event back for replay
	engine.deliverToSetRaw([]uint{1, 2}, publisher.messages[0])

	if publisher.count() != 1 {
		t.Fatalf("replay must not publish again, got %d publishes", publisher.count())
	}
	if len(conn.sent) != 2 {
		t.Fatalf("expected original plus replayed delivery, got %d", len(conn.sent))
	}
}

func TestPublisherSwapDuringConcurrentDelivery(t *testing.T) {
	engine, registry := newTestEngine(&fakeMemberLookup{})
	publisher := &fakePublisher{}
	engine.SetPublisher(publisher)
	registry.Connect(1, &fakeConn{})

	// Shutdown clears the publisher while read loops may still be fanning
	// out; deliveries must keep going local-only without tripping the race
	// detector.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			engine.DeliverToUser(1, socketModels.NewPongEvent())
		}
	}()
	engine.SetPublisher(nil)
	engine.SetPublisher(publisher)
	engine.SetPublisher(nil)
	wg.Wait()

	if delivered := engine.DeliverToUser(1, socketModels.NewPongEvent()); delivered != 1 {
		t.Fatalf("expected local delivery to continue without a publisher, got %d", delivered)
	}
}

func TestPerConnectionOrderingIsPreserved(t *testing.T) {
	engine, registry := newTestEngine(&fakeMemberLookup{})
	conn := &fakeConn{}
	registry.Connect(1, conn)

	for i := 0; i < 5; i++ {
		engine.DeliverToUser(1, socketModels.NewErrorEvent(fmt.Sprintf("event-%d", i)))
	}

	events := conn.events(t)
	if len(events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(events))
	}
	for i, ev := range events {
		if ev["message"] != fmt.Sprintf("event-%d", i) {
			t.Fatalf("event %d out of order: %v", i, ev["message"])
		}
	}
}
