package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	redisModels "chatRelay/internal/models/redis"

	"github.com/redis/go-redis/v9"
)

func newTestRelay(t *testing.T) (*Relay, *ConnectionRegistry, chan *redis.Message, context.CancelFunc) {
	t.Helper()
	engine, registry := newTestEngine(&fakeMemberLookup{})
	relay := &Relay{
		engine: engine,
		log:    testLogger(),
		done:   make(chan struct{}),
	}
	ch := make(chan *redis.Message, 8)
	ctx, cancel := context.WithCancel(context.Background())
	go relay.listen(ctx, ch)
	t.Cleanup(cancel)
	return relay, registry, ch, cancel
}

func busMessage(t *testing.T, event string, targets []uint) *redis.Message {
	t.Helper()
	payload, err := json.Marshal(redisModels.RelayMessage{
		Event:   json.RawMessage(event),
		Targets: targets,
	})
	if err != nil {
		t.Fatalf("marshal bus message: %v", err)
	}
	return &redis.Message{Payload: string(payload)}
}

func waitForEvents(t *testing.T, conn *fakeConn, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		conn.mu.Lock()
		got := len(conn.sent)
		conn.mu.Unlock()
		if got >= want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %d events, got %d", want, got)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRelayReplaysBusMessagesToTargetsOnly(t *testing.T) {
	relay, registry, ch, _ := newTestRelay(t)
	publisher := &fakePublisher{}
	relay.engine.SetPublisher(publisher)

	target := &fakeConn{}
	bystander := &fakeConn{}
	registry.Connect(1, target)
	registry.Connect(2, bystander)

	ch <- busMessage(t, `{"type":"message.new"}`, []uint{1})
	waitForEvents(t, target, 1)

	if types := target.eventTypes(t); types[0] != "message.new" {
		t.Fatalf("unexpected replayed event: %v", types)
	}
	if len(bystander.sent) != 0 {
		t.Fatal("non-target received a relayed event")
	}
	if publisher.count() != 0 {
		t.Fatalf("replay must never publish back to the bus, got %d publishes", publisher.count())
	}
}

func TestRelayListenSkipsMalformedAndEmptyMessages(t *testing.T) {
	_, registry, ch, _ := newTestRelay(t)
	conn := &fakeConn{}
	registry.Connect(1, conn)

	ch <- &redis.Message{Payload: "not json"}
	ch <- busMessage(t, `{"type":"pong"}`, nil)
	ch <- busMessage(t, `{"type":"pong"}`, []uint{1})
	waitForEvents(t, conn, 1)

	if len(conn.events(t)) != 1 {
		t.Fatalf("expected only the well-formed targeted message, got %d", len(conn.sent))
	}
}

func TestRelayCancellationUnblocksListenLoop(t *testing.T) {
	relay, _, _, cancel := newTestRelay(t)

	cancel()
	select {
	case <-relay.done:
	case <-time.After(2 * time.Second):
		t.Fatal("listen loop did not exit after cancellation")
	}
}

func TestRelayClosedChannelEndsListenLoop(t *testing.T) {
	relay, _, ch, _ := newTestRelay(t)

	close(ch)
	select {
	case <-relay.done:
	case <-time.After(2 * time.Second):
		t.Fatal("listen loop did not exit after the bus channel closed")
	}
}
