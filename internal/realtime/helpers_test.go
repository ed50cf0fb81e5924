package realtime

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

type fakeConn struct {
	mu     sync.Mutex
	sent   [][]byte
	fail   bool
	closed int
}

func (c *fakeConn) WriteMessage(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("send failed")
	}
	c.sent = append(c.sent, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

func (c *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []map[string]any
	for _, data := range c.sent {
		var ev map[string]any
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("malformed event on wire: %v", err)
		}
		out = append(out, ev)
	}
	return out
}

func (c *fakeConn) eventTypes(t *testing.T) []string {
	t.Helper()
	var types []string
	for _, ev := range c.events(t) {
		types = append(types, ev["type"].(string))
	}
	return types
}

type fakeMemberLookup struct {
	mu      sync.Mutex
	members map[uint][]uint
	err     error
	calls   int
}

func (l *fakeMemberLookup) LookupMembers(conversationID uint) ([]uint, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.members[conversationID], nil
}

func (l *fakeMemberLookup) set(conversationID uint, userIDs []uint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.members == nil {
		l.members = make(map[uint][]uint)
	}
	l.members[conversationID] = userIDs
}

type fakeFriendLookup struct {
	friends map[uint][]uint
	err     error
}

func (l *fakeFriendLookup) LookupFriends(userID uint) ([]uint, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.friends[userID], nil
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []json.RawMessage
	targets  [][]uint
}

func (p *fakePublisher) Publish(event json.RawMessage, targets []uint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, append(json.RawMessage(nil), event...))
	p.targets = append(p.targets, append([]uint(nil), targets...))
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
