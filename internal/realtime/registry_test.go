package realtime

import "testing"

func TestRegistryOnlineLifecycle(t *testing.T) {
	registry := NewConnectionRegistry()
	conn := &fakeConn{}

	if registry.IsOnline(1) {
		t.Fatal("user with zero connections reported online")
	}
	if !registry.Connect(1, conn) {
		t.Fatal("first connect should report the user was offline")
	}
	if !registry.IsOnline(1) {
		t.Fatal("user with one connection reported offline")
	}
	if !registry.Disconnect(1, conn) {
		t.Fatal("removing the only connection should report became offline")
	}
	if registry.IsOnline(1) {
		t.Fatal("user reported online after last disconnect")
	}
}

func TestRegistryConnectReportsOfflineTransitionOnce(t *testing.T) {
	registry := NewConnectionRegistry()
	first := &fakeConn{}
	second := &fakeConn{}

	if !registry.Connect(7, first) {
		t.Fatal("first connect should report was offline")
	}
	if registry.Connect(7, second) {
		t.Fatal("second connect should not report was offline")
	}
	if registry.Disconnect(7, first) {
		t.Fatal("disconnect with a sibling connection left should not report became offline")
	}
	if !registry.Disconnect(7, second) {
		t.Fatal("disconnecting the last connection should report became offline")
	}
}

func TestRegistryDisconnectIsIdempotent(t *testing.T) {
	registry := NewConnectionRegistry()
	conn := &fakeConn{}

	if registry.Disconnect(3, conn) {
		t.Fatal("disconnecting an unknown pair should be a no-op")
	}
	registry.Connect(3, conn)
	if !registry.Disconnect(3, conn) {
		t.Fatal("first disconnect should report became offline")
	}
	if registry.Disconnect(3, conn) {
		t.Fatal("repeated disconnect for the same pair should be a no-op")
	}
}

func TestRegistryConnectionsForReturnsSnapshot(t *testing.T) {
	registry := NewConnectionRegistry()
	conn := &fakeConn{}
	registry.Connect(5, conn)

	snapshot := registry.ConnectionsFor(5)
	if len(snapshot) != 1 {
		t.Fatalf("expected 1 connection, got %d", len(snapshot))
	}

	registry.Disconnect(5, conn)
	if len(snapshot) != 1 {
		t.Fatal("snapshot should be unaffected by later mutation")
	}
	if got := registry.ConnectionsFor(5); got != nil {
		t.Fatalf("expected nil snapshot for offline user, got %d connections", len(got))
	}
}

func TestRegistryCloseAllClosesEverything(t *testing.T) {
	registry := NewConnectionRegistry()
	a := &fakeConn{}
	b := &fakeConn{}
	registry.Connect(1, a)
	registry.Connect(2, b)

	registry.CloseAll()

	if a.closed != 1 || b.closed != 1 {
		t.Fatalf("expected every connection closed once, got %d and %d", a.closed, b.closed)
	}
	if registry.IsOnline(1) || registry.IsOnline(2) {
		t.Fatal("users still online after CloseAll")
	}
}
