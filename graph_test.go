package core

import "testing"

// connectNodes wires two Nodes together with a direct in-memory Channel pair,
// as if they had just completed a direct peering handshake.
func connectNodes(a, b *Node) {
	chA, chB := newMemChannelPair()
	a.AcceptChannel(chA)
	b.AcceptChannel(chB)
}

func TestTwoNodesBindAsNeighborsAndRoute(t *testing.T) {
	a := newTestNode(t)
	b := newTestNode(t)
	connectNodes(a, b)

	tick([]*Node{a, b}, 5)

	if !a.routing.HasNeighbor(b.ID()) {
		t.Fatalf("a did not bind b as a neighbor")
	}
	if !b.routing.HasNeighbor(a.ID()) {
		t.Fatalf("b did not bind a as a neighbor")
	}

	hop, ok := a.routing.Table().FindNextHop(b.ID())
	if !ok || hop != b.ID() {
		t.Fatalf("a's routing table does not route to b directly: hop=%v ok=%v", hop, ok)
	}

	hop, ok = b.routing.Table().FindNextHop(a.ID())
	if !ok || hop != a.ID() {
		t.Fatalf("b's routing table does not route to a directly: hop=%v ok=%v", hop, ok)
	}

	if !a.IsConnected() || !b.IsConnected() {
		t.Fatalf("expected both nodes to report IsConnected")
	}
}

func TestUserMessageSendReceive(t *testing.T) {
	a := newTestNode(t)
	b := newTestNode(t)
	connectNodes(a, b)

	tick([]*Node{a, b}, 5)

	received := make(chan []byte, 1)
	b.OnMessage(func(remoteID Identifier, message []byte) {
		if remoteID != a.ID() {
			t.Errorf("message delivered with wrong source: %v", remoteID)
		}
		received <- message
	})

	if err := a.Send(b.ID(), []byte("hello")); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case msg := <-received:
		if string(msg) != "hello" {
			t.Fatalf("received %q, want %q", msg, "hello")
		}
	default:
		t.Fatalf("message was not delivered synchronously")
	}
}

func TestBroadcastReachesIndirectNode(t *testing.T) {
	a := newTestNode(t)
	b := newTestNode(t)
	c := newTestNode(t)
	connectNodes(a, b)
	connectNodes(b, c)

	tick([]*Node{a, b, c}, 8)

	hop, ok := a.routing.Table().FindNextHop(c.ID())
	if !ok {
		t.Fatalf("a has no route to c through b")
	}
	if hop != b.ID() {
		t.Fatalf("a's next hop to c = %v, want b (%v)", hop, b.ID())
	}

	received := make(chan []byte, 1)
	c.OnMessage(func(remoteID Identifier, message []byte) {
		received <- message
	})

	if err := a.Broadcast([]byte("flood")); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}

	select {
	case msg := <-received:
		if string(msg) != "flood" {
			t.Fatalf("received %q, want %q", msg, "flood")
		}
	default:
		t.Fatalf("broadcast did not reach the indirectly connected node")
	}
}
