package core

import "sync"

// memChannel is an in-memory Channel used to wire two Nodes together directly
// in tests, without any real networking.
type memChannel struct {
	peer *memChannel

	mutex     sync.Mutex
	onReceive func([]byte)
	onClose   []func()
	closed    bool
}

// newMemChannelPair returns two linked Channels: whatever is sent on one is
// delivered to the other's OnReceive callback.
func newMemChannelPair() (*memChannel, *memChannel) {
	a := &memChannel{}
	b := &memChannel{}
	a.peer = b
	b.peer = a
	return a, b
}

func (c *memChannel) Send(frame []byte) error {
	cp := make([]byte, len(frame))
	copy(cp, frame)

	c.peer.mutex.Lock()
	cb := c.peer.onReceive
	c.peer.mutex.Unlock()

	if cb != nil {
		cb(cp)
	}
	return nil
}

func (c *memChannel) OnReceive(cb func(frame []byte)) {
	c.mutex.Lock()
	c.onReceive = cb
	c.mutex.Unlock()
}

func (c *memChannel) OnClose(cb func()) {
	c.mutex.Lock()
	alreadyClosed := c.closed
	if !alreadyClosed {
		c.onClose = append(c.onClose, cb)
	}
	c.mutex.Unlock()

	if alreadyClosed {
		cb()
	}
}

func (c *memChannel) Close() error {
	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return nil
	}
	c.closed = true
	callbacks := c.onClose
	c.onClose = nil
	c.mutex.Unlock()

	for _, cb := range callbacks {
		cb()
	}
	return nil
}

// newTestNode builds a fully wired Node with a fresh random key, suitable for
// in-process multi-node tests. It never touches disk (LogFile is left empty).
func newTestNode(t interface{ Fatalf(string, ...interface{}) }) *Node {
	node, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return node
}

// tick runs Update on every node n times, back to back. No time passes between
// calls, so only rebroadcasts scheduled with zero delay run; one postponed by
// minRebroadcastInterval stays pending.
func tick(nodes []*Node, n int) {
	for i := 0; i < n; i++ {
		for _, node := range nodes {
			node.Update()
		}
	}
}
