/*
File Name:  channel.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

Channel is the contract the core consumes from the external collaborator that
implements the actual peer-to-peer transport (datagram/streaming sockets, NAT
traversal, relay integration). The core never constructs a Channel itself except
through the wschannel reference implementation.
*/

package core

// Channel is an abstract bidirectional byte-message pipe with open/close/send/
// receive semantics and per-frame delivery; framing is the channel layer's
// responsibility, not the core's.
type Channel interface {
	// Send transmits one frame. It must be safe to call concurrently with itself
	// and with receiving.
	Send(frame []byte) error

	// OnReceive registers the callback invoked for every inbound frame. It may be
	// called from a goroutine other than the tick thread.
	OnReceive(func(frame []byte))

	// OnClose registers the callback invoked once when the channel closes, either
	// locally or remotely.
	OnClose(func())

	// Close closes the channel. It is safe to call multiple times.
	Close() error
}
