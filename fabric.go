/*
File Name:  fabric.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

Routing owns the set of open channels and the subset that are neighbor-bound. It
dispatches inbound messages to subscribers and forwards, broadcasts, or delivers
locally. Its three containers (channels, neighbors, table pointer) are guarded by
a readers-writer lock since inbound channel callbacks may run off the tick thread.
*/

package core

import (
	"sync"
)

// Routing is the routing fabric described in spec §4.3 / §3 (component d).
type Routing struct {
	node *Node

	mutex     sync.RWMutex
	channels  map[Channel]struct{}
	neighbors map[Identifier]Channel
	table     *RoutingTable
}

func newRouting(node *Node) *Routing {
	return &Routing{
		node:      node,
		channels:  make(map[Channel]struct{}),
		neighbors: make(map[Identifier]Channel),
		table:     NewRoutingTable(),
	}
}

// LocalID returns the owning node's Identifier.
func (r *Routing) LocalID() Identifier {
	return r.node.ID()
}

// AddChannel registers c, installs its inbound callback, and wires its close
// callback to evict it (and any neighbor bindings that reference it).
func (r *Routing) AddChannel(c Channel) {
	r.mutex.Lock()
	r.channels[c] = struct{}{}
	r.mutex.Unlock()

	c.OnReceive(func(frame []byte) {
		decoded, err := decodeMessage(frame)
		if err != nil {
			r.node.logError("Routing.AddChannel", "invalid message: %v", err)
			return
		}
		r.route(decoded, c)
	})

	c.OnClose(func() {
		r.RemoveChannel(c)
	})
}

// RemoveChannel unregisters c and evicts any neighbor entry bound to it, raising
// a neighbor-change event with the departed id for each one.
func (r *Routing) RemoveChannel(c Channel) {
	r.mutex.Lock()
	delete(r.channels, c)

	var departed []Identifier
	for id, ch := range r.neighbors {
		if ch == c {
			departed = append(departed, id)
			delete(r.neighbors, id)
		}
	}
	r.mutex.Unlock()

	for _, id := range departed {
		r.node.notify(NeighborEvent{ID: id, Channel: nil})
	}
}

// AddNeighbor binds remoteId to c if c is a registered channel and remoteId is
// not already bound, raising a Neighbor event on success.
func (r *Routing) AddNeighbor(remoteID Identifier, c Channel) {
	r.mutex.Lock()
	_, registered := r.channels[c]
	_, exists := r.neighbors[remoteID]
	if registered && !exists {
		r.neighbors[remoteID] = c
	}
	r.mutex.Unlock()

	if registered && !exists {
		r.node.notify(NeighborEvent{ID: remoteID, Channel: c})
	}
}

// RemoveNeighbor unbinds remoteId from c, but only if it is currently bound to
// exactly c, raising a Neighbor departure event on success.
func (r *Routing) RemoveNeighbor(remoteID Identifier, c Channel) {
	r.mutex.Lock()
	current, exists := r.neighbors[remoteID]
	removed := exists && current == c
	if removed {
		delete(r.neighbors, remoteID)
	}
	r.mutex.Unlock()

	if removed {
		r.node.notify(NeighborEvent{ID: remoteID, Channel: nil})
	}
}

// HasNeighbor reports whether remoteId currently has a bound channel.
func (r *Routing) HasNeighbor(remoteID Identifier) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	_, ok := r.neighbors[remoteID]
	return ok
}

// Neighbors returns a snapshot of all currently bound neighbor ids.
func (r *Routing) Neighbors() []Identifier {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]Identifier, 0, len(r.neighbors))
	for id := range r.neighbors {
		out = append(out, id)
	}
	return out
}

// Table returns the current routing table snapshot.
func (r *Routing) Table() *RoutingTable {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.table
}

// SetTable atomically replaces the routing table.
func (r *Routing) SetTable(t *RoutingTable) {
	r.mutex.Lock()
	r.table = t
	r.mutex.Unlock()
}

// send dispatches msg: forwarded if it carries a destination, flooded otherwise.
func (r *Routing) send(msg *decodedMessage) {
	if _, ok := msg.destinationID(); ok {
		r.route(msg, nil)
		return
	}
	r.broadcast(msg, nil)
}

// broadcast sends msg's raw bytes on every open channel except from. Per-channel
// send errors are logged; the broadcast does not abort.
func (r *Routing) broadcast(msg *decodedMessage, from Channel) {
	r.mutex.RLock()
	channels := make([]Channel, 0, len(r.channels))
	for c := range r.channels {
		if c != from {
			channels = append(channels, c)
		}
	}
	r.mutex.RUnlock()

	for _, c := range channels {
		if err := c.Send(msg.raw); err != nil {
			r.node.logError("Routing.broadcast", "channel send error: %v", err)
		}
	}
}

// route requires a source; if there is no destination, or the destination is the
// local node, it publishes a Message event for upstream dispatch. Otherwise it
// looks up the next hop and forwards, dropping silently if any lookup misses.
func (r *Routing) route(msg *decodedMessage, from Channel) {
	if _, ok := msg.sourceID(); !ok {
		r.node.logError("Routing.route", "dropped message with no source")
		return
	}

	destination, hasDestination := msg.destinationID()
	if !hasDestination || destination == r.LocalID() {
		r.node.notify(MessageEvent{Message: msg, From: from})
		return
	}

	r.mutex.RLock()
	table := r.table
	r.mutex.RUnlock()

	nextHop, ok := table.FindNextHop(destination)
	if !ok {
		return
	}

	r.mutex.RLock()
	channel, ok := r.neighbors[nextHop]
	r.mutex.RUnlock()
	if !ok {
		return
	}

	if err := channel.Send(msg.raw); err != nil {
		r.node.logError("Routing.route", "channel send error: %v", err)
	}
}
