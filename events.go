/*
File Name:  events.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

Events are a closed tagged union: components subscribe by type-switching on the
interface rather than through virtual dispatch.
*/

package core

// Event is implemented by every event variant Routing publishes.
type Event interface {
	isEvent()
}

// MessageEvent is published when Routing delivers a Message locally, either
// because it has no destination (broadcast/flood) or the destination is the
// local node.
type MessageEvent struct {
	Message *decodedMessage
	From    Channel
}

func (MessageEvent) isEvent() {}

// NeighborEvent is published whenever a neighbor binding is created or removed.
// Channel is nil for a removal.
type NeighborEvent struct {
	ID      Identifier
	Channel Channel
}

func (NeighborEvent) isEvent() {}

// component is implemented by every subsystem the Node drives on each tick.
type component interface {
	update()
	notify(event Event)
}
