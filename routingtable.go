/*
File Name:  routingtable.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

RoutingTable is a concurrent mapping destination -> next-hop Identifier. It is
rebuilt atomically at the end of each shortest-path pass; readers always observe
a consistent snapshot, never a partially updated map.
*/

package core

import "sync"

// RoutingTable is a concurrent destination -> next-hop map.
type RoutingTable struct {
	mutex    sync.RWMutex
	nextHops map[Identifier]Identifier
}

// NewRoutingTable creates an empty routing table.
func NewRoutingTable() *RoutingTable {
	return &RoutingTable{nextHops: make(map[Identifier]Identifier)}
}

// Add inserts or overwrites the next hop for a destination.
func (t *RoutingTable) Add(destination, nextHop Identifier) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.nextHops[destination] = nextHop
}

// Remove removes the mapping for destination, but only if it currently equals
// nextHop, guarding against removing a mapping a later pass already superseded.
func (t *RoutingTable) Remove(destination, nextHop Identifier) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if current, ok := t.nextHops[destination]; ok && current == nextHop {
		delete(t.nextHops, destination)
	}
}

// FindNextHop returns the next hop toward destination, if known.
func (t *RoutingTable) FindNextHop(destination Identifier) (Identifier, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	id, ok := t.nextHops[destination]
	return id, ok
}

// Nodes returns every destination currently reachable in the table.
func (t *RoutingTable) Nodes() []Identifier {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	out := make([]Identifier, 0, len(t.nextHops))
	for id := range t.nextHops {
		out = append(out, id)
	}
	return out
}

// Count returns the number of reachable destinations.
func (t *RoutingTable) Count() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return len(t.nextHops)
}
