/*
File Name:  graph.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

Graph is the topology engine (component e): it gossips per-node adjacency state
(Hello, State), merges accepted State under a monotonic-sequence rule, and
recomputes a next-hop routing table by shortest path whenever the edge set
changes. Vertices live in an arena-style map guarded by a readers-writer lock;
shortest-path working state (nextHop/distance/visited) is transient per pass.

Supplements the distilled spec with two resolutions the original reference
implementation left as open TODOs: rate-limited state rebroadcast (graph.cpp
flags "request broadcast method to limit rate") and vertex expiry (stale
vertices were never evicted at all upstream).
*/

package core

import (
	"container/heap"
	"sync"
	"time"

	"github.com/legio-mesh/legio/protocol"
)

// minRebroadcastInterval bounds how often an accepted remote State can trigger a
// local State rebroadcast, resolving the original's unresolved rate-limit TODO.
const minRebroadcastInterval = 1 * time.Second

// VertexExpiry is the number of ticks a vertex's State may go unrefreshed before
// it is pruned from the graph, resolving the spec's open question about
// unbounded topology growth. The local vertex is never pruned.
const VertexExpiry = 64

// Graph is the topology engine described in spec §4.4 (component e).
type Graph struct {
	node *Node

	localEcdh *EcdhKeyPair

	mutex         sync.RWMutex
	vertices      map[Identifier]*vertex
	helloSequence uint32
	stateSequence uint32
	tick          int

	rebroadcastMutex    sync.Mutex
	lastBroadcastState  time.Time
	rebroadcastPending  bool
}

func newGraph(node *Node) (*Graph, error) {
	ecdh, err := GenerateECDHKey()
	if err != nil {
		return nil, err
	}

	g := &Graph{
		node:      node,
		localEcdh: ecdh,
		vertices:  make(map[Identifier]*vertex),
	}

	// Insert the local node's own genesis state at the oldest possible
	// sequence, so the first real publishLocalState() trivially supersedes it.
	local := newVertex(node.ID())
	local.state = &State{SourceID: node.ID(), Sequence: ^uint32(0), Neighbors: map[Identifier]struct{}{}}
	local.hasState = true
	g.vertices[node.ID()] = local

	return g, nil
}

// localEcdhPair returns the node's ephemeral key-agreement keypair, used by
// Transport to seal/open CipherBody payloads.
func (g *Graph) localEcdhPair() *EcdhKeyPair {
	return g.localEcdh
}

func (g *Graph) update() {
	g.mutex.Lock()
	g.tick++
	g.pruneExpiredVertices()
	g.mutex.Unlock()

	g.broadcastHello()
}

func (g *Graph) pruneExpiredVertices() {
	// mutex must be held
	local := g.node.ID()
	for id, v := range g.vertices {
		if id == local {
			continue
		}
		if v.hasState && g.tick-v.lastRefresh > VertexExpiry {
			delete(g.vertices, id)
		}
	}
}

func (g *Graph) notify(event Event) {
	switch e := event.(type) {
	case MessageEvent:
		switch e.Message.msg.Type {
		case protocol.TypeHello:
			g.handleHello(e.Message, e.From)
		case protocol.TypeState:
			g.handleState(e.Message, e.From)
		}
	case NeighborEvent:
		g.handleNeighborChange()
	}
}

// broadcastHello floods an empty-body Hello with an incrementing sequence. Hello
// is expected every tick and is never rate-limited.
func (g *Graph) broadcastHello() {
	g.mutex.Lock()
	g.helloSequence++
	seq := g.helloSequence
	g.mutex.Unlock()

	msg, err := signMessage(g.node.signingKey, protocol.TypeHello, seq, nil, nil)
	if err != nil {
		g.node.logError("Graph.broadcastHello", "sign error: %v", err)
		return
	}
	g.node.routing.send(msg)
}

// handleHello registers the sender as a neighbor if it is not already one.
func (g *Graph) handleHello(msg *decodedMessage, from Channel) {
	source, ok := msg.sourceID()
	if !ok || from == nil {
		return
	}
	if !g.node.routing.HasNeighbor(source) {
		g.node.routing.AddNeighbor(source, from)
	}
}

// publishLocalState builds and floods the local State: current neighbor set from
// Routing, incrementing sequence, signed.
func (g *Graph) publishLocalState() {
	g.mutex.Lock()
	g.stateSequence++
	seq := g.stateSequence
	g.mutex.Unlock()

	neighbors := make(map[Identifier]struct{})
	for _, id := range g.node.routing.Neighbors() {
		neighbors[id] = struct{}{}
	}

	state := &State{
		SourceID:       g.node.ID(),
		Sequence:       seq,
		ProvisionFlags: g.node.provisionFlags(),
		Neighbors:      neighbors,
	}
	copy(state.EcdhPublic[:], g.localEcdh.PublicBytes())

	msg, err := state.toMessage(g.node.signingKey)
	if err != nil {
		g.node.logError("Graph.publishLocalState", "sign error: %v", err)
		return
	}
	g.node.routing.send(msg)

	g.mutex.Lock()
	local := g.vertices[g.node.ID()]
	local.state = state
	local.hasState = true
	local.lastRefresh = g.tick
	g.mutex.Unlock()
}

// requestRebroadcast schedules a rate-limited local State rebroadcast.
func (g *Graph) requestRebroadcast() {
	g.rebroadcastMutex.Lock()
	defer g.rebroadcastMutex.Unlock()

	if g.rebroadcastPending {
		return
	}

	elapsed := time.Since(g.lastBroadcastState)
	delay := minRebroadcastInterval - elapsed
	if delay < 0 {
		delay = 0
	}

	g.rebroadcastPending = true
	g.node.scheduler.Schedule(delay, func() {
		g.rebroadcastMutex.Lock()
		g.lastBroadcastState = time.Now()
		g.rebroadcastPending = false
		g.rebroadcastMutex.Unlock()

		g.publishLocalState()
	})
}

// handleState validates, merges, and re-floods an accepted remote State.
func (g *Graph) handleState(msg *decodedMessage, from Channel) {
	state, err := stateFromMessage(msg)
	if err != nil {
		g.node.logError("Graph.handleState", "malformed state: %v", err)
		return
	}

	accepted := g.insert(state)
	if !accepted {
		return
	}

	g.node.routing.broadcast(msg, from)
}

// insert merges a validated remote State into the graph, returning whether it
// was accepted (strictly newer than the cached sequence).
func (g *Graph) insert(state *State) bool {
	g.mutex.Lock()
	v, known := g.vertices[state.SourceID]
	isNew := !known || !v.hasState
	accepted := g.updateVertice(state)
	g.mutex.Unlock()

	if accepted && isNew {
		g.node.Filters.NewVertex(state.SourceID)
	}
	return accepted
}

// get returns a snapshot of the cached State for id, if any.
func (g *Graph) get(id Identifier) (State, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	v, ok := g.vertices[id]
	if !ok || !v.hasState {
		return State{}, false
	}
	return *v.state, true
}

// nodes returns every vertex id whose State's ProvisionFlags include all bits in
// mask.
func (g *Graph) nodes(mask uint32) []Identifier {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var out []Identifier
	for id, v := range g.vertices {
		if v.hasState && v.state.ProvisionFlags&mask == mask {
			out = append(out, id)
		}
	}
	return out
}

// count returns the number of known vertices.
func (g *Graph) count() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.vertices)
}

// updateVertice applies an accepted-or-rejected State to the vertex map. Caller
// must hold g.mutex for writing.
func (g *Graph) updateVertice(state *State) bool {
	v, exists := g.vertices[state.SourceID]

	if exists && v.hasState {
		if compareSequence(state.Sequence, v.state.Sequence) <= 0 {
			return false
		}

		oldEcdh := v.state.EcdhPublic
		v.state = state
		v.hasState = true
		v.lastRefresh = g.tick

		if oldEcdh != state.EcdhPublic {
			g.requestRebroadcast()
		}

		g.updateEdges(v, state.Neighbors)
		return true
	}

	if !exists {
		v = newVertex(state.SourceID)
		g.vertices[state.SourceID] = v
	}

	v.state = state
	v.hasState = true
	v.lastRefresh = g.tick

	g.requestRebroadcast()
	g.updateEdges(v, state.Neighbors)
	return true
}

// updateEdges computes added/removed edges against v's current edge set. For
// added ids, it find-or-creates the neighbor vertex and links it; for removed
// ids, it unlinks (the vertex itself is never deleted here). Recomputes the
// routing table if anything changed. Caller must hold g.mutex for writing.
func (g *Graph) updateEdges(v *vertex, neighbors map[Identifier]struct{}) bool {
	changed := false

	for id := range v.edges {
		if _, still := neighbors[id]; !still {
			delete(v.edges, id)
			changed = true
		}
	}

	for id := range neighbors {
		if _, already := v.edges[id]; !already {
			if _, ok := g.vertices[id]; !ok {
				g.vertices[id] = newVertex(id)
			}
			v.edges[id] = struct{}{}
			changed = true
		}
	}

	if changed {
		g.computeRoutingTable()
	}
	return changed
}

func (g *Graph) handleNeighborChange() {
	neighbors := make(map[Identifier]struct{})
	for _, id := range g.node.routing.Neighbors() {
		neighbors[id] = struct{}{}
	}

	g.mutex.Lock()
	local, ok := g.vertices[g.node.ID()]
	var changed bool
	if ok {
		changed = g.updateEdges(local, neighbors)
	}
	g.mutex.Unlock()

	if changed {
		g.publishLocalState()
	}
}

// pqItem is one entry of the shortest-path priority queue.
type pqItem struct {
	id       Identifier
	distance int
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].distance < pq[j].distance }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// computeRoutingTable runs a single-source shortest-path pass rooted at the
// local vertex (edge weight 1) and publishes the resulting table via
// Routing.SetTable. Caller must hold g.mutex for writing.
func (g *Graph) computeRoutingTable() {
	for _, v := range g.vertices {
		v.nextHop = nil
		v.distance = -1
		v.visited = false
	}

	localID := g.node.ID()
	local, ok := g.vertices[localID]
	if !ok {
		g.node.logError("Graph.computeRoutingTable", "missing local vertex")
		return
	}

	local.distance = 0

	pq := &priorityQueue{{id: localID, distance: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		top := heap.Pop(pq).(pqItem)
		u, ok := g.vertices[top.id]
		if !ok || u.visited {
			continue
		}
		u.visited = true

		for neighborID := range u.edges {
			v, ok := g.vertices[neighborID]
			if !ok || v.visited {
				continue
			}

			tentative := u.distance + 1
			if v.nextHop == nil || tentative < v.distance {
				if u.nextHop != nil {
					v.nextHop = u.nextHop
				} else {
					id := neighborID
					v.nextHop = &id
				}
				v.distance = tentative
				heap.Push(pq, pqItem{id: neighborID, distance: tentative})
			}
		}
	}

	table := NewRoutingTable()
	for id, v := range g.vertices {
		if v.nextHop != nil {
			table.Add(id, *v.nextHop)
		}
	}

	g.node.routing.SetTable(table)
}
