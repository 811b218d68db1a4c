/*
File Name:  networking.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

Networking owns the set of in-progress/established Peering state machines and
periodically tries to grow direct connectivity toward targetPeeringCount by
picking random candidates out of the current routing table, mirroring the
reference implementation's own random-candidate selection in its networking
driver.
*/

package core

import (
	"math/rand"
	"sync"
)

// targetPeeringCount is how many concurrent direct peerings Networking tries to
// maintain.
const targetPeeringCount = 4

// Networking is the direct-connectivity driver described in spec §4.6 (component h).
type Networking struct {
	node      *Node
	transport *Transport

	mutex    sync.Mutex
	peerings map[Identifier]*Peering
}

func newNetworking(node *Node) *Networking {
	n := &Networking{node: node, peerings: make(map[Identifier]*Peering)}
	n.transport = newSignalingTransport(node, n.receive)
	return n
}

func (n *Networking) update() {
	n.transport.update()

	n.mutex.Lock()
	active := len(n.peerings)
	n.mutex.Unlock()

	if active >= targetPeeringCount {
		return
	}

	candidates := n.node.routing.Table().Nodes()
	rand.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

	for _, id := range candidates {
		if active >= targetPeeringCount {
			break
		}
		if id == n.node.ID() {
			continue
		}
		if n.node.routing.HasNeighbor(id) {
			continue
		}
		if n.getOrCreate(id).IsConnected() {
			continue
		}
		n.connectPeer(id)
		active++
	}
}

func (n *Networking) notify(event Event) {
	n.transport.notify(event)
}

// receive is the Signaling Transport's ReceiveCallback: payload is already
// decrypted and sequence-checked.
func (n *Networking) receive(remoteID Identifier, payload []byte) {
	n.getOrCreate(remoteID).Receive(payload)
}

func (n *Networking) getOrCreate(remoteID Identifier) *Peering {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	p, exists := n.peerings[remoteID]
	if !exists {
		p = newPeering(n.node, n.transport, remoteID)
		n.peerings[remoteID] = p
	}
	return p
}

// connectPeer initiates a direct peering attempt toward remoteID via an existing
// indirect route.
func (n *Networking) connectPeer(remoteID Identifier) {
	n.getOrCreate(remoteID).Connect()
}
