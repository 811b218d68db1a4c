/*
File Name:  peering.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

Peering drives the direct-channel handshake with one remote candidate over the
Signaling transport (component h). The actual NAT-traversal/ICE machinery is an
external collaborator per spec §1; here the exchanged "description" is the
advertising node's own dialable wschannel URL rather than a full SDP blob, since
the reference server contract (design note c) is a single plain listening
server, not an ICE/relay stack. The collision tiebreaker is unchanged: the node
with the larger Identifier drops an incoming offer while its own is outstanding.
*/

package core

import "sync"

// Dialer is the external collaborator that turns a description (for wschannel,
// a ws:// or wss:// URL) into an open Channel.
type Dialer interface {
	Dial(description string) (Channel, error)
}

// Peering is the per-remote direct-connection state machine.
type Peering struct {
	node      *Node
	transport *Transport
	remoteID  Identifier

	mutex      sync.Mutex
	offered    bool
	connected  bool
}

func newPeering(node *Node, transport *Transport, remoteID Identifier) *Peering {
	return &Peering{node: node, transport: transport, remoteID: remoteID}
}

// IsConnected reports whether a direct channel is currently open for this peering.
func (p *Peering) IsConnected() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.connected
}

// Connect sends a local offer carrying this node's advertised URL, if any.
func (p *Peering) Connect() {
	p.mutex.Lock()
	p.offered = true
	p.mutex.Unlock()

	local := p.node.advertisedURL()
	if err := p.transport.Send(p.remoteID, packSignaling("offer", local)); err != nil {
		p.node.logError("Peering.Connect", "offer send failed: %v", err)
	}
}

// Receive handles an inbound Signaling payload addressed to this peering.
func (p *Peering) Receive(payload []byte) {
	descriptionType, description, err := unpackSignaling(payload)
	if err != nil {
		p.node.logError("Peering.Receive", "malformed signaling payload: %v", err)
		return
	}

	switch descriptionType {
	case "offer":
		p.handleOffer(description)
	case "answer":
		p.handleAnswer(description)
	}
}

func (p *Peering) handleOffer(remoteURL string) {
	p.mutex.Lock()
	// Larger id wins the tiebreak: it keeps its own offer and ignores theirs.
	tiebreak := p.offered && p.remoteID.Less(p.node.ID())
	p.mutex.Unlock()

	if tiebreak {
		return
	}

	if remoteURL != "" {
		p.dialAndPromote(remoteURL)
	}

	local := p.node.advertisedURL()
	if err := p.transport.Send(p.remoteID, packSignaling("answer", local)); err != nil {
		p.node.logError("Peering.handleOffer", "answer send failed: %v", err)
	}
}

func (p *Peering) handleAnswer(remoteURL string) {
	if p.IsConnected() || remoteURL == "" {
		return
	}
	p.dialAndPromote(remoteURL)
}

func (p *Peering) dialAndPromote(url string) {
	if p.node.dialer == nil {
		return
	}

	channel, err := p.node.dialer.Dial(url)
	if err != nil {
		p.node.logError("Peering.dialAndPromote", "dial %s failed: %v", url, err)
		return
	}

	p.promote(channel)
}

// promote hands a freshly opened direct channel to Routing, registering it as
// both an open channel and a neighbor binding.
func (p *Peering) promote(channel Channel) {
	p.mutex.Lock()
	p.connected = true
	p.mutex.Unlock()

	p.node.routing.AddChannel(channel)
	p.node.routing.AddNeighbor(p.remoteID, channel)

	channel.OnClose(func() {
		p.mutex.Lock()
		p.connected = false
		p.mutex.Unlock()
	})
}
