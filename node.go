/*
File Name:  node.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

Node is the public entry point (spec §6): it owns the signing key and every
component (Routing, Graph, Scheduler, Provisioning, Networking, the user-facing
Transport), wires Filters and logging, and drives the whole mesh from a single
Update call per the reference implementation's own synchronous, caller-driven
tick model.
*/

package core

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/btcsuite/btcd/btcec"
)

// Node is a single peer in the mesh.
type Node struct {
	Config  Config
	Filters Filters

	signingKey *btcec.PrivateKey

	routing      *Routing
	graph        *Graph
	scheduler    *Scheduler
	provisioning *Provisioning
	networking   *Networking
	user         *userTransport

	dialer Dialer

	components []component

	logger     *log.Logger
	logWriters *multiWriter
}

// New constructs a Node from cfg. A missing PrivateKey is generated in memory;
// the caller is responsible for persisting cfg back via SaveConfig if the
// generated key should survive a restart.
func New(cfg Config) (*Node, error) {
	var signingKey *btcec.PrivateKey
	var err error

	if cfg.PrivateKey == "" {
		signingKey, err = GenerateSigningKey()
	} else {
		signingKey, err = SigningKeyFromHex(cfg.PrivateKey)
	}
	if err != nil {
		return nil, err
	}
	cfg.PrivateKey = SigningKeyToHex(signingKey)

	n := &Node{Config: cfg, signingKey: signingKey}

	n.initFilters()
	n.initLog()

	n.routing = newRouting(n)

	graph, err := newGraph(n)
	if err != nil {
		return nil, err
	}
	n.graph = graph

	n.scheduler = newScheduler(n)
	n.provisioning = newProvisioning(n)
	n.networking = newNetworking(n)
	n.user = newUserTransport(n)

	n.components = []component{n.graph, n.provisioning, n.networking, n.user}

	return n, nil
}

// SetDialer installs the external collaborator used to open direct channels
// during peering (wschannel.Dialer, typically).
func (n *Node) SetDialer(d Dialer) {
	n.dialer = d
}

// ID returns this node's Identifier.
func (n *Node) ID() Identifier {
	return IdentifierFromPublicKey(n.signingKey.PubKey())
}

// IsConnected reports whether the routing table currently has any entry.
func (n *Node) IsConnected() bool {
	return n.routing.Table().Count() > 0
}

// AcceptChannel registers an inbound channel (typically from a wschannel.Server
// accept callback). The remote Identifier is learned later from its first Hello.
func (n *Node) AcceptChannel(c Channel) {
	n.routing.AddChannel(c)
}

// Update drives every component forward by one tick and runs all scheduler
// tasks that are currently due. The caller is expected to call this on a
// regular interval (the reference CLI uses 200ms).
func (n *Node) Update() {
	for _, c := range n.components {
		c.update()
	}
	n.scheduler.Run()
}

// notify fans event out to every component.
func (n *Node) notify(event Event) {
	for _, c := range n.components {
		c.notify(event)
	}

	switch e := event.(type) {
	case NeighborEvent:
		if e.Channel != nil {
			n.Filters.NewNeighbor(e.ID, e.Channel)
		} else {
			n.Filters.LostNeighbor(e.ID)
		}
	}
}

// Connect establishes connectivity toward target, which is either a ws:// or
// wss:// URL (dialed directly via the installed Dialer; the resulting channel
// is registered and the remote identity is learned from its first Hello) or a
// base64url-encoded Identifier (a direct peering attempt is made over the
// existing mesh).
func (n *Node) Connect(target string) error {
	if strings.HasPrefix(target, "ws://") || strings.HasPrefix(target, "wss://") {
		if n.dialer == nil {
			return fmt.Errorf("core: no dialer installed")
		}
		channel, err := n.dialer.Dial(target)
		if err != nil {
			return err
		}
		n.routing.AddChannel(channel)
		return nil
	}

	id, err := ParseIdentifierString(target)
	if err != nil {
		return err
	}
	n.networking.connectPeer(id)
	return nil
}

// Send delivers message to remoteID over an encrypted unicast channel.
func (n *Node) Send(remoteID Identifier, message []byte) error {
	return n.user.Send(remoteID, message)
}

// Broadcast floods message, signed but unencrypted, to every reachable node.
func (n *Node) Broadcast(message []byte) error {
	return n.user.Broadcast(message)
}

// OnMessage installs the callback invoked for every message delivered to this
// node, whether unicast or broadcast.
func (n *Node) OnMessage(cb func(remoteID Identifier, message []byte)) {
	n.user.setCallback(cb)
}

// SubscribeLog adds writer to the log fan-out set.
func (n *Node) SubscribeLog(writer io.Writer) {
	n.logWriters.Subscribe(writer)
}

// advertisedURL returns this node's dialable address, or "" if it does not run
// a reachable listener.
func (n *Node) advertisedURL() string {
	if n.Config.ExternalHost == "" {
		return ""
	}

	port := n.Config.ExternalPort
	if port == 0 {
		port = n.Config.Port
	}
	if port == 0 {
		return ""
	}

	scheme := "ws"
	if n.Config.TLSPemCertificate != "" && n.Config.TLSPemKey != "" {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s:%d/peer", scheme, n.Config.ExternalHost, port)
}

// provisionFlags reports this node's advertised capabilities for its own State.
func (n *Node) provisionFlags() uint32 {
	var flags uint32
	if n.Config.Port != 0 {
		flags |= ProvisionHasWebSocket
	}
	return flags
}
