/*
File Name:  transport.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

Transport is a typed, sequenced, signed unicast lane over the routing fabric: it
encrypts bodies with a per-peer agreed key (component f). BroadcastableTransport
(broadcast.go) extends it with authenticated flood.
*/

package core

import (
	"sync"
	"sync/atomic"

	"github.com/legio-mesh/legio/protocol"
)

// ReceiveCallback is invoked by a Transport for every accepted inbound payload.
type ReceiveCallback func(remoteID Identifier, payload []byte)

// Transport is the typed unicast lane described in spec §4.2.
type Transport struct {
	node            *Node
	msgType         uint8
	receiveCallback ReceiveCallback

	sendSequence uint32 // atomic

	sequenceMutex sync.Mutex
	sequences     map[Identifier]uint32
}

func newTransport(node *Node, msgType uint8, cb ReceiveCallback) *Transport {
	return &Transport{
		node:            node,
		msgType:         msgType,
		receiveCallback: cb,
		sequences:       make(map[Identifier]uint32),
	}
}

func (t *Transport) update() {}

func (t *Transport) notify(event Event) {
	e, ok := event.(MessageEvent)
	if !ok {
		return
	}
	if e.Message.msg.Type != t.msgType {
		return
	}
	if _, ok := e.Message.sourceID(); !ok {
		return
	}
	t.incoming(e.Message, e.From)
}

// Send encrypts payload under CipherBody and sends it as a signed, typed
// unicast Message to remoteID. It fails with ErrUnknownPeer if remoteID's State
// (and therefore its ephemeral key) is not known.
func (t *Transport) Send(remoteID Identifier, payload []byte) error {
	remoteState, ok := t.node.graph.get(remoteID)
	if !ok {
		return ErrUnknownPeer
	}

	remoteEcdh, err := ParseEcdhPublic(remoteState.EcdhPublic[:])
	if err != nil {
		return ErrMalformed
	}

	cipherBody, err := sealCipherBody(t.node.graph.localEcdhPair(), remoteEcdh, payload)
	if err != nil {
		return err
	}

	seq := atomic.AddUint32(&t.sendSequence, 1)
	dest := remoteID
	msg, err := signMessage(t.node.signingKey, t.msgType, seq, cipherBody.Encode(), &dest)
	if err != nil {
		return err
	}

	t.node.routing.send(msg)
	return nil
}

// broadcast is not supported on a plain Transport; only BroadcastableTransport
// implements it.
func (t *Transport) broadcast(payload []byte) error {
	panic("core: Transport does not support broadcasting")
}

// incoming handles an inbound Message of this transport's type, requiring a
// destination (broadcast frames are rejected here and handled by
// BroadcastableTransport instead).
func (t *Transport) incoming(msg *decodedMessage, from Channel) {
	remoteID, ok := msg.sourceID()
	if !ok {
		return
	}

	if !t.checkSequence(remoteID, msg.msg.Sequence) {
		return
	}

	if _, hasDestination := msg.destinationID(); !hasDestination {
		return
	}

	cipherBody, err := protocol.DecodeCipherBody(msg.msg.Body)
	if err != nil {
		t.node.logError("Transport.incoming", "malformed cipherbody: %v", err)
		return
	}

	payload, err := openCipherBody(t.node.graph.localEcdhPair(), cipherBody)
	if err != nil {
		t.node.logError("Transport.incoming", "open failed: %v", err)
		return
	}

	t.receiveCallback(remoteID, payload)
}

// checkSequence enforces per-source strict monotonicity. The first-ever
// sequence for a source is always accepted.
func (t *Transport) checkSequence(id Identifier, sequence uint32) bool {
	t.sequenceMutex.Lock()
	defer t.sequenceMutex.Unlock()

	last, ok := t.sequences[id]
	if !ok {
		t.sequences[id] = sequence
		return true
	}

	if compareSequence(sequence, last) > 0 {
		t.sequences[id] = sequence
		return true
	}

	return false
}
