/*
File Name:  broadcast.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

BroadcastableTransport extends Transport with Broadcast: a flooded, signed, but
unencrypted Message (no destination). Inbound frames with no destination are
re-flooded to every channel except the one they arrived on, then delivered once
to the receive callback (sequence-checked, so a given broadcast is delivered
at-most-once per recipient per sequence).
*/

package core

import (
	"sync/atomic"
)

// BroadcastableTransport is the broadcast-capable Transport subtype described in
// spec §4.2.
type BroadcastableTransport struct {
	*Transport
}

func newBroadcastableTransport(node *Node, msgType uint8, cb ReceiveCallback) *BroadcastableTransport {
	return &BroadcastableTransport{Transport: newTransport(node, msgType, cb)}
}

func (t *BroadcastableTransport) notify(event Event) {
	e, ok := event.(MessageEvent)
	if !ok {
		return
	}
	if e.Message.msg.Type != t.msgType {
		return
	}
	t.incomingBroadcastable(e.Message, e.From)
}

// Broadcast floods payload, signed but unencrypted, with no destination.
func (t *BroadcastableTransport) Broadcast(payload []byte) error {
	seq := atomic.AddUint32(&t.sendSequence, 1)
	msg, err := signMessage(t.node.signingKey, t.msgType, seq, payload, nil)
	if err != nil {
		return err
	}
	t.node.routing.send(msg)
	return nil
}

func (t *BroadcastableTransport) incomingBroadcastable(msg *decodedMessage, from Channel) {
	if _, hasDestination := msg.destinationID(); hasDestination {
		t.Transport.incoming(msg, from)
		return
	}

	remoteID, ok := msg.sourceID()
	if !ok {
		return
	}

	if !t.checkSequence(remoteID, msg.msg.Sequence) {
		return
	}

	t.node.routing.broadcast(msg, from)
	t.receiveCallback(remoteID, msg.msg.Body)
}
