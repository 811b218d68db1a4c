/*
File Name:  usertransport.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

userTransport is the User-typed BroadcastableTransport backing the public
Node.Send/Node.Broadcast/Node.OnMessage API.
*/

package core

import (
	"sync"

	"github.com/legio-mesh/legio/protocol"
)

type userTransport struct {
	*BroadcastableTransport

	callbackMutex sync.Mutex
	callback      func(id Identifier, message []byte)
}

func newUserTransport(node *Node) *userTransport {
	t := &userTransport{}
	t.BroadcastableTransport = newBroadcastableTransport(node, protocol.TypeUser, t.receive)
	return t
}

func (t *userTransport) receive(id Identifier, payload []byte) {
	t.callbackMutex.Lock()
	cb := t.callback
	t.callbackMutex.Unlock()

	if cb != nil {
		cb(id, payload)
	}
}

func (t *userTransport) setCallback(cb func(id Identifier, message []byte)) {
	t.callbackMutex.Lock()
	t.callback = cb
	t.callbackMutex.Unlock()
}
