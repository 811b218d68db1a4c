/*
File Name:  channel.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

Package wschannel is the concrete core.Channel implementation: one binary
WebSocket connection per channel, framed message-for-message (gorilla/websocket
already preserves frame boundaries, so no length-prefixing is needed on top).
This is the "single plain listening server" concrete transport the design notes
settle on, in place of the reference implementation's ICE/TURN-backed WebRTC
DataChannel.
*/

package wschannel

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Channel wraps one *websocket.Conn as a core.Channel.
type Channel struct {
	conn *websocket.Conn

	writeMutex sync.Mutex

	receiveMutex sync.Mutex
	onReceive    func(frame []byte)

	closeMutex sync.Mutex
	onClose    []func()
	closed     bool
}

func newChannel(conn *websocket.Conn) *Channel {
	c := &Channel{conn: conn}
	go c.readLoop()
	return c
}

func (c *Channel) readLoop() {
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			c.runClose()
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		c.receiveMutex.Lock()
		cb := c.onReceive
		c.receiveMutex.Unlock()

		if cb != nil {
			cb(data)
		}
	}
}

// Send writes frame as a single binary WebSocket message.
func (c *Channel) Send(frame []byte) error {
	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()
	return c.conn.WriteMessage(websocket.BinaryMessage, frame)
}

// OnReceive installs the inbound frame callback.
func (c *Channel) OnReceive(cb func(frame []byte)) {
	c.receiveMutex.Lock()
	c.onReceive = cb
	c.receiveMutex.Unlock()
}

// OnClose registers cb to run once this channel's connection is gone. Multiple
// subscribers are supported since both Routing and Peering attach one each.
func (c *Channel) OnClose(cb func()) {
	c.closeMutex.Lock()
	alreadyClosed := c.closed
	if !alreadyClosed {
		c.onClose = append(c.onClose, cb)
	}
	c.closeMutex.Unlock()

	if alreadyClosed {
		cb()
	}
}

// Close closes the underlying connection.
func (c *Channel) Close() error {
	err := c.conn.Close()
	c.runClose()
	return err
}

func (c *Channel) runClose() {
	c.closeMutex.Lock()
	if c.closed {
		c.closeMutex.Unlock()
		return
	}
	c.closed = true
	callbacks := c.onClose
	c.onClose = nil
	c.closeMutex.Unlock()

	for _, cb := range callbacks {
		cb()
	}
}
