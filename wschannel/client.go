/*
File Name:  client.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

Dialer implements core.Dialer by dialing a ws:// or wss:// URL.
*/

package wschannel

import (
	"github.com/gorilla/websocket"

	core "github.com/legio-mesh/legio"
)

// Dialer dials remote wschannel.Server endpoints. It implements core.Dialer.
type Dialer struct{}

// Dial connects to a ws:// or wss:// URL and returns the resulting Channel.
func (Dialer) Dial(url string) (core.Channel, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return newChannel(conn), nil
}
