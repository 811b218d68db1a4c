/*
File Name:  signaling.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

Signaling is the Transport carrying SDP-style description blobs between two
nodes that are establishing a direct channel, packed as two zero-terminated
strings {type, sdp}.
*/

package core

import "github.com/legio-mesh/legio/protocol"

func newSignalingTransport(node *Node, cb ReceiveCallback) *Transport {
	return newTransport(node, protocol.TypeSignaling, cb)
}

func packSignaling(descriptionType, sdp string) []byte {
	return packStrings(descriptionType, sdp)
}

func unpackSignaling(payload []byte) (descriptionType, sdp string, err error) {
	fields, err := unpackStrings(payload, 2)
	if err != nil {
		return "", "", err
	}
	return fields[0], fields[1], nil
}
