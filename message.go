/*
File Name:  message.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

decodedMessage binds a wire protocol.Message to its raw encoded bytes, so Routing
can re-flood the exact signed frame it received without re-deriving it.
*/

package core

import (
	"github.com/btcsuite/btcd/btcec"
	"github.com/legio-mesh/legio/protocol"
)

type decodedMessage struct {
	msg *protocol.Message
	raw []byte
}

// signMessage builds and signs a Message of the given type, sourced from the
// local signing key.
func signMessage(priv *btcec.PrivateKey, msgType uint8, sequence uint32, body []byte, destination *Identifier) (*decodedMessage, error) {
	var source [protocol.IdentifierSize]byte
	copy(source[:], IdentifierFromPublicKey(priv.PubKey())[:])

	var dest *[protocol.IdentifierSize]byte
	if destination != nil {
		var d [protocol.IdentifierSize]byte
		copy(d[:], destination[:])
		dest = &d
	}

	sign := func(data []byte) ([]byte, error) {
		return Sign(priv, data)
	}

	msg, err := protocol.Create(msgType, sequence, body, &source, dest, sign)
	if err != nil {
		return nil, err
	}

	raw, err := msg.Encode()
	if err != nil {
		return nil, err
	}

	return &decodedMessage{msg: msg, raw: raw}, nil
}

// decodeMessage parses and signature-verifies a raw wire frame.
func decodeMessage(raw []byte) (*decodedMessage, error) {
	verify := func(source [protocol.IdentifierSize]byte, data, sig []byte) bool {
		id, err := ParseIdentifier(source[:])
		if err != nil {
			return false
		}
		pub, err := id.PublicKey()
		if err != nil {
			return false
		}
		return Verify(pub, data, sig)
	}

	msg, err := protocol.Decode(raw, verify)
	if err != nil {
		return nil, mapProtocolError(err)
	}

	return &decodedMessage{msg: msg, raw: raw}, nil
}

func mapProtocolError(err error) error {
	switch err {
	case protocol.ErrMalformed:
		return ErrMalformed
	case protocol.ErrBadSignature:
		return ErrBadSignature
	default:
		return err
	}
}

func (d *decodedMessage) sourceID() (Identifier, bool) {
	if d.msg.Source == nil {
		return Identifier{}, false
	}
	id, err := ParseIdentifier(d.msg.Source[:])
	return id, err == nil
}

func (d *decodedMessage) destinationID() (Identifier, bool) {
	if d.msg.Destination == nil {
		return Identifier{}, false
	}
	id, err := ParseIdentifier(d.msg.Destination[:])
	return id, err == nil
}

// compareSequence re-exports the protocol package's serial-number comparison for
// callers in this package.
func compareSequence(s1, s2 uint32) int {
	return protocol.CompareSequence(s1, s2)
}
