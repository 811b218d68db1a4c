/*
File Name:  state.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

State is a signed advertisement of a node's current ecdh public key, capability
flags, and neighbor set. Wire body: u32 provisionFlags | ecdhPublic(65) |
id1(33) | id2(33) | ... Grounded on the original reference implementation's
State::toMessage/FromMessage.
*/

package core

import (
	"encoding/binary"

	"github.com/btcsuite/btcd/btcec"
	"github.com/legio-mesh/legio/protocol"
)

// Provisioning capability flags carried in State.
const (
	ProvisionHasWebSocket uint32 = 0x1
	ProvisionHasTurn      uint32 = 0x2
)

// State is the decoded per-node advertisement.
type State struct {
	SourceID       Identifier
	Sequence       uint32
	ProvisionFlags uint32
	EcdhPublic     [EcdhKeySize]byte
	Neighbors      map[Identifier]struct{}
}

// encodeBody serializes the State body (without the Message envelope).
func (s *State) encodeBody() []byte {
	out := make([]byte, 4+EcdhKeySize, 4+EcdhKeySize+len(s.Neighbors)*IdentifierSize)
	binary.BigEndian.PutUint32(out[0:4], s.ProvisionFlags)
	copy(out[4:4+EcdhKeySize], s.EcdhPublic[:])

	for id := range s.Neighbors {
		out = append(out, id[:]...)
	}
	return out
}

// toMessage wraps the State as a signed State-typed Message.
func (s *State) toMessage(priv *btcec.PrivateKey) (*decodedMessage, error) {
	return signMessage(priv, protocol.TypeState, s.Sequence, s.encodeBody(), nil)
}

// stateFromMessage decodes a State from an accepted State-typed Message. It
// requires a source (validated by the caller via signature verification during
// decode). Trailing bytes shorter than one Identifier are ignored; they cause
// neither an error nor a log entry.
func stateFromMessage(d *decodedMessage) (*State, error) {
	if d.msg.Type != protocol.TypeState {
		return nil, ErrMalformed
	}

	source, ok := d.sourceID()
	if !ok {
		return nil, ErrMalformed
	}

	body := d.msg.Body
	if len(body) < 4+EcdhKeySize {
		return nil, ErrMalformed
	}

	s := &State{
		SourceID:       source,
		Sequence:       d.msg.Sequence,
		ProvisionFlags: binary.BigEndian.Uint32(body[0:4]),
		Neighbors:      make(map[Identifier]struct{}),
	}
	copy(s.EcdhPublic[:], body[4:4+EcdhKeySize])

	offset := 4 + EcdhKeySize
	for offset+IdentifierSize <= len(body) {
		var id Identifier
		copy(id[:], body[offset:offset+IdentifierSize])
		s.Neighbors[id] = struct{}{}
		offset += IdentifierSize
	}

	return s, nil
}
