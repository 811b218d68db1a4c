/*
File Name:  identifier.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

Identifier is the opaque node identity: a node's signing public key in canonical
compressed form. It is immutable and globally unique modulo key collisions.
*/

package core

import (
	"bytes"
	"encoding/base64"

	"github.com/btcsuite/btcd/btcec"
)

// IdentifierSize is the length in bytes of a compressed secp256k1 public key.
const IdentifierSize = 33

// Identifier is a node's signing public key in compressed form.
type Identifier [IdentifierSize]byte

// IdentifierFromPublicKey encodes a signing public key as an Identifier.
func IdentifierFromPublicKey(key *btcec.PublicKey) (id Identifier) {
	copy(id[:], key.SerializeCompressed())
	return id
}

// PublicKey decodes the Identifier back into a signing public key.
func (id Identifier) PublicKey() (*btcec.PublicKey, error) {
	return btcec.ParsePubKey(id[:], btcec.S256())
}

// ParseIdentifier decodes an Identifier from raw bytes. It fails with ErrMalformed
// if the length does not match IdentifierSize.
func ParseIdentifier(b []byte) (id Identifier, err error) {
	if len(b) != IdentifierSize {
		return id, ErrMalformed
	}
	copy(id[:], b)
	return id, nil
}

// Bytes returns the raw encoded bytes of the Identifier.
func (id Identifier) Bytes() []byte {
	out := make([]byte, IdentifierSize)
	copy(out, id[:])
	return out
}

// Equal reports whether two Identifiers are the same key.
func (id Identifier) Equal(other Identifier) bool {
	return id == other
}

// Less defines a total order over Identifiers, used by the peering tiebreaker.
func (id Identifier) Less(other Identifier) bool {
	return bytes.Compare(id[:], other[:]) < 0
}

// String encodes the Identifier as base64url without padding, the boundary
// encoding used for human display and for connect() input.
func (id Identifier) String() string {
	return base64.RawURLEncoding.EncodeToString(id[:])
}

// ParseIdentifierString decodes a base64url (no padding) Identifier as produced
// by String().
func ParseIdentifierString(s string) (id Identifier, err error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return id, err
	}
	return ParseIdentifier(b)
}
