/*
File Name:  Message Encoding.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

Message is the wire envelope: a fixed 8-byte header followed by an optional
source Identifier, an optional destination Identifier, the body, and a trailing
signature (empty iff unsigned). Encoding and signing are grounded on the
original reference implementation's Header{type,flags,length,sequence} layout.
*/

package protocol

import (
	"encoding/binary"
	"errors"
)

// Message types.
const (
	TypeDummy        uint8 = 0x00
	TypeHello        uint8 = 0x01
	TypeState        uint8 = 0x02
	TypeSignaling    uint8 = 0x10
	TypeProvisioning uint8 = 0x11
	TypeUser         uint8 = 0x80
)

// Header flags.
const (
	FlagHasSource      uint8 = 0x01
	FlagHasDestination uint8 = 0x02
)

// IdentifierSize mirrors core.IdentifierSize without introducing an import cycle;
// the protocol package only ever sees raw Identifier bytes.
const IdentifierSize = 33

// HeaderSize is the fixed-length portion of every Message: type, flags, length,
// sequence.
const HeaderSize = 8

var (
	// ErrMalformed indicates a field length exceeds the remaining input.
	ErrMalformed = errors.New("malformed message")
	// ErrBadSignature indicates a present source but an invalid signature.
	ErrBadSignature = errors.New("bad signature")
)

// SignFunc signs data with the sender's signing key.
type SignFunc func(data []byte) ([]byte, error)

// VerifyFunc verifies a signature against a claimed source Identifier.
type VerifyFunc func(source [IdentifierSize]byte, data, sig []byte) bool

// Message is the decoded wire envelope.
type Message struct {
	Type        uint8
	Sequence    uint32
	Source      *[IdentifierSize]byte
	Destination *[IdentifierSize]byte
	Body        []byte
	Signature   []byte
}

// encodeUnsigned serializes the message without a signature: header, source, destination,
// body. This is also the form that gets signed (with an empty trailer).
func (m *Message) encodeUnsigned() ([]byte, error) {
	if len(m.Body) > 0xFFFF {
		return nil, ErrMalformed
	}

	var flags uint8
	if m.Source != nil {
		flags |= FlagHasSource
	}
	if m.Destination != nil {
		flags |= FlagHasDestination
	}

	out := make([]byte, HeaderSize, HeaderSize+len(m.Body)+2*IdentifierSize)
	out[0] = m.Type
	out[1] = flags
	binary.BigEndian.PutUint16(out[2:4], uint16(len(m.Body)))
	binary.BigEndian.PutUint32(out[4:8], m.Sequence)

	if m.Source != nil {
		out = append(out, m.Source[:]...)
	}
	if m.Destination != nil {
		out = append(out, m.Destination[:]...)
	}
	out = append(out, m.Body...)

	return out, nil
}

// Encode serializes the full signed wire form.
func (m *Message) Encode() ([]byte, error) {
	unsigned, err := m.encodeUnsigned()
	if err != nil {
		return nil, err
	}
	return append(unsigned, m.Signature...), nil
}

// Create builds and, if sign is non-nil, signs a new Message. sequence is the
// caller-maintained per-(source,type) counter.
func Create(msgType uint8, sequence uint32, body []byte, source *[IdentifierSize]byte, destination *[IdentifierSize]byte, sign SignFunc) (*Message, error) {
	m := &Message{
		Type:        msgType,
		Sequence:    sequence,
		Source:      source,
		Destination: destination,
		Body:        body,
	}

	if sign != nil && source != nil {
		unsigned, err := m.encodeUnsigned()
		if err != nil {
			return nil, err
		}
		sig, err := sign(unsigned)
		if err != nil {
			return nil, err
		}
		m.Signature = sig
	}

	return m, nil
}

// Decode parses a wire frame. It fails with ErrMalformed if any field length
// exceeds the input, and with ErrBadSignature if a present source's signature
// does not verify (when verify is non-nil).
func Decode(raw []byte, verify VerifyFunc) (*Message, error) {
	if len(raw) < HeaderSize {
		return nil, ErrMalformed
	}

	m := &Message{
		Type:     raw[0],
		Sequence: binary.BigEndian.Uint32(raw[4:8]),
	}
	flags := raw[1]
	length := int(binary.BigEndian.Uint16(raw[2:4]))

	offset := HeaderSize

	if flags&FlagHasSource != 0 {
		if len(raw) < offset+IdentifierSize {
			return nil, ErrMalformed
		}
		var source [IdentifierSize]byte
		copy(source[:], raw[offset:offset+IdentifierSize])
		m.Source = &source
		offset += IdentifierSize
	}

	if flags&FlagHasDestination != 0 {
		if len(raw) < offset+IdentifierSize {
			return nil, ErrMalformed
		}
		var dest [IdentifierSize]byte
		copy(dest[:], raw[offset:offset+IdentifierSize])
		m.Destination = &dest
		offset += IdentifierSize
	}

	if len(raw) < offset+length {
		return nil, ErrMalformed
	}
	m.Body = raw[offset : offset+length]
	offset += length

	m.Signature = raw[offset:]

	if m.Source != nil {
		if verify != nil && !verify(*m.Source, raw[:len(raw)-len(m.Signature)], m.Signature) {
			return nil, ErrBadSignature
		}
	}

	return m, nil
}

// CompareSequence compares two 32-bit sequence counters using the serial-number
// arithmetic rule (RFC 1982 style): returns 1 if s1 is newer than s2, -1 if s2 is
// newer, 0 if equal.
func CompareSequence(s1, s2 uint32) int {
	if s1 == s2 {
		return 0
	}
	if uint32(s1-s2) < 1<<31 {
		return 1
	}
	return -1
}
