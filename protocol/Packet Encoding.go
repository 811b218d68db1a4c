/*
File Name:  Packet Encoding.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

CipherBody is the body of a unicast Transport message: an ephemeral-key-agreement
sealed payload. Layout: source ecdh public (65), destination ecdh public (65), IV
(16), ciphertext‖tag. Grounded on the original reference implementation's
CipherBody, which uses the same fixed field sizes.
*/

package protocol

// EcdhKeySize is the length in bytes of an uncompressed secp256k1 point.
const EcdhKeySize = 65

// IVSize is the length in bytes of the random GCM IV.
const IVSize = 16

// CipherBody is the decoded unicast message body.
type CipherBody struct {
	Source      [EcdhKeySize]byte
	Destination [EcdhKeySize]byte
	IV          [IVSize]byte
	Ciphertext  []byte
}

// Encode serializes a CipherBody to bytes.
func (c *CipherBody) Encode() []byte {
	out := make([]byte, 0, EcdhKeySize*2+IVSize+len(c.Ciphertext))
	out = append(out, c.Source[:]...)
	out = append(out, c.Destination[:]...)
	out = append(out, c.IV[:]...)
	out = append(out, c.Ciphertext...)
	return out
}

// DecodeCipherBody parses a CipherBody from bytes. It fails with ErrMalformed if
// the input is shorter than the fixed-size prefix.
func DecodeCipherBody(raw []byte) (*CipherBody, error) {
	if len(raw) < EcdhKeySize*2+IVSize {
		return nil, ErrMalformed
	}

	var c CipherBody
	offset := 0
	copy(c.Source[:], raw[offset:offset+EcdhKeySize])
	offset += EcdhKeySize
	copy(c.Destination[:], raw[offset:offset+EcdhKeySize])
	offset += EcdhKeySize
	copy(c.IV[:], raw[offset:offset+IVSize])
	offset += IVSize
	c.Ciphertext = raw[offset:]

	return &c, nil
}
