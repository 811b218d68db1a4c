/*
File Name:  cipherbody.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

Seals and opens CipherBody payloads: shared = SHA-256(ECDH(local, remote)), used
as an AES-256-GCM key with a random 16-byte IV.
*/

package core

import (
	"bytes"
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec"
	"github.com/legio-mesh/legio/protocol"
)

// sealCipherBody encrypts plaintext for destinationEcdh using localEcdh's private
// key, producing a CipherBody ready to wrap in a Message.
func sealCipherBody(localEcdh *EcdhKeyPair, destinationEcdh *btcec.PublicKey, plaintext []byte) (*protocol.CipherBody, error) {
	shared := sha256.Sum256(ECDH(localEcdh.Private, destinationEcdh))

	iv, ciphertext, err := Seal(shared, plaintext)
	if err != nil {
		return nil, err
	}

	c := &protocol.CipherBody{IV: iv, Ciphertext: ciphertext}
	copy(c.Source[:], localEcdh.PublicBytes())
	copy(c.Destination[:], destinationEcdh.SerializeUncompressed())
	return c, nil
}

// openCipherBody decrypts a CipherBody addressed to localEcdh. It fails with
// ErrCryptoKeyMismatch if the embedded destination does not match localEcdh's
// public key, and ErrAuthFailed on tag mismatch.
func openCipherBody(localEcdh *EcdhKeyPair, c *protocol.CipherBody) ([]byte, error) {
	if !bytes.Equal(c.Destination[:], localEcdh.PublicBytes()) {
		return nil, ErrCryptoKeyMismatch
	}

	sourcePub, err := ParseEcdhPublic(c.Source[:])
	if err != nil {
		return nil, ErrMalformed
	}

	shared := sha256.Sum256(ECDH(localEcdh.Private, sourcePub))
	return Open(shared, c.IV, c.Ciphertext)
}
