/*
File Name:  crypto.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

Cryptographic bindings used throughout the core: signing (Identifier = compressed
public key), ephemeral key agreement for CipherBody, and the AES-GCM authenticated
encryption CipherBody seals its payload with. The curve is secp256k1 via btcec, the
same dependency the teacher core already carries for its own peer identity; sizes
(33-byte compressed, 65-byte uncompressed) match the spec's fixed-length fields
regardless of which named curve produced them.
*/

package core

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"math/big"

	"github.com/btcsuite/btcd/btcec"
	"github.com/legio-mesh/legio/protocol"
)

// GenerateSigningKey creates a new long-lived signing keypair; its public part is
// the node's Identifier.
func GenerateSigningKey() (*btcec.PrivateKey, error) {
	key, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		return nil, err
	}
	return key, nil
}

// SigningKeyFromHex decodes a hex-encoded private scalar, as persisted in Config.
func SigningKeyFromHex(s string) (*btcec.PrivateKey, error) {
	b, err := fromHex(s)
	if err != nil {
		return nil, err
	}
	priv, _ := btcec.PrivKeyFromBytes(btcec.S256(), b)
	return priv, nil
}

// fromHex decodes a hex string, right-padding an odd-length input's last
// nibble with a 0, per spec §8's documented boundary behavior (mirrors the
// original implementation's from_hex).
func fromHex(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		s += "0"
	}
	return hex.DecodeString(s)
}

// SigningKeyToHex encodes a private scalar for persistence in Config.
func SigningKeyToHex(priv *btcec.PrivateKey) string {
	return hex.EncodeToString(priv.Serialize())
}

// Sign produces a signature over data's digest with the sender's signing key.
func Sign(priv *btcec.PrivateKey, data []byte) ([]byte, error) {
	digest := protocol.HashData(data)
	sig, err := priv.Sign(digest)
	if err != nil {
		return nil, err
	}
	return sig.Serialize(), nil
}

// Verify checks a signature produced by Sign against the claimed signer's public key.
func Verify(pub *btcec.PublicKey, data, sig []byte) bool {
	parsed, err := btcec.ParseDERSignature(sig, btcec.S256())
	if err != nil {
		return false
	}
	digest := protocol.HashData(data)
	return parsed.Verify(digest, pub)
}

// EcdhKeySize is the length in bytes of an uncompressed secp256k1 point, the size
// of the ephemeral key-agreement public keys carried in State and CipherBody.
const EcdhKeySize = 65

// EcdhKeyPair is an ephemeral key-agreement keypair, regenerated whenever the
// owning node decides to rotate it (which bumps the State sequence).
type EcdhKeyPair struct {
	Private *btcec.PrivateKey
	Public  *btcec.PublicKey
}

// GenerateECDHKey creates a new ephemeral key-agreement keypair.
func GenerateECDHKey() (*EcdhKeyPair, error) {
	key, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		return nil, err
	}
	return &EcdhKeyPair{Private: key, Public: key.PubKey()}, nil
}

// PublicBytes returns the uncompressed 65-byte encoding of the ephemeral public key.
func (k *EcdhKeyPair) PublicBytes() []byte {
	return k.Public.SerializeUncompressed()
}

// ParseEcdhPublic decodes a 65-byte uncompressed public key as found in State or
// CipherBody.
func ParseEcdhPublic(b []byte) (*btcec.PublicKey, error) {
	if len(b) != EcdhKeySize {
		return nil, ErrMalformed
	}
	return btcec.ParsePubKey(b, btcec.S256())
}

// ECDH derives the raw (pre-hash) shared secret between a local private key and a
// remote public key. The caller is responsible for hashing it (CipherBody uses
// SHA-256) before using it as a symmetric key.
func ECDH(priv *btcec.PrivateKey, pub *btcec.PublicKey) []byte {
	x, _ := btcec.S256().ScalarMult(pub.X, pub.Y, priv.D.Bytes())
	return paddedBigInt(x, 32)
}

func paddedBigInt(n *big.Int, size int) []byte {
	b := n.Bytes()
	if len(b) >= size {
		return b[len(b)-size:]
	}
	out := make([]byte, size)
	copy(out[size-len(b):], b)
	return out
}

// AesGcmTagSize is the length in bytes of the GCM authentication tag appended to
// every CipherBody ciphertext.
const AesGcmTagSize = 16

// AesGcmIVSize is the length in bytes of the random IV CipherBody generates per seal.
const AesGcmIVSize = 16

// Seal encrypts plaintext under key with a freshly generated random IV, returning
// the IV and the ciphertext with its 16-byte authentication tag appended.
func Seal(key [32]byte, plaintext []byte) (iv [16]byte, ciphertext []byte, err error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return iv, nil, err
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, AesGcmIVSize)
	if err != nil {
		return iv, nil, err
	}
	if _, err := rand.Read(iv[:]); err != nil {
		return iv, nil, err
	}
	ciphertext = gcm.Seal(nil, iv[:], plaintext, nil)
	return iv, ciphertext, nil
}

// Open decrypts and authenticates a ciphertext produced by Seal. It fails with
// ErrAuthFailed if the tag does not verify.
func Open(key [32]byte, iv [16]byte, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, AesGcmIVSize)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, iv[:], ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}
