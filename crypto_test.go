package core

import "testing"

func TestSignVerifyRoundTrip(t *testing.T) {
	priv, err := GenerateSigningKey()
	if err != nil {
		t.Fatalf("GenerateSigningKey: %v", err)
	}

	data := []byte("the quick brown fox")
	sig, err := Sign(priv, data)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if !Verify(priv.PubKey(), data, sig) {
		t.Fatalf("Verify rejected a genuine signature")
	}

	if Verify(priv.PubKey(), []byte("tampered"), sig) {
		t.Fatalf("Verify accepted a signature over the wrong data")
	}
}

func TestECDHSharedSecretSymmetric(t *testing.T) {
	a, err := GenerateECDHKey()
	if err != nil {
		t.Fatalf("GenerateECDHKey: %v", err)
	}
	b, err := GenerateECDHKey()
	if err != nil {
		t.Fatalf("GenerateECDHKey: %v", err)
	}

	secretA := ECDH(a.Private, b.Public)
	secretB := ECDH(b.Private, a.Public)

	if string(secretA) != string(secretB) {
		t.Fatalf("ECDH shared secret is not symmetric")
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	var key [32]byte
	key[0] = 0x42

	plaintext := []byte("payload")
	iv, ciphertext, err := Seal(key, plaintext)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	decoded, err := Open(key, iv, ciphertext)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if string(decoded) != string(plaintext) {
		t.Fatalf("Open returned %q, want %q", decoded, plaintext)
	}
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	var key [32]byte
	key[0] = 0x42

	iv, ciphertext, err := Seal(key, []byte("payload"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	tampered := make([]byte, len(ciphertext))
	copy(tampered, ciphertext)
	tampered[0] ^= 0xFF

	if _, err := Open(key, iv, tampered); err != ErrAuthFailed {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
}
