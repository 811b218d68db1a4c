package protocol

import "testing"

func TestCipherBodyEncodeDecodeRoundTrip(t *testing.T) {
	c := &CipherBody{Ciphertext: []byte("ciphertext-and-tag")}
	c.Source[0] = 1
	c.Destination[0] = 2
	c.IV[0] = 3

	raw := c.Encode()

	decoded, err := DecodeCipherBody(raw)
	if err != nil {
		t.Fatalf("DecodeCipherBody: %v", err)
	}

	if decoded.Source != c.Source || decoded.Destination != c.Destination || decoded.IV != c.IV {
		t.Fatalf("decoded fixed fields do not match original")
	}
	if string(decoded.Ciphertext) != string(c.Ciphertext) {
		t.Fatalf("decoded ciphertext %q, want %q", decoded.Ciphertext, c.Ciphertext)
	}
}

func TestDecodeCipherBodyRejectsShortInput(t *testing.T) {
	if _, err := DecodeCipherBody(make([]byte, EcdhKeySize)); err != ErrMalformed {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}
