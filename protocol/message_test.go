package protocol

import "testing"

func TestMessageEncodeDecodeUnsigned(t *testing.T) {
	var source [IdentifierSize]byte
	source[0] = 1

	msg, err := Create(TypeHello, 7, []byte("body"), &source, nil, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	raw, err := msg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(raw, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if decoded.Type != TypeHello || decoded.Sequence != 7 || string(decoded.Body) != "body" {
		t.Fatalf("decoded message does not match original: %+v", decoded)
	}
	if decoded.Source == nil || *decoded.Source != source {
		t.Fatalf("decoded source does not match original")
	}
	if decoded.Destination != nil {
		t.Fatalf("expected no destination")
	}
	if len(decoded.Signature) != 0 {
		t.Fatalf("expected empty signature for unsigned message")
	}
}

func TestMessageEncodeDecodeSigned(t *testing.T) {
	var source [IdentifierSize]byte
	source[0] = 9
	var dest [IdentifierSize]byte
	dest[0] = 2

	sign := func(data []byte) ([]byte, error) { return []byte("sig"), nil }

	msg, err := Create(TypeUser, 1, []byte("hello"), &source, &dest, sign)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	raw, err := msg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var verifyCalls int
	verify := func(got [IdentifierSize]byte, data, sig []byte) bool {
		verifyCalls++
		return got == source && string(sig) == "sig"
	}

	decoded, err := Decode(raw, verify)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if verifyCalls != 1 {
		t.Fatalf("expected verify to be called exactly once, got %d", verifyCalls)
	}
	if decoded.Destination == nil || *decoded.Destination != dest {
		t.Fatalf("decoded destination does not match original")
	}
}

func TestDecodeRejectsBadSignature(t *testing.T) {
	var source [IdentifierSize]byte
	source[0] = 9

	sign := func(data []byte) ([]byte, error) { return []byte("sig"), nil }
	msg, err := Create(TypeUser, 1, []byte("hello"), &source, nil, sign)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	raw, err := msg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	verify := func(got [IdentifierSize]byte, data, sig []byte) bool { return false }
	if _, err := Decode(raw, verify); err != ErrBadSignature {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestDecodeRejectsTruncatedFrame(t *testing.T) {
	if _, err := Decode([]byte{0, 0, 0}, nil); err != ErrMalformed {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}

	var source [IdentifierSize]byte
	msg, _ := Create(TypeHello, 1, nil, &source, nil, nil)
	raw, _ := msg.Encode()

	if _, err := Decode(raw[:len(raw)-1], nil); err != ErrMalformed {
		t.Fatalf("expected ErrMalformed for truncated source field, got %v", err)
	}
}

func TestCompareSequence(t *testing.T) {
	cases := []struct {
		s1, s2 uint32
		want   int
	}{
		{5, 5, 0},
		{6, 5, 1},
		{5, 6, -1},
		{0, ^uint32(0), 1},          // wraparound: 0 is newer than max uint32
		{^uint32(0), 0, -1},
		{1 << 31, 0, -1},            // exactly half the space back is "older"
	}

	for _, c := range cases {
		if got := CompareSequence(c.s1, c.s2); got != c.want {
			t.Errorf("CompareSequence(%d, %d) = %d, want %d", c.s1, c.s2, got, c.want)
		}
	}
}
