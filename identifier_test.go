package core

import "testing"

func TestIdentifierPublicKeyRoundTrip(t *testing.T) {
	priv, err := GenerateSigningKey()
	if err != nil {
		t.Fatalf("GenerateSigningKey: %v", err)
	}

	id := IdentifierFromPublicKey(priv.PubKey())

	pub, err := id.PublicKey()
	if err != nil {
		t.Fatalf("Identifier.PublicKey: %v", err)
	}

	if IdentifierFromPublicKey(pub) != id {
		t.Fatalf("round-tripped public key does not re-encode to the same Identifier")
	}
}

func TestParseIdentifierRejectsBadLength(t *testing.T) {
	if _, err := ParseIdentifier(make([]byte, 10)); err != ErrMalformed {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestIdentifierStringRoundTrip(t *testing.T) {
	priv, err := GenerateSigningKey()
	if err != nil {
		t.Fatalf("GenerateSigningKey: %v", err)
	}
	id := IdentifierFromPublicKey(priv.PubKey())

	parsed, err := ParseIdentifierString(id.String())
	if err != nil {
		t.Fatalf("ParseIdentifierString: %v", err)
	}
	if parsed != id {
		t.Fatalf("Identifier did not survive String/ParseIdentifierString round trip")
	}
}

func TestIdentifierLessTotalOrder(t *testing.T) {
	var a, b Identifier
	a[0], b[0] = 1, 2

	if !a.Less(b) {
		t.Fatalf("expected a < b")
	}
	if b.Less(a) == false && a.Less(b) == false {
		t.Fatalf("Less must be strict for distinct identifiers")
	}
	if a.Less(a) {
		t.Fatalf("Less must be irreflexive")
	}
}
