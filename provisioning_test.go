package core

import "testing"

func TestPackUnpackStringsRoundTrip(t *testing.T) {
	packed := packStrings("turn", "host.example", "user", "pass")

	fields, err := unpackStrings(packed, 4)
	if err != nil {
		t.Fatalf("unpackStrings: %v", err)
	}

	want := []string{"turn", "host.example", "user", "pass"}
	for i, field := range want {
		if fields[i] != field {
			t.Errorf("fields[%d] = %q, want %q", i, fields[i], field)
		}
	}
}

func TestUnpackStringsRejectsTooFewFields(t *testing.T) {
	packed := packStrings("turn")
	if _, err := unpackStrings(packed, 4); err != ErrMalformed {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestProvisioningEntryURL(t *testing.T) {
	e := ProvisioningEntry{Host: "relay.example:3478", Username: "u", Password: "p"}
	want := "turn:u@p:relay.example:3478"
	if got := e.url(); got != want {
		t.Fatalf("url() = %q, want %q", got, want)
	}
}
