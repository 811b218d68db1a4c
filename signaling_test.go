package core

import "testing"

func TestPackUnpackSignalingRoundTrip(t *testing.T) {
	packed := packSignaling("offer", "ws://127.0.0.1:9000/peer")

	descriptionType, sdp, err := unpackSignaling(packed)
	if err != nil {
		t.Fatalf("unpackSignaling: %v", err)
	}
	if descriptionType != "offer" || sdp != "ws://127.0.0.1:9000/peer" {
		t.Fatalf("got (%q, %q)", descriptionType, sdp)
	}
}

func TestUnpackSignalingRejectsMalformed(t *testing.T) {
	if _, _, err := unpackSignaling([]byte("no-terminators-here")); err != ErrMalformed {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}
