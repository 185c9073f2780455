package event

import "testing"

func TestEventHashIgnoresPayloadWhitespace(t *testing.T) {
	a := Event{StreamID: "w1", Type: "escrow.locked", Day: 3, EntityType: "wager", EntityID: "w1", PayloadJSON: []byte(`{"amount":100}`)}
	b := a
	b.PayloadJSON = []byte("{ \"amount\": 100 }")

	ha, err := EventHash(a)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	hb, err := EventHash(b)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if ha != hb {
		t.Fatal("expected whitespace-insensitive hash")
	}

	b.Day = 4
	hc, _ := EventHash(b)
	if hc == ha {
		t.Fatal("expected day to change the hash")
	}
}

func TestChainHashDependsOnPrevious(t *testing.T) {
	evt := Event{Seq: 2, Hash: "abc"}
	first, err := ChainHash(evt, "")
	if err != nil {
		t.Fatalf("chain hash: %v", err)
	}
	second, _ := ChainHash(evt, "prev")
	if first == second {
		t.Fatal("expected previous chain hash to matter")
	}
	if _, err := ChainHash(Event{}, ""); err == nil {
		t.Fatal("expected error without event hash")
	}
}
