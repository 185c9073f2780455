package event

import (
	"encoding/json"
	"errors"
	"testing"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	err := r.Register(Definition{
		Type: "staking.staked",
		ValidatePayload: func(raw json.RawMessage) error {
			var p struct {
				Amount uint64 `json:"amount"`
			}
			return json.Unmarshal(raw, &p)
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return r
}

func TestRegisterRejectsDuplicatesAndBlank(t *testing.T) {
	r := testRegistry(t)
	if err := r.Register(Definition{Type: "staking.staked"}); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := r.Register(Definition{Type: " "}); !errors.Is(err, ErrTypeRequired) {
		t.Fatalf("err = %v, want %v", err, ErrTypeRequired)
	}
}

func TestValidateForAppendNormalizes(t *testing.T) {
	r := testRegistry(t)
	evt, err := r.ValidateForAppend(Event{
		StreamID:    " pool-1 ",
		Type:        "staking.staked",
		EntityType:  "stake",
		EntityID:    "s1",
		PayloadJSON: []byte("{\n  \"amount\": 5\n}"),
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if evt.StreamID != "pool-1" {
		t.Fatalf("stream id = %q", evt.StreamID)
	}
	if string(evt.PayloadJSON) != `{"amount":5}` {
		t.Fatalf("payload = %s", evt.PayloadJSON)
	}
}

func TestValidateForAppendErrors(t *testing.T) {
	r := testRegistry(t)
	base := Event{StreamID: "p", Type: "staking.staked", EntityType: "stake", EntityID: "s"}

	tests := []struct {
		name string
		edit func(*Event)
		want error
	}{
		{"missing stream", func(e *Event) { e.StreamID = "" }, ErrStreamIDRequired},
		{"missing type", func(e *Event) { e.Type = "" }, ErrTypeRequired},
		{"unknown type", func(e *Event) { e.Type = "staking.unknown" }, ErrTypeUnknown},
		{"missing entity", func(e *Event) { e.EntityID = "" }, ErrEntityRequired},
		{"bad json", func(e *Event) { e.PayloadJSON = []byte("{") }, ErrPayloadInvalid},
	}
	for _, tt := range tests {
		evt := base
		tt.edit(&evt)
		if _, err := r.ValidateForAppend(evt); !errors.Is(err, tt.want) {
			t.Fatalf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}

	bad := base
	bad.PayloadJSON = []byte(`{"amount":"x"}`)
	if _, err := r.ValidateForAppend(bad); err == nil {
		t.Fatal("expected payload validator error")
	}
}

func TestListDefinitionsSorted(t *testing.T) {
	r := testRegistry(t)
	_ = r.Register(Definition{Type: "escrow.locked"})
	defs := r.ListDefinitions()
	if len(defs) != 2 || defs[0].Type != "escrow.locked" {
		t.Fatalf("definitions = %+v", defs)
	}
	if _, ok := r.Definition(" escrow.locked "); !ok {
		t.Fatal("expected definition lookup to trim")
	}
}

func TestTypeDomain(t *testing.T) {
	if got := Type("governance.vote_cast").Domain(); got != "governance" {
		t.Fatalf("domain = %q", got)
	}
	if got := Type("bare").Domain(); got != "bare" {
		t.Fatalf("domain = %q", got)
	}
}
