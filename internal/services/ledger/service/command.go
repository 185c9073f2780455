package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/louisbranch/ledgerworks/internal/platform/requestctx"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/command"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/event"
)

func newCommand(ctx context.Context, streamID string, cmdType command.Type, actorID string, payload any) (command.Command, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return command.Command{}, fmt.Errorf("encode %s payload: %w", cmdType, err)
	}
	return command.Command{
		StreamID:    streamID,
		Type:        cmdType,
		ActorID:     actorID,
		RequestID:   requestctx.RequestIDFromContext(ctx),
		PayloadJSON: payloadJSON,
	}, nil
}

// findPayload decodes the payload of the first event of type t.
func findPayload[P any](events []event.Event, t event.Type) (P, error) {
	var payload P
	for _, evt := range events {
		if evt.Type != t {
			continue
		}
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return payload, fmt.Errorf("decode %s payload: %w", t, err)
		}
		return payload, nil
	}
	return payload, fmt.Errorf("decision emitted no %s event", t)
}
