package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"
	"github.com/louisbranch/ledgerworks/internal/platform/telemetry/metrics"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/clock"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/command"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/event"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/sink"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage"
)

const tracerName = "github.com/louisbranch/ledgerworks/internal/services/ledger/domain/engine"

// maxAppendAttempts bounds retries when another writer advances a stream
// between load and append.
const maxAppendAttempts = 3

// Decider returns the decision for cmd against state on day today.
type Decider[S any] func(state S, cmd command.Command, today clock.Day) command.Decision

// Folder applies one event to state.
type Folder[S any] func(state S, evt event.Event) (S, error)

// Effect moves value for an accepted decision. It runs under the stream lock
// before the events are appended; an error aborts the command with nothing
// journaled. undo, when non-nil, reverses the effect if the append fails.
type Effect func(events []event.Event) (undo func(), err error)

// Config wires a Handler.
type Config[S any] struct {
	// Domain labels metrics and spans ("escrow").
	Domain   string
	Commands *command.Registry
	Events   *event.Registry
	Store    storage.EventStore
	Clock    clock.Clock
	Decide   Decider[S]
	Fold     Folder[S]
	// Sink receives committed events. Optional.
	Sink sink.Sink
	// SinkName labels sink failure metrics. Defaults to "events".
	SinkName string
	Metrics  *metrics.Metrics
	// Now stamps RecordedAt on appended events. Defaults to time.Now.
	Now  func() time.Time
	Logf func(format string, args ...any)
}

// Result is the outcome of an accepted command.
type Result[S any] struct {
	// Events are the journaled events, seq and hashes set.
	Events []event.Event
	// State is the record after the events were folded.
	State S
	// Seq is the stream head after the append.
	Seq uint64
}

type snapshot[S any] struct {
	state S
	seq   uint64
}

// Handler executes commands for one domain.
type Handler[S any] struct {
	cfg    Config[S]
	tracer trace.Tracer
	locks  *streamLocks

	mu    sync.Mutex
	cache map[string]snapshot[S]
}

// New validates cfg and returns a Handler.
func New[S any](cfg Config[S]) (*Handler[S], error) {
	switch {
	case cfg.Commands == nil:
		return nil, ErrCommandRegistryRequired
	case cfg.Events == nil:
		return nil, ErrEventRegistryRequired
	case cfg.Store == nil:
		return nil, ErrStoreRequired
	case cfg.Clock == nil:
		return nil, ErrClockRequired
	case cfg.Decide == nil:
		return nil, ErrDeciderRequired
	case cfg.Fold == nil:
		return nil, ErrFolderRequired
	}
	cfg.Domain = strings.TrimSpace(cfg.Domain)
	if cfg.Domain == "" {
		cfg.Domain = "ledger"
	}
	if cfg.SinkName == "" {
		cfg.SinkName = "events"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logf == nil {
		cfg.Logf = log.Printf
	}
	return &Handler[S]{
		cfg:    cfg,
		tracer: otel.Tracer(tracerName),
		locks:  newStreamLocks(),
		cache:  make(map[string]snapshot[S]),
	}, nil
}

// Execute validates cmd, decides it against the current record, and commits
// the resulting events. A rejection is returned as an *apperrors.Error
// carrying the rejection code; state is untouched.
func (h *Handler[S]) Execute(ctx context.Context, cmd command.Command) (Result[S], error) {
	return h.ExecuteWith(ctx, cmd, nil)
}

// ExecuteWith is Execute with an effect applied between decision and append.
func (h *Handler[S]) ExecuteWith(ctx context.Context, cmd command.Command, effect Effect) (Result[S], error) {
	started := time.Now()
	ctx, span := h.tracer.Start(ctx, h.cfg.Domain+".execute", trace.WithAttributes(
		attribute.String("ledger.command", string(cmd.Type)),
		attribute.String("ledger.stream_id", cmd.StreamID),
	))
	defer span.End()

	result, outcome, err := h.execute(ctx, cmd, effect)
	h.cfg.Metrics.RecordCommand(h.cfg.Domain, string(cmd.Type), outcome, time.Since(started))
	span.SetAttributes(attribute.String("ledger.outcome", outcome))
	if err != nil {
		if outcome == metrics.OutcomeFailed {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return Result[S]{}, err
	}
	span.SetAttributes(attribute.Int64("ledger.seq", int64(result.Seq)))
	return result, nil
}

func (h *Handler[S]) execute(ctx context.Context, cmd command.Command, effect Effect) (Result[S], string, error) {
	validated, err := h.cfg.Commands.ValidateForDecision(cmd)
	if err != nil {
		return Result[S]{}, metrics.OutcomeRejected, invalidCommand(err)
	}
	cmd = validated

	release := h.locks.lock(cmd.StreamID)
	defer release()

	// The day is read once so every check in a decision sees the same date.
	today := h.cfg.Clock.Today()

	for attempt := 1; ; attempt++ {
		current, err := h.load(ctx, cmd.StreamID)
		if err != nil {
			return Result[S]{}, metrics.OutcomeFailed, err
		}

		decision := h.cfg.Decide(current.state, cmd, today)
		if decision.Rejected() {
			return Result[S]{}, metrics.OutcomeRejected, RejectionError(decision.Rejections[0])
		}
		if len(decision.Events) == 0 {
			return Result[S]{State: current.state, Seq: current.seq}, metrics.OutcomeAccepted, nil
		}

		pending, err := h.prepare(decision.Events)
		if err != nil {
			return Result[S]{}, metrics.OutcomeFailed, err
		}

		var undo func()
		if effect != nil {
			undo, err = effect(pending)
			if err != nil {
				return Result[S]{}, effectOutcome(err), err
			}
		}

		stored, err := h.cfg.Store.AppendEvents(ctx, cmd.StreamID, current.seq, pending)
		if err != nil && undo != nil {
			undo()
		}
		if errors.Is(err, storage.ErrSeqConflict) && attempt < maxAppendAttempts {
			continue
		}
		if err != nil {
			return Result[S]{}, metrics.OutcomeFailed, fmt.Errorf("append %s events: %w", cmd.Type, err)
		}

		next, err := h.foldAll(current, stored)
		if err != nil {
			h.forget(cmd.StreamID)
			return Result[S]{}, metrics.OutcomeFailed, err
		}
		h.remember(cmd.StreamID, next)

		for _, evt := range stored {
			h.cfg.Metrics.RecordEventAppended(string(evt.Type))
		}
		h.emit(ctx, stored)
		return Result[S]{Events: stored, State: next.state, Seq: next.seq}, metrics.OutcomeAccepted, nil
	}
}

func (h *Handler[S]) prepare(events []event.Event) ([]event.Event, error) {
	recordedAt := h.cfg.Now().UTC()
	out := make([]event.Event, 0, len(events))
	for _, evt := range events {
		if evt.RecordedAt.IsZero() {
			evt.RecordedAt = recordedAt
		}
		vetted, err := h.cfg.Events.ValidateForAppend(evt)
		if err != nil {
			return nil, fmt.Errorf("validate %s: %w", evt.Type, err)
		}
		out = append(out, vetted)
	}
	return out, nil
}

// State returns the current record and its stream head. An unknown stream
// yields the zero state and seq 0.
func (h *Handler[S]) State(ctx context.Context, streamID string) (S, uint64, error) {
	streamID = strings.TrimSpace(streamID)
	if streamID == "" {
		var zero S
		return zero, 0, invalidCommand(command.ErrStreamIDRequired)
	}
	release := h.locks.lock(streamID)
	defer release()
	current, err := h.load(ctx, streamID)
	if err != nil {
		var zero S
		return zero, 0, err
	}
	return current.state, current.seq, nil
}

// Forget drops the cached state of streamID so the next call replays it.
func (h *Handler[S]) Forget(streamID string) {
	h.forget(strings.TrimSpace(streamID))
}

// load returns the cached snapshot caught up with the journal. Callers hold
// the stream lock.
func (h *Handler[S]) load(ctx context.Context, streamID string) (snapshot[S], error) {
	h.mu.Lock()
	current := h.cache[streamID]
	h.mu.Unlock()

	tail, err := h.cfg.Store.ListEvents(ctx, streamID, current.seq, 0)
	if err != nil {
		return snapshot[S]{}, fmt.Errorf("replay %s: %w", streamID, err)
	}
	if len(tail) == 0 {
		return current, nil
	}
	next, err := h.foldAll(current, tail)
	if err != nil {
		return snapshot[S]{}, err
	}
	h.remember(streamID, next)
	return next, nil
}

func (h *Handler[S]) foldAll(current snapshot[S], events []event.Event) (snapshot[S], error) {
	state := current.state
	seq := current.seq
	for _, evt := range events {
		if evt.Seq != seq+1 {
			return snapshot[S]{}, fmt.Errorf("stream %s: seq gap at %d after %d", evt.StreamID, evt.Seq, seq)
		}
		next, err := h.cfg.Fold(state, evt)
		if err != nil {
			return snapshot[S]{}, fmt.Errorf("fold %s seq %d: %w", evt.Type, evt.Seq, err)
		}
		state = next
		seq = evt.Seq
	}
	return snapshot[S]{state: state, seq: seq}, nil
}

func (h *Handler[S]) remember(streamID string, s snapshot[S]) {
	h.mu.Lock()
	h.cache[streamID] = s
	h.mu.Unlock()
}

func (h *Handler[S]) forget(streamID string) {
	h.mu.Lock()
	delete(h.cache, streamID)
	h.mu.Unlock()
}

// emit forwards committed events to the sink. Failures are logged and
// counted; the command has already succeeded.
func (h *Handler[S]) emit(ctx context.Context, events []event.Event) {
	if h.cfg.Sink == nil {
		return
	}
	for _, evt := range events {
		if err := h.cfg.Sink.Emit(ctx, evt); err != nil {
			h.cfg.Metrics.RecordSinkFailure(h.cfg.SinkName)
			h.cfg.Logf("event sink: %s %s seq %d: %v", evt.Type, evt.StreamID, evt.Seq, err)
		}
	}
}

func effectOutcome(err error) string {
	if IsRejection(err) {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeFailed
}

// IsRejection reports whether err is a domain rejection rather than an
// infrastructure failure.
func IsRejection(err error) bool {
	code := apperrors.CodeOf(err)
	return code != apperrors.CodeUnknown
}
