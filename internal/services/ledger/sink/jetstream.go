package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/event"
)

// DefaultSubjectPrefix roots every published subject.
const DefaultSubjectPrefix = "ledger.events"

// Publisher is the subset of jetstream.JetStream used to publish events.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// JetStream publishes events to NATS JetStream under
// "<prefix>.<event type>". The message id is "<stream>:<seq>" so broker-side
// deduplication drops redelivered appends.
type JetStream struct {
	js     Publisher
	prefix string
}

// NewJetStream creates a JetStream sink.
func NewJetStream(js Publisher, prefix string) *JetStream {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &JetStream{js: js, prefix: prefix}
}

// Subject returns the subject evt is published on.
func (s *JetStream) Subject(evt event.Event) string {
	return s.prefix + "." + string(evt.Type)
}

// Emit implements Sink.
func (s *JetStream) Emit(ctx context.Context, evt event.Event) error {
	data, err := json.Marshal(NewRecord(evt))
	if err != nil {
		return fmt.Errorf("marshal event record: %w", err)
	}
	msgID := evt.StreamID + ":" + strconv.FormatUint(evt.Seq, 10)
	if _, err := s.js.Publish(ctx, s.Subject(evt), data, jetstream.WithMsgID(msgID)); err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}
	return nil
}

// JetStreamConfig configures the broker connection.
type JetStreamConfig struct {
	URL           string        `env:"LEDGERWORKS_NATS_URL"`
	Stream        string        `env:"LEDGERWORKS_NATS_STREAM" envDefault:"LEDGER_EVENTS"`
	SubjectPrefix string        `env:"LEDGERWORKS_NATS_SUBJECT_PREFIX" envDefault:"ledger.events"`
	ConnectWait   time.Duration `env:"LEDGERWORKS_NATS_CONNECT_TIMEOUT" envDefault:"5s"`
}

// ConnectJetStream dials NATS, ensures the event stream exists, and returns
// a sink plus the connection for the caller to drain on shutdown.
func ConnectJetStream(ctx context.Context, cfg JetStreamConfig) (*JetStream, *nats.Conn, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, nil, fmt.Errorf("nats url is required")
	}
	conn, err := nats.Connect(cfg.URL, nats.Name("ledgerworks-ledger"), nats.Timeout(cfg.ConnectWait))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("create JetStream context: %w", err)
	}
	s := NewJetStream(js, cfg.SubjectPrefix)
	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.Stream,
		Subjects: []string{s.prefix + ".>"},
	}); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("ensure stream %s: %w", cfg.Stream, err)
	}
	return s, conn, nil
}
