package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/louisbranch/ledgerworks/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/clock"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/event"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage/integrity"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage/sqlite/migrations"
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store is the SQLite event journal.
type Store struct {
	sqlDB         *sql.DB
	keyring       *integrity.Keyring
	eventRegistry *event.Registry
	now           func() time.Time
}

// OpenEvents opens the event journal at path, applying migrations.
//
// The keyring and registry are required so every appended event is validated
// and signed in one place.
func OpenEvents(ctx context.Context, path string, keyring *integrity.Keyring, registry *event.Registry) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if keyring == nil {
		return nil, fmt.Errorf("event integrity keyring is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("event registry is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.EventsFS, "events"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{
		sqlDB:         sqlDB,
		keyring:       keyring,
		eventRegistry: registry,
		now:           time.Now,
	}, nil
}

// Close closes the underlying SQLite database. It is nil-safe.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

const eventColumns = "id, stream_id, seq, event_hash, prev_event_hash, chain_hash, signature_key_id, event_signature, day, recorded_at, event_type, actor_id, request_id, entity_type, entity_id, payload_json"

// AppendEvents implements storage.EventStore. All events are validated
// before the transaction opens; seq numbers are contiguous and the chain
// continues from the stream's last stored event.
func (s *Store) AppendEvents(ctx context.Context, streamID string, expectedSeq uint64, events []event.Event) ([]event.Event, error) {
	if len(events) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	streamID = strings.TrimSpace(streamID)
	if streamID == "" {
		return nil, fmt.Errorf("stream id is required")
	}

	recordedAt := s.now().UTC().Truncate(time.Millisecond)
	validated := make([]event.Event, len(events))
	for i, evt := range events {
		v, err := s.eventRegistry.ValidateForAppend(evt)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		if v.StreamID != streamID {
			return nil, fmt.Errorf("event %d: stream %q does not match %q", i, v.StreamID, streamID)
		}
		v.RecordedAt = recordedAt
		validated[i] = v
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var latest int64
	var prevChainHash string
	err = tx.QueryRowContext(ctx,
		"SELECT seq, chain_hash FROM events WHERE stream_id = ? ORDER BY seq DESC LIMIT 1",
		streamID,
	).Scan(&latest, &prevChainHash)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load stream head: %w", err)
	}
	if uint64(latest) != expectedSeq {
		return nil, fmt.Errorf("%w: stream_id=%s expected=%d latest=%d", storage.ErrSeqConflict, streamID, expectedSeq, latest)
	}

	stored := make([]event.Event, len(validated))
	for i, evt := range validated {
		evt.Seq = uint64(latest) + uint64(i) + 1
		evt, err = integrity.Seal(s.keyring, evt, prevChainHash)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO events (stream_id, seq, event_hash, prev_event_hash, chain_hash, signature_key_id, event_signature, day, recorded_at, event_type, actor_id, request_id, entity_type, entity_id, payload_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			evt.StreamID,
			int64(evt.Seq),
			evt.Hash,
			evt.PrevHash,
			evt.ChainHash,
			evt.SignatureKeyID,
			evt.Signature,
			int64(evt.Day),
			toMillis(evt.RecordedAt),
			string(evt.Type),
			evt.ActorID,
			evt.RequestID,
			evt.EntityType,
			evt.EntityID,
			evt.PayloadJSON,
		); err != nil {
			if isConstraintError(err) {
				return nil, fmt.Errorf("%w: stream_id=%s seq=%d", storage.ErrSeqConflict, streamID, evt.Seq)
			}
			return nil, fmt.Errorf("append event %d: %w", i, err)
		}
		prevChainHash = evt.ChainHash
		stored[i] = evt
	}

	if err := tx.Commit(); err != nil {
		if isConstraintError(err) || isBusyError(err) {
			return nil, fmt.Errorf("%w: %v", storage.ErrSeqConflict, err)
		}
		return nil, fmt.Errorf("commit: %w", err)
	}
	return stored, nil
}

// ListEvents implements storage.EventStore.
func (s *Store) ListEvents(ctx context.Context, streamID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	query := "SELECT " + eventColumns + " FROM events WHERE stream_id = ? AND seq > ? ORDER BY seq ASC"
	args := []any{strings.TrimSpace(streamID), int64(afterSeq)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []event.Event
	for rows.Next() {
		evt, _, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

// LatestSeq implements storage.EventStore.
func (s *Store) LatestSeq(ctx context.Context, streamID string) (uint64, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	var seq int64
	if err := s.sqlDB.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq), 0) FROM events WHERE stream_id = ?",
		strings.TrimSpace(streamID),
	).Scan(&seq); err != nil {
		return 0, fmt.Errorf("get latest event seq: %w", err)
	}
	return uint64(seq), nil
}

// ListStreams implements storage.EventStore.
func (s *Store) ListStreams(ctx context.Context) ([]string, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT DISTINCT stream_id FROM events ORDER BY stream_id")
	if err != nil {
		return nil, fmt.Errorf("list stream ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan stream id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stream ids: %w", err)
	}
	return ids, nil
}

// VerifyEventIntegrity walks every stream and checks its hash chain and
// signatures.
func (s *Store) VerifyEventIntegrity(ctx context.Context) error {
	streamIDs, err := s.ListStreams(ctx)
	if err != nil {
		return err
	}
	for _, streamID := range streamIDs {
		events, err := s.ListEvents(ctx, streamID, 0, 0)
		if err != nil {
			return fmt.Errorf("list events stream_id=%s: %w", streamID, err)
		}
		if err := integrity.VerifyStream(s.keyring, streamID, events); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (event.Event, int64, error) {
	var (
		id         int64
		seq        int64
		day        int64
		recordedAt int64
		eventType  string
		evt        event.Event
	)
	if err := row.Scan(
		&id,
		&evt.StreamID,
		&seq,
		&evt.Hash,
		&evt.PrevHash,
		&evt.ChainHash,
		&evt.SignatureKeyID,
		&evt.Signature,
		&day,
		&recordedAt,
		&eventType,
		&evt.ActorID,
		&evt.RequestID,
		&evt.EntityType,
		&evt.EntityID,
		&evt.PayloadJSON,
	); err != nil {
		return event.Event{}, 0, fmt.Errorf("scan event: %w", err)
	}
	evt.Seq = uint64(seq)
	evt.Day = clock.Day(day)
	evt.RecordedAt = fromMillis(recordedAt)
	evt.Type = event.Type(eventType)
	return evt, id, nil
}

func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func isBusyError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code()&0xff == sqlite3.SQLITE_BUSY
}

var _ storage.EventStore = (*Store)(nil)
