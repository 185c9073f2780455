package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/event"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage/cursor"
)

type listEventsPageSQLPlan struct {
	whereClause string
	params      []any
	limitClause string
}

// buildListEventsPageSQLPlan renders the WHERE clause for a page request.
// Pages walk the table in id order; start is the first id to include.
func buildListEventsPageSQLPlan(req storage.ListEventsPageRequest, start uint64, pageSize int) (listEventsPageSQLPlan, error) {
	clauses := []string{"id >= ?"}
	params := []any{int64(start)}
	if req.StreamID != "" {
		clauses = append(clauses, "stream_id = ?")
		params = append(params, req.StreamID)
	}
	if req.AfterSeq > 0 {
		clauses = append(clauses, "seq > ?")
		params = append(params, int64(req.AfterSeq))
	}
	cond, err := req.Filter.SQL()
	if err != nil {
		return listEventsPageSQLPlan{}, fmt.Errorf("translate filter: %w", err)
	}
	if cond.Clause != "" {
		clauses = append(clauses, cond.Clause)
		params = append(params, cond.Params...)
	}
	return listEventsPageSQLPlan{
		whereClause: strings.Join(clauses, " AND "),
		params:      params,
		limitClause: fmt.Sprintf("LIMIT %d", pageSize+1),
	}, nil
}

// ListEventsPage implements storage.EventStore.
func (s *Store) ListEventsPage(ctx context.Context, req storage.ListEventsPageRequest) (storage.ListEventsPageResult, error) {
	if err := ctx.Err(); err != nil {
		return storage.ListEventsPageResult{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ListEventsPageResult{}, fmt.Errorf("storage is not configured")
	}
	req.StreamID = strings.TrimSpace(req.StreamID)
	if req.AfterSeq > 0 && req.StreamID == "" {
		return storage.ListEventsPageResult{}, fmt.Errorf("after seq requires a stream id")
	}
	start, err := cursor.Resume(req.PageToken, req.StreamID, req.Filter.String())
	if err != nil {
		return storage.ListEventsPageResult{}, err
	}
	pageSize := storage.NormalizePageSize(req.PageSize)

	plan, err := buildListEventsPageSQLPlan(req, start, pageSize)
	if err != nil {
		return storage.ListEventsPageResult{}, err
	}
	query := fmt.Sprintf("SELECT %s FROM events WHERE %s ORDER BY id ASC %s", eventColumns, plan.whereClause, plan.limitClause)
	rows, err := s.sqlDB.QueryContext(ctx, query, plan.params...)
	if err != nil {
		return storage.ListEventsPageResult{}, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var result storage.ListEventsPageResult
	events := make([]event.Event, 0, pageSize)
	for rows.Next() {
		evt, id, err := scanEvent(rows)
		if err != nil {
			return storage.ListEventsPageResult{}, err
		}
		if len(events) == pageSize {
			token, err := cursor.Encode(cursor.New(uint64(id), req.StreamID, req.Filter.String()))
			if err != nil {
				return storage.ListEventsPageResult{}, err
			}
			result.NextPageToken = token
			break
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return storage.ListEventsPageResult{}, fmt.Errorf("iterate events: %w", err)
	}
	result.Events = events
	return result, nil
}
