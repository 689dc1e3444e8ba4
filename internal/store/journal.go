// ABOUTME: Journal entry methods on the SQLite store
// ABOUTME: Append, Get and filtered List over the journal table, newest first

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// tsLayout has a fixed width so that text ordering equals time ordering.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

func formatTS(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

// Append adds a new entry to the journal.
// Generates ID and Timestamp if not set.
func (s *SQLiteStore) Append(ctx context.Context, e *Entry) error {
	if !IsValidAction(e.Action) {
		return fmt.Errorf("unknown journal action %q", e.Action)
	}
	if e.Outcome == "" {
		e.Outcome = OutcomeOK
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	var detailJSON *string
	if e.Detail != nil {
		data, err := json.Marshal(e.Detail)
		if err != nil {
			return fmt.Errorf("marshaling journal detail: %w", err)
		}
		str := string(data)
		detailJSON = &str
	}

	query := `
		INSERT INTO journal (entry_id, actor, homeserver, action, target_type, target_id, ts, outcome, detail_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.Actor,
		e.Homeserver,
		e.Action,
		e.TargetType,
		e.TargetID,
		formatTS(e.Timestamp),
		e.Outcome,
		detailJSON,
	)
	if err != nil {
		return fmt.Errorf("inserting journal entry: %w", err)
	}

	s.logger.Debug("appended journal entry",
		"id", e.ID,
		"actor", e.Actor,
		"action", e.Action,
		"target", e.TargetType+"/"+e.TargetID,
		"outcome", e.Outcome,
	)
	return nil
}

// normalizeLimit applies default (100) and cap (1000) to a list limit.
func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return 100
	case limit > 1000:
		return 1000
	default:
		return limit
	}
}

// scanEntry scans a row into an Entry.
func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var e Entry
	var actionStr, tsStr string
	var detailJSON *string

	if err := scanner.Scan(
		&e.ID,
		&e.Actor,
		&e.Homeserver,
		&actionStr,
		&e.TargetType,
		&e.TargetID,
		&tsStr,
		&e.Outcome,
		&detailJSON,
	); err != nil {
		return e, fmt.Errorf("scanning journal entry: %w", err)
	}

	e.Action = Action(actionStr)
	var err error
	e.Timestamp, err = time.Parse(tsLayout, tsStr)
	if err != nil {
		return e, fmt.Errorf("parsing timestamp: %w", err)
	}

	if detailJSON != nil {
		if err := json.Unmarshal([]byte(*detailJSON), &e.Detail); err != nil {
			return e, fmt.Errorf("unmarshaling detail: %w", err)
		}
	}
	return e, nil
}

const entryColumns = `entry_id, actor, homeserver, action, target_type, target_id, ts, outcome, detail_json`

// Get returns a single entry by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM journal WHERE entry_id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const listQuery = `
	SELECT ` + entryColumns + `
	FROM journal
	WHERE (? IS NULL OR ts >= ?)
	  AND (? IS NULL OR ts <= ?)
	  AND (? IS NULL OR action = ?)
	  AND (? IS NULL OR target_id = ?)
	ORDER BY ts DESC, rowid DESC
	LIMIT ?
`

// List returns entries matching the filter criteria, newest first.
func (s *SQLiteStore) List(ctx context.Context, f Filter) ([]Entry, error) {
	var since, until, action *string
	if f.Since != nil {
		v := formatTS(*f.Since)
		since = &v
	}
	if f.Until != nil {
		v := formatTS(*f.Until)
		until = &v
	}
	if f.Action != nil {
		v := string(*f.Action)
		action = &v
	}

	rows, err := s.db.QueryContext(ctx, listQuery,
		since, since,
		until, until,
		action, action,
		f.TargetID, f.TargetID,
		normalizeLimit(f.Limit),
	)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal entries: %w", err)
	}

	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}
