package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-intake/pkg/draft"
)

// DraftStore is a draft.Backend over a SQL database. Records are stored as
// JSON documents keyed by a generated UUID.
type DraftStore struct {
	db *DB
}

var _ draft.Backend = (*DraftStore)(nil)

// NewDraftStore wraps an open database. Call Migrate first.
func NewDraftStore(db *DB) *DraftStore {
	return &DraftStore{db: db}
}

// DB exposes the underlying handle.
func (s *DraftStore) DB() *DB {
	return s.db
}

func (s *DraftStore) Create(ctx context.Context, rec draft.Record) (draft.Identity, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode draft: %w", err)
	}
	id := draft.Identity(uuid.NewString())
	_, err = s.db.ExecContext(ctx,
		s.db.Rebind(`INSERT INTO drafts (id, record, is_complete) VALUES (?, ?, ?)`),
		id.String(), string(payload), rec.IsComplete,
	)
	if err != nil {
		return "", fmt.Errorf("insert draft: %w", err)
	}
	return id, nil
}

func (s *DraftStore) Update(ctx context.Context, id draft.Identity, rec draft.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		s.db.Rebind(`UPDATE drafts SET record = ?, is_complete = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`),
		string(payload), rec.IsComplete, id.String(),
	)
	if err != nil {
		return fmt.Errorf("update draft %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update draft %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("update draft %s: %w", id, draft.ErrNotFound)
	}
	return nil
}

func (s *DraftStore) Get(ctx context.Context, id draft.Identity) (draft.Record, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, s.db.Rebind(`SELECT record FROM drafts WHERE id = ?`), id.String()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return draft.Record{}, fmt.Errorf("draft %s: %w", id, draft.ErrNotFound)
	}
	if err != nil {
		return draft.Record{}, fmt.Errorf("select draft %s: %w", id, err)
	}
	var rec draft.Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return draft.Record{}, fmt.Errorf("decode draft %s: %w", id, err)
	}
	return rec, nil
}

// Ping verifies the database is reachable.
func (s *DraftStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
