// Package sqlite provides the durable device-local store. Collections are
// JSON documents in per-collection tables; WAL keeps single-writer commits
// cheap on the weak flash storage these field devices carry.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"jeevan/internal/domain"
	"jeevan/internal/platform/storage/sqlitemigrate"
	"jeevan/internal/storage"
	"jeevan/internal/storage/sqlite/migrations"
)

// Store is the SQLite-backed implementation of storage.Store.
type Store struct {
	sqlDB *sql.DB
	*storage.Broadcaster
}

// Open opens the agent's data file and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, Broadcaster: storage.NewBroadcaster()}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) SaveOverlay(ctx context.Context, overlay domain.Overlay) error {
	data, err := json.Marshal(overlay)
	if err != nil {
		return fmt.Errorf("encode overlay: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO beneficiary_overlay (beneficiary_id, data, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (beneficiary_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
`, overlay.BeneficiaryID, string(data), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save overlay: %w", err)
	}
	s.Notify(storage.CollectionOverlay)
	return nil
}

func (s *Store) FindOverlay(ctx context.Context, beneficiaryID string) (domain.Overlay, error) {
	var data string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT data FROM beneficiary_overlay WHERE beneficiary_id = ?`, beneficiaryID).Scan(&data)
	if err == sql.ErrNoRows {
		return domain.Overlay{}, storage.ErrNotFound
	}
	if err != nil {
		return domain.Overlay{}, fmt.Errorf("find overlay: %w", err)
	}
	var overlay domain.Overlay
	if err := json.Unmarshal([]byte(data), &overlay); err != nil {
		// A corrupt row reads as absent: losing a local cache beats
		// crashing a field-deployed device.
		return domain.Overlay{}, storage.ErrNotFound
	}
	return overlay, nil
}

func (s *Store) AppendQueue(ctx context.Context, sub domain.Submission) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO offline_queue (reference_id, data, created_at) VALUES (?, ?, ?)
`, sub.ReferenceID, string(data), sub.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("append queue: %w", err)
	}
	s.Notify(storage.CollectionQueue)
	return nil
}

func (s *Store) Queue(ctx context.Context) ([]domain.Submission, error) {
	return s.listSubmissions(ctx, `SELECT data FROM offline_queue ORDER BY seq ASC`)
}

func (s *Store) ClearQueue(ctx context.Context) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM offline_queue`); err != nil {
		return fmt.Errorf("clear queue: %w", err)
	}
	s.Notify(storage.CollectionQueue)
	return nil
}

func (s *Store) AppendHistory(ctx context.Context, sub domain.Submission) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	syncedAt := time.Now()
	if sub.SyncedAt != nil {
		syncedAt = *sub.SyncedAt
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT OR IGNORE INTO history_log (reference_id, data, synced_at) VALUES (?, ?, ?)
`, sub.ReferenceID, string(data), syncedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	s.Notify(storage.CollectionHistory)
	return nil
}

func (s *Store) History(ctx context.Context) ([]domain.Submission, error) {
	return s.listSubmissions(ctx, `SELECT data FROM history_log ORDER BY seq DESC`)
}

func (s *Store) ClearHistory(ctx context.Context) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM history_log`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	s.Notify(storage.CollectionHistory)
	return nil
}

// PromoteToHistory migrates subs from queue to history in ONE transaction.
// History rows are keyed by reference id with INSERT OR IGNORE, so replaying
// a promotion after a crash cannot produce duplicates.
func (s *Store) PromoteToHistory(ctx context.Context, subs []domain.Submission) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin promote: %w", err)
	}
	for _, sub := range subs {
		data, err := json.Marshal(sub)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encode submission: %w", err)
		}
		syncedAt := time.Now()
		if sub.SyncedAt != nil {
			syncedAt = *sub.SyncedAt
		}
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO history_log (reference_id, data, synced_at) VALUES (?, ?, ?)
`, sub.ReferenceID, string(data), syncedAt.UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("promote insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM offline_queue WHERE reference_id = ?`, sub.ReferenceID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("promote delete: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit promote: %w", err)
	}
	s.Notify(storage.CollectionQueue)
	s.Notify(storage.CollectionHistory)
	return nil
}

func (s *Store) AppendRecord(ctx context.Context, record domain.SecureRecord) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO verification_queue (record_id, status, created_at, payload) VALUES (?, ?, ?, ?)
`, record.ID, string(record.Status), record.Timestamp.UnixMilli(), record.EncryptedPayload)
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	s.Notify(storage.CollectionVault)
	return nil
}

func (s *Store) Records(ctx context.Context) ([]domain.SecureRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT record_id, status, created_at, payload FROM verification_queue ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []domain.SecureRecord
	for rows.Next() {
		var (
			record    domain.SecureRecord
			status    string
			createdAt int64
		)
		if err := rows.Scan(&record.ID, &status, &createdAt, &record.EncryptedPayload); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		record.Status = domain.RecordStatus(status)
		record.Timestamp = time.UnixMilli(createdAt)
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *Store) UpdateRecordStatus(ctx context.Context, id string, status domain.RecordStatus) error {
	// Unknown ids are a no-op by contract; the row count is irrelevant.
	_, err := s.sqlDB.ExecContext(ctx,
		`UPDATE verification_queue SET status = ? WHERE record_id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update record status: %w", err)
	}
	s.Notify(storage.CollectionVault)
	return nil
}

func (s *Store) listSubmissions(ctx context.Context, query string) ([]domain.Submission, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var subs []domain.Submission
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		var sub domain.Submission
		if err := json.Unmarshal([]byte(data), &sub); err != nil {
			// Corrupt rows are skipped, not fatal.
			continue
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
