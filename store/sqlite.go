package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ElrondNetwork/elrond-exec-adapter/data"

	_ "modernc.org/sqlite"
)

const createRequestsTable = `
CREATE TABLE IF NOT EXISTS execution_requests (
    handle          TEXT PRIMARY KEY,
    image_id        TEXT NOT NULL,
    payer           TEXT NOT NULL,
    inputs          TEXT NOT NULL,
    tip             TEXT NOT NULL,
    resource_budget TEXT NOT NULL,
    config          TEXT NOT NULL,
    callback        TEXT,
    status          TEXT NOT NULL,
    tx_hash         TEXT NOT NULL DEFAULT '',
    output          TEXT NOT NULL DEFAULT '',
    failure_reason  TEXT NOT NULL DEFAULT '',
    created_at      DATETIME NOT NULL,
    updated_at      DATETIME NOT NULL
)`

const selectRequest = `SELECT handle, image_id, payer, inputs, tip, resource_budget, config,
	callback, status, tx_hash, output, failure_reason, created_at, updated_at
	FROM execution_requests WHERE handle = ?`

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and creates the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(createRequestsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create execution_requests table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateRequest inserts a new record. Handles are never overwritten.
func (s *SQLiteStore) CreateRequest(ctx context.Context, r *data.ExecutionRequest) error {
	inputs, err := json.Marshal(r.Inputs)
	if err != nil {
		return fmt.Errorf("marshal inputs: %w", err)
	}
	cfg, err := json.Marshal(r.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	var callback sql.NullString
	if r.Callback != nil {
		cb, err := json.Marshal(r.Callback)
		if err != nil {
			return fmt.Errorf("marshal callback: %w", err)
		}
		callback = sql.NullString{String: string(cb), Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO execution_requests (
			handle, image_id, payer, inputs, tip, resource_budget, config,
			callback, status, tx_hash, output, failure_reason, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(handle) DO NOTHING`,
		r.Handle, r.ImageID, r.Payer, string(inputs),
		strconv.FormatUint(r.Tip, 10), strconv.FormatUint(r.ResourceBudget, 10), string(cfg),
		callback, string(r.Status), r.TxHash, r.Output, r.FailureReason, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert execution request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert execution request: %w", err)
	}
	if n == 0 {
		return ErrDuplicateHandle
	}
	return nil
}

func (s *SQLiteStore) GetRequest(ctx context.Context, handle string) (*data.ExecutionRequest, error) {
	var (
		r                   data.ExecutionRequest
		inputs, cfg, status string
		tip, budget         string
		callback            sql.NullString
	)
	err := s.db.QueryRowContext(ctx, selectRequest, handle).Scan(
		&r.Handle, &r.ImageID, &r.Payer, &inputs, &tip, &budget, &cfg,
		&callback, &status, &r.TxHash, &r.Output, &r.FailureReason, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get execution request: %w", err)
	}

	if err := json.Unmarshal([]byte(inputs), &r.Inputs); err != nil {
		return nil, fmt.Errorf("unmarshal inputs: %w", err)
	}
	if err := json.Unmarshal([]byte(cfg), &r.Config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if callback.Valid {
		r.Callback = &data.CallbackConfig{}
		if err := json.Unmarshal([]byte(callback.String), r.Callback); err != nil {
			return nil, fmt.Errorf("unmarshal callback: %w", err)
		}
	}
	if r.Tip, err = strconv.ParseUint(tip, 10, 64); err != nil {
		return nil, fmt.Errorf("parse tip: %w", err)
	}
	if r.ResourceBudget, err = strconv.ParseUint(budget, 10, 64); err != nil {
		return nil, fmt.Errorf("parse resource budget: %w", err)
	}
	r.Status = data.RequestStatus(status)

	return &r, nil
}

// UpdateStatus moves a record to status, refusing transitions the state machine does not allow.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, handle string, status data.RequestStatus, output, reason string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM execution_requests WHERE handle = ?`, handle).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get status: %w", err)
	}

	if !data.ValidTransition(data.RequestStatus(current), status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, status)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE execution_requests SET status = ?, output = ?, failure_reason = ?, updated_at = ?
		WHERE handle = ?`,
		string(status), output, reason, time.Now().UTC(), handle,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	return tx.Commit()
}

// SetTxHash records the ledger transaction that carried the request.
func (s *SQLiteStore) SetTxHash(ctx context.Context, handle, txHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE execution_requests SET tx_hash = ?, updated_at = ? WHERE handle = ?`,
		txHash, time.Now().UTC(), handle,
	)
	if err != nil {
		return fmt.Errorf("set tx hash: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set tx hash: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) CountByStatus(ctx context.Context) (map[data.RequestStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM execution_requests GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[data.RequestStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[data.RequestStatus(status)] = n
	}
	return counts, rows.Err()
}
