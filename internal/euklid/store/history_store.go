package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	mdwerror "github.com/msto63/euklid/foundation/core/error"
	mdwerrors "github.com/msto63/euklid/foundation/core/errors"
)

// Kind names the operation a history record was produced by
type Kind string

const (
	KindParse     Kind = "parse"
	KindCalculate Kind = "calculate"
	KindEvaluate  Kind = "evaluate"
	KindLCD       Kind = "lcd"
	KindDecimal   Kind = "decimal"
	KindToDecimal Kind = "todecimal"
	KindCompare   Kind = "compare"
)

// Record is one stored calculation. ErrorKind is empty for successful
// calculations.
type Record struct {
	ID        string                 `json:"id" yaml:"id"`
	CreatedAt time.Time              `json:"created_at" yaml:"created_at"`
	Kind      Kind                   `json:"kind" yaml:"kind"`
	Input     string                 `json:"input" yaml:"input"`
	Result    string                 `json:"result,omitempty" yaml:"result,omitempty"`
	ErrorKind string                 `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	RequestID string                 `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Duration  time.Duration          `json:"duration" yaml:"duration"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Failed reports whether the calculation ended with an error
func (r *Record) Failed() bool {
	return r.ErrorKind != ""
}

// Filter defines criteria for querying history. Zero fields match all.
type Filter struct {
	Kind       Kind
	FailedOnly bool
	Since      time.Time
	Until      time.Time
	RequestID  string
	Search     string // substring of the input
	Limit      int
	Offset     int
}

// Stats summarizes the stored history
type Stats struct {
	Total  int64          `json:"total" yaml:"total"`
	Failed int64          `json:"failed" yaml:"failed"`
	ByKind map[Kind]int64 `json:"by_kind" yaml:"by_kind"`
	First  time.Time      `json:"first,omitempty" yaml:"first,omitempty"`
	Last   time.Time      `json:"last,omitempty" yaml:"last,omitempty"`
}

// HistoryStore defines the interface for calculation history persistence
type HistoryStore interface {
	Record(ctx context.Context, rec *Record) error
	Query(ctx context.Context, filter Filter) ([]*Record, error)
	Get(ctx context.Context, id string) (*Record, error)
	Stats(ctx context.Context) (*Stats, error)

	// Maintenance
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Trim(ctx context.Context, keep int) (int64, error)
	Close() error
}

// prepare fills in ID and timestamp before a record is stored
func prepare(rec *Record) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
}

func notFound(id string) error {
	return mdwerrors.NewErrorBuilder(mdwerrors.ModuleStore).
		Operation("get").
		Messagef("history record %s not found", id).
		Code(mdwerror.CodeNotFound).
		Detail("id", id).
		Build()
}

// SQLiteHistoryStore implements HistoryStore using SQLite
type SQLiteHistoryStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path string
}

// DefaultSQLiteConfig returns default configuration
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		Path: "./data/history.db",
	}
}

// NewSQLiteHistoryStore opens or creates the history database
func NewSQLiteHistoryStore(cfg SQLiteConfig) (*SQLiteHistoryStore, error) {
	dsn := ":memory:"
	if cfg.Path != ":memory:" {
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, mdwerrors.StorageFailed("open", err)
		}
		// Open database with WAL mode
		dsn = cfg.Path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, mdwerrors.StorageFailed("open", err)
	}
	if cfg.Path == ":memory:" {
		// Every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &SQLiteHistoryStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, mdwerrors.StorageFailed("init schema", err)
	}

	return store, nil
}

// initSchema creates the necessary tables
func (s *SQLiteHistoryStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS calculations (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		kind TEXT NOT NULL,
		input TEXT NOT NULL,
		result TEXT,
		error_kind TEXT,
		request_id TEXT,
		duration_us INTEGER NOT NULL DEFAULT 0,
		metadata TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_calculations_created_at ON calculations(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_calculations_kind ON calculations(kind);
	CREATE INDEX IF NOT EXISTS idx_calculations_request_id ON calculations(request_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores a calculation
func (s *SQLiteHistoryStore) Record(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(rec)

	var metadataJSON []byte
	if rec.Metadata != nil {
		var err error
		if metadataJSON, err = json.Marshal(rec.Metadata); err != nil {
			return mdwerrors.StorageFailed("record", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calculations (id, created_at, kind, input, result, error_kind, request_id, duration_us, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.CreatedAt.UnixNano(), string(rec.Kind), rec.Input, nullable(rec.Result),
		nullable(rec.ErrorKind), nullable(rec.RequestID), rec.Duration.Microseconds(), nullableBytes(metadataJSON))
	if err != nil {
		return mdwerrors.StorageFailed("record", err)
	}

	return nil
}

// Query retrieves records based on filter criteria, newest first
func (s *SQLiteHistoryStore) Query(ctx context.Context, filter Filter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, created_at, kind, input, result, error_kind, request_id, duration_us, metadata FROM calculations WHERE 1=1`
	var args []interface{}

	if filter.Kind != "" {
		query += " AND kind = ?"
		args = append(args, string(filter.Kind))
	}
	if filter.FailedOnly {
		query += " AND error_kind IS NOT NULL AND error_kind != ''"
	}
	if !filter.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.Since.UnixNano())
	}
	if !filter.Until.IsZero() {
		query += " AND created_at <= ?"
		args = append(args, filter.Until.UnixNano())
	}
	if filter.RequestID != "" {
		query += " AND request_id = ?"
		args = append(args, filter.RequestID)
	}
	if filter.Search != "" {
		query += ` AND input LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}

	query += " ORDER BY created_at DESC, id"

	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mdwerrors.StorageFailed("query", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, mdwerrors.StorageFailed("query", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mdwerrors.StorageFailed("query", err)
	}

	return records, nil
}

// Get returns the record with the given ID
func (s *SQLiteHistoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, kind, input, result, error_kind, request_id, duration_us, metadata
		FROM calculations WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, mdwerrors.StorageFailed("get", err)
	}
	return rec, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		rec                                   Record
		kind                                  string
		createdAt, durationUS                 int64
		result, errorKind, requestID, metaRaw sql.NullString
	)
	if err := row.Scan(&rec.ID, &createdAt, &kind, &rec.Input, &result, &errorKind,
		&requestID, &durationUS, &metaRaw); err != nil {
		return nil, err
	}

	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	rec.Kind = Kind(kind)
	rec.Result = result.String
	rec.ErrorKind = errorKind.String
	rec.RequestID = requestID.String
	rec.Duration = time.Duration(durationUS) * time.Microsecond
	if metaRaw.Valid && metaRaw.String != "" {
		if err := json.Unmarshal([]byte(metaRaw.String), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("metadata of %s: %w", rec.ID, err)
		}
	}
	return &rec, nil
}

// Stats returns history statistics
func (s *SQLiteHistoryStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{ByKind: make(map[Kind]int64)}

	var first, last sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN error_kind IS NOT NULL AND error_kind != '' THEN 1 ELSE 0 END), 0),
		       MIN(created_at), MAX(created_at)
		FROM calculations`).Scan(&stats.Total, &stats.Failed, &first, &last)
	if err != nil {
		return nil, mdwerrors.StorageFailed("stats", err)
	}
	if first.Valid {
		stats.First = time.Unix(0, first.Int64).UTC()
	}
	if last.Valid {
		stats.Last = time.Unix(0, last.Int64).UTC()
	}

	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM calculations GROUP BY kind`)
	if err != nil {
		return nil, mdwerrors.StorageFailed("stats", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, mdwerrors.StorageFailed("stats", err)
		}
		stats.ByKind[Kind(kind)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, mdwerrors.StorageFailed("stats", err)
	}

	return stats, nil
}

// Prune removes records older than the specified duration
func (s *SQLiteHistoryStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan).UnixNano()
	result, err := s.db.ExecContext(ctx, `DELETE FROM calculations WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, mdwerrors.StorageFailed("prune", err)
	}
	return rowsAffected("prune", result)
}

// Trim keeps the newest keep records and removes the rest
func (s *SQLiteHistoryStore) Trim(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM calculations WHERE id NOT IN (
			SELECT id FROM calculations ORDER BY created_at DESC, id LIMIT ?
		)`, keep)
	if err != nil {
		return 0, mdwerrors.StorageFailed("trim", err)
	}
	return rowsAffected("trim", result)
}

func rowsAffected(operation string, result sql.Result) (int64, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return 0, mdwerrors.StorageFailed(operation, err)
	}
	return n, nil
}

// Vacuum optimizes the database
func (s *SQLiteHistoryStore) Vacuum(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `VACUUM`); err != nil {
		return mdwerrors.StorageFailed("vacuum", err)
	}
	return nil
}

// Ping checks the database connection
func (s *SQLiteHistoryStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteHistoryStore) Close() error {
	return s.db.Close()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableBytes(b []byte) sql.NullString {
	return sql.NullString{String: string(b), Valid: len(b) > 0}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// MemoryHistoryStore is an in-memory implementation for testing and for
// running without a database
type MemoryHistoryStore struct {
	mu      sync.RWMutex
	records []*Record
}

// NewMemoryHistoryStore creates a new in-memory history store
func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{records: make([]*Record, 0)}
}

// Record stores a copy of rec
func (s *MemoryHistoryStore) Record(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(rec)
	cp := *rec
	s.records = append(s.records, &cp)
	return nil
}

// Query retrieves records based on filter criteria, newest first
func (s *MemoryHistoryStore) Query(ctx context.Context, filter Filter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*Record
	for _, rec := range s.records {
		if filter.Kind != "" && rec.Kind != filter.Kind {
			continue
		}
		if filter.FailedOnly && !rec.Failed() {
			continue
		}
		if !filter.Since.IsZero() && rec.CreatedAt.Before(filter.Since) {
			continue
		}
		if !filter.Until.IsZero() && rec.CreatedAt.After(filter.Until) {
			continue
		}
		if filter.RequestID != "" && rec.RequestID != filter.RequestID {
			continue
		}
		if filter.Search != "" && !strings.Contains(rec.Input, filter.Search) {
			continue
		}
		cp := *rec
		matched = append(matched, &cp)
	}

	sortNewestFirst(matched)

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// Get returns the record with the given ID
func (s *MemoryHistoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.ID == id {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, notFound(id)
}

// Stats returns history statistics
func (s *MemoryHistoryStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{ByKind: make(map[Kind]int64)}
	for _, rec := range s.records {
		stats.Total++
		if rec.Failed() {
			stats.Failed++
		}
		stats.ByKind[rec.Kind]++
		if stats.First.IsZero() || rec.CreatedAt.Before(stats.First) {
			stats.First = rec.CreatedAt
		}
		if rec.CreatedAt.After(stats.Last) {
			stats.Last = rec.CreatedAt
		}
	}
	return stats, nil
}

// Prune removes records older than the specified duration
func (s *MemoryHistoryStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	kept := s.records[:0]
	var removed int64
	for _, rec := range s.records {
		if rec.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	s.records = kept
	return removed, nil
}

// Trim keeps the newest keep records and removes the rest
func (s *MemoryHistoryStore) Trim(ctx context.Context, keep int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 0 {
		keep = 0
	}
	if len(s.records) <= keep {
		return 0, nil
	}
	sortNewestFirst(s.records)
	removed := int64(len(s.records) - keep)
	s.records = s.records[:keep]
	return removed, nil
}

// Close is a no-op for the memory store
func (s *MemoryHistoryStore) Close() error {
	return nil
}

func sortNewestFirst(records []*Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
}
