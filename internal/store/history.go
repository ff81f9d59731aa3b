package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/llmctx/internal/model"
	"github.com/nao1215/llmctx/internal/report"
)

// DBFileName is the name of the history database inside its directory.
const DBFileName = "history.db"

// HistoryDB provides SQLite-based storage for document snapshots.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// now returns the current time; replaced in tests.
	now func() time.Time
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so the web form and the CLI
	// can read while the other writes.
	EnableWAL bool

	// Now overrides the clock used for SavedAt. Nil means time.Now.
	Now func() time.Time
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Snapshot is one saved document.
type Snapshot struct {
	// ID is the snapshot UUID.
	ID string

	// SavedAt is when the snapshot was recorded.
	SavedAt time.Time

	// Digest is the hex SHA3-256 of the document content.
	Digest string

	// Document is the saved document.
	Document *model.Document
}

// SnapshotMetadata summarizes a snapshot without decoding its document.
type SnapshotMetadata struct {
	ID          string
	SavedAt     time.Time
	Digest      string
	LastUpdated string
	OS          string
	IDE         string
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist,
// ErrDatabaseNotFound is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create the file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	h := &HistoryDB{
		db:     db,
		dbPath: dbPath,
		now:    opts.Now,
	}
	if h.now == nil {
		h.now = time.Now
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := h.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return h, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	-- seq orders snapshots even when two share a timestamp
	CREATE TABLE IF NOT EXISTS snapshots (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		saved_at TEXT NOT NULL,
		digest TEXT NOT NULL,
		document_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_digest ON snapshots(digest);
	CREATE INDEX IF NOT EXISTS idx_snapshots_saved_at ON snapshots(saved_at);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// Save records doc as a new snapshot.
//
// When doc has the same content as the latest snapshot, no row is added
// and the latest snapshot's metadata is returned with created == false.
// The metadata timestamp is ignored when comparing content.
func (h *HistoryDB) Save(ctx context.Context, doc *model.Document) (SnapshotMetadata, bool, error) {
	data, err := report.MarshalDocument(doc)
	if err != nil {
		return SnapshotMetadata{}, false, fmt.Errorf("failed to serialize document: %w", err)
	}
	digest, err := ContentDigest(doc)
	if err != nil {
		return SnapshotMetadata{}, false, err
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return SnapshotMetadata{}, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	latest, err := scanMetadata(tx.QueryRowContext(ctx, metadataQuery+` ORDER BY seq DESC LIMIT 1`))
	switch {
	case err == nil && latest.Digest == digest:
		return latest, false, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return SnapshotMetadata{}, false, err
	}

	meta := SnapshotMetadata{
		ID:          uuid.NewString(),
		SavedAt:     h.now().UTC(),
		Digest:      digest,
		LastUpdated: doc.Metadata.LastUpdated,
		OS:          doc.UserEnvironment.OS,
		IDE:         doc.UserEnvironment.IDE,
	}

	query := `
	INSERT INTO snapshots (id, saved_at, digest, document_json)
	VALUES (?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, query,
		meta.ID,
		meta.SavedAt.Format(time.RFC3339Nano),
		meta.Digest,
		string(data),
	); err != nil {
		return SnapshotMetadata{}, false, fmt.Errorf("failed to save snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return SnapshotMetadata{}, false, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return meta, true, nil
}

// metadataQuery selects the columns read by scanMetadata.
const metadataQuery = `
	SELECT id, saved_at, digest,
		json_extract(document_json, '$.metadata.last_updated'),
		json_extract(document_json, '$.user_development_environment.os'),
		json_extract(document_json, '$.user_development_environment.ide')
	FROM snapshots`

// List returns snapshot metadata, newest first.
// A limit of zero or less returns every snapshot.
func (h *HistoryDB) List(ctx context.Context, limit int) ([]SnapshotMetadata, error) {
	query := metadataQuery + ` ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var results []SnapshotMetadata
	for rows.Next() {
		meta, err := scanMetadata(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, meta)
	}
	return results, rows.Err()
}

// Get returns the snapshot with the given ID, or ErrNotFound.
func (h *HistoryDB) Get(ctx context.Context, id string) (*Snapshot, error) {
	query := `
	SELECT id, saved_at, digest, document_json FROM snapshots
	WHERE id = ?
	`
	return h.getSnapshot(ctx, query, id)
}

// Latest returns the most recent snapshot, or ErrNotFound when the
// history is empty.
func (h *HistoryDB) Latest(ctx context.Context) (*Snapshot, error) {
	query := `
	SELECT id, saved_at, digest, document_json FROM snapshots
	ORDER BY seq DESC
	LIMIT 1
	`
	return h.getSnapshot(ctx, query)
}

// Count returns the number of stored snapshots.
func (h *HistoryDB) Count(ctx context.Context) (int, error) {
	var n int
	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return n, nil
}

func (h *HistoryDB) getSnapshot(ctx context.Context, query string, args ...any) (*Snapshot, error) {
	var (
		snap    Snapshot
		savedAt string
		docJSON string
	)
	err := h.db.QueryRowContext(ctx, query, args...).Scan(&snap.ID, &savedAt, &snap.Digest, &docJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	snap.SavedAt = parseTimestamp(savedAt)
	var doc model.Document
	if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", snap.ID, err)
	}
	snap.Document = &doc
	return &snap, nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMetadata(row rowScanner) (SnapshotMetadata, error) {
	var (
		meta        SnapshotMetadata
		savedAt     string
		lastUpdated sql.NullString
		osName      sql.NullString
		ide         sql.NullString
	)
	err := row.Scan(&meta.ID, &savedAt, &meta.Digest, &lastUpdated, &osName, &ide)
	if errors.Is(err, sql.ErrNoRows) {
		return SnapshotMetadata{}, ErrNotFound
	}
	if err != nil {
		return SnapshotMetadata{}, fmt.Errorf("failed to scan snapshot metadata: %w", err)
	}
	meta.SavedAt = parseTimestamp(savedAt)
	meta.LastUpdated = lastUpdated.String
	meta.OS = osName.String
	meta.IDE = ide.String
	return meta, nil
}

// ContentDigest returns the hex SHA3-256 of doc with its metadata cleared,
// so two saves of the same form content share a digest.
func ContentDigest(doc *model.Document) (string, error) {
	content := *doc
	content.Metadata = model.Metadata{}
	data, err := json.Marshal(&content)
	if err != nil {
		return "", fmt.Errorf("failed to serialize document: %w", err)
	}
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp parses a stored timestamp, returning the zero time when
// no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
