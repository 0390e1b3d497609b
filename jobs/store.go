// Package jobs tracks merged documents: which inputs were processed, their
// status and where the outputs were written. Records are keyed by the
// sha256 of the inputs so the same document is not merged twice.
package jobs

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Status values of a job.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

var (
	ErrNotFound   = errors.New("job not found")
	ErrDuplicate  = errors.New("document already processed")
	ErrInProgress = errors.New("document is being processed")
)

// Job is one tracked document.
type Job struct {
	ID           string
	Name         string
	InputHash    string
	BlocksPath   string
	CachePath    string
	Status       string
	Pages        int
	MarkdownPath string
	JSONPath     string
	Error        string
	CreatedAt    time.Time
	ProcessedAt  *time.Time
}

// Outputs records where a completed merge was written.
type Outputs struct {
	Pages        int
	MarkdownPath string
	JSONPath     string
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	input_hash    TEXT NOT NULL UNIQUE,
	blocks_path   TEXT NOT NULL,
	cache_path    TEXT NOT NULL,
	status        TEXT NOT NULL,
	pages         INTEGER NOT NULL DEFAULT 0,
	markdown_path TEXT NOT NULL DEFAULT '',
	json_path     TEXT NOT NULL DEFAULT '',
	error         TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL,
	processed_at  TEXT
);
CREATE INDEX IF NOT EXISTS documents_status ON documents(status);
`

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const columns = `id, name, input_hash, blocks_path, cache_path, status, pages,
	markdown_path, json_path, error, created_at, processed_at`

// Store persists jobs in sqlite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open opens (or creates) the sqlite database at path. ":memory:" is allowed.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("opening job store", "path", path)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// One connection serializes writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s: %w", path, err)
	}
	return &Store{db: db, logger: logger, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Init creates the schema. With drop set, existing records are discarded.
func (s *Store) Init(ctx context.Context, drop bool) error {
	if drop {
		if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS documents`); err != nil {
			return fmt.Errorf("dropping documents: %w", err)
		}
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	s.logger.Info("job store initialized", "dropped", drop)
	return nil
}

// Begin claims the document identified by hash and returns its job in the
// processing state. The claim is atomic: of several concurrent calls for
// the same hash, one wins. The others get the existing job along with
// ErrDuplicate (it completed) or ErrInProgress (it is still processing).
// With force set, any existing job is reset and reclaimed.
func (s *Store) Begin(ctx context.Context, name, hash, blocksPath, cachePath string, force bool) (*Job, error) {
	job := &Job{
		ID:         uuid.NewString(),
		Name:       name,
		InputHash:  hash,
		BlocksPath: blocksPath,
		CachePath:  cachePath,
		Status:     StatusProcessing,
		CreatedAt:  s.now(),
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, name, input_hash, blocks_path, cache_path, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(input_hash) DO NOTHING`,
		job.ID, job.Name, job.InputHash, job.BlocksPath, job.CachePath, job.Status, formatTime(job.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("inserting job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		s.logger.Debug("job started", "id", job.ID, "name", name)
		return job, nil
	}
	return s.reclaim(ctx, name, hash, blocksPath, cachePath, force)
}

// reclaim restarts the existing job for hash when it failed, or always when
// force is set. The status condition lives in the UPDATE itself so two
// callers can never both reclaim the same row.
func (s *Store) reclaim(ctx context.Context, name, hash, blocksPath, cachePath string, force bool) (*Job, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents
		 SET name = ?, blocks_path = ?, cache_path = ?, status = ?, pages = 0,
		     markdown_path = '', json_path = '', error = '', processed_at = NULL
		 WHERE input_hash = ? AND (? OR status NOT IN (?, ?))`,
		name, blocksPath, cachePath, StatusProcessing,
		hash, force, StatusProcessing, StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("restarting job: %w", err)
	}
	n, _ := res.RowsAffected()

	job, err := s.FindByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if n == 1 {
		s.logger.Debug("job restarted", "id", job.ID, "name", name)
		return job, nil
	}
	if job.Status == StatusCompleted {
		return job, ErrDuplicate
	}
	return job, ErrInProgress
}

// Complete marks a job completed and stores its outputs.
func (s *Store) Complete(ctx context.Context, id string, out Outputs) error {
	return s.finish(ctx, id, StatusCompleted, out, "")
}

// Fail marks a job failed with the error text.
func (s *Store) Fail(ctx context.Context, id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return s.finish(ctx, id, StatusFailed, Outputs{}, msg)
}

func (s *Store) finish(ctx context.Context, id, status string, out Outputs, msg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET status = ?, pages = ?, markdown_path = ?, json_path = ?, error = ?, processed_at = ?
		 WHERE id = ?`,
		status, out.Pages, out.MarkdownPath, out.JSONPath, msg, formatTime(s.now()), id)
	if err != nil {
		return fmt.Errorf("updating job %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return nil
}

// Get returns the job with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM documents WHERE id = ?`, id)
	return scanJob(row)
}

// FindByHash returns the job for an input hash.
func (s *Store) FindByHash(ctx context.Context, hash string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM documents WHERE input_hash = ?`, hash)
	return scanJob(row)
}

// List returns jobs newest first, optionally filtered by status.
func (s *Store) List(ctx context.Context, status string) ([]Job, error) {
	query := `SELECT ` + columns + ` FROM documents`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(sc scanner) (*Job, error) {
	var (
		job       Job
		created   string
		processed sql.NullString
	)
	err := sc.Scan(&job.ID, &job.Name, &job.InputHash, &job.BlocksPath, &job.CachePath, &job.Status,
		&job.Pages, &job.MarkdownPath, &job.JSONPath, &job.Error, &created, &processed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning job: %w", err)
	}

	if job.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if processed.Valid {
		t, err := time.Parse(timeLayout, processed.String)
		if err != nil {
			return nil, fmt.Errorf("parsing processed_at: %w", err)
		}
		job.ProcessedAt = &t
	}
	return &job, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// Hash returns the hex sha256 over the given inputs, each prefixed by its
// length so input boundaries are part of the digest.
func Hash(inputs ...[]byte) string {
	h := sha256.New()
	for _, in := range inputs {
		fmt.Fprintf(h, "%d:", len(in))
		h.Write(in)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ValidStatus reports whether s names a job status.
func ValidStatus(s string) bool {
	switch strings.ToLower(s) {
	case StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}
