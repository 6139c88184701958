package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/marginalia/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/ports/driven"
)

// memoryDSN opens a private in-memory database.
const memoryDSN = ":memory:"

// Store is a SQLite-based storage for session annotations.
type Store struct {
	db  *sql.DB
	dsn string
}

// NewStore opens a SQLite store. An empty dsn opens a private in-memory
// database that lives as long as the store.
func NewStore(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = memoryDSN
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Each connection to :memory: is a separate database; keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	s := &Store{
		db:  db,
		dsn: dsn,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection, discarding an in-memory database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DSN returns the data source name the store was opened with.
func (s *Store) DSN() string {
	return s.dsn
}

// AnnotationStore returns an AnnotationStore interface backed by this store.
func (s *Store) AnnotationStore() driven.AnnotationStore {
	return &annotationStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_annotations.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Annotation Store ====================

// annotationStore implements driven.AnnotationStore.
type annotationStore struct {
	store *Store
}

var _ driven.AnnotationStore = (*annotationStore)(nil)

const selectAnnotation = `
	SELECT id, type, page, pos_x, pos_y, color, data,
	       rect_x, rect_y, rect_width, rect_height, created_at
	FROM annotations`

// NextID reserves a fresh identifier.
func (s *annotationStore) NextID(ctx context.Context) (int64, error) {
	var id int64
	row := s.store.db.QueryRowContext(ctx, `
		UPDATE id_sequence SET value = value + 1
		WHERE name = 'annotation'
		RETURNING value
	`)
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("advancing id sequence: %w", err)
	}
	return id, nil
}

// Append stores a complete annotation.
func (s *annotationStore) Append(ctx context.Context, a domain.Annotation) error {
	var rx, ry, rw, rh sql.NullFloat64
	if r := a.BoundingRect; r != nil {
		rx = sql.NullFloat64{Float64: r.X, Valid: true}
		ry = sql.NullFloat64{Float64: r.Y, Valid: true}
		rw = sql.NullFloat64{Float64: r.Width, Valid: true}
		rh = sql.NullFloat64{Float64: r.Height, Valid: true}
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO annotations (id, type, page, pos_x, pos_y, color, data,
		                         rect_x, rect_y, rect_width, rect_height, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, string(a.Type), a.Page, a.Position.X, a.Position.Y,
		nullString(a.Color), nullString(a.Data), rx, ry, rw, rh,
		a.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("%w: duplicate annotation id %d", domain.ErrInvalidInput, a.ID)
		}
		return fmt.Errorf("inserting annotation: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE id_sequence SET value = MAX(value, ?) WHERE name = 'annotation'
	`, a.ID); err != nil {
		return fmt.Errorf("updating id sequence: %w", err)
	}

	return tx.Commit()
}

// Delete removes the annotation with the given ID.
func (s *annotationStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM annotations WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting annotation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking deleted rows: %w", err)
	}
	return n > 0, nil
}

// UndoLast removes the most recently inserted annotation on page.
func (s *annotationStore) UndoLast(ctx context.Context, page int) (*domain.Annotation, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, selectAnnotation+" WHERE page = ? ORDER BY seq DESC LIMIT 1", page)
	a, err := scanAnnotation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM annotations WHERE id = ?", a.ID); err != nil {
		return nil, fmt.Errorf("deleting annotation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing undo: %w", err)
	}
	return a, nil
}

// ByPage returns the annotations of one page in insertion order.
func (s *annotationStore) ByPage(ctx context.Context, page int) ([]domain.Annotation, error) {
	rows, err := s.store.db.QueryContext(ctx, selectAnnotation+" WHERE page = ? ORDER BY seq", page)
	if err != nil {
		return nil, fmt.Errorf("querying annotations: %w", err)
	}
	defer rows.Close()
	return scanAnnotations(rows)
}

// All returns every annotation in insertion order.
func (s *annotationStore) All(ctx context.Context) ([]domain.Annotation, error) {
	rows, err := s.store.db.QueryContext(ctx, selectAnnotation+" ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("querying annotations: %w", err)
	}
	defer rows.Close()
	return scanAnnotations(rows)
}

// Clear removes every annotation. The id sequence is kept.
func (s *annotationStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM annotations"); err != nil {
		return fmt.Errorf("clearing annotations: %w", err)
	}
	return nil
}

// Count returns the number of stored annotations.
func (s *annotationStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM annotations").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting annotations: %w", err)
	}
	return n, nil
}

// ==================== Helpers ====================

type scanner interface {
	Scan(dest ...any) error
}

func scanAnnotation(row scanner) (*domain.Annotation, error) {
	var a domain.Annotation
	var typ, createdAt string
	var color, data sql.NullString
	var rx, ry, rw, rh sql.NullFloat64
	if err := row.Scan(&a.ID, &typ, &a.Page, &a.Position.X, &a.Position.Y, &color, &data,
		&rx, &ry, &rw, &rh, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning annotation: %w", err)
	}

	a.Type = domain.AnnotationType(typ)
	a.Color = color.String
	a.Data = data.String
	if rx.Valid && ry.Valid && rw.Valid && rh.Valid {
		a.BoundingRect = &domain.Rect{X: rx.Float64, Y: ry.Float64, Width: rw.Float64, Height: rh.Float64}
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	a.CreatedAt = t
	return &a, nil
}

func scanAnnotations(rows *sql.Rows) ([]domain.Annotation, error) {
	var result []domain.Annotation
	for rows.Next() {
		a, err := scanAnnotation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating annotations: %w", err)
	}
	return result, nil
}

// nullString returns a sql.NullString, treating empty strings as NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
