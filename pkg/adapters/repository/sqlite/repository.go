package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"github.com/wadjakorntonsri/shortlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/shortlinks/pkg/ports"
	_ "modernc.org/sqlite" // Local SQLite driver
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, normalizeDSN(dbURL))
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driverName, err)
	}

	// A single local connection serializes writers instead of surfacing SQLITE_BUSY
	if driverName == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// normalizeDSN accepts SQLAlchemy style sqlite:///path URLs
func normalizeDSN(dbURL string) string {
	rest, ok := strings.CutPrefix(dbURL, "sqlite:///")
	if !ok {
		return dbURL
	}
	if rest == "" {
		return "file::memory:"
	}
	return "file:" + rest
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS links (
		link_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR(100) NOT NULL,
		counter INTEGER NOT NULL DEFAULT 0,
		url VARCHAR(2048) NOT NULL
	);
	`
	_, err := db.Exec(query)
	return err
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) Create(ctx context.Context, link *domain.Link) error {
	if err := link.Validate(); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO links (name, counter, url) VALUES (?, 0, ?)`, link.Name, link.URL)
	if err != nil {
		return fmt.Errorf("insert link: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert link: %w", err)
	}
	link.ID = id
	link.Counter = 0
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*domain.Link, error) {
	query := `SELECT link_id, name, counter, url FROM links WHERE link_id = ?`

	var link domain.Link
	err := r.db.QueryRowContext(ctx, query, id).Scan(&link.ID, &link.Name, &link.Counter, &link.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("link %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get link %d: %w", id, err)
	}
	return &link, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]domain.Link, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT link_id, name, counter, url FROM links ORDER BY link_id`)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	links := []domain.Link{}
	for rows.Next() {
		var l domain.Link
		if err := rows.Scan(&l.ID, &l.Name, &l.Counter, &l.URL); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}

// IncrementCounter adds one visit in a single statement so concurrent
// redirects to the same link never lose an update.
func (r *SQLiteRepository) IncrementCounter(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE links SET counter = counter + 1 WHERE link_id = ?`, id)
	if err != nil {
		return fmt.Errorf("increment link %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment link %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("link %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Restore inserts a link with its original id and counter. It reports false
// without error when the id is already taken.
func (r *SQLiteRepository) Restore(ctx context.Context, link *domain.Link) (bool, error) {
	if err := link.Validate(); err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO links (link_id, name, counter, url) VALUES (?, ?, ?, ?)`,
		link.ID, link.Name, link.Counter, link.URL)
	if err != nil {
		return false, fmt.Errorf("restore link %d: %w", link.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("restore link %d: %w", link.ID, err)
	}
	return n > 0, nil
}

// Ensure interface compliance
var _ ports.LinkRepository = (*SQLiteRepository)(nil)
