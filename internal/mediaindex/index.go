// Package mediaindex is the local media registry that saved images are
// announced to. It records what headlines has put in the downloads
// directory so the stats and prune commands can report on it.
package mediaindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "golang.org/x/image/webp"
	_ "modernc.org/sqlite"

	"github.com/matheuskafuri/headlines/internal/imagecache"
)

var ErrNotFound = errors.New("media entry not found")

type Entry struct {
	Path         string
	ArticleID    string
	Size         int64
	Format       string
	Width        int
	Height       int
	RegisteredAt time.Time
}

type Stats struct {
	Files int
	Bytes int64
}

type Index struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

var _ imagecache.MediaRegistrar = (*Index)(nil)

func Open(dbPath string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating index dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	ix := &Index{writeDB: writeDB}
	// The schema must exist before a read-only handle can see it.
	if err := ix.init(); err != nil {
		ix.Close()
		return nil, err
	}

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		ix.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}
	ix.readDB = readDB
	return ix, nil
}

func (ix *Index) init() error {
	_, err := ix.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS media (
			path          TEXT PRIMARY KEY,
			article_id    TEXT NOT NULL,
			size          INTEGER NOT NULL,
			format        TEXT NOT NULL DEFAULT '',
			width         INTEGER NOT NULL DEFAULT 0,
			height        INTEGER NOT NULL DEFAULT 0,
			registered_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_media_article ON media(article_id);
		CREATE INDEX IF NOT EXISTS idx_media_registered ON media(registered_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (ix *Index) Close() error {
	var errs []error
	if ix.readDB != nil {
		errs = append(errs, ix.readDB.Close())
	}
	if ix.writeDB != nil {
		errs = append(errs, ix.writeDB.Close())
	}
	return errors.Join(errs...)
}

// Register records the file at path, replacing any earlier entry for it.
// Dimensions are read from the image header; files that do not decode are
// still recorded with zero dimensions.
func (ix *Index) Register(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	id, _ := imagecache.IdentityFromPath(path)
	format, width, height := probe(path)

	query, args, err := sq.Insert("media").
		Columns("path", "article_id", "size", "format", "width", "height", "registered_at").
		Values(path, id, info.Size(), format, width, height, time.Now().UTC()).
		Suffix(`ON CONFLICT(path) DO UPDATE SET
			size = excluded.size,
			format = excluded.format,
			width = excluded.width,
			height = excluded.height,
			registered_at = excluded.registered_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}
	if _, err := ix.writeDB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("registering %s: %w", path, err)
	}
	return nil
}

func probe(path string) (format string, width, height int) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, 0
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return "", 0, 0
	}
	return format, cfg.Width, cfg.Height
}

var entryColumns = []string{"path", "article_id", "size", "format", "width", "height", "registered_at"}

func scanEntry(row interface{ Scan(...any) error }) (Entry, error) {
	var e Entry
	err := row.Scan(&e.Path, &e.ArticleID, &e.Size, &e.Format, &e.Width, &e.Height, &e.RegisteredAt)
	return e, err
}

func (ix *Index) Lookup(ctx context.Context, path string) (Entry, error) {
	query, args, err := sq.Select(entryColumns...).
		From("media").
		Where(sq.Eq{"path": path}).
		ToSql()
	if err != nil {
		return Entry{}, fmt.Errorf("building lookup: %w", err)
	}
	e, err := scanEntry(ix.readDB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("looking up %s: %w", path, err)
	}
	return e, nil
}

// List returns entries newest first. A limit of zero or less means 500.
func (ix *Index) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 500
	}
	query, args, err := sq.Select(entryColumns...).
		From("media").
		OrderBy("registered_at DESC", "path").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list: %w", err)
	}

	rows, err := ix.readDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying media: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning media: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (ix *Index) Stats(ctx context.Context) (Stats, error) {
	query, args, err := sq.Select("COUNT(*)", "COALESCE(SUM(size), 0)").From("media").ToSql()
	if err != nil {
		return Stats{}, fmt.Errorf("building stats: %w", err)
	}
	var s Stats
	if err := ix.readDB.QueryRowContext(ctx, query, args...).Scan(&s.Files, &s.Bytes); err != nil {
		return Stats{}, fmt.Errorf("reading stats: %w", err)
	}
	return s, nil
}

// Prune drops entries whose file no longer exists and returns how many
// were removed.
func (ix *Index) Prune(ctx context.Context) (int, error) {
	query, args, err := sq.Select("path").From("media").ToSql()
	if err != nil {
		return 0, fmt.Errorf("building prune scan: %w", err)
	}
	rows, err := ix.readDB.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("querying media: %w", err)
	}
	var gone []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning media: %w", err)
		}
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			gone = append(gone, p)
		}
	}
	scanErr := rows.Err()
	rows.Close()
	if scanErr != nil {
		return 0, fmt.Errorf("scanning media: %w", scanErr)
	}
	if len(gone) == 0 {
		return 0, nil
	}

	query, args, err = sq.Delete("media").Where(sq.Eq{"path": gone}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("building prune: %w", err)
	}
	res, err := ix.writeDB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("pruning media: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
