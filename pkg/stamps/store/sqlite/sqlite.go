package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/mnav0/major-studio-1/pkg/stamps/internalerr"
	"github.com/mnav0/major-studio-1/pkg/stamps/stamp"
	"github.com/mnav0/major-studio-1/pkg/stamps/store"
)

// materialChunk bounds the number of ids bound into one IN clause.
const materialChunk = 500

const schema = `
CREATE TABLE IF NOT EXISTS stamps (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	decade INTEGER NOT NULL,
	theme TEXT NOT NULL,
	thumbnail TEXT NOT NULL DEFAULT '',
	aspect_ratio TEXT NOT NULL DEFAULT '',
	media TEXT NOT NULL DEFAULT '[]',
	embedding TEXT NOT NULL DEFAULT '[]',
	detected TEXT NOT NULL DEFAULT '[]',
	colors TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_stamps_decade_theme ON stamps(decade, theme);
CREATE INDEX IF NOT EXISTS idx_stamps_position ON stamps(position);

CREATE TABLE IF NOT EXISTS stamp_materials (
	stamp_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	material TEXT NOT NULL,
	PRIMARY KEY(stamp_id, position),
	FOREIGN KEY(stamp_id) REFERENCES stamps(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS fetch_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	generation TEXT NOT NULL,
	fetched_at TEXT NOT NULL,
	seen INTEGER NOT NULL,
	included INTEGER NOT NULL
);
`

type sqliteStore struct {
	db *sqlx.DB
}

// stampRow mirrors the stamps table. JSON columns hold the nested
// slices of stamp.Stamp.
type stampRow struct {
	ID          string `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Notes       string `db:"notes"`
	Decade      int    `db:"decade"`
	Theme       string `db:"theme"`
	Thumbnail   string `db:"thumbnail"`
	AspectRatio string `db:"aspect_ratio"`
	Media       string `db:"media"`
	Embedding   string `db:"embedding"`
	Detected    string `db:"detected"`
	Colors      string `db:"colors"`
}

type fetchRow struct {
	Generation string `db:"generation"`
	FetchedAt  string `db:"fetched_at"`
	Seen       int    `db:"seen"`
	Included   int    `db:"included"`
}

type materialRow struct {
	StampID  string `db:"stamp_id"`
	Material string `db:"material"`
}

// OpenSQLite opens (creating if needed) a stamp database at path with WAL
// journaling and foreign keys enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	dsn := path + "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite: %w: %v", internalerr.ErrStoreUnavailable, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func (s *sqliteStore) UpsertStamps(ctx context.Context, stamps []stamp.Stamp) error {
	if len(stamps) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	if err := upsert(ctx, tx, stamps); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sqliteStore) ReplaceStamps(ctx context.Context, stamps []stamp.Stamp) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if err := upsert(ctx, tx, stamps); err != nil {
		return err
	}

	var stored []string
	if err := tx.SelectContext(ctx, &stored, `SELECT id FROM stamps`); err != nil {
		return fmt.Errorf("select stamp ids: %w", err)
	}
	keep := make(map[string]struct{}, len(stamps))
	for _, st := range stamps {
		keep[st.ID] = struct{}{}
	}
	var stale []string
	for _, id := range stored {
		if _, ok := keep[id]; !ok {
			stale = append(stale, id)
		}
	}

	// stamp_materials rows go with their stamp via ON DELETE CASCADE.
	for start := 0; start < len(stale); start += materialChunk {
		end := min(start+materialChunk, len(stale))
		query, args, err := sqlx.In(`DELETE FROM stamps WHERE id IN (?)`, stale[start:end])
		if err != nil {
			return fmt.Errorf("build delete query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("delete stale stamps: %w", err)
		}
	}
	return tx.Commit()
}

func upsert(ctx context.Context, tx *sqlx.Tx, stamps []stamp.Stamp) error {
	for _, st := range stamps {
		if st.ID == "" {
			return fmt.Errorf("upsert stamp: %w: empty id", internalerr.ErrInvalidInput)
		}
		row, err := toRow(st)
		if err != nil {
			return fmt.Errorf("encode stamp %s: %w", st.ID, err)
		}
		_, err = tx.NamedExecContext(ctx, `
INSERT INTO stamps (id, position, title, description, notes, decade, theme, thumbnail, aspect_ratio, media, embedding, detected, colors)
VALUES (:id, (SELECT COALESCE(MAX(position), -1) + 1 FROM stamps), :title, :description, :notes, :decade, :theme, :thumbnail, :aspect_ratio, :media, :embedding, :detected, :colors)
ON CONFLICT(id) DO UPDATE SET
	title = excluded.title,
	description = excluded.description,
	notes = excluded.notes,
	decade = excluded.decade,
	theme = excluded.theme,
	thumbnail = excluded.thumbnail,
	aspect_ratio = excluded.aspect_ratio,
	media = excluded.media,
	embedding = excluded.embedding,
	detected = excluded.detected,
	colors = excluded.colors`, row)
		if err != nil {
			return fmt.Errorf("upsert stamp %s: %w", st.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM stamp_materials WHERE stamp_id = ?`, st.ID); err != nil {
			return fmt.Errorf("clear materials %s: %w", st.ID, err)
		}
		for i, m := range st.Materials {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO stamp_materials (stamp_id, position, material) VALUES (?, ?, ?)`,
				st.ID, i, m); err != nil {
				return fmt.Errorf("insert material %s: %w", st.ID, err)
			}
		}
	}
	return nil
}

func (s *sqliteStore) Stamps(ctx context.Context, q store.Query) ([]stamp.Stamp, error) {
	var (
		where []string
		args  []any
	)
	if q.Decade != 0 {
		where = append(where, "decade = ?")
		args = append(args, q.Decade)
	}
	if q.Theme != "" {
		where = append(where, "theme = ?")
		args = append(args, q.Theme)
	}

	query := `SELECT id, title, description, notes, decade, theme, thumbnail, aspect_ratio, media, embedding, detected, colors FROM stamps`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY position"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	var rows []stampRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select stamps: %w", err)
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	materials, err := s.materials(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]stamp.Stamp, 0, len(rows))
	for _, r := range rows {
		st, err := fromRow(r)
		if err != nil {
			return nil, fmt.Errorf("decode stamp %s: %w", r.ID, err)
		}
		if m, ok := materials[r.ID]; ok {
			st.Materials = m
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *sqliteStore) StampByID(ctx context.Context, id string) (stamp.Stamp, error) {
	var r stampRow
	err := s.db.GetContext(ctx, &r,
		`SELECT id, title, description, notes, decade, theme, thumbnail, aspect_ratio, media, embedding, detected, colors FROM stamps WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return stamp.Stamp{}, fmt.Errorf("stamp %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return stamp.Stamp{}, fmt.Errorf("get stamp %s: %w", id, err)
	}

	st, err := fromRow(r)
	if err != nil {
		return stamp.Stamp{}, fmt.Errorf("decode stamp %s: %w", id, err)
	}
	materials, err := s.materials(ctx, []string{id})
	if err != nil {
		return stamp.Stamp{}, err
	}
	if m, ok := materials[id]; ok {
		st.Materials = m
	}
	return st, nil
}

func (s *sqliteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM stamps`); err != nil {
		return 0, fmt.Errorf("count stamps: %w", err)
	}
	return n, nil
}

func (s *sqliteStore) Decades(ctx context.Context) ([]int, error) {
	out := []int{}
	if err := s.db.SelectContext(ctx, &out, `SELECT DISTINCT decade FROM stamps ORDER BY decade`); err != nil {
		return nil, fmt.Errorf("select decades: %w", err)
	}
	return out, nil
}

func (s *sqliteStore) RecordFetch(ctx context.Context, run store.FetchRun) error {
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO fetch_runs (generation, fetched_at, seen, included) VALUES (:generation, :fetched_at, :seen, :included)`,
		fetchRow{
			Generation: run.Generation,
			FetchedAt:  run.FetchedAt.UTC().Format(time.RFC3339Nano),
			Seen:       run.Seen,
			Included:   run.Included,
		})
	if err != nil {
		return fmt.Errorf("record fetch: %w", err)
	}
	return nil
}

func (s *sqliteStore) LastFetch(ctx context.Context) (store.FetchRun, bool, error) {
	var r fetchRow
	err := s.db.GetContext(ctx, &r,
		`SELECT generation, fetched_at, seen, included FROM fetch_runs ORDER BY id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return store.FetchRun{}, false, nil
	}
	if err != nil {
		return store.FetchRun{}, false, fmt.Errorf("last fetch: %w", err)
	}
	at, err := time.Parse(time.RFC3339Nano, r.FetchedAt)
	if err != nil {
		return store.FetchRun{}, false, fmt.Errorf("last fetch time: %w", err)
	}
	return store.FetchRun{Generation: r.Generation, FetchedAt: at, Seen: r.Seen, Included: r.Included}, true, nil
}

// materials loads ordered materials for ids. Stamps without materials
// are absent from the result.
func (s *sqliteStore) materials(ctx context.Context, ids []string) (map[string][]string, error) {
	out := make(map[string][]string)
	for start := 0; start < len(ids); start += materialChunk {
		end := min(start+materialChunk, len(ids))
		query, args, err := sqlx.In(
			`SELECT stamp_id, material FROM stamp_materials WHERE stamp_id IN (?) ORDER BY stamp_id, position`,
			ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("build materials query: %w", err)
		}
		var rows []materialRow
		if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
			return nil, fmt.Errorf("select materials: %w", err)
		}
		for _, r := range rows {
			out[r.StampID] = append(out[r.StampID], r.Material)
		}
	}
	return out, nil
}

func toRow(st stamp.Stamp) (stampRow, error) {
	row := stampRow{
		ID:          st.ID,
		Title:       st.Title,
		Description: st.Description,
		Notes:       st.Notes,
		Decade:      st.Decade,
		Theme:       st.Theme,
		Thumbnail:   st.Thumbnail,
		AspectRatio: string(st.AspectRatio),
	}
	var err error
	if row.Media, err = encode(st.Media); err != nil {
		return row, err
	}
	if row.Embedding, err = encode(st.Embedding); err != nil {
		return row, err
	}
	if row.Detected, err = encode(st.Detected); err != nil {
		return row, err
	}
	if row.Colors, err = encode(st.Colors); err != nil {
		return row, err
	}
	return row, nil
}

func fromRow(r stampRow) (stamp.Stamp, error) {
	st := stamp.Stamp{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Notes:       r.Notes,
		Decade:      r.Decade,
		Theme:       r.Theme,
		Materials:   []string{},
		Thumbnail:   r.Thumbnail,
		AspectRatio: stamp.AspectRatio(r.AspectRatio),
	}
	if err := decode(r.Media, &st.Media); err != nil {
		return st, err
	}
	if err := decode(r.Embedding, &st.Embedding); err != nil {
		return st, err
	}
	if err := decode(r.Detected, &st.Detected); err != nil {
		return st, err
	}
	if err := decode(r.Colors, &st.Colors); err != nil {
		return st, err
	}
	return st, nil
}

// encode stores nil and empty slices as NULL-free "[]".
func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return "[]", nil
	}
	return string(b), nil
}

// decode leaves dst nil for empty arrays so round-tripped stamps compare
// equal to their normalized originals.
func decode[T any](raw string, dst *[]T) error {
	if raw == "" || raw == "[]" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}
