package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const DefaultSnapshotName = "menu"

const sqlSchema = `
create table if not exists snapshots (
	name text primary key,
	cached_at integer not null,
	data blob
);`

const sqlLoad = `select cached_at, data from snapshots where name = ?`

const sqlSave = `
insert into snapshots (name, cached_at, data) values (?, ?, ?)
on conflict (name) do update set
	cached_at = excluded.cached_at,
	data = excluded.data`

// SQLOptions selects between a local sqlite file (File) and a remote libsql
// database (URL).
type SQLOptions struct {
	File      string
	URL       string
	AuthToken string
	// Name is the row the snapshot is kept under.
	Name string
}

// OpenSQLDB opens the database described by opts.
func OpenSQLDB(opts SQLOptions) (*sql.DB, error) {
	if opts.URL != "" {
		dsn, err := url.Parse(opts.URL)
		if err != nil {
			return nil, fmt.Errorf("parse libsql url: %w", err)
		}
		if opts.AuthToken != "" {
			query := dsn.Query()
			query.Set("authToken", opts.AuthToken)
			dsn.RawQuery = query.Encode()
		}
		return sql.Open("libsql", dsn.String())
	}

	if opts.File == "" {
		return nil, fmt.Errorf("a path was not specified")
	}
	db, err := sql.Open("sqlite", opts.File)
	if err != nil {
		return nil, err
	}
	// sqlite only allows a single writer
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// SQLStore keeps the record in a single row of the snapshots table.
type SQLStore struct {
	db   *sql.DB
	name string
}

// NewSQLStore creates the snapshots table if it is missing.
func NewSQLStore(ctx context.Context, db *sql.DB, name string) (SQLStore, error) {
	if name == "" {
		name = DefaultSnapshotName
	}
	_, err := db.ExecContext(ctx, sqlSchema)
	if err != nil {
		return SQLStore{}, fmt.Errorf("create snapshots table: %w", err)
	}
	return SQLStore{db: db, name: name}, nil
}

func (s SQLStore) Load(ctx context.Context) (*Snapshot, error) {
	var cachedAt int64
	var data []byte
	err := s.db.QueryRowContext(ctx, sqlLoad, s.name).Scan(&cachedAt, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", s.name, err)
	}
	record := Record{
		CachedAt: time.UnixMilli(cachedAt).UTC(),
		Data:     data,
	}
	return record.Decode()
}

func (s SQLStore) Save(ctx context.Context, snapshot *Snapshot) error {
	record, err := Encode(snapshot)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, sqlSave, s.name, record.CachedAt.UnixMilli(), record.Data)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", s.name, err)
	}
	return nil
}
