package sessionstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"dcinside-mobile/internal/dcmobile"

	_ "embed"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// Store persists the cookies of logged-in sessions under a profile name.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Profile summarizes one stored session.
type Profile struct {
	Name      string
	Cookies   int
	UpdatedAt time.Time
}

// Open opens a local sqlite file, or a remote libsql database when dsn is a
// libsql:// or http(s):// url.
func Open(ctx context.Context, dsn string) (*Store, error) {
	driver := "sqlite"
	if isRemote(dsn) {
		driver = "libsql"
	}
	database, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// a single connection keeps writes serialized on the file
		database.SetMaxOpenConns(1)
	}
	store, err := New(ctx, database)
	if err != nil {
		database.Close()
		return nil, err
	}
	return store, nil
}

func isRemote(dsn string) bool {
	for _, prefix := range []string{"libsql://", "http://", "https://", "wss://", "ws://"} {
		if strings.HasPrefix(dsn, prefix) {
			return true
		}
	}
	return false
}

// New wraps an open database, creating the schema if needed.
func New(ctx context.Context, database *sql.DB) (*Store, error) {
	if _, err := database.ExecContext(ctx, Schema); err != nil {
		return nil, fmt.Errorf("create session schema: %w", err)
	}
	return &Store{db: database, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the cookies stored for profile.
func (s *Store) Save(ctx context.Context, profile string, cookies []dcmobile.StoredCookie) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, "delete from session_cookies where profile = ?", profile)
	if err != nil {
		return err
	}

	updatedAt := s.now().Unix()
	for _, c := range cookies {
		_, err = tx.ExecContext(
			ctx,
			`insert into session_cookies(profile, origin, name, value, updated_at)
			values (?, ?, ?, ?, ?)
			on conflict (profile, origin, name) do update set value = excluded.value`,
			profile, c.Origin, c.Name, c.Value, updatedAt,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Load returns the cookies stored for profile, nil if there are none.
func (s *Store) Load(ctx context.Context, profile string) ([]dcmobile.StoredCookie, error) {
	rows, err := s.db.QueryContext(
		ctx,
		"select origin, name, value from session_cookies where profile = ? order by origin, name",
		profile,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dcmobile.StoredCookie
	for rows.Next() {
		var c dcmobile.StoredCookie
		if err := rows.Scan(&c.Origin, &c.Name, &c.Value); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, profile string) error {
	_, err := s.db.ExecContext(ctx, "delete from session_cookies where profile = ?", profile)
	return err
}

func (s *Store) Profiles(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select profile, count(*), max(updated_at) from session_cookies
		group by profile order by profile`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		var p Profile
		var updatedAt int64
		if err := rows.Scan(&p.Name, &p.Cookies, &updatedAt); err != nil {
			return nil, err
		}
		p.UpdatedAt = time.Unix(updatedAt, 0)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Restore creates a session of client holding the cookies stored for profile.
func (s *Store) Restore(ctx context.Context, client *dcmobile.Client, profile string) (*dcmobile.Session, error) {
	cookies, err := s.Load(ctx, profile)
	if err != nil {
		return nil, err
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("no stored session for profile %q", profile)
	}
	return client.NewSession(cookies...)
}
