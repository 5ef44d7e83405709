// Package catalog persists the anonymous sum descriptors and capability
// derivations seen by a check, keyed by descriptor fingerprint.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/funvibe/anonsum/internal/typesystem"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Lookup for an unknown fingerprint.
var ErrNotFound = errors.New("descriptor not in catalog")

const schema = `
CREATE TABLE IF NOT EXISTS sums (
	fingerprint TEXT PRIMARY KEY,
	display     TEXT NOT NULL,
	slots       INTEGER NOT NULL,
	encoded     BLOB NOT NULL,
	first_seen  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS derivations (
	fingerprint TEXT NOT NULL REFERENCES sums(fingerprint),
	capability  TEXT NOT NULL,
	holds       INTEGER NOT NULL,
	assoc       TEXT NOT NULL DEFAULT '',
	reason      TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (fingerprint, capability)
);`

// Catalog is a SQLite-backed descriptor store. It is safe for concurrent
// use.
type Catalog struct {
	db       *sql.DB
	interner *typesystem.Interner
	now      func() time.Time
}

// Entry is one stored descriptor with its derivations.
type Entry struct {
	Fingerprint uuid.UUID
	Display     string
	Slots       int
	Type        typesystem.Type
	FirstSeen   time.Time
	Derivations []Derivation
}

// Derivation is a stored capability derivation.
type Derivation struct {
	Capability typesystem.Capability
	Holds      bool
	Assoc      string
	Reason     string
}

// Open opens or creates the catalog at path. Decoded descriptors are
// interned in in; nil means the process-wide interner. ":memory:" gives a
// private in-memory catalog.
func Open(ctx context.Context, path string, in *typesystem.Interner) (*Catalog, error) {
	if in == nil {
		in = typesystem.Sums
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	// Every connection to ":memory:" opens a separate database.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog %s: create schema: %w", path, err)
	}
	return &Catalog{db: db, interner: in, now: time.Now}, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

// RecordSum stores sum unless it is already present and returns its
// fingerprint. The first_seen time of an existing entry is kept.
func (c *Catalog) RecordSum(ctx context.Context, sum *typesystem.TSum) (uuid.UUID, error) {
	fp := typesystem.Fingerprint(sum)
	_, err := c.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO sums (fingerprint, display, slots, encoded, first_seen) VALUES (?, ?, ?, ?, ?)`,
		fp.String(), sum.String(), sum.Arity(), typesystem.Encode(sum), c.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return uuid.Nil, fmt.Errorf("record %s: %w", sum, err)
	}
	return fp, nil
}

// RecordDerivation stores d for its descriptor, replacing an earlier
// result for the same capability. Only derivations on sums are stored.
func (c *Catalog) RecordDerivation(ctx context.Context, d typesystem.Derivation) error {
	sum, ok := d.Type.(*typesystem.TSum)
	if !ok {
		return fmt.Errorf("record derivation of %s for %s: not an anonymous sum", d.Capability, d.Type)
	}
	fp, err := c.RecordSum(ctx, sum)
	if err != nil {
		return err
	}
	assoc := ""
	if d.Assoc != nil {
		assoc = d.Assoc.String()
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO derivations (fingerprint, capability, holds, assoc, reason) VALUES (?, ?, ?, ?, ?)`,
		fp.String(), string(d.Capability), d.Holds, assoc, d.Reason)
	if err != nil {
		return fmt.Errorf("record derivation of %s for %s: %w", d.Capability, sum, err)
	}
	return nil
}

// Lookup returns the entry stored under fp.
func (c *Catalog) Lookup(ctx context.Context, fp uuid.UUID) (*Entry, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT fingerprint, display, slots, encoded, first_seen FROM sums WHERE fingerprint = ?`, fp.String())
	e, err := c.scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", fp, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := c.loadDerivations(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// List returns every stored entry ordered by display form.
func (c *Catalog) List(ctx context.Context) ([]*Entry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT fingerprint, display, slots, encoded, first_seen FROM sums ORDER BY display, fingerprint`)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	var entries []*Entry
	for rows.Next() {
		e, err := c.scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	rows.Close()

	for _, e := range entries {
		if err := c.loadDerivations(ctx, e); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func (c *Catalog) scanEntry(s scanner) (*Entry, error) {
	var (
		fp, display, seen string
		slots             int
		encoded           []byte
	)
	if err := s.Scan(&fp, &display, &slots, &encoded, &seen); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(fp)
	if err != nil {
		return nil, fmt.Errorf("catalog entry %q: %w", fp, err)
	}
	t, err := typesystem.Decode(encoded, c.interner)
	if err != nil {
		return nil, fmt.Errorf("catalog entry %s (%s): %w", fp, display, err)
	}
	firstSeen, err := time.Parse(time.RFC3339Nano, seen)
	if err != nil {
		return nil, fmt.Errorf("catalog entry %s: first_seen: %w", fp, err)
	}
	return &Entry{Fingerprint: id, Display: display, Slots: slots, Type: t, FirstSeen: firstSeen}, nil
}

func (c *Catalog) loadDerivations(ctx context.Context, e *Entry) error {
	rows, err := c.db.QueryContext(ctx,
		`SELECT capability, holds, assoc, reason FROM derivations WHERE fingerprint = ? ORDER BY capability`,
		e.Fingerprint.String())
	if err != nil {
		return fmt.Errorf("derivations of %s: %w", e.Display, err)
	}
	defer rows.Close()
	for rows.Next() {
		var d Derivation
		var capability string
		if err := rows.Scan(&capability, &d.Holds, &d.Assoc, &d.Reason); err != nil {
			return fmt.Errorf("derivations of %s: %w", e.Display, err)
		}
		d.Capability = typesystem.Capability(capability)
		e.Derivations = append(e.Derivations, d)
	}
	return rows.Err()
}
