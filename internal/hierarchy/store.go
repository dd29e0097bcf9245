package hierarchy

import (
	"context"
	"database/sql"
	"sort"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS classes (
	name      TEXT PRIMARY KEY,
	final     INTEGER NOT NULL DEFAULT 0,
	interface INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS parents (
	class  TEXT NOT NULL REFERENCES classes(name) ON DELETE CASCADE,
	parent TEXT NOT NULL,
	ord    INTEGER NOT NULL,
	PRIMARY KEY (class, parent)
);
`

// Store persists user classes in a SQLite database so that a class table
// imported once can be reused across runs.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and if needed creates) the database at path.
// ":memory:" gives a private in-memory database.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening hierarchy db")
	}
	// One connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enabling foreign keys")
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating hierarchy schema")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts classes. A saved class replaces its previous parent list.
func (s *Store) Save(ctx context.Context, classes []Class) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer tx.Rollback()

	for _, c := range classes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO classes (name, final, interface) VALUES (?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET final = excluded.final, interface = excluded.interface`,
			c.Name, c.Final, c.Interface); err != nil {
			return errors.Wrapf(err, "saving class %s", c.Name)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM parents WHERE class = ?`, c.Name); err != nil {
			return errors.Wrapf(err, "clearing parents of %s", c.Name)
		}
		for i, p := range c.Parents {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO parents (class, parent, ord) VALUES (?, ?, ?)`, c.Name, p, i); err != nil {
				return errors.Wrapf(err, "saving parent %s of %s", p, c.Name)
			}
		}
	}
	return errors.Wrap(tx.Commit(), "committing classes")
}

// Load returns every stored class, sorted by name.
func (s *Store) Load(ctx context.Context) ([]Class, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, final, interface FROM classes ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	byName := map[string]*Class{}
	var order []string
	for rows.Next() {
		var c Class
		if err := rows.Scan(&c.Name, &c.Final, &c.Interface); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "scanning class")
		}
		byName[c.Name] = &c
		order = append(order, c.Name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating classes")
	}

	prows, err := s.db.QueryContext(ctx, `SELECT class, parent FROM parents ORDER BY class, ord`)
	if err != nil {
		return nil, errors.Wrap(err, "querying parents")
	}
	defer prows.Close()
	for prows.Next() {
		var class, parent string
		if err := prows.Scan(&class, &parent); err != nil {
			return nil, errors.Wrap(err, "scanning parent")
		}
		if c, ok := byName[class]; ok {
			c.Parents = append(c.Parents, parent)
		}
	}
	if err := prows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating parents")
	}

	sort.Strings(order)
	out := make([]Class, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out, nil
}

// Delete removes a class and its parent edges.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM classes WHERE name = ?`, name)
	return errors.Wrapf(err, "deleting class %s", name)
}
