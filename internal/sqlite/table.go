package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mesh-intelligence/reel/pkg/types"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// mapping binds an entity type to its SQLite table. columns lists every
// column with the primary key first; values and scan use the same order.
type mapping[T types.Entity] struct {
	name    string
	columns []string
	id      func(T) string
	values  func(T) ([]any, error)
	scan    func(scanner) (T, error)

	// readonly columns are written on insert but never by Update.
	readonly []string
}

func (m mapping[T]) key() string { return m.columns[0] }

func (m mapping[T]) hasColumn(col string) bool {
	return slices.Contains(m.columns, col)
}

func (m mapping[T]) selectSQL() string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(m.columns, ", "), m.name)
}

func (m mapping[T]) insertSQL() string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(m.columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO NOTHING",
		m.name, strings.Join(m.columns, ", "), marks, m.key())
}

// updateSQL returns the statement and the value indexes it binds, in order,
// followed by the key.
func (m mapping[T]) updateSQL() (string, []int) {
	var sets []string
	var idx []int
	for i, col := range m.columns[1:] {
		if slices.Contains(m.readonly, col) {
			continue
		}
		sets = append(sets, col+" = ?")
		idx = append(idx, i+1)
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", m.name, strings.Join(sets, ", "), m.key()), idx
}

// table implements types.Table for one entity type.
type table[T types.Entity] struct {
	backend *Backend
	m       mapping[T]
}

func newTable[T types.Entity](b *Backend, m mapping[T]) *table[T] {
	return &table[T]{backend: b, m: m}
}

// Get retrieves an entity by ID.
// Returns ErrNotFound if no row has that ID.
func (t *table[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	db, unlock, err := t.backend.read()
	if err != nil {
		return zero, err
	}
	defer unlock()

	row := db.QueryRowContext(ctx, t.m.selectSQL()+" WHERE "+t.m.key()+" = ?", id)
	v, err := t.m.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, fmt.Errorf("%s %s: %w", t.m.name, id, types.ErrNotFound)
	}
	if err != nil {
		return zero, fmt.Errorf("get %s %s: %w", t.m.name, id, err)
	}
	return v, nil
}

// Create inserts the entity under the ID it carries.
// Returns ErrInvalidID for an empty ID and ErrDuplicateID when the ID is
// taken. Foreign key violations are returned wrapped.
func (t *table[T]) Create(ctx context.Context, entity T) (T, error) {
	id := t.m.id(entity)
	if id == "" {
		return entity, types.ErrInvalidID
	}
	vals, err := t.m.values(entity)
	if err != nil {
		return entity, fmt.Errorf("encode %s %s: %w", t.m.name, id, err)
	}
	db, unlock, err := t.backend.write()
	if err != nil {
		return entity, err
	}
	defer unlock()

	res, err := db.ExecContext(ctx, t.m.insertSQL(), vals...)
	if err != nil {
		return entity, fmt.Errorf("insert %s %s: %w", t.m.name, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity, fmt.Errorf("%s %s: %w", t.m.name, id, types.ErrDuplicateID)
	}
	return entity, nil
}

// Update overwrites the row stored under id.
// Returns ErrNotFound if no row has that ID.
func (t *table[T]) Update(ctx context.Context, id string, entity T) (T, error) {
	if id == "" {
		return entity, types.ErrInvalidID
	}
	vals, err := t.m.values(entity)
	if err != nil {
		return entity, fmt.Errorf("encode %s %s: %w", t.m.name, id, err)
	}
	query, idx := t.m.updateSQL()
	args := make([]any, 0, len(idx)+1)
	for _, i := range idx {
		args = append(args, vals[i])
	}
	args = append(args, id)

	db, unlock, err := t.backend.write()
	if err != nil {
		return entity, err
	}
	defer unlock()

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return entity, fmt.Errorf("update %s %s: %w", t.m.name, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity, fmt.Errorf("%s %s: %w", t.m.name, id, types.ErrNotFound)
	}
	return entity, nil
}

// Delete removes the row with the given ID.
// Returns ErrNotFound if no row has that ID. A row that other rows still
// reference is refused by the database and the error is returned wrapped.
func (t *table[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	db, unlock, err := t.backend.write()
	if err != nil {
		return err
	}
	defer unlock()

	res, err := db.ExecContext(ctx, "DELETE FROM "+t.m.name+" WHERE "+t.m.key()+" = ?", id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", t.m.name, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %s: %w", t.m.name, id, types.ErrNotFound)
	}
	return nil
}

// Fetch returns rows whose columns equal every filter value, in insertion
// order. A filter on an unknown column matches nothing.
func (t *table[T]) Fetch(ctx context.Context, filter map[string]any) ([]T, error) {
	cols := make([]string, 0, len(filter))
	for col := range filter {
		if !t.m.hasColumn(col) {
			return nil, nil
		}
		cols = append(cols, col)
	}
	slices.Sort(cols)

	var where []string
	args := make([]any, 0, len(cols))
	for _, col := range cols {
		where = append(where, col+" = ?")
		args = append(args, filter[col])
	}
	clause := ""
	if len(where) > 0 {
		clause = "WHERE " + strings.Join(where, " AND ")
	}

	db, unlock, err := t.backend.read()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return t.query(ctx, db, clause, args...)
}

// query runs the table's SELECT with the given clause. Callers hold the
// backend lock.
func (t *table[T]) query(ctx context.Context, db *sql.DB, clause string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, t.m.selectSQL()+" "+clause+" ORDER BY rowid", args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.m.name, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := t.m.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.m.name, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", t.m.name, err)
	}
	return out, nil
}

// clipTable adds link maintenance to the clips table. The link column is
// readonly in the mapping and inserted as NULL.
type clipTable struct {
	*table[types.Clip]
}

// Create stores the clip without its link.
func (c *clipTable) Create(ctx context.Context, clip types.Clip) (types.Clip, error) {
	clip = clip.Clone()
	clip.LinkedClipID = nil
	return c.table.Create(ctx, clip)
}

// Update overwrites everything but the stored link and returns the row as
// stored.
func (c *clipTable) Update(ctx context.Context, id string, clip types.Clip) (types.Clip, error) {
	if _, err := c.table.Update(ctx, id, clip); err != nil {
		return clip, err
	}
	return c.Get(ctx, id)
}

// SetLink sets or clears the stored link of a clip.
// Returns ErrNotFound if the clip does not exist.
func (c *clipTable) SetLink(ctx context.Context, id string, linkedID *string) error {
	db, unlock, err := c.backend.write()
	if err != nil {
		return err
	}
	defer unlock()

	res, err := db.ExecContext(ctx, "UPDATE clips SET linked_clip_id = ? WHERE clip_id = ?", nullString(linkedID), id)
	if err != nil {
		return fmt.Errorf("link clip %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("clips %s: %w", id, types.ErrNotFound)
	}
	return nil
}
