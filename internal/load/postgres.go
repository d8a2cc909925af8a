package load

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"tabula/internal/logging"
	"tabula/internal/table"
)

// idColumn numbers loaded rows from 1.
const idColumn = "id"

// Postgres replaces Table with the run output: the table is dropped,
// recreated with a text column per table column plus an id column, and
// bulk-loaded with COPY in one transaction.
type Postgres struct {
	DSN   string
	Table string
}

func (p *Postgres) Load(ctx context.Context, t *table.Table) error {
	pool, err := pgxpool.New(ctx, p.DSN)
	if err != nil {
		return errors.Wrap(err, "load: postgres: pool")
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "load: postgres: begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ident := identifier(p.Table)
	cols := append([]string{idColumn}, dataColumns(t)...)
	for _, stmt := range []string{
		"DROP TABLE IF EXISTS " + ident.Sanitize(),
		createStatement(ident, cols),
	} {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return errors.Wrapf(err, "load: postgres: %s", stmt)
		}
	}
	n, err := tx.CopyFrom(ctx, ident, cols, pgx.CopyFromRows(copyRows(t, cols)))
	if err != nil {
		return errors.Wrap(err, "load: postgres: copy")
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "load: postgres: commit")
	}
	logging.L().Info("loaded output", "table", p.Table, "rows", n)
	return nil
}

func identifier(name string) pgx.Identifier {
	return pgx.Identifier(strings.Split(name, "."))
}

// dataColumns drops a source column named like the id column.
func dataColumns(t *table.Table) []string {
	var out []string
	for _, c := range t.Columns() {
		if c != idColumn {
			out = append(out, c)
		}
	}
	return out
}

func createStatement(ident pgx.Identifier, cols []string) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		if c == idColumn {
			defs[i] = pgx.Identifier{c}.Sanitize() + " bigint PRIMARY KEY"
			continue
		}
		defs[i] = pgx.Identifier{c}.Sanitize() + " text"
	}
	return "CREATE TABLE " + ident.Sanitize() + " (" + strings.Join(defs, ", ") + ")"
}

// copyRows renders values as text; nulls stay NULL.
func copyRows(t *table.Table, cols []string) [][]any {
	out := make([][]any, t.Len())
	for i, r := range t.Rows() {
		row := make([]any, len(cols))
		row[0] = int64(i + 1)
		for j, c := range cols[1:] {
			if v := r[c]; !table.IsNull(v) {
				row[j+1] = table.Format(v)
			}
		}
		out[i] = row
	}
	return out
}
