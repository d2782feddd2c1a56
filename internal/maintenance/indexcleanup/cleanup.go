// Package indexcleanup drops PostgreSQL indexes that duplicate another index on the same table.
package indexcleanup

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"gorm.io/gorm"
)

type Index struct {
	Schema     string `json:"schema"`
	Table      string `json:"table"`
	Name       string `json:"name"`
	Definition string `json:"definition"`
	// Constraint marks an index owned by a primary key or unique constraint.
	Constraint bool `json:"constraint"`
}

type DuplicateGroup struct {
	Table string   `json:"table"`
	Key   string   `json:"key"`
	Keep  string   `json:"keep"`
	Drop  []string `json:"drop"`
}

type IndexError struct {
	Index string `json:"index"`
	Error string `json:"error"`
}

type Report struct {
	Scanned int              `json:"scanned"`
	DryRun  bool             `json:"dry_run"`
	Groups  []DuplicateGroup `json:"groups"`
	Dropped []string         `json:"dropped"`
	Errors  []IndexError     `json:"errors"`
}

// Catalog lists and drops indexes.
type Catalog interface {
	ListIndexes(ctx context.Context) ([]Index, error)
	DropIndex(ctx context.Context, schema, name string) error
}

// CREATE [UNIQUE] INDEX name ON [ONLY] schema.table USING method (columns) [tail]
var indexDefPattern = regexp.MustCompile(`(?i)^CREATE\s+(UNIQUE\s+)?INDEX\s+(?:CONCURRENTLY\s+)?\S+\s+ON\s+(?:ONLY\s+)?\S+\s+(.*)$`)

var spaces = regexp.MustCompile(`\s+`)

// Signature reduces an index definition to what makes it distinct: uniqueness,
// access method, columns and predicate. The index name and table are dropped.
func Signature(definition string) (string, bool) {
	m := indexDefPattern.FindStringSubmatch(strings.TrimSpace(definition))
	if m == nil {
		return "", false
	}
	body := strings.ToLower(spaces.ReplaceAllString(strings.TrimSpace(m[2]), " "))
	if m[1] != "" {
		return "unique " + body, true
	}
	return body, true
}

// FindDuplicates groups indexes by table and signature. A constraint-backed index is
// always the one kept and is never dropped; otherwise the first name in lexical order
// is kept. Definitions that cannot be parsed are never grouped.
func FindDuplicates(indexes []Index) []DuplicateGroup {
	type groupKey struct{ table, sig string }
	buckets := make(map[groupKey][]Index)

	for _, idx := range indexes {
		sig, ok := Signature(idx.Definition)
		if !ok {
			continue
		}
		k := groupKey{table: idx.Schema + "." + idx.Table, sig: sig}
		buckets[k] = append(buckets[k], idx)
	}

	var groups []DuplicateGroup
	for k, members := range buckets {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			if members[i].Constraint != members[j].Constraint {
				return members[i].Constraint
			}
			return members[i].Name < members[j].Name
		})

		drop := []string{}
		for _, m := range members[1:] {
			if !m.Constraint {
				drop = append(drop, m.Name)
			}
		}
		if len(drop) == 0 {
			continue
		}
		groups = append(groups, DuplicateGroup{
			Table: k.table,
			Key:   k.sig,
			Keep:  members[0].Name,
			Drop:  drop,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Table != groups[j].Table {
			return groups[i].Table < groups[j].Table
		}
		return groups[i].Keep < groups[j].Keep
	})
	return groups
}

// Run finds duplicate indexes and drops them unless dryRun is set.
// A failed drop is recorded and the remaining indexes are still processed.
func Run(ctx context.Context, catalog Catalog, dryRun bool) (*Report, error) {
	indexes, err := catalog.ListIndexes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}

	report := &Report{
		Scanned: len(indexes),
		DryRun:  dryRun,
		Groups:  FindDuplicates(indexes),
		Dropped: []string{},
		Errors:  []IndexError{},
	}
	if report.Groups == nil {
		report.Groups = []DuplicateGroup{}
	}
	if dryRun {
		return report, nil
	}

	for _, g := range report.Groups {
		schema, _, _ := strings.Cut(g.Table, ".")
		for _, name := range g.Drop {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			if err := catalog.DropIndex(ctx, schema, name); err != nil {
				log.Printf("drop index %s: %v", name, err)
				report.Errors = append(report.Errors, IndexError{Index: name, Error: err.Error()})
				continue
			}
			report.Dropped = append(report.Dropped, name)
		}
	}
	return report, nil
}

type postgresCatalog struct {
	db *gorm.DB
}

// NewPostgresCatalog reads indexes of the current schema from pg_indexes.
// Indexes that back a constraint are flagged since DROP INDEX cannot remove them.
func NewPostgresCatalog(db *gorm.DB) Catalog {
	return &postgresCatalog{db: db}
}

func (p *postgresCatalog) ListIndexes(ctx context.Context) ([]Index, error) {
	var rows []Index
	err := p.db.WithContext(ctx).Raw(`
		SELECT i.schemaname AS schema, i.tablename AS "table", i.indexname AS name, i.indexdef AS definition,
		       EXISTS (
			SELECT 1 FROM pg_constraint c
			JOIN pg_namespace n ON n.oid = c.connamespace
			WHERE n.nspname = i.schemaname AND c.conname = i.indexname
		       ) AS "constraint"
		FROM pg_indexes i
		WHERE i.schemaname = current_schema()
		ORDER BY i.tablename, i.indexname`).Scan(&rows).Error
	return rows, err
}

func (p *postgresCatalog) DropIndex(ctx context.Context, schema, name string) error {
	stmt := fmt.Sprintf("DROP INDEX IF EXISTS %s.%s", quoteIdent(schema), quoteIdent(name))
	return p.db.WithContext(ctx).Exec(stmt).Error
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
