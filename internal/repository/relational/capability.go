// Package relational implements the schema-capability protocol shared by the
// Postgres-backed adapters: classify "column/relation does not exist" errors,
// remember what the live schema is missing for the rest of the process, and
// bound the per-call retry loop.
package relational

import (
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
)

// MaxAttempts bounds the drop-and-retry loop per call. The schema will never
// grow a column mid-loop, so a small budget is enough for first-use probing.
const MaxAttempts = 4

// Postgres error codes for schema mismatches.
const (
	codeUndefinedColumn = "42703"
	codeUndefinedTable  = "42P01"
)

var (
	columnRe   = regexp.MustCompile(`column "?([A-Za-z0-9_.]+)"? does not exist`)
	relationRe = regexp.MustCompile(`relation "?([A-Za-z0-9_.]+)"? does not exist`)
)

// Issue identifies the schema object a query failed on. Exactly one of
// Column or Relation is set.
type Issue struct {
	Column   string
	Relation string
}

// Classify inspects an error for a recoverable schema mismatch. It returns
// the missing column or relation name and true when the caller should drop
// that object and retry.
func Classify(err error) (Issue, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return Issue{}, false
	}

	switch pgErr.Code {
	case codeUndefinedColumn:
		if m := columnRe.FindStringSubmatch(pgErr.Message); m != nil {
			col := m[1]
			// messages may qualify the column as table.column
			if i := strings.LastIndexByte(col, '.'); i >= 0 {
				col = col[i+1:]
			}
			return Issue{Column: col}, true
		}
	case codeUndefinedTable:
		if m := relationRe.FindStringSubmatch(pgErr.Message); m != nil {
			return Issue{Relation: m[1]}, true
		}
	}
	return Issue{}, false
}

// Capabilities records which optional columns and relations the live schema
// lacks. It is owned by an adapter instance and lives for the process;
// Reset exists for tests.
type Capabilities struct {
	mu        sync.Mutex
	columns   map[string]struct{}
	relations map[string]struct{}
}

// NewCapabilities creates an empty capability cache.
func NewCapabilities() *Capabilities {
	return &Capabilities{
		columns:   make(map[string]struct{}),
		relations: make(map[string]struct{}),
	}
}

// MarkColumnMissing records a column the schema does not have.
func (c *Capabilities) MarkColumnMissing(col string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.columns[col] = struct{}{}
}

// ColumnMissing reports whether the column was previously found missing.
func (c *Capabilities) ColumnMissing(col string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.columns[col]
	return ok
}

// MarkRelationMissing records a relation the schema does not have.
func (c *Capabilities) MarkRelationMissing(rel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.relations[rel] = struct{}{}
}

// RelationMissing reports whether the relation was previously found missing.
func (c *Capabilities) RelationMissing(rel string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.relations[rel]
	return ok
}

// Reset clears all recorded findings. Test support only; in production the
// capability state lives for the whole process.
func (c *Capabilities) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.columns = make(map[string]struct{})
	c.relations = make(map[string]struct{})
}
