package db

import (
	"database/sql/driver"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect names a supported SQL backend. Its value is also the
// database/sql driver name.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

func (d Dialect) Valid() bool {
	switch d {
	case MySQL, Postgres, SQLite:
		return true
	}
	return false
}

func (d Dialect) DriverName() string { return string(d) }

// Rebind converts ? placeholders to $1, $2, ... for PostgreSQL. Queries must
// not contain a literal '?'.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 1
	for _, c := range query {
		if c == '?' {
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			n++
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// ForUpdate is the row-lock suffix for a SELECT inside a transaction.
// SQLite has no row locks; its single writer gives the same guarantee.
func (d Dialect) ForUpdate() string {
	if d == SQLite {
		return ""
	}
	return " FOR UPDATE"
}

// SupportsReturning reports whether INSERT ... RETURNING id is available.
func (d Dialect) SupportsReturning() bool {
	return d == Postgres || d == SQLite
}

// IsUniqueViolation reports whether err is a unique constraint failure.
func (d Dialect) IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// unicodeLower is registered with the SQLite driver because SQLite's LOWER
// folds ASCII only.
const unicodeLower = "unicode_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(unicodeLower, 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			default:
				return v, nil
			}
		})
}

// Lower wraps expr in the dialect's Unicode-aware lower-case function.
func (d Dialect) Lower(expr string) string {
	if d == SQLite {
		return unicodeLower + "(" + expr + ")"
	}
	return "LOWER(" + expr + ")"
}

// Timestamps are stored as UTC Unix microseconds.

func ToMicros(t time.Time) int64 {
	return t.UTC().UnixMicro()
}

func FromMicros(v int64) time.Time {
	return time.UnixMicro(v).UTC()
}
