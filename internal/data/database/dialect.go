package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Dialect captures the SQL differences between the supported databases.
type Dialect interface {
	// Name is the database/sql driver name.
	Name() string
	// QuoteIdent quotes each part of a possibly qualified identifier.
	QuoteIdent(parts ...string) string
	// Placeholder returns the bind marker of the n-th argument, starting at 1.
	Placeholder(n int) string
	// Numbered reports whether placeholders carry an index and can be reused.
	Numbered() bool
	// LikeOperator is the case-sensitive pattern match operator.
	LikeOperator() string
}

// Driver names accepted by DialectFor.
const (
	DriverPostgres = "pgx"
	DriverMySQL    = "mysql"
)

// Postgres is the PostgreSQL dialect used with the pgx stdlib driver.
type Postgres struct{}

// Name implements Dialect.
func (Postgres) Name() string { return DriverPostgres }

// QuoteIdent implements Dialect.
func (Postgres) QuoteIdent(parts ...string) string {
	return pgx.Identifier(parts).Sanitize()
}

// Placeholder implements Dialect.
func (Postgres) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

// Numbered implements Dialect.
func (Postgres) Numbered() bool { return true }

// LikeOperator implements Dialect. LIKE is case-sensitive in PostgreSQL.
func (Postgres) LikeOperator() string { return "LIKE" }

// MySQL is the MySQL/MariaDB dialect used with go-sql-driver/mysql.
type MySQL struct{}

// Name implements Dialect.
func (MySQL) Name() string { return DriverMySQL }

// QuoteIdent implements Dialect.
func (MySQL) QuoteIdent(parts ...string) string {
	quoted := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ReplaceAll(p, "\x00", "")
		quoted = append(quoted, "`"+strings.ReplaceAll(p, "`", "``")+"`")
	}
	return strings.Join(quoted, ".")
}

// Placeholder implements Dialect.
func (MySQL) Placeholder(int) string { return "?" }

// Numbered implements Dialect.
func (MySQL) Numbered() bool { return false }

// LikeOperator implements Dialect. The default collations compare
// case-insensitively, BINARY forces a byte comparison.
func (MySQL) LikeOperator() string { return "LIKE BINARY" }

// DialectFor returns the dialect of a database/sql driver name.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverPostgres, "postgres", "postgresql":
		return Postgres{}, nil
	case DriverMySQL, "mariadb":
		return MySQL{}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// EscapeLike escapes LIKE wildcards so value matches literally.
// Both dialects use backslash as the default escape character.
func EscapeLike(value string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(value)
}

// ContainsPattern returns a LIKE pattern matching value as a substring.
func ContainsPattern(value string) string {
	return "%" + EscapeLike(value) + "%"
}
