package errors

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MySQL server error numbers handled by MapDBError.
const (
	mysqlErrDupEntry        = 1062
	mysqlErrBadNull         = 1048
	mysqlErrRowIsReferenced = 1451
	mysqlErrNoReferencedRow = 1452
	mysqlErrCheckViolated   = 3819
)

var (
	// "Key (field)=(value) already exists."
	reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)
	// "... is still referenced from table ..."
	reReferencedFrom = regexp.MustCompile(`is still referenced from table "?([^"]+)"?`)
	// "... is not present in table ..."
	reNotPresent = regexp.MustCompile(`is not present in table "?([^"]+)"?`)
	// "Duplicate entry 'x' for key 'queue_push.idx_name'"
	reMySQLDupKey = regexp.MustCompile(`for key '([^']+)'`)
	// "Column 'error' cannot be null"
	reMySQLColumn = regexp.MustCompile(`Column '([^']+)'`)
	// "... a foreign key constraint fails (`db`.`queue_exec`, ..."
	reMySQLFKTable = regexp.MustCompile("constraint fails \\(`[^`]+`\\.`([^`]+)`")
)

// MapDBError maps database errors to AppError instances:
//   - sql.ErrNoRows / pgx.ErrNoRows → NotFound
//   - unique violations → Conflict
//   - foreign key violations → ForeignKey
//   - check and NOT NULL violations → Validation
//   - context deadline/cancel → Timeout/Canceled
//
// Errors that are not recognized database errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{Code: ErrCodeTimeout, Message: "Request timed out. Please try again.", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{Code: ErrCodeCanceled, Message: "Request was canceled.", Cause: err}
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return &AppError{Code: ErrCodeNotFound, Message: "Resource not found", Cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return mapMySQLError(myErr)
	}
	return err
}

func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		field := pgErr.ColumnName
		if field == "" && pgErr.Detail != "" {
			if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
				field = m[1]
			}
		}
		if field == "" {
			field = inferFieldFromConstraint(pgErr.ConstraintName)
		}
		return conflict(field, pgErr)
	case pgerrcode.ForeignKeyViolation:
		table := pgErr.TableName
		missing := false
		if m := reReferencedFrom.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			table = m[1]
		} else if m := reNotPresent.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			table, missing = m[1], true
		}
		return foreignKey(table, missing, pgErr)
	case pgerrcode.CheckViolation:
		return invalid(pgErr.ColumnName, "This field has an invalid value.", "Invalid data. Please check your input.", pgErr)
	case pgerrcode.NotNullViolation:
		return invalid(pgErr.ColumnName, "This field is required.", "Required field is missing. Please check your input.", pgErr)
	default:
		return &AppError{Code: ErrCodeInternal, Message: "A database error occurred. Please try again.", Cause: pgErr}
	}
}

func mapMySQLError(myErr *mysql.MySQLError) error {
	switch myErr.Number {
	case mysqlErrDupEntry:
		var field string
		if m := reMySQLDupKey.FindStringSubmatch(myErr.Message); len(m) == 2 {
			key := m[1]
			// MySQL 8 prefixes the index with the table name.
			if i := strings.LastIndex(key, "."); i >= 0 {
				key = key[i+1:]
			}
			field = inferFieldFromConstraint(key)
		}
		return conflict(field, myErr)
	case mysqlErrRowIsReferenced, mysqlErrNoReferencedRow:
		var table string
		if m := reMySQLFKTable.FindStringSubmatch(myErr.Message); len(m) == 2 {
			table = m[1]
		}
		return foreignKey(table, myErr.Number == mysqlErrNoReferencedRow, myErr)
	case mysqlErrBadNull:
		var field string
		if m := reMySQLColumn.FindStringSubmatch(myErr.Message); len(m) == 2 {
			field = m[1]
		}
		return invalid(field, "This field is required.", "Required field is missing. Please check your input.", myErr)
	case mysqlErrCheckViolated:
		return invalid("", "", "Invalid data. Please check your input.", myErr)
	default:
		return &AppError{Code: ErrCodeInternal, Message: "A database error occurred. Please try again.", Cause: myErr}
	}
}

func conflict(field string, cause error) error {
	return &AppError{
		Code:    ErrCodeConflict,
		Message: "This value already exists. Please choose a different one.",
		Field:   field,
		Cause:   cause,
	}
}

func foreignKey(table string, missingParent bool, cause error) error {
	msg := "Cannot complete operation because this item is in use."
	switch {
	case table != "" && missingParent:
		msg = "Cannot complete operation because the referenced " + mapTableToDomain(table) + " does not exist."
	case table != "":
		msg = "Cannot delete because this item is in use by " + mapTableToDomain(table) + "."
	}
	return &AppError{Code: ErrCodeForeignKey, Message: msg, Cause: cause}
}

func invalid(field, fieldMsg, msg string, cause error) error {
	if field != "" {
		return &AppError{Code: ErrCodeValidation, Message: fieldMsg, Field: field, Cause: cause}
	}
	return &AppError{Code: ErrCodeValidation, Message: msg, Cause: cause}
}

// inferFieldFromConstraint infers the column from a three-part constraint name
// ("workers_pid_key" → "pid"). Longer names are ambiguous and yield "".
func inferFieldFromConstraint(constraintName string) string {
	parts := strings.Split(constraintName, "_")
	if len(parts) != 3 || isFunctionName(parts[1]) {
		return ""
	}
	return parts[1]
}

// mapTableToDomain maps table names to user-facing names.
func mapTableToDomain(tableName string) string {
	tableName = strings.ToLower(strings.TrimSpace(tableName))

	switch tableName {
	case "queue_push":
		return "Job"
	case "queue_exec":
		return "Execution"
	case "queue_worker":
		return "Worker"
	}
	return capitalizeWords(strings.ReplaceAll(tableName, "_", " "))
}

func capitalizeWords(s string) string {
	words := strings.Split(s, " ")
	for i, word := range words {
		if word != "" && word[0] >= 'a' && word[0] <= 'z' {
			words[i] = string(word[0]-32) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

// isFunctionName reports common SQL functions used in expression indexes.
func isFunctionName(s string) bool {
	switch strings.ToLower(s) {
	case "lower", "upper", "trim", "ltrim", "rtrim", "md5", "sha1", "sha256", "encode", "decode":
		return true
	}
	return false
}
