package database

import (
	"fmt"

	"github.com/target/mmk-queue-monitor/internal/domain/model"
	"github.com/target/mmk-queue-monitor/internal/domain/query"
)

// Table aliases used by push queries.
const (
	PushAlias     = "p"
	LastExecAlias = "le"
	failExecAlias = "fe"
)

// Tables names the three queue tables.
type Tables struct {
	Push   string
	Exec   string
	Worker string
}

// DefaultTables returns the table names created by the bundled migrations.
func DefaultTables() Tables {
	return Tables{Push: "queue_push", Exec: "queue_exec", Worker: "queue_worker"}
}

// WithDefaults fills empty names with the defaults.
func (t Tables) WithDefaults() Tables {
	def := DefaultTables()
	if t.Push == "" {
		t.Push = def.Push
	}
	if t.Exec == "" {
		t.Exec = def.Exec
	}
	if t.Worker == "" {
		t.Worker = def.Worker
	}
	return t
}

// PushFilter is the SQL rendering of a query.Expr over the push table.
type PushFilter struct {
	Conditions []Condition
	// NeedsLastExec is set when a condition references the last execution alias.
	NeedsLastExec bool
}

// Options returns list options applying the filter, including the last execution join.
func (f PushFilter) Options(t Tables) []ListQueryOption {
	opts := []ListQueryOption{WithAlias(PushAlias), WithConditions(f.Conditions...)}
	if f.NeedsLastExec {
		opts = append(opts, WithLeftJoin(LastExecJoin(t)))
	}
	return opts
}

// LastExecJoin joins the execution referenced by push.last_exec_id.
func LastExecJoin(t Tables) Join {
	return Join{Table: t.Exec, Alias: LastExecAlias, Column: "id", On: PushAlias + ".last_exec_id"}
}

// PushColumn returns the qualified column of a push field.
func PushColumn(f model.PushField) string {
	return PushAlias + "." + string(f)
}

// TranslatePushExpr renders expr as conditions over the push table aliased as "p".
func TranslatePushExpr(d Dialect, t Tables, expr query.Expr) (PushFilter, error) {
	if d == nil {
		d = Postgres{}
	}
	t = t.WithDefaults()

	var out PushFilter
	for _, term := range query.Terms(expr) {
		switch e := term.(type) {
		case query.None:
			return PushFilter{Conditions: []Condition{WhereRawCond("1 = 0")}}, nil
		case query.Eq:
			if !e.Field.Valid() {
				return PushFilter{}, fmt.Errorf("unknown push field %q", e.Field)
			}
			out.Conditions = append(out.Conditions, WhereCond(PushColumn(e.Field), Equal, e.Value))
		case query.Contains:
			if !e.Field.Valid() {
				return PushFilter{}, fmt.Errorf("unknown push field %q", e.Field)
			}
			out.Conditions = append(out.Conditions, WhereCond(PushColumn(e.Field), Like, ContainsPattern(e.Value)))
		case query.Range:
			if !e.Field.Valid() {
				return PushFilter{}, fmt.Errorf("unknown push field %q", e.Field)
			}
			out.Conditions = append(out.Conditions,
				WhereCond(PushColumn(e.Field), GreaterThanOrEqual, e.From),
				WhereCond(PushColumn(e.Field), LessThanOrEqual, e.To),
			)
		case query.InScope:
			cond, usesLastExec, err := ScopeCondition(d, t, e.Scope)
			if err != nil {
				return PushFilter{}, err
			}
			out.Conditions = append(out.Conditions, cond)
			out.NeedsLastExec = out.NeedsLastExec || usesLastExec
		default:
			return PushFilter{}, fmt.Errorf("unsupported expression %T", term)
		}
	}
	return out, nil
}

// ScopeCondition returns the SQL predicate of a scope. usesLastExec reports
// whether it references the last execution join.
func ScopeCondition(d Dialect, t Tables, scope model.Scope) (cond Condition, usesLastExec bool, err error) {
	col := func(alias, name string) string { return d.QuoteIdent(alias, name) }
	var (
		pStopped  = col(PushAlias, "stopped_at")
		pLastExec = col(PushAlias, "last_exec_id")
		leDone    = col(LastExecAlias, "done_at")
		leRetry   = col(LastExecAlias, "retry")
		leError   = col(LastExecAlias, "error")
	)
	done := fmt.Sprintf("%s IS NOT NULL AND NOT %s", leDone, leRetry)

	var sql string
	switch scope {
	case model.ScopeWaiting:
		sql = fmt.Sprintf("%s IS NULL AND (%s IS NULL OR (%s IS NOT NULL AND %s))", pStopped, pLastExec, leDone, leRetry)
		usesLastExec = true
	case model.ScopeInProgress:
		sql = fmt.Sprintf("%s IS NOT NULL AND %s IS NULL", pLastExec, leDone)
		usesLastExec = true
	case model.ScopeDone:
		sql = done
		usesLastExec = true
	case model.ScopeSuccess:
		sql = fmt.Sprintf("%s AND %s IS NULL", done, leError)
		usesLastExec = true
	case model.ScopeBuried:
		sql = fmt.Sprintf("%s AND %s IS NOT NULL", done, leError)
		usesLastExec = true
	case model.ScopeFailed:
		sql = fmt.Sprintf("EXISTS (SELECT 1 FROM %s AS %s WHERE %s = %s AND %s IS NOT NULL)",
			d.QuoteIdent(t.Exec), d.QuoteIdent(failExecAlias),
			col(failExecAlias, "push_id"), col(PushAlias, "id"),
			col(failExecAlias, "error"))
	case model.ScopeStopped:
		sql = fmt.Sprintf("%s IS NOT NULL", pStopped)
	default:
		return Condition{}, false, fmt.Errorf("unknown scope %q", scope)
	}
	return WhereRawCond("(" + sql + ")"), usesLastExec, nil
}
