// Package query defines a backend-neutral predicate tree over push records.
// Repositories translate an Expr into their own query language: SQL in
// internal/data/database, Go evaluation in internal/data/memstore.
package query

import (
	"fmt"
	"strings"

	"github.com/target/mmk-queue-monitor/internal/domain/model"
)

// Expr is a predicate node. The set of node types is closed.
type Expr interface {
	isExpr()
	String() string
}

// None matches no rows.
type None struct{}

// All matches every row.
type All struct{}

// Eq matches rows where Field equals Value exactly.
type Eq struct {
	Field model.PushField
	Value string
}

// Contains matches rows where Field contains Value as a case-sensitive substring.
type Contains struct {
	Field model.PushField
	Value string
}

// Range matches rows where Field lies in [From, To], epoch seconds inclusive.
type Range struct {
	Field model.PushField
	From  int64
	To    int64
}

// InScope matches rows in the given status scope.
type InScope struct {
	Scope model.Scope
}

// AndExpr matches rows satisfying every term.
type AndExpr struct {
	Terms []Expr
}

func (None) isExpr()     {}
func (All) isExpr()      {}
func (Eq) isExpr()       {}
func (Contains) isExpr() {}
func (Range) isExpr()    {}
func (InScope) isExpr()  {}
func (AndExpr) isExpr()  {}

func (None) String() string       { return "NONE" }
func (All) String() string        { return "ALL" }
func (e Eq) String() string       { return fmt.Sprintf("%s = %q", e.Field, e.Value) }
func (e Contains) String() string { return fmt.Sprintf("%s ~ %q", e.Field, e.Value) }
func (e Range) String() string    { return fmt.Sprintf("%s in [%d, %d]", e.Field, e.From, e.To) }
func (e InScope) String() string  { return fmt.Sprintf("scope(%s)", e.Scope) }

func (e AndExpr) String() string {
	parts := make([]string, len(e.Terms))
	for i, t := range e.Terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}

// And combines terms. Nested ands are flattened, All terms are dropped and a
// None term collapses the whole expression to None.
func And(terms ...Expr) Expr {
	flat := make([]Expr, 0, len(terms))
	for _, t := range terms {
		switch v := t.(type) {
		case nil, All:
			continue
		case None:
			return None{}
		case AndExpr:
			inner := And(v.Terms...)
			if _, ok := inner.(None); ok {
				return None{}
			}
			if a, ok := inner.(AndExpr); ok {
				flat = append(flat, a.Terms...)
			} else if _, ok := inner.(All); !ok {
				flat = append(flat, inner)
			}
		default:
			flat = append(flat, t)
		}
	}
	switch len(flat) {
	case 0:
		return All{}
	case 1:
		return flat[0]
	}
	return AndExpr{Terms: flat}
}

// Terms returns the conjuncts of e: the terms of an AndExpr, nothing for All,
// or e itself.
func Terms(e Expr) []Expr {
	switch v := e.(type) {
	case nil, All:
		return nil
	case AndExpr:
		return v.Terms
	}
	return []Expr{e}
}

// IsNone reports whether e can never match.
func IsNone(e Expr) bool {
	_, ok := e.(None)
	return ok
}
