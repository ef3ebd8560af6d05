// Package database builds dialect-aware SQL for the queue monitor tables.
package database

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

type ConditionType string

const (
	Equal              ConditionType = "="
	NotEqual           ConditionType = "!="
	GreaterThan        ConditionType = ">"
	LessThan           ConditionType = "<"
	LessThanOrEqual    ConditionType = "<="
	GreaterThanOrEqual ConditionType = ">="
	Like               ConditionType = "LIKE"
	In                 ConditionType = "IN"
	IsNull             ConditionType = "IS NULL"
	IsNotNull          ConditionType = "IS NOT NULL"
	Custom             ConditionType = "CUSTOM"
	defaultLimit                     = -1
	defaultOffset                    = -1
	// maxAliasParts is the maximum number of parts when splitting on " AS ".
	maxAliasParts = 2
	countAll      = "COUNT(*)"
)

var (
	asRegex          = regexp.MustCompile(`(?i)\s+AS\s+`)
	placeholderRegex = regexp.MustCompile(`\$(\d+)`)
)

type Condition struct {
	Field    string
	Type     ConditionType
	Value    any
	rawQuery *string
}

func WhereCond(field string, condType ConditionType, value any) Condition {
	if condType == Custom {
		//nolint:forbidigo // panic prevents misuse; custom conditions must provide raw SQL via WhereRawCond.
		panic("Use WhereRawCond for Custom type")
	}
	return Condition{
		rawQuery: nil,
		Field:    field,
		Type:     condType,
		Value:    value,
	}
}

// WhereRawCond adds a raw SQL fragment. Parameters are referenced as $1..$n
// and rewritten to the dialect's placeholders.
func WhereRawCond(rawQuery string, params ...any) Condition {
	queryStr := rawQuery
	var value any = params
	if len(params) == 0 {
		value = nil
	} else if len(params) == 1 {
		value = params[0]
	}
	// For multiple parameters, keep the slice as-is so handleCustomCondition can process it

	return Condition{
		Field:    "",
		Type:     Custom,
		rawQuery: &queryStr,
		Value:    value,
	}
}

// Join is a LEFT JOIN of Table (as Alias) on Alias.Column = On.
type Join struct {
	Table  string
	Alias  string
	Column string
	On     string
}

type ListQueryOptions struct {
	Dialect    Dialect
	Table      string
	Alias      string
	Columns    []string
	Joins      []Join
	CountOnly  bool
	Conditions []Condition
	GroupBy    []string
	OrderBy    string
	OrderDir   string
	Limit      int
	Offset     int
}

type ListQueryOption func(*ListQueryOptions)

func NewListQueryOptions(d Dialect, table string, opts ...ListQueryOption) *ListQueryOptions {
	if d == nil {
		d = Postgres{}
	}
	options := &ListQueryOptions{
		Dialect:    d,
		Table:      table,
		Columns:    []string{},
		CountOnly:  false,
		Conditions: []Condition{},
		OrderBy:    "",
		OrderDir:   "",
		Limit:      defaultLimit,
		Offset:     defaultOffset,
	}

	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithAlias sets the alias of the main table.
func WithAlias(alias string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Alias = alias
	}
}

// WithColumns sets the columns to select.
func WithColumns(cols ...string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Columns = cols
	}
}

// WithLeftJoin adds a LEFT JOIN.
func WithLeftJoin(j Join) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Joins = append(o.Joins, j)
	}
}

// WithCondition adds a single condition.
func WithCondition(cond Condition) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Conditions = append(o.Conditions, cond)
	}
}

// WithConditions appends several conditions.
func WithConditions(conds ...Condition) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Conditions = append(o.Conditions, conds...)
	}
}

// WithGroupBy sets the grouping columns.
func WithGroupBy(cols ...string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.GroupBy = cols
	}
}

// WithOrderBy sets the ordering column and direction.
func WithOrderBy(column, direction string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.OrderBy = column
		o.OrderDir = direction
	}
}

// WithLimit sets the limit. Accepts 0.
func WithLimit(limit int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if limit >= 0 {
			o.Limit = limit
		}
	}
}

// WithOffset sets the offset. Accepts 0.
func WithOffset(offset int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if offset >= 0 {
			o.Offset = offset
		}
	}
}

// WithCountOnly sets the query to count only.
func WithCountOnly() ListQueryOption {
	return func(o *ListQueryOptions) {
		o.CountOnly = true
	}
}

// builder accumulates arguments and hands out placeholders in order.
type builder struct {
	d    Dialect
	args []any
}

func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return b.d.Placeholder(len(b.args))
}

// ident sanitizes qualified identifiers like "table.column".
func (b *builder) ident(name string) string {
	return b.d.QuoteIdent(strings.Split(name, ".")...)
}

// processColumnSpec processes a column specification, handling aliases and COUNT(*).
// Supports formats like:
// - "column" -> "column"
// - "p.column AS alias" -> "p"."column" AS "alias"
// - "COUNT(*) AS count" -> COUNT(*) AS "count".
func (b *builder) processColumnSpec(columnSpec string) string {
	if asRegex.MatchString(columnSpec) {
		parts := asRegex.Split(columnSpec, maxAliasParts)
		if len(parts) == maxAliasParts {
			columnExpr := strings.TrimSpace(parts[0])
			alias := strings.TrimSpace(parts[1])
			return fmt.Sprintf("%s AS %s", b.processColumnExpression(columnExpr), b.d.QuoteIdent(alias))
		}
	}
	return b.processColumnExpression(columnSpec)
}

func (b *builder) processColumnExpression(expr string) string {
	if strings.EqualFold(expr, countAll) {
		return countAll
	}
	return b.ident(expr)
}

func (b *builder) tableRef(table, alias string) string {
	ref := b.d.QuoteIdent(table)
	if alias != "" {
		ref += " AS " + b.d.QuoteIdent(alias)
	}
	return ref
}

// buildSelectClause generates the SELECT part of the query with sanitized columns.
func (b *builder) buildSelectClause(options *ListQueryOptions) string {
	if options.CountOnly {
		return "SELECT COUNT(*) "
	}
	if len(options.Columns) == 0 {
		return "SELECT * "
	}

	processedColumns := make([]string, len(options.Columns))
	for i, col := range options.Columns {
		processedColumns[i] = b.processColumnSpec(col)
	}

	return fmt.Sprintf("SELECT %s ", strings.Join(processedColumns, ", "))
}

func (b *builder) buildJoinClause(joins []Join) string {
	var clause strings.Builder
	for _, j := range joins {
		if j.Table == "" || j.Column == "" || j.On == "" {
			continue
		}
		col := j.Column
		if j.Alias != "" {
			col = j.Alias + "." + j.Column
		}
		fmt.Fprintf(&clause, " LEFT JOIN %s ON %s = %s", b.tableRef(j.Table, j.Alias), b.ident(col), b.ident(j.On))
	}
	return clause.String()
}

// buildGroupByClause generates GROUP BY with sanitized columns.
func (b *builder) buildGroupByClause(cols []string) string {
	if len(cols) == 0 {
		return ""
	}
	sanitized := make([]string, len(cols))
	for i, c := range cols {
		sanitized[i] = b.ident(c)
	}
	return " GROUP BY " + strings.Join(sanitized, ", ")
}

// buildPaginationAndOrderClause generates ORDER BY, LIMIT, OFFSET parts with sanitized OrderBy and validated OrderDir.
func (b *builder) buildPaginationAndOrderClause(options *ListQueryOptions) string {
	var clause strings.Builder

	if options.OrderBy != "" {
		clause.WriteString(" ORDER BY ")
		clause.WriteString(b.ident(options.OrderBy))
		upperOrderDir := strings.ToUpper(options.OrderDir)
		if upperOrderDir == "ASC" || upperOrderDir == "DESC" {
			clause.WriteString(" ")
			clause.WriteString(upperOrderDir)
		}
	}

	// Add LIMIT clause only if it was explicitly set (not the default sentinel)
	if options.Limit != defaultLimit {
		clause.WriteString(" LIMIT " + b.bind(options.Limit))
	}

	// Add OFFSET clause only if it was explicitly set (not the default sentinel).
	// MySQL has no OFFSET without LIMIT.
	if options.Offset != defaultOffset && (options.Limit != defaultLimit || b.d.Numbered()) {
		clause.WriteString(" OFFSET " + b.bind(options.Offset))
	}

	return clause.String()
}

// BuildListQuery constructs a SQL query string and arguments from options, sanitizing identifiers.
// It handles SELECT, JOIN, WHERE, GROUP BY, ORDER BY, LIMIT, and OFFSET clauses.
//
// Example usage:
//
//	options := NewListQueryOptions(Postgres{}, "queue_push",
//		WithAlias("p"),
//		WithColumns("p.job_class AS name", "COUNT(*) AS count"),
//		WithCondition(WhereCond("p.sender_name", Equal, "queue")),
//		WithGroupBy("p.job_class"),
//		WithOrderBy("name", "ASC"),
//	)
//
//	query, args := BuildListQuery(options)
func BuildListQuery(options *ListQueryOptions) (string, []any) {
	if options == nil {
		return "", nil
	}
	b := &builder{d: options.Dialect}
	if b.d == nil {
		b.d = Postgres{}
	}

	var query strings.Builder

	// SELECT ... FROM ...
	query.WriteString(b.buildSelectClause(options))
	query.WriteString("FROM ")
	query.WriteString(b.tableRef(options.Table, options.Alias))
	query.WriteString(b.buildJoinClause(options.Joins))

	// WHERE ...
	if whereClause := b.buildWhereClause(options.Conditions); whereClause != "" {
		query.WriteString(" ")
		query.WriteString(whereClause)
	}

	// return early for CountOnly
	if options.CountOnly {
		return query.String(), b.args
	}

	query.WriteString(b.buildGroupByClause(options.GroupBy))

	// ORDER BY ... LIMIT ... OFFSET ...
	query.WriteString(b.buildPaginationAndOrderClause(options))

	return query.String(), b.args
}

// Assignment is one column = value pair of an UPDATE.
type Assignment struct {
	Column string
	Value  any
}

// BuildUpdateQuery constructs an UPDATE statement. Conditions are required so
// a missing filter never rewrites the whole table.
func BuildUpdateQuery(d Dialect, table string, set []Assignment, conds ...Condition) (string, []any, error) {
	if d == nil {
		d = Postgres{}
	}
	if len(set) == 0 {
		return "", nil, fmt.Errorf("update %s: no columns to set", table)
	}
	b := &builder{d: d}

	parts := make([]string, len(set))
	for i, a := range set {
		parts[i] = b.ident(a.Column) + " = " + b.bind(a.Value)
	}

	whereClause := b.buildWhereClause(conds)
	if whereClause == "" {
		return "", nil, fmt.Errorf("update %s: missing conditions", table)
	}
	query := fmt.Sprintf("UPDATE %s SET %s %s", d.QuoteIdent(table), strings.Join(parts, ", "), whereClause)
	return query, b.args, nil
}

func (b *builder) handleStandardCondition(cond Condition, sanitizedField string) string {
	op := string(cond.Type)
	if cond.Type == Like {
		op = b.d.LikeOperator()
	}
	return fmt.Sprintf("%s %s %s", sanitizedField, op, b.bind(cond.Value))
}

func (b *builder) handleInCondition(cond Condition, sanitizedField string) string {
	// Accept any slice type via reflection
	rv := reflect.ValueOf(cond.Value)
	if rv.Kind() != reflect.Slice || rv.Len() == 0 {
		return ""
	}

	placeholders := make([]string, rv.Len())
	for i := range rv.Len() {
		placeholders[i] = b.bind(rv.Index(i).Interface())
	}
	return fmt.Sprintf("%s IN (%s)", sanitizedField, strings.Join(placeholders, ", "))
}

func (b *builder) handleCustomCondition(cond Condition) string {
	if cond.rawQuery == nil || *cond.rawQuery == "" {
		return ""
	}
	conditionStr := *cond.rawQuery

	if cond.Value == nil {
		return conditionStr
	}

	// NOTE: RawQuery itself is NOT sanitized here.
	// Normalize to slice: treat any []any as-is, otherwise wrap single value
	var params []any
	if paramSlice, ok := cond.Value.([]any); ok {
		params = paramSlice
	} else {
		params = []any{cond.Value}
	}

	// Numbered dialects reuse one placeholder per distinct $n, positional ones
	// bind the value again at each occurrence.
	idxMap := make(map[int]string)
	return placeholderRegex.ReplaceAllStringFunc(conditionStr, func(m string) string {
		n, err := strconv.Atoi(m[1:])
		if err != nil || n < 1 || n > len(params) {
			return m
		}
		if ph, ok := idxMap[n]; ok && b.d.Numbered() {
			return ph
		}
		ph := b.bind(params[n-1])
		idxMap[n] = ph
		return ph
	})
}

// processCondition renders a single condition, binding its arguments.
func (b *builder) processCondition(cond Condition) string {
	if cond.Type == Custom {
		return b.handleCustomCondition(cond)
	}
	if cond.Field == "" {
		return ""
	}
	sanitizedField := b.ident(cond.Field)

	switch cond.Type {
	case In:
		return b.handleInCondition(cond, sanitizedField)
	case IsNull, IsNotNull:
		return fmt.Sprintf("%s %s", sanitizedField, cond.Type)
	case Equal, NotEqual, GreaterThan, LessThan, LessThanOrEqual, GreaterThanOrEqual, Like:
		return b.handleStandardCondition(cond, sanitizedField)
	case Custom:
	}
	return ""
}

// buildWhereClause generates the WHERE part of the query with sanitized fields.
func (b *builder) buildWhereClause(inputConditions []Condition) string {
	conditions := make([]string, 0, len(inputConditions))
	for _, cond := range inputConditions {
		if conditionStr := b.processCondition(cond); conditionStr != "" {
			conditions = append(conditions, conditionStr)
		}
	}

	if len(conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(conditions, " AND ")
}
