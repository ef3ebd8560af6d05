package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/mmk-queue-monitor/internal/domain/model"
	"github.com/target/mmk-queue-monitor/internal/domain/query"
)

func buildPushSearch(t *testing.T, d Dialect, expr query.Expr) (string, []any) {
	t.Helper()
	tables := DefaultTables()
	f, err := TranslatePushExpr(d, tables, expr)
	require.NoError(t, err)
	opts := append(f.Options(tables), WithColumns("p.id"), WithOrderBy("p.id", "DESC"))
	return BuildListQuery(NewListQueryOptions(d, tables.Push, opts...))
}

func TestTranslatePushExpr_AllTerms(t *testing.T) {
	expr := query.And(
		query.Eq{Field: model.PushFieldSenderName, Value: "queue"},
		query.Contains{Field: model.PushFieldJobClass, Value: "50%_off"},
		query.Range{Field: model.PushFieldPushedAt, From: 100, To: 200},
		query.Contains{Field: model.PushFieldJobData, Value: `a\b`},
	)

	sql, args := buildPushSearch(t, Postgres{}, expr)
	assert.Equal(t,
		`SELECT "p"."id" FROM "queue_push" AS "p" WHERE "p"."sender_name" = $1 AND "p"."job_class" LIKE $2`+
			` AND "p"."pushed_at" >= $3 AND "p"."pushed_at" <= $4 AND "p"."job_data" LIKE $5 ORDER BY "p"."id" DESC`,
		sql)
	assert.Equal(t, []any{"queue", `%50\%\_off%`, int64(100), int64(200), `%a\\b%`}, args)

	sql, _ = buildPushSearch(t, MySQL{}, expr)
	assert.Contains(t, sql, "`p`.`job_class` LIKE BINARY ?")
	assert.NotContains(t, sql, "LEFT JOIN")
}

func TestTranslatePushExpr_None(t *testing.T) {
	sql, args := buildPushSearch(t, Postgres{}, query.None{})
	assert.Equal(t, `SELECT "p"."id" FROM "queue_push" AS "p" WHERE 1 = 0 ORDER BY "p"."id" DESC`, sql)
	assert.Empty(t, args)
}

func TestTranslatePushExpr_All(t *testing.T) {
	f, err := TranslatePushExpr(Postgres{}, Tables{}, query.All{})
	require.NoError(t, err)
	assert.Empty(t, f.Conditions)
	assert.False(t, f.NeedsLastExec)
}

func TestTranslatePushExpr_ScopeFragments(t *testing.T) {
	want := map[model.Scope]string{
		model.ScopeWaiting:    `("p"."stopped_at" IS NULL AND ("p"."last_exec_id" IS NULL OR ("le"."done_at" IS NOT NULL AND "le"."retry")))`,
		model.ScopeInProgress: `("p"."last_exec_id" IS NOT NULL AND "le"."done_at" IS NULL)`,
		model.ScopeDone:       `("le"."done_at" IS NOT NULL AND NOT "le"."retry")`,
		model.ScopeSuccess:    `("le"."done_at" IS NOT NULL AND NOT "le"."retry" AND "le"."error" IS NULL)`,
		model.ScopeBuried:     `("le"."done_at" IS NOT NULL AND NOT "le"."retry" AND "le"."error" IS NOT NULL)`,
		model.ScopeFailed:     `(EXISTS (SELECT 1 FROM "queue_exec" AS "fe" WHERE "fe"."push_id" = "p"."id" AND "fe"."error" IS NOT NULL))`,
		model.ScopeStopped:    `("p"."stopped_at" IS NOT NULL)`,
	}

	for _, opt := range model.Scopes() {
		t.Run(string(opt.Scope), func(t *testing.T) {
			sql, _ := buildPushSearch(t, Postgres{}, query.InScope{Scope: opt.Scope})
			fragment := want[opt.Scope]
			require.NotEmpty(t, fragment)
			assert.Contains(t, sql, "WHERE "+fragment+" ORDER BY")

			// Exactly one scope predicate is applied.
			for other, frag := range want {
				if other != opt.Scope && strings.Contains(sql, frag) {
					t.Errorf("scope %s also applied %s", opt.Scope, other)
				}
			}

			usesJoin := opt.Scope != model.ScopeFailed && opt.Scope != model.ScopeStopped
			assert.Equal(t, usesJoin, strings.Contains(sql, `LEFT JOIN "queue_exec" AS "le" ON "le"."id" = "p"."last_exec_id"`))
		})
	}
}

func TestTranslatePushExpr_CustomTables(t *testing.T) {
	tables := Tables{Push: "mon_push", Exec: "mon_exec"}
	f, err := TranslatePushExpr(MySQL{}, tables, query.InScope{Scope: model.ScopeFailed})
	require.NoError(t, err)
	sql, _ := BuildListQuery(NewListQueryOptions(MySQL{}, tables.Push, append(f.Options(tables.WithDefaults()), WithCountOnly())...))
	assert.Equal(t,
		"SELECT COUNT(*) FROM `mon_push` AS `p` WHERE (EXISTS (SELECT 1 FROM `mon_exec` AS `fe` WHERE `fe`.`push_id` = `p`.`id` AND `fe`.`error` IS NOT NULL))",
		sql)
}

func TestTranslatePushExpr_Errors(t *testing.T) {
	_, err := TranslatePushExpr(Postgres{}, Tables{}, query.Eq{Field: "pid", Value: "1"})
	assert.Error(t, err)
	_, err = TranslatePushExpr(Postgres{}, Tables{}, query.InScope{Scope: "pending"})
	assert.Error(t, err)
}

func TestDialectFor(t *testing.T) {
	for _, name := range []string{"pgx", "postgres", " PostgreSQL "} {
		d, err := DialectFor(name)
		require.NoError(t, err)
		assert.Equal(t, Postgres{}, d)
	}
	d, err := DialectFor("mysql")
	require.NoError(t, err)
	assert.Equal(t, MySQL{}, d)

	_, err = DialectFor("sqlite")
	assert.Error(t, err)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, EscapeLike("100%"))
	assert.Equal(t, `a\_b`, EscapeLike("a_b"))
	assert.Equal(t, `c:\\tmp`, EscapeLike(`c:\tmp`))
	assert.Equal(t, `%Mail%`, ContainsPattern("Mail"))
}
