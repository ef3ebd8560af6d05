package filter

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/mmk-queue-monitor/internal/domain/model"
	"github.com/target/mmk-queue-monitor/internal/domain/query"
	"github.com/target/mmk-queue-monitor/internal/validation"
)

func TestJobFilter_ScopeProducesSingleScopeTerm(t *testing.T) {
	for _, opt := range ScopeList() {
		t.Run(string(opt.Scope), func(t *testing.T) {
			f := &JobFilter{Is: string(opt.Scope)}
			require.Empty(t, f.Validate())
			assert.Equal(t, query.InScope{Scope: opt.Scope}, f.Expr())
		})
	}
}

func TestJobFilter_UnknownScopeFailsClosed(t *testing.T) {
	for _, is := range []string{"pending", "Waiting", "in_progress", "all"} {
		t.Run(is, func(t *testing.T) {
			f := &JobFilter{Is: is, Sender: "queue"}
			errs := f.Validate()
			assert.Equal(t, validation.Errors{FieldIs: "Scope is invalid."}, errs)
			assert.Equal(t, query.None{}, f.Expr())
		})
	}
}

func TestJobFilter_PushedPattern(t *testing.T) {
	tests := []struct {
		pushed string
		valid  bool
	}{
		{"2024-01-01 - 2024-01-31", true},
		{"  2024-01-01 - 2024-01-31  ", true},
		{"2024-1-1 - 2024-01-31", false},
		{"2024-01-01-2024-01-31", false},
		{"2024-01-01 to 2024-01-31", false},
		{"2024-01-01", false},
		{"yesterday", false},
	}
	for _, tt := range tests {
		t.Run(tt.pushed, func(t *testing.T) {
			f := &JobFilter{Pushed: tt.pushed}
			errs := f.Validate()
			if tt.valid {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, "Pushed is invalid.", errs[FieldPushed])
			assert.Equal(t, query.None{}, f.Expr())
		})
	}
}

func TestJobFilter_ImpossibleDateDropsRange(t *testing.T) {
	f := &JobFilter{Pushed: "2024-02-30 - 2024-03-01", Sender: "queue", Location: time.UTC}
	require.Empty(t, f.Validate())

	_, _, ok := f.PushedRange()
	assert.False(t, ok)
	assert.Equal(t, query.Eq{Field: model.PushFieldSenderName, Value: "queue"}, f.Expr())

	f = &JobFilter{Pushed: "2024-02-30 - 2024-03-01", Location: time.UTC}
	assert.Equal(t, query.All{}, f.Expr())
}

func TestJobFilter_PushedRangeInclusiveEndOfDay(t *testing.T) {
	f := &JobFilter{Pushed: "2024-01-01 - 2024-01-02", Location: time.UTC}
	from, to, ok := f.PushedRange()
	require.True(t, ok)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Unix(), from)
	assert.Equal(t, time.Date(2024, 1, 2, 23, 59, 59, 0, time.UTC).Unix(), to)

	inside := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC).Unix()
	outside := time.Date(2024, 1, 3, 0, 0, 1, 0, time.UTC).Unix()
	assert.True(t, inside >= from && inside <= to)
	assert.False(t, outside >= from && outside <= to)

	assert.Equal(t, query.Range{Field: model.PushFieldPushedAt, From: from, To: to}, f.Expr())
}

func TestJobFilter_PushedRangeUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	f := &JobFilter{Pushed: "2024-01-01 - 2024-01-01", Location: loc}
	from, to, ok := f.PushedRange()
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 12, 31, 21, 0, 0, 0, time.UTC).Unix(), from)
	assert.Equal(t, int64(24*60*60-1), to-from)
}

func TestJobFilter_ExprComposesAllTerms(t *testing.T) {
	f := &JobFilter{
		Is:       " buried ",
		Sender:   " queue ",
		Class:    "Mail",
		Pushed:   "2024-01-01 - 2024-01-01",
		Contains: "user@example.com",
		Location: time.UTC,
	}
	from, to, _ := f.PushedRange()

	want := query.AndExpr{Terms: []query.Expr{
		query.Eq{Field: model.PushFieldSenderName, Value: "queue"},
		query.Contains{Field: model.PushFieldJobClass, Value: "Mail"},
		query.Range{Field: model.PushFieldPushedAt, From: from, To: to},
		query.Contains{Field: model.PushFieldJobData, Value: "user@example.com"},
		query.InScope{Scope: model.ScopeBuried},
	}}
	assert.Equal(t, want, f.Expr())
	assert.Equal(t, "queue", f.Sender, "fields are trimmed in place")
}

func TestJobFilter_EmptyMatchesAll(t *testing.T) {
	f := &JobFilter{Sender: "   "}
	assert.Empty(t, f.Validate())
	assert.Equal(t, query.All{}, f.Expr())
}

func TestFromValues(t *testing.T) {
	t.Run("single values", func(t *testing.T) {
		f := FromValues(url.Values{
			"is":     {"done"},
			"sender": {"queue"},
			"other":  {"ignored"},
		}, WithLocation(time.UTC))
		assert.Equal(t, "done", f.Is)
		assert.Equal(t, "queue", f.Sender)
		assert.Equal(t, time.UTC, f.Location)
		assert.Empty(t, f.Validate())
	})

	t.Run("repeated values are not strings", func(t *testing.T) {
		f := FromValues(url.Values{
			"class":    {"A", "B"},
			"contains": {"x", "y"},
			"is":       {"nope"},
		})
		errs := f.Validate()
		assert.Equal(t, validation.Errors{
			FieldClass:    "Job must be a string.",
			FieldContains: "Contains must be a string.",
			FieldIs:       "Scope is invalid.",
		}, errs)
		assert.Equal(t, query.None{}, f.Expr())
	})

	t.Run("round trip", func(t *testing.T) {
		in := url.Values{"is": {"failed"}, "pushed": {"2024-01-01 - 2024-01-02"}}
		assert.Equal(t, in, FromValues(in).Values())
	})
}

func TestLabelsAndScopeList(t *testing.T) {
	assert.Equal(t, map[string]string{
		"is":       "Scope",
		"sender":   "Sender",
		"class":    "Job",
		"pushed":   "Pushed",
		"contains": "Contains",
	}, Labels())

	list := ScopeList()
	require.Len(t, list, 7)
	assert.Equal(t, model.ScopeWaiting, list[0].Scope)
	assert.Equal(t, "Has failed attempts", list[5].Label)
}
