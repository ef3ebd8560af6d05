// Package filter turns raw job search input into a validated query expression.
package filter

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/target/mmk-queue-monitor/internal/domain/model"
	"github.com/target/mmk-queue-monitor/internal/domain/query"
	"github.com/target/mmk-queue-monitor/internal/validation"
)

// Field names as they appear in query strings.
const (
	FieldIs       = "is"
	FieldSender   = "sender"
	FieldClass    = "class"
	FieldPushed   = "pushed"
	FieldContains = "contains"
)

const (
	dateLayout     = "2006-01-02"
	rangeSeparator = " - "
)

var pushedPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} - \d{4}-\d{2}-\d{2}$`)

var fieldOrder = []string{FieldIs, FieldSender, FieldClass, FieldPushed, FieldContains}

var labels = map[string]string{
	FieldIs:       "Scope",
	FieldSender:   "Sender",
	FieldClass:    "Job",
	FieldPushed:   "Pushed",
	FieldContains: "Contains",
}

// JobFilter holds the criteria of one job search request.
type JobFilter struct {
	Is       string `json:"is,omitempty"`
	Sender   string `json:"sender,omitempty"`
	Class    string `json:"class,omitempty"`
	Pushed   string `json:"pushed,omitempty"`
	Contains string `json:"contains,omitempty"`

	// Location used to interpret the pushed date range. Nil means time.Local.
	Location *time.Location `json:"-"`

	inputErrors validation.Errors
}

// Option configures a JobFilter built by FromValues.
type Option func(*JobFilter)

// WithLocation sets the time zone of the pushed date range.
func WithLocation(loc *time.Location) Option {
	return func(f *JobFilter) { f.Location = loc }
}

// FromValues reads filter fields from query-string values. A field given more
// than once is not a single string and is recorded as a validation error.
func FromValues(values url.Values, opts ...Option) *JobFilter {
	f := &JobFilter{}
	targets := map[string]*string{
		FieldIs:       &f.Is,
		FieldSender:   &f.Sender,
		FieldClass:    &f.Class,
		FieldPushed:   &f.Pushed,
		FieldContains: &f.Contains,
	}
	for _, name := range fieldOrder {
		vs := values[name]
		switch len(vs) {
		case 0:
		case 1:
			*targets[name] = vs[0]
		default:
			if f.inputErrors == nil {
				f.inputErrors = validation.Errors{}
			}
			f.inputErrors[name] = labels[name] + " must be a string."
		}
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Labels returns the display label of every filter field.
func Labels() map[string]string {
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}

// ScopeList returns the selectable scopes in display order.
func ScopeList() []model.ScopeOption {
	return model.Scopes()
}

func scopeValues() []string {
	scopes := model.Scopes()
	out := make([]string, len(scopes))
	for i, s := range scopes {
		out[i] = string(s.Scope)
	}
	return out
}

// Normalize trims surrounding whitespace from every field.
func (f *JobFilter) Normalize() {
	f.Is = strings.TrimSpace(f.Is)
	f.Sender = strings.TrimSpace(f.Sender)
	f.Class = strings.TrimSpace(f.Class)
	f.Pushed = strings.TrimSpace(f.Pushed)
	f.Contains = strings.TrimSpace(f.Contains)
}

// Validate trims the fields and returns every field error. An empty result means valid.
func (f *JobFilter) Validate() validation.Errors {
	f.Normalize()

	fv := validation.New()
	for field, msg := range f.inputErrors {
		fv.Add(field, msg)
	}
	fv.Validate(FieldIs, f.Is, validation.In(labels[FieldIs], scopeValues())).
		Validate(FieldPushed, f.Pushed, validation.Pattern(labels[FieldPushed], pushedPattern))
	return fv.Errors()
}

// Valid reports whether the filter passes validation.
func (f *JobFilter) Valid() bool {
	return len(f.Validate()) == 0
}

// PushedRange returns the inclusive epoch-second bounds of the pushed date
// range. ok is false when the field is empty or either date fails to parse.
func (f *JobFilter) PushedRange() (from, to int64, ok bool) {
	pushed := strings.TrimSpace(f.Pushed)
	begin, end, found := strings.Cut(pushed, rangeSeparator)
	if !found {
		return 0, 0, false
	}
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	b, err := time.ParseInLocation(dateLayout, begin, loc)
	if err != nil {
		return 0, 0, false
	}
	e, err := time.ParseInLocation(dateLayout, end, loc)
	if err != nil {
		return 0, 0, false
	}
	endOfDay := time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, 0, loc)
	return b.Unix(), endOfDay.Unix(), true
}

// Expr builds the search predicate. An invalid filter yields query.None so a
// bad request never returns unfiltered rows. A range with an impossible date
// passes validation but is left out of the predicate.
func (f *JobFilter) Expr() query.Expr {
	if !f.Valid() {
		return query.None{}
	}

	terms := make([]query.Expr, 0, 5)
	if f.Sender != "" {
		terms = append(terms, query.Eq{Field: model.PushFieldSenderName, Value: f.Sender})
	}
	if f.Class != "" {
		terms = append(terms, query.Contains{Field: model.PushFieldJobClass, Value: f.Class})
	}
	if from, to, ok := f.PushedRange(); ok {
		terms = append(terms, query.Range{Field: model.PushFieldPushedAt, From: from, To: to})
	}
	if f.Contains != "" {
		terms = append(terms, query.Contains{Field: model.PushFieldJobData, Value: f.Contains})
	}
	if scope := model.Scope(f.Is); scope.Valid() {
		terms = append(terms, query.InScope{Scope: scope})
	}
	return query.And(terms...)
}

// Values encodes the filter back into query-string form, skipping empty fields.
func (f *JobFilter) Values() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set(FieldIs, f.Is)
	set(FieldSender, f.Sender)
	set(FieldClass, f.Class)
	set(FieldPushed, f.Pushed)
	set(FieldContains, f.Contains)
	return v
}
