//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// Scope is a coarse status filter over pushed jobs.
type Scope string

const (
	// ScopeWaiting matches jobs that are not stopped and wait for a (first or retried) execution.
	ScopeWaiting Scope = "waiting"
	// ScopeInProgress matches jobs whose last execution has not completed.
	ScopeInProgress Scope = "in-progress"
	// ScopeDone matches jobs whose last execution completed without a pending retry.
	ScopeDone Scope = "done"
	// ScopeSuccess matches done jobs whose last execution has no error.
	ScopeSuccess Scope = "success"
	// ScopeBuried matches done jobs whose last execution failed.
	ScopeBuried Scope = "buried"
	// ScopeFailed matches jobs with at least one failed execution.
	ScopeFailed Scope = "failed"
	// ScopeStopped matches jobs that were marked as stopped.
	ScopeStopped Scope = "stopped"
)

// ScopeOption pairs a scope with its display label.
type ScopeOption struct {
	Scope Scope  `json:"value"`
	Label string `json:"label"`
}

// Scopes returns every scope in display order.
func Scopes() []ScopeOption {
	return []ScopeOption{
		{Scope: ScopeWaiting, Label: "Waiting"},
		{Scope: ScopeInProgress, Label: "In progress"},
		{Scope: ScopeDone, Label: "Done"},
		{Scope: ScopeSuccess, Label: "Done successfully"},
		{Scope: ScopeBuried, Label: "Buried"},
		{Scope: ScopeFailed, Label: "Has failed attempts"},
		{Scope: ScopeStopped, Label: "Stopped"},
	}
}

// Valid returns true if the scope is one of the known keywords.
func (s Scope) Valid() bool {
	for _, opt := range Scopes() {
		if opt.Scope == s {
			return true
		}
	}
	return false
}

// PushState carries what is needed to evaluate scopes for one push.
type PushState struct {
	Push     *PushRecord
	LastExec *ExecRecord
	HasFails bool
}

// Matches evaluates the scope against an in-memory push state.
// The conditions mirror the SQL predicates in internal/data/database, including
// the LEFT JOIN behavior when the last execution row no longer exists.
func (s Scope) Matches(st PushState) bool {
	if st.Push == nil {
		return false
	}
	last := st.LastExec
	if st.Push.LastExecID == nil {
		last = nil
	}

	switch s {
	case ScopeWaiting:
		if st.Push.StoppedAt != nil {
			return false
		}
		return st.Push.LastExecID == nil || (last.IsDone() && last.Retry)
	case ScopeInProgress:
		return st.Push.LastExecID != nil && !last.IsDone()
	case ScopeDone:
		return last.IsDone() && !last.Retry
	case ScopeSuccess:
		return last.IsDone() && !last.Retry && !last.HasError()
	case ScopeBuried:
		return last.IsDone() && !last.Retry && last.HasError()
	case ScopeFailed:
		return st.HasFails
	case ScopeStopped:
		return st.Push.StoppedAt != nil
	}
	return false
}

// MatchingScopes returns the scopes the push state currently falls into, in display order.
func MatchingScopes(st PushState) []Scope {
	out := make([]Scope, 0, 2)
	for _, opt := range Scopes() {
		if opt.Scope.Matches(st) {
			out = append(out, opt.Scope)
		}
	}
	return out
}
