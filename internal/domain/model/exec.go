//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// ExecRecord is one execution attempt of a pushed job by a worker.
type ExecRecord struct {
	ID        int64   `json:"id"                  db:"id"`
	PushID    int64   `json:"push_id"             db:"push_id"`
	WorkerID  *int64  `json:"worker_id,omitempty" db:"worker_id"`
	Attempt   int     `json:"attempt"             db:"attempt"`
	StartedAt int64   `json:"started_at"          db:"started_at"`
	DoneAt    *int64  `json:"done_at,omitempty"   db:"done_at"`
	Error     *string `json:"error,omitempty"     db:"error"`
	Retry     bool    `json:"retry"               db:"retry"`
}

// IsDone reports whether the execution has a completion timestamp.
func (e *ExecRecord) IsDone() bool {
	return e != nil && e.DoneAt != nil
}

// HasError reports whether the execution recorded an error.
func (e *ExecRecord) HasError() bool {
	return e != nil && e.Error != nil
}

// ExecTotals aggregates the executions owned by a worker.
// The zero value is the answer for a worker without executions.
type ExecTotals struct {
	Started int `json:"started" db:"started"`
	Done    int `json:"done"    db:"done"`
}
