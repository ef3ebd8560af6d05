//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// WorkerRecord is one queue-consumer process instance.
type WorkerRecord struct {
	ID         int64  `json:"id"                     db:"id"`
	SenderName string `json:"sender_name"            db:"sender_name"`
	PID        int    `json:"pid"                    db:"pid"`
	StartedAt  int64  `json:"started_at"             db:"started_at"`
	PingedAt   int64  `json:"pinged_at"              db:"pinged_at"`
	StoppedAt  *int64 `json:"stopped_at,omitempty"   db:"stopped_at"`
	FinishedAt *int64 `json:"finished_at,omitempty"  db:"finished_at"`
	LastExecID *int64 `json:"last_exec_id,omitempty" db:"last_exec_id"`
}

// IsStopped reports whether stopped_at is set.
func (w *WorkerRecord) IsStopped() bool {
	return w.StoppedAt != nil && *w.StoppedAt != 0
}

// IsFinished reports whether finished_at is set.
func (w *WorkerRecord) IsFinished() bool {
	return w.FinishedAt != nil && *w.FinishedAt != 0
}

// Duration returns how long the worker ran, or has been running so far when unfinished.
func (w *WorkerRecord) Duration(now time.Time) time.Duration {
	end := now.Unix()
	if w.IsFinished() {
		end = *w.FinishedAt
	}
	return time.Duration(end-w.StartedAt) * time.Second
}

// WorkerState is the derived lifecycle state of a worker.
type WorkerState string

const (
	// WorkerStateRunning means the worker is executing a job.
	WorkerStateRunning WorkerState = "running"
	// WorkerStateIdle means the worker is alive with nothing in flight.
	WorkerStateIdle WorkerState = "idle"
	// WorkerStateStopped means a stop was requested but the process has not finished.
	WorkerStateStopped WorkerState = "stopped"
	// WorkerStateFinished means the process exited.
	WorkerStateFinished WorkerState = "finished"
)

// Valid returns true if the state is one of the defined states.
func (s WorkerState) Valid() bool {
	switch s {
	case WorkerStateRunning, WorkerStateIdle, WorkerStateStopped, WorkerStateFinished:
		return true
	}
	return false
}

// IsIdle is true when there is no last execution or it has completed.
func IsIdle(lastExec *ExecRecord) bool {
	return lastExec == nil || lastExec.IsDone()
}

// DeriveWorkerState computes the worker state from its timestamps and last execution.
// Finished wins over stopped, stopped wins over idle/running.
func DeriveWorkerState(w *WorkerRecord, lastExec *ExecRecord) WorkerState {
	switch {
	case w.IsFinished():
		return WorkerStateFinished
	case w.IsStopped():
		return WorkerStateStopped
	case IsIdle(lastExec):
		return WorkerStateIdle
	default:
		return WorkerStateRunning
	}
}

// Page size bounds of worker listings.
const (
	DefaultWorkerPageSize = 50
	MaxWorkerPageSize     = 1000
)

// WorkerListOptions groups filters and pagination for worker listing.
type WorkerListOptions struct {
	Sender string
	// ActiveOnly keeps workers without finished_at.
	ActiveOnly bool
	Limit      int
	Offset     int
}

// Normalize applies the default page size, caps the limit and clamps a negative offset.
func (o WorkerListOptions) Normalize() WorkerListOptions {
	o.Limit = clampLimit(o.Limit, DefaultWorkerPageSize, MaxWorkerPageSize)
	o.Offset = max(o.Offset, 0)
	return o
}
