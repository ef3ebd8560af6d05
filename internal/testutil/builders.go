// Package testutil provides testing utilities and helpers for the queue monitor.
package testutil

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/target/mmk-queue-monitor/internal/domain/model"
)

// PushBuilder provides a fluent interface for building PushRecord objects for testing.
type PushBuilder struct {
	p *model.PushRecord
}

// NewPush creates a new PushBuilder with sensible defaults.
func NewPush() *PushBuilder {
	return &PushBuilder{p: &model.PushRecord{
		SenderName: "queue",
		JobUID:     "1",
		JobClass:   `app\jobs\MailJob`,
		JobData:    `{"to":"ops@example.com"}`,
		TTR:        300,
		PushedAt:   TestTime().Unix(),
	}}
}

// WithID sets the id.
func (b *PushBuilder) WithID(id int64) *PushBuilder {
	b.p.ID = id
	return b
}

// WithSender sets the sender name.
func (b *PushBuilder) WithSender(name string) *PushBuilder {
	b.p.SenderName = name
	return b
}

// WithUID sets the queue-assigned job uid.
func (b *PushBuilder) WithUID(uid string) *PushBuilder {
	b.p.JobUID = uid
	return b
}

// WithClass sets the job class.
func (b *PushBuilder) WithClass(class string) *PushBuilder {
	b.p.JobClass = class
	return b
}

// WithData sets the serialized payload.
func (b *PushBuilder) WithData(data string) *PushBuilder {
	b.p.JobData = data
	return b
}

// WithPushedAt sets the push timestamp.
func (b *PushBuilder) WithPushedAt(ts int64) *PushBuilder {
	b.p.PushedAt = ts
	return b
}

// WithLastExec sets last_exec_id.
func (b *PushBuilder) WithLastExec(id int64) *PushBuilder {
	b.p.LastExecID = Int64Ptr(id)
	return b
}

// WithStoppedAt sets stopped_at.
func (b *PushBuilder) WithStoppedAt(ts int64) *PushBuilder {
	b.p.StoppedAt = Int64Ptr(ts)
	return b
}

// Build returns the built record.
func (b *PushBuilder) Build() *model.PushRecord {
	return b.p
}

// ExecBuilder provides a fluent interface for building ExecRecord objects for testing.
type ExecBuilder struct {
	e *model.ExecRecord
}

// NewExec creates a started, unfinished first attempt of pushID.
func NewExec(pushID int64) *ExecBuilder {
	return &ExecBuilder{e: &model.ExecRecord{
		PushID:    pushID,
		Attempt:   1,
		StartedAt: TestTime().Unix(),
	}}
}

// WithID sets the id.
func (b *ExecBuilder) WithID(id int64) *ExecBuilder {
	b.e.ID = id
	return b
}

// WithWorker sets worker_id.
func (b *ExecBuilder) WithWorker(id int64) *ExecBuilder {
	b.e.WorkerID = Int64Ptr(id)
	return b
}

// WithAttempt sets the attempt number.
func (b *ExecBuilder) WithAttempt(n int) *ExecBuilder {
	b.e.Attempt = n
	return b
}

// Done marks the execution finished at ts.
func (b *ExecBuilder) Done(ts int64) *ExecBuilder {
	b.e.DoneAt = Int64Ptr(ts)
	return b
}

// Failed records an error message.
func (b *ExecBuilder) Failed(msg string) *ExecBuilder {
	b.e.Error = stringPtr(msg)
	return b
}

// Retry sets the retry flag.
func (b *ExecBuilder) Retry() *ExecBuilder {
	b.e.Retry = true
	return b
}

// Build returns the built record.
func (b *ExecBuilder) Build() *model.ExecRecord {
	return b.e
}

// WorkerBuilder provides a fluent interface for building WorkerRecord objects for testing.
type WorkerBuilder struct {
	w *model.WorkerRecord
}

// NewWorker creates a running worker started at TestTime.
func NewWorker() *WorkerBuilder {
	start := TestTime().Unix()
	return &WorkerBuilder{w: &model.WorkerRecord{
		SenderName: "queue",
		PID:        4242,
		StartedAt:  start,
		PingedAt:   start,
	}}
}

// WithID sets the id.
func (b *WorkerBuilder) WithID(id int64) *WorkerBuilder {
	b.w.ID = id
	return b
}

// WithSender sets the sender name.
func (b *WorkerBuilder) WithSender(name string) *WorkerBuilder {
	b.w.SenderName = name
	return b
}

// WithLastExec sets last_exec_id.
func (b *WorkerBuilder) WithLastExec(id int64) *WorkerBuilder {
	b.w.LastExecID = Int64Ptr(id)
	return b
}

// Stopped sets stopped_at.
func (b *WorkerBuilder) Stopped(ts int64) *WorkerBuilder {
	b.w.StoppedAt = Int64Ptr(ts)
	return b
}

// Finished sets finished_at.
func (b *WorkerBuilder) Finished(ts int64) *WorkerBuilder {
	b.w.FinishedAt = Int64Ptr(ts)
	return b
}

// Build returns the built record.
func (b *WorkerBuilder) Build() *model.WorkerRecord {
	return b.w
}

// InsertPush writes p into the Postgres queue_push table and sets its id.
func InsertPush(ctx context.Context, db *sql.DB, p *model.PushRecord) error {
	err := db.QueryRowContext(ctx, `
		INSERT INTO queue_push (sender_name, job_uid, job_class, job_data, ttr, delay, pushed_at, last_exec_id, stopped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		p.SenderName, p.JobUID, p.JobClass, p.JobData, p.TTR, p.Delay, p.PushedAt, p.LastExecID, p.StoppedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert push: %w", err)
	}
	return nil
}

// InsertWorker writes w into queue_worker and sets its id.
func InsertWorker(ctx context.Context, db *sql.DB, w *model.WorkerRecord) error {
	err := db.QueryRowContext(ctx, `
		INSERT INTO queue_worker (sender_name, pid, started_at, pinged_at, stopped_at, finished_at, last_exec_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		w.SenderName, w.PID, w.StartedAt, w.PingedAt, w.StoppedAt, w.FinishedAt, w.LastExecID,
	).Scan(&w.ID)
	if err != nil {
		return fmt.Errorf("insert worker: %w", err)
	}
	return nil
}

// InsertExec writes e into queue_exec, sets its id and points the push's last_exec_id at it.
func InsertExec(ctx context.Context, db *sql.DB, e *model.ExecRecord) error {
	err := db.QueryRowContext(ctx, `
		INSERT INTO queue_exec (push_id, worker_id, attempt, started_at, done_at, error, retry)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		e.PushID, e.WorkerID, e.Attempt, e.StartedAt, e.DoneAt, e.Error, e.Retry,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("insert exec: %w", err)
	}
	if _, err := db.ExecContext(ctx, `UPDATE queue_push SET last_exec_id = $1 WHERE id = $2`, e.ID, e.PushID); err != nil {
		return fmt.Errorf("link last exec: %w", err)
	}
	return nil
}
