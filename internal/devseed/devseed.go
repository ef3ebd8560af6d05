// Package devseed fills an empty queue history with demo rows for local development.
package devseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/target/mmk-queue-monitor/internal/data/database"
	"github.com/target/mmk-queue-monitor/internal/data/memstore"
	"github.com/target/mmk-queue-monitor/internal/domain/model"
)

// uidNamespace keeps demo job uids stable between runs.
var uidNamespace = uuid.MustParse("6f1c3a4e-2b7d-4c1e-9a0f-5d8e7b6a4c3d")

// Sink receives seeded rows. Implementations assign ids in place.
type Sink interface {
	AddPush(ctx context.Context, p *model.PushRecord) error
	AddWorker(ctx context.Context, w *model.WorkerRecord) error
	AddExec(ctx context.Context, e *model.ExecRecord) error
}

// Summary counts what Run wrote.
type Summary struct {
	Pushes  int
	Workers int
	Execs   int
}

type demoJob struct {
	sender string
	class  string
	data   string
	ago    time.Duration
	// attempts lists outcomes in order: "ok", "fail", "retry" or "open".
	attempts []string
	stopped  bool
}

var demoJobs = []demoJob{
	{sender: "queue", class: `app\jobs\MailJob`, data: `{"to":"ops@example.com"}`, ago: 5 * time.Minute},
	{sender: "queue", class: `app\jobs\MailJob`, data: `{"to":"dev@example.com"}`, ago: 20 * time.Minute, attempts: []string{"ok"}},
	{sender: "queue", class: `app\jobs\ReportJob`, data: `{"report":"daily"}`, ago: 2 * time.Minute, attempts: []string{"open"}},
	{sender: "mail", class: `app\jobs\MailJob`, data: `{"to":"100%_sure@example.com"}`, ago: 26 * time.Hour, attempts: []string{"fail"}},
	{sender: "mail", class: `app\jobs\ReportJob`, data: `{"report":"weekly"}`, ago: 3 * time.Hour, attempts: []string{"retry", "ok"}},
	{sender: "billing", class: `app\jobs\InvoiceJob`, data: `{"invoice":42}`, ago: 50 * time.Hour, attempts: []string{"retry"}},
	{sender: "billing", class: `app\jobs\InvoiceJob`, data: `{"invoice":43}`, ago: 90 * time.Minute, stopped: true},
}

// Run writes the demo workers, pushes and executions into sink relative to now.
func Run(ctx context.Context, sink Sink, now time.Time, logger *slog.Logger) (Summary, error) {
	if sink == nil {
		return Summary{}, errors.New("seed sink is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	var sum Summary
	base := now.Unix()

	workers := map[string]*model.WorkerRecord{}
	for i, sender := range []string{"queue", "mail", "billing"} {
		w := &model.WorkerRecord{
			SenderName: sender,
			PID:        4100 + i,
			StartedAt:  base - int64((i+1)*3600),
			PingedAt:   base - int64(i*10),
		}
		if sender == "billing" {
			finished := base - 600
			w.FinishedAt = &finished
		}
		if err := sink.AddWorker(ctx, w); err != nil {
			return sum, fmt.Errorf("seed worker %s: %w", sender, err)
		}
		workers[sender] = w
		sum.Workers++
	}

	for i, job := range demoJobs {
		pushedAt := base - int64(job.ago/time.Second)
		p := &model.PushRecord{
			SenderName: job.sender,
			JobUID:     uuid.NewSHA1(uidNamespace, []byte(strconv.Itoa(i))).String(),
			JobClass:   job.class,
			JobData:    job.data,
			TTR:        300,
			PushedAt:   pushedAt,
		}
		if job.stopped {
			stoppedAt := pushedAt + 30
			p.StoppedAt = &stoppedAt
		}
		if err := sink.AddPush(ctx, p); err != nil {
			return sum, fmt.Errorf("seed push %d: %w", i, err)
		}
		sum.Pushes++

		workerID := workers[job.sender].ID
		started := pushedAt + 1
		for n, outcome := range job.attempts {
			e := &model.ExecRecord{PushID: p.ID, WorkerID: &workerID, Attempt: n + 1, StartedAt: started}
			if outcome != "open" {
				done := started + 4
				e.DoneAt = &done
			}
			if outcome == "fail" || outcome == "retry" {
				msg := "RuntimeException: upstream timed out"
				e.Error = &msg
				e.Retry = outcome == "retry"
			}
			if err := sink.AddExec(ctx, e); err != nil {
				return sum, fmt.Errorf("seed exec %d of push %d: %w", n+1, p.ID, err)
			}
			sum.Execs++
			started += 60
		}
	}

	logger.InfoContext(ctx, "demo queue history seeded",
		"pushes", sum.Pushes, "workers", sum.Workers, "execs", sum.Execs)
	return sum, nil
}

// StoreSink writes into a memstore.Store.
type StoreSink struct {
	Store *memstore.Store
}

// AddPush implements Sink.
func (s StoreSink) AddPush(_ context.Context, p *model.PushRecord) error {
	p.ID = s.Store.AddPush(*p)
	return nil
}

// AddWorker implements Sink.
func (s StoreSink) AddWorker(_ context.Context, w *model.WorkerRecord) error {
	w.ID = s.Store.AddWorker(*w)
	return nil
}

// AddExec implements Sink.
func (s StoreSink) AddExec(_ context.Context, e *model.ExecRecord) error {
	id, err := s.Store.AddExec(*e)
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// SQLSink inserts into the queue tables of a live database. Each execution
// also moves the push's and the worker's last_exec_id, like the queue does.
type SQLSink struct {
	DB      *sql.DB
	Dialect database.Dialect
	Tables  database.Tables
}

// NewSQLSink builds a SQLSink for the given driver.
func NewSQLSink(db *sql.DB, driver string, tables database.Tables) (*SQLSink, error) {
	d, err := database.DialectFor(driver)
	if err != nil {
		return nil, err
	}
	return &SQLSink{DB: db, Dialect: d, Tables: tables.WithDefaults()}, nil
}

// AddPush implements Sink.
func (s *SQLSink) AddPush(ctx context.Context, p *model.PushRecord) error {
	id, err := s.insert(ctx, s.Tables.Push,
		[]string{"sender_name", "job_uid", "job_class", "job_data", "ttr", "delay", "pushed_at", "stopped_at"},
		p.SenderName, p.JobUID, p.JobClass, p.JobData, p.TTR, p.Delay, p.PushedAt, p.StoppedAt)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// AddWorker implements Sink.
func (s *SQLSink) AddWorker(ctx context.Context, w *model.WorkerRecord) error {
	id, err := s.insert(ctx, s.Tables.Worker,
		[]string{"sender_name", "pid", "started_at", "pinged_at", "stopped_at", "finished_at"},
		w.SenderName, w.PID, w.StartedAt, w.PingedAt, w.StoppedAt, w.FinishedAt)
	if err != nil {
		return err
	}
	w.ID = id
	return nil
}

// AddExec implements Sink.
func (s *SQLSink) AddExec(ctx context.Context, e *model.ExecRecord) error {
	id, err := s.insert(ctx, s.Tables.Exec,
		[]string{"push_id", "worker_id", "attempt", "started_at", "done_at", "error", "retry"},
		e.PushID, e.WorkerID, e.Attempt, e.StartedAt, e.DoneAt, e.Error, e.Retry)
	if err != nil {
		return err
	}
	e.ID = id

	if err := s.linkLastExec(ctx, s.Tables.Push, e.PushID, id); err != nil {
		return err
	}
	if e.WorkerID != nil {
		return s.linkLastExec(ctx, s.Tables.Worker, *e.WorkerID, id)
	}
	return nil
}

func (s *SQLSink) insert(ctx context.Context, table string, cols []string, args ...any) (int64, error) {
	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = s.Dialect.QuoteIdent(c)
		marks[i] = s.Dialect.Placeholder(i + 1)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.Dialect.QuoteIdent(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))

	if s.Dialect.Numbered() {
		var id int64
		if err := s.DB.QueryRowContext(ctx, q+" RETURNING "+s.Dialect.QuoteIdent("id"), args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("insert into %s: %w", table, err)
		}
		return id, nil
	}

	res, err := s.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert into %s: last insert id: %w", table, err)
	}
	return id, nil
}

func (s *SQLSink) linkLastExec(ctx context.Context, table string, rowID, execID int64) error {
	q := fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = %s",
		s.Dialect.QuoteIdent(table), s.Dialect.QuoteIdent("last_exec_id"), s.Dialect.Placeholder(1),
		s.Dialect.QuoteIdent("id"), s.Dialect.Placeholder(2))
	if _, err := s.DB.ExecContext(ctx, q, execID, rowID); err != nil {
		return fmt.Errorf("link last exec on %s: %w", table, err)
	}
	return nil
}

// IsEmpty reports whether the push table has no rows.
func (s *SQLSink) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	q := "SELECT COUNT(*) FROM " + s.Dialect.QuoteIdent(s.Tables.Push)
	if err := s.DB.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return false, fmt.Errorf("count pushes: %w", err)
	}
	return n == 0, nil
}
