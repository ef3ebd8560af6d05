// Package model defines the records and value types shared by the queue monitor.
package model

// PushRecord is one job enqueue event recorded by the queue.
// Timestamps are epoch seconds, as written by the queue library.
type PushRecord struct {
	ID         int64  `json:"id"                     db:"id"`
	SenderName string `json:"sender_name"            db:"sender_name"`
	JobUID     string `json:"job_uid"                db:"job_uid"`
	JobClass   string `json:"job_class"              db:"job_class"`
	JobData    string `json:"job_data"               db:"job_data"`
	TTR        int    `json:"ttr"                    db:"ttr"`
	Delay      int    `json:"delay"                  db:"delay"`
	PushedAt   int64  `json:"pushed_at"              db:"pushed_at"`
	LastExecID *int64 `json:"last_exec_id,omitempty" db:"last_exec_id"`
	StoppedAt  *int64 `json:"stopped_at,omitempty"   db:"stopped_at"`
}

// IsStopped reports whether the job was marked as stopped.
func (p *PushRecord) IsStopped() bool {
	return p.StoppedAt != nil && *p.StoppedAt != 0
}

// Page size bounds of push searches.
const (
	DefaultPushPageSize = 20
	MaxPushPageSize     = 1000
)

// PushListOptions groups pagination parameters for push searches.
type PushListOptions struct {
	Limit  int
	Offset int
}

// Normalize applies the default page size, caps the limit and clamps a negative offset.
func (o PushListOptions) Normalize() PushListOptions {
	o.Limit = clampLimit(o.Limit, DefaultPushPageSize, MaxPushPageSize)
	o.Offset = max(o.Offset, 0)
	return o
}

func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxLimit)
}

// PushPage is one page of push search results.
type PushPage struct {
	Items  []*PushRecord `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// NamedCount is a grouped aggregate row.
type NamedCount struct {
	Name  string `json:"name"  db:"name"`
	Count int    `json:"count" db:"count"`
}

// PushField identifies a push column that can be filtered, grouped or listed.
type PushField string

const (
	// PushFieldSenderName is the queue component that pushed the job.
	PushFieldSenderName PushField = "sender_name"
	// PushFieldJobClass is the job's class name.
	PushFieldJobClass PushField = "job_class"
	// PushFieldJobData is the serialized job payload.
	PushFieldJobData PushField = "job_data"
	// PushFieldPushedAt is the push timestamp.
	PushFieldPushedAt PushField = "pushed_at"
)

// Valid returns true if the field is a known push column.
func (f PushField) Valid() bool {
	switch f {
	case PushFieldSenderName, PushFieldJobClass, PushFieldJobData, PushFieldPushedAt:
		return true
	}
	return false
}
