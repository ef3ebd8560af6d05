package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/target/mmk-queue-monitor/internal/core"
	"github.com/target/mmk-queue-monitor/internal/data"
	"github.com/target/mmk-queue-monitor/internal/domain/filter"
	"github.com/target/mmk-queue-monitor/internal/domain/model"
)

// Names of the memoized lists.
const (
	ListSenders = "senders"
	ListClasses = "classes"
)

// JobSearchServiceOptions groups dependencies for JobSearchService.
type JobSearchServiceOptions struct {
	Repos  JobSearchRepos         // Required: Pushes must be set
	Lists  *core.ListCacheService // Optional: memoizes sender and class lists
	Logger *slog.Logger           // Optional: structured logger
}

// JobSearchRepos bundles the repositories read by JobSearchService.
type JobSearchRepos struct {
	Pushes       core.PushRepository
	Execs        core.ExecRepository
	TimeProvider data.TimeProvider
}

// JobSearchService runs job filters against the push history.
type JobSearchService struct {
	pushes core.PushRepository
	execs  core.ExecRepository
	clock  data.TimeProvider
	lists  *core.ListCacheService
	logger *slog.Logger
}

// FilterOptions is everything a search form needs to render its inputs.
type FilterOptions struct {
	Labels  map[string]string   `json:"labels"`
	Scopes  []model.ScopeOption `json:"scopes"`
	Senders []string            `json:"senders"`
	Classes []string            `json:"classes"`
}

// JobDetails is one push with its execution attempts.
type JobDetails struct {
	Push   *model.PushRecord   `json:"push"`
	Execs  []*model.ExecRecord `json:"execs"`
	Scopes []model.Scope       `json:"scopes"`
}

// NewJobSearchService constructs a new JobSearchService.
func NewJobSearchService(opts JobSearchServiceOptions) (*JobSearchService, error) {
	if opts.Repos.Pushes == nil {
		return nil, errors.New("PushRepository is required")
	}
	clock := opts.Repos.TimeProvider
	if clock == nil {
		clock = &data.RealTimeProvider{}
	}
	lists := opts.Lists
	if lists == nil {
		lists = core.NewListCacheService(core.ListCacheServiceOptions{Logger: opts.Logger})
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &JobSearchService{
		pushes: opts.Repos.Pushes,
		execs:  opts.Repos.Execs,
		clock:  clock,
		lists:  lists,
		logger: logger.With("component", "job_search_service"),
	}, nil
}

// MustNewJobSearchService constructs a JobSearchService and panics on error.
func MustNewJobSearchService(opts JobSearchServiceOptions) *JobSearchService {
	svc, err := NewJobSearchService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create JobSearchService: %v", err))
	}
	return svc
}

// Senders returns every sender name seen in the push history, ascending.
// The list is memoized and may be stale for up to the cache TTL.
func (s *JobSearchService) Senders(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, ListSenders, model.PushFieldSenderName)
}

// Classes returns every job class seen in the push history, ascending.
func (s *JobSearchService) Classes(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, ListClasses, model.PushFieldJobClass)
}

func (s *JobSearchService) distinct(ctx context.Context, name string, field model.PushField) ([]string, error) {
	values, err := s.lists.Strings(ctx, name, func(ctx context.Context) ([]string, error) {
		return s.pushes.Distinct(ctx, field)
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", name, err)
	}
	return values, nil
}

// Search returns one page of pushes matching f, newest first. An invalid
// filter returns an empty page.
func (s *JobSearchService) Search(ctx context.Context, f *filter.JobFilter, opts model.PushListOptions) (*model.PushPage, error) {
	opts = opts.Normalize()
	expr := f.Expr()
	page := &model.PushPage{Items: []*model.PushRecord{}, Limit: opts.Limit, Offset: opts.Offset}

	items, err := s.pushes.Search(ctx, expr, opts)
	if err != nil {
		return nil, fmt.Errorf("search jobs: %w", err)
	}
	total, err := s.pushes.Count(ctx, expr)
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}
	if items != nil {
		page.Items = items
	}
	page.Total = total

	s.logger.DebugContext(ctx, "job search", "expr", expr.String(), "total", total)
	return page, nil
}

// SearchClasses counts pushes matching f per job class.
func (s *JobSearchService) SearchClasses(ctx context.Context, f *filter.JobFilter) ([]model.NamedCount, error) {
	out, err := s.pushes.CountBy(ctx, f.Expr(), model.PushFieldJobClass)
	if err != nil {
		return nil, fmt.Errorf("count jobs by class: %w", err)
	}
	return out, nil
}

// SearchSenders counts pushes matching f per sender.
func (s *JobSearchService) SearchSenders(ctx context.Context, f *filter.JobFilter) ([]model.NamedCount, error) {
	out, err := s.pushes.CountBy(ctx, f.Expr(), model.PushFieldSenderName)
	if err != nil {
		return nil, fmt.Errorf("count jobs by sender: %w", err)
	}
	return out, nil
}

// FilterOptions loads the sender and class lists concurrently.
func (s *JobSearchService) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	out := &FilterOptions{Labels: filter.Labels(), Scopes: filter.ScopeList()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Senders, err = s.Senders(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		out.Classes, err = s.Classes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// InvalidateLists drops the memoized sender and class lists.
func (s *JobSearchService) InvalidateLists(ctx context.Context) error {
	if err := s.lists.Invalidate(ctx, ListSenders, ListClasses); err != nil {
		return fmt.Errorf("invalidate lists: %w", err)
	}
	s.logger.InfoContext(ctx, "cached lists invalidated")
	return nil
}

// GetJob returns a push, its attempts in start order and the scopes it matches now.
func (s *JobSearchService) GetJob(ctx context.Context, id int64) (*JobDetails, error) {
	push, err := s.pushes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job %d: %w", id, err)
	}
	details := &JobDetails{Push: push, Execs: []*model.ExecRecord{}}
	if s.execs == nil {
		details.Scopes = model.MatchingScopes(model.PushState{Push: push})
		return details, nil
	}

	execs, err := s.execs.ListByPush(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list attempts of job %d: %w", id, err)
	}
	if execs != nil {
		details.Execs = execs
	}

	st := model.PushState{Push: push}
	for _, e := range details.Execs {
		if push.LastExecID != nil && e.ID == *push.LastExecID {
			st.LastExec = e
		}
		if e.HasError() {
			st.HasFails = true
		}
	}
	details.Scopes = model.MatchingScopes(st)
	return details, nil
}

// StopJob marks a push as stopped at the current time.
func (s *JobSearchService) StopJob(ctx context.Context, id int64) error {
	now := s.clock.Now().Unix()
	if err := s.pushes.MarkStopped(ctx, id, now); err != nil {
		return fmt.Errorf("stop job %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "job stopped", "id", id, "stopped_at", now)
	return nil
}
