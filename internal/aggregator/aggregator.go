// Package aggregator produces the unified activity feed behind the
// dashboard: four concurrent range reads (commits, pull requests, issues,
// reviews), normalized into one tagged record shape and merged into a
// single reverse-chronological sequence.
package aggregator

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/trungle/activity-dashboard/cfg"
	"github.com/trungle/activity-dashboard/internal/model"
	"github.com/trungle/activity-dashboard/internal/store"
	"github.com/trungle/activity-dashboard/pkg/log"
	"golang.org/x/sync/errgroup"
)

// Store is the slice of the data store the aggregator reads from.
type Store interface {
	ListRepos(ctx context.Context) ([]model.Repo, error)
	ListCommits(ctx context.Context, q store.Query) ([]model.Commit, error)
	ListPullRequests(ctx context.Context, q store.Query) ([]model.PullRequest, error)
	ListIssues(ctx context.Context, q store.Query) ([]model.Issue, error)
	ListReviews(ctx context.Context, q store.Query) ([]model.Review, error)
}

// Scope selects which registered repositories a refresh covers.
type Scope struct {
	All   bool
	Names []string
}

func ScopeAll() Scope {
	return Scope{All: true}
}

func ScopeOne(name string) Scope {
	return Scope{Names: []string{name}}
}

func ScopeSet(names ...string) Scope {
	return Scope{Names: names}
}

// Filter is the full input of one refresh cycle. Author is an exact match
// and wins over Authors when both are set. Active gates execution: while
// false (e.g. the user is still composing a custom range) no fetch happens
// and the previous result stays published.
type Filter struct {
	Scope   Scope
	Range   DateRange
	Start   *time.Time
	End     *time.Time
	Author  string
	Authors []string
	Active  bool
}

// Aggregator owns the published feed. Each Refresh is a cycle: it cancels
// the previous cycle's context, claims a cycle number, and only publishes
// if it is still the newest cycle when it finishes. A cycle that started
// earlier can therefore never overwrite one that started later, no matter
// which resolves first.
type Aggregator struct {
	Logger log.Logger
	Config *cfg.Config
	Store  Store

	mu      sync.Mutex
	cycle   uint64
	cancel  context.CancelFunc
	records []ActivityRecord
	loading bool
	err     error

	// test seam, defaults to time.Now
	now func() time.Time
}

func NewAggregator(logger log.Logger, config *cfg.Config, st Store) (*Aggregator, error) {
	return &Aggregator{
		Logger: logger,
		Config: config,
		Store:  st,
		now:    time.Now,
	}, nil
}

// Snapshot returns the currently published feed together with the loading
// flag and the last error.
func (a *Aggregator) Snapshot() ([]ActivityRecord, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.records, a.loading, a.err
}

// Refresh runs one aggregation cycle and returns what it published. When
// the filter gates the fetch (inactive, or a custom range missing a date)
// the previous result is returned unchanged.
func (a *Aggregator) Refresh(ctx context.Context, f Filter) ([]ActivityRecord, error) {
	if !f.Active {
		return a.previous()
	}
	since, until, ok := f.Range.Bounds(a.now(), f.Start, f.End)
	if !ok {
		return a.previous()
	}

	cycle, cctx := a.beginCycle(ctx)
	records, err := a.run(cctx, f, since, until)
	return a.publish(cycle, records, err)
}

func (a *Aggregator) previous() ([]ActivityRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.records, a.err
}

// beginCycle cancels the in-flight cycle, if any, and claims the next
// cycle number.
func (a *Aggregator) beginCycle(ctx context.Context) (uint64, context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
	cctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.cycle++
	a.loading = true
	return a.cycle, cctx
}

func (a *Aggregator) run(ctx context.Context, f Filter, since, until *time.Time) ([]ActivityRecord, error) {
	repos, err := a.Store.ListRepos(ctx)
	if err != nil {
		return nil, err
	}

	ids, names := resolveScope(repos, f.Scope)
	if len(ids) == 0 {
		// Nothing in scope, skip the activity queries entirely
		return []ActivityRecord{}, nil
	}

	q := store.Query{
		RepositoryIDs: ids,
		Since:         since,
		Until:         until,
		Author:        f.Author,
	}
	if q.Author == "" {
		q.Authors = f.Authors
	}

	var (
		commits []model.Commit
		prs     []model.PullRequest
		issues  []model.Issue
		reviews []model.Review
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		commits, err = a.Store.ListCommits(egCtx, q)
		return err
	})
	eg.Go(func() error {
		var err error
		prs, err = a.Store.ListPullRequests(egCtx, q)
		return err
	})
	eg.Go(func() error {
		var err error
		issues, err = a.Store.ListIssues(egCtx, q)
		return err
	})
	eg.Go(func() error {
		var err error
		reviews, err = a.Store.ListReviews(egCtx, q)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make([]ActivityRecord, 0, len(commits)+len(prs)+len(issues)+len(reviews))
	for _, c := range commits {
		out = append(out, fromCommit(c, names))
	}
	for _, p := range prs {
		out = append(out, fromPullRequest(p, names))
	}
	for _, i := range issues {
		out = append(out, fromIssue(i, names))
	}
	for _, r := range reviews {
		out = append(out, fromReview(r, names))
	}

	// The store already orders each kind, but correctness only depends on
	// this merged sort. Stable keeps equal timestamps in concatenation
	// order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	return out, nil
}

// publish writes the cycle result into the shared state, unless a newer
// cycle has been claimed since, in which case the result is dropped.
func (a *Aggregator) publish(cycle uint64, records []ActivityRecord, err error) ([]ActivityRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if cycle != a.cycle {
		// Stale cycle, a newer refresh owns the output now
		return records, err
	}

	a.loading = false
	if err != nil {
		a.records = nil
		a.err = err
		return nil, err
	}
	a.records = records
	a.err = nil
	return records, nil
}

// resolveScope filters the registry down to the requested scope and builds
// the id to name mapping used during normalization.
func resolveScope(repos []model.Repo, s Scope) ([]uint, map[uint]string) {
	wanted := make(map[string]bool, len(s.Names))
	for _, n := range s.Names {
		wanted[n] = true
	}

	ids := make([]uint, 0, len(repos))
	names := make(map[uint]string, len(repos))
	for _, r := range repos {
		if !s.All && !wanted[r.Name] {
			continue
		}
		ids = append(ids, r.ID)
		names[r.ID] = r.Name
	}
	return ids, names
}
