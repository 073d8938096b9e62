package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trungle/activity-dashboard/cfg"
	"github.com/trungle/activity-dashboard/internal/githubapi"
	"github.com/trungle/activity-dashboard/internal/model"
)

type nopLogger struct{}

func (nopLogger) Info(ctx context.Context, format string, args ...interface{})     {}
func (nopLogger) Warn(ctx context.Context, format string, args ...interface{})     {}
func (nopLogger) Error(ctx context.Context, format string, args ...interface{})    {}
func (nopLogger) Debug(ctx context.Context, format string, args ...interface{})    {}
func (nopLogger) Critical(ctx context.Context, format string, args ...interface{}) {}

type clearCall struct {
	repositoryID uint
	since, until *time.Time
}

type fakeRegistry struct {
	nextID  uint
	repos   map[string]uint
	cleared []clearCall
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{repos: map[string]uint{}}
}

func (f *fakeRegistry) GetOrCreateRepo(ctx context.Context, name string) (*model.Repo, error) {
	if id, ok := f.repos[name]; ok {
		return &model.Repo{Model: model.Model{ID: id}, Name: name}, nil
	}
	f.nextID++
	f.repos[name] = f.nextID
	return &model.Repo{Model: model.Model{ID: f.nextID}, Name: name}, nil
}

func (f *fakeRegistry) DeleteActivity(ctx context.Context, repositoryID uint, since, until *time.Time) error {
	f.cleared = append(f.cleared, clearCall{repositoryID, since, until})
	return nil
}

type fakeFetcher struct {
	commits     map[string][]githubapi.CommitResponse
	pulls       map[string][]githubapi.PullResponse
	issues      map[string][]githubapi.IssueResponse
	reviews     map[int][]githubapi.ReviewResponse
	failRepos   map[string]bool
	reviewCalls []int
}

func (f *fakeFetcher) FetchCommits(ctx context.Context, name string, since, until *time.Time) ([]githubapi.CommitResponse, error) {
	if f.failRepos[name] {
		return nil, errors.New("boom")
	}
	return f.commits[name], nil
}

func (f *fakeFetcher) FetchPulls(ctx context.Context, name string, since, until *time.Time) ([]githubapi.PullResponse, error) {
	return f.pulls[name], nil
}

func (f *fakeFetcher) FetchIssues(ctx context.Context, name string, since, until *time.Time) ([]githubapi.IssueResponse, error) {
	return f.issues[name], nil
}

func (f *fakeFetcher) FetchReviews(ctx context.Context, name string, number int, since, until *time.Time) ([]githubapi.ReviewResponse, error) {
	f.reviewCalls = append(f.reviewCalls, number)
	return f.reviews[number], nil
}

type fakeSink struct {
	commits []model.Commit
	prs     []model.PullRequest
	issues  []model.Issue
	reviews []model.Review
}

func (f *fakeSink) SaveCommits(ctx context.Context, commits []model.Commit) error {
	f.commits = append(f.commits, commits...)
	return nil
}

func (f *fakeSink) SavePullRequests(ctx context.Context, prs []model.PullRequest) error {
	f.prs = append(f.prs, prs...)
	return nil
}

func (f *fakeSink) SaveIssues(ctx context.Context, issues []model.Issue) error {
	f.issues = append(f.issues, issues...)
	return nil
}

func (f *fakeSink) SaveReviews(ctx context.Context, reviews []model.Review) error {
	f.reviews = append(f.reviews, reviews...)
	return nil
}

func newTestIngestor(t *testing.T, registry *fakeRegistry, fetcher *fakeFetcher, sink *fakeSink) *Ingestor {
	t.Helper()
	loader, _ := cfg.NewMockLoader()
	config, err := loader.Load()
	require.NoError(t, err)
	in, err := NewIngestor(nopLogger{}, config, registry, fetcher, sink)
	require.NoError(t, err)
	return in
}

func when(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func commitResponse(message, author string, date time.Time) githubapi.CommitResponse {
	var c githubapi.CommitResponse
	c.Commit.Message = message
	c.Commit.Author.Name = author
	c.Commit.Author.Date = date
	return c
}

func TestIngestRepoStoresAllKinds(t *testing.T) {
	registry := newFakeRegistry()
	fetcher := &fakeFetcher{
		commits: map[string][]githubapi.CommitResponse{
			"acme/widgets": {commitResponse("fix build", "alice", when("2024-01-10T12:00:00Z"))},
		},
		pulls: map[string][]githubapi.PullResponse{
			"acme/widgets": {{Number: 7, Title: "add caching", User: githubapi.User{Login: "carol"}, CreatedAt: when("2024-01-11T08:00:00Z")}},
		},
		issues: map[string][]githubapi.IssueResponse{
			"acme/widgets": {
				{Title: "crash on startup", User: githubapi.User{Login: "bob"}, CreatedAt: when("2024-01-12T09:00:00Z")},
				{Title: "really a pull request", User: githubapi.User{Login: "bob"}, CreatedAt: when("2024-01-12T10:00:00Z"), PullRequest: &struct{}{}},
			},
		},
		reviews: map[int][]githubapi.ReviewResponse{
			7: {
				{Body: "LGTM", User: githubapi.User{Login: "dave"}, SubmittedAt: when("2024-01-11T09:00:00Z")},
				{Body: "", User: githubapi.User{Login: "erin"}, SubmittedAt: when("2024-01-11T10:00:00Z")},
			},
		},
		failRepos: map[string]bool{},
	}
	sink := &fakeSink{}
	in := newTestIngestor(t, registry, fetcher, sink)

	require.NoError(t, in.IngestRepo(context.Background(), "acme/widgets", nil, nil))

	require.Len(t, sink.commits, 1)
	assert.Equal(t, "fix build", sink.commits[0].Message)
	assert.Equal(t, "alice", sink.commits[0].Author)
	assert.Equal(t, registry.repos["acme/widgets"], sink.commits[0].RepositoryID)

	require.Len(t, sink.prs, 1)
	assert.Equal(t, "add caching", sink.prs[0].Title)

	// The pull request masquerading as an issue is skipped
	require.Len(t, sink.issues, 1)
	assert.Equal(t, "crash on startup", sink.issues[0].Title)

	require.Len(t, sink.reviews, 2)
	assert.Equal(t, "LGTM", sink.reviews[0].Comment)
	assert.Equal(t, "No comment provided", sink.reviews[1].Comment)

	// Existing window rows were cleared before the insert
	require.Len(t, registry.cleared, 1)
	assert.Equal(t, registry.repos["acme/widgets"], registry.cleared[0].repositoryID)
}

func TestIngestRepoLimitsReviewFetches(t *testing.T) {
	registry := newFakeRegistry()
	fetcher := &fakeFetcher{
		pulls:     map[string][]githubapi.PullResponse{},
		failRepos: map[string]bool{},
	}
	for i := 1; i <= 15; i++ {
		fetcher.pulls["acme/widgets"] = append(fetcher.pulls["acme/widgets"], githubapi.PullResponse{
			Number:    i,
			Title:     fmt.Sprintf("pr %d", i),
			User:      githubapi.User{Login: "carol"},
			CreatedAt: when("2024-01-11T08:00:00Z"),
		})
	}
	sink := &fakeSink{}
	in := newTestIngestor(t, registry, fetcher, sink)

	require.NoError(t, in.IngestRepo(context.Background(), "acme/widgets", nil, nil))

	assert.Len(t, sink.prs, 15, "all pull requests are stored")
	assert.Len(t, fetcher.reviewCalls, maxReviewPulls, "reviews only fetched for the first pull requests")
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, fetcher.reviewCalls)
}

func TestRunSkipsFailedRepository(t *testing.T) {
	registry := newFakeRegistry()
	fetcher := &fakeFetcher{
		commits: map[string][]githubapi.CommitResponse{
			"acme/gadgets": {commitResponse("works", "alice", when("2024-01-10T12:00:00Z"))},
		},
		failRepos: map[string]bool{"acme/widgets": true},
	}
	sink := &fakeSink{}
	in := newTestIngestor(t, registry, fetcher, sink)

	err := in.Run(context.Background(), []string{"acme/widgets", "acme/gadgets"}, nil, nil)
	require.NoError(t, err, "one failing repository must not abort the run")

	require.Len(t, sink.commits, 1)
	assert.Equal(t, "works", sink.commits[0].Message)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := newTestIngestor(t, newFakeRegistry(), &fakeFetcher{failRepos: map[string]bool{}}, &fakeSink{})
	err := in.Run(ctx, []string{"acme/widgets"}, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIngestRepoTruncatesLongAuthor(t *testing.T) {
	registry := newFakeRegistry()
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	fetcher := &fakeFetcher{
		commits: map[string][]githubapi.CommitResponse{
			"acme/widgets": {commitResponse("msg", string(long), when("2024-01-10T12:00:00Z"))},
		},
		failRepos: map[string]bool{},
	}
	sink := &fakeSink{}
	in := newTestIngestor(t, registry, fetcher, sink)

	require.NoError(t, in.IngestRepo(context.Background(), "acme/widgets", nil, nil))
	require.Len(t, sink.commits, 1)
	assert.Len(t, sink.commits[0].Author, maxAuthorLen)
}

func TestLoadRepoList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.properties")
	content := "acme/widgets=acme/widgets\n\n# a comment\nacme/gadgets=acme/gadgets\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	repos, err := LoadRepoList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme/widgets", "acme/gadgets"}, repos)
}

func TestLoadRepoListMissingFile(t *testing.T) {
	_, err := LoadRepoList(filepath.Join(t.TempDir(), "absent.properties"))
	assert.Error(t, err)
}
