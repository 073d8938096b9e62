// Package ingest pulls activity for every tracked repository from the
// GitHub REST API and stores it. A run first clears the records already
// stored for the requested window, then re-inserts what the API returned,
// so re-running over the same window never duplicates rows.
package ingest

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/trungle/activity-dashboard/cfg"
	"github.com/trungle/activity-dashboard/internal/githubapi"
	"github.com/trungle/activity-dashboard/internal/model"
	"github.com/trungle/activity-dashboard/pkg/log"
)

const (
	maxAuthorLen = 250
	// Reviews are only fetched for the most recent pull requests; one
	// review listing per PR gets expensive fast.
	maxReviewPulls = 10
)

// Registry is the slice of the data store the ingestor needs besides its
// sink: repository lookup and window clearing.
type Registry interface {
	GetOrCreateRepo(ctx context.Context, name string) (*model.Repo, error)
	DeleteActivity(ctx context.Context, repositoryID uint, since, until *time.Time) error
}

// Fetcher is the slice of the GitHub caller the ingestor needs.
type Fetcher interface {
	FetchCommits(ctx context.Context, name string, since, until *time.Time) ([]githubapi.CommitResponse, error)
	FetchPulls(ctx context.Context, name string, since, until *time.Time) ([]githubapi.PullResponse, error)
	FetchIssues(ctx context.Context, name string, since, until *time.Time) ([]githubapi.IssueResponse, error)
	FetchReviews(ctx context.Context, name string, number int, since, until *time.Time) ([]githubapi.ReviewResponse, error)
}

type Ingestor struct {
	Logger  log.Logger
	Config  *cfg.Config
	Store   Registry
	Fetcher Fetcher
	Sink    Sink
}

func NewIngestor(logger log.Logger, config *cfg.Config, st Registry, fetcher Fetcher, sink Sink) (*Ingestor, error) {
	return &Ingestor{
		Logger:  logger,
		Config:  config,
		Store:   st,
		Fetcher: fetcher,
		Sink:    sink,
	}, nil
}

// Run ingests each repository in turn. One repository failing is logged
// and skipped; the rest of the run continues.
func (in *Ingestor) Run(ctx context.Context, repos []string, since, until *time.Time) error {
	for _, name := range repos {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := in.IngestRepo(ctx, name, since, until); err != nil {
			in.Logger.Error(ctx, "Failed to ingest %s: %v", name, err)
			continue
		}
		in.Logger.Info(ctx, "Successfully ingested %s", name)
	}
	return nil
}

// IngestRepo refreshes one repository's activity inside the window.
func (in *Ingestor) IngestRepo(ctx context.Context, name string, since, until *time.Time) error {
	repo, err := in.Store.GetOrCreateRepo(ctx, name)
	if err != nil {
		return err
	}

	if err := in.Store.DeleteActivity(ctx, repo.ID, since, until); err != nil {
		return err
	}

	if err := in.ingestCommits(ctx, repo, name, since, until); err != nil {
		return err
	}

	pulls, err := in.ingestPulls(ctx, repo, name, since, until)
	if err != nil {
		return err
	}

	if err := in.ingestIssues(ctx, repo, name, since, until); err != nil {
		return err
	}

	return in.ingestReviews(ctx, repo, name, pulls, since, until)
}

func (in *Ingestor) ingestCommits(ctx context.Context, repo *model.Repo, name string, since, until *time.Time) error {
	items, err := in.Fetcher.FetchCommits(ctx, name, since, until)
	if err != nil {
		return fmt.Errorf("failed to fetch commits for %s: %w", name, err)
	}

	commits := make([]model.Commit, 0, len(items))
	for _, item := range items {
		commits = append(commits, model.Commit{
			RepositoryID: repo.ID,
			Message:      item.Commit.Message,
			Author:       model.TruncateString(item.Commit.Author.Name, maxAuthorLen),
			CommittedAt:  item.Commit.Author.Date,
		})
	}
	if err := in.Sink.SaveCommits(ctx, commits); err != nil {
		return err
	}
	in.Logger.Info(ctx, "Stored %d commits for %s", len(commits), name)
	return nil
}

func (in *Ingestor) ingestPulls(ctx context.Context, repo *model.Repo, name string, since, until *time.Time) ([]githubapi.PullResponse, error) {
	items, err := in.Fetcher.FetchPulls(ctx, name, since, until)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pull requests for %s: %w", name, err)
	}

	prs := make([]model.PullRequest, 0, len(items))
	for _, item := range items {
		prs = append(prs, model.PullRequest{
			RepositoryID: repo.ID,
			Title:        item.Title,
			Author:       model.TruncateString(item.User.Login, maxAuthorLen),
			CreatedAt:    item.CreatedAt,
		})
	}
	if err := in.Sink.SavePullRequests(ctx, prs); err != nil {
		return nil, err
	}
	in.Logger.Info(ctx, "Stored %d pull requests for %s", len(prs), name)
	return items, nil
}

func (in *Ingestor) ingestIssues(ctx context.Context, repo *model.Repo, name string, since, until *time.Time) error {
	items, err := in.Fetcher.FetchIssues(ctx, name, since, until)
	if err != nil {
		return fmt.Errorf("failed to fetch issues for %s: %w", name, err)
	}

	issues := make([]model.Issue, 0, len(items))
	for _, item := range items {
		// The issues listing also returns pull requests
		if item.PullRequest != nil {
			continue
		}
		issues = append(issues, model.Issue{
			RepositoryID: repo.ID,
			Title:        item.Title,
			Author:       model.TruncateString(item.User.Login, maxAuthorLen),
			CreatedAt:    item.CreatedAt,
		})
	}
	if err := in.Sink.SaveIssues(ctx, issues); err != nil {
		return err
	}
	in.Logger.Info(ctx, "Stored %d issues for %s", len(issues), name)
	return nil
}

func (in *Ingestor) ingestReviews(ctx context.Context, repo *model.Repo, name string, pulls []githubapi.PullResponse, since, until *time.Time) error {
	if len(pulls) > maxReviewPulls {
		pulls = pulls[:maxReviewPulls]
	}

	var reviews []model.Review
	for _, pull := range pulls {
		items, err := in.Fetcher.FetchReviews(ctx, name, pull.Number, since, until)
		if err != nil {
			return fmt.Errorf("failed to fetch reviews for %s#%d: %w", name, pull.Number, err)
		}
		for _, item := range items {
			comment := item.Body
			if comment == "" {
				comment = "No comment provided"
			}
			reviews = append(reviews, model.Review{
				RepositoryID: repo.ID,
				Comment:      comment,
				Author:       model.TruncateString(item.User.Login, maxAuthorLen),
				CreatedAt:    item.SubmittedAt,
			})
		}
	}
	if err := in.Sink.SaveReviews(ctx, reviews); err != nil {
		return err
	}
	in.Logger.Info(ctx, "Stored %d reviews for %s", len(reviews), name)
	return nil
}

// LoadRepoList parses the flat properties file the registrar appends to.
// Each line is name=name; the part before the separator is the repository.
func LoadRepoList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var repos []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, _, _ := strings.Cut(line, "=")
		if name != "" {
			repos = append(repos, name)
		}
	}
	return repos, scanner.Err()
}
