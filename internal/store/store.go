// Package store is the read/write boundary between the application and the
// relational database. The aggregator and the registrar only ever talk to
// the Store interface, never to gorm directly.
package store

import (
	"context"
	"time"

	"github.com/trungle/activity-dashboard/internal/model"
)

// Query describes one range read over an activity table. Since/Until are
// inclusive and apply to the table's own timestamp column (committed_at for
// commits, created_at for the rest). Author is an exact match and takes
// precedence over Authors; the two never combine.
type Query struct {
	RepositoryIDs []uint
	Since         *time.Time
	Until         *time.Time
	Author        string
	Authors       []string
}

type Store interface {
	// Registry
	ListRepos(ctx context.Context) ([]model.Repo, error)
	FindRepoByName(ctx context.Context, name string) (*model.Repo, error)
	CreateRepo(ctx context.Context, name string) (*model.Repo, error)
	GetOrCreateRepo(ctx context.Context, name string) (*model.Repo, error)

	// Activity reads, descending by the table's timestamp column
	ListCommits(ctx context.Context, q Query) ([]model.Commit, error)
	ListPullRequests(ctx context.Context, q Query) ([]model.PullRequest, error)
	ListIssues(ctx context.Context, q Query) ([]model.Issue, error)
	ListReviews(ctx context.Context, q Query) ([]model.Review, error)

	// Ingest side
	DeleteActivity(ctx context.Context, repositoryID uint, since, until *time.Time) error
	CreateCommits(ctx context.Context, commits []model.Commit) error
	CreatePullRequests(ctx context.Context, prs []model.PullRequest) error
	CreateIssues(ctx context.Context, issues []model.Issue) error
	CreateReviews(ctx context.Context, reviews []model.Review) error
}
