package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trungle/activity-dashboard/internal/model"
	"github.com/trungle/activity-dashboard/pkg/log"
	"gorm.io/gorm"
)

// Gorm implements Store on top of a gorm connection. The connection is
// handed in at construction (pkg/db for MySQL in production, sqlite in
// tests) and reused for the process lifetime.
type Gorm struct {
	Logger log.Logger
	db     *gorm.DB
}

func NewGorm(logger log.Logger, db *gorm.DB) (*Gorm, error) {
	if db == nil {
		return nil, errors.New("nil gorm connection")
	}
	return &Gorm{
		Logger: logger,
		db:     db,
	}, nil
}

func (s *Gorm) ListRepos(ctx context.Context) ([]model.Repo, error) {
	var repos []model.Repo
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&repos).Error; err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	return repos, nil
}

func (s *Gorm) FindRepoByName(ctx context.Context, name string) (*model.Repo, error) {
	var repo model.Repo
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&repo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find repository %s: %w", name, err)
	}
	return &repo, nil
}

func (s *Gorm) CreateRepo(ctx context.Context, name string) (*model.Repo, error) {
	repo := &model.Repo{
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(repo).Error; err != nil {
		return nil, fmt.Errorf("failed to create repository %s: %w", name, err)
	}
	return repo, nil
}

func (s *Gorm) GetOrCreateRepo(ctx context.Context, name string) (*model.Repo, error) {
	repo, err := s.FindRepoByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if repo != nil {
		return repo, nil
	}
	return s.CreateRepo(ctx, name)
}

// applyQuery builds the shared filter chain for one activity table.
// timeColumn is that table's own timestamp column.
func applyQuery(db *gorm.DB, q Query, timeColumn string) *gorm.DB {
	db = db.Where("repository_id IN ?", q.RepositoryIDs)
	if q.Since != nil {
		db = db.Where(timeColumn+" >= ?", *q.Since)
	}
	if q.Until != nil {
		db = db.Where(timeColumn+" <= ?", *q.Until)
	}
	if q.Author != "" {
		db = db.Where("author = ?", q.Author)
	} else if len(q.Authors) > 0 {
		db = db.Where("author IN ?", q.Authors)
	}
	return db.Order(timeColumn + " DESC")
}

func (s *Gorm) ListCommits(ctx context.Context, q Query) ([]model.Commit, error) {
	var commits []model.Commit
	if err := applyQuery(s.db.WithContext(ctx), q, "committed_at").Find(&commits).Error; err != nil {
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}
	return commits, nil
}

func (s *Gorm) ListPullRequests(ctx context.Context, q Query) ([]model.PullRequest, error) {
	var prs []model.PullRequest
	if err := applyQuery(s.db.WithContext(ctx), q, "created_at").Find(&prs).Error; err != nil {
		return nil, fmt.Errorf("failed to list pull requests: %w", err)
	}
	return prs, nil
}

func (s *Gorm) ListIssues(ctx context.Context, q Query) ([]model.Issue, error) {
	var issues []model.Issue
	if err := applyQuery(s.db.WithContext(ctx), q, "created_at").Find(&issues).Error; err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	return issues, nil
}

func (s *Gorm) ListReviews(ctx context.Context, q Query) ([]model.Review, error) {
	var reviews []model.Review
	if err := applyQuery(s.db.WithContext(ctx), q, "created_at").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// DeleteActivity clears the previously ingested records for one repository
// inside the given window, across all four activity tables. The ingestor
// calls this before re-inserting so a re-run never duplicates rows.
func (s *Gorm) DeleteActivity(ctx context.Context, repositoryID uint, since, until *time.Time) error {
	type target struct {
		mdl        interface{}
		timeColumn string
	}
	targets := []target{
		{&model.Commit{}, "committed_at"},
		{&model.PullRequest{}, "created_at"},
		{&model.Issue{}, "created_at"},
		{&model.Review{}, "created_at"},
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range targets {
			q := tx.Where("repository_id = ?", repositoryID)
			if since != nil {
				q = q.Where(t.timeColumn+" >= ?", *since)
			}
			if until != nil {
				q = q.Where(t.timeColumn+" <= ?", *until)
			}
			if err := q.Delete(t.mdl).Error; err != nil {
				return fmt.Errorf("failed to clear activity for repository %d: %w", repositoryID, err)
			}
		}
		return nil
	})
}

func (s *Gorm) CreateCommits(ctx context.Context, commits []model.Commit) error {
	if len(commits) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(commits, 100).Error; err != nil {
		return fmt.Errorf("failed to batch create commits: %w", err)
	}
	return nil
}

func (s *Gorm) CreatePullRequests(ctx context.Context, prs []model.PullRequest) error {
	if len(prs) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(prs, 100).Error; err != nil {
		return fmt.Errorf("failed to batch create pull requests: %w", err)
	}
	return nil
}

func (s *Gorm) CreateIssues(ctx context.Context, issues []model.Issue) error {
	if len(issues) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(issues, 100).Error; err != nil {
		return fmt.Errorf("failed to batch create issues: %w", err)
	}
	return nil
}

func (s *Gorm) CreateReviews(ctx context.Context, reviews []model.Review) error {
	if len(reviews) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(reviews, 100).Error; err != nil {
		return fmt.Errorf("failed to batch create reviews: %w", err)
	}
	return nil
}
