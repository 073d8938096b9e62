package ingest

import (
	"context"

	"github.com/trungle/activity-dashboard/cfg"
	"github.com/trungle/activity-dashboard/internal/model"
	"github.com/trungle/activity-dashboard/internal/store"
	"github.com/trungle/activity-dashboard/pkg/kafka"
	"github.com/trungle/activity-dashboard/pkg/log"
)

// Sink is where fetched activity ends up: directly in the database, or on
// Kafka topics drained by the consumer process.
type Sink interface {
	SaveCommits(ctx context.Context, commits []model.Commit) error
	SavePullRequests(ctx context.Context, prs []model.PullRequest) error
	SaveIssues(ctx context.Context, issues []model.Issue) error
	SaveReviews(ctx context.Context, reviews []model.Review) error
}

// StoreSink writes batches straight to the store.
type StoreSink struct {
	Store store.Store
}

func NewStoreSink(st store.Store) (*StoreSink, error) {
	return &StoreSink{Store: st}, nil
}

func (s *StoreSink) SaveCommits(ctx context.Context, commits []model.Commit) error {
	return s.Store.CreateCommits(ctx, commits)
}

func (s *StoreSink) SavePullRequests(ctx context.Context, prs []model.PullRequest) error {
	return s.Store.CreatePullRequests(ctx, prs)
}

func (s *StoreSink) SaveIssues(ctx context.Context, issues []model.Issue) error {
	return s.Store.CreateIssues(ctx, issues)
}

func (s *StoreSink) SaveReviews(ctx context.Context, reviews []model.Review) error {
	return s.Store.CreateReviews(ctx, reviews)
}

// KafkaSink publishes one message per record to the per-kind topics.
type KafkaSink struct {
	Logger         log.Logger
	commitProducer *kafka.Producer
	prProducer     *kafka.Producer
	issueProducer  *kafka.Producer
	reviewProducer *kafka.Producer
}

func NewKafkaSink(config *cfg.Config, logger log.Logger) (*KafkaSink, error) {
	return &KafkaSink{
		Logger:         logger,
		commitProducer: kafka.NewProducer(config, logger, config.Kafka.Producer.TopicCommit),
		prProducer:     kafka.NewProducer(config, logger, config.Kafka.Producer.TopicPullRequest),
		issueProducer:  kafka.NewProducer(config, logger, config.Kafka.Producer.TopicIssue),
		reviewProducer: kafka.NewProducer(config, logger, config.Kafka.Producer.TopicReview),
	}, nil
}

func (s *KafkaSink) SaveCommits(ctx context.Context, commits []model.Commit) error {
	for _, c := range commits {
		msg := model.CommitMessage{
			RepositoryID: c.RepositoryID,
			Message:      c.Message,
			Author:       c.Author,
			CommittedAt:  c.CommittedAt,
		}
		if err := s.commitProducer.Publish(ctx, "commit", msg); err != nil {
			return err
		}
	}
	return nil
}

func (s *KafkaSink) SavePullRequests(ctx context.Context, prs []model.PullRequest) error {
	for _, p := range prs {
		msg := model.PullRequestMessage{
			RepositoryID: p.RepositoryID,
			Title:        p.Title,
			Author:       p.Author,
			CreatedAt:    p.CreatedAt,
		}
		if err := s.prProducer.Publish(ctx, "pull_request", msg); err != nil {
			return err
		}
	}
	return nil
}

func (s *KafkaSink) SaveIssues(ctx context.Context, issues []model.Issue) error {
	for _, i := range issues {
		msg := model.IssueMessage{
			RepositoryID: i.RepositoryID,
			Title:        i.Title,
			Author:       i.Author,
			CreatedAt:    i.CreatedAt,
		}
		if err := s.issueProducer.Publish(ctx, "issue", msg); err != nil {
			return err
		}
	}
	return nil
}

func (s *KafkaSink) SaveReviews(ctx context.Context, reviews []model.Review) error {
	for _, r := range reviews {
		msg := model.ReviewMessage{
			RepositoryID: r.RepositoryID,
			Comment:      r.Comment,
			Author:       r.Author,
			CreatedAt:    r.CreatedAt,
		}
		if err := s.reviewProducer.Publish(ctx, "review", msg); err != nil {
			return err
		}
	}
	return nil
}

// Close shuts the producers down. No-op for the store sink.
func (s *KafkaSink) Close() error {
	for _, p := range []*kafka.Producer{s.commitProducer, s.prProducer, s.issueProducer, s.reviewProducer} {
		if err := p.Close(); err != nil {
			return err
		}
	}
	return nil
}
