package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/trungle/activity-dashboard/cfg"
	"github.com/trungle/activity-dashboard/internal/model"
	"github.com/trungle/activity-dashboard/internal/store"
	"github.com/trungle/activity-dashboard/pkg/db"
	"github.com/trungle/activity-dashboard/pkg/kafka"
	applog "github.com/trungle/activity-dashboard/pkg/log"
)

func main() {
	consumerType := flag.String("type", "", "Type of consumer to run (commit, pull_request, issue, review)")
	flag.Parse()

	if *consumerType == "" {
		fmt.Println("Please specify a consumer type: -type=[commit|pull_request|issue|review]")
		os.Exit(1)
	}

	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, _ := applog.NewCslLogger()
	mysql, _ := db.NewMysql(config)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gdb, err := mysql.Db()
	if err != nil {
		logger.Error(ctx, "Failed to connect to database: %v", err)
		os.Exit(1)
	}
	st, err := store.NewGorm(logger, gdb)
	if err != nil {
		logger.Error(ctx, "Failed to create store: %v", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	switch *consumerType {
	case "commit":
		startCommitConsumer(ctx, config, logger, st)
	case "pull_request":
		startPullRequestConsumer(ctx, config, logger, st)
	case "issue":
		startIssueConsumer(ctx, config, logger, st)
	case "review":
		startReviewConsumer(ctx, config, logger, st)
	default:
		logger.Error(ctx, "Unknown consumer type: %s", *consumerType)
		os.Exit(1)
	}

	<-sigCh
	logger.Info(ctx, "Received shutdown signal, gracefully shutting down...")
	cancel()
}

func startCommitConsumer(ctx context.Context, config *cfg.Config, logger applog.Logger, st store.Store) {
	consumer := kafka.NewConsumer(config, logger, config.Kafka.Producer.TopicCommit, "commit-consumer-group")

	consumer.RegisterHandler("commit", func(data []byte) error {
		var msg model.CommitMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal commit message: %w", err)
		}
		return st.CreateCommits(ctx, []model.Commit{{
			RepositoryID: msg.RepositoryID,
			Message:      msg.Message,
			Author:       msg.Author,
			CommittedAt:  msg.CommittedAt,
		}})
	})

	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error(ctx, "Commit consumer error: %v", err)
		}
	}()

	logger.Info(ctx, "Commit consumer started successfully")
}

func startPullRequestConsumer(ctx context.Context, config *cfg.Config, logger applog.Logger, st store.Store) {
	consumer := kafka.NewConsumer(config, logger, config.Kafka.Producer.TopicPullRequest, "pull-request-consumer-group")

	consumer.RegisterHandler("pull_request", func(data []byte) error {
		var msg model.PullRequestMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal pull request message: %w", err)
		}
		return st.CreatePullRequests(ctx, []model.PullRequest{{
			RepositoryID: msg.RepositoryID,
			Title:        msg.Title,
			Author:       msg.Author,
			CreatedAt:    msg.CreatedAt,
		}})
	})

	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error(ctx, "Pull request consumer error: %v", err)
		}
	}()

	logger.Info(ctx, "Pull request consumer started successfully")
}

func startIssueConsumer(ctx context.Context, config *cfg.Config, logger applog.Logger, st store.Store) {
	consumer := kafka.NewConsumer(config, logger, config.Kafka.Producer.TopicIssue, "issue-consumer-group")

	consumer.RegisterHandler("issue", func(data []byte) error {
		var msg model.IssueMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal issue message: %w", err)
		}
		return st.CreateIssues(ctx, []model.Issue{{
			RepositoryID: msg.RepositoryID,
			Title:        msg.Title,
			Author:       msg.Author,
			CreatedAt:    msg.CreatedAt,
		}})
	})

	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error(ctx, "Issue consumer error: %v", err)
		}
	}()

	logger.Info(ctx, "Issue consumer started successfully")
}

func startReviewConsumer(ctx context.Context, config *cfg.Config, logger applog.Logger, st store.Store) {
	consumer := kafka.NewConsumer(config, logger, config.Kafka.Producer.TopicReview, "review-consumer-group")

	consumer.RegisterHandler("review", func(data []byte) error {
		var msg model.ReviewMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal review message: %w", err)
		}
		return st.CreateReviews(ctx, []model.Review{{
			RepositoryID: msg.RepositoryID,
			Comment:      msg.Comment,
			Author:       msg.Author,
			CreatedAt:    msg.CreatedAt,
		}})
	})

	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error(ctx, "Review consumer error: %v", err)
		}
	}()

	logger.Info(ctx, "Review consumer started successfully")
}
