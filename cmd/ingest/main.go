package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/trungle/activity-dashboard/cfg"
	"github.com/trungle/activity-dashboard/internal/githubapi"
	"github.com/trungle/activity-dashboard/internal/ingest"
	"github.com/trungle/activity-dashboard/internal/model"
	"github.com/trungle/activity-dashboard/internal/store"
	"github.com/trungle/activity-dashboard/pkg/db"
	applog "github.com/trungle/activity-dashboard/pkg/log"
)

const dateLayout = "2006-01-02"

var (
	flagSince string
	flagUntil string
	flagRepo  string
	flagMode  string
)

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetches GitHub activity for the tracked repositories",
	Long: `ingest pulls commits, pull requests, issues and reviews for every
tracked repository from the GitHub API and stores them, either directly
in MySQL or through Kafka topics drained by the consumer process.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&flagSince, "since", "", "Start date (YYYY-MM-DD)")
	rootCmd.Flags().StringVar(&flagUntil, "until", "", "End date (YYYY-MM-DD)")
	rootCmd.Flags().StringVar(&flagRepo, "repo", "", "Ingest a single repository (owner/repo) instead of the configured list")
	rootCmd.Flags().StringVar(&flagMode, "mode", "direct", "Storage mode: direct (MySQL) or kafka")
}

func run(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	since, err := parseDate(flagSince)
	if err != nil {
		return fmt.Errorf("invalid --since date, expected YYYY-MM-DD: %w", err)
	}
	until, err := parseDate(flagUntil)
	if err != nil {
		return fmt.Errorf("invalid --until date, expected YYYY-MM-DD: %w", err)
	}

	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, _ := applog.NewCslLogger()
	mysql, _ := db.NewMysql(config)

	// Migrate database
	repoMd, _ := model.NewRepo(config, logger, mysql)
	commitMd, _ := model.NewCommit(config, logger, mysql)
	prMd, _ := model.NewPullRequest(config, logger, mysql)
	issueMd, _ := model.NewIssue(config, logger, mysql)
	reviewMd, _ := model.NewReview(config, logger, mysql)
	if err := mysql.Migrate(repoMd, commitMd, prMd, issueMd, reviewMd); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	gdb, err := mysql.Db()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	st, err := store.NewGorm(logger, gdb)
	if err != nil {
		return err
	}

	var sink ingest.Sink
	switch flagMode {
	case "direct":
		sink, err = ingest.NewStoreSink(st)
	case "kafka":
		var ks *ingest.KafkaSink
		ks, err = ingest.NewKafkaSink(config, logger)
		if ks != nil {
			defer ks.Close()
		}
		sink = ks
	default:
		return fmt.Errorf("unknown mode %q, expected direct or kafka", flagMode)
	}
	if err != nil {
		return fmt.Errorf("failed to create sink: %w", err)
	}

	caller, err := githubapi.NewCaller(logger, config)
	if err != nil {
		return err
	}

	ingestor, err := ingest.NewIngestor(logger, config, st, caller, sink)
	if err != nil {
		return err
	}

	repos := []string{flagRepo}
	if flagRepo == "" {
		repos, err = ingest.LoadRepoList(config.Ingest.ConfigFile)
		if err != nil {
			return fmt.Errorf("failed to load repository list: %w", err)
		}
	}

	logger.Info(ctx, "Starting ingestion of %d repositories", len(repos))
	return ingestor.Run(ctx, repos, since, until)
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
