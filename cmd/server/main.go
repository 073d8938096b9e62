package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trungle/activity-dashboard/cfg"
	"github.com/trungle/activity-dashboard/internal/model"
	"github.com/trungle/activity-dashboard/internal/ui"
	"github.com/trungle/activity-dashboard/pkg/db"
	applog "github.com/trungle/activity-dashboard/pkg/log"
)

func main() {
	port := flag.Int("port", 8080, "Port for the dashboard API server to listen on")
	flag.Parse()

	ctx := context.Background()
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	mysql, _ := db.NewMysql(config)
	logger, _ := applog.NewCslLogger()

	// Migrate database
	repoMd, _ := model.NewRepo(config, logger, mysql)
	commitMd, _ := model.NewCommit(config, logger, mysql)
	prMd, _ := model.NewPullRequest(config, logger, mysql)
	issueMd, _ := model.NewIssue(config, logger, mysql)
	reviewMd, _ := model.NewReview(config, logger, mysql)
	if err := mysql.Migrate(repoMd, commitMd, prMd, issueMd, reviewMd); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	server, err := ui.NewServer(logger, config, mysql, *port)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Run server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Error(ctx, "Server failed to start: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for termination signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error(ctx, "Error during server shutdown: %v", err)
	}

	logger.Info(ctx, "Server shut down gracefully")
}
