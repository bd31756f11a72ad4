package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/imageforge/gateway/internal/config"
	"github.com/imageforge/gateway/internal/service/logger"
	"github.com/imageforge/gateway/internal/watch"
	"github.com/imageforge/gateway/model"
)

func main() {
	_ = godotenv.Load()
	logger.Init("imageforge-watcher")

	cmd := &cli.Command{
		Name:  "watcher",
		Usage: "submit jobs to the gateway and track them until they complete",
		Commands: []*cli.Command{
			{
				Name:      "submit",
				Usage:     "post a job request file and record the assigned id",
				ArgsUsage: "<request.json>",
				Action:    runSubmit,
			},
			{
				Name:   "watch",
				Usage:  "poll the completed listing and reconcile the local job log",
				Action: runWatch,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Log.Error().Err(err).Msg("watcher failed")
		os.Exit(1)
	}
}

func runSubmit(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.GetWatcherConfig()
	if err != nil {
		return err
	}

	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one request file argument")
	}

	raw, err := os.ReadFile(cmd.Args().First())
	if err != nil {
		return fmt.Errorf("unable to read request file: %w", err)
	}

	var req model.JobRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("unable to parse request file: %w", err)
	}

	client := watch.NewClient(cfg.API_BASE)
	desc, err := client.Submit(ctx, req)
	if err != nil {
		return err
	}

	jobLog := watch.OpenLog(cfg.JOBS_FILE, cfg.JOBS_CAP)
	if err := jobLog.Append(desc.ID, time.Now().UTC()); err != nil {
		logger.Log.Error().Err(err).Msg("unable to persist submitted-jobs log")
	}

	logger.Log.Info().
		Str("id", desc.ID).
		Int64("seed", desc.Seed).
		Str("model", desc.Model).
		Msg("job submitted")
	return nil
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.GetWatcherConfig()
	if err != nil {
		return err
	}

	jobLog := watch.OpenLog(cfg.JOBS_FILE, cfg.JOBS_CAP)
	client := watch.NewClient(cfg.API_BASE)

	for _, e := range jobLog.Entries() {
		logger.Log.Info().Str("id", e.ID).Time("submittedAt", e.SubmittedAt).Msg("tracking job")
	}

	reconciler := watch.NewReconciler(jobLog, client, time.Duration(cfg.INTERVAL_SECONDS)*time.Second)
	reconciler.Start(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	reconciler.Stop()
	logger.Log.Info().Msg("watcher stopped.")
	return nil
}
