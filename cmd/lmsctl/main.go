package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"anoa.com/learnhub/internal/config"
	"anoa.com/learnhub/internal/jobs"
	"anoa.com/learnhub/internal/maintenance/indexcleanup"
	"anoa.com/learnhub/internal/maintenance/lessonmigrate"
	"anoa.com/learnhub/internal/server"
	"anoa.com/learnhub/pkg/database"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type connectFunc func() (*gorm.DB, error)

// schedulerFunc builds the API's job scheduler. The returned func releases what it opened.
type schedulerFunc func(ctx context.Context) (*jobs.Scheduler, func(), error)

func connectFromEnv() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return database.Connect(cfg), nil
}

func schedulerFromEnv(ctx context.Context) (*jobs.Scheduler, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db := database.Connect(cfg)

	redisClient, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		log.Printf("⚠️ Redis unavailable, running jobs without it: %v", err)
		redisClient = nil
	}
	release := func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}

	srv, err := server.NewServer(cfg, db, redisClient)
	if err != nil {
		release()
		return nil, nil, err
	}
	return srv.Scheduler(), func() {
		srv.Close()
		release()
	}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(connectFromEnv, schedulerFromEnv, os.Stdout).ExecuteContext(ctx); err != nil {
		log.Printf("❌ %v", err)
		os.Exit(1)
	}
}

func newRootCmd(connect connectFunc, scheduler schedulerFunc, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "lmsctl",
		Short:         "Maintenance tasks for the LearnHub database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.AddCommand(newMigrateLessonsCmd(connect), newDedupeIndexesCmd(connect), newJobsCmd(scheduler))
	return root
}

func newMigrateLessonsCmd(connect connectFunc) *cobra.Command {
	var (
		dryRun    bool
		backupDir string
		rollback  string
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "migrate-lessons",
		Short: "Convert legacy lesson payloads to the typed schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rollback != "" && dryRun {
				return errors.New("--rollback cannot be combined with --dry-run")
			}

			db, err := connect()
			if err != nil {
				return err
			}
			m := lessonmigrate.NewMigrator(db)

			var report *lessonmigrate.Report
			if rollback != "" {
				log.Printf("⏪ Restoring lessons from %s", rollback)
				report, err = m.Rollback(cmd.Context(), rollback)
			} else {
				log.Printf("🔄 Migrating lessons (dry-run=%v)", dryRun)
				report, err = m.Run(cmd.Context(), lessonmigrate.Options{
					DryRun:    dryRun,
					BackupDir: backupDir,
					BatchSize: batchSize,
				})
			}
			if report != nil {
				if werr := writeReport(cmd.OutOrStdout(), report); werr != nil {
					return werr
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	cmd.Flags().StringVar(&backupDir, "backup-dir", "backups", "directory for the pre-migration snapshot")
	cmd.Flags().StringVar(&rollback, "rollback", "", "restore lessons from a backup file")
	cmd.Flags().IntVar(&batchSize, "batch-size", 200, "rows read per query")
	return cmd
}

func newDedupeIndexesCmd(connect connectFunc) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "dedupe-indexes",
		Short: "Drop PostgreSQL indexes that duplicate another index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := connect()
			if err != nil {
				return err
			}

			log.Printf("🧹 Looking for duplicate indexes (dry-run=%v)", dryRun)
			report, err := indexcleanup.Run(cmd.Context(), indexcleanup.NewPostgresCatalog(db), dryRun)
			if report != nil {
				if werr := writeReport(cmd.OutOrStdout(), report); werr != nil {
					return werr
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list duplicates without dropping them")
	return cmd
}

func newJobsCmd(build schedulerFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect or trigger the API's scheduled jobs",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the registered jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scheduler, release, err := build(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			for _, name := range scheduler.Registered() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	run := &cobra.Command{
		Use:   "run <name>",
		Short: "Run a registered job once, now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scheduler, release, err := build(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if err := scheduler.RunByName(cmd.Context(), args[0]); err != nil {
				return err
			}
			log.Printf("✅ [%s] Job completed successfully", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, run)
	return cmd
}

func writeReport(w io.Writer, report any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
