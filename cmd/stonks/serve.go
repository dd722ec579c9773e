package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/seenimoa/stonks/api"
	"github.com/seenimoa/stonks/internal/analysis/macro"
	"github.com/seenimoa/stonks/internal/config"
	"github.com/seenimoa/stonks/internal/infra"
	"github.com/seenimoa/stonks/internal/scheduler"
)

const cacheSweepSchedule = "@every 1m"

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.API.Port = port
		}

		dash, err := newDashboard(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sched := scheduler.New(log.Logger)
		for _, j := range housekeeping(cfg) {
			if err := sched.AddJob(j.spec, j.job); err != nil {
				return fmt.Errorf("schedule %s: %w", j.job.Name(), err)
			}
		}
		sched.Start()
		defer sched.Stop()

		addr := cfg.API.Addr()
		fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("Starting Stonks API server on "+addr))
		return api.NewServer(cfg, dash, log.Logger).ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "override api.port")
}

type scheduled struct {
	spec string
	job  scheduler.Job
}

// housekeeping lists the background jobs the server runs: expiring
// cached provider responses and pruning old scan snapshots.
func housekeeping(c *config.Config) []scheduled {
	jobs := []scheduled{{
		spec: cacheSweepSchedule,
		job: scheduler.FuncJob{JobName: "cache-sweep", Fn: func() error {
			if n := infra.SweepAll(); n > 0 {
				log.Debug().Int("evicted", n).Msg("cache swept")
			}
			return nil
		}},
	}}
	if c.Scan.ExportDir != "" && c.Scan.CleanupSchedule != "" {
		dir, maxAge := c.Scan.ExportDir, c.Scan.MaxAge()
		jobs = append(jobs, scheduled{
			spec: c.Scan.CleanupSchedule,
			job: scheduler.FuncJob{JobName: "snapshot-cleanup", Fn: func() error {
				n, err := macro.CleanupSnapshots(dir, maxAge, time.Now())
				if err != nil {
					return err
				}
				if n > 0 {
					log.Info().Int("removed", n).Str("dir", dir).Msg("old scan snapshots removed")
				}
				return nil
			}},
		})
	}
	return jobs
}
