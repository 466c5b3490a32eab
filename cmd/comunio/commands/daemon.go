package commands

import (
	"context"
	"errors"
	"fmt"

	"comunio-manager/internal/components/chrono"
	"comunio-manager/internal/components/telemetry"

	"github.com/spf13/cobra"
)

const report_daemon = "cli.daemon"

func init() {
	rootCmd.AddCommand(daemonCmd)
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Keeps running and records the team on the configured schedule.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tel := telemetry.NewScopedAPI("daemon", state.tel)

		telemetry.InstrumentPerfStats(ctx, tel)

		job := func() {
			res, err := state.refresh(ctx)
			if err != nil {
				tel.ReportBroken(report_daemon, err)
				return
			}
			tel.ReportCount(string(res.Status), 1)
		}

		// record today right away so a late start does not skip a day
		job()

		cron := chrono.NewStandardCron(tel)
		defer cron.Stop()
		err := cron.Cron(state.cfg.Schedule, job)
		if err != nil {
			return fmt.Errorf("schedule %q: %w", state.cfg.Schedule, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "recording on schedule %q, press Ctrl+C to stop\n", state.cfg.Schedule)
		<-ctx.Done()
		return ignoreCanceled(ctx.Err())
	},
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
