package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastygo/dsp-console/domain"
	"github.com/fastygo/dsp-console/internal/services/watch"
)

func newAnalyticsCommand(st *state) *cobra.Command {
	return protected(&cobra.Command{
		Use:   "analytics <location-id>",
		Short: "Show daily analytics of a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "location")
			if err != nil {
				return err
			}
			rows, err := st.app.api.LocationAnalytics(cmd.Context(), id)
			if err != nil {
				return err
			}
			return st.printer().analytics(rows)
		},
	})
}

func newRiskCommand(st *state) *cobra.Command {
	return protected(&cobra.Command{
		Use:   "risk <location-id>",
		Short: "Show the latest risk score of a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "location")
			if err != nil {
				return err
			}
			score, err := st.app.api.LocationRisk(cmd.Context(), id)
			if err != nil {
				return err
			}
			return st.printer().risk(score)
		},
	})
}

func newDashboardCommand(st *state) *cobra.Command {
	return protected(&cobra.Command{
		Use:   "dashboard",
		Short: "Summarize locations, cameras and employees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := st.app.dashboard.Summary(cmd.Context())
			if err != nil {
				return err
			}
			return st.printer().dashboard(summary)
		},
	})
}

func newWatchCommand(st *state) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh the dashboard periodically until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				interval = st.app.cfg.Watch.Interval
			}
			ctx, stop := st.app.lifecycle.SignalContext(cmd.Context())
			defer stop()
			ctx, cancel := context.WithCancelCause(ctx)
			defer cancel(nil)

			p := st.printer()
			w, err := watch.New(st.app.dashboard, interval, func(status watch.Status) {
				if status.Err != nil {
					if domain.IsDomainError(status.Err, domain.ErrCodeUnauthorized) {
						cancel(status.Err)
						return
					}
					fmt.Fprintf(st.opts.Err, "refresh failed: %v\n", status.Err)
					return
				}
				_ = p.dashboard(status.Dashboard)
			}, st.app.logger.Named("watch"))
			if err != nil {
				return err
			}

			w.Start(ctx)
			<-ctx.Done()
			w.Stop(context.WithoutCancel(ctx))

			if cause := context.Cause(ctx); cause != nil && domain.IsDomainError(cause, domain.ErrCodeUnauthorized) {
				return cause
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "refresh interval (default WATCH_INTERVAL)")
	return protected(cmd)
}
