// Package cli is the terminal surface of the console.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/dsp-console/domain"
	"github.com/fastygo/dsp-console/internal/config"
)

const annotationProtected = "protected"

type state struct {
	opts   Options
	apiURL string
	output string
	app    *App
}

// Execute runs the console with args and releases every resource before
// returning.
func Execute(ctx context.Context, opts Options, args []string) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	st := &state{opts: opts}
	root := newRootCommand(st)
	root.SetArgs(args)
	root.SetIn(opts.In)
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	err := root.ExecuteContext(ctx)
	if st.app != nil {
		if cerr := st.app.Close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func newRootCommand(st *state) *cobra.Command {
	root := &cobra.Command{
		Use:           "dspctl",
		Short:         "Operator console for the Digital Service Platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := st.init(cmd.Context()); err != nil {
				return err
			}
			if cmd.Annotations[annotationProtected] == "true" && !st.app.session.IsAuthenticated() {
				return domain.ErrNotAuthenticated
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&st.apiURL, "api-url", "", "backend base address (overrides DSP_API_URL)")
	root.PersistentFlags().StringVarP(&st.output, "output", "o", outputTable, "output format: table or json")

	root.AddCommand(
		newLoginCommand(st),
		newLogoutCommand(st),
		newWhoAmICommand(st),
		newRegisterCommand(st),
		newLocationsCommand(st),
		newCamerasCommand(st),
		newEmployeesCommand(st),
		newAnalyticsCommand(st),
		newRiskCommand(st),
		newDashboardCommand(st),
		newWatchCommand(st),
	)
	return root
}

// init composes the app and restores the persisted session. It runs before
// any command output so protected commands see the restored state.
func (st *state) init(ctx context.Context) error {
	if st.app != nil {
		return nil
	}
	if st.output != outputTable && st.output != outputJSON {
		return fmt.Errorf("unsupported output format %q", st.output)
	}

	cfg := st.opts.Config
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if st.apiURL != "" {
		copied := *cfg
		if err := copied.ResolveAPIURL(st.apiURL); err != nil {
			return err
		}
		cfg = &copied
	}

	app, err := newApp(ctx, cfg, st.opts)
	if err != nil {
		return err
	}
	st.app = app
	app.logger.Debug("console ready", zap.String("api", app.gateway.BaseURL()))
	app.boot.Run(ctx)
	return nil
}

func (st *state) printer() printer {
	return printer{out: st.opts.Out, format: st.output}
}

func (st *state) stdout() io.Writer {
	return st.opts.Out
}

func protected(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationProtected] = "true"
	return cmd
}

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.WrapError(domain.ErrCodeInvalid, fmt.Sprintf("invalid %s id %q", what, raw), nil)
	}
	return id, nil
}

// ExitCode maps an error returned by Execute onto a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return 3
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return 2
	default:
		return 1
	}
}
