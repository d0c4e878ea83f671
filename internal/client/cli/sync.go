package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"

	"github.com/mazensapp/visitlog/internal/client/services"
	"github.com/mazensapp/visitlog/internal/common"
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	FromZero bool
	Retries  uint64
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a sync round against the server",
		Long: `Run one sync round: pull remote changes since the last known
point, reconcile them with local changes, push the local winners and
record the new watermark.

Transient transport failures are retried with exponential backoff; the
round itself stays safe to repeat.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.FromZero, "from-zero", false, "refetch the full remote history")
	cmd.Flags().Uint64Var(&opts.Retries, "retries", 3, "retries on transient transport failures")

	return cmd
}

func runSync(ctx context.Context, cmd *cobra.Command, opts *SyncOptions) error {
	app, err := openApp(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer app.Close()

	var res *services.RoundResult

	backoff := retry.WithMaxRetries(opts.Retries, retry.NewExponential(time.Second))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var rerr error
		res, rerr = app.Sync.RunRound(ctx, opts.FromZero)
		if errors.Is(rerr, common.ErrTransport) {
			return retry.RetryableError(rerr)
		}
		return rerr
	})
	if err != nil {
		return err
	}

	if !res.Synced {
		fmt.Fprintln(cmd.OutOrStdout(), "offline: local data only")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "epoch %d, %d visits, %d brands\n",
		res.Epoch, len(res.Visits), len(res.Brands))
	return nil
}
