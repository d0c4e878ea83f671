package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show connectivity, watermark and pending changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			if app.Mode.Offline() {
				fmt.Fprintln(out, "mode: offline")
			} else {
				fmt.Fprintln(out, "mode: online")
			}

			epoch, err := app.Repos.Metadata.Epoch(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "epoch: %d\n", epoch)

			pendingVisits, err := app.Repos.Visits.GetUpdatedSince(ctx, epoch, 0)
			if err != nil {
				return err
			}
			pendingBrands, err := app.Repos.Brands.GetUpdatedSince(ctx, epoch, 0)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "pending: %d visits, %d brands\n", len(pendingVisits), len(pendingBrands))
			return nil
		},
	}
}
