package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mazensapp/visitlog/internal/client/models"
)

// NewBrandCommand creates the brand command group.
func NewBrandCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brand",
		Short: "Manage device brands",
	}
	cmd.AddCommand(newBrandListCommand(rootOpts))
	cmd.AddCommand(newBrandAddCommand(rootOpts))
	cmd.AddCommand(newBrandModelCommand(rootOpts))
	cmd.AddCommand(newBrandRmCommand(rootOpts))
	return cmd
}

func newBrandListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List brands and their models",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			brands, err := app.Brands.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, b := range brands {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n",
					b.ID, b.Name, strings.Join(b.Models, ", "))
			}
			return nil
		},
	}
}

func newBrandAddCommand(rootOpts *RootOptions) *cobra.Command {
	var brandModels []string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a brand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			created, err := app.Brands.Add(cmd.Context(), models.Brand{
				Name:   args[0],
				Models: brandModels,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added brand %s (%s)\n", created.Name, created.ID)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&brandModels, "models", nil, "device models (comma separated)")
	return cmd
}

func newBrandModelCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "model <brand-id> <model>",
		Short: "Register a device model under a brand",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			b, err := app.Brands.UpsertModel(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", b.Name, strings.Join(b.Models, ", "))
			return nil
		},
	}
}

func newBrandRmCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <brand-id>",
		Short: "Remove a brand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Brands.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed brand %s\n", args[0])
			return nil
		},
	}
}
