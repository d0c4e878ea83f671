package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mazensapp/visitlog/internal/client/models"
)

const dateLayout = "2006-01-02"

func parseDate(s string) (int64, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t.UnixMilli(), nil
}

func formatDate(millis int64) string {
	if millis == 0 {
		return "-"
	}
	return time.UnixMilli(millis).UTC().Format(dateLayout)
}

// visitFlags collects the record fields shared by add and edit.
type visitFlags struct {
	Date    string
	Client  string
	Contact string
	Brand   string
	Model   string
	Problem string
	Fix     string
	Amount  float64
}

func (f *visitFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Date, "date", "", "visit date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.Client, "client", "", "client name")
	cmd.Flags().StringVar(&f.Contact, "contact", "", "client contact")
	cmd.Flags().StringVar(&f.Brand, "brand", "", "device brand")
	cmd.Flags().StringVar(&f.Model, "model", "", "device model")
	cmd.Flags().StringVar(&f.Problem, "problem", "", "reported problem")
	cmd.Flags().StringVar(&f.Fix, "fix", "", "applied fix")
	cmd.Flags().Float64Var(&f.Amount, "amount", 0, "charged amount")
}

// NewVisitCommand creates the visit command group.
func NewVisitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visit",
		Short: "Manage repair visits",
	}
	cmd.AddCommand(newVisitListCommand(rootOpts))
	cmd.AddCommand(newVisitAddCommand(rootOpts))
	cmd.AddCommand(newVisitEditCommand(rootOpts))
	cmd.AddCommand(newVisitRmCommand(rootOpts))
	cmd.AddCommand(newVisitMvCommand(rootOpts))
	return cmd
}

func newVisitListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List visits",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			visits, err := app.Visits.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, v := range visits {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s %s\t%s\t%.2f\n",
					v.ID, formatDate(v.Date), v.Client, v.Brand, v.Model, v.Problem, v.Amount)
			}
			return nil
		},
	}
}

func newVisitAddCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &visitFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a visit",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			var date int64
			if flags.Date != "" {
				if date, err = parseDate(flags.Date); err != nil {
					return err
				}
			}

			created, err := app.Visits.Add(cmd.Context(), models.Visit{
				Date:    date,
				Client:  flags.Client,
				Contact: flags.Contact,
				Brand:   flags.Brand,
				Model:   flags.Model,
				Problem: flags.Problem,
				Fix:     flags.Fix,
				Amount:  flags.Amount,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added visit %d\n", created.ID)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newVisitEditCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &visitFlags{}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a visit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid visit id %q", args[0])
			}

			app, err := openApp(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			v, err := app.Visits.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			applyChanged := map[string]func() error{
				"date": func() error {
					date, err := parseDate(flags.Date)
					if err != nil {
						return err
					}
					v.Date = date
					return nil
				},
				"client":  func() error { v.Client = flags.Client; return nil },
				"contact": func() error { v.Contact = flags.Contact; return nil },
				"brand":   func() error { v.Brand = flags.Brand; return nil },
				"model":   func() error { v.Model = flags.Model; return nil },
				"problem": func() error { v.Problem = flags.Problem; return nil },
				"fix":     func() error { v.Fix = flags.Fix; return nil },
				"amount":  func() error { v.Amount = flags.Amount; return nil },
			}
			for name, apply := range applyChanged {
				if cmd.Flags().Changed(name) {
					if err := apply(); err != nil {
						return err
					}
				}
			}

			if _, err := app.Visits.Update(cmd.Context(), *v); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated visit %d\n", id)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newVisitRmCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a visit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid visit id %q", args[0])
			}

			app, err := openApp(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Visits.Remove(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed visit %d\n", id)
			return nil
		},
	}
}

func newVisitMvCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <old-id> <new-id>",
		Short: "Move a visit to a new identifier",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid visit id %q", args[0])
			}
			newID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid visit id %q", args[1])
			}

			app, err := openApp(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			v, err := app.Visits.Get(cmd.Context(), oldID)
			if err != nil {
				return err
			}
			moved := *v
			moved.ID = newID

			if _, err := app.Visits.Move(cmd.Context(), oldID, moved); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved visit %d to %d\n", oldID, newID)
			return nil
		},
	}
}
