package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/habitoapp/habito-server/internal/di/providers"
	"github.com/habitoapp/habito-server/internal/service"
)

type reportOptions struct {
	email string
	asOf  string
	month string
}

func (a *app) reportCmd() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a user's progress",
		Long: `Print a user's streaks, life balance and month table.

Examples:
  habitoctl report --email ana@example.com
  habitoctl report --email ana@example.com --as-of 2024-03-06 --month 2024-02`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			injector, err := a.container()
			if err != nil {
				return err
			}
			defer func() { _ = injector.Shutdown() }()

			storeHandle, err := do.Invoke[*providers.StoreHandle](injector)
			if err != nil {
				return err
			}
			progress, err := do.Invoke[*service.ProgressService](injector)
			if err != nil {
				return err
			}

			user, err := storeHandle.GetUserByEmail(cmd.Context(), opts.email)
			if err != nil {
				return fmt.Errorf("find user %q: %w", opts.email, err)
			}

			ctx := cmd.Context()
			streaks, err := progress.Streak(ctx, user.ID, opts.asOf)
			if err != nil {
				return err
			}
			balance, err := progress.Balance(ctx, user.ID, opts.asOf)
			if err != nil {
				return err
			}
			month, err := progress.Month(ctx, user.ID, opts.month, opts.asOf)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s> as of %s\n\n", user.DisplayName(), user.Email, streaks.Day)
			writeStreaks(out, streaks)
			fmt.Fprintln(out)
			writeBalance(out, balance)
			fmt.Fprintln(out)
			writeMonth(out, month)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "", "Account email")
	cmd.Flags().StringVar(&opts.asOf, "as-of", "", "Reference day (YYYY-MM-DD), today by default")
	cmd.Flags().StringVar(&opts.month, "month", "", "Month table to print (YYYY-MM), the current one by default")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func writeStreaks(out io.Writer, v *service.StreakView) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HABIT\tCURRENT\tLONGEST")
	fmt.Fprintf(tw, "(any habit)\t%d\t%d\n", v.Overall.Current, v.Overall.Longest)
	for _, h := range v.Habits {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", h.Title, h.Current, h.Longest)
	}
	_ = tw.Flush()
}

func writeBalance(out io.Writer, v *service.BalanceView) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tCONSISTENCY\tHABITS")
	for _, c := range v.Categories {
		fmt.Fprintf(tw, "%s\t%d%%\t%d\n", c.Label, c.Percent, c.Habits)
	}
	_ = tw.Flush()
}

func writeMonth(out io.Writer, v *service.MonthView) {
	tw := tabwriter.NewWriter(out, 0, 4, 1, ' ', 0)

	header := []string{v.Month, ""}
	for _, h := range v.Habits {
		header = append(header, h.Title)
	}
	header = append(header, "%", "NOTE")
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, row := range v.Rows {
		cells := []string{row.Day.String()[8:], row.Weekday}
		for _, h := range v.Habits {
			mark := "·"
			if row.Checks[h.ID] {
				mark = "x"
			}
			cells = append(cells, mark)
		}
		cells = append(cells, fmt.Sprintf("%d", row.Percent), row.Note)
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	total := []string{"total", ""}
	for _, p := range v.PerHabit {
		total = append(total, fmt.Sprintf("%d%%", p.Percent))
	}
	fmt.Fprintln(tw, strings.Join(total, "\t"))
	_ = tw.Flush()
}
