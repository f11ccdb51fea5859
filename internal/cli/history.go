package cli

import (
	"errors"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or clear past generations",
	}
	cmd.AddCommand(newHistoryListCmd(e), newHistoryStatsCmd(e), newHistoryClearCmd(e))
	return cmd
}

func newHistoryListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List past generations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := e.newService(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			entries, err := svc.History(ctx)
			if err != nil {
				return err
			}

			p := newPrinter(cmd)
			if p.isJSON() {
				for i := range entries {
					entries[i].Key = ""
				}
				return p.json(entries)
			}
			rows := make([][]string, len(entries))
			for i, en := range entries {
				rows[i] = []string{
					en.CreatedAt.Local().Format(time.DateTime),
					en.Team1,
					en.Team2,
					en.CanonicalDate,
					en.CanonicalTime,
					en.SaltID,
				}
			}
			p.table([]string{"CREATED", "TEAM 1", "TEAM 2", "DATE", "TIME", "SALT"}, rows)
			return nil
		},
	}
}

func newHistoryStatsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count past generations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := e.newService(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			st, err := svc.Stats(ctx)
			if err != nil {
				return err
			}

			p := newPrinter(cmd)
			if p.isJSON() {
				return p.json(map[string]any{"total": st.Total, "today": st.Today, "last": st.Last})
			}
			last := "-"
			if st.Last != nil {
				last = st.Last.Format(time.DateTime)
			}
			p.kv([][2]string{
				{"Total", strconv.Itoa(st.Total)},
				{"Today", strconv.Itoa(st.Today)},
				{"Last", last},
			})
			return nil
		},
	}
}

func newHistoryClearCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded generation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return errors.New("refusing to clear the history without --yes")
			}
			ctx := cmd.Context()
			svc, err := e.newService(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.ClearHistory(ctx); err != nil {
				return err
			}
			newPrinter(cmd).line("history cleared")
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "confirm clearing")
	return cmd
}
