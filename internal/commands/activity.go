package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/pembukuan-dev/pembukuan/internal/activitylog"
)

func newActivityCommand(opts *globalOptions) *cobra.Command {
	var all bool
	var limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the local log of changes made through this CLI",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			entries, err := activitylog.Read(a.stateDir)
			if err != nil {
				return err
			}
			profile := a.profile
			if all {
				profile = ""
			}

			w := newTable(cmd.OutOrStdout())
			row(w, "TIME", "PROFILE", "ACTION", "REF", "DETAILS")
			for _, e := range activitylog.Filter(entries, profile, limit) {
				row(w, e.Timestamp.Local().Format(time.DateTime), e.Profile, e.Action, e.Ref, e.Details)
			}
			return w.Flush()
		}),
	}

	cmd.Flags().BoolVar(&all, "all", false, "include every profile")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "show at most the last n entries (0 for all)")
	return cmd
}
