package cmd

import (
	"text/tabwriter"

	"github.com/psds-microservice/arm-service-desk/internal/desk"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Workstation and ticket counters (your own tickets unless admin)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDesk(cmd.Context(), func(d *desk.Desk) error {
			st, err := d.RefreshStats(cmd.Context())
			if err != nil {
				return err
			}
			admin := d.Session().IsAdmin()
			var body any = st.Mine()
			if admin {
				body = st
			}
			return render(stdout, body, func(tw *tabwriter.Writer) {
				if admin {
					row(tw, "Workstations:", st.TotalArms)
					row(tw, "Operational:", st.OperationalArms)
					row(tw, "Tickets:", st.TotalTickets)
					row(tw, "  new:", st.NewTickets)
					row(tw, "  in progress:", st.InProgressTickets)
					row(tw, "  resolved:", st.ResolvedTickets)
					return
				}
				row(tw, "My tickets:", st.MyTickets)
				row(tw, "  new:", st.MyNewTickets)
				row(tw, "  in progress:", st.MyInProgressTickets)
				row(tw, "  resolved:", st.MyResolvedTickets)
			})
		})
	},
}
