package cmd

import (
	"text/tabwriter"

	"github.com/psds-microservice/arm-service-desk/internal/desk"
	"github.com/psds-microservice/arm-service-desk/internal/model"
	"github.com/psds-microservice/arm-service-desk/internal/view"
	"github.com/spf13/cobra"
)

var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "Maintenance tickets",
}

var ticketsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your tickets (admins see all)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDesk(cmd.Context(), func(d *desk.Desk) error {
			m := d.View("")
			return printTickets(m.Tickets, m.IsAdmin)
		})
	},
}

var ticketInput struct {
	arm         string
	problemType string
	priority    string
	description string
}

var ticketsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "File a ticket against a workstation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := model.TicketInput{
			ArmID:       ticketInput.arm,
			ProblemType: model.ProblemType(ticketInput.problemType),
			Priority:    model.Priority(ticketInput.priority),
			Description: ticketInput.description,
		}
		return withDesk(cmd.Context(), func(d *desk.Desk) error {
			if _, err := d.CreateTicket(cmd.Context(), in); err != nil {
				return err
			}
			m := d.View("")
			return printTickets(m.Tickets, m.IsAdmin)
		})
	},
}

var ticketsStatusCmd = &cobra.Command{
	Use:       "status <id> <new|in_progress|resolved>",
	Short:     "Move a ticket forward (admin)",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(model.TicketStatusInProgress), string(model.TicketStatusResolved)},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDesk(cmd.Context(), func(d *desk.Desk) error {
			if _, err := d.UpdateTicketStatus(cmd.Context(), args[0], model.TicketStatus(args[1])); err != nil {
				return err
			}
			m := d.View("")
			return printTickets(m.Tickets, m.IsAdmin)
		})
	},
}

func init() {
	fs := ticketsCreateCmd.Flags()
	fs.StringVar(&ticketInput.arm, "arm", "", "workstation id, e.g. ARM-001")
	fs.StringVar(&ticketInput.problemType, "type", string(model.ProblemHardware), "hardware, software, network or other")
	fs.StringVar(&ticketInput.priority, "priority", string(model.PriorityMedium), "low, medium, high or critical")
	fs.StringVarP(&ticketInput.description, "description", "d", "", "what is wrong")
	_ = ticketsCreateCmd.MarkFlagRequired("arm")

	ticketsCmd.AddCommand(ticketsListCmd, ticketsCreateCmd, ticketsStatusCmd)
}

func printTickets(rows []view.TicketRow, admin bool) error {
	return render(stdout, rows, func(tw *tabwriter.Writer) {
		if admin {
			row(tw, "ID", "WORKSTATION", "TYPE", "PRIORITY", "STATUS", "CREATED BY", "CREATED", "NEXT")
		} else {
			row(tw, "ID", "WORKSTATION", "TYPE", "PRIORITY", "STATUS", "CREATED")
		}
		for _, t := range rows {
			created := t.CreatedAt.Local().Format("2006-01-02 15:04")
			if admin {
				row(tw, t.ID, t.Workstation, t.ProblemLabel, t.PriorityLabel, t.StatusLabel, t.CreatedBy, created, orDash(string(t.NextStatus)))
			} else {
				row(tw, t.ID, t.Workstation, t.ProblemLabel, t.PriorityLabel, t.StatusLabel, created)
			}
		}
	})
}
