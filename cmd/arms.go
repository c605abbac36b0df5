package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/psds-microservice/arm-service-desk/internal/desk"
	"github.com/psds-microservice/arm-service-desk/internal/model"
	"github.com/psds-microservice/arm-service-desk/internal/view"
	"github.com/spf13/cobra"
)

var armsCmd = &cobra.Command{
	Use:     "arms",
	Aliases: []string{"workstations"},
	Short:   "Workstation inventory",
}

var armsSearch string

var armsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workstations, optionally filtered by a text search",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDesk(cmd.Context(), func(d *desk.Desk) error {
			return printWorkstations(d.View(armsSearch).Workstations)
		})
	},
}

var armsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one workstation with its characteristics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDesk(cmd.Context(), func(d *desk.Desk) error {
			w, ok := d.Cache().FindWorkstation(args[0])
			if !ok {
				return fmt.Errorf("workstation %s not found", args[0])
			}
			return printWorkstation(w)
		})
	},
}

// workstationFlags backs both add and update.
type workstationFlags struct {
	inventory  string
	name       string
	location   string
	user       string
	department string
	status     string
	chars      model.Characteristics
}

var (
	addFlags    workstationFlags
	updateFlags workstationFlags
)

var armsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a workstation (admin)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := model.WorkstationInput{
			InventoryNumber: addFlags.inventory,
			Name:            addFlags.name,
			Location:        addFlags.location,
			User:            addFlags.user,
			Department:      addFlags.department,
			Characteristics: addFlags.chars,
		}
		return withDesk(cmd.Context(), func(d *desk.Desk) error {
			w, err := d.CreateWorkstation(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printWorkstation(*w)
		})
	},
}

var armsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change workstation fields; characteristics are merged (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch := updatePatch(cmd)
		if patch.Empty() {
			return errors.New("nothing to update: pass at least one field flag")
		}
		return withDesk(cmd.Context(), func(d *desk.Desk) error {
			w, err := d.UpdateWorkstation(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return printWorkstation(*w)
		})
	},
}

var armsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a workstation without active tickets (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDesk(cmd.Context(), func(d *desk.Desk) error {
			return d.DeleteWorkstation(cmd.Context(), args[0])
		})
	},
}

func init() {
	armsListCmd.Flags().StringVarP(&armsSearch, "search", "s", "", "match name, location, user or department")

	bindWorkstationFlags(armsAddCmd, &addFlags)
	_ = armsAddCmd.MarkFlagRequired("inventory")
	_ = armsAddCmd.MarkFlagRequired("name")

	bindWorkstationFlags(armsUpdateCmd, &updateFlags)
	armsUpdateCmd.Flags().StringVar(&updateFlags.status, "status", "", "operational, broken or maintenance")

	armsCmd.AddCommand(armsListCmd, armsShowCmd, armsAddCmd, armsUpdateCmd, armsDeleteCmd)
}

func bindWorkstationFlags(cmd *cobra.Command, f *workstationFlags) {
	fs := cmd.Flags()
	fs.StringVar(&f.inventory, "inventory", "", "inventory number")
	fs.StringVar(&f.name, "name", "", "workstation name")
	fs.StringVar(&f.location, "location", "", "room or site")
	fs.StringVar(&f.user, "user", "", "assigned user")
	fs.StringVar(&f.department, "department", "", "department")
	fs.StringVar(&f.chars.CPU, "cpu", "", "processor")
	fs.StringVar(&f.chars.RAM, "ram", "", "memory")
	fs.StringVar(&f.chars.Storage, "storage", "", "storage")
	fs.StringVar(&f.chars.OS, "os", "", "operating system")
	fs.StringVar(&f.chars.Monitor, "monitor", "", "monitor")
	fs.StringVar(&f.chars.KeyboardMouse, "keyboard-mouse", "", "keyboard and mouse")
	fs.StringVar(&f.chars.Additional, "additional", "", "anything else")
}

// updatePatch carries only the flags the user actually set.
func updatePatch(cmd *cobra.Command) model.WorkstationPatch {
	fs := cmd.Flags()
	var p model.WorkstationPatch
	set := func(name string, dst **string, v string) {
		if fs.Changed(name) {
			*dst = &v
		}
	}
	set("inventory", &p.InventoryNumber, updateFlags.inventory)
	set("name", &p.Name, updateFlags.name)
	set("location", &p.Location, updateFlags.location)
	set("user", &p.User, updateFlags.user)
	set("department", &p.Department, updateFlags.department)
	if fs.Changed("status") {
		st := model.WorkstationStatus(updateFlags.status)
		p.Status = &st
	}
	for _, name := range []string{"cpu", "ram", "storage", "os", "monitor", "keyboard-mouse", "additional"} {
		if fs.Changed(name) {
			chars := updateFlags.chars
			p.Characteristics = &chars
			break
		}
	}
	return p
}

func labels() view.Labels {
	return view.ForLocale(cfg.Client.Locale)
}

func printWorkstations(rows []view.WorkstationRow) error {
	return render(stdout, rows, func(tw *tabwriter.Writer) {
		row(tw, "ID", "INVENTORY", "NAME", "LOCATION", "USER", "DEPARTMENT", "STATUS")
		for _, w := range rows {
			row(tw, w.ID, w.InventoryNumber, w.Name, orDash(w.Location), orDash(w.User), orDash(w.Department), w.StatusLabel)
		}
	})
}

func printWorkstation(w model.Workstation) error {
	l := labels()
	unset := func(s string) string {
		if s == "" {
			return l.Unassigned
		}
		return s
	}
	return render(stdout, w, func(tw *tabwriter.Writer) {
		row(tw, "ID:", w.ID)
		row(tw, "Inventory:", w.InventoryNumber)
		row(tw, "Name:", w.Name)
		row(tw, "Location:", orDash(w.Location))
		row(tw, "User:", orDash(w.User))
		row(tw, "Department:", orDash(w.Department))
		row(tw, "Status:", l.WorkstationStatusLabel(w.Status))
		row(tw, "CPU:", unset(w.Characteristics.CPU))
		row(tw, "RAM:", unset(w.Characteristics.RAM))
		row(tw, "Storage:", unset(w.Characteristics.Storage))
		row(tw, "OS:", unset(w.Characteristics.OS))
		if w.Characteristics.Monitor != "" {
			row(tw, "Monitor:", w.Characteristics.Monitor)
		}
		if w.Characteristics.KeyboardMouse != "" {
			row(tw, "Keyboard/mouse:", w.Characteristics.KeyboardMouse)
		}
		if w.Characteristics.Additional != "" {
			row(tw, "Additional:", w.Characteristics.Additional)
		}
		row(tw, "Installed:", w.CreatedAt.Local().Format("2006-01-02"))
	})
}
