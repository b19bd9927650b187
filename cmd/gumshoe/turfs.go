package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gumshoehq/gumshoe/internal/gumshoe"
)

var turfFilter gumshoe.TurfFilter

var turfsCmd = &cobra.Command{
	Use:   "turfs",
	Short: "List or search connected systems",
	Long: `Turfs lists the systems connected to the agent service. With any of
--name, --type, --os, or --status, the server-side search is used
instead of a plain listing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, rpc, err := newAgent()
		if err != nil {
			return err
		}
		defer rpc.Close()

		var turfs []gumshoe.Turf
		filtered := turfFilter != (gumshoe.TurfFilter{})
		if filtered {
			var count int
			turfs, count, err = client.SearchTurfs(cmd.Context(), turfFilter)
			if err != nil {
				return fmt.Errorf("search turfs: %w", err)
			}
			fmt.Println(headerStyle.Render(fmt.Sprintf("%d matching turf(s)", count)))
		} else {
			turfs, err = client.ListTurfs(cmd.Context())
			if err != nil {
				return fmt.Errorf("list turfs: %w", err)
			}
			fmt.Println(headerStyle.Render(fmt.Sprintf("%d turf(s)", len(turfs))))
		}

		if len(turfs) == 0 {
			return nil
		}
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Type")+"\t"+titleStyle.Render("Status")+"\t"+titleStyle.Render("OS")+"\t"+titleStyle.Render("Host")+"\t")
		for _, t := range turfs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
				idStyle.Render(t.ID),
				truncate(t.Name, 30),
				dimStyle.Render(t.Kind),
				renderStatus(t.Status),
				dimStyle.Render(t.OS),
				dimStyle.Render(t.Hostname),
			)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(turfsCmd)
	turfsCmd.Flags().StringVar(&turfFilter.Name, "name", "", "Filter by name substring")
	turfsCmd.Flags().StringVar(&turfFilter.Kind, "type", "", "Filter by turf type")
	turfsCmd.Flags().StringVar(&turfFilter.OS, "os", "", "Filter by operating system")
	turfsCmd.Flags().StringVar(&turfFilter.Status, "status", "", "Filter by connection status")
}
