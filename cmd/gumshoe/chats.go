package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "List active chats",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, rpc, err := newAgent()
		if err != nil {
			return err
		}
		defer rpc.Close()

		chats, err := client.ListChats(cmd.Context())
		if err != nil {
			return fmt.Errorf("list chats: %w", err)
		}

		if len(chats) == 0 {
			fmt.Println(headerStyle.Render("No active chats"))
			return nil
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("%d chat(s)", len(chats))))
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Status")+"\t"+titleStyle.Render("Last activity")+"\t"+titleStyle.Render("Last message")+"\t")
		for _, c := range chats {
			name := c.DisplayName
			if name == "" {
				name = "Untitled"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
				idStyle.Render(c.ID),
				truncate(name, 40),
				renderStatus(c.Status),
				dimStyle.Render(c.LastActivity),
				dimStyle.Render(truncate(c.LastMessage, 50)),
			)
		}
		return w.Flush()
	},
}

// renderStatus colors a server-reported status value.
func renderStatus(status string) string {
	switch status {
	case "active", "connected", "online", "completed":
		return okStyle.Render(status)
	case "error", "failed", "offline", "disconnected":
		return errStyle.Render(status)
	default:
		return dimStyle.Render(status)
	}
}

func init() {
	rootCmd.AddCommand(chatsCmd)
}
