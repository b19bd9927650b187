package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	logChatID string
	logLimit  int
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent exchanges from the local transcript",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openTranscript()
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.Recent(cmd.Context(), logChatID, logLimit)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println(headerStyle.Render("No recorded exchanges"))
			return nil
		}

		for _, e := range entries {
			fmt.Printf("%s %s %s %s\n",
				dimStyle.Render(relativeTime(e.StartedAt)),
				idStyle.Render(e.ChatID),
				renderStatus(e.Status),
				titleStyle.Render(truncate(e.Prompt, 60)),
			)
			if e.Response != "" {
				fmt.Println("  " + truncate(e.Response, 200))
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().StringVar(&logChatID, "chat", "", "Limit to one chat")
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "Maximum entries to show")
}
