package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <chat-id>",
	Short: "Cancel an in-flight investigation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, rpc, err := newAgent()
		if err != nil {
			return err
		}
		defer rpc.Close()

		result, err := client.Cancel(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("cancel: %w", err)
		}

		fmt.Println(renderStatus(result.Status))
		if result.Message != "" {
			fmt.Println(dimStyle.Render(result.Message))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
