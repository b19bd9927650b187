package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check connectivity to the agent service",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, rpc, err := newAgent()
		if err != nil {
			return err
		}
		defer rpc.Close()

		start := time.Now()
		if err := rpc.Ping(cmd.Context()); err != nil {
			return fmt.Errorf("ping: %w", err)
		}

		fmt.Printf("%s %s\n", okStyle.Render("ok"), dimStyle.Render(time.Since(start).Round(time.Millisecond).String()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
