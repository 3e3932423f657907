package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulation",
		Short: "Console client for the voice assistant",
	}

	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newSendCmd())
	return cmd
}
