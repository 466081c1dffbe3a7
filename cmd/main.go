package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "futures-bot",
	Short: "A CLI for managing the futures demo trading and SMS relay services",
	Long:  `Futures Bot bundles a simulated futures-trading Telegram bot and an SMS forwarding relay.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
