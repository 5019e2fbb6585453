package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(topicsCmd)
}

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Prints the device's command and event topics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}
		topics := topicsFor(cfg)
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "commands: %s\nevents:   %s\n", topics.Commands, topics.Events)
		return err
	},
}
