package commands

import (
	"fmt"

	"github.com/aleister1102/webwatch/internal/messaging"
	"github.com/spf13/cobra"
)

var publishFlags envelopeFlags

func init() {
	publishFlags.register(publishCmd)
	rootCmd.AddCommand(publishCmd)
}

var publishCmd = &cobra.Command{
	Use:   "publish --type <TYPE> [--id <id> | --site <json>]",
	Short: "Signs a command and publishes it to the device's commands topic.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}
		envelope, err := publishFlags.build(cfg)
		if err != nil {
			return err
		}
		payload, err := envelope.Bytes()
		if err != nil {
			return err
		}

		topics := topicsFor(cfg)
		publisher := messaging.NewPublisher(clientConfig(cfg), nil, quietLogger(cfg))
		if err := publisher.PublishCommand(cmd.Context(), topics.Commands, payload); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "published %s to %s\n", envelope.Type, topics.Commands)
		return err
	},
}
