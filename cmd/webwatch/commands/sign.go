package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
)

var (
	signFlags  envelopeFlags
	signPretty bool
)

func init() {
	signFlags.register(signCmd)
	signCmd.Flags().BoolVar(&signPretty, "pretty", false, "Indent the output. The signature is computed over the compact form either way.")
	rootCmd.AddCommand(signCmd)
}

var signCmd = &cobra.Command{
	Use:   "sign --type <TYPE> [--id <id> | --site <json>]",
	Short: "Prints a signed command envelope without publishing it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}
		envelope, err := signFlags.build(cfg)
		if err != nil {
			return err
		}
		out, err := envelope.Bytes()
		if err != nil {
			return err
		}
		if signPretty {
			out = pretty.Pretty(out)
		} else {
			out = append(out, '\n')
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))
		return err
	},
}
