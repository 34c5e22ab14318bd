package cmd

import (
	"github.com/spf13/cobra"
)

var positionCmd = &cobra.Command{
	Use:   "position",
	Short: "Negotiate access and print the current position",
	Long: `Checks that location is switched on and authorized, asking the user to
fix it if needed, then takes one position sample and prints it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := current.page
		p.GetPosition(cmd.Context())

		state := p.Snapshot()
		renderPosition(cmd.OutOrStdout(), state)
		if state.Error != "" {
			return ErrFailed
		}
		return nil
	},
}

func init() {
	flags := positionCmd.Flags()
	flags.Bool("high-accuracy", true, "request the best available fix")
	flags.Duration("timeout", 0, "fetch timeout, 0 for none (default 1m)")
	flags.Duration("maximum-age", 0, "accept a cached fix up to this age")

	_ = v.BindPFlag("fetch.high_accuracy", flags.Lookup("high-accuracy"))
	_ = v.BindPFlag("fetch.timeout", flags.Lookup("timeout"))
	_ = v.BindPFlag("fetch.maximum_age", flags.Lookup("maximum-age"))
}
