package cmd

import (
	"github.com/spf13/cobra"
)

var authorizedCmd = &cobra.Command{
	Use:   "authorized",
	Short: "Print whether location access is authorized",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := current.page
		p.Load(cmd.Context())

		state := p.Snapshot()
		renderAuthorized(cmd.OutOrStdout(), state)
		if state.Error != "" {
			return ErrFailed
		}
		return nil
	},
}

var changeCmd = &cobra.Command{
	Use:   "change-authorization",
	Short: "Toggle location access and print the result",
	Long: `When access is authorized, asks whether to revoke it and opens the app
settings. When it is not, requests it from the device.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := current.page
		p.Change(cmd.Context())

		state := p.Snapshot()
		renderAuthorized(cmd.OutOrStdout(), state)
		if state.Error != "" {
			return ErrFailed
		}
		return nil
	},
}
