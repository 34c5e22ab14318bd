// Package cmd implements the geoctl commands.
//
// Every command except version runs against a simulated device built from
// the configured profile, so negotiations can be replayed without a phone.
package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// ErrFailed is returned when a command already printed its failure.
var ErrFailed = errors.New("negotiation failed")

var (
	v       = viper.New()
	cfgFile string
	current *session
)

var rootCmd = &cobra.Command{
	Use:   "geoctl",
	Short: "Negotiate location access with a simulated device",
	Long: `geoctl drives the location negotiation flows (enable, authorize,
fetch) against a simulated device described by a YAML profile.

Examples:
  geoctl position
  geoctl position --timeout 5s --prompt yes
  geoctl change-authorization --profile ./revoked.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd, v, cfgFile)
		if err != nil {
			return err
		}
		current = s
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current != nil {
			current.Close()
			current = nil
		}
	},
}

// Execute runs the CLI.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if current != nil {
		current.Close()
		current = nil
	}
	return err
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default is ./geoctl.yaml)")
	flags.String("profile", "", "simulated device profile (default geoctl-device.yaml)")
	flags.String("prompt", "", "how prompts are answered: ask, yes or no")
	flags.String("log-level", "", "minimum log level")
	flags.String("log-format", "", "log format: console or json")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address")

	_ = v.BindPFlag("profile", flags.Lookup("profile"))
	_ = v.BindPFlag("prompt", flags.Lookup("prompt"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = v.BindPFlag("metrics.addr", flags.Lookup("metrics-addr"))

	rootCmd.AddCommand(positionCmd)
	rootCmd.AddCommand(authorizedCmd)
	rootCmd.AddCommand(changeCmd)
	rootCmd.AddCommand(versionCmd)
}
