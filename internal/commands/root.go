package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pembukuan-dev/pembukuan/internal/buildinfo"
	"github.com/pembukuan-dev/pembukuan/internal/config"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	envFile    string
	profile    string
	debug      bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "pembukuan",
		Short:   "Double-entry bookkeeping for Indonesian micro and small businesses",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.FileName, "config file")
	flags.StringVar(&opts.envFile, "env-file", "", "dotenv file with PEMBUKUAN_* overrides (default ./.env if present)")
	flags.StringVarP(&opts.profile, "profile", "p", config.ProfileUMKM, "API profile: umkm or admin")
	flags.BoolVar(&opts.debug, "debug", false, "log requests at debug level")

	rootCmd.AddCommand(
		newLoginCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newRegisterCommand(opts),
		newAccountsCommand(opts),
		newTxCommand(opts),
		newReportCommand(opts),
		newAdminCommand(opts),
		newActivityCommand(opts),
	)

	return rootCmd
}
