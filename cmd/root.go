// Package cmd assembles the zoneheat command line.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zoneheat/zoneheat/cmd/classify"
	"github.com/zoneheat/zoneheat/cmd/hashtoken"
	"github.com/zoneheat/zoneheat/cmd/migrate"
	"github.com/zoneheat/zoneheat/cmd/serve"
	"github.com/zoneheat/zoneheat/cmd/zones"
	"github.com/zoneheat/zoneheat/internal/conf"
	"github.com/zoneheat/zoneheat/internal/runtime"
)

// globalFlags override values from config.yaml and the environment.
type globalFlags struct {
	configFile string
	port       string
	debug      bool
	dbDriver   string
	dbDSN      string
}

// RootCommand creates and returns the root command
func RootCommand(rt *runtime.Context) *cobra.Command {
	settings := &conf.Settings{}
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "zoneheat",
		Short:         "Zone occupancy, exhibit ledger and interest search service",
		Version:       rt.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, flags)

	// Commands that work without a config file.
	zonesCmd := zones.Command()
	hashTokenCmd := hashtoken.Command()

	rootCmd.AddCommand(
		serve.Command(rt, settings),
		migrate.Command(rt, settings),
		classify.Command(rt, settings),
		zonesCmd,
		hashTokenCmd,
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == zonesCmd.Name() || cmd.Name() == hashTokenCmd.Name() {
			return nil
		}
		loaded, err := conf.Load(flags.configFile)
		if err != nil {
			return err
		}
		applyOverrides(cmd, flags, loaded)
		if err := conf.ValidateSettings(loaded); err != nil {
			return err
		}
		*settings = *loaded
		return nil
	}

	return rootCmd
}

func setupFlags(rootCmd *cobra.Command, flags *globalFlags) {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "c", "", "Path to config.yaml (default: search ., ~/.config/zoneheat, /etc/zoneheat)")
	pf.StringVarP(&flags.port, "port", "p", "", "HTTP listen port")
	pf.BoolVarP(&flags.debug, "debug", "d", false, "Enable debug output")
	pf.StringVar(&flags.dbDriver, "db-driver", "", "Database driver: sqlite, mysql or postgres")
	pf.StringVar(&flags.dbDSN, "db-dsn", "", "Database connection string for mysql or postgres")
}

// applyOverrides copies explicitly set flags over loaded settings so the
// command line wins over file and environment.
func applyOverrides(cmd *cobra.Command, flags *globalFlags, s *conf.Settings) {
	f := cmd.Flags()
	if f.Changed("port") {
		s.WebServer.Port = flags.port
	}
	if f.Changed("debug") {
		s.WebServer.Debug = flags.debug
		if flags.debug {
			s.Logging.DefaultLevel = "debug"
			if s.Logging.Console != nil {
				s.Logging.Console.Level = "debug"
			}
		}
	}
	if f.Changed("db-driver") {
		s.Database.Driver = flags.dbDriver
	}
	if f.Changed("db-dsn") {
		s.Database.DSN = flags.dbDSN
	}
}
