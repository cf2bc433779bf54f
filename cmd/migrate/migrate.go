package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zoneheat/zoneheat/internal/app"
	"github.com/zoneheat/zoneheat/internal/conf"
	"github.com/zoneheat/zoneheat/internal/logger"
	"github.com/zoneheat/zoneheat/internal/runtime"
)

// Command creates the migrate command.
func Command(rt *runtime.Context, settings *conf.Settings) *cobra.Command {
	var skipSeed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long:  "Migrate the schema and insert a zero occupancy row for every registered zone that has none.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *settings
			s.Database.Seed = !skipSeed

			a, err := app.New(cmd.Context(), rt, &s,
				app.WithLogger(logger.NewSlogLogger(cmd.ErrOrStderr(), logger.LogLevelWarn, nil)))
			if err != nil {
				return err
			}
			defer a.Close()

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (driver %s, %d zones)\n",
				s.Database.Driver, len(a.Registry.All()))
			return err
		},
	}

	cmd.Flags().BoolVar(&skipSeed, "no-seed", false, "Skip inserting zero occupancy rows")
	return cmd
}
