package serve

import (
	"github.com/spf13/cobra"

	"github.com/zoneheat/zoneheat/internal/app"
	"github.com/zoneheat/zoneheat/internal/conf"
	"github.com/zoneheat/zoneheat/internal/errors"
	"github.com/zoneheat/zoneheat/internal/logger"
	"github.com/zoneheat/zoneheat/internal/runtime"
)

// Command creates the serve command. It runs until the command context is
// cancelled, then drains in-flight requests.
func Command(rt *runtime.Context, settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Start the zoneheat HTTP API with occupancy, exhibit and zone search routes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := app.New(ctx, rt, settings)
			if err != nil {
				return err
			}
			defer a.Close()

			a.Log.Info("starting zoneheat",
				logger.String("version", rt.Version),
				logger.String("build_date", rt.BuildDate),
				logger.String("db_driver", settings.Database.Driver))

			preflight := a.Preflight()
			for _, w := range preflight.Warnings {
				a.Log.Warn(w)
			}
			if !preflight.Valid {
				for _, e := range preflight.Errors {
					a.Log.Error(e)
				}
				return errors.Newf("preflight failed with %d errors", len(preflight.Errors)).
					Component("cmd").
					Category(errors.CategoryConfiguration).
					Build()
			}

			srv, err := a.Server()
			if err != nil {
				return err
			}
			return srv.Start(ctx)
		},
	}
}
