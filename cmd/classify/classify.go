package classify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zoneheat/zoneheat/internal/app"
	"github.com/zoneheat/zoneheat/internal/conf"
	"github.com/zoneheat/zoneheat/internal/logger"
	"github.com/zoneheat/zoneheat/internal/runtime"
)

// Command creates the classify command. It uses the same resolver as the
// HTTP API but never opens the database.
func Command(rt *runtime.Context, settings *conf.Settings) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "classify <text>",
		Short: "Resolve an interest query to a zone",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context(), rt, settings,
				app.WithoutDatabase(),
				app.WithLogger(logger.NewSlogLogger(cmd.ErrOrStderr(), logger.LogLevelWarn, nil)))
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Resolver.Classify(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			_, err = fmt.Fprintf(out, "%s\t(%s)\n", res.ZoneLabel, res.Source)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}
