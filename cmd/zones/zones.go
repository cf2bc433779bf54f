package zones

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zoneheat/zoneheat/internal/zone"
)

// catalog is the document printed with --yaml.
type catalog struct {
	Zones         []zone.Zone          `yaml:"zones"`
	TotalCapacity int                  `yaml:"total_capacity"`
	Bands         []zone.BandThreshold `yaml:"bands"`
}

// Command creates the zones command.
func Command() *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "zones",
		Short: "Print the zone registry and load bands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := zone.Default()
			doc := catalog{Zones: reg.All(), TotalCapacity: reg.TotalCapacity(), Bands: zone.Thresholds()}
			if asYAML {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(doc); err != nil {
					return err
				}
				return enc.Close()
			}
			return writeTable(cmd.OutOrStdout(), doc)
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print as YAML")
	return cmd
}

func writeTable(w io.Writer, doc catalog) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCAPACITY\tTHEME")
	for _, z := range doc.Zones {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", z.ID, z.Name, z.Capacity, z.Theme)
	}
	fmt.Fprintf(tw, "\t\t%d\ttotal\n", doc.TotalCapacity)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "BAND\tFROM %\tCOLOR\t")
	for _, b := range doc.Bands {
		fmt.Fprintf(tw, "%s\t%d\t%s\t\n", b.Band, b.MinPercent, b.Color)
	}
	return tw.Flush()
}
