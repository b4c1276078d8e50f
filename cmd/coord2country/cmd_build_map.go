package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/andreiashu/coord2country"
	"github.com/andreiashu/coord2country/internal/mapbuild"
)

var buildMap struct {
	boundaries string
	out        string
	width      int
	height     int
	borders    bool
	validate   bool
}

var buildMapCmd = &cobra.Command{
	Use:   "build-map",
	Short: "Render the color map from country boundaries",
	Long: `Render the color map from a GeoJSON FeatureCollection of country boundaries,
such as Natural Earth's ne_50m_admin_0_countries.geojson. Features are matched
to the color table by their WIKIDATAID property, then by name.

$ coord2country build-map --boundaries ne_50m_admin_0_countries.geojson

The map is written to data/countries.png; rebuild the binary to embed it.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if buildMap.boundaries == "" {
			return fmt.Errorf("--boundaries is required")
		}

		tbl, err := buildTable()
		if err != nil {
			return err
		}

		cfg := mapbuild.DefaultConfig()
		cfg.Width, cfg.Height = buildMap.width, buildMap.height
		cfg.Borders = buildMap.borders
		cfg.Progress = true
		cfg.Logger = appLog

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Println("Rendering color map from boundaries...")
		stats, err := mapbuild.BuildFile(ctx, buildMap.boundaries, buildMap.out, tbl, cfg)
		if err != nil {
			return err
		}
		fmt.Printf("Map written to %s: %d of %d features painted\n", buildMap.out, stats.Matched, stats.Features)
		for _, name := range stats.Unmatched {
			fmt.Printf("  no color for %s\n", name)
		}

		if buildMap.validate {
			opts, err := config.options()
			if err != nil {
				return err
			}
			opts = append(opts, coord2country.WithMapFile(buildMap.out))
			if err := coord2country.ValidateMap(opts...); err != nil {
				return fmt.Errorf("validating map: %w", err)
			}
			fmt.Println("Reference points OK.")
		}
		return nil
	},
}

// buildTable reads --table when given, otherwise the default table.
func buildTable() (*coord2country.Table, error) {
	if config.tableFile == "" {
		return coord2country.DefaultTable()
	}
	fh, err := os.Open(config.tableFile)
	if err != nil {
		return nil, fmt.Errorf("opening table: %w", err)
	}
	defer fh.Close()
	return coord2country.LoadTable(fh)
}

func init() {
	f := buildMapCmd.Flags()
	f.StringVar(&buildMap.boundaries, "boundaries", "", "GeoJSON FeatureCollection of country polygons")
	f.StringVar(&buildMap.out, "out", "data/countries.png", "output PNG")
	f.IntVar(&buildMap.width, "width", 2400, "map width in pixels")
	f.IntVar(&buildMap.height, "height", 1200, "map height in pixels")
	f.BoolVar(&buildMap.borders, "borders", true, "draw black lines between neighboring countries")
	f.BoolVar(&buildMap.validate, "validate", true, "check the new map against the reference points")
	rootCmd.AddCommand(buildMapCmd)
}
