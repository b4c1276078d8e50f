package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/andreiashu/coord2country"
	"github.com/andreiashu/coord2country/internal/logger"
)

// Environment variables backing the persistent flags. A .env file in the
// working directory is read first.
const (
	envMap         = "COORD2COUNTRY_MAP"
	envTable       = "COORD2COUNTRY_TABLE"
	envRadius      = "COORD2COUNTRY_RADIUS"
	envStrategy    = "COORD2COUNTRY_STRATEGY"
	envRangePolicy = "COORD2COUNTRY_RANGE_POLICY"
)

// cliConfig holds the settings shared by every subcommand.
type cliConfig struct {
	mapFile     string
	tableFile   string
	radius      int
	strategy    string
	rangePolicy string
}

var (
	config cliConfig
	appLog *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "coord2country",
	Short: "offline coordinates to country lookups",
	Long: `
coord2country converts a latitude/longitude into the country at that point and
its Wikidata QID, reading a color-coded world map. No network access needed.

Flags can also be set through the environment (or a .env file):
  ` + envMap + `, ` + envTable + `, ` + envRadius + `,
  ` + envStrategy + `, ` + envRangePolicy + `
Logging follows LOG_LEVEL (debug|info|warn|error) and LOG_FORMAT (text|json).
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		_ = godotenv.Load(".env")
		appLog = logger.Setup()
		return config.fromEnv(cmd)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&config.mapFile, "map", "", "map image (default data/countries.png, then the embedded map)")
	f.StringVar(&config.tableFile, "table", "", "color table CSV (default data/countries.csv, then the embedded table)")
	f.IntVar(&config.radius, "radius", 32, "largest ring search radius in pixels, 0 disables the search")
	f.StringVar(&config.strategy, "strategy", "nearest", "ring decision rule: nearest or majority")
	f.StringVar(&config.rangePolicy, "range-policy", "clamp", "coordinates outside [-90,90]x[-180,180]: clamp or reject")

	rootCmd.AddCommand(versionCmd)
}

// fromEnv fills every flag the user did not set from its environment variable.
func (c *cliConfig) fromEnv(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if v := os.Getenv(envMap); v != "" && !flags.Changed("map") {
		c.mapFile = v
	}
	if v := os.Getenv(envTable); v != "" && !flags.Changed("table") {
		c.tableFile = v
	}
	if v := os.Getenv(envRadius); v != "" && !flags.Changed("radius") {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envRadius, err)
		}
		c.radius = n
	}
	if v := os.Getenv(envStrategy); v != "" && !flags.Changed("strategy") {
		c.strategy = v
	}
	if v := os.Getenv(envRangePolicy); v != "" && !flags.Changed("range-policy") {
		c.rangePolicy = v
	}
	return nil
}

// options converts the configuration into Locator options.
func (c *cliConfig) options() ([]coord2country.Option, error) {
	strategy, err := coord2country.ParseStrategy(c.strategy)
	if err != nil {
		return nil, err
	}
	policy, err := coord2country.ParseRangePolicy(c.rangePolicy)
	if err != nil {
		return nil, err
	}
	opts := []coord2country.Option{
		coord2country.WithSearchRadius(c.radius),
		coord2country.WithStrategy(strategy),
		coord2country.WithRangePolicy(policy),
	}
	if c.mapFile != "" {
		opts = append(opts, coord2country.WithMapFile(c.mapFile))
	}
	if c.tableFile != "" {
		opts = append(opts, coord2country.WithTableFile(c.tableFile))
	}
	if appLog != nil {
		opts = append(opts, coord2country.WithLogger(appLog))
	}
	return opts, nil
}

func loadLocator() (*coord2country.Locator, error) {
	opts, err := config.options()
	if err != nil {
		return nil, err
	}
	return coord2country.Load(opts...)
}

// Execute runs the root command.
func Execute(version string) {
	Version = version

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
