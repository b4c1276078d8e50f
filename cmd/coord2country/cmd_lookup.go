package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/andreiashu/coord2country"
	"github.com/andreiashu/coord2country/internal/server"
)

var geohashFlag string

// pointArgs accepts either LAT LON or no arguments with --geohash.
func pointArgs(cmd *cobra.Command, args []string) error {
	if geohashFlag != "" {
		return cobra.NoArgs(cmd, args)
	}
	return cobra.ExactArgs(2)(cmd, args)
}

// resolveArgs looks up the point named by the arguments or --geohash.
func resolveArgs(args []string) (lat, lon float64, res coord2country.LookupResult, err error) {
	loc, err := loadLocator()
	if err != nil {
		return 0, 0, res, err
	}
	if geohashFlag != "" {
		lat, lon, err = coord2country.DecodeGeohash(geohashFlag)
	} else {
		lat, lon, err = parsePoint(args[0], args[1])
	}
	if err != nil {
		return 0, 0, res, err
	}
	res, err = loc.Lookup(lat, lon)
	return lat, lon, res, err
}

func parsePoint(latArg, lonArg string) (lat, lon float64, err error) {
	lat, err = strconv.ParseFloat(strings.TrimSpace(latArg), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("latitude %q: %w", latArg, err)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(lonArg), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("longitude %q: %w", lonArg, err)
	}
	return lat, lon, nil
}

var countryCmd = &cobra.Command{
	Use:   "country LAT LON",
	Short: "Print the country name at a coordinate",
	Long: `Print the English name of the country at a coordinate, or an empty line
when the point is too far from any country (open ocean).

Put "--" before a negative latitude so it is not read as a flag:

$ coord2country country -- -31 45
Madagascar`,
	Args: pointArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, res, err := resolveArgs(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Country.Name)
		return nil
	},
}

var qidCmd = &cobra.Command{
	Use:   "qid LAT LON",
	Short: "Print the Wikidata QID of the country at a coordinate",
	Long: `Print the numeric Wikidata QID of the country at a coordinate, e.g. 183 for
http://www.wikidata.org/entity/Q183 (Germany), or an empty line.`,
	Args: pointArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, res, err := resolveArgs(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Country.QID)
		return nil
	},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup LAT LON",
	Short: "Print the full lookup result as JSON",
	Args:  pointArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, lon, res, err := resolveArgs(args)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(server.NewCountryResponse(lat, lon, res))
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Resolve one \"lat,lon\" per line from stdin",
	Long: `Read one "lat,lon" pair per line and print lat, lon, name and QID tab separated.

$ printf '50.1,10.2\n-31,45\n' | coord2country batch
50.1	10.2	Germany	183
-31	45	Madagascar	1019`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		loc, err := loadLocator()
		if err != nil {
			return err
		}

		input, out := cmd.InOrStdin(), cmd.OutOrStdout()
		if f, ok := input.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Enter coordinates as lat,lon, one per line...")
		}
		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			latArg, lonArg, ok := strings.Cut(line, ",")
			if !ok {
				fmt.Fprintf(out, "%s\t%q\n", line, "want lat,lon")
				continue
			}
			lat, lon, err := parsePoint(latArg, lonArg)
			if err != nil {
				fmt.Fprintf(out, "%s\t%q\n", line, err)
				continue
			}
			res, err := loc.Lookup(lat, lon)
			if err != nil {
				fmt.Fprintf(out, "%s\t%q\n", line, err)
				continue
			}
			fmt.Fprintf(out, "%v\t%v\t%s\t%s\n", lat, lon, res.Country.Name, res.Country.QID)
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{countryCmd, qidCmd, lookupCmd} {
		c.Flags().StringVar(&geohashFlag, "geohash", "", "look up the center of this geohash cell instead of LAT LON")
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(batchCmd)
}
