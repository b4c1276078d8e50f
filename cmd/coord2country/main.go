// Command coord2country resolves coordinates to countries from the command
// line, serves lookups over HTTP and renders the color map.
//
// Usage:
//
//	coord2country country 50.1 10.2          # Germany
//	coord2country qid -- -31 45              # 1019; "--" lets a latitude start with "-"
//	coord2country lookup --geohash u0yjjd6   # JSON
//	coord2country verify testdata/countries.csv
//	coord2country serve --addr :8080
//	coord2country build-map --boundaries ne_50m_admin_0_countries.geojson
package main

var Version = "development"

func main() {
	Execute(Version)
}
