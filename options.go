package coord2country

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// RangePolicy decides what happens to coordinates outside [-90,90] x [-180,180].
type RangePolicy int

const (
	// RangeClamp moves out-of-range coordinates onto the nearest valid value,
	// the same way the projector keeps pixels on the map.
	RangeClamp RangePolicy = iota
	// RangeReject makes Lookup fail with ErrOutOfRange.
	RangeReject
)

func (p RangePolicy) String() string {
	if p == RangeReject {
		return "reject"
	}
	return "clamp"
}

// ParseRangePolicy parses "clamp" or "reject".
func ParseRangePolicy(s string) (RangePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clamp", "":
		return RangeClamp, nil
	case "reject":
		return RangeReject, nil
	}
	return RangeClamp, fmt.Errorf("unknown range policy %q (want clamp or reject)", s)
}

// Config contains configuration options for a Locator.
type Config struct {
	MapFile      string      // Map image on disk (default: data/countries.png, then the embedded copy)
	TableFile    string      // Color table on disk (default: data/countries.csv, then the embedded copy)
	Extent       Extent      // Geographic extent of the map image (default: WorldExtent)
	SearchRadius int         // Largest ring radius in pixels (default: 32)
	Strategy     Strategy    // Ring decision rule (default: StrategyNearest)
	RangePolicy  RangePolicy // Out-of-range coordinates (default: RangeClamp)
	Logger       *slog.Logger
}

// Option is a functional option for configuring a Locator.
type Option func(*Config)

// WithMapFile loads the map image from path instead of the bundled map.
func WithMapFile(path string) Option {
	return func(c *Config) {
		c.MapFile = path
	}
}

// WithTableFile loads the color table from path instead of the bundled table.
func WithTableFile(path string) Option {
	return func(c *Config) {
		c.TableFile = path
	}
}

// WithExtent sets the geographic rectangle the map image covers.
func WithExtent(e Extent) Option {
	return func(c *Config) {
		c.Extent = e
	}
}

// WithSearchRadius sets the largest ring radius, in pixels, searched around
// an unclassified pixel. Zero disables the search.
func WithSearchRadius(n int) Option {
	return func(c *Config) {
		c.SearchRadius = n
	}
}

// WithStrategy sets how a ring holding several countries is decided.
func WithStrategy(s Strategy) Option {
	return func(c *Config) {
		c.Strategy = s
	}
}

// WithRangePolicy sets how out-of-range coordinates are treated.
func WithRangePolicy(p RangePolicy) Option {
	return func(c *Config) {
		c.RangePolicy = p
	}
}

// WithLogger sets the logger used during initialization. Lookups never log.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	return &Config{
		Extent:       WorldExtent,
		SearchRadius: defaultSearchRadius,
		Strategy:     StrategyNearest,
		RangePolicy:  RangeClamp,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func newConfig(opts []Option) *Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = defaultConfig().Logger
	}
	return cfg
}
