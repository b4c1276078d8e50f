// Package server exposes a Locator over HTTP.
//
//	GET /v1/country?lat=50.1&lon=10.2   full lookup result
//	GET /v1/country?geohash=u0yjjd6     same, at the center of a geohash cell
//	GET /v1/country/qid?lat=..&lon=..   QID only
//	GET /healthz
//	GET /metrics                        Prometheus
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andreiashu/coord2country"
)

const (
	shutdownTimeout = 5 * time.Second
	requestIDHeader = "X-Request-ID"
)

// CountryResponse is the JSON body of /v1/country.
type CountryResponse struct {
	Name       string  `json:"name"`
	QID        string  `json:"qid"`
	Code       string  `json:"code,omitempty"`
	Method     string  `json:"method"`
	Radius     int     `json:"radius"`
	DistanceKm float64 `json:"distance_km"`
	Pixel      [2]int  `json:"pixel"`
	Match      [2]int  `json:"match"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

// NewCountryResponse converts a lookup result.
func NewCountryResponse(lat, lon float64, r coord2country.LookupResult) CountryResponse {
	return CountryResponse{
		Name:       r.Country.Name,
		QID:        r.Country.QID,
		Code:       r.Code,
		Method:     r.Method.String(),
		Radius:     r.Radius,
		DistanceKm: r.DistanceKm,
		Pixel:      [2]int{r.Pixel.X, r.Pixel.Y},
		Match:      [2]int{r.Match.X, r.Match.Y},
		Lat:        lat,
		Lon:        lon,
	}
}

// Server serves lookups from one Locator.
type Server struct {
	loc      *coord2country.Locator
	logger   *slog.Logger
	metrics  *Metrics
	registry *prometheus.Registry
	engine   *gin.Engine
}

// New builds the server and its routes. Metrics go to a registry owned by
// the server, so several servers can live in one process.
func New(loc *coord2country.Locator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	reg := prometheus.NewRegistry()
	s := &Server{
		loc:      loc,
		logger:   logger,
		metrics:  NewMetrics(reg),
		registry: reg,
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(logger))
	r.GET("/healthz", s.healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	r.GET("/v1/country", s.country)
	r.GET("/v1/country/qid", s.countryQID)
	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http_listen", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.logger.Info("http_stopped")
	return nil
}

func (s *Server) healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "colors": s.loc.Table().Len()})
}

func (s *Server) country(ctx *gin.Context) {
	lat, lon, res, ok := s.lookup(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, NewCountryResponse(lat, lon, res))
}

func (s *Server) countryQID(ctx *gin.Context) {
	_, _, res, ok := s.lookup(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"qid": res.Country.QID})
}

// lookup reads the point from lat/lon or geohash and resolves it, writing the
// error response itself when it fails.
func (s *Server) lookup(ctx *gin.Context) (lat, lon float64, res coord2country.LookupResult, ok bool) {
	var err error
	if hash := ctx.Query("geohash"); hash != "" {
		lat, lon, err = coord2country.DecodeGeohash(hash)
		if err != nil {
			s.metrics.IncrementRejected("bad_request")
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return 0, 0, res, false
		}
	} else {
		lat, err = strconv.ParseFloat(ctx.Query("lat"), 64)
		if err != nil {
			s.metrics.IncrementRejected("bad_request")
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "lat query parameter must be a number"})
			return 0, 0, res, false
		}
		lon, err = strconv.ParseFloat(ctx.Query("lon"), 64)
		if err != nil {
			s.metrics.IncrementRejected("bad_request")
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "lon query parameter must be a number"})
			return 0, 0, res, false
		}
	}

	start := time.Now()
	res, err = s.loc.Lookup(lat, lon)
	switch {
	case errors.Is(err, coord2country.ErrOutOfRange):
		s.metrics.IncrementRejected("out_of_range")
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return lat, lon, res, false
	case err != nil:
		s.metrics.IncrementRejected("invalid_coordinate")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return lat, lon, res, false
	}
	s.metrics.ObserveLookup(res.Method.String(), res.Radius, time.Since(start))
	return lat, lon, res, true
}

// requestID propagates the caller's X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set("request_id", id)
		ctx.Header(requestIDHeader, id)
		ctx.Next()
	}
}

// accessLog logs one line per request at debug level.
func accessLog(l *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		l.Debug("http_access",
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
			"status", ctx.Writer.Status(),
			"bytes", ctx.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", ctx.ClientIP(),
			"request_id", ctx.GetString("request_id"),
		)
	}
}
