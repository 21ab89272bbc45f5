package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/borgarlina/coverage-cli/internal/census"
	"github.com/borgarlina/coverage-cli/internal/coverage"
	"github.com/borgarlina/coverage-cli/internal/dataset"
	"github.com/borgarlina/coverage-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the coverage HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		session, calc, err := initSession(ctx, "serve")
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		mux := buildMux(session, calc, st)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		limiter := rate.NewLimiter(rate.Limit(cfg.Server.RequestsPerSecond), int(cfg.Server.RequestsPerSecond))
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: rateLimited(limiter, mux),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// buildMux wires the API routes over a loaded session.
func buildMux(session *dataset.Session, calc *coverage.Calculator, st store.Store) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /api/stations", func(w http.ResponseWriter, r *http.Request) {
		stations := session.Stations()
		if line := r.URL.Query().Get("line"); line != "" {
			stations = session.StationsOnLine(line)
		}
		writeJSON(w, http.StatusOK, stations)
	})

	mux.HandleFunc("GET /api/coverage", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var lng, lat float64
		var stationName, line string
		if name := q.Get("station"); name != "" {
			station, ok := session.FindStation(name)
			if !ok {
				writeError(w, http.StatusNotFound, fmt.Sprintf("station %q not found", name))
				return
			}
			lng, lat, stationName, line = station.Lng, station.Lat, station.Name, station.Line
		} else {
			var err error
			lng, err = strconv.ParseFloat(q.Get("lng"), 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "lng is required and must be a number")
				return
			}
			lat, err = strconv.ParseFloat(q.Get("lat"), 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "lat is required and must be a number")
				return
			}
		}

		radius, ok := radiusParam(w, q.Get("radius"))
		if !ok {
			return
		}

		rep, err := analyzePoint(calc, session, lng, lat, radius)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		rep.Station = stationName
		rep.Line = line

		if err := recordQuery(r.Context(), st, rep); err != nil {
			zap.L().Warn("failed to record query", zap.Error(err))
		}
		writeJSON(w, http.StatusOK, rep)
	})

	mux.HandleFunc("GET /api/lines/{line}/coverage", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("line")
		stations := session.StationsOnLine(name)
		if len(stations) == 0 {
			writeError(w, http.StatusNotFound, fmt.Sprintf("line %q has no stations", name))
			return
		}

		radius, ok := radiusParam(w, r.URL.Query().Get("radius"))
		if !ok {
			return
		}

		metrics, err := calc.LineCoverage(name, stations, radius)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		table := session.Population()
		writeJSON(w, http.StatusOK, lineReport{
			LineMetrics: metrics,
			AgeGroups:   census.Apportion(metrics.Results, table, cfg.Coverage.Cohorts),
			Summary:     census.Summarize(metrics.Results, table, radius),
		})
	})

	return mux
}

// rateLimited rejects requests beyond the configured rate with 429.
func rateLimited(limiter *rate.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// radiusParam parses the optional radius query parameter, falling back to
// the configured default. Writes the error response itself.
func radiusParam(w http.ResponseWriter, raw string) (float64, bool) {
	if raw == "" {
		return cfg.Coverage.RadiusMeters, true
	}
	radius, err := strconv.ParseFloat(raw, 64)
	if err != nil || radius <= 0 {
		writeError(w, http.StatusBadRequest, "radius must be a positive number")
		return 0, false
	}
	return radius, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
