package dataset

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/borgarlina/coverage-cli/internal/census"
	"github.com/borgarlina/coverage-cli/internal/fetcher"
	"github.com/borgarlina/coverage-cli/internal/proj"
)

// Paths locates the four datasets. Each entry may be a local file path or
// an http(s) URL; URLs are downloaded into the session's cache directory
// on reload. Schools is optional.
type Paths struct {
	SmallAreas string
	Population string
	Stations   string
	Schools    string
}

// Session owns the loaded datasets. It replaces ad-hoc module-level
// caches: everything the engine and the commands read comes from one
// Session, reloadable as a unit. Accessors hand out the backing slices by
// reference; callers treat them as read-only.
type Session struct {
	paths    Paths
	fetch    fetcher.Fetcher
	cacheDir string

	mu         sync.RWMutex
	areas      []*census.SmallArea
	population []census.PopulationRecord
	stations   []census.Station
	schools    []census.School
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithFetcher overrides the HTTP fetcher used for URL dataset paths.
func WithFetcher(f fetcher.Fetcher) SessionOption {
	return func(s *Session) { s.fetch = f }
}

// WithCacheDir sets where downloaded datasets are stored.
func WithCacheDir(dir string) SessionOption {
	return func(s *Session) { s.cacheDir = dir }
}

// NewSession creates an empty session; call Reload to populate it.
func NewSession(paths Paths, opts ...SessionOption) *Session {
	s := &Session{
		paths:    paths,
		fetch:    fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}),
		cacheDir: os.TempDir(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reload loads all datasets concurrently and swaps them in atomically:
// either every dataset refreshes or the session keeps its previous state.
func (s *Session) Reload(ctx context.Context) error {
	smallAreasPath, err := s.resolve(ctx, s.paths.SmallAreas)
	if err != nil {
		return err
	}
	populationPath, err := s.resolve(ctx, s.paths.Population)
	if err != nil {
		return err
	}
	stationsPath, err := s.resolve(ctx, s.paths.Stations)
	if err != nil {
		return err
	}
	schoolsPath := ""
	if s.paths.Schools != "" {
		if schoolsPath, err = s.resolve(ctx, s.paths.Schools); err != nil {
			return err
		}
	}

	var (
		areas      []*census.SmallArea
		population []census.PopulationRecord
		stations   []census.Station
		schools    []census.School
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		areas, err = LoadSmallAreas(smallAreasPath)
		return err
	})
	g.Go(func() error {
		var err error
		population, err = LoadPopulation(gctx, populationPath)
		return err
	})
	g.Go(func() error {
		var err error
		stations, err = LoadStations(stationsPath)
		return err
	})
	if schoolsPath != "" {
		g.Go(func() error {
			var err error
			schools, err = LoadSchools(gctx, schoolsPath)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "dataset: reload")
	}

	s.mu.Lock()
	s.areas = areas
	s.population = population
	s.stations = stations
	s.schools = schools
	s.mu.Unlock()

	zap.L().Info("session reloaded",
		zap.Int("small_areas", len(areas)),
		zap.Int("population_records", len(population)),
		zap.Int("stations", len(stations)),
		zap.Int("schools", len(schools)),
	)
	return nil
}

// Clear drops every loaded dataset.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.areas = nil
	s.population = nil
	s.stations = nil
	s.schools = nil
}

// SmallAreas returns the loaded census zones.
func (s *Session) SmallAreas() []*census.SmallArea {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.areas
}

// Population returns the loaded population table.
func (s *Session) Population() []census.PopulationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.population
}

// Stations returns every loaded station.
func (s *Session) Stations() []census.Station {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stations
}

// Schools returns the loaded schools, if a schools dataset was configured.
func (s *Session) Schools() []census.School {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schools
}

// SchoolsNear returns the schools within radiusMeters of a point, in
// file order.
func (s *Session) SchoolsNear(lng, lat, radiusMeters float64) []census.School {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []census.School
	for _, sc := range s.schools {
		if proj.Haversine(lng, lat, sc.Lng, sc.Lat) <= radiusMeters {
			out = append(out, sc)
		}
	}
	return out
}

// StationsOnLine returns the stations of one named line, in file order.
func (s *Session) StationsOnLine(line string) []census.Station {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []census.Station
	for _, st := range s.stations {
		if strings.EqualFold(st.Line, line) {
			out = append(out, st)
		}
	}
	return out
}

// FindStation looks a station up by name, case-insensitively.
func (s *Session) FindStation(name string) (census.Station, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.stations {
		if strings.EqualFold(st.Name, name) {
			return st, true
		}
	}
	return census.Station{}, false
}

// resolve turns a dataset location into a local path. URL locations are
// downloaded into the cache directory alongside a stored ETag, so a
// reload of an unchanged dataset reuses the cached file.
func (s *Session) resolve(ctx context.Context, location string) (string, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		return location, nil
	}

	name := filepath.Base(location)
	if name == "" || name == "." || name == "/" {
		return "", eris.Errorf("dataset: cannot derive file name from %s", location)
	}
	dest := filepath.Join(s.cacheDir, name)
	etagPath := dest + ".etag"

	// Only send If-None-Match when the cached file is still there to serve.
	var etag string
	if _, err := os.Stat(dest); err == nil {
		if b, err := os.ReadFile(etagPath); err == nil {
			etag = strings.TrimSpace(string(b))
		}
	}

	body, newTag, changed, err := s.fetch.DownloadIfChanged(ctx, location, etag)
	if err != nil {
		return "", eris.Wrapf(err, "dataset: download %s", location)
	}
	if !changed {
		return dest, nil
	}
	defer body.Close() //nolint:errcheck

	file, err := os.Create(dest)
	if err != nil {
		return "", eris.Wrapf(err, "dataset: cache %s", dest)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, body); err != nil {
		return "", eris.Wrapf(err, "dataset: cache %s", dest)
	}

	if newTag == "" {
		_ = os.Remove(etagPath)
	} else if err := os.WriteFile(etagPath, []byte(newTag), 0o644); err != nil {
		zap.L().Warn("failed to store dataset etag",
			zap.String("path", etagPath),
			zap.Error(err),
		)
	}
	return dest, nil
}
