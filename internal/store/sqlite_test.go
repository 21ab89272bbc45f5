package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSaveAndListQueries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveQuery(ctx, QueryRecord{
		Station:         "Hlemmur",
		Line:            "red",
		Lng:             -21.9107,
		Lat:             64.1436,
		RadiusMeters:    400,
		AffectedAreas:   3,
		TotalPopulation: 1200,
		WithinRadius:    455,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	records, err := s.ListQueries(ctx, QueryFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, saved.ID, rec.ID)
	assert.Equal(t, "Hlemmur", rec.Station)
	assert.Equal(t, "red", rec.Line)
	assert.InDelta(t, -21.9107, rec.Lng, 1e-9)
	assert.InDelta(t, 64.1436, rec.Lat, 1e-9)
	assert.InDelta(t, 400, rec.RadiusMeters, 1e-9)
	assert.Equal(t, 3, rec.AffectedAreas)
	assert.InDelta(t, 1200, rec.TotalPopulation, 1e-9)
	assert.InDelta(t, 455, rec.WithinRadius, 1e-9)
}

func TestListQueries_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SaveQuery(ctx, QueryRecord{Station: "Hlemmur", Line: "red", RadiusMeters: 400})
	require.NoError(t, err)
	_, err = s.SaveQuery(ctx, QueryRecord{Station: "Hamraborg", Line: "blue", RadiusMeters: 400})
	require.NoError(t, err)
	_, err = s.SaveQuery(ctx, QueryRecord{Station: "Hlemmur", Line: "red", RadiusMeters: 800})
	require.NoError(t, err)

	byStation, err := s.ListQueries(ctx, QueryFilter{Station: "Hlemmur"})
	require.NoError(t, err)
	assert.Len(t, byStation, 2)

	byLine, err := s.ListQueries(ctx, QueryFilter{Line: "blue"})
	require.NoError(t, err)
	require.Len(t, byLine, 1)
	assert.Equal(t, "Hamraborg", byLine[0].Station)

	limited, err := s.ListQueries(ctx, QueryFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	offset, err := s.ListQueries(ctx, QueryFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, offset, 1)
}

func TestListQueries_Empty(t *testing.T) {
	s := newTestStore(t)

	records, err := s.ListQueries(context.Background(), QueryFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}
