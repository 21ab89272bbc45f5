package coverage

import (
	"testing"

	"github.com/ctessum/geom"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepair_ValidRingUnchangedArea(t *testing.T) {
	square := geoSquare(t, stationLng, stationLat, 1000)

	fixed, err := Repair(square)
	require.NoError(t, err)
	assert.InEpsilon(t, square.Area(), fixed.Area(), 1e-9)
}

func TestRepair_DropsDuplicateAndClosingVertices(t *testing.T) {
	square := geoSquare(t, stationLng, stationLat, 1000)
	ring := square[0]
	messy := geom.Polygon{{
		ring[0], ring[0], ring[1], ring[2], ring[2], ring[3], ring[0],
	}}

	fixed, err := Repair(messy)
	require.NoError(t, err)
	assert.InEpsilon(t, square.Area(), fixed.Area(), 1e-9)
}

func TestRepair_Bowtie(t *testing.T) {
	// A figure-eight ring: the two crossing edges make the raw shoelace
	// area cancel toward zero even though the shape encloses ground.
	bowtie := geom.Polygon{{
		{X: stationLng, Y: stationLat},
		{X: stationLng + 0.02, Y: stationLat},
		{X: stationLng, Y: stationLat + 0.01},
		{X: stationLng + 0.02, Y: stationLat + 0.01},
	}}

	fixed, err := Repair(bowtie)
	require.NoError(t, err)
	assert.Greater(t, fixed.Area(), 0.0)
}

func TestRepair_EmptyPolygon(t *testing.T) {
	_, err := Repair(geom.Polygon{})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrGeometryRepair))
}

func TestRepair_RingCollapses(t *testing.T) {
	p := geom.Polygon{{
		{X: stationLng, Y: stationLat},
		{X: stationLng, Y: stationLat},
		{X: stationLng + 0.01, Y: stationLat},
		{X: stationLng, Y: stationLat},
	}}

	_, err := Repair(p)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrGeometryRepair))
}
