package coverage

import "github.com/rotisserie/eris"

// Error taxonomy for the coverage engine. Only ErrInvalidInput is fatal to
// a query; the others mark a single polygon that gets skipped.
var (
	// ErrInvalidInput reports a malformed station point or radius.
	ErrInvalidInput = eris.New("coverage: invalid input")

	// ErrUnsupportedGeometry reports a geometry the area projector cannot
	// handle (interior rings, empty or multi-part shapes).
	ErrUnsupportedGeometry = eris.New("coverage: unsupported geometry")

	// ErrGeometryRepair reports a small-area polygon that is invalid and
	// could not be repaired.
	ErrGeometryRepair = eris.New("coverage: geometry repair failed")
)
