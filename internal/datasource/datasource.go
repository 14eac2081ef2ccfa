package datasource

import (
	"context"

	"github.com/spatialmodel/nowcast/internal/calendar"
)

// DataSource is the collaborator boundary the driver depends on (spec
// §4.7). Every reading method returns ok=false for a missing cell instead
// of a zero value or an error: absence is expected and routine, not
// exceptional.
type DataSource interface {
	// TruthLocations returns the ordered set of locations ground-truth
	// wILI is defined for.
	TruthLocations() []string

	// SensorLocations returns the ordered set of locations sensor
	// readings are defined for.
	SensorLocations() []string

	// Sensors returns the ordered set of sensor names.
	Sensors() []string

	// Weeks returns the ordered set of epiweeks for which truth and
	// sensor data are both potentially available.
	Weeks() []calendar.Epiweek

	// MissingLocations returns the set of atomic locations that did not
	// report ground truth on the given week.
	MissingLocations(ew calendar.Epiweek) map[string]bool

	// TruthValue returns the ground-truth wILI for location on ew, and
	// whether it was observed.
	TruthValue(ew calendar.Epiweek, location string) (value float64, ok bool)

	// SensorValue returns the named sensor's reading for location on ew,
	// and whether it was observed.
	SensorValue(ew calendar.Epiweek, location, name string) (value float64, ok bool)

	// MostRecentIssue returns the most recent epiweek for which
	// ground-truth data is available.
	MostRecentIssue(ctx context.Context) (calendar.Epiweek, error)

	// Prefetch warms the cache for every location and signal through ew,
	// inclusive. It is an optional batch optimization: a DataSource that
	// does not benefit from bulk warm-up may implement it as a no-op.
	Prefetch(ctx context.Context, ew calendar.Epiweek) error
}
