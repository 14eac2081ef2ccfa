package nowcast

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/spatialmodel/nowcast/internal/calendar"
	"github.com/spatialmodel/nowcast/internal/covariance"
	"github.com/spatialmodel/nowcast/internal/datasource"
	"github.com/spatialmodel/nowcast/internal/fusion"
	"github.com/spatialmodel/nowcast/internal/geo"
	"github.com/spatialmodel/nowcast/internal/rational"
	"github.com/spatialmodel/nowcast/internal/statespace"
)

// Options configures the driver's per-week retraining (spec §4.8).
type Options struct {
	// MinObservations is the minimum number of observed training rows a
	// column must have to survive per-week pruning. Default 5.
	MinObservations int

	// ShrinkageVariant selects the covariance shrinkage family. Default
	// covariance.VariantDenWeighted, the operational default (spec §9).
	ShrinkageVariant covariance.Variant

	// ExcludedAtomsOverride, if non-nil, replaces the data source's
	// per-week missing-locations set for every test week.
	ExcludedAtomsOverride map[string]bool
}

// DefaultOptions returns the configuration spec §4.8 lists as default.
func DefaultOptions() Options {
	return Options{MinObservations: 5, ShrinkageVariant: covariance.VariantDenWeighted}
}

// Record is one emitted nowcast: a posterior mean and standard deviation
// for a location on a test week.
type Record struct {
	Epiweek  calendar.Epiweek
	Location string
	Mean     float64
	Stdev    float64
}

// Driver orchestrates the nowcast pipeline (spec §4.6) against a fixed
// geography catalog and data source.
type Driver struct {
	ds     datasource.DataSource
	cat    *geo.Catalog
	solver *statespace.Solver
	opts   Options
}

// NewDriver constructs a Driver. opts.MinObservations <= 0 is treated as
// unset and replaced with DefaultOptions' value.
func NewDriver(ds datasource.DataSource, cat *geo.Catalog, opts Options) *Driver {
	if opts.MinObservations <= 0 {
		opts.MinObservations = DefaultOptions().MinObservations
	}
	return &Driver{ds: ds, cat: cat, solver: statespace.NewSolver(cat), opts: opts}
}

// BatchNowcast produces nowcasts for every week in testWeeks (spec §4.6).
// The model is retrained per week; shared bulk assembly makes batching
// more efficient than separate calls despite the retraining. A test week
// with no usable sensors after pruning contributes no records and does
// not fail the batch (spec §4.6, scenario S5).
func (d *Driver) BatchNowcast(testWeeks []calendar.Epiweek) ([]Record, error) {
	if len(testWeeks) == 0 {
		return nil, nil
	}

	data, err := assembleAllWeeks(d.ds, testWeeks)
	if err != nil {
		return nil, err
	}
	if len(data.columns) == 0 {
		return nil, nil // no column survived global pruning: every week is skipped
	}

	var records []Record
	for i, week := range testWeeks {
		weekReading := mat.Row(nil, i, data.readings)

		excluded := d.opts.ExcludedAtomsOverride
		if excluded == nil {
			excluded = d.ds.MissingLocations(week)
		}

		locations, weekNoise, reading := assembleWeek(data, week, weekReading, excluded, d.opts.MinObservations)
		if len(locations) == 0 {
			continue // spec §4.6 S5: no usable sensors, skip non-fatally
		}

		weekRecords, err := d.nowcastWeek(week, locations, weekNoise, reading, excluded)
		if err != nil {
			return nil, fmt.Errorf("nowcast: week %s: %w", week, err)
		}
		records = append(records, weekRecords...)
	}
	return records, nil
}

func (d *Driver) nowcastWeek(week calendar.Epiweek, locations []string, noise *mat.Dense, reading []float64, excluded map[string]bool) ([]Record, error) {
	excludedAtoms := make([]string, 0, len(excluded))
	for a := range excluded {
		excludedAtoms = append(excludedAtoms, a)
	}
	sort.Strings(excludedAtoms)

	season := calendar.Season(week)
	result, outputLocations, err := d.solver.DetermineStatespace(locations, season, excludedAtoms)
	if err != nil {
		return nil, fmt.Errorf("statespace: %w", err)
	}

	sigma, err := covariance.MLECov(noise, d.opts.ShrinkageVariant)
	if err != nil {
		return nil, fmt.Errorf("covariance: %w", err)
	}

	h := toFloatDense(result.H)
	z := mat.NewVecDense(len(reading), reading)
	posterior, err := fusion.Fuse(z, sigma, h)
	if err != nil {
		return nil, fmt.Errorf("fusion: %w", err)
	}

	w := toFloatDense(result.W)
	y, s := fusion.Extract(posterior, w)
	stdevs := fusion.Stdev(s)

	records := make([]Record, len(outputLocations))
	for i, loc := range outputLocations {
		records[i] = Record{Epiweek: week, Location: loc, Mean: y.AtVec(i), Stdev: stdevs[i]}
	}
	return records, nil
}

// toFloatDense converts an exact rational matrix to its floating-point
// equivalent; conversion happens only after the statespace is fixed,
// since everything downstream of it is floating-point (spec §9).
func toFloatDense(rm *rational.Matrix) *mat.Dense {
	rows, cols := rm.Dims()
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v, _ := rm.At(i, j).Float64()
			out.Set(i, j, v)
		}
	}
	return out
}
