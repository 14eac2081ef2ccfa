package nowcast

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/spatialmodel/nowcast/internal/calendar"
	"github.com/spatialmodel/nowcast/internal/datasource"
)

// Column identifies one input to fusion: a named sensor observed at a
// location (spec §4.6 step 1). Columns are ordered sensors-outer,
// locations-inner, matching the original bulk-assembly enumeration.
type Column struct {
	Sensor   string
	Location string
}

// assembledData holds the bulk-assembled, globally-pruned training and
// testing matrices shared across every test week (spec §4.6 steps 1-2).
type assembledData struct {
	columns    []Column
	trainWeeks []calendar.Epiweek
	noise      *mat.Dense // trainWeeks x len(columns), NaN where missing
	readings   *mat.Dense // len(testWeeks) x len(columns), NaN where missing
}

// assembleAllWeeks builds the shared training/testing matrices for a batch
// of test weeks (spec §4.6 step 1, column pruning step 2). Training weeks
// are the data source's weeks strictly earlier than the latest test week.
func assembleAllWeeks(ds datasource.DataSource, testWeeks []calendar.Epiweek) (*assembledData, error) {
	sensors := ds.Sensors()
	locations := ds.SensorLocations()
	columns := make([]Column, 0, len(sensors)*len(locations))
	for _, sen := range sensors {
		for _, loc := range locations {
			columns = append(columns, Column{Sensor: sen, Location: loc})
		}
	}

	lastTestWeek := testWeeks[0]
	for _, w := range testWeeks[1:] {
		if w > lastTestWeek {
			lastTestWeek = w
		}
	}
	var trainWeeks []calendar.Epiweek
	for _, w := range ds.Weeks() {
		if w < lastTestWeek {
			trainWeeks = append(trainWeeks, w)
		}
	}

	if len(trainWeeks) == 0 || len(columns) == 0 {
		return &assembledData{trainWeeks: trainWeeks}, nil
	}
	noise := filledNaN(len(trainWeeks), len(columns))
	readings := filledNaN(len(testWeeks), len(columns))

	for col, c := range columns {
		for row, week := range trainWeeks {
			sensorValue, sensorOK := ds.SensorValue(week, c.Location, c.Sensor)
			truthValue, truthOK := ds.TruthValue(week, c.Location)
			if sensorOK && truthOK {
				noise.Set(row, col, sensorValue-truthValue)
			}
		}
		for row, week := range testWeeks {
			if value, ok := ds.SensorValue(week, c.Location, c.Sensor); ok {
				readings.Set(row, col, value)
			}
		}
	}

	keep := make([]bool, len(columns))
	for col := range columns {
		keep[col] = columnHasFiniteEntry(noise, col) && columnHasFiniteEntry(readings, col)
	}
	if countTrue(keep) == 0 {
		return &assembledData{trainWeeks: trainWeeks}, nil
	}
	prunedColumns, prunedNoise := pruneColumns(columns, noise, keep)
	_, prunedReadings := pruneColumns(columns, readings, keep)

	return &assembledData{columns: prunedColumns, trainWeeks: trainWeeks, noise: prunedNoise, readings: prunedReadings}, nil
}

// assembleWeek restricts the shared training matrix to rows strictly
// before week, then prunes rows and columns per spec §4.6 step 3: rows
// with no observed column, columns below minObservations training
// observations, columns missing the test-week reading, and columns whose
// location is in excludedAtoms.
func assembleWeek(data *assembledData, week calendar.Epiweek, weekReading []float64, excludedAtoms map[string]bool, minObservations int) (locations []string, weekNoise *mat.Dense, reading []float64) {
	var pastRows []int
	for i, w := range data.trainWeeks {
		if w < week {
			pastRows = append(pastRows, i)
		}
	}

	// Row and column survival are both judged against the full,
	// unfiltered column set over pastRows, then combined — not against
	// each other's result — matching the original's two independent
	// passes over the same slice.
	var keepRows []int
	for _, row := range pastRows {
		hasObservation := false
		for col := range data.columns {
			if !math.IsNaN(data.noise.At(row, col)) {
				hasObservation = true
				break
			}
		}
		if hasObservation {
			keepRows = append(keepRows, row)
		}
	}

	keepCol := make([]bool, len(data.columns))
	for col, c := range data.columns {
		observed := 0
		for _, row := range pastRows {
			if !math.IsNaN(data.noise.At(row, col)) {
				observed++
			}
		}
		keepCol[col] = observed >= minObservations &&
			!math.IsNaN(weekReading[col]) &&
			!excludedAtoms[c.Location]
	}

	nCols := countTrue(keepCol)
	if nCols == 0 {
		return nil, nil, nil
	}
	weekNoise = mat.NewDense(len(keepRows), nCols, nil)
	for outRow, row := range keepRows {
		outCol := 0
		for col := range data.columns {
			if !keepCol[col] {
				continue
			}
			weekNoise.Set(outRow, outCol, data.noise.At(row, col))
			outCol++
		}
	}

	for col, c := range data.columns {
		if keepCol[col] {
			locations = append(locations, c.Location)
			reading = append(reading, weekReading[col])
		}
	}
	return locations, weekNoise, reading
}

func filledNaN(rows, cols int) *mat.Dense {
	m := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.Set(i, j, math.NaN())
		}
	}
	return m
}

func columnHasFiniteEntry(m *mat.Dense, col int) bool {
	rows, _ := m.Dims()
	for i := 0; i < rows; i++ {
		if !math.IsNaN(m.At(i, col)) {
			return true
		}
	}
	return false
}

func pruneColumns(columns []Column, m *mat.Dense, keep []bool) ([]Column, *mat.Dense) {
	rows, _ := m.Dims()
	n := countTrue(keep)
	out := mat.NewDense(rows, n, nil)
	outColumns := make([]Column, 0, n)
	outCol := 0
	for col := range columns {
		if !keep[col] {
			continue
		}
		for row := 0; row < rows; row++ {
			out.Set(row, outCol, m.At(row, col))
		}
		outColumns = append(outColumns, columns[col])
		outCol++
	}
	return outColumns, out
}

func countTrue(bs []bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}
