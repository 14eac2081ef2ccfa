package nowcast

import (
	"context"
	"math"
	"sort"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/spatialmodel/nowcast/internal/calendar"
)

// fakeDataSource is a literal, in-memory DataSource over the
// jfk/nj/ny fixture: HHS region 2 with only those three reporting
// locations, and two sensors ('a', 'b') with their own gaps.
type fakeDataSource struct {
	truth    map[calendar.Epiweek]map[string]float64
	sensors  map[string]map[calendar.Epiweek]map[string]float64
	excluded map[string]bool
}

func jfkNjNyScenario() *fakeDataSource {
	return &fakeDataSource{
		truth: map[calendar.Epiweek]map[string]float64{
			calendar.New(2020, 20): {"jfk": 1, "nj": 2, "ny": 3},
			calendar.New(2020, 21): {"jfk": 4, "nj": 5, "ny": 6},
			calendar.New(2020, 22): {},
			calendar.New(2020, 23): {"jfk": 7, "ny": 8},
		},
		sensors: map[string]map[calendar.Epiweek]map[string]float64{
			"a": {
				calendar.New(2020, 20): {"jfk": 11, "nj": 21, "ny": 31},
				calendar.New(2020, 21): {"jfk": 12, "nj": 22},
				calendar.New(2020, 22): {"jfk": 13, "nj": 23, "ny": 33},
				calendar.New(2020, 23): {"jfk": 14, "nj": 24, "ny": 34},
				calendar.New(2020, 24): {"jfk": 15, "nj": 25, "ny": 35},
			},
			"b": {
				calendar.New(2020, 20): {"nj": 41, "ny": 51},
				calendar.New(2020, 21): {"nj": 42, "ny": 52},
				calendar.New(2020, 22): {"nj": 43, "ny": 53},
				calendar.New(2020, 23): {"nj": 44, "ny": 54},
				calendar.New(2020, 24): {"nj": 45},
			},
		},
		excluded: map[string]bool{"vi": true, "pr": true},
	}
}

func (f *fakeDataSource) TruthLocations() []string {
	first := f.Weeks()[0]
	var out []string
	for loc := range f.truth[first] {
		out = append(out, loc)
	}
	sort.Strings(out)
	return out
}

func (f *fakeDataSource) SensorLocations() []string { return f.TruthLocations() }

func (f *fakeDataSource) Sensors() []string {
	var out []string
	for name := range f.sensors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (f *fakeDataSource) Weeks() []calendar.Epiweek {
	var out []calendar.Epiweek
	for w := range f.truth {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (f *fakeDataSource) MissingLocations(ew calendar.Epiweek) map[string]bool { return f.excluded }

func (f *fakeDataSource) TruthValue(ew calendar.Epiweek, location string) (float64, bool) {
	v, ok := f.truth[ew][location]
	return v, ok
}

func (f *fakeDataSource) SensorValue(ew calendar.Epiweek, location, name string) (float64, bool) {
	v, ok := f.sensors[name][ew][location]
	return v, ok
}

func (f *fakeDataSource) MostRecentIssue(ctx context.Context) (calendar.Epiweek, error) {
	weeks := f.Weeks()
	return weeks[len(weeks)-1], nil
}

func (f *fakeDataSource) Prefetch(ctx context.Context, ew calendar.Epiweek) error { return nil }

func testWeeks2022To2024() []calendar.Epiweek {
	return []calendar.Epiweek{calendar.New(2020, 22), calendar.New(2020, 23), calendar.New(2020, 24)}
}

func TestAssembleAllWeeksColumnsAndMatrices(t *testing.T) {
	ds := jfkNjNyScenario()
	data, err := assembleAllWeeks(ds, testWeeks2022To2024())
	if err != nil {
		t.Fatal(err)
	}

	wantColumns := []Column{{"a", "jfk"}, {"a", "nj"}, {"a", "ny"}, {"b", "nj"}, {"b", "ny"}}
	if len(data.columns) != len(wantColumns) {
		t.Fatalf("columns = %v, want %v", data.columns, wantColumns)
	}
	for i, c := range wantColumns {
		if data.columns[i] != c {
			t.Errorf("columns[%d] = %v, want %v", i, data.columns[i], c)
		}
	}

	wantNoise := [][]float64{
		{10, 19, 28, 39, 48},
		{8, 17, math.NaN(), 37, 46},
		{math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()},
		{7, math.NaN(), 26, math.NaN(), 46},
	}
	assertMatrixCloseNaN(t, data.noise, wantNoise)

	wantReadings := [][]float64{
		{13, 23, 33, 43, 53},
		{14, 24, 34, 44, 54},
		{15, 25, 35, 45, math.NaN()},
	}
	assertMatrixCloseNaN(t, data.readings, wantReadings)
}

func TestAssembleWeekPrunesByMinObservationsAndReading(t *testing.T) {
	ds := jfkNjNyScenario()
	testWeeks := testWeeks2022To2024()
	data, err := assembleAllWeeks(ds, testWeeks)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		week         calendar.Epiweek
		readingRow   int
		wantLocs     []string
		wantNoise    [][]float64
		wantReadings []float64
	}{
		{
			week:       calendar.New(2020, 22),
			readingRow: 0,
			wantLocs:   []string{"jfk", "nj", "nj", "ny"},
			wantNoise: [][]float64{
				{10, 19, 39, 48},
				{8, 17, 37, 46},
			},
			wantReadings: []float64{13, 23, 43, 53},
		},
		{
			week:       calendar.New(2020, 23),
			readingRow: 1,
			wantLocs:   []string{"jfk", "nj", "nj", "ny"},
			wantNoise: [][]float64{
				{10, 19, 39, 48},
				{8, 17, 37, 46},
			},
			wantReadings: []float64{14, 24, 44, 54},
		},
		{
			week:       calendar.New(2020, 24),
			readingRow: 2,
			wantLocs:   []string{"jfk", "nj", "ny", "nj"},
			wantNoise: [][]float64{
				{10, 19, 28, 39},
				{8, 17, math.NaN(), 37},
				{7, math.NaN(), 26, math.NaN()},
			},
			wantReadings: []float64{15, 25, 35, 45},
		},
	}

	for _, tc := range cases {
		weekReading := mustRow(data.readings, tc.readingRow)
		locs, noise, reading := assembleWeek(data, tc.week, weekReading, ds.MissingLocations(tc.week), 2)
		if !equalStrings(locs, tc.wantLocs) {
			t.Errorf("week %s: locations = %v, want %v", tc.week, locs, tc.wantLocs)
		}
		assertMatrixCloseNaN(t, noise, tc.wantNoise)
		if !closeFloats(reading, tc.wantReadings) {
			t.Errorf("week %s: reading = %v, want %v", tc.week, reading, tc.wantReadings)
		}
	}
}

func mustRow(m *mat.Dense, row int) []float64 {
	_, cols := m.Dims()
	out := make([]float64, cols)
	for j := 0; j < cols; j++ {
		out[j] = m.At(row, j)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func closeFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func assertMatrixCloseNaN(t *testing.T, m *mat.Dense, want [][]float64) {
	t.Helper()
	rows, cols := m.Dims()
	if rows != len(want) {
		t.Fatalf("rows = %d, want %d", rows, len(want))
	}
	for i := 0; i < rows; i++ {
		if cols != len(want[i]) {
			t.Fatalf("row %d: cols = %d, want %d", i, cols, len(want[i]))
		}
		for j := 0; j < cols; j++ {
			got, w := m.At(i, j), want[i][j]
			if math.IsNaN(w) {
				if !math.IsNaN(got) {
					t.Errorf("[%d,%d] = %v, want NaN", i, j, got)
				}
				continue
			}
			if math.Abs(got-w) > 1e-9 {
				t.Errorf("[%d,%d] = %v, want %v", i, j, got, w)
			}
		}
	}
}
