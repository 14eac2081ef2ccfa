package nowcast

import (
	"context"
	"math"
	"testing"

	"github.com/spatialmodel/nowcast/internal/calendar"
	"github.com/spatialmodel/nowcast/internal/covariance"
	"github.com/spatialmodel/nowcast/internal/geo"
)

// scriptedDataSource serves literal per-(sensor, location, epiweek) values
// from a map, for driver scenarios where the exact residual/reading
// numbers matter (spec §8 S1-S4).
type scriptedDataSource struct {
	truthLocs, sensorLocs, sensorNames []string
	weeks                              []calendar.Epiweek
	truth                              map[calendar.Epiweek]map[string]float64
	sensor                             map[string]map[calendar.Epiweek]map[string]float64
}

func newScriptedDataSource() *scriptedDataSource {
	return &scriptedDataSource{
		truth:  make(map[calendar.Epiweek]map[string]float64),
		sensor: make(map[string]map[calendar.Epiweek]map[string]float64),
	}
}

func (s *scriptedDataSource) setTruth(ew calendar.Epiweek, loc string, v float64) {
	if s.truth[ew] == nil {
		s.truth[ew] = make(map[string]float64)
	}
	s.truth[ew][loc] = v
}

func (s *scriptedDataSource) setSensor(name string, ew calendar.Epiweek, loc string, v float64) {
	if s.sensor[name] == nil {
		s.sensor[name] = make(map[calendar.Epiweek]map[string]float64)
	}
	if s.sensor[name][ew] == nil {
		s.sensor[name][ew] = make(map[string]float64)
	}
	s.sensor[name][ew][loc] = v
}

func (s *scriptedDataSource) TruthLocations() []string  { return s.truthLocs }
func (s *scriptedDataSource) SensorLocations() []string { return s.sensorLocs }
func (s *scriptedDataSource) Sensors() []string         { return s.sensorNames }
func (s *scriptedDataSource) Weeks() []calendar.Epiweek { return s.weeks }

func (s *scriptedDataSource) MissingLocations(ew calendar.Epiweek) map[string]bool {
	return map[string]bool{}
}

func (s *scriptedDataSource) TruthValue(ew calendar.Epiweek, location string) (float64, bool) {
	v, ok := s.truth[ew][location]
	return v, ok
}

func (s *scriptedDataSource) SensorValue(ew calendar.Epiweek, location, name string) (float64, bool) {
	v, ok := s.sensor[name][ew][location]
	return v, ok
}

func (s *scriptedDataSource) MostRecentIssue(ctx context.Context) (calendar.Epiweek, error) {
	return s.weeks[len(s.weeks)-1], nil
}

func (s *scriptedDataSource) Prefetch(ctx context.Context, ew calendar.Epiweek) error { return nil }

// twoAtomScenario builds a scripted data source with one sensor observed
// at two locations over two training weeks, producing the exact residual
// matrix [[11,-13],[-11,13]] and test reading [17,19] from spec §8's S1-S4
// family of scenarios.
func twoAtomScenario(locA, locB string, testWeek calendar.Epiweek) *scriptedDataSource {
	ds := newScriptedDataSource()
	ds.truthLocs = []string{locA, locB}
	ds.sensorLocs = []string{locA, locB}
	ds.sensorNames = []string{"s"}
	week1, week2 := calendar.AddEpiweeks(testWeek, -2), calendar.AddEpiweeks(testWeek, -1)
	ds.weeks = []calendar.Epiweek{week1, week2}

	ds.setTruth(week1, locA, 0)
	ds.setTruth(week1, locB, 0)
	ds.setTruth(week2, locA, 0)
	ds.setTruth(week2, locB, 0)
	ds.setSensor("s", week1, locA, 11)
	ds.setSensor("s", week1, locB, -13)
	ds.setSensor("s", week2, locA, -11)
	ds.setSensor("s", week2, locB, 13)
	ds.setSensor("s", testWeek, locA, 17)
	ds.setSensor("s", testWeek, locB, 19)
	return ds
}

func recordFor(records []Record, loc string) (Record, bool) {
	for _, r := range records {
		if r.Location == loc {
			return r, true
		}
	}
	return Record{}, false
}

// TestBatchNowcastIndependentPair is spec §8 scenario S1: two disjoint
// atoms recover their own readings with their own sensor stdev.
func TestBatchNowcastIndependentPair(t *testing.T) {
	testWeek := calendar.New(2020, 42)
	ds := twoAtomScenario("ct", "ca", testWeek) // hhs1 vs hhs9, no shared parent but nat
	cat := geo.NewCatalog()
	driver := NewDriver(ds, cat, Options{MinObservations: 2, ShrinkageVariant: covariance.VariantDenWeighted})

	records, err := driver.BatchNowcast([]calendar.Epiweek{testWeek})
	if err != nil {
		t.Fatal(err)
	}

	ctRec, ok := recordFor(records, "ct")
	if !ok {
		t.Fatal("no record for ct")
	}
	if math.Abs(ctRec.Mean-17) > 0.5 {
		t.Errorf("ct mean = %v, want ~17", ctRec.Mean)
	}
	if math.Abs(ctRec.Stdev-11) > 1.5 {
		t.Errorf("ct stdev = %v, want ~11", ctRec.Stdev)
	}

	caRec, ok := recordFor(records, "ca")
	if !ok {
		t.Fatal("no record for ca")
	}
	if math.Abs(caRec.Mean-19) > 0.5 {
		t.Errorf("ca mean = %v, want ~19", caRec.Mean)
	}
}

// TestBatchNowcastInfersParent is spec §8 scenario S3, using the jfk/ny
// pair under hhs2 (grounded on the original fixture's explicit comment
// "assume HHS2 is only NY + NJ"). hhs2's other atoms (nj, pr, vi) are
// excluded so that jfk and ny are its only constituents.
func TestBatchNowcastInfersParent(t *testing.T) {
	testWeek := calendar.New(2020, 42)
	ds := twoAtomScenario("jfk", "ny", testWeek)
	cat := geo.NewCatalog()
	driver := NewDriver(ds, cat, Options{
		MinObservations:       2,
		ShrinkageVariant:      covariance.VariantDenWeighted,
		ExcludedAtomsOverride: map[string]bool{"nj": true, "pr": true, "vi": true},
	})

	records, err := driver.BatchNowcast([]calendar.Epiweek{testWeek})
	if err != nil {
		t.Fatal(err)
	}

	parent, ok := recordFor(records, "hhs2")
	if !ok {
		t.Fatalf("no record for hhs2 parent; records = %v", records)
	}
	lo, hi := math.Min(17, 19), math.Max(17, 19)
	if parent.Mean < lo || parent.Mean > hi {
		t.Errorf("hhs2 mean = %v, want in [%v, %v]", parent.Mean, lo, hi)
	}
	if parent.Stdev >= 13 {
		t.Errorf("hhs2 stdev = %v, want < max(11, 13) = 13", parent.Stdev)
	}

	jfk, ok := recordFor(records, "jfk")
	if !ok {
		t.Fatal("no record for jfk")
	}
	ny, ok := recordFor(records, "ny")
	if !ok {
		t.Fatal("no record for ny")
	}
	if math.Abs(jfk.Mean-17) > 0.5 {
		t.Errorf("jfk mean = %v, want ~17", jfk.Mean)
	}
	if math.Abs(ny.Mean-19) > 0.5 {
		t.Errorf("ny mean = %v, want ~19", ny.Mean)
	}
}

// TestBatchNowcastRedundantInputsNarrowStdev is spec §8 scenario S2: the
// same location sensed by two independent sensors yields a single output
// whose mean lies strictly between the two readings and whose stdev is
// strictly smaller than either sensor's own stdev.
func TestBatchNowcastRedundantInputsNarrowStdev(t *testing.T) {
	testWeek := calendar.New(2020, 42)
	ds := newScriptedDataSource()
	const loc = "ct"
	ds.truthLocs = []string{loc}
	ds.sensorLocs = []string{loc}
	ds.sensorNames = []string{"s1", "s2"}
	week1, week2 := calendar.AddEpiweeks(testWeek, -2), calendar.AddEpiweeks(testWeek, -1)
	ds.weeks = []calendar.Epiweek{week1, week2}

	ds.setTruth(week1, loc, 0)
	ds.setTruth(week2, loc, 0)
	ds.setSensor("s1", week1, loc, 11)
	ds.setSensor("s1", week2, loc, -11)
	ds.setSensor("s2", week1, loc, -13)
	ds.setSensor("s2", week2, loc, 13)
	ds.setSensor("s1", testWeek, loc, 17)
	ds.setSensor("s2", testWeek, loc, 19)

	cat := geo.NewCatalog()
	driver := NewDriver(ds, cat, Options{MinObservations: 2, ShrinkageVariant: covariance.VariantDenWeighted})

	records, err := driver.BatchNowcast([]calendar.Epiweek{testWeek})
	if err != nil {
		t.Fatal(err)
	}
	rec, ok := recordFor(records, loc)
	if !ok {
		t.Fatalf("no record for %s; records = %v", loc, records)
	}
	if rec.Mean <= 17 || rec.Mean >= 19 {
		t.Errorf("mean = %v, want strictly between 17 and 19", rec.Mean)
	}
	if rec.Stdev >= 11 || rec.Stdev >= 13 {
		t.Errorf("stdev = %v, want strictly less than both 11 and 13", rec.Stdev)
	}
}

// TestBatchNowcastExcludesAtomsFromStatespace is spec §8 scenario S4.
func TestBatchNowcastExcludesAtomsFromStatespace(t *testing.T) {
	testWeek := calendar.New(2020, 42)
	ds := twoAtomScenario("de", "dc", testWeek) // both hhs3
	cat := geo.NewCatalog()
	driver := NewDriver(ds, cat, Options{
		MinObservations:       2,
		ShrinkageVariant:      covariance.VariantDenWeighted,
		ExcludedAtomsOverride: map[string]bool{"va": true, "wv": true, "md": true, "pa": true}, // the rest of hhs3
	})

	records, err := driver.BatchNowcast([]calendar.Epiweek{testWeek})
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := recordFor(records, "va"); ok {
		t.Error("va should be excluded from the statespace")
	}
	if _, ok := recordFor(records, "wv"); ok {
		t.Error("wv should be excluded from the statespace")
	}
	if _, ok := recordFor(records, "hhs3"); !ok {
		t.Error("hhs3 parent should still be derivable from de and dc alone")
	}
}

// TestBatchNowcastSkipsAllMissingWeek is spec §8 scenario S5.
func TestBatchNowcastSkipsAllMissingWeek(t *testing.T) {
	testWeek := calendar.New(2020, 42)
	ds := twoAtomScenario("ct", "ca", testWeek)
	// Blank out the test week's sensor readings entirely.
	ds.sensor["s"][testWeek] = map[string]float64{}
	cat := geo.NewCatalog()
	driver := NewDriver(ds, cat, Options{MinObservations: 2})

	records, err := driver.BatchNowcast([]calendar.Epiweek{testWeek})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("records = %v, want none for an all-missing test week", records)
	}
}
