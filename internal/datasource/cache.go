package datasource

import (
	"context"
	"sync"

	"github.com/spatialmodel/nowcast/internal/calendar"
)

// Fetcher performs the actual (network, database, or otherwise expensive)
// lookups a CachingDataSource memoizes. A miss is distinguished from an
// observed-missing cell through the ok return, not an error: errors are
// reserved for fetch failures the caller cannot recover a value from.
type Fetcher interface {
	FetchTruth(ctx context.Context, ew calendar.Epiweek, location string) (value float64, ok bool, err error)
	FetchSensor(ctx context.Context, ew calendar.Epiweek, location, name string) (value float64, ok bool, err error)
	FetchMostRecentIssue(ctx context.Context) (calendar.Epiweek, error)

	// BulkTruth and BulkSensor return only the epiweeks with an observed
	// value in [first, last]; callers default every other week in range
	// to missing before merging the result.
	BulkTruth(ctx context.Context, location string, first, last calendar.Epiweek) (map[calendar.Epiweek]float64, error)
	BulkSensor(ctx context.Context, name, location string, first, last calendar.Epiweek) (map[calendar.Epiweek]float64, error)
}

const truthSignal = "_truth"

// cacheEntry records a resolved lookup, including a negative result: ok is
// false for a cell the upstream source reported as not present (spec §9,
// "the negative cache is essential").
type cacheEntry struct {
	value float64
	ok    bool
}

// CachingDataSource wraps a Fetcher in a three-level signal -> location ->
// epiweek cache (spec §4.7, §9). The inner loop of nowcasting iterates
// weeks within a fixed (signal, location) pair, which this layout matches;
// a single RWMutex guards the whole cache since lookups and prefetch
// writes are infrequent relative to driver iteration.
type CachingDataSource struct {
	fetcher Fetcher

	truthLocations  []string
	sensorLocations []string
	sensors         []string
	firstDataWeek   calendar.Epiweek

	mu    sync.RWMutex
	cache map[string]map[string]map[calendar.Epiweek]cacheEntry

	mostRecentOnce sync.Once
	mostRecent     calendar.Epiweek
	mostRecentErr  error
}

// NewCachingDataSource constructs a CachingDataSource. truthLocations and
// sensorLocations need not coincide: a sensor may cover locations ground
// truth does not, or vice versa. firstDataWeek bounds Weeks() and Prefetch.
func NewCachingDataSource(fetcher Fetcher, truthLocations, sensorLocations, sensors []string, firstDataWeek calendar.Epiweek) *CachingDataSource {
	return &CachingDataSource{
		fetcher:         fetcher,
		truthLocations:  truthLocations,
		sensorLocations: sensorLocations,
		sensors:         sensors,
		firstDataWeek:   firstDataWeek,
		cache:           make(map[string]map[string]map[calendar.Epiweek]cacheEntry),
	}
}

func (c *CachingDataSource) TruthLocations() []string  { return c.truthLocations }
func (c *CachingDataSource) SensorLocations() []string { return c.sensorLocations }
func (c *CachingDataSource) Sensors() []string         { return c.sensors }

func (c *CachingDataSource) Weeks() []calendar.Epiweek {
	latest, err := c.MostRecentIssue(context.Background())
	if err != nil {
		return nil
	}
	return calendar.RangeEpiweeks(c.firstDataWeek, latest, true)
}

func (c *CachingDataSource) MissingLocations(ew calendar.Epiweek) map[string]bool {
	missing := make(map[string]bool)
	for _, loc := range c.truthLocations {
		if _, ok := c.TruthValue(ew, loc); !ok {
			missing[loc] = true
		}
	}
	return missing
}

func (c *CachingDataSource) TruthValue(ew calendar.Epiweek, location string) (float64, bool) {
	if v, ok := c.lookup(truthSignal, location, ew); ok {
		return v.value, v.ok
	}
	value, ok, err := c.fetcher.FetchTruth(context.Background(), ew, location)
	if err != nil {
		return 0, false
	}
	c.store(truthSignal, location, ew, cacheEntry{value, ok})
	return value, ok
}

func (c *CachingDataSource) SensorValue(ew calendar.Epiweek, location, name string) (float64, bool) {
	if v, ok := c.lookup(name, location, ew); ok {
		return v.value, v.ok
	}
	value, ok, err := c.fetcher.FetchSensor(context.Background(), ew, location, name)
	if err != nil {
		return 0, false
	}
	c.store(name, location, ew, cacheEntry{value, ok})
	return value, ok
}

func (c *CachingDataSource) MostRecentIssue(ctx context.Context) (calendar.Epiweek, error) {
	c.mostRecentOnce.Do(func() {
		c.mostRecent, c.mostRecentErr = c.fetcher.FetchMostRecentIssue(ctx)
	})
	return c.mostRecent, c.mostRecentErr
}

// Prefetch seeds the cache for every (signal, location) pair over
// [firstDataWeek, ew], defaulting every cell to missing first so that a
// subsequent individual lookup never has to fall through to the network
// (spec §4.7, §9). Ground truth and each sensor are fetched independently
// per location to stay under typical API row limits, matching the
// original source's per-location batching.
func (c *CachingDataSource) Prefetch(ctx context.Context, ew calendar.Epiweek) error {
	weeks := calendar.RangeEpiweeks(c.firstDataWeek, ew, true)

	for _, loc := range c.truthLocations {
		for _, week := range weeks {
			c.store(truthSignal, loc, week, cacheEntry{ok: false})
		}
		values, err := c.fetcher.BulkTruth(ctx, loc, c.firstDataWeek, ew)
		if err != nil {
			return err
		}
		for week, v := range values {
			c.store(truthSignal, loc, week, cacheEntry{value: v, ok: true})
		}
	}

	for _, loc := range c.sensorLocations {
		for _, name := range c.sensors {
			for _, week := range weeks {
				c.store(name, loc, week, cacheEntry{ok: false})
			}
		}
	}
	for _, name := range c.sensors {
		for _, loc := range c.sensorLocations {
			values, err := c.fetcher.BulkSensor(ctx, name, loc, c.firstDataWeek, ew)
			if err != nil {
				return err
			}
			for week, v := range values {
				c.store(name, loc, week, cacheEntry{value: v, ok: true})
			}
		}
	}
	return nil
}

func (c *CachingDataSource) lookup(signal, location string, ew calendar.Epiweek) (cacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	byLoc, ok := c.cache[signal]
	if !ok {
		return cacheEntry{}, false
	}
	byWeek, ok := byLoc[location]
	if !ok {
		return cacheEntry{}, false
	}
	v, ok := byWeek[ew]
	return v, ok
}

func (c *CachingDataSource) store(signal, location string, ew calendar.Epiweek, v cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byLoc, ok := c.cache[signal]
	if !ok {
		byLoc = make(map[string]map[calendar.Epiweek]cacheEntry)
		c.cache[signal] = byLoc
	}
	byWeek, ok := byLoc[location]
	if !ok {
		byWeek = make(map[calendar.Epiweek]cacheEntry)
		byLoc[location] = byWeek
	}
	byWeek[ew] = v
}
