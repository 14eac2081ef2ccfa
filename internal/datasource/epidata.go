package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/ctessum/requestcache"
	"github.com/sirupsen/logrus"

	"github.com/spatialmodel/nowcast/internal/calendar"
)

// cellRequestWorkers and cellRequestCacheSize bound the single-cell
// request cache fronting the HTTP round-trips: few enough workers to
// stay polite to the upstream API, enough entries to cover a batch's
// worth of weeks without growing unbounded.
const (
	cellRequestWorkers   = 4
	cellRequestCacheSize = 4096
)

// cellResult is the payload cached by singleCache: the fetched value and
// whether the upstream actually reported one, preserving the ok/not-ok
// distinction through the cache the way CachingDataSource's own negative
// cache does at the layer above.
type cellResult struct {
	value float64
	ok    bool
}

// Epidata is a Fetcher backed by the Epidata HTTP API, the upstream
// source of both ground-truth wILI (the "fluview" endpoint) and sensor
// readings (the "sensors" endpoint). Single-cell lookups (the path
// CachingDataSource takes on a cache miss) are deduplicated and
// opportunistically cached in a bounded in-memory requestcache.Cache,
// the same dedup-then-LRU composition CSTConfig.PopulationIncidence uses
// around its own expensive per-key lookups.
type Epidata struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *logrus.Entry

	singleCache *requestcache.Cache
}

// NewEpidata constructs an Epidata client. apiKey is sent as the "auth"
// parameter on sensors requests only (fluview requests carry no auth); it
// may be empty.
func NewEpidata(baseURL, apiKey string) *Epidata {
	e := &Epidata{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     logrus.WithField("component", "epidata"),
	}
	e.singleCache = requestcache.NewCache(e.fetchCell, cellRequestWorkers,
		requestcache.Deduplicate(), requestcache.Memory(cellRequestCacheSize))
	return e
}

// cellRequest is the payload carried through singleCache to fetchCell:
// either a truth lookup (sensor == "") or a named sensor lookup.
type cellRequest struct {
	ew       calendar.Epiweek
	location string
	sensor   string
}

// fetchCell is the requestcache.ProcessFunc backing singleCache: it
// performs the actual HTTP round-trip for one (location, sensor, week)
// cell, dispatching to fluview or sensors depending on whether a sensor
// name was given.
func (e *Epidata) fetchCell(ctx context.Context, payload interface{}) (interface{}, error) {
	req := payload.(cellRequest)
	if req.sensor == "" {
		rows, err := e.fluview(ctx, req.location, req.ew, req.ew)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 || rows[0].NumProviders == 0 {
			return cellResult{}, nil
		}
		return cellResult{value: rows[0].Wili, ok: true}, nil
	}
	rows, err := e.sensors(ctx, req.sensor, req.location, req.ew, req.ew)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return cellResult{}, nil
	}
	return cellResult{value: rows[0].Value, ok: true}, nil
}

type epidataResponse struct {
	Result  int               `json:"result"`
	Message string            `json:"message"`
	Epidata []json.RawMessage `json:"epidata"`
}

type fluviewRow struct {
	Epiweek      int     `json:"epiweek"`
	Issue        int     `json:"issue"`
	Wili         float64 `json:"wili"`
	NumProviders int     `json:"num_providers"`
}

type sensorRow struct {
	Epiweek int     `json:"epiweek"`
	Value   float64 `json:"value"`
}

func (e *Epidata) FetchTruth(ctx context.Context, ew calendar.Epiweek, location string) (float64, bool, error) {
	r := e.singleCache.NewRequest(ctx, cellRequest{ew: ew, location: location},
		fmt.Sprintf("truth_%s_%s", location, ew))
	resultI, err := r.Result()
	if err != nil {
		return 0, false, err
	}
	result := resultI.(cellResult)
	return result.value, result.ok, nil
}

func (e *Epidata) FetchSensor(ctx context.Context, ew calendar.Epiweek, location, name string) (float64, bool, error) {
	r := e.singleCache.NewRequest(ctx, cellRequest{ew: ew, location: location, sensor: name},
		fmt.Sprintf("sensor_%s_%s_%s", name, location, ew))
	resultI, err := r.Result()
	if err != nil {
		return 0, false, err
	}
	result := resultI.(cellResult)
	return result.value, result.ok, nil
}

func (e *Epidata) BulkTruth(ctx context.Context, location string, first, last calendar.Epiweek) (map[calendar.Epiweek]float64, error) {
	rows, err := e.fluview(ctx, location, first, last)
	if err != nil {
		return nil, err
	}
	out := make(map[calendar.Epiweek]float64, len(rows))
	for _, r := range rows {
		if r.NumProviders > 0 {
			out[calendar.Epiweek(r.Epiweek)] = r.Wili
		}
	}
	return out, nil
}

func (e *Epidata) BulkSensor(ctx context.Context, name, location string, first, last calendar.Epiweek) (map[calendar.Epiweek]float64, error) {
	rows, err := e.sensors(ctx, name, location, first, last)
	if err != nil {
		return nil, err
	}
	out := make(map[calendar.Epiweek]float64, len(rows))
	for _, r := range rows {
		out[calendar.Epiweek(r.Epiweek)] = r.Value
	}
	return out, nil
}

// FetchMostRecentIssue returns the most recent epiweek for which national
// fluview data has been issued, scanning the last nine weeks for the
// highest issue number reported.
func (e *Epidata) FetchMostRecentIssue(ctx context.Context) (calendar.Epiweek, error) {
	latest := calendar.FromTime(time.Now())
	earliest := calendar.AddEpiweeks(latest, -9)
	rows, err := e.fluview(ctx, "nat", earliest, latest)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("datasource: no fluview issues found in the last 9 weeks")
	}
	maxIssue := rows[0].Issue
	for _, r := range rows[1:] {
		if r.Issue > maxIssue {
			maxIssue = r.Issue
		}
	}
	return calendar.Epiweek(maxIssue), nil
}

func (e *Epidata) fluview(ctx context.Context, location string, first, last calendar.Epiweek) ([]fluviewRow, error) {
	raw, err := e.get(ctx, "fluview", url.Values{
		"regions": {location},
		"epiweeks": {epiweekRange(first, last)},
	})
	if err != nil {
		return nil, err
	}
	rows := make([]fluviewRow, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal(r, &rows[i]); err != nil {
			return nil, fmt.Errorf("datasource: decoding fluview row: %w", err)
		}
	}
	return rows, nil
}

func (e *Epidata) sensors(ctx context.Context, name, location string, first, last calendar.Epiweek) ([]sensorRow, error) {
	raw, err := e.get(ctx, "sensors", url.Values{
		"names":    {name},
		"locations": {location},
		"epiweeks": {epiweekRange(first, last)},
		"auth":     {e.apiKey},
	})
	if err != nil {
		return nil, err
	}
	rows := make([]sensorRow, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal(r, &rows[i]); err != nil {
			return nil, fmt.Errorf("datasource: decoding sensor row: %w", err)
		}
	}
	return rows, nil
}

func epiweekRange(first, last calendar.Epiweek) string {
	if first == last {
		return first.String()
	}
	return fmt.Sprintf("%s-%s", first, last)
}

// get issues a single GET request to endpoint with params, retrying
// transient failures with exponential backoff. A well-formed response
// reporting "no results" (result == -2) is not an error: it yields an
// empty row set. Any other result besides 1 is returned as an error.
func (e *Epidata) get(ctx context.Context, endpoint string, params url.Values) ([]json.RawMessage, error) {
	reqURL := fmt.Sprintf("%s/%s/", e.baseURL, endpoint)

	var resp epidataResponse
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.URL.RawQuery = params.Encode()

		httpResp, err := e.client.Do(req)
		if err != nil {
			return err
		}
		defer httpResp.Body.Close()
		if httpResp.StatusCode >= 500 {
			return fmt.Errorf("datasource: %s returned status %d", endpoint, httpResp.StatusCode)
		}
		if httpResp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("datasource: %s returned status %d", endpoint, httpResp.StatusCode))
		}
		resp = epidataResponse{}
		return json.NewDecoder(httpResp.Body).Decode(&resp)
	}

	notify := func(err error, d time.Duration) {
		e.log.WithError(err).Warnf("retrying %s in %v", endpoint, d)
	}
	if err := backoff.RetryNotify(op, backoff.NewExponentialBackOff(), notify); err != nil {
		return nil, err
	}

	switch resp.Result {
	case 1:
		return resp.Epidata, nil
	case -2: // no results
		return nil, nil
	default:
		return nil, fmt.Errorf("datasource: %s: %s", endpoint, resp.Message)
	}
}
