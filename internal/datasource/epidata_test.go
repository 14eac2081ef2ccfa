package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spatialmodel/nowcast/internal/calendar"
)

// newStubEpidataServer serves canned fluview/sensors responses, counting
// requests per endpoint so tests can assert on request-cache dedup/hit
// behavior.
func newStubEpidataServer(t *testing.T, hits map[string]int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/fluview/", func(w http.ResponseWriter, r *http.Request) {
		hits["fluview"]++
		row, _ := json.Marshal(fluviewRow{Epiweek: 202042, Issue: 202043, Wili: 2.5, NumProviders: 10})
		resp := epidataResponse{Result: 1, Epidata: []json.RawMessage{row}}
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/sensors/", func(w http.ResponseWriter, r *http.Request) {
		hits["sensors"]++
		row, _ := json.Marshal(sensorRow{Epiweek: 202042, Value: 3.1})
		resp := epidataResponse{Result: 1, Epidata: []json.RawMessage{row}}
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/empty/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(epidataResponse{Result: -2})
	})
	return httptest.NewServer(mux)
}

func TestFetchTruthAndSensor(t *testing.T) {
	hits := map[string]int{}
	srv := newStubEpidataServer(t, hits)
	defer srv.Close()

	e := NewEpidata(srv.URL, "")
	ew := calendar.New(2020, 42)

	v, ok, err := e.FetchTruth(context.Background(), ew, "ny")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || v != 2.5 {
		t.Errorf("FetchTruth = (%v, %v), want (2.5, true)", v, ok)
	}

	v, ok, err = e.FetchSensor(context.Background(), ew, "ny", "s")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || v != 3.1 {
		t.Errorf("FetchSensor = (%v, %v), want (3.1, true)", v, ok)
	}
}

func TestFetchTruthDeduplicatesConcurrentRequests(t *testing.T) {
	hits := map[string]int{}
	srv := newStubEpidataServer(t, hits)
	defer srv.Close()

	e := NewEpidata(srv.URL, "")
	ew := calendar.New(2020, 42)

	const n = 8
	errCh := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, _, err := e.FetchTruth(context.Background(), ew, "ny")
			errCh <- err
		}()
	}
	for i := 0; i < n; i++ {
		if err := <-errCh; err != nil {
			t.Fatal(err)
		}
	}
	// Deduplicate+Memory collapse identical concurrent requests for the
	// same key into at most a couple of upstream round-trips, never n.
	if hits["fluview"] >= n {
		t.Errorf("fluview hits = %d, want well under %d thanks to request dedup/caching", hits["fluview"], n)
	}
}

func TestFetchTruthMissingReturnsNotOK(t *testing.T) {
	hits := map[string]int{}
	srv := newStubEpidataServer(t, hits)
	defer srv.Close()

	e := NewEpidata(fmt.Sprintf("%s/empty", srv.URL), "")
	ew := calendar.New(2020, 42)
	v, ok, err := e.FetchTruth(context.Background(), ew, "ny")
	if err != nil {
		t.Fatal(err)
	}
	if ok || v != 0 {
		t.Errorf("FetchTruth = (%v, %v), want (0, false)", v, ok)
	}
}
