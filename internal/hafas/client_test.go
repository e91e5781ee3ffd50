package hafas

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/dnaeon/go-vcr.v4/pkg/cassette"
	"gopkg.in/dnaeon/go-vcr.v4/pkg/recorder"

	"pendler.kildedal.dk/internal/models"
	"pendler.kildedal.dk/internal/transit"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// setupHafasServer fakes the mgate endpoint with a fixed response body and
// captures the decoded request envelope for assertions.
func setupHafasServer(t *testing.T, response string, statusCode int, captured *map[string]any) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("request body is not JSON: %v", err)
			}
			*captured = body
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		w.Write([]byte(response))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestLocationSearch(t *testing.T) {
	response := `{"svcResL":[{"meth":"LocMatch","err":"OK","res":{"match":{"locL":[
		{"lid":"A=1@O=Kildedal St.@L=8600856@","name":"Kildedal St.","extId":"8600856","crd":{"x":12260149,"y":55731835}},
		{"lid":"A=1@O=Kildedal Nord@L=8600857@","name":"Kildedal Nord"}
	]}}}]}`

	var captured map[string]any
	ts := setupHafasServer(t, response, http.StatusOK, &captured)
	c := NewClient(ts.URL, "", ts.Client(), newTestLogger())

	stops, err := c.LocationSearch(context.Background(), "Kildedal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stops) != 2 {
		t.Fatalf("got %d stops, want 2", len(stops))
	}
	if stops[0].Name != "Kildedal St." || stops[0].ID != "A=1@O=Kildedal St.@L=8600856@" {
		t.Errorf("unexpected first stop: %+v", stops[0])
	}
	if stops[0].ExtID != "8600856" {
		t.Errorf("extId = %q, want 8600856", stops[0].ExtID)
	}
	if stops[0].Position == nil || stops[0].Position.Lat != 55.731835 || stops[0].Position.Lng != 12.260149 {
		t.Errorf("coordinates not converted from microdegrees: %+v", stops[0].Position)
	}
	if stops[1].Position != nil {
		t.Error("stop without crd should have nil position")
	}

	// Envelope sanity: static auth block and a single LocMatch service call.
	auth, _ := captured["auth"].(map[string]any)
	if auth["aid"] != DefaultAccessID {
		t.Errorf("aid = %v, want %v", auth["aid"], DefaultAccessID)
	}
	reqs, _ := captured["svcReqL"].([]any)
	if len(reqs) != 1 {
		t.Fatalf("svcReqL has %d entries, want 1", len(reqs))
	}
	if meth := reqs[0].(map[string]any)["meth"]; meth != "LocMatch" {
		t.Errorf("meth = %v, want LocMatch", meth)
	}
}

func TestLocationSearchEmptyResult(t *testing.T) {
	response := `{"svcResL":[{"meth":"LocMatch","err":"OK","res":{"match":{"locL":[]}}}]}`
	ts := setupHafasServer(t, response, http.StatusOK, nil)
	c := NewClient(ts.URL, "", ts.Client(), newTestLogger())

	stops, err := c.LocationSearch(context.Background(), "Atlantis")
	if err != nil {
		t.Fatalf("empty result must not be an error, got: %v", err)
	}
	if len(stops) != 0 {
		t.Errorf("got %d stops, want 0", len(stops))
	}
}

func TestCallSurfacesUpstreamError(t *testing.T) {
	response := `{"svcResL":[{"meth":"TripSearch","err":"H890","errTxt":"No connections found"}]}`
	ts := setupHafasServer(t, response, http.StatusOK, nil)
	c := NewClient(ts.URL, "", ts.Client(), newTestLogger())

	_, err := c.TripSearch(context.Background(), transit.TripQuery{OriginID: "a", DestinationID: "b"})
	var upstream *transit.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("want *transit.UpstreamError, got %v", err)
	}
	if upstream.Code != "H890" || upstream.Message != "No connections found" {
		t.Errorf("unexpected upstream error: %+v", upstream)
	}
}

func TestCallRejectsBadStatus(t *testing.T) {
	ts := setupHafasServer(t, "gateway timeout", http.StatusBadGateway, nil)
	c := NewClient(ts.URL, "", ts.Client(), newTestLogger())

	if _, err := c.LocationSearch(context.Background(), "x"); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestCallTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close() // refused connections from here on

	c := NewClient(ts.URL, "", &http.Client{Timeout: time.Second}, newTestLogger())
	if _, err := c.LocationSearch(context.Background(), "x"); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestTripSearchRequestShape(t *testing.T) {
	response := `{"svcResL":[{"meth":"TripSearch","err":"OK","res":{"common":{"prodL":[]},"outConL":[]}}]}`
	var captured map[string]any
	ts := setupHafasServer(t, response, http.StatusOK, &captured)
	c := NewClient(ts.URL, "", ts.Client(), newTestLogger())

	origin := models.LatLng{Lat: 55.7318, Lng: 12.2601}
	dest := models.LatLng{Lat: 55.6728, Lng: 12.5155}
	trips, err := c.TripSearch(context.Background(), transit.TripQuery{
		Origin:       &origin,
		Destination:  &dest,
		WithGeometry: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trips) != 0 {
		t.Errorf("got %d trips, want 0", len(trips))
	}

	reqs, _ := captured["svcReqL"].([]any)
	if len(reqs) != 1 {
		t.Fatalf("svcReqL has %d entries, want 1", len(reqs))
	}
	req, _ := reqs[0].(map[string]any)["req"].(map[string]any)

	if got := req["getPolyline"]; got != true {
		t.Errorf("getPolyline = %v, want true", got)
	}
	if got := req["numF"]; got != float64(defaultTripLimit) {
		t.Errorf("numF = %v, want default %d", got, defaultTripLimit)
	}

	// Coordinate endpoints bypass location resolution via a synthesized lid.
	depLocs, _ := req["depLocL"].([]any)
	if len(depLocs) != 1 {
		t.Fatalf("depLocL has %d entries, want 1", len(depLocs))
	}
	wantLid := "A=2@X=12260100@Y=55731800@"
	if lid := depLocs[0].(map[string]any)["lid"]; lid != wantLid {
		t.Errorf("origin lid = %v, want %v", lid, wantLid)
	}
}

func TestDepartureBoard(t *testing.T) {
	response := `{"svcResL":[{"meth":"StationBoard","err":"OK","res":{
		"common":{"prodL":[{"name":"S C "}]},
		"jnyL":[
			{"date":"20250602","prodX":0,"dirTxt":"Frederikssund","stbStop":{"dTimeS":"081500","dTimeR":"081700"}},
			{"date":"20250602","prodX":0,"dirTxt":"Klampenborg","stbStop":{"dTimeS":"082000"}},
			{"date":"20250602","prodX":0,"dirTxt":"Ballerup","stbStop":{}}
		]}}]}`
	ts := setupHafasServer(t, response, http.StatusOK, nil)
	c := NewClient(ts.URL, "", ts.Client(), newTestLogger())
	c.loc = time.UTC

	deps, err := c.DepartureBoard(context.Background(), transit.DepartureQuery{StopID: "lid-kildedal"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The entry with no scheduled time is dropped, not surfaced as an error.
	if len(deps) != 2 {
		t.Fatalf("got %d departures, want 2", len(deps))
	}
	if deps[0].Line != "S C" || deps[0].Direction != "Frederikssund" {
		t.Errorf("unexpected first departure: %+v", deps[0])
	}
	if deps[0].Time.Realtime == nil {
		t.Error("first departure lost its realtime data")
	}
	if deps[1].Time.Realtime != nil {
		t.Error("second departure should have no realtime data")
	}
}

func TestLocationSearchWithVCR(t *testing.T) {
	// Every mgate call is a POST to the same URL with the method in the
	// body, so the replay matcher keys on method and URL only.
	rec, err := recorder.New(
		filepath.Join("testdata", "vcr", "locmatch_kildedal"),
		recorder.WithMatcher(func(r *http.Request, i cassette.Request) bool {
			return r.Method == i.Method && r.URL.String() == i.URL
		}),
	)
	if err != nil {
		t.Fatalf("failed to create recorder: %v", err)
	}
	defer rec.Stop()

	client := &http.Client{Transport: rec, Timeout: 10 * time.Second}
	c := NewClient(DefaultEndpoint, "", client, newTestLogger())

	stops, err := c.LocationSearch(context.Background(), "Kildedal St.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stops) == 0 {
		t.Fatal("expected at least one stop from cassette")
	}
	if stops[0].Name != "Kildedal St." {
		t.Errorf("first stop = %q, want Kildedal St.", stops[0].Name)
	}
}
