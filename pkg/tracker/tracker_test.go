package tracker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/transitlive/transitlive/pkg/feed"
	"github.com/transitlive/transitlive/pkg/heading"
)

func testRegion() RegionConfig {
	return RegionConfig{
		Name:         "test",
		Latitude:     48.15,
		Longitude:    17.1,
		RadiusMeters: 10000,
		PollInterval: Duration(time.Second),
	}
}

func TestReloadBuildsSnapshotAndTargets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("radius") != "10000" {
			t.Errorf("unexpected radius %q", r.URL.Query().Get("radius"))
		}

		w.Write([]byte(`{"status":"ok","vehicles":[
			{"vehicleId":7,"lastStopOrder":3,"lat":48.15,"lng":17.1,"line":"9","type":"tram"},
			{"vehicleId":12,"lastStopOrder":5,"lat":48.16,"lng":17.12,"line":"83","type":"bus"}
		]}`))
	}))
	defer server.Close()

	regionTracker := NewTracker(testRegion(), feed.NewClient(server.URL, ""), heading.NewSegmentIndex(), nil)

	if err := regionTracker.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	snapshot := regionTracker.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("snapshot has %d records, want 2", len(snapshot))
	}
	if snapshot["7-3"] == nil || snapshot["12-5"] == nil {
		t.Fatalf("snapshot keyed wrongly: %v", snapshot)
	}

	targets := regionTracker.Targets()
	if _, exists := targets["7-3"]; !exists {
		t.Error("heading targets must cover every snapshot record")
	}

	status := regionTracker.Status()
	if status.Loading {
		t.Error("loading must clear after the first completed fetch")
	}
	if status.LastError != "" {
		t.Errorf("unexpected error %q", status.LastError)
	}
}

func TestFailedReloadKeepsPreviousSnapshot(t *testing.T) {
	var calls atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) > 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Write([]byte(`{"status":"ok","vehicles":[{"vehicleId":7,"lastStopOrder":3,"lat":48.15,"lng":17.1}]}`))
	}))
	defer server.Close()

	regionTracker := NewTracker(testRegion(), feed.NewClient(server.URL, ""), heading.NewSegmentIndex(), nil)

	if err := regionTracker.Reload(context.Background()); err != nil {
		t.Fatalf("first reload: %v", err)
	}

	if err := regionTracker.Reload(context.Background()); err == nil {
		t.Fatal("second reload should fail")
	}

	if len(regionTracker.Snapshot()) != 1 {
		t.Error("failed fetch must leave the previous snapshot untouched")
	}

	if regionTracker.Status().LastError == "" {
		t.Error("failed fetch must be visible in the status")
	}
}

func TestPreviousPositionCarriedAcrossPolls(t *testing.T) {
	var calls atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Write([]byte(`{"status":"ok","vehicles":[{"vehicleId":7,"lastStopOrder":3,"lat":48.15,"lng":17.1}]}`))
			return
		}

		w.Write([]byte(`{"status":"ok","vehicles":[{"vehicleId":7,"lastStopOrder":3,"lat":48.1501,"lng":17.1002}]}`))
	}))
	defer server.Close()

	regionTracker := NewTracker(testRegion(), feed.NewClient(server.URL, ""), heading.NewSegmentIndex(), nil)

	if err := regionTracker.Reload(context.Background()); err != nil {
		t.Fatalf("first reload: %v", err)
	}
	if err := regionTracker.Reload(context.Background()); err != nil {
		t.Fatalf("second reload: %v", err)
	}

	record := regionTracker.Vehicle("7-3")
	if record == nil {
		t.Fatal("vehicle missing after second poll")
	}
	if !record.HasPreviousPosition {
		t.Fatal("previous position must carry over on a composite id match")
	}
	if record.PreviousLatitude != 48.15 || record.PreviousLongitude != 17.1 {
		t.Errorf("previous position = %v,%v, want first poll's position", record.PreviousLatitude, record.PreviousLongitude)
	}
}
