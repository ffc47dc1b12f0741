package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVehiclesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("region") != "all" {
			t.Errorf("expected catch-all region selector, got %q", query.Get("region"))
		}
		if query.Get("lat") == "" || query.Get("lng") == "" || query.Get("radius") == "" {
			t.Error("expected lat/lng/radius query parameters")
		}

		w.Write([]byte(`{"status":"ok","vehicles":[{"vehicleId":7,"lastStopOrder":3,"lat":48.15,"lng":17.11,"line":"4"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL)

	vehicles, err := client.Vehicles(context.Background(), 48.148, 17.107, 10000)
	if err != nil {
		t.Fatalf("Vehicles: %v", err)
	}

	if len(vehicles) != 1 || vehicles[0].VehicleID != 7 || vehicles[0].Line != "4" {
		t.Errorf("unexpected vehicles: %+v", vehicles)
	}
}

func TestVehiclesBareArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"vehicleId":9,"lastStopOrder":1}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL)

	vehicles, err := client.Vehicles(context.Background(), 48.148, 17.107, 10000)
	if err != nil {
		t.Fatalf("Vehicles: %v", err)
	}

	if len(vehicles) != 1 || vehicles[0].VehicleID != 9 {
		t.Errorf("unexpected vehicles: %+v", vehicles)
	}
}

func TestVehiclesBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","vehicles":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL)

	if _, err := client.Vehicles(context.Background(), 48.148, 17.107, 10000); err == nil {
		t.Error("expected error for non-ok feed status")
	}
}

func TestVehiclesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL)

	if _, err := client.Vehicles(context.Background(), 48.148, 17.107, 10000); err == nil {
		t.Error("expected error for HTTP 502")
	}
}

func TestTripDetailShapes(t *testing.T) {
	payloads := map[string]string{
		"bare":      `[{"order":1,"stopId":"a","lat":48.1,"lng":17.1}]`,
		"stops":     `{"stops":[{"order":1,"stopId":"a","lat":48.1,"lng":17.1}]}`,
		"tripStops": `{"tripStops":[{"order":1,"stopId":"a","lat":48.1,"lng":17.1}]}`,
		"data":      `{"data":[{"order":1,"stopId":"a","lat":48.1,"lng":17.1}]}`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(payload))
			}))
			defer server.Close()

			client := NewClient(server.URL, server.URL)

			stops, err := client.TripDetail(context.Background(), "trip-1")
			if err != nil {
				t.Fatalf("TripDetail: %v", err)
			}

			if len(stops) != 1 || stops[0].StopID != "a" || stops[0].Order != 1 {
				t.Errorf("unexpected stops: %+v", stops)
			}
		})
	}
}

func TestTripDetailNoStopList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"somethingElse":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL)

	if _, err := client.TripDetail(context.Background(), "trip-1"); err == nil {
		t.Error("expected error when no stop list is present")
	}
}
