package routing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientRoute(t *testing.T) {
	var requestedPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path

		if r.URL.Query().Get("geometries") != "geojson" {
			t.Errorf("expected geojson geometries, got %q", r.URL.Query().Get("geometries"))
		}

		w.Write([]byte(`{"code":"Ok","routes":[{"geometry":{"coordinates":[[17.1,48.1],[17.15,48.12],[17.2,48.2]]}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL + "/route/v1/driving")

	geometry, err := client.Route(context.Background(), [][]float64{{17.1, 48.1}, {17.2, 48.2}})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}

	if !strings.HasSuffix(requestedPath, "/route/v1/driving/17.1,48.1;17.2,48.2") {
		t.Errorf("unexpected request path %q - waypoints must be semicolon-joined lng,lat", requestedPath)
	}

	if len(geometry) != 3 || geometry[1][0] != 17.15 {
		t.Errorf("unexpected geometry %v", geometry)
	}
}

func TestClientNoRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"NoRoute","routes":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	if _, err := client.Route(context.Background(), [][]float64{{17.1, 48.1}, {17.2, 48.2}}); err == nil {
		t.Error("expected error for NoRoute code")
	}
}

func TestClientMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>definitely not json</html>`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	if _, err := client.Route(context.Background(), [][]float64{{17.1, 48.1}, {17.2, 48.2}}); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestClientHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	if _, err := client.Route(context.Background(), [][]float64{{17.1, 48.1}, {17.2, 48.2}}); err == nil {
		t.Error("expected error for HTTP 500")
	}
}

func TestClientEmptyGeometry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"Ok","routes":[{"geometry":{"coordinates":[]}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	if _, err := client.Route(context.Background(), [][]float64{{17.1, 48.1}, {17.2, 48.2}}); err == nil {
		t.Error("expected error for empty geometry")
	}
}
