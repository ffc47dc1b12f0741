package tracker

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "transitlive.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
feed:
  vehiclesEndpoint: https://feed.example.net/vehicles
  tripEndpoint: https://feed.example.net/trips
routing:
  endpoint: https://router.example.net/route/v1/driving
  maxWaypointsPerRequest: 60
  cacheExpiry: 6h
api:
  listenAddress: ":9090"
regions:
  - name: bratislava
    latitude: 48.15
    longitude: 17.11
    radiusMeters: 20000
    pollInterval: 10s
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if config.Feed.VehiclesEndpoint != "https://feed.example.net/vehicles" {
		t.Errorf("vehicles endpoint %q", config.Feed.VehiclesEndpoint)
	}
	if config.Routing.MaxWaypointsPerRequest != 60 {
		t.Errorf("max waypoints %d", config.Routing.MaxWaypointsPerRequest)
	}
	if time.Duration(config.Routing.CacheExpiry) != 6*time.Hour {
		t.Errorf("cache expiry %v", time.Duration(config.Routing.CacheExpiry))
	}
	if config.API.ListenAddress != ":9090" {
		t.Errorf("listen address %q", config.API.ListenAddress)
	}

	region := config.Regions[0]
	if region.Name != "bratislava" || region.RadiusMeters != 20000 {
		t.Errorf("unexpected region %+v", region)
	}
	if time.Duration(region.PollInterval) != 10*time.Second {
		t.Errorf("poll interval %v", time.Duration(region.PollInterval))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
feed:
  vehiclesEndpoint: https://feed.example.net/vehicles
regions:
  - name: kosice
    latitude: 48.72
    longitude: 21.25
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if config.API.ListenAddress != ":8080" {
		t.Errorf("default listen address %q", config.API.ListenAddress)
	}
	if config.Routing.MaxWaypointsPerRequest != 80 {
		t.Errorf("default max waypoints %d", config.Routing.MaxWaypointsPerRequest)
	}

	region := config.Regions[0]
	if region.RadiusMeters != 10000 {
		t.Errorf("default radius %d", region.RadiusMeters)
	}
	if time.Duration(region.PollInterval) != 15*time.Second {
		t.Errorf("default poll interval %v", time.Duration(region.PollInterval))
	}
}

func TestLoadConfigRejectsIncomplete(t *testing.T) {
	missingFeed := writeConfig(t, `
regions:
  - name: kosice
    latitude: 48.72
    longitude: 21.25
`)
	if _, err := LoadConfig(missingFeed); err == nil {
		t.Error("config without a feed endpoint must be rejected")
	}

	missingRegions := writeConfig(t, `
feed:
  vehiclesEndpoint: https://feed.example.net/vehicles
`)
	if _, err := LoadConfig(missingRegions); err == nil {
		t.Error("config without regions must be rejected")
	}

	unnamedRegion := writeConfig(t, `
feed:
  vehiclesEndpoint: https://feed.example.net/vehicles
regions:
  - latitude: 48.72
    longitude: 21.25
`)
	if _, err := LoadConfig(unnamedRegion); err == nil {
		t.Error("region without a name must be rejected")
	}
}
