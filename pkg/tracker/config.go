package tracker

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so config files can say "15s" or "12h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}

	*d = Duration(parsed)

	return nil
}

type RegionConfig struct {
	Name         string   `yaml:"name"`
	Latitude     float64  `yaml:"latitude"`
	Longitude    float64  `yaml:"longitude"`
	RadiusMeters int      `yaml:"radiusMeters"`
	PollInterval Duration `yaml:"pollInterval"`
}

type FeedConfig struct {
	VehiclesEndpoint string `yaml:"vehiclesEndpoint"`
	TripEndpoint     string `yaml:"tripEndpoint"`
}

type RoutingConfig struct {
	Endpoint               string   `yaml:"endpoint"`
	MaxWaypointsPerRequest int      `yaml:"maxWaypointsPerRequest"`
	CacheExpiry            Duration `yaml:"cacheExpiry"`
}

type APIConfig struct {
	ListenAddress string `yaml:"listenAddress"`
}

type Config struct {
	Feed    FeedConfig    `yaml:"feed"`
	Routing RoutingConfig `yaml:"routing"`
	API     APIConfig     `yaml:"api"`

	// RoadNetworkPath points at a GeoJSON file of road geometry for heading
	// estimation. Empty means no road snapping, headings come from movement.
	RoadNetworkPath string `yaml:"roadNetworkPath"`

	Regions []RegionConfig `yaml:"regions"`
}

func DefaultConfig() Config {
	return Config{
		Routing: RoutingConfig{
			MaxWaypointsPerRequest: 80,
			CacheExpiry:            Duration(12 * time.Hour),
		},
		API: APIConfig{
			ListenAddress: ":8080",
		},
	}
}

// LoadConfig reads the engine config file, applying defaults for anything the
// file leaves out.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	contents, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	if err := yaml.Unmarshal(contents, &config); err != nil {
		return config, fmt.Errorf("parse config %s: %w", path, err)
	}

	if config.Feed.VehiclesEndpoint == "" {
		return config, fmt.Errorf("config %s: feed.vehiclesEndpoint is required", path)
	}

	if len(config.Regions) == 0 {
		return config, fmt.Errorf("config %s: at least one region is required", path)
	}

	for i := range config.Regions {
		region := &config.Regions[i]

		if region.Name == "" {
			return config, fmt.Errorf("config %s: region %d has no name", path, i)
		}
		if region.RadiusMeters <= 0 {
			region.RadiusMeters = 10000
		}
		if region.PollInterval <= 0 {
			region.PollInterval = Duration(15 * time.Second)
		}
	}

	if config.Routing.MaxWaypointsPerRequest <= 0 {
		config.Routing.MaxWaypointsPerRequest = 80
	}

	return config, nil
}
