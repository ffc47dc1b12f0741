package tracker

import (
	"context"
	"math"
	"os/signal"
	"syscall"
	"time"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/transitlive/transitlive/pkg/api"
	"github.com/transitlive/transitlive/pkg/archive"
	"github.com/transitlive/transitlive/pkg/database"
	"github.com/transitlive/transitlive/pkg/feed"
	"github.com/transitlive/transitlive/pkg/heading"
	"github.com/transitlive/transitlive/pkg/redis_client"
	"github.com/transitlive/transitlive/pkg/routing"
	"github.com/transitlive/transitlive/pkg/transit"
	"github.com/transitlive/transitlive/pkg/util"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "tracker",
		Usage: "Track live vehicle positions and estimate headings",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the tracking engine and its API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "config",
						Value: "transitlive.yaml",
						Usage: "path to the engine config file",
					},
				},
				Action: func(c *cli.Context) error {
					config, err := LoadConfig(c.String("config"))
					if err != nil {
						return err
					}

					manager, err := BuildManager(config)
					if err != nil {
						return err
					}

					ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
					defer stop()

					go api.SetupServer(config.API.ListenAddress, manager)

					manager.Run(ctx)

					return nil
				},
			},
			{
				Name:  "test-heading",
				Usage: "run the heading estimator over synthetic data and dump its state",
				Action: func(c *cli.Context) error {
					runHeadingTest()

					return nil
				},
			},
		},
	}
}

// BuildManager assembles the engine from its config: one tracker per region,
// the shared trip selector and the optional mongo archiver and redis path
// cache, both enabled purely by their environment variables being set.
func BuildManager(config Config) (*Manager, error) {
	env := util.GetEnvironmentVariables()

	feedClient := feed.NewClient(config.Feed.VehiclesEndpoint, config.Feed.TripEndpoint)

	var archiver *archive.Archiver
	if env["TRANSITLIVE_MONGODB_CONNECTION"] != "" {
		if err := database.Connect(); err != nil {
			return nil, err
		}

		archiver = archive.NewArchiver()
		log.Info().Msg("Vehicle position archiving enabled")
	}

	var pathCache *routing.PathCache
	if env["TRANSITLIVE_REDIS_ADDRESS"] != "" {
		if err := redis_client.Connect(); err != nil {
			return nil, err
		}

		pathCache = routing.NewPathCache(redis_client.Client, time.Duration(config.Routing.CacheExpiry))
		log.Info().Msg("Routed path caching enabled")
	}

	manager := &Manager{}

	for _, region := range config.Regions {
		segments, err := regionSegments(config, region)
		if err != nil {
			return nil, err
		}

		manager.Trackers = append(manager.Trackers, NewTracker(region, feedClient, segments, archiver))
	}

	if config.Routing.Endpoint != "" {
		stitcher := routing.NewStitcher(routing.NewClient(config.Routing.Endpoint))
		stitcher.MaxWaypointsPerRequest = config.Routing.MaxWaypointsPerRequest

		manager.Trips = NewTripSelector(feedClient, stitcher, pathCache)
	}

	return manager, nil
}

// regionSegments loads the road network into a spatial index anchored at the
// region's center. Without a road network the estimator still works, it just
// relies on movement headings alone.
func regionSegments(config Config, region RegionConfig) (heading.SegmentSource, error) {
	if config.RoadNetworkPath == "" {
		return heading.NewSegmentIndex(), nil
	}

	projector := heading.NewProjector(region.Latitude, region.Longitude)

	index, err := heading.LoadRoadNetwork(config.RoadNetworkPath, projector)
	if err != nil {
		return nil, err
	}

	return index, nil
}

// runHeadingTest feeds the estimator a hand-built road and two snapshots of a
// vehicle travelling along it, then dumps the resulting state.
func runHeadingTest() {
	projector := heading.NewProjector(48.15, 17.1)

	index := heading.NewSegmentIndex()
	index.AddLine("test-road", []heading.Point{
		projector.Project(48.15, 17.1),
		projector.Project(48.15, 17.11),
	})

	estimator := heading.NewEstimator(heading.GetConfig(), projector, index)

	first := snapshotAt(48.15001, 17.1001)
	estimator.Update(first)

	second := snapshotAt(48.15001, 17.1005)
	estimator.Update(second)

	pretty.Println("targets:", estimator.Targets())
	pretty.Println("state:", estimator.StateFor(1))

	smoother := heading.NewSmoother()
	current := 0.0
	target := estimator.Targets()["1-1"]

	for frame := 0; frame < 5; frame++ {
		current = smoother.Step(current, target, 1.0/60)
		pretty.Printf("frame %d: %.2f deg\n", frame, current*180/math.Pi)
	}
}

func snapshotAt(latitude float64, longitude float64) map[string]*transit.VehicleRecord {
	return map[string]*transit.VehicleRecord{
		"1-1": {
			CompositeID:   "1-1",
			PhysicalID:    1,
			LastStopOrder: 1,
			Latitude:      latitude,
			Longitude:     longitude,
			Line:          "9",
			Type:          transit.VehicleTypeTram,
			LastSeen:      time.Now(),
		},
	}
}
