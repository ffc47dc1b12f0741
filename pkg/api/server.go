package api

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"golang.org/x/exp/slices"

	"github.com/transitlive/transitlive/pkg/poller"
	"github.com/transitlive/transitlive/pkg/transit"
)

// Engine is the read and control surface the API exposes. The tracker manager
// implements it.
type Engine interface {
	Vehicles() map[string]*transit.VehicleRecord
	Vehicle(compositeID string) *transit.VehicleRecord
	Targets() map[string]float64
	Statuses() map[string]poller.Status
	ReloadAll(ctx context.Context) error
	SelectTrip(ctx context.Context, tripID string) (*transit.RoutedPath, error)
}

func SetupServer(listen string, engine Engine) error {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/engine")

	group.Get("/vehicles", listVehicles(engine))
	group.Get("/vehicles/:id", getVehicle(engine))
	group.Get("/status", getStatus(engine))
	group.Post("/reload", postReload(engine))
	group.Get("/trips/:id/path", getTripPath(engine))

	return webApp.Listen(listen)
}

type vehicleEntry struct {
	Vehicle *transit.VehicleRecord `json:"vehicle" groups:"basic"`

	// Heading is the estimator's target facing angle in radians, measured
	// counterclockwise from east.
	Heading float64 `json:"heading" groups:"basic"`
}

func marshalGroups(c *fiber.Ctx, value interface{}) error {
	groups := []string{"basic"}
	if c.Query("detailed") == "true" {
		groups = append(groups, "detailed")
	}

	reduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: groups,
	}, value)

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sheriff could not reduce response",
		})
	}

	return c.JSON(reduced)
}

func listVehicles(engine Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		vehicles := engine.Vehicles()
		targets := engine.Targets()

		entries := make([]vehicleEntry, 0, len(vehicles))
		for compositeID, record := range vehicles {
			entries = append(entries, vehicleEntry{
				Vehicle: record,
				Heading: targets[compositeID],
			})
		}

		slices.SortFunc(entries, func(a, b vehicleEntry) int {
			return strings.Compare(a.Vehicle.CompositeID, b.Vehicle.CompositeID)
		})

		return marshalGroups(c, entries)
	}
}

func getVehicle(engine Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		compositeID := c.Params("id")

		record := engine.Vehicle(compositeID)
		if record == nil {
			c.SendStatus(fiber.StatusNotFound)
			return c.JSON(fiber.Map{
				"error": "Could not find a vehicle with the given id",
			})
		}

		return marshalGroups(c, vehicleEntry{
			Vehicle: record,
			Heading: engine.Targets()[compositeID],
		})
	}
}

func getStatus(engine Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"regions": engine.Statuses(),
		})
	}
}

func postReload(engine Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := engine.ReloadAll(c.Context()); err != nil {
			c.SendStatus(fiber.StatusBadGateway)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"status": "ok",
		})
	}
}

func getTripPath(engine Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path, err := engine.SelectTrip(c.Context(), c.Params("id"))
		if err != nil {
			c.SendStatus(fiber.StatusBadGateway)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		if path == nil {
			c.SendStatus(fiber.StatusNotFound)
			return c.JSON(fiber.Map{
				"error": "Trip has no routable path",
			})
		}

		return c.JSON(path)
	}
}
