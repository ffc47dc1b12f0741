package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/transitlive/transitlive/pkg/transit"
)

const defaultRequestTimeout = 15 * time.Second

// regionSelector is the feed's catch-all region parameter. The upstream API
// scopes results to named regions; this value asks for everything inside the
// radius regardless of region.
const regionSelector = "all"

// Client talks to the live position feed and the trip detail endpoint.
type Client struct {
	VehiclesEndpoint string
	TripEndpoint     string

	HTTPClient *http.Client
}

func NewClient(vehiclesEndpoint string, tripEndpoint string) *Client {
	return &Client{
		VehiclesEndpoint: vehiclesEndpoint,
		TripEndpoint:     tripEndpoint,
		HTTPClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
	}
}

type vehiclesEnvelope struct {
	Status   string       `json:"status"`
	Vehicles []RawVehicle `json:"vehicles"`
}

// Vehicles fetches the raw vehicle records around a center point. The feed
// usually wraps records in a status envelope but has been seen returning a
// bare array, so both shapes decode.
func (c *Client) Vehicles(ctx context.Context, latitude float64, longitude float64, radiusMeters int) ([]RawVehicle, error) {
	requestURL := fmt.Sprintf("%s?%s", c.VehiclesEndpoint, url.Values{
		"lat":    []string{strconv.FormatFloat(latitude, 'f', -1, 64)},
		"lng":    []string{strconv.FormatFloat(longitude, 'f', -1, 64)},
		"radius": []string{strconv.Itoa(radiusMeters)},
		"region": []string{regionSelector},
	}.Encode())

	body, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var envelope vehiclesEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Status != "" {
		if envelope.Status != "ok" {
			return nil, fmt.Errorf("feed returned status %q", envelope.Status)
		}

		return envelope.Vehicles, nil
	}

	var vehicles []RawVehicle
	if err := json.Unmarshal(body, &vehicles); err != nil {
		return nil, fmt.Errorf("unexpected feed payload: %w", err)
	}

	return vehicles, nil
}

// TripDetail fetches the ordered stop list for a trip. Different feed versions
// wrap the stop array under different keys (or not at all).
func (c *Client) TripDetail(ctx context.Context, tripID string) ([]transit.TripStop, error) {
	requestURL := fmt.Sprintf("%s/%s", c.TripEndpoint, url.PathEscape(tripID))

	body, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	rawStops, err := decodeTripStops(body)
	if err != nil {
		return nil, err
	}

	stops := make([]transit.TripStop, 0, len(rawStops))
	for _, rawStop := range rawStops {
		stops = append(stops, transit.TripStop{
			Order:            rawStop.Order,
			StopID:           rawStop.StopID,
			Name:             rawStop.Name,
			Latitude:         rawStop.Latitude,
			Longitude:        rawStop.Longitude,
			Platform:         rawStop.Platform,
			PlannedDeparture: rawStop.PlannedDeparture,
			Crossing:         rawStop.Crossing,
		})
	}

	return stops, nil
}

func decodeTripStops(body []byte) ([]RawTripStop, error) {
	var bare []RawTripStop
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("unexpected trip detail payload: %w", err)
	}

	for _, key := range []string{"stops", "tripStops", "data"} {
		rawList, exists := wrapped[key]
		if !exists {
			continue
		}

		var stops []RawTripStop
		if err := json.Unmarshal(rawList, &stops); err != nil {
			return nil, fmt.Errorf("unexpected trip detail payload under %q: %w", key, err)
		}

		return stops, nil
	}

	return nil, fmt.Errorf("trip detail payload contains no stop list")
}

func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned HTTP %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
