package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultRequestTimeout = 30 * time.Second

// RouteSource produces road-following geometry through an ordered list of
// waypoints. Coordinates are ordered longitude then latitude throughout.
type RouteSource interface {
	Route(ctx context.Context, waypoints [][]float64) ([][]float64, error)
}

// Client calls an OSRM compatible routing service.
type Client struct {
	// Endpoint up to and including the profile, e.g.
	// https://router.example.net/route/v1/driving
	Endpoint string

	HTTPClient *http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{
		Endpoint: strings.TrimSuffix(endpoint, "/"),
		HTTPClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
	}
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

func (c *Client) Route(ctx context.Context, waypoints [][]float64) ([][]float64, error) {
	pairs := make([]string, 0, len(waypoints))
	for _, waypoint := range waypoints {
		pairs = append(pairs,
			strconv.FormatFloat(waypoint[0], 'f', -1, 64)+","+strconv.FormatFloat(waypoint[1], 'f', -1, 64))
	}

	requestURL := fmt.Sprintf("%s/%s?overview=full&geometries=geojson", c.Endpoint, strings.Join(pairs, ";"))

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
		return nil, fmt.Errorf("routing service returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var response routeResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("unexpected routing payload: %w", err)
	}

	if response.Code != "Ok" {
		return nil, fmt.Errorf("routing service returned code %q", response.Code)
	}

	if len(response.Routes) == 0 || len(response.Routes[0].Geometry.Coordinates) == 0 {
		return nil, fmt.Errorf("routing service returned no geometry")
	}

	return response.Routes[0].Geometry.Coordinates, nil
}
