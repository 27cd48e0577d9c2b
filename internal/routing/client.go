package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Error marks an upstream routing failure (non-2xx response).
type Error struct {
	Status int
}

func (e *Error) Error() string {
	return fmt.Sprintf("routing: upstream status %d", e.Status)
}

// Coordinate is a lat/lng pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Segment summarizes one walking leg between adjacent markers.
type Segment struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
}

// Geometry is the GeoJSON line of a leg, [lng,lat] pairs in path order.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient talks to an OSRM instance with a foot profile.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

type osrmResponse struct {
	Routes []struct {
		Distance float64   `json:"distance"`
		Duration float64   `json:"duration"`
		Geometry *Geometry `json:"geometry"`
	} `json:"routes"`
}

// SegmentDistance returns walking distance/duration for one leg. OSRM reports
// meters and seconds; the result is km and minutes. No resolvable route
// yields zero values, not an error.
func (c *Client) SegmentDistance(ctx context.Context, start, end Coordinate) (Segment, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false&alternatives=false&steps=false",
		c.baseURL, start.Lng, start.Lat, end.Lng, end.Lat)

	var decoded osrmResponse
	if err := c.getJSON(ctx, url, &decoded); err != nil {
		return Segment{}, err
	}
	if len(decoded.Routes) == 0 {
		return Segment{}, nil
	}
	return Segment{
		DistanceKm:  decoded.Routes[0].Distance / 1000,
		DurationMin: decoded.Routes[0].Duration / 60,
	}, nil
}

// SegmentGeometry returns the full path geometry for one leg, or nil when the
// provider has no route.
func (c *Client) SegmentGeometry(ctx context.Context, start, end Coordinate) (*Geometry, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=geojson",
		c.baseURL, start.Lng, start.Lat, end.Lng, end.Lat)

	var decoded osrmResponse
	if err := c.getJSON(ctx, url, &decoded); err != nil {
		return nil, err
	}
	if len(decoded.Routes) == 0 {
		return nil, nil
	}
	return decoded.Routes[0].Geometry, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
