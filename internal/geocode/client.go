package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// FallbackAddress is shown whenever a coordinate cannot be resolved. Address
// resolution must never block marker creation, so callers substitute this on
// any lookup failure.
const FallbackAddress = "주소를 찾을 수 없습니다"

const reverseCacheTTL = 24 * time.Hour

// Error marks an upstream geocoding failure (non-2xx response).
type Error struct {
	Op     string
	Status int
}

func (e *Error) Error() string {
	return fmt.Sprintf("geocode %s: upstream status %d", e.Op, e.Status)
}

// Result is a forward-geocoded place.
type Result struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	DisplayName string  `json:"display_name"`
}

type Client struct {
	baseURL string
	country string
	httpc   *http.Client
	cache   *redis.Client
}

// NewClient talks to a Nominatim-compatible endpoint. Forward searches are
// scoped to country (ISO code); cache may be nil.
func NewClient(baseURL, country string, cache *redis.Client) *Client {
	return &Client{
		baseURL: baseURL,
		country: country,
		httpc:   &http.Client{Timeout: 10 * time.Second},
		cache:   cache,
	}
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search forward-geocodes a free-text query. A blank query and a
// provider miss both return nil without error.
func (c *Client) Search(ctx context.Context, query string) (*Result, error) {
	if query == "" {
		return nil, nil
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", query)
	q.Set("countrycodes", c.country)
	q.Set("limit", "1")

	var places []nominatimPlace
	if err := c.getJSON(ctx, "search", c.baseURL+"/search?"+q.Encode(), &places); err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode search: bad lat %q", places[0].Lat)
	}
	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode search: bad lon %q", places[0].Lon)
	}
	return &Result{Lat: lat, Lng: lng, DisplayName: places[0].DisplayName}, nil
}

// ReverseGeocode resolves a coordinate to a display address. Errors are
// returned so the caller can degrade to FallbackAddress; a 2xx response with
// no display_name degrades here directly.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	key := reverseCacheKey(lat, lng)
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, key).Result(); err == nil && cached != "" {
			return cached, nil
		}
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("addressdetails", "1")
	q.Set("accept-language", "ko")

	var place nominatimPlace
	if err := c.getJSON(ctx, "reverse", c.baseURL+"/reverse?"+q.Encode(), &place); err != nil {
		return "", err
	}
	if place.DisplayName == "" {
		return FallbackAddress, nil
	}

	if c.cache != nil {
		_ = c.cache.Set(ctx, key, place.DisplayName, reverseCacheTTL).Err()
	}
	return place.DisplayName, nil
}

func (c *Client) getJSON(ctx context.Context, op, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Op: op, Status: resp.StatusCode}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func reverseCacheKey(lat, lng float64) string {
	// 5 decimal places ~ 1m resolution, enough to dedupe repeated clicks
	return fmt.Sprintf("geocode:reverse:%.5f:%.5f", lat, lng)
}
