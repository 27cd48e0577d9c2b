package routing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSegmentDistance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/route/v1/driving/") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("overview") != "false" {
			t.Fatalf("summary request should not ask for geometry")
		}
		_, _ = w.Write([]byte(`{"routes":[{"distance":1500,"duration":1200}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	seg, err := c.SegmentDistance(context.Background(),
		Coordinate{Lat: 37.2067, Lng: 127.1051},
		Coordinate{Lat: 37.2100, Lng: 127.1100})
	if err != nil {
		t.Fatalf("segment distance: %v", err)
	}
	if seg.DistanceKm != 1.5 {
		t.Fatalf("expected 1.5 km, got %v", seg.DistanceKm)
	}
	if seg.DurationMin != 20 {
		t.Fatalf("expected 20 min, got %v", seg.DurationMin)
	}
}

func TestSegmentDistanceNoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"routes":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	seg, err := c.SegmentDistance(context.Background(), Coordinate{}, Coordinate{})
	if err != nil {
		t.Fatalf("segment distance: %v", err)
	}
	if seg.DistanceKm != 0 || seg.DurationMin != 0 {
		t.Fatalf("expected zero segment, got %+v", seg)
	}
}

func TestSegmentDistanceUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.SegmentDistance(context.Background(), Coordinate{}, Coordinate{})
	var routeErr *Error
	if !errors.As(err, &routeErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
}

func TestSegmentGeometry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("overview") != "full" {
			t.Fatalf("geometry request must ask for full overview")
		}
		if r.URL.Query().Get("geometries") != "geojson" {
			t.Fatalf("geometry request must ask for geojson")
		}
		_, _ = w.Write([]byte(`{"routes":[{"distance":100,"duration":80,"geometry":{"type":"LineString","coordinates":[[127.1051,37.2067],[127.1100,37.2100]]}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	geom, err := c.SegmentGeometry(context.Background(),
		Coordinate{Lat: 37.2067, Lng: 127.1051},
		Coordinate{Lat: 37.2100, Lng: 127.1100})
	if err != nil {
		t.Fatalf("segment geometry: %v", err)
	}
	if geom == nil || len(geom.Coordinates) != 2 {
		t.Fatalf("unexpected geometry: %+v", geom)
	}
	// coordinates come back [lng,lat]
	if geom.Coordinates[0][0] != 127.1051 {
		t.Fatalf("expected lng first, got %v", geom.Coordinates[0])
	}
}

func TestSegmentGeometryNoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"routes":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	geom, err := c.SegmentGeometry(context.Background(), Coordinate{}, Coordinate{})
	if err != nil || geom != nil {
		t.Fatalf("expected nil geometry without error, got %+v, %v", geom, err)
	}
}
