package planner

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Chanjeong/walkman/internal/routing"
	"github.com/Chanjeong/walkman/internal/sheet"

	"github.com/gofiber/fiber/v2"
)

func testApp(svc *Service) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app.Group("/plan"), svc, func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-1")
		return c.Next()
	})
	return app
}

func TestMarkerHandlers(t *testing.T) {
	router := &fakeRouter{
		segment:  routing.Segment{DistanceKm: 1.2, DurationMin: 15},
		geometry: &routing.Geometry{Type: "LineString", Coordinates: [][]float64{{127.1, 37.2}}},
	}
	svc, _ := newTestService(&fakeGeocoder{reverseAddr: "경기도 용인시"}, router)
	app := testApp(svc)

	body, _ := json.Marshal(fiber.Map{"lat": 37.2067, "lng": 127.1051})
	req := httptest.NewRequest(http.MethodPost, "/plan/markers", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("create marker: %v status %d", err, resp.StatusCode)
	}

	var created struct {
		Marker Marker     `json:"marker"`
		Route  RouteState `json:"route"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Marker.ID != 1 || created.Marker.Address != "경기도 용인시" {
		t.Fatalf("unexpected marker: %+v", created.Marker)
	}

	req = httptest.NewRequest(http.MethodGet, "/plan/markers", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("list markers: %v", err)
	}

	req = httptest.NewRequest(http.MethodDelete, "/plan/markers/1", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete marker: %v status %d", err, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodDelete, "/plan/markers", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusNoContent {
		t.Fatalf("clear markers: %v status %d", err, resp.StatusCode)
	}
}

func TestMarkerHandlerBadCoordinates(t *testing.T) {
	svc, _ := newTestService(&fakeGeocoder{}, &fakeRouter{})
	app := testApp(svc)

	body, _ := json.Marshal(fiber.Map{"lat": 91.0, "lng": 127.1})
	req := httptest.NewRequest(http.MethodPost, "/plan/markers", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for lat 91, got %d", resp.StatusCode)
	}
}

func TestMarkerHandlerCapacityConflict(t *testing.T) {
	svc, _ := newTestService(&fakeGeocoder{reverseAddr: "주소"}, &fakeRouter{segment: routing.Segment{DistanceKm: 1, DurationMin: 10}})
	app := testApp(svc)

	for i := 0; i <= MaxMarkers; i++ {
		body, _ := json.Marshal(fiber.Map{"lat": 37.2 + float64(i)*0.001, "lng": 127.1})
		req := httptest.NewRequest(http.MethodPost, "/plan/markers", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if i < MaxMarkers && resp.StatusCode != http.StatusCreated {
			t.Fatalf("marker %d should be created, got %d", i+1, resp.StatusCode)
		}
		if i == MaxMarkers && resp.StatusCode != http.StatusConflict {
			t.Fatalf("expected 409 past capacity, got %d", resp.StatusCode)
		}
	}
}

func TestRouteHandler(t *testing.T) {
	svc, _ := newTestService(&fakeGeocoder{}, &fakeRouter{})
	app := testApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/plan/route", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("route: %v", err)
	}

	var state RouteState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.DistanceLabel != IdleDistanceLabel || state.TimeLabel != IdleTimeLabel {
		t.Fatalf("expected idle labels: %+v", state)
	}
}

func TestSearchHandler(t *testing.T) {
	svc, _ := newTestService(&fakeGeocoder{}, &fakeRouter{})
	app := testApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/plan/search", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without query, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/plan/search?q=nowhere", nil)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on miss, got %d", resp.StatusCode)
	}
}

func multipartUpload(t *testing.T, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "걷기경로.xlsx")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestImportHandler(t *testing.T) {
	router := &fakeRouter{
		geometry: &routing.Geometry{Type: "LineString", Coordinates: [][]float64{{127.1, 37.2}}},
	}
	svc, _ := newTestService(&fakeGeocoder{}, router)
	app := testApp(svc)

	data, err := sheet.Export(
		[]sheet.Marker{
			{Lat: 37.20, Lng: 127.10, Address: "A"},
			{Lat: 37.21, Lng: 127.11, Address: "B"},
		},
		[]sheet.Segment{{DistanceKm: 2, DurationMin: 30}},
	)
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}

	buf, contentType := multipartUpload(t, data)
	req := httptest.NewRequest(http.MethodPost, "/plan/import", buf)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("import: %v status %d", err, resp.StatusCode)
	}

	var result struct {
		Imported int `json:"imported"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Imported != 2 {
		t.Fatalf("expected 2 imported, got %d", result.Imported)
	}
}

func TestImportHandlerBadWorkbook(t *testing.T) {
	svc, _ := newTestService(&fakeGeocoder{}, &fakeRouter{})
	app := testApp(svc)

	buf, contentType := multipartUpload(t, []byte("garbage"))
	req := httptest.NewRequest(http.MethodPost, "/plan/import", buf)
	req.Header.Set("Content-Type", contentType)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodPost, "/plan/import", strings.NewReader("no file"))
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without file, got %d", resp.StatusCode)
	}
}

func TestExportHandler(t *testing.T) {
	router := &fakeRouter{segment: routing.Segment{DistanceKm: 1, DurationMin: 10}}
	svc, _ := newTestService(&fakeGeocoder{reverseAddr: "주소"}, router)
	app := testApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/plan/export", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty plan, got %d", resp.StatusCode)
	}

	body, _ := json.Marshal(fiber.Map{"lat": 37.2, "lng": 127.1})
	req = httptest.NewRequest(http.MethodPost, "/plan/markers", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if _, err := app.Test(req); err != nil {
		t.Fatalf("seed marker: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/plan/export", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("export: %v status %d", err, resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get(fiber.HeaderContentDisposition), "걷기경로_") {
		t.Fatalf("expected dated attachment name")
	}
	payload, _ := io.ReadAll(resp.Body)
	if len(payload) == 0 {
		t.Fatalf("expected workbook bytes")
	}
}
