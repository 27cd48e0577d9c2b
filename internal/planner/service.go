package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Chanjeong/walkman/internal/geocode"
	"github.com/Chanjeong/walkman/internal/mapview"
	"github.com/Chanjeong/walkman/internal/routing"
	"github.com/Chanjeong/walkman/internal/shared/geo"
	"github.com/Chanjeong/walkman/internal/sheet"

	"golang.org/x/sync/errgroup"
)

var (
	ErrPlanFull  = errors.New("최대 5개의 마커만 추가할 수 있습니다")
	ErrEmptyPlan = errors.New("내보낼 마커가 없습니다")
	// ErrStalePass means the marker set changed while a route pass was in
	// flight; the pass result was discarded.
	ErrStalePass = errors.New("route pass superseded")
)

// Geocoder resolves addresses; satisfied by *geocode.Client.
type Geocoder interface {
	Search(ctx context.Context, query string) (*geocode.Result, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// Router fetches walking legs; satisfied by *routing.Client.
type Router interface {
	SegmentDistance(ctx context.Context, start, end routing.Coordinate) (routing.Segment, error)
	SegmentGeometry(ctx context.Context, start, end routing.Coordinate) (*routing.Geometry, error)
}

// Service owns every plan session and drives the map through the injected
// LayerSink. All marker mutations happen under the plan lock; route passes
// run outside it and re-validate their generation before applying results.
type Service struct {
	geocoder Geocoder
	router   Router
	sink     mapview.LayerSink

	mu    sync.Mutex
	plans map[string]*plan

	now func() time.Time
}

func NewService(geocoder Geocoder, router Router, sink mapview.LayerSink) *Service {
	return &Service{
		geocoder: geocoder,
		router:   router,
		sink:     sink,
		plans:    map[string]*plan{},
		now:      time.Now,
	}
}

func (s *Service) plan(session string) *plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[session]
	if !ok {
		p = newPlan()
		s.plans[session] = p
	}
	return p
}

// AddMarker appends a point, resolves its address (degrading to the fallback
// on any geocoding failure) and refreshes the route when two or more markers
// exist. The marker is returned even when the route pass fails.
func (s *Service) AddMarker(ctx context.Context, session string, lat, lng float64) (Marker, error) {
	p := s.plan(session)

	p.mu.Lock()
	if len(p.markers) >= MaxMarkers {
		p.mu.Unlock()
		return Marker{}, ErrPlanFull
	}
	p.nextID++
	slot := markerPalette[(p.nextID-1)%MaxMarkers]
	m := &Marker{
		ID:                 p.nextID,
		Lat:                lat,
		Lng:                lng,
		Address:            SearchingAddress,
		IsSearchingAddress: true,
		Color:              slot.Color,
		BgColor:            slot.BgColor,
		BorderColor:        slot.BorderColor,
	}
	p.markers = append(p.markers, m)
	p.generation++
	count := len(p.markers)
	p.mu.Unlock()

	s.sink.PlaceMarker(session, m.ID, lat, lng, m.Color)

	address, err := s.geocoder.ReverseGeocode(ctx, lat, lng)
	if err != nil || address == "" {
		address = geocode.FallbackAddress
	}
	s.UpdateMarkerInfo(session, m.ID, address, false)

	if count >= 2 {
		// route refresh failure degrades the labels, never the marker
		_ = s.RefreshRoute(ctx, session)
	}

	p.mu.Lock()
	result := *m
	p.mu.Unlock()
	return result, nil
}

// UpdateMarkerInfo merges address fields; no-op when the id is absent.
func (s *Service) UpdateMarkerInfo(session string, id int, address string, searching bool) {
	p := s.plan(session)
	p.mu.Lock()
	defer p.mu.Unlock()
	if i := p.find(id); i >= 0 {
		p.markers[i].Address = address
		p.markers[i].IsSearchingAddress = searching
	}
}

// RemoveMarker deletes by id (no-op when absent) and refreshes or clears the
// route depending on how many markers remain.
func (s *Service) RemoveMarker(ctx context.Context, session string, id int) {
	p := s.plan(session)

	p.mu.Lock()
	i := p.find(id)
	if i < 0 {
		p.mu.Unlock()
		return
	}
	p.markers = append(p.markers[:i], p.markers[i+1:]...)
	p.generation++
	remaining := len(p.markers)
	if remaining < 2 {
		p.summary = nil
		p.distanceLabel = IdleDistanceLabel
		p.timeLabel = IdleTimeLabel
	}
	p.mu.Unlock()

	s.sink.RemoveMarker(session, id)
	if remaining >= 2 {
		_ = s.RefreshRoute(ctx, session)
	} else {
		s.sink.ClearPolylines(session)
	}
}

// ClearAll wipes markers, polylines and the id sequence.
func (s *Service) ClearAll(session string) {
	p := s.plan(session)
	p.mu.Lock()
	p.reset()
	p.mu.Unlock()
	s.sink.Clear(session)
}

// Markers returns the current sequence in order.
func (s *Service) Markers(session string) []Marker {
	p := s.plan(session)
	p.mu.Lock()
	defer p.mu.Unlock()
	markers, _ := p.snapshot()
	return markers
}

// Route returns the current display state.
func (s *Service) Route(session string) RouteState {
	p := s.plan(session)
	p.mu.Lock()
	defer p.mu.Unlock()
	return RouteState{
		DistanceLabel: p.distanceLabel,
		TimeLabel:     p.timeLabel,
		Summary:       p.summary,
	}
}

// Aggregate fetches all adjacent legs concurrently and sums them. Fewer than
// two markers yield a zeroed summary, not an error. The fetch is
// all-or-nothing: any leg failure fails the whole pass.
func (s *Service) Aggregate(ctx context.Context, markers []Marker) (RouteSummary, error) {
	if len(markers) < 2 {
		return RouteSummary{Segments: []SegmentDetail{}}, nil
	}

	segments := make([]SegmentDetail, len(markers)-1)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < len(markers)-1; i++ {
		i := i
		g.Go(func() error {
			start := routing.Coordinate{Lat: markers[i].Lat, Lng: markers[i].Lng}
			end := routing.Coordinate{Lat: markers[i+1].Lat, Lng: markers[i+1].Lng}
			seg, err := s.router.SegmentDistance(gctx, start, end)
			if err != nil {
				return err
			}
			segments[i] = SegmentDetail{
				FromID:      markers[i].ID,
				ToID:        markers[i+1].ID,
				DistanceKm:  seg.DistanceKm,
				DurationMin: seg.DurationMin,
				StraightKm:  geo.HaversineKm(start.Lat, start.Lng, end.Lat, end.Lng),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RouteSummary{}, err
	}

	summary := RouteSummary{Segments: segments}
	for _, seg := range segments {
		summary.TotalDistanceKm += seg.DistanceKm
		summary.TotalTimeMin += seg.DurationMin
	}
	return summary, nil
}

// BuildRouteGeometry fetches all leg geometries concurrently. Legs without a
// resolvable geometry are silently dropped.
func (s *Service) BuildRouteGeometry(ctx context.Context, markers []Marker) ([]RouteDisplay, error) {
	if len(markers) < 2 {
		return nil, nil
	}

	geometries := make([]*routing.Geometry, len(markers)-1)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < len(markers)-1; i++ {
		i := i
		g.Go(func() error {
			start := routing.Coordinate{Lat: markers[i].Lat, Lng: markers[i].Lng}
			end := routing.Coordinate{Lat: markers[i+1].Lat, Lng: markers[i+1].Lng}
			geom, err := s.router.SegmentGeometry(gctx, start, end)
			if err != nil {
				return err
			}
			geometries[i] = geom
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	displays := make([]RouteDisplay, 0, len(geometries))
	for i, geom := range geometries {
		if geom == nil {
			continue
		}
		displays = append(displays, RouteDisplay{
			Geometry:    geom,
			StartMarker: markers[i],
			EndMarker:   markers[i+1],
		})
	}
	return displays, nil
}

// RefreshRoute runs a full distance + geometry pass for the session. The pass
// carries the generation it started from; if the marker set changes while
// requests are in flight the result is discarded and ErrStalePass returned.
func (s *Service) RefreshRoute(ctx context.Context, session string) error {
	p := s.plan(session)

	p.mu.Lock()
	markers, gen := p.snapshot()
	p.distanceLabel = PendingLabel
	p.timeLabel = PendingLabel
	p.mu.Unlock()

	summary, err := s.Aggregate(ctx, markers)

	p.mu.Lock()
	if p.generation != gen {
		p.mu.Unlock()
		return ErrStalePass
	}
	if err != nil || summary.TotalDistanceKm <= 0 {
		p.summary = nil
		p.distanceLabel = FailedLabel
		p.timeLabel = FailedLabel
		p.mu.Unlock()
		if err != nil {
			return err
		}
		return nil
	}
	p.summary = &summary
	p.distanceLabel = fmt.Sprintf("%.2f km", summary.TotalDistanceKm)
	p.timeLabel = sheet.FormatMinutes(summary.TotalTimeMin)
	p.mu.Unlock()

	if err := s.redrawPolylines(ctx, p, session, markers, gen); err != nil {
		if errors.Is(err, ErrStalePass) {
			return err
		}
		// a failed geometry pass fails the whole route display
		p.mu.Lock()
		if p.generation == gen {
			p.summary = nil
			p.distanceLabel = FailedLabel
			p.timeLabel = FailedLabel
		}
		p.mu.Unlock()
		return err
	}
	return nil
}

// redrawPolylines replaces the drawn route with fresh geometry, still guarded
// by the pass generation.
func (s *Service) redrawPolylines(ctx context.Context, p *plan, session string, markers []Marker, gen uint64) error {
	displays, err := s.BuildRouteGeometry(ctx, markers)
	if err != nil {
		return err
	}

	p.mu.Lock()
	stale := p.generation != gen
	p.mu.Unlock()
	if stale {
		return ErrStalePass
	}

	s.sink.ClearPolylines(session)
	for _, d := range displays {
		s.sink.DrawPolyline(session, d.Geometry.Coordinates, d.StartMarker.Color)
	}
	return nil
}

// SearchAddress recenters the view on a forward-geocoded place without adding
// a marker. A provider miss returns nil, nil.
func (s *Service) SearchAddress(ctx context.Context, session, query string) (*geocode.Result, error) {
	result, err := s.geocoder.Search(ctx, query)
	if err != nil || result == nil {
		return nil, err
	}
	s.sink.SetView(session, result.Lat, result.Lng, 15)
	return result, nil
}

// Import replaces the plan with a validated spreadsheet. Validation happened
// entirely in sheet.Import, so prior state is only cleared on success. Rows
// beyond capacity are dropped. The spreadsheet's own cumulative totals drive
// the display; only the geometry pass runs afterwards.
func (s *Service) Import(ctx context.Context, session string, data []byte) (int, error) {
	result, err := sheet.Import(data)
	if err != nil {
		return 0, err
	}

	var distanceLabel, timeLabel string
	if result.TotalDistance != "" {
		distanceLabel = result.TotalDistance + " km"
	}
	if result.TotalTime != "" {
		timeLabel = result.TotalTime
	}
	return s.Restore(ctx, session, result.Markers, distanceLabel, timeLabel)
}

// Restore replaces the plan with the given rows, keeping their stored totals
// as display labels instead of re-aggregating. Saved courses load through
// here as well.
func (s *Service) Restore(ctx context.Context, session string, rows []sheet.Marker, distanceLabel, timeLabel string) (int, error) {
	p := s.plan(session)
	p.mu.Lock()
	p.reset()
	for _, row := range rows {
		if len(p.markers) >= MaxMarkers {
			break
		}
		p.nextID++
		slot := markerPalette[(p.nextID-1)%MaxMarkers]
		p.markers = append(p.markers, &Marker{
			ID:          p.nextID,
			Lat:         row.Lat,
			Lng:         row.Lng,
			Address:     row.Address,
			Color:       slot.Color,
			BgColor:     slot.BgColor,
			BorderColor: slot.BorderColor,
		})
	}
	if distanceLabel != "" {
		p.distanceLabel = distanceLabel
	}
	if timeLabel != "" {
		p.timeLabel = timeLabel
	}
	markers, gen := p.snapshot()
	count := len(markers)
	p.mu.Unlock()

	s.sink.Clear(session)
	for _, m := range markers {
		s.sink.PlaceMarker(session, m.ID, m.Lat, m.Lng, m.Color)
	}

	if count > 1 {
		if err := s.redrawPolylines(ctx, p, session, markers, gen); err != nil && !errors.Is(err, ErrStalePass) {
			return count, err
		}
	}
	return count, nil
}

// Export runs a fresh aggregation and renders the workbook. The file name
// embeds today's date.
func (s *Service) Export(ctx context.Context, session string) ([]byte, string, error) {
	markers := s.Markers(session)
	if len(markers) == 0 {
		return nil, "", ErrEmptyPlan
	}

	summary, err := s.Aggregate(ctx, markers)
	if err != nil {
		return nil, "", err
	}

	rows := make([]sheet.Marker, len(markers))
	for i, m := range markers {
		rows[i] = sheet.Marker{Order: float64(i + 1), Lat: m.Lat, Lng: m.Lng, Address: m.Address}
	}
	segments := make([]sheet.Segment, len(summary.Segments))
	for i, seg := range summary.Segments {
		segments[i] = sheet.Segment{DistanceKm: seg.DistanceKm, DurationMin: seg.DurationMin}
	}

	data, err := sheet.Export(rows, segments)
	if err != nil {
		return nil, "", err
	}
	return data, sheet.FileName(s.now()), nil
}
