package mapview

// LayerSink is the rendering side of the planner: every mutation of the
// marker/route state turns into one of these draw calls. Implementations hold
// no authoritative state; markers are referenced only by id.
type LayerSink interface {
	PlaceMarker(session string, id int, lat, lng float64, color string)
	RemoveMarker(session string, id int)
	Clear(session string)
	// DrawPolyline receives [lng,lat] pairs as returned by the routing
	// service; the client swaps the axes when drawing.
	DrawPolyline(session string, coordinates [][]float64, color string)
	ClearPolylines(session string)
	SetView(session string, lat, lng float64, zoom int)
}

// Polylines are drawn with a fixed stroke.
const (
	PolylineWeight  = 4
	PolylineOpacity = 0.8
)
