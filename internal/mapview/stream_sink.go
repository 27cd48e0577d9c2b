package mapview

import (
	"encoding/json"

	"github.com/Chanjeong/walkman/internal/stream"
)

// StreamSink broadcasts layer operations as JSON over the plan's websocket
// session so the browser applies them to its map verbatim.
type StreamSink struct {
	hub *stream.Hub
}

func NewStreamSink(hub *stream.Hub) *StreamSink {
	return &StreamSink{hub: hub}
}

type layerOp struct {
	Op          string      `json:"op"`
	ID          int         `json:"id,omitempty"`
	Lat         float64     `json:"lat,omitempty"`
	Lng         float64     `json:"lng,omitempty"`
	Zoom        int         `json:"zoom,omitempty"`
	Color       string      `json:"color,omitempty"`
	Weight      int         `json:"weight,omitempty"`
	Opacity     float64     `json:"opacity,omitempty"`
	Coordinates [][]float64 `json:"coordinates,omitempty"`
}

func (s *StreamSink) PlaceMarker(session string, id int, lat, lng float64, color string) {
	s.emit(session, layerOp{Op: "place_marker", ID: id, Lat: lat, Lng: lng, Color: color})
}

func (s *StreamSink) RemoveMarker(session string, id int) {
	s.emit(session, layerOp{Op: "remove_marker", ID: id})
}

func (s *StreamSink) Clear(session string) {
	s.emit(session, layerOp{Op: "clear"})
}

func (s *StreamSink) DrawPolyline(session string, coordinates [][]float64, color string) {
	s.emit(session, layerOp{
		Op:          "draw_polyline",
		Coordinates: coordinates,
		Color:       color,
		Weight:      PolylineWeight,
		Opacity:     PolylineOpacity,
	})
}

func (s *StreamSink) ClearPolylines(session string) {
	s.emit(session, layerOp{Op: "clear_polylines"})
}

func (s *StreamSink) SetView(session string, lat, lng float64, zoom int) {
	s.emit(session, layerOp{Op: "set_view", Lat: lat, Lng: lng, Zoom: zoom})
}

func (s *StreamSink) emit(session string, op layerOp) {
	payload, err := json.Marshal(op)
	if err != nil {
		return
	}
	s.hub.Broadcast(session, payload)
}
