package planner

import "github.com/Chanjeong/walkman/internal/routing"

// MaxMarkers caps a plan at five points.
const MaxMarkers = 5

// SearchingAddress is the placeholder shown while reverse geocoding runs.
const SearchingAddress = "주소 검색 중..."

// Idle and failure labels for the distance/time display.
const (
	IdleDistanceLabel = "- km"
	IdleTimeLabel     = "- 분"
	PendingLabel      = "계산 중..."
	FailedLabel       = "계산 실패"
)

type paletteEntry struct {
	Color       string
	BgColor     string
	BorderColor string
}

// Marker colors are positional: slot (id-1) % 5, frozen at creation.
var markerPalette = [MaxMarkers]paletteEntry{
	{"#ef4444", "from-red-50", "border-red-200"},
	{"#f97316", "from-orange-50", "border-orange-200"},
	{"#eab308", "from-yellow-50", "border-yellow-200"},
	{"#22c55e", "from-green-50", "border-green-200"},
	{"#3b82f6", "from-blue-50", "border-blue-200"},
}

// Marker is one user-selected route point.
type Marker struct {
	ID                 int     `json:"id"`
	Lat                float64 `json:"lat"`
	Lng                float64 `json:"lng"`
	Address            string  `json:"address"`
	IsSearchingAddress bool    `json:"isSearchingAddress"`
	Color              string  `json:"color"`
	BgColor            string  `json:"bgColor"`
	BorderColor        string  `json:"borderColor"`
}

// SegmentDetail is one walking leg between adjacent markers, in marker order.
// StraightKm is the great-circle distance for comparison against the walking
// path.
type SegmentDetail struct {
	FromID      int     `json:"from_id"`
	ToID        int     `json:"to_id"`
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
	StraightKm  float64 `json:"straight_km"`
}

// RouteSummary aggregates all legs: totals are plain sums in km/minutes,
// formatting happens only at presentation time.
type RouteSummary struct {
	TotalDistanceKm float64         `json:"total_distance_km"`
	TotalTimeMin    float64         `json:"total_time_min"`
	Segments        []SegmentDetail `json:"segments"`
}

// RouteDisplay pairs a leg's geometry with the start marker whose color the
// polyline takes. Legs without resolvable geometry are filtered out.
type RouteDisplay struct {
	Geometry    *routing.Geometry `json:"geometry"`
	StartMarker Marker            `json:"start_marker"`
	EndMarker   Marker            `json:"end_marker"`
}

// RouteState is what the client shows next to the map.
type RouteState struct {
	DistanceLabel string        `json:"distance_label"`
	TimeLabel     string        `json:"time_label"`
	Summary       *RouteSummary `json:"summary,omitempty"`
}
