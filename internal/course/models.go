package course

import "time"

// Course is a named snapshot of a finished plan. Markers are stored as a
// JSONB document in walk order.
type Course struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Markers         []CourseMarker `json:"markers"`
	TotalDistanceKm float64        `json:"total_distance_km"`
	TotalTimeMin    float64        `json:"total_time_min"`
	CreatedBy       string         `json:"created_by"`
	CreatedAt       time.Time      `json:"created_at"`
}

type CourseMarker struct {
	Order   int     `json:"order"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}
