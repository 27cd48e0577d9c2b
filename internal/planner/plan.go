package planner

import "sync"

// plan is the authoritative marker state for one session. Ids come from a
// counter and are never reused while the plan lives; only ClearAll and an
// import-replace reset the sequence. The capacity check counts live markers,
// so removing and re-adding never wedges a full-looking plan.
type plan struct {
	mu         sync.Mutex
	markers    []*Marker
	nextID     int
	generation uint64

	distanceLabel string
	timeLabel     string
	summary       *RouteSummary
}

func newPlan() *plan {
	return &plan{
		distanceLabel: IdleDistanceLabel,
		timeLabel:     IdleTimeLabel,
	}
}

// snapshot copies the marker values and the current generation. Route passes
// work on the copy and compare generations before applying results.
func (p *plan) snapshot() ([]Marker, uint64) {
	markers := make([]Marker, len(p.markers))
	for i, m := range p.markers {
		markers[i] = *m
	}
	return markers, p.generation
}

func (p *plan) find(id int) int {
	for i, m := range p.markers {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (p *plan) reset() {
	p.markers = nil
	p.nextID = 0
	p.generation++
	p.summary = nil
	p.distanceLabel = IdleDistanceLabel
	p.timeLabel = IdleTimeLabel
}
