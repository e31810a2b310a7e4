package physics

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Sample is one point of a predicted path.
type Sample struct {
	Time     float64    `json:"t"`
	Position mgl64.Vec3 `json:"pos"`
}

// EventKind names the boundary a bounce happened on.
type EventKind uint8

const (
	EventWall EventKind = iota
	EventFloor
	EventCeiling
)

func (k EventKind) String() string {
	switch k {
	case EventWall:
		return "wall"
	case EventFloor:
		return "floor"
	case EventCeiling:
		return "ceiling"
	default:
		return "unknown"
	}
}

// Event records a bounce resolved during prediction.
type Event struct {
	Kind     EventKind
	Time     float64
	Position mgl64.Vec3
	Before   mgl64.Vec3
	After    mgl64.Vec3
}

// Path is a time-sampled prediction. Timestamps never decrease and the first
// sample is at t=0. A Path is not modified after Predict returns it.
type Path struct {
	samples []Sample
	events  []Event
}

// NewStaticPath returns a single-sample path at pos.
func NewStaticPath(pos mgl64.Vec3) Path {
	return Path{samples: []Sample{{Time: 0, Position: pos}}}
}

func (p *Path) add(t float64, pos mgl64.Vec3) {
	p.samples = append(p.samples, Sample{Time: t, Position: pos})
}

func (p Path) Len() int { return len(p.samples) }

// Sample returns the i-th sample.
func (p Path) Sample(i int) Sample { return p.samples[i] }

// Samples returns a copy of all samples.
func (p Path) Samples() []Sample {
	out := make([]Sample, len(p.samples))
	copy(out, p.samples)
	return out
}

// Events returns a copy of the bounces resolved while building the path.
func (p Path) Events() []Event {
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

func (p Path) Start() Sample { return p.samples[0] }

func (p Path) End() Sample { return p.samples[len(p.samples)-1] }

// Duration is the timestamp of the last sample.
func (p Path) Duration() float64 {
	if len(p.samples) == 0 {
		return 0
	}
	return p.End().Time
}

// PositionAt linearly interpolates the position at time t. Times before the
// start or after the end clamp to the first or last sample.
func (p Path) PositionAt(t float64) mgl64.Vec3 {
	n := len(p.samples)
	if n == 0 {
		return mgl64.Vec3{}
	}
	if t <= p.samples[0].Time {
		return p.samples[0].Position
	}
	if t >= p.samples[n-1].Time {
		return p.samples[n-1].Position
	}

	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if p.samples[mid].Time <= t {
			lo = mid
		} else {
			hi = mid
		}
	}
	a, b := p.samples[lo], p.samples[hi]
	span := b.Time - a.Time
	if span == 0 {
		return b.Position
	}
	f := (t - a.Time) / span
	return a.Position.Add(b.Position.Sub(a.Position).Mul(f))
}

// FirstWhere returns the earliest sample satisfying pred.
func (p Path) FirstWhere(pred func(Sample) bool) (Sample, bool) {
	for _, s := range p.samples {
		if pred(s) {
			return s, true
		}
	}
	return Sample{}, false
}

// FirstEvent returns the earliest bounce of the given kind.
func (p Path) FirstEvent(kind EventKind) (Event, bool) {
	for _, e := range p.events {
		if e.Kind == kind {
			return e, true
		}
	}
	return Event{}, false
}
