package synth

import "math"

type rampKind uint8

const (
	setValue rampKind = iota
	linearRamp
	expRamp
)

type paramEvent struct {
	kind  rampKind
	value float64
	at    float64 // seconds from graph start
}

// param is a value automated over time: a start value followed by jumps
// and ramps, each ending at its own time. Between two events the value
// follows the later event's ramp; after the last event it holds.
type param struct {
	events []paramEvent
}

func newParam(v float64) *param {
	return &param{events: []paramEvent{{kind: setValue, value: v}}}
}

func (p *param) setAt(v, at float64) *param {
	p.events = append(p.events, paramEvent{kind: setValue, value: v, at: at})
	return p
}

func (p *param) linearTo(v, at float64) *param {
	p.events = append(p.events, paramEvent{kind: linearRamp, value: v, at: at})
	return p
}

// expTo ramps exponentially. Both ends must be positive; otherwise the
// value jumps at the end time.
func (p *param) expTo(v, at float64) *param {
	p.events = append(p.events, paramEvent{kind: expRamp, value: v, at: at})
	return p
}

func (p *param) valueAt(t float64) float64 {
	prevV, prevT := p.events[0].value, p.events[0].at
	for _, e := range p.events[1:] {
		if t >= e.at {
			prevV, prevT = e.value, e.at
			continue
		}
		span := e.at - prevT
		if span <= 0 {
			return prevV
		}
		frac := (t - prevT) / span
		switch e.kind {
		case linearRamp:
			return prevV + (e.value-prevV)*frac
		case expRamp:
			if prevV <= 0 || e.value <= 0 {
				return prevV
			}
			return prevV * math.Pow(e.value/prevV, frac)
		default:
			return prevV
		}
	}
	return prevV
}
