package softsynth

import "sort"

type automation struct {
	ramp bool
	v, t float64
}

// param is an audio.Param evaluated per sample. Methods lock the synth;
// valueAt is called with the lock held.
type param struct {
	s      *Synth
	value  float64
	events []automation
}

func (p *param) valueAt(t float64) float64 {
	v, from := p.value, 0.0
	for _, ev := range p.events {
		if ev.t > t {
			if ev.ramp && ev.t > from {
				return v + (ev.v-v)*(t-from)/(ev.t-from)
			}
			return v
		}
		v, from = ev.v, ev.t
	}
	return v
}

// prune folds events that are entirely in the past into the base value.
func (p *param) prune(t float64) {
	n := 0
	for n < len(p.events) && p.events[n].t <= t {
		n++
	}
	// keep the last past event as the start of a following ramp
	if n > 1 {
		p.value = p.events[n-2].v
		p.events = p.events[n-1:]
	}
}

func (p *param) insert(ev automation) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].t > ev.t })
	p.events = append(p.events, automation{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = ev
}

func (p *param) Value() float64 {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	return p.valueAt(p.s.nowLocked())
}

func (p *param) SetValue(v float64) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.value = v
	p.events = nil
}

func (p *param) SetValueAtTime(v, t float64) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.insert(automation{v: v, t: t})
}

func (p *param) LinearRampToValueAtTime(v, t float64) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.insert(automation{ramp: true, v: v, t: t})
}

func (p *param) CancelScheduledValues(t float64) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	kept := p.events[:0]
	for _, ev := range p.events {
		if ev.t < t {
			kept = append(kept, ev)
		}
	}
	p.events = kept
}
