package sound

import (
	"math"
	"time"
)

type lerpKey struct {
	name  string
	sel   Selector
	param string
}

// scalar is a single interpolatable value.
type scalar interface {
	get() float64
	set(v float64)
}

type deviceScalar struct {
	dev   Device
	param Param
}

func (d deviceScalar) get() float64 {
	if d.param == Pitch {
		return d.dev.Pitch()
	}
	return d.dev.Volume()
}

func (d deviceScalar) set(v float64) {
	if d.param == Pitch {
		d.dev.SetPitch(v)
		return
	}
	d.dev.SetVolume(v)
}

type busScalar struct {
	buses BusBackend
	bus   string
	param string
}

func (b busScalar) get() float64 {
	v, _ := b.buses.Get(b.bus, b.param)
	return v
}

func (b busScalar) set(v float64) {
	b.buses.Set(b.bus, b.param, v)
}

type lerpTarget struct {
	sel  Selector
	s    scalar
	step float64
}

// lerpJob moves a frozen set of scalars to end over granularity steps.
type lerpJob struct {
	key       lerpKey
	handle    *Handle
	targets   []lerpTarget
	interval  time.Duration
	wait      time.Duration
	remaining int
	device    bool
	removed   bool
}

func newLerpJob(key lerpKey, h *Handle, scalars []lerpTarget, end float64, d time.Duration, g int) *lerpJob {
	for i := range scalars {
		scalars[i].step = (end - scalars[i].s.get()) / float64(g)
	}
	interval := d / time.Duration(g)
	return &lerpJob{
		key:       key,
		handle:    h,
		targets:   scalars,
		interval:  interval,
		wait:      interval,
		remaining: g,
	}
}

// interpolator runs lerp jobs in creation order. A job with an existing
// key replaces the old one.
type interpolator struct {
	order []*lerpJob
	index map[lerpKey]*lerpJob
}

func newInterpolator() *interpolator {
	return &interpolator{index: make(map[lerpKey]*lerpJob)}
}

func (p *interpolator) put(j *lerpJob) {
	if old, ok := p.index[j.key]; ok {
		old.removed = true
	}
	p.index[j.key] = j
	p.order = append(p.order, j)
}

func (p *interpolator) drop(j *lerpJob) {
	j.removed = true
	if p.index[j.key] == j {
		delete(p.index, j.key)
	}
}

// dropName cancels every job on name.
func (p *interpolator) dropName(name string) {
	for key, j := range p.index {
		if key.name == name {
			p.drop(j)
		}
	}
}

// dropSelector cancels jobs addressed to one child kind of name.
func (p *interpolator) dropSelector(name string, sel Selector) {
	for key, j := range p.index {
		if key.name == name && key.sel == sel {
			p.drop(j)
		}
	}
}

func (p *interpolator) len() int {
	return len(p.index)
}

func (p *interpolator) advance(dt time.Duration) {
	snapshot := make([]*lerpJob, len(p.order))
	copy(snapshot, p.order)

	for _, j := range snapshot {
		if j.removed {
			continue
		}
		j.wait += dt
		if j.wait < j.interval {
			continue
		}
		j.wait -= j.interval

		for _, t := range j.targets {
			t.s.set(t.s.get() + t.step)
		}
		j.remaining--
		if j.remaining <= 0 {
			for _, t := range j.targets {
				t.s.set(round2(t.s.get()))
			}
			p.drop(j)
		}
		if j.device {
			for _, t := range j.targets {
				j.handle.notify(t.sel)
			}
		}
	}

	live := p.order[:0]
	for _, j := range p.order {
		if !j.removed {
			live = append(live, j)
		}
	}
	for i := len(live); i < len(p.order); i++ {
		p.order[i] = nil
	}
	p.order = live
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
