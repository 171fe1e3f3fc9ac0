package sound

import "time"

type timerKey struct {
	name string
	kind string
	sel  Selector
}

type timer struct {
	key     timerKey
	left    time.Duration
	fire    func()
	removed bool
}

// timerQueue holds one-shot jobs such as delayed plays and start-time
// resets. A timer with an existing key replaces the old one.
type timerQueue struct {
	order []*timer
	index map[timerKey]*timer
}

func newTimerQueue() *timerQueue {
	return &timerQueue{index: make(map[timerKey]*timer)}
}

func (q *timerQueue) schedule(key timerKey, after time.Duration, fire func()) {
	if old, ok := q.index[key]; ok {
		old.removed = true
	}
	t := &timer{key: key, left: after, fire: fire}
	q.index[key] = t
	q.order = append(q.order, t)
}

func (q *timerQueue) cancel(key timerKey) {
	if t, ok := q.index[key]; ok {
		t.removed = true
		delete(q.index, key)
	}
}

func (q *timerQueue) dropName(name string) {
	for key := range q.index {
		if key.name == name {
			q.cancel(key)
		}
	}
}

func (q *timerQueue) len() int {
	return len(q.index)
}

func (q *timerQueue) advance(dt time.Duration) {
	snapshot := make([]*timer, len(q.order))
	copy(snapshot, q.order)

	for _, t := range snapshot {
		if t.removed {
			continue
		}
		t.left -= dt
		if t.left > 0 {
			continue
		}
		t.removed = true
		if q.index[t.key] == t {
			delete(q.index, t.key)
		}
		t.fire()
	}

	live := q.order[:0]
	for _, t := range q.order {
		if !t.removed {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(q.order); i++ {
		q.order[i] = nil
	}
	q.order = live
}
