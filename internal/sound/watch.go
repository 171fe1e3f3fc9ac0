package sound

type watchKey struct {
	name      string
	threshold float64
}

// watch is a progress subscription. It tracks each device of the handle
// separately so a child can fire while the parent is silent.
type watch struct {
	key     watchKey
	fn      ProgressFunc
	tracks  map[Selector]*progressTrack
	removed bool
}

type progressTrack struct {
	armed      bool
	policy     Response
	seen       bool
	last       float64
	wasPlaying bool
}

// watchScheduler evaluates watches in registration order on every tick.
type watchScheduler struct {
	order []*watch
	index map[watchKey]*watch
}

func newWatchScheduler() *watchScheduler {
	return &watchScheduler{index: make(map[watchKey]*watch)}
}

func (s *watchScheduler) has(key watchKey) bool {
	_, ok := s.index[key]
	return ok
}

func (s *watchScheduler) add(key watchKey, fn ProgressFunc) {
	w := &watch{key: key, fn: fn, tracks: make(map[Selector]*progressTrack)}
	s.index[key] = w
	s.order = append(s.order, w)
}

func (s *watchScheduler) remove(key watchKey) bool {
	w, ok := s.index[key]
	if !ok {
		return false
	}
	s.drop(w)
	return true
}

func (s *watchScheduler) drop(w *watch) {
	w.removed = true
	if s.index[w.key] == w {
		delete(s.index, w.key)
	}
}

// dropName removes every watch on name.
func (s *watchScheduler) dropName(name string) {
	for key := range s.index {
		if key.name == name {
			s.remove(key)
		}
	}
}

// forget clears tracking for a released child so a new child of the same
// kind starts armed.
func (s *watchScheduler) forget(name string, kind Selector) {
	for key, w := range s.index {
		if key.name == name {
			delete(w.tracks, kind)
		}
	}
}

// len returns the number of live watches.
func (s *watchScheduler) len() int {
	return len(s.index)
}

func (s *watchScheduler) advance(reg *Registry) {
	// Callbacks may subscribe or unsubscribe; iterate a snapshot and compact
	// afterwards.
	snapshot := make([]*watch, len(s.order))
	copy(snapshot, s.order)

	for _, w := range snapshot {
		if w.removed {
			continue
		}
		h, code := reg.Lookup(w.key.name)
		if code != OK {
			s.drop(w)
			continue
		}
		s.evaluate(w, h)
	}

	live := s.order[:0]
	for _, w := range s.order {
		if !w.removed {
			live = append(live, w)
		}
	}
	for i := len(live); i < len(s.order); i++ {
		s.order[i] = nil
	}
	s.order = live
}

func (s *watchScheduler) evaluate(w *watch, h *Handle) {
	targets, _ := h.resolve(All)
	for _, t := range targets {
		if w.removed {
			return
		}
		asset := t.dev.Asset()
		if asset == nil || asset.Length <= 0 {
			continue
		}

		tr, ok := w.tracks[t.sel]
		if !ok {
			tr = &progressTrack{armed: true}
			w.tracks[t.sel] = tr
		}

		playing := t.dev.Playing()
		ratio := t.dev.Position() / asset.Length
		holds := playing && ratio >= w.key.threshold
		wrapped := tr.seen && tr.wasPlaying && playing && wrappedAround(tr.last, ratio, t.dev.Pitch())

		if !tr.armed {
			switch tr.policy {
			case ResubInLoop:
				tr.armed = wrapped
			case ResubImmediate:
				tr.armed = wrapped || !holds
			}
		}
		tr.seen = true
		tr.last = ratio
		tr.wasPlaying = playing

		if !tr.armed || !holds {
			continue
		}

		resp := w.fn(w.key.name, w.key.threshold, t.sel)
		if w.removed {
			return
		}
		switch resp {
		case ResubInLoop, ResubImmediate:
			tr.armed = false
			tr.policy = resp
		default:
			s.drop(w)
			return
		}
	}
}

// wrappedAround reports whether playback jumped back to the clip start
// (forward pitch) or end (reverse pitch) since the previous tick.
func wrappedAround(prev, cur, pitch float64) bool {
	switch {
	case pitch > 0:
		return cur < prev
	case pitch < 0:
		return cur > prev
	default:
		return false
	}
}
