package sound

// SubscribeProgress fires fn when any device of name is playing at or past
// threshold of its clip. At most one watch may exist per name and
// threshold.
func (m *Manager) SubscribeProgress(name string, threshold float64, fn ProgressFunc) Code {
	key := watchKey{name: name, threshold: threshold}
	_, code := m.validate(name, Parent,
		needsHost,
		progressThreshold(threshold, m.maxProgress),
		func(m *Manager, _ *request) Code {
			if m.watches.has(key) {
				return AlreadySubscribed
			}
			return OK
		},
	)
	if code != OK {
		return code
	}
	if fn == nil {
		fn = func(string, float64, Selector) Response { return Unsub }
	}
	m.watches.add(key, fn)
	return OK
}

// UnsubscribeProgress removes the watch for name and threshold.
func (m *Manager) UnsubscribeProgress(name string, threshold float64) Code {
	if _, code := m.validate(name, Parent); code != OK {
		return code
	}
	if !m.watches.remove(watchKey{name: name, threshold: threshold}) {
		return NotSubscribed
	}
	return OK
}

// SubscribeChanged registers fn for change notifications on name and
// returns the subscription id.
func (m *Manager) SubscribeChanged(name string, fn ChangeFunc) (string, Code) {
	req, code := m.validate(name, Parent)
	if code != OK {
		return "", code
	}
	if fn == nil {
		fn = func(string, Selector) {}
	}
	return req.handle.OnChange(fn), OK
}

// UnsubscribeChanged removes a change subscription.
func (m *Manager) UnsubscribeChanged(name, id string) Code {
	req, code := m.validate(name, Parent)
	if code != OK {
		return code
	}
	if !req.handle.RemoveListener(id) {
		return NotSubscribed
	}
	return OK
}
