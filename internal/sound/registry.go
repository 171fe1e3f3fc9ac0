package sound

import "reflect"

// Registry maps sound names to handles. Keys are unique and Add never
// overwrites an existing entry.
type Registry struct {
	entries map[string]*Handle
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Handle)}
}

// Add registers dev under name. A nil device, including a typed nil
// pointer, is rejected before the name is checked for uniqueness.
func (r *Registry) Add(name string, dev Device) Code {
	if isNilDevice(dev) {
		return MissingSource
	}
	if _, exists := r.entries[name]; exists {
		return AlreadyExists
	}
	r.entries[name] = newHandle(name, dev)
	r.order = append(r.order, name)
	return OK
}

// Remove deletes the entry for name.
func (r *Registry) Remove(name string) Code {
	if _, exists := r.entries[name]; !exists {
		return DoesNotExist
	}
	delete(r.entries, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return OK
}

// Lookup returns the handle stored under name. A present key with a nil
// handle reports MissingWrapper.
func (r *Registry) Lookup(name string) (*Handle, Code) {
	h, exists := r.entries[name]
	if !exists {
		return nil, DoesNotExist
	}
	if h == nil {
		return nil, MissingWrapper
	}
	return h, OK
}

// Names returns registered names in insertion order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	return len(r.entries)
}

// isNilDevice reports whether dev is nil or an interface holding a nil
// pointer, map, func or channel.
func isNilDevice(dev Device) bool {
	if dev == nil {
		return true
	}
	v := reflect.ValueOf(dev)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}
