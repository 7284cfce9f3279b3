package sketch

import (
	"fmt"
	"io"
	"sync"
)

// Kind tags which wire form a registry entry serialises to, the tagged
// variant spec.md §9 calls for in place of a virtual dispatch base.
type Kind int

const (
	KindQuantile Kind = iota
	KindFrequency
)

// entry pairs a sketch with its own mutex, guarding both Update and
// Serialize against each other. spec.md §5 notes the reference design
// tolerates interleaved-but-consistent state without this; §9's Open
// Questions section recommends taking the safer path, which this module
// does (see DESIGN.md).
type entry struct {
	mu        sync.Mutex
	kind      Kind
	quantile  *Quantile
	frequency *Frequency
}

// Registry is the per-profile mapping of metric name to sketch. A
// Registry is owned by exactly one Profile; the Saver only ever holds a
// borrowed reference to it (see internal/saver).
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// GetOrCreateQuantile returns the named quantile sketch, creating it with
// the given relative accuracy on first use. Subsequent calls with the
// same name return the same instance (I6).
func (r *Registry) GetOrCreateQuantile(name string, relativeAccuracy float64) (*Quantile, error) {
	e, created, err := r.getOrCreate(name, KindQuantile)
	if err != nil {
		return nil, err
	}
	if created {
		q, err := NewQuantileWithAccuracy(relativeAccuracy)
		if err != nil {
			r.mu.Lock()
			delete(r.entries, name)
			r.mu.Unlock()
			return nil, err
		}
		e.quantile = q
	}
	return e.quantile, nil
}

// GetOrCreateFrequency returns the named frequent-items sketch, creating
// it with the given capacity on first use.
func (r *Registry) GetOrCreateFrequency(name string, capacity int) (*Frequency, error) {
	e, created, err := r.getOrCreate(name, KindFrequency)
	if err != nil {
		return nil, err
	}
	if created {
		e.frequency = NewFrequency(capacity)
	}
	return e.frequency, nil
}

func (r *Registry) getOrCreate(name string, kind Kind) (*entry, bool, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if ok {
		if e.kind != kind {
			return nil, false, fmt.Errorf("metric %q already registered with a different sketch kind", name)
		}
		return e, false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[name]; ok {
		if e.kind != kind {
			return nil, false, fmt.Errorf("metric %q already registered with a different sketch kind", name)
		}
		return e, false, nil
	}
	e = &entry{kind: kind}
	r.entries[name] = e
	return e, true, nil
}

// UpdateQuantile locks the named entry and folds x into it.
func (r *Registry) UpdateQuantile(name string, x float64) error {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("metric %q not registered", name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.quantile.Update(x)
}

// UpdateFrequency locks the named entry and folds key into it.
func (r *Registry) UpdateFrequency(name, key string) error {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("metric %q not registered", name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frequency.Update(key)
	return nil
}

// Serialize locks the named entry and writes its current state to w.
func (r *Registry) Serialize(name string, w io.Writer) error {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("metric %q not registered", name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.kind {
	case KindQuantile:
		return e.quantile.Serialize(w)
	case KindFrequency:
		return e.frequency.Serialize(w)
	default:
		return fmt.Errorf("metric %q: unknown sketch kind", name)
	}
}

// Names returns every currently registered metric name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}

// Has reports whether name is already registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}
