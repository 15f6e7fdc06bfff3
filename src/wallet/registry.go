package wallet

import (
	"fmt"
	"sync"

	"drift-observer/src/interfaces"
)

// -----------------------------------------------------------------------------
// Registry holds the discovered wallet adapters. Adapters register at wiring
// time; the dashboard lists them and selects one by name.
// -----------------------------------------------------------------------------

type Registry struct {
	mu       sync.RWMutex
	adapters map[string]interfaces.IWalletAdapter
	order    []string // preserve registration order for display
}

// -----------------------------------------------------------------------------

func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]interfaces.IWalletAdapter),
	}
}

// -----------------------------------------------------------------------------

// Register adds an adapter. Re-registering a name replaces the old adapter.
func (r *Registry) Register(adapter interfaces.IWalletAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := adapter.Name()
	if _, exists := r.adapters[name]; !exists {
		r.order = append(r.order, name)
	}
	r.adapters[name] = adapter
}

// -----------------------------------------------------------------------------

// Select returns the adapter with the given name.
func (r *Registry) Select(name string) (interfaces.IWalletAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, exists := r.adapters[name]
	if !exists {
		return nil, fmt.Errorf("wallet adapter '%s' not found", name)
	}
	return adapter, nil
}

// -----------------------------------------------------------------------------

// Names lists the registered adapter names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
