package crud

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Options is a selection source loaded from a list endpoint, such as the
// unused IP addresses offered when editing a host.
type Options struct {
	path    string
	backend Backend

	mu     sync.Mutex
	values []string
}

// NewOptions creates an empty option source for path.
func NewOptions(backend Backend, path string) *Options {
	return &Options{path: path, backend: backend}
}

// Load fetches the options. On failure the previous values are kept.
func (o *Options) Load(ctx context.Context) error {
	var values []string
	if err := o.backend.Get(ctx, o.path, &values); err != nil {
		return fmt.Errorf("loading options %s: %w", o.path, err)
	}

	o.mu.Lock()
	o.values = values
	o.mu.Unlock()
	return nil
}

// Values returns a copy of the loaded options.
func (o *Options) Values() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.values)
}
