package prototype

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/event"
	"github.com/aretw0/pagecraft/pkg/schema"
)

// Loader fetches the prototypes of one bundle.
type Loader func(ctx context.Context, name string) ([]Prototype, error)

// Registry manages the known prototypes. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	protos map[string]Prototype
	logger *slog.Logger

	change event.Emitter[[]string]
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used to report loads.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		protos: make(map[string]Prototype),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds prototypes, replacing any with the same component name.
func (r *Registry) Register(protos ...Prototype) {
	names := make([]string, 0, len(protos))
	r.mu.Lock()
	for _, p := range protos {
		r.protos[p.ComponentName()] = p
		names = append(names, p.ComponentName())
	}
	r.mu.Unlock()
	r.change.Emit(names)
}

// Get returns the prototype registered under name.
func (r *Registry) Get(name string) (Prototype, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.protos[name]
	return p, ok
}

// Lookup is Get with an error for unknown names.
func (r *Registry) Lookup(name string) (Prototype, error) {
	p, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPrototypeNotFound, name)
	}
	return p, nil
}

// Names returns every registered component name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.protos))
	for n := range r.protos {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// OnChange subscribes to registrations. The listener receives the
// component names that were added or replaced.
func (r *Registry) OnChange(fn func(names []string)) event.Dispose {
	return r.change.Subscribe(fn)
}

// Load fetches the named bundles concurrently and registers their
// prototypes once every bundle resolved. Nothing is registered if any
// bundle fails.
func (r *Registry) Load(ctx context.Context, loader Loader, bundles ...string) error {
	results := make([][]Prototype, len(bundles))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range bundles {
		g.Go(func() error {
			protos, err := loader(gctx, name)
			if err != nil {
				return fmt.Errorf("failed to load bundle %s: %w", name, err)
			}
			results[i] = protos
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Error("prototype load failed", "bundles", bundles, "error", err)
		return err
	}

	seen := make(map[string]bool)
	var all []Prototype
	for _, protos := range results {
		for _, p := range protos {
			if seen[p.ComponentName()] {
				return fmt.Errorf("%w: %s", ErrDuplicatePrototype, p.ComponentName())
			}
			seen[p.ComponentName()] = true
			all = append(all, p)
		}
	}
	r.Register(all...)
	r.logger.Debug("prototypes loaded", "bundles", len(bundles), "count", len(all))
	return nil
}

// DirLoader reads bundle <name>.yaml from dir.
func DirLoader(dir string) Loader {
	return func(ctx context.Context, name string) ([]Prototype, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(dir, name+".yaml"))
		if err != nil {
			return nil, err
		}
		defs, err := ParseDefinitions(data)
		if err != nil {
			return nil, err
		}
		protos := make([]Prototype, len(defs))
		for i, def := range defs {
			protos[i] = Declare(def)
		}
		return protos, nil
	}
}

// Resolver returns a schema.Resolver over the registered prototypes that
// declare typed props.
func (r *Registry) Resolver() schema.Resolver {
	return func(name string) (schema.Declarations, bool) {
		p, ok := r.Get(name)
		if !ok {
			return nil, false
		}
		d, ok := p.(interface {
			Declarations() (schema.Declarations, error)
		})
		if !ok {
			return nil, false
		}
		decls, err := d.Declarations()
		if err != nil {
			r.logger.Warn("invalid prop declarations", "component", name, "error", err)
			return nil, false
		}
		return decls, true
	}
}
