package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zjrosen/mibstore/internal/cachemanager"
	"github.com/zjrosen/mibstore/internal/compare"
	"github.com/zjrosen/mibstore/internal/container"
	"github.com/zjrosen/mibstore/internal/container/binarray"
	"github.com/zjrosen/mibstore/internal/container/null"
	"github.com/zjrosen/mibstore/internal/container/ssll"
	"github.com/zjrosen/mibstore/internal/log"
	"github.com/zjrosen/mibstore/internal/pubsub"
)

// Registry errors
var (
	ErrNotInitialised = container.ErrNotInitialised
	ErrEmptyName      = errors.New("factory name cannot be empty")
	ErrNilFactory     = errors.New("factory cannot be nil")
)

// Aliases registered by Init, alias name to target factory name.
var builtinAliases = [][2]string{
	{"table_container", binarray.Name},
	{"linked_list", ssll.Name},
	{"ssll_container", ssll.Name},
}

// Recorder receives lookup outcomes and chained mutation results.
type Recorder interface {
	container.Observer
	ObserveLookup(kind string, found bool)
}

// Change is the payload of registry events.
type Change struct {
	Name    string
	Factory string
	Product string
}

// Entry describes one registered name.
type Entry struct {
	Name    string
	Factory string
	Product string
}

// Registry holds the factory catalog and the top-level container reference.
type Registry struct {
	catalog  *container.Container
	recorder Recorder
	broker   *pubsub.Broker[Change]
	cache    cachemanager.CacheManager[string, container.Factory]
	resolver *cachemanager.ReadThroughCache[string, container.Factory, string]
	// resolvedFor is the catalog the resolver cache was filled from.
	resolvedFor *container.Container
}

// Option configures a Registry.
type Option func(*Registry)

// WithMetrics reports lookups and chained mutations of produced containers
// to rec.
func WithMetrics(rec Recorder) Option {
	return func(r *Registry) {
		r.recorder = rec
	}
}

// WithBroker publishes registration changes on b instead of a private
// broker.
func WithBroker(b *pubsub.Broker[Change]) Option {
	return func(r *Registry) {
		r.broker = b
	}
}

// WithResolveCache memoises colon list resolution in c.
func WithResolveCache(c cachemanager.CacheManager[string, container.Factory]) Option {
	return func(r *Registry) {
		r.cache = c
	}
}

// New returns an empty registry. Call Init before registering.
func New(opts ...Option) *Registry {
	r := &Registry{}
	for _, opt := range opts {
		opt(r)
	}
	if r.broker == nil {
		r.broker = pubsub.NewBroker[Change]()
	}
	if r.cache == nil {
		r.cache = cachemanager.NewInMemoryCacheManager[string, container.Factory](
			"factory-resolve", cachemanager.NoExpiration, cachemanager.DefaultCleanupInterval)
	}
	r.resolver = cachemanager.NewReadThroughCache(r.cache, r.resolve, false)
	return r
}

// Init creates the catalog and registers the built-in factories. Calling
// it on an initialised registry does nothing.
func (r *Registry) Init() error {
	if r.catalog != nil {
		return nil
	}

	catalog, err := container.New(binarray.Name, &catalogStore{Store: binarray.New()})
	if err != nil {
		return fmt.Errorf("creating factory catalog: %w", err)
	}
	catalog.SetCompare(compare.Named)
	r.catalog = catalog

	for _, f := range []container.Factory{
		binarray.Factory(),
		ssll.Factory(),
		ssll.FIFOFactory(),
		ssll.LIFOFactory(),
		null.Factory(),
	} {
		if err := r.Register(f.Name(), f); err != nil {
			return fmt.Errorf("registering %s: %w", f.Name(), err)
		}
	}
	for _, a := range builtinAliases {
		if err := r.RegisterAlias(a[0], a[1]); err != nil {
			return fmt.Errorf("registering alias %s: %w", a[0], err)
		}
	}

	log.Info(log.CatRegistry, "Registry initialised", "factories", catalog.Size())
	return nil
}

// Initialised reports whether the catalog exists.
func (r *Registry) Initialised() bool {
	return r.catalog != nil
}

// Register binds name to f. An existing binding is replaced in place.
func (r *Registry) Register(name string, f container.Factory) error {
	switch {
	case r.catalog == nil:
		return ErrNotInitialised
	case name == "":
		return ErrEmptyName
	case f == nil:
		return ErrNilFactory
	}

	change := Change{Name: name, Factory: f.Name(), Product: f.Product()}
	if found, ok := r.catalog.Find(name); ok {
		e := found.(*entry)
		previous := e.factory.Name()
		e.factory = f
		log.Info(log.CatRegistry, "Factory replaced", "name", name, "previous", previous, "factory", f.Name())
		r.changed(pubsub.UpdatedEvent, change)
		return nil
	}

	if _, err := r.catalog.Insert(&entry{name: name, factory: f}); err != nil {
		return err
	}
	log.Debug(log.CatRegistry, "Factory registered", "name", name, "factory", f.Name())
	r.changed(pubsub.CreatedEvent, change)
	return nil
}

// RegisterAlias binds alias to the factory that target, a colon list,
// resolves to.
func (r *Registry) RegisterAlias(alias, target string) error {
	if r.catalog == nil {
		return ErrNotInitialised
	}
	f, ok := r.FindFactory(target)
	if !ok {
		return fmt.Errorf("alias target %q: %w", target, container.ErrFactoryNotFound)
	}
	return r.Register(alias, f)
}

// ResetAlias restores the binding Init gives alias, or unregisters alias
// when Init does not register it.
func (r *Registry) ResetAlias(alias string) error {
	if target, ok := BuiltinAlias(alias); ok {
		return r.RegisterAlias(alias, target)
	}
	return r.Unregister(alias)
}

// BuiltinAlias returns the target Init registers alias to.
func BuiltinAlias(alias string) (string, bool) {
	for _, a := range builtinAliases {
		if a[0] == alias {
			return a[1], true
		}
	}
	return "", false
}

// Unregister removes name from the catalog.
func (r *Registry) Unregister(name string) error {
	if r.catalog == nil {
		return ErrNotInitialised
	}
	found, ok := r.catalog.Find(name)
	if !ok {
		return fmt.Errorf("%q: %w", name, container.ErrFactoryNotFound)
	}
	e := found.(*entry)
	change := Change{Name: name, Factory: e.factory.Name(), Product: e.factory.Product()}
	if _, err := r.catalog.Remove(name); err != nil {
		return err
	}
	log.Info(log.CatRegistry, "Factory unregistered", "name", name)
	r.changed(pubsub.DeletedEvent, change)
	return nil
}

// GetFactory returns the factory registered under name.
func (r *Registry) GetFactory(name string) (container.Factory, bool) {
	f, ok := r.lookup(name)
	r.observeLookup("get", ok)
	return f, ok
}

// FindFactory returns the factory of the first registered name in a colon
// separated list. Empty segments are skipped.
func (r *Registry) FindFactory(list string) (container.Factory, bool) {
	if r.catalog == nil {
		r.observeLookup("find", false)
		return nil, false
	}
	if r.resolvedFor != r.catalog {
		// The top-level reference was rebound through TopContainers.
		r.invalidate()
		r.resolvedFor = r.catalog
	}
	f, err := r.resolver.Get(context.Background(), list, list, cachemanager.NoExpiration)
	ok := err == nil
	r.observeLookup("find", ok)
	if !ok {
		return nil, false
	}
	return f, true
}

// Get produces a container from the factory registered under name, or
// returns nil.
func (r *Registry) Get(name string) *container.Container {
	f, ok := r.GetFactory(name)
	if !ok {
		return nil
	}
	return r.produce(f)
}

// Find produces a container from the first registered name in list, or
// returns nil.
func (r *Registry) Find(list string) *container.Container {
	f, ok := r.FindFactory(list)
	if !ok {
		return nil
	}
	return r.produce(f)
}

// GetInto initialises dst from the factory registered under name.
func (r *Registry) GetInto(name string, dst *container.Container) error {
	f, ok := r.GetFactory(name)
	if !ok {
		return fmt.Errorf("%q: %w", name, container.ErrFactoryNotFound)
	}
	return r.produceInto(f, dst)
}

// FindInto initialises dst from the first registered name in list.
func (r *Registry) FindInto(list string, dst *container.Container) error {
	f, ok := r.FindFactory(list)
	if !ok {
		return fmt.Errorf("%q: %w", list, container.ErrFactoryNotFound)
	}
	return r.produceInto(f, dst)
}

// Clear frees the catalog and drops the top-level reference. It does nothing
// on a registry that was never initialised or is already cleared.
func (r *Registry) Clear() (container.Result, error) {
	if r.catalog == nil {
		return container.Result{}, nil
	}
	n := r.catalog.Size()
	res, err := r.Free(r.catalog)
	r.invalidate()
	if err != nil {
		return res, fmt.Errorf("clearing registry: %w", err)
	}
	log.Info(log.CatRegistry, "Registry cleared", "factories", n)
	return res, nil
}

// Free runs a chained free on c and, when the primary free succeeded,
// releases the top-level reference if it is c.
func (r *Registry) Free(c *container.Container) (container.Result, error) {
	if c == nil {
		return container.Result{}, container.ErrNilContainer
	}
	res, err := c.Free()
	if err != nil {
		return res, err
	}
	r.ReleaseIfTop(c)
	return res, nil
}

// TopContainers returns the location of the top-level container reference.
func (r *Registry) TopContainers() **container.Container {
	return &r.catalog
}

// ReleaseIfTop nils the top-level reference when it is exactly c. c is not
// freed.
func (r *Registry) ReleaseIfTop(c *container.Container) {
	if c != nil && r.catalog == c {
		r.catalog = nil
		r.invalidate()
	}
}

// Names returns every registered name in catalog order.
func (r *Registry) Names() []string {
	var names []string
	r.forEach(func(e *entry) {
		names = append(names, e.name)
	})
	return names
}

// Entries describes every registered name in catalog order.
func (r *Registry) Entries() []Entry {
	var entries []Entry
	r.forEach(func(e *entry) {
		entries = append(entries, Entry{Name: e.name, Factory: e.factory.Name(), Product: e.factory.Product()})
	})
	return entries
}

// Subscribe streams registration changes until ctx is done.
func (r *Registry) Subscribe(ctx context.Context) <-chan pubsub.Event[Change] {
	return r.broker.Subscribe(ctx)
}

func (r *Registry) lookup(name string) (container.Factory, bool) {
	if r.catalog == nil || name == "" {
		return nil, false
	}
	found, ok := r.catalog.Find(name)
	if !ok {
		return nil, false
	}
	return found.(*entry).factory, true
}

func (r *Registry) resolve(_ context.Context, list string) (container.Factory, error) {
	for _, name := range strings.Split(list, ":") {
		if name == "" {
			continue
		}
		if f, ok := r.lookup(name); ok {
			return f, nil
		}
	}
	return nil, container.ErrFactoryNotFound
}

func (r *Registry) produce(f container.Factory) *container.Container {
	c := f.Produce()
	if c != nil && r.recorder != nil {
		c.SetObserver(r.recorder)
	}
	return c
}

func (r *Registry) produceInto(f container.Factory, dst *container.Container) error {
	if err := f.ProduceInto(dst); err != nil {
		return fmt.Errorf("producing %s: %w", f.Name(), err)
	}
	if r.recorder != nil {
		dst.SetObserver(r.recorder)
	}
	return nil
}

func (r *Registry) forEach(fn func(e *entry)) {
	if r.catalog == nil {
		return
	}
	r.catalog.ForEach(func(item any) {
		if e, ok := item.(*entry); ok {
			fn(e)
		}
	})
}

func (r *Registry) changed(t pubsub.EventType, c Change) {
	r.invalidate()
	r.broker.Publish(t, c)
}

func (r *Registry) invalidate() {
	_ = r.resolver.Invalidate(context.Background())
}

func (r *Registry) observeLookup(kind string, found bool) {
	if r.recorder != nil {
		r.recorder.ObserveLookup(kind, found)
	}
}
