package dao

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oshokin/mapdao/dao/store"
)

type (
	// RegistryConfig holds Registry configuration.
	RegistryConfig struct {
		// Logger is handed to every DAO the registry creates.
		// Defaults to slog.Default().
		Logger *slog.Logger

		// Registerer receives the collectors of DAOs opened with Options.Metrics.
		// Nil disables metrics regardless of Options.Metrics.
		Registerer prometheus.Registerer
	}

	// Registry creates named DAOs lazily and shares them between callers.
	//
	// The first Open of a name creates the DAO; later Opens with equal options
	// and the same types return that same DAO. Reconfiguring a live DAO is
	// rejected rather than silently ignored.
	Registry struct {
		mu         sync.Mutex
		entries    map[string]*registryEntry
		logger     *slog.Logger
		registerer prometheus.Registerer
	}

	// registryEntry is a created DAO together with the options it was created with.
	registryEntry struct {
		opts Options
		dao  any
	}
)

// testOpenBarrier is a test hook invoked the moment a goroutine enters the
// DAO-creation path. It lets tests hold concurrent Open calls inside the race
// window (nil in non-test builds).
//
//nolint:gochecknoglobals // this is a test hook.
var (
	testOpenBarrier   func()
	testOpenBarrierMu sync.RWMutex
)

// NewRegistry creates an empty Registry. A nil cfg selects the defaults.
func NewRegistry(cfg *RegistryConfig) *Registry {
	r := &Registry{
		entries: make(map[string]*registryEntry),
		logger:  slog.Default(),
	}

	if cfg != nil {
		if cfg.Logger != nil {
			r.logger = cfg.Logger
		}

		r.registerer = cfg.Registerer
	}

	return r
}

// Open returns the DAO registered under name, creating it on first use.
//
// keyOf is only used when the DAO is created. Reopening a name with options
// that are not Equal fails with ErrOptionsConflict; reopening it with other
// key or record types fails with ErrTypeMismatch. Errors are classified into
// *Error values.
func Open[K comparable, V any](r *Registry, name string, keyOf store.KeyFunc[K, V], opts Options) (*DAO[K, V], error) {
	dao, err := getOrCreate(r, name, keyOf, opts)
	if err != nil {
		return nil, classifyError(err)
	}

	return dao, nil
}

// getOrCreate creates a new DAO if name is unused,
// or returns the existing DAO if the options and types are the same.
func getOrCreate[K comparable, V any](r *Registry, name string, keyOf store.KeyFunc[K, V], opts Options) (*DAO[K, V], error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.entries[name]; ok {
		if !entry.opts.Equal(opts) {
			// Reject re-configuration attempts to prevent confusion and data loss.
			return nil, fmt.Errorf(
				"%w: name=%q shardCount=%d maxSize=%d metrics=%t",
				ErrOptionsConflict, name, entry.opts.ShardCount, entry.opts.MaxSize, entry.opts.Metrics,
			)
		}

		dao, ok := entry.dao.(*DAO[K, V])
		if !ok {
			return nil, fmt.Errorf("%w: name=%q existing=%T requested=%T", ErrTypeMismatch, name, entry.dao, dao)
		}

		return dao, nil
	}

	// Test hook: production code sees nil and skips this entirely.
	testOpenBarrierMu.RLock()

	barrier := testOpenBarrier

	testOpenBarrierMu.RUnlock()

	if barrier != nil {
		barrier()
	}

	dao, err := newDAO(r, name, keyOf, opts)
	if err != nil {
		return nil, err
	}

	r.entries[name] = &registryEntry{opts: opts, dao: dao}

	return dao, nil
}

// newDAO builds the store stack of a new DAO: a MapStore, wrapped in an
// LRUStore when the options bound its size.
func newDAO[K comparable, V any](r *Registry, name string, keyOf store.KeyFunc[K, V], opts Options) (*DAO[K, V], error) {
	if keyOf == nil {
		return nil, fmt.Errorf("%w: key function is required", ErrOptionsInvalid)
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	logger := r.logger.With("dao", name)

	var metrics *store.Metrics

	if opts.Metrics && r.registerer != nil {
		m, err := store.NewMetrics(r.registerer, name)
		if err != nil {
			return nil, err
		}

		metrics = m
	}

	mapCfg := opts.ToMapConfig()
	mapCfg.Logger = logger
	mapCfg.Metrics = metrics

	var s store.Store[K, V] = store.NewMapStore(keyOf, mapCfg)

	if lruCfg := opts.ToLRUConfig(); lruCfg != nil {
		lruCfg.Logger = logger
		lruCfg.Metrics = metrics

		lru, err := store.NewLRUStore(s, keyOf, lruCfg)
		if err != nil {
			return nil, err
		}

		s = lru
	}

	logger.Info("dao: created",
		"shards", mapCfg.GetShardCount(),
		"max_size", opts.MaxSize,
		"metrics", metrics != nil,
		"snapshot", opts.Snapshot != nil,
	)

	return &DAO[K, V]{
		Store:  s,
		name:   name,
		opts:   opts,
		codec:  store.NewJSONCodec[V](),
		logger: r.logger,
	}, nil
}

// Names returns the names of all created DAOs in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Sorted(maps.Keys(r.entries))
}
